package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/felixgeelhaar/planllama/pkg/application"
	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/assist"
	"github.com/felixgeelhaar/planllama/pkg/domain/tracker"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, status int, body envelope) {
	if body == nil {
		body = envelope{}
	}
	body["success"] = true
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), envelope{"success": false, "error": err.Error()})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var aErr *assist.Error
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotSynced):
		return http.StatusBadRequest
	case tracker.KindOf(err) == tracker.KindNotConfigured:
		return http.StatusBadRequest
	case application.IsSingleItemFailure(err), errors.As(err, &aErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.Invalid("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid(name, fmt.Sprintf("%q is not a positive integer", raw))
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Invalid(name, "must be an integer")
	}
	return n, nil
}

func queryBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

package api

import (
	"fmt"
	"net/http"

	"github.com/felixgeelhaar/planllama/pkg/application"
)

type syncRequest struct {
	Force bool `json:"force"`
}

func (s *Server) syncOptions(r *http.Request) (application.SyncOptions, error) {
	var req syncRequest
	if err := decodeBody(r, &req); err != nil {
		return application.SyncOptions{}, err
	}
	return application.SyncOptions{Force: req.Force || queryBool(r, "force")}, nil
}

func (s *Server) handleSyncProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	opts, err := s.syncOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.services.Sync.SyncProject(r.Context(), id, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{
		"message": fmt.Sprintf("Synced %d items to Jira", len(res.TasksSynced)),
		"results": res,
	})
}

func (s *Server) handleSyncTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	opts, err := s.syncOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.services.Sync.SyncTask(r.Context(), id, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	msg := "Task synced to Jira: " + res.Key
	if res.Skipped {
		msg = "Task already synced: " + res.Key
	}
	writeOK(w, http.StatusOK, envelope{"message": msg, "result": res})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.services.Sync.RefreshStatusFromTracker(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Status updated from Jira: " + res.RemoteStatus, "result": res})
}

type transitionRequest struct {
	TransitionID string `json:"transition_id"`
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req transitionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.services.Sync.TransitionTask(r.Context(), id, req.TransitionID); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Transition applied"})
}

func (s *Server) handleSyncLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	logs, err := s.services.Sync.ListLogs(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"count": len(logs), "logs": logs})
}

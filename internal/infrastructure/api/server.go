// Package api serves the planllama HTTP API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/planllama/internal/infrastructure/wiring"
)

// RequestIDHeader carries the per-request id back to the caller.
const RequestIDHeader = "X-Request-ID"

// Server is the HTTP API server.
type Server struct {
	addr     string
	services *wiring.AppServices
	logger   *slog.Logger
	server   *http.Server
}

// NewServer creates a server bound to addr.
func NewServer(addr string, services *wiring.AppServices, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{addr: addr, services: services, logger: logger}
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("POST /api/projects", s.handleCreateProject)
	mux.HandleFunc("GET /api/projects/{id}", s.handleGetProject)
	mux.HandleFunc("PUT /api/projects/{id}", s.handleUpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", s.handleDeleteProject)
	mux.HandleFunc("POST /api/projects/{id}/team", s.handleAddTeamMember)

	mux.HandleFunc("GET /api/employees", s.handleListEmployees)
	mux.HandleFunc("POST /api/employees", s.handleCreateEmployee)
	mux.HandleFunc("GET /api/employees/{employee_id}", s.handleGetEmployee)
	mux.HandleFunc("PUT /api/employees/{employee_id}", s.handleUpdateEmployee)
	mux.HandleFunc("DELETE /api/employees/{employee_id}", s.handleDeleteEmployee)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PUT /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("POST /api/tasks/{id}/assign", s.handleAssignTask)
	mux.HandleFunc("PUT /api/tasks/{id}/status", s.handleUpdateTaskStatus)
	mux.HandleFunc("GET /api/tasks/{id}/candidates", s.handleCandidates)

	mux.HandleFunc("POST /api/jira/sync/project/{id}", s.handleSyncProject)
	mux.HandleFunc("POST /api/jira/sync/task/{id}", s.handleSyncTask)
	mux.HandleFunc("POST /api/jira/sync/status/{id}", s.handleSyncStatus)
	mux.HandleFunc("POST /api/jira/transition/{id}", s.handleTransition)
	mux.HandleFunc("GET /api/jira/logs", s.handleSyncLogs)
	mux.Handle("GET /api/jira/logs/stream", s.services.Events)

	mux.HandleFunc("POST /api/llm/analyze-project", s.handleAnalyzeProject)
	mux.HandleFunc("POST /api/llm/update-status", s.handleAssistantStatus)
	mux.HandleFunc("POST /api/llm/auto-assign", s.handleAutoAssign)
	mux.HandleFunc("POST /api/llm/generate-assignments", s.handleGenerateAssignments)

	return s.withRequestLog(mux)
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second,
	}

	s.logger.Info("api server starting", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach Flush on the wrapped writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, envelope{"status": "ok"})
}

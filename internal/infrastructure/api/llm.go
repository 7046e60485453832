package api

import (
	"net/http"

	"github.com/felixgeelhaar/planllama/pkg/application"
	"github.com/felixgeelhaar/planllama/pkg/domain"
)

type projectRequest struct {
	ProjectID int64 `json:"project_id"`
	Limit     *int  `json:"limit"`
}

func decodeProjectRequest(r *http.Request) (projectRequest, error) {
	var req projectRequest
	if err := decodeBody(r, &req); err != nil {
		return req, err
	}
	if req.ProjectID <= 0 {
		return req, domain.MissingField("project_id")
	}
	return req, nil
}

func (s *Server) handleAnalyzeProject(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProjectRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := s.services.Projects.AnalyzeProject(r.Context(), req.ProjectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"analysis": report})
}

func (s *Server) handleAssistantStatus(w http.ResponseWriter, r *http.Request) {
	var d application.StatusDecision
	if err := decodeBody(r, &d); err != nil {
		writeError(w, err)
		return
	}
	t, err := s.services.Assignment.UpdateStatusByAssistant(r.Context(), d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Task status updated", "task": t})
}

func (s *Server) handleAutoAssign(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProjectRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.services.Assignment.AutoAssign(r.Context(), req.ProjectID, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"assignments": res.Assignments, "summary": res.Summary})
}

func (s *Server) handleGenerateAssignments(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProjectRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.services.Assignment.GenerateAssignments(r.Context(), req.ProjectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"assignments": res.Assignments, "proposed": res.Proposed, "skipped": res.Skipped})
}

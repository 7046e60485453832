package api

import (
	"net/http"
	"strconv"

	"github.com/felixgeelhaar/planllama/pkg/application"
	"github.com/felixgeelhaar/planllama/pkg/domain"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := application.TaskQuery{
		Status:     r.URL.Query().Get("status"),
		AssigneeID: r.URL.Query().Get("assignee_id"),
	}
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, domain.Invalid("project_id", "must be an integer"))
			return
		}
		q.ProjectID = id
	}
	tasks, err := s.services.Tasks.ListTasks(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"count": len(tasks), "tasks": tasks})
}

type createTaskRequest struct {
	ProjectID int64 `json:"project_id"`
	application.TaskInput
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ProjectID <= 0 {
		writeError(w, domain.MissingField("project_id"))
		return
	}
	t, err := s.services.Tasks.CreateTask(r.Context(), req.ProjectID, req.TaskInput)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, envelope{"message": "Task created", "task": t})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := s.services.Tasks.GetTask(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"task": t})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var patch application.TaskPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	t, err := s.services.Tasks.UpdateTask(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Task updated", "task": t})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.services.Tasks.DeleteTask(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Task deleted"})
}

func (s *Server) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var in application.ManualAssignment
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	t, err := s.services.Tasks.AssignTask(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Task assigned", "task": t})
}

type statusRequest struct {
	Status string `json:"status_name"`
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := s.services.Tasks.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Task status updated", "task": t})
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := s.services.Assignment.RankCandidates(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"task_id": report.TaskID, "task_title": report.TaskTitle, "candidates": report.Candidates})
}

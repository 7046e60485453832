package api

import (
	"net/http"

	"github.com/felixgeelhaar/planllama/pkg/application"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.services.Projects.ListProjects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"count": len(projects), "projects": projects})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in application.ProjectInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.services.Projects.CreateProject(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, envelope{"message": "Project created", "project": p})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.services.Projects.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"project": p})
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var patch application.ProjectPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.services.Projects.UpdateProject(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Project updated", "project": p})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.services.Projects.DeleteProject(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Project deleted"})
}

type teamMemberRequest struct {
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role_in_project"`
}

func (s *Server) handleAddTeamMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req teamMemberRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.services.Projects.AddTeamMember(r.Context(), id, req.EmployeeID, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Team member added", "project": p})
}

// employeeRequest accepts skills as plain names or {name, level} objects.
type employeeRequest struct {
	team.Employee
	Skills application.SkillInput `json:"skills"`
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := s.services.Employees.ListEmployees(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"count": len(employees), "employees": employees})
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	e := req.Employee
	e.Skills = []team.Skill(req.Skills)
	created, err := s.services.Employees.CreateEmployee(r.Context(), &e)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, envelope{"message": "Employee created", "employee": created})
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := s.services.Employees.GetEmployee(r.Context(), r.PathValue("employee_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"employee": e})
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var patch application.EmployeePatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	e, err := s.services.Employees.UpdateEmployee(r.Context(), r.PathValue("employee_id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Employee updated", "employee": e})
}

func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Employees.DeleteEmployee(r.Context(), r.PathValue("employee_id")); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Employee deleted"})
}

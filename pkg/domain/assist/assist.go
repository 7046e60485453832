// Package assist defines the contract with the generative task-assist service.
package assist

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

// Member is a team member as shown to the assist service.
type Member struct {
	EmployeeID    string       `json:"employee_id"`
	Name          string       `json:"name"`
	Role          string       `json:"role,omitempty"`
	Skills        []team.Skill `json:"skills"`
	CapacityHours int          `json:"capacity_hours_per_week"`
	LoadHours     int          `json:"current_load_hours"`
}

// TaskView is a task as shown to the assist service.
type TaskView struct {
	TaskID         int      `json:"task_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	EpicName       string   `json:"epic_name,omitempty"`
	Priority       string   `json:"priority"`
	Status         string   `json:"status_name"`
	RequiredSkills []string `json:"required_skills"`
	Assigned       bool     `json:"assigned"`
}

// ProjectSnapshot is the request payload of GenerateAssignments.
type ProjectSnapshot struct {
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"project_title"`
	Description string     `json:"project_description,omitempty"`
	Team        []Member   `json:"team"`
	Tasks       []TaskView `json:"tasks"`
}

// ProposedAssignment pairs a task number with a team member's name.
type ProposedAssignment struct {
	TaskID       int    `json:"task_id"`
	AssigneeName string `json:"assignee_name"`
	Rationale    string `json:"rationale,omitempty"`
}

// Proposal is the response of GenerateAssignments.
type Proposal struct {
	Assignments []ProposedAssignment `json:"assignments"`
}

// Client calls the generative task-assist service.
type Client interface {
	GenerateAssignments(ctx context.Context, snapshot ProjectSnapshot) (*Proposal, error)
}

// Error is a failed assist call.
type Error struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("assist %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("assist %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Snapshot captures what the assist service needs to know about a project.
// The candidate team falls back to everyone when the project has no members.
func Snapshot(p *planning.Project, candidates []*team.Employee) ProjectSnapshot {
	snap := ProjectSnapshot{
		ProjectID:   p.ID,
		Title:       p.Title,
		Description: p.ProblemDescription,
		Team:        make([]Member, 0, len(candidates)),
		Tasks:       make([]TaskView, 0, len(p.Tasks)),
	}
	for _, e := range candidates {
		snap.Team = append(snap.Team, Member{
			EmployeeID:    e.ExternalID,
			Name:          e.Name,
			Role:          e.Role,
			Skills:        e.Skills,
			CapacityHours: e.CapacityHours,
			LoadHours:     e.CurrentLoadHours,
		})
	}
	for _, t := range p.Tasks {
		snap.Tasks = append(snap.Tasks, TaskView{
			TaskID:         t.Number,
			Title:          t.Title,
			Description:    t.Description,
			EpicName:       t.EpicName,
			Priority:       string(t.Priority),
			Status:         t.Status,
			RequiredSkills: t.RequiredSkills,
			Assigned:       t.IsAssigned(),
		})
	}
	return snap
}

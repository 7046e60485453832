package application

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

var errInvalidPriority = domain.Invalid("priority", "must be one of: high, medium, low")

// SkillInput accepts skills as plain names or as {name, level} objects.
// Plain names get the default level.
type SkillInput []team.Skill

func (s *SkillInput) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("skills must be a list: %w", err)
	}
	out := make([]team.Skill, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			out = append(out, team.SkillsFromNames([]string{name})...)
			continue
		}
		var skill team.Skill
		if err := json.Unmarshal(item, &skill); err != nil {
			return fmt.Errorf("invalid skill %s: %w", string(item), err)
		}
		if skill.Level == 0 {
			skill.Level = team.DefaultSkillLevel
		}
		out = append(out, skill)
	}
	*s = out
	return nil
}

// MemberInput places an employee on a project team, creating the employee
// when the external id is unknown.
type MemberInput struct {
	EmployeeID string     `json:"employee_id"`
	Name       string     `json:"name"`
	Role       string     `json:"role_in_project"`
	Department string     `json:"department"`
	Skills     SkillInput `json:"skills"`
}

// TaskInput creates a task. AssigneeID is an employee external id.
type TaskInput struct {
	TaskID         int                   `json:"task_id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	EpicName       string                `json:"epic_name"`
	Labels         []string              `json:"labels"`
	Priority       string                `json:"priority"`
	Status         string                `json:"status_name"`
	RequiredSkills []string              `json:"required_skills"`
	Dependencies   []planning.Dependency `json:"dependencies"`
	EstimatedTime  string                `json:"estimated_time"`
	DueDate        *time.Time            `json:"due_date"`
	AssigneeID     string                `json:"assignee_id"`
}

// ProjectInput creates a project with an optional inline team and tasks.
type ProjectInput struct {
	Title              string            `json:"project_title"`
	Index              int               `json:"index"`
	EstimatedTime      string            `json:"estimated_time"`
	Metadata           planning.Metadata `json:"metadata"`
	ProblemDescription string            `json:"project_description"`
	PossibleSolution   string            `json:"possible_solution"`
	TrackerProjectKey  string            `json:"jira_project_key"`
	Team               []MemberInput     `json:"team"`
	Tasks              []TaskInput       `json:"tasks"`
}

// ProjectPatch updates the fields that are set.
type ProjectPatch struct {
	Title              *string            `json:"project_title"`
	Index              *int               `json:"index"`
	EstimatedTime      *string            `json:"estimated_time"`
	Metadata           *planning.Metadata `json:"metadata"`
	ProblemDescription *string            `json:"project_description"`
	PossibleSolution   *string            `json:"possible_solution"`
	TrackerProjectKey  *string            `json:"jira_project_key"`
}

// EmployeePatch updates the fields that are set. The external id is immutable.
type EmployeePatch struct {
	Name             *string            `json:"name"`
	Role             *string            `json:"role"`
	Timezone         *string            `json:"timezone"`
	CapacityHours    *int               `json:"capacity_hours_per_week"`
	CurrentLoadHours *int               `json:"current_load_hours"`
	Skills           *SkillInput        `json:"skills"`
	Languages        *[]string          `json:"languages"`
	Integrations     *team.Integrations `json:"integrations"`
}

// TaskPatch updates the fields that are set.
type TaskPatch struct {
	TaskID         *int                   `json:"task_id"`
	Title          *string                `json:"title"`
	Description    *string                `json:"description"`
	EpicName       *string                `json:"epic_name"`
	Labels         *[]string              `json:"labels"`
	Priority       *string                `json:"priority"`
	Status         *string                `json:"status_name"`
	RequiredSkills *[]string              `json:"required_skills"`
	Dependencies   *[]planning.Dependency `json:"dependencies"`
	EstimatedTime  *string                `json:"estimated_time"`
	DueDate        *time.Time             `json:"due_date"`
}

// TaskQuery filters a task listing. AssigneeID is an employee external id.
type TaskQuery struct {
	ProjectID  int64
	Status     string
	AssigneeID string
}

func (in TaskInput) toTask(projectID int64) (planning.Task, error) {
	priority, err := planning.ParseTaskPriority(in.Priority)
	if err != nil {
		return planning.Task{}, errInvalidPriority
	}
	t := planning.Task{
		ProjectID:      projectID,
		Number:         in.TaskID,
		Title:          in.Title,
		Description:    in.Description,
		EpicName:       in.EpicName,
		Labels:         in.Labels,
		Priority:       priority,
		Status:         planning.CleanStatus(in.Status),
		RequiredSkills: in.RequiredSkills,
		Dependencies:   in.Dependencies,
		EstimatedTime:  in.EstimatedTime,
		DueDate:        in.DueDate,
	}
	t.ApplyDefaults()
	return t, nil
}

func (p ProjectPatch) apply(proj *planning.Project) {
	if p.Title != nil {
		proj.Title = *p.Title
	}
	if p.Index != nil {
		proj.Index = *p.Index
	}
	if p.EstimatedTime != nil {
		proj.EstimatedTime = *p.EstimatedTime
	}
	if p.Metadata != nil {
		proj.Metadata = *p.Metadata
	}
	if p.ProblemDescription != nil {
		proj.ProblemDescription = *p.ProblemDescription
	}
	if p.PossibleSolution != nil {
		proj.PossibleSolution = *p.PossibleSolution
	}
	if p.TrackerProjectKey != nil {
		proj.TrackerProjectKey = *p.TrackerProjectKey
	}
}

func (p EmployeePatch) apply(e *team.Employee) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Role != nil {
		e.Role = *p.Role
	}
	if p.Timezone != nil {
		e.Timezone = *p.Timezone
	}
	if p.CapacityHours != nil {
		e.CapacityHours = *p.CapacityHours
	}
	if p.CurrentLoadHours != nil {
		e.CurrentLoadHours = *p.CurrentLoadHours
	}
	if p.Skills != nil {
		e.Skills = []team.Skill(*p.Skills)
	}
	if p.Languages != nil {
		e.Languages = *p.Languages
	}
	if p.Integrations != nil {
		e.Integrations = *p.Integrations
	}
}

func (p TaskPatch) apply(t *planning.Task) error {
	if p.Priority != nil {
		priority, err := planning.ParseTaskPriority(*p.Priority)
		if err != nil {
			return errInvalidPriority
		}
		t.Priority = priority
	}
	if p.TaskID != nil {
		t.Number = *p.TaskID
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.EpicName != nil {
		t.EpicName = *p.EpicName
	}
	if p.Labels != nil {
		t.Labels = *p.Labels
	}
	if p.Status != nil {
		t.Status = planning.CleanStatus(*p.Status)
	}
	if p.RequiredSkills != nil {
		t.RequiredSkills = *p.RequiredSkills
	}
	if p.Dependencies != nil {
		t.Dependencies = *p.Dependencies
	}
	if p.EstimatedTime != nil {
		t.EstimatedTime = *p.EstimatedTime
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	t.ApplyDefaults()
	return nil
}

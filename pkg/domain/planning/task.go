package planning

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/planllama/pkg/domain"
)

// DecisionSource records who made an assignment or status decision.
type DecisionSource string

const (
	DecidedByAuto    DecisionSource = "auto"
	DecidedByManual  DecisionSource = "manual"
	DecidedByLLMAuto DecisionSource = "llm_auto"
	DecidedByLLM     DecisionSource = "llm"
)

// Dependency points at another task of the same project by task number.
type Dependency struct {
	TaskNumber int `json:"task_id"`
}

// Candidate is a stored assignee suggestion.
type Candidate struct {
	EmployeeID string  `json:"employee_id"`
	Score      float64 `json:"score"`
}

// Assignment links a task to the employee it was given to.
// EmployeeID is the surrogate key; ExternalID, Name and TrackerAccountID are
// a read view of the employee filled by the store.
type Assignment struct {
	EmployeeID       int64          `json:"-"`
	ExternalID       string         `json:"employee_id"`
	Name             string         `json:"name"`
	TrackerAccountID string         `json:"-"`
	Score            *float64       `json:"score"`
	DecidedBy        DecisionSource `json:"decided_by"`
	DecidedAt        time.Time      `json:"decided_at"`
	Rationale        string         `json:"rationale,omitempty"`
}

// RemoteLink mirrors the task's issue in the tracker.
type RemoteLink struct {
	IssueKey string     `json:"jira_issue_key,omitempty"`
	IssueID  string     `json:"jira_issue_id,omitempty"`
	Synced   bool       `json:"jira_synced"`
	SyncedAt *time.Time `json:"jira_sync_date,omitempty"`
}

// Task is a unit of work inside a project.
type Task struct {
	ID             int64        `json:"id"`
	ProjectID      int64        `json:"project_id"`
	Number         int          `json:"task_id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	EpicName       string       `json:"epic_name,omitempty"`
	Labels         []string     `json:"labels"`
	Priority       TaskPriority `json:"priority"`
	Status         string       `json:"status_name"`
	RequiredSkills []string     `json:"required_skills"`
	Dependencies   []Dependency `json:"dependencies"`
	Assignment     *Assignment  `json:"assignee,omitempty"`
	Candidates     []Candidate  `json:"assignee_candidates,omitempty"`
	RemoteLink
	EstimatedTime string     `json:"estimated_time,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsAssigned reports whether the task has an assignee.
func (t *Task) IsAssigned() bool {
	return t.Assignment != nil && t.Assignment.EmployeeID != 0
}

// Assign records an assignment. An empty status becomes assigned only when
// onlyIfEmpty is set; otherwise the status is overwritten.
func (t *Task) Assign(a Assignment, onlyIfEmpty bool) {
	t.Assignment = &a
	if !onlyIfEmpty || t.Status == "" {
		t.Status = StatusAssigned
	}
}

// ClearAssignment removes the assignee and the decision record with it.
func (t *Task) ClearAssignment() {
	t.Assignment = nil
}

// IsSynced reports whether a remote issue already mirrors the task.
func (t *Task) IsSynced() bool {
	return t.IssueKey != "" && t.Synced
}

// MarkSynced stores the remote issue reference.
func (t *Task) MarkSynced(key, id string, at time.Time) {
	t.IssueKey = key
	t.IssueID = id
	t.Synced = true
	t.SyncedAt = &at
}

// ApplyDefaults fills the creation-time defaults.
func (t *Task) ApplyDefaults() {
	if t.Priority == "" {
		t.Priority = DefaultTaskPriority()
	}
	if t.Status == "" {
		t.Status = StatusProposed
	}
	if t.Labels == nil {
		t.Labels = []string{}
	}
	if t.RequiredSkills == nil {
		t.RequiredSkills = []string{}
	}
	if t.Dependencies == nil {
		t.Dependencies = []Dependency{}
	}
}

// Validate checks the task before it reaches the store.
func (t *Task) Validate() error {
	if t.Number <= 0 {
		return domain.MissingField("task_id")
	}
	if t.ProjectID <= 0 {
		return domain.MissingField("project_id")
	}
	if strings.TrimSpace(t.Title) == "" {
		return domain.MissingField("title")
	}
	if t.Priority != "" && !t.Priority.IsValid() {
		return domain.Invalid("priority", "must be one of: high, medium, low")
	}
	if t.EstimatedTime != "" {
		if _, err := ParseEstimate(t.EstimatedTime); err != nil {
			return domain.Invalid("estimated_time", err.Error())
		}
	}
	for _, d := range t.Dependencies {
		if d.TaskNumber <= 0 {
			return domain.Invalid("dependencies", "task_id must be positive")
		}
		if d.TaskNumber == t.Number {
			return domain.Invalid("dependencies", "task cannot depend on itself")
		}
	}
	return nil
}

package planning

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

// Metadata is descriptive information about a project.
type Metadata struct {
	Description string   `json:"description,omitempty"`
	Company     string   `json:"company,omitempty"`
	Department  string   `json:"department,omitempty"`
	Year        int      `json:"year,omitempty"`
	Languages   []string `json:"languages"`
}

// Membership places an employee on a project team.
type Membership struct {
	EmployeeID int64          `json:"-"`
	Employee   *team.Employee `json:"-"`
	Role       string         `json:"role_in_project,omitempty"`
}

// MarshalJSON flattens the member's employee details.
func (m Membership) MarshalJSON() ([]byte, error) {
	out := struct {
		EmployeeID string       `json:"employee_id"`
		Name       string       `json:"name"`
		Role       string       `json:"role_in_project,omitempty"`
		Skills     []team.Skill `json:"skills"`
		Department string       `json:"department,omitempty"`
	}{Role: m.Role, Skills: []team.Skill{}}
	if m.Employee != nil {
		out.EmployeeID = m.Employee.ExternalID
		out.Name = m.Employee.Name
		out.Department = m.Employee.Role
		if m.Employee.Skills != nil {
			out.Skills = m.Employee.Skills
		}
	}
	return json.Marshal(out)
}

// Project groups a team and its tasks.
type Project struct {
	ID                 int64             `json:"id"`
	Title              string            `json:"project_title"`
	Index              int               `json:"index"`
	EstimatedTime      string            `json:"estimated_time,omitempty"`
	Metadata           Metadata          `json:"metadata"`
	ProblemDescription string            `json:"project_description,omitempty"`
	PossibleSolution   string            `json:"possible_solution,omitempty"`
	TrackerProjectKey  string            `json:"jira_project_key,omitempty"`
	Synced             bool              `json:"jira_synced"`
	SyncedAt           *time.Time        `json:"jira_sync_date,omitempty"`
	EpicKeys           map[string]string `json:"epic_keys,omitempty"`
	Members            []Membership      `json:"team"`
	Tasks              []Task            `json:"tasks"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// Validate checks the project before it reaches the store.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return domain.MissingField("project_title")
	}
	if p.EstimatedTime != "" {
		if _, err := ParseEstimate(p.EstimatedTime); err != nil {
			return domain.Invalid("estimated_time", err.Error())
		}
	}
	return nil
}

// TeamEmployees returns the employees behind the memberships.
func (p *Project) TeamEmployees() []*team.Employee {
	out := make([]*team.Employee, 0, len(p.Members))
	for _, m := range p.Members {
		if m.Employee != nil {
			out = append(out, m.Employee)
		}
	}
	return out
}

// HasMember reports whether the employee is on the team.
func (p *Project) HasMember(employeeID int64) bool {
	for _, m := range p.Members {
		if m.EmployeeID == employeeID {
			return true
		}
	}
	return false
}

// FindTask returns the task with the given task number.
func (p *Project) FindTask(number int) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].Number == number {
			return &p.Tasks[i]
		}
	}
	return nil
}

// EpicNames returns the distinct epic names in first-seen task order.
func (p *Project) EpicNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, t := range p.Tasks {
		if t.EpicName == "" {
			continue
		}
		if _, ok := seen[t.EpicName]; ok {
			continue
		}
		seen[t.EpicName] = struct{}{}
		names = append(names, t.EpicName)
	}
	return names
}

// EpicKey returns the remote key of an epic created by an earlier sync.
func (p *Project) EpicKey(name string) (string, bool) {
	key, ok := p.EpicKeys[name]
	return key, ok && key != ""
}

// SetEpicKey remembers the remote key of an epic.
func (p *Project) SetEpicKey(name, key string) {
	if p.EpicKeys == nil {
		p.EpicKeys = make(map[string]string)
	}
	p.EpicKeys[name] = key
}

// MarkSynced flags the project as mirrored.
func (p *Project) MarkSynced(at time.Time) {
	p.Synced = true
	p.SyncedAt = &at
}

package assignment

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

// Assignee identifies the employee a decision picked.
type Assignee struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
}

// Decision is one assignment made by AutoAssign.
type Decision struct {
	TaskID        int64    `json:"task_id"`
	TaskNumber    int      `json:"task_number"`
	TaskTitle     string   `json:"task_title"`
	Assignee      Assignee `json:"assignee"`
	Score         float64  `json:"score"`
	MatchedSkills []string `json:"matched_skills"`
}

// Summary counts the outcome of an auto-assign batch.
type Summary struct {
	AssignedCount       int `json:"assigned_count"`
	RemainingUnassigned int `json:"remaining_unassigned"`
}

// Result is the outcome of an auto-assign batch.
type Result struct {
	Assignments []Decision `json:"assignments"`
	Summary     Summary    `json:"summary"`
}

// Engine assigns unassigned tasks to the best scoring candidates.
type Engine struct {
	now func() time.Time
}

// NewEngine creates an engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// WithClock overrides the decision timestamp source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// CandidatePool returns the project's team, or everyone when the team is empty.
func CandidatePool(p *planning.Project, everyone []*team.Employee) []*team.Employee {
	if members := p.TeamEmployees(); len(members) > 0 {
		return members
	}
	return everyone
}

// Rationale explains an automatic decision.
func Rationale(matched []string) string {
	if len(matched) == 0 {
		return "Auto-assigned based on available capacity."
	}
	return "Auto-assigned on skill match (" + strings.Join(matched, ", ") + ") and available capacity."
}

// AutoAssign walks the project's tasks in stored order and assigns each
// unassigned one to the best candidate from pool. Already assigned tasks are
// never touched. When limit is non-nil, at most *limit assignments are made.
// The project's tasks are mutated in place.
func (e *Engine) AutoAssign(p *planning.Project, pool []*team.Employee, limit *int) Result {
	res := Result{Assignments: []Decision{}}

	for i := range p.Tasks {
		task := &p.Tasks[i]
		if task.IsAssigned() {
			continue
		}
		if limit != nil && len(res.Assignments) >= *limit {
			break
		}

		sel, ok := SelectBest(task, pool)
		if !ok {
			continue
		}

		score := sel.Score
		task.Assign(planning.Assignment{
			EmployeeID:       sel.Employee.ID,
			ExternalID:       sel.Employee.ExternalID,
			Name:             sel.Employee.Name,
			TrackerAccountID: sel.Employee.Integrations.TrackerAccountID,
			Score:            &score,
			DecidedBy:        planning.DecidedByLLMAuto,
			DecidedAt:        e.now().UTC(),
			Rationale:        Rationale(sel.MatchedSkills),
		}, true)

		res.Assignments = append(res.Assignments, Decision{
			TaskID:        task.ID,
			TaskNumber:    task.Number,
			TaskTitle:     task.Title,
			Assignee:      Assignee{EmployeeID: sel.Employee.ExternalID, Name: sel.Employee.Name},
			Score:         score,
			MatchedSkills: sel.MatchedSkills,
		})
	}

	res.Summary.AssignedCount = len(res.Assignments)
	for _, t := range p.Tasks {
		if !t.IsAssigned() {
			res.Summary.RemainingUnassigned++
		}
	}
	return res
}

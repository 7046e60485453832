package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/assignment"
	"github.com/felixgeelhaar/planllama/pkg/domain/assist"
	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/records"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

// AssignmentService runs the heuristic and generative assignment flows.
type AssignmentService struct {
	store  records.Store
	assist assist.Client
	engine *assignment.Engine
	logger *slog.Logger
	now    func() time.Time
}

// NewAssignmentService wires the service. A nil assist client disables
// GenerateAssignments.
func NewAssignmentService(store records.Store, assistClient assist.Client, logger *slog.Logger) *AssignmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssignmentService{
		store:  store,
		assist: assistClient,
		engine: assignment.NewEngine(),
		logger: logger,
		now:    time.Now,
	}
}

// AutoAssign assigns the project's unassigned tasks to the best scoring
// candidates in one transaction. A nil limit means no limit.
func (s *AssignmentService) AutoAssign(ctx context.Context, projectID int64, limit *int) (*assignment.Result, error) {
	if limit != nil && *limit < 0 {
		return nil, domain.Invalid("limit", "must not be negative")
	}

	var res assignment.Result
	err := s.store.Transact(ctx, func(repos records.Repositories) error {
		p, err := repos.Projects().Get(ctx, projectID)
		if err != nil {
			return err
		}
		everyone, err := repos.Employees().List(ctx)
		if err != nil {
			return err
		}

		res = s.engine.AutoAssign(p, assignment.CandidatePool(p, everyone), limit)

		changed := make(map[int64]struct{}, len(res.Assignments))
		for _, d := range res.Assignments {
			changed[d.TaskID] = struct{}{}
		}
		for i := range p.Tasks {
			if _, ok := changed[p.Tasks[i].ID]; !ok {
				continue
			}
			if err := repos.Tasks().Update(ctx, &p.Tasks[i]); err != nil {
				return fmt.Errorf("failed to save assignment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("auto-assign finished",
		"project_id", projectID,
		"assigned", res.Summary.AssignedCount,
		"remaining_unassigned", res.Summary.RemainingUnassigned)
	return &res, nil
}

// CandidateReport ranks every candidate for one task.
type CandidateReport struct {
	TaskID     int64                  `json:"task_id"`
	TaskNumber int                    `json:"task_number"`
	TaskTitle  string                 `json:"task_title"`
	Candidates []assignment.Breakdown `json:"candidates"`
}

// RankCandidates scores the task's candidate pool, best first.
func (s *AssignmentService) RankCandidates(ctx context.Context, taskID int64) (*CandidateReport, error) {
	t, err := s.store.Tasks().Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	p, err := s.store.Projects().Get(ctx, t.ProjectID)
	if err != nil {
		return nil, err
	}
	everyone, err := s.store.Employees().List(ctx)
	if err != nil {
		return nil, err
	}
	return &CandidateReport{
		TaskID:     t.ID,
		TaskNumber: t.Number,
		TaskTitle:  t.Title,
		Candidates: assignment.Rank(t, assignment.CandidatePool(p, everyone)),
	}, nil
}

// GeneratedAssignment is one proposal that was applied.
type GeneratedAssignment struct {
	TaskID     int64               `json:"task_id"`
	TaskNumber int                 `json:"task_number"`
	TaskTitle  string              `json:"task_title"`
	Assignee   assignment.Assignee `json:"assignee"`
	Rationale  string              `json:"rationale,omitempty"`
}

// GenerateResult is the outcome of a generative assignment run.
type GenerateResult struct {
	Assignments []GeneratedAssignment `json:"assignments"`
	Proposed    int                   `json:"proposed"`
	Skipped     int                   `json:"skipped"`
}

// GenerateAssignments asks the assist service for assignments and applies
// those naming a known task and a candidate by exact name. Other proposals
// and already assigned tasks are skipped.
func (s *AssignmentService) GenerateAssignments(ctx context.Context, projectID int64) (*GenerateResult, error) {
	if s.assist == nil {
		return nil, &assist.Error{Op: "generate assignments", Err: errors.New("assist service not configured")}
	}

	p, err := s.store.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	everyone, err := s.store.Employees().List(ctx)
	if err != nil {
		return nil, err
	}
	pool := assignment.CandidatePool(p, everyone)

	proposal, err := s.assist.GenerateAssignments(ctx, assist.Snapshot(p, pool))
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*team.Employee, len(pool))
	for _, e := range pool {
		if _, dup := byName[e.Name]; !dup {
			byName[e.Name] = e
		}
	}

	res := &GenerateResult{Assignments: []GeneratedAssignment{}, Proposed: len(proposal.Assignments)}
	now := s.now().UTC()
	err = s.store.Transact(ctx, func(repos records.Repositories) error {
		for _, pa := range proposal.Assignments {
			e, ok := byName[pa.AssigneeName]
			if !ok {
				res.Skipped++
				continue
			}
			t, err := repos.Tasks().GetByNumber(ctx, p.ID, pa.TaskID)
			if errors.Is(err, domain.ErrNotFound) {
				res.Skipped++
				continue
			}
			if err != nil {
				return err
			}
			if t.IsAssigned() {
				res.Skipped++
				continue
			}

			t.Assign(planning.Assignment{
				EmployeeID:       e.ID,
				ExternalID:       e.ExternalID,
				Name:             e.Name,
				TrackerAccountID: e.Integrations.TrackerAccountID,
				DecidedBy:        planning.DecidedByLLM,
				DecidedAt:        now,
				Rationale:        pa.Rationale,
			}, true)
			if err := repos.Tasks().Update(ctx, t); err != nil {
				return fmt.Errorf("failed to save assignment: %w", err)
			}
			res.Assignments = append(res.Assignments, GeneratedAssignment{
				TaskID:     t.ID,
				TaskNumber: t.Number,
				TaskTitle:  t.Title,
				Assignee:   assignment.Assignee{EmployeeID: e.ExternalID, Name: e.Name},
				Rationale:  pa.Rationale,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("generated assignments applied",
		"project_id", projectID, "proposed", res.Proposed, "applied", len(res.Assignments), "skipped", res.Skipped)
	return res, nil
}

// StatusDecision is a status change made by the assistant. The identifier
// (ID, else TaskID) is tried as a surrogate id first, then as a task number.
type StatusDecision struct {
	ID        int64                   `json:"id"`
	TaskID    int64                   `json:"task_id"`
	Status    string                  `json:"status_name"`
	DecidedBy planning.DecisionSource `json:"decided_by"`
	Rationale string                  `json:"rationale"`
}

// UpdateStatusByAssistant applies a status decision. The decision source and
// rationale are stored on the task's assignment, when it has one.
func (s *AssignmentService) UpdateStatusByAssistant(ctx context.Context, d StatusDecision) (*planning.Task, error) {
	ident := d.ID
	if ident <= 0 {
		ident = d.TaskID
	}
	if ident <= 0 {
		return nil, domain.MissingField("id")
	}
	status := planning.CleanStatus(d.Status)
	if status == "" {
		return nil, domain.MissingField("status_name")
	}
	if d.DecidedBy == "" {
		d.DecidedBy = planning.DecidedByLLM
	}

	var updated *planning.Task
	err := s.store.Transact(ctx, func(repos records.Repositories) error {
		t, err := repos.Tasks().Get(ctx, ident)
		if errors.Is(err, domain.ErrNotFound) {
			t, err = repos.Tasks().FindByNumber(ctx, int(ident))
		}
		if err != nil {
			return err
		}

		t.Status = status
		if t.IsAssigned() {
			t.Assignment.DecidedBy = d.DecidedBy
			t.Assignment.DecidedAt = s.now().UTC()
			if strings.TrimSpace(d.Rationale) != "" {
				t.Assignment.Rationale = d.Rationale
			}
		}
		if err := repos.Tasks().Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task status updated by assistant", "task_id", updated.ID, "status", status, "decided_by", d.DecidedBy)
	return updated, nil
}

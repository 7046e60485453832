package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/records"
)

// TaskService manages tasks and their manual assignment.
type TaskService struct {
	store  records.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewTaskService(store records.Store, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{store: store, logger: logger, now: time.Now}
}

// CreateTask adds a task to an existing project.
func (s *TaskService) CreateTask(ctx context.Context, projectID int64, in TaskInput) (*planning.Task, error) {
	t, err := in.toTask(projectID)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	err = s.store.Transact(ctx, func(repos records.Repositories) error {
		if _, err := repos.Projects().Get(ctx, projectID); err != nil {
			return err
		}
		if in.AssigneeID != "" {
			e, err := repos.Employees().GetByExternalID(ctx, in.AssigneeID)
			if err != nil {
				return err
			}
			t.Assign(manualAssignment(e, "", s.now().UTC()), true)
		}
		return repos.Tasks().Create(ctx, &t)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("task created", "task_id", t.ID, "project_id", projectID, "number", t.Number)
	return &t, nil
}

func (s *TaskService) GetTask(ctx context.Context, id int64) (*planning.Task, error) {
	return s.store.Tasks().Get(ctx, id)
}

// ListTasks filters tasks. An assignee filter naming an unknown employee
// matches nothing.
func (s *TaskService) ListTasks(ctx context.Context, q TaskQuery) ([]planning.Task, error) {
	filter := records.TaskFilter{ProjectID: q.ProjectID, Status: q.Status}
	if q.AssigneeID != "" {
		e, err := s.store.Employees().GetByExternalID(ctx, q.AssigneeID)
		if errors.Is(err, domain.ErrNotFound) {
			return []planning.Task{}, nil
		}
		if err != nil {
			return nil, err
		}
		filter.AssigneeID = e.ID
	}
	return s.store.Tasks().List(ctx, filter)
}

// UpdateTask applies a patch. The assignee is changed through AssignTask.
func (s *TaskService) UpdateTask(ctx context.Context, id int64, patch TaskPatch) (*planning.Task, error) {
	var updated *planning.Task
	err := s.store.Transact(ctx, func(repos records.Repositories) error {
		t, err := repos.Tasks().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := patch.apply(t); err != nil {
			return err
		}
		if err := t.Validate(); err != nil {
			return err
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
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	return s.store.Transact(ctx, func(repos records.Repositories) error {
		return repos.Tasks().Delete(ctx, id)
	})
}

// UpdateStatus sets a task's status. The name is normalized to the local form.
func (s *TaskService) UpdateStatus(ctx context.Context, id int64, status string) (*planning.Task, error) {
	status = planning.CleanStatus(status)
	if status == "" {
		return nil, domain.MissingField("status_name")
	}
	var updated *planning.Task
	err := s.store.Transact(ctx, func(repos records.Repositories) error {
		t, err := repos.Tasks().Get(ctx, id)
		if err != nil {
			return err
		}
		t.Status = status
		if err := repos.Tasks().Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ManualAssignment is a caller-made assignment decision.
type ManualAssignment struct {
	EmployeeID string                  `json:"employee_id"`
	DecidedBy  planning.DecisionSource `json:"decided_by"`
	Rationale  string                  `json:"rationale"`
	Score      *float64                `json:"score"`
}

// AssignTask assigns a task to an employee by external id. The status
// becomes assigned.
func (s *TaskService) AssignTask(ctx context.Context, id int64, in ManualAssignment) (*planning.Task, error) {
	if strings.TrimSpace(in.EmployeeID) == "" {
		return nil, domain.MissingField("employee_id")
	}
	var updated *planning.Task
	err := s.store.Transact(ctx, func(repos records.Repositories) error {
		t, err := repos.Tasks().Get(ctx, id)
		if err != nil {
			return err
		}
		e, err := repos.Employees().GetByExternalID(ctx, in.EmployeeID)
		if err != nil {
			return err
		}
		a := manualAssignment(e, in.Rationale, s.now().UTC())
		if in.DecidedBy != "" {
			a.DecidedBy = in.DecidedBy
		}
		a.Score = in.Score
		t.Assign(a, false)
		if err := repos.Tasks().Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("task assigned", "task_id", id, "employee_id", in.EmployeeID, "decided_by", updated.Assignment.DecidedBy)
	return updated, nil
}

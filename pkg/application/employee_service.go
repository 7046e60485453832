package application

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/planllama/pkg/domain/records"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

// EmployeeService manages the employee directory. Employees are addressed by
// their external id.
type EmployeeService struct {
	store  records.Store
	logger *slog.Logger
}

// NewEmployeeService wires the service. A nil logger uses slog.Default().
func NewEmployeeService(store records.Store, logger *slog.Logger) *EmployeeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmployeeService{store: store, logger: logger}
}

// CreateEmployee applies defaults, validates and stores e. A taken external
// id fails with domain.ErrConflict.
func (s *EmployeeService) CreateEmployee(ctx context.Context, e *team.Employee) (*team.Employee, error) {
	e.ApplyDefaults()
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Transact(ctx, func(repos records.Repositories) error {
		return repos.Employees().Create(ctx, e)
	}); err != nil {
		return nil, err
	}
	s.logger.Info("employee created", "employee_id", e.ExternalID)
	return e, nil
}

// GetEmployee looks an employee up by external id.
func (s *EmployeeService) GetEmployee(ctx context.Context, externalID string) (*team.Employee, error) {
	return s.store.Employees().GetByExternalID(ctx, externalID)
}

// ListEmployees returns the whole directory.
func (s *EmployeeService) ListEmployees(ctx context.Context) ([]*team.Employee, error) {
	return s.store.Employees().List(ctx)
}

// UpdateEmployee applies the patch and revalidates before saving.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, externalID string, patch EmployeePatch) (*team.Employee, error) {
	var updated *team.Employee
	err := s.store.Transact(ctx, func(repos records.Repositories) error {
		e, err := repos.Employees().GetByExternalID(ctx, externalID)
		if err != nil {
			return err
		}
		patch.apply(e)
		e.ApplyDefaults()
		if err := e.Validate(); err != nil {
			return err
		}
		if err := repos.Employees().Update(ctx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteEmployee removes the employee, clearing their task assignments.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, externalID string) error {
	err := s.store.Transact(ctx, func(repos records.Repositories) error {
		e, err := repos.Employees().GetByExternalID(ctx, externalID)
		if err != nil {
			return err
		}
		return repos.Employees().Delete(ctx, e.ID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("employee deleted", "employee_id", externalID)
	return nil
}

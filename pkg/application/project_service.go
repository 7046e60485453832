package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/analysis"
	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/records"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

// ProjectService manages projects, their teams and inline tasks.
type ProjectService struct {
	store  records.Store
	logger *slog.Logger
}

func NewProjectService(store records.Store, logger *slog.Logger) *ProjectService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectService{store: store, logger: logger}
}

// CreateProject stores a project with its inline team and tasks in one
// transaction. Unknown team members are created on the fly.
func (s *ProjectService) CreateProject(ctx context.Context, in ProjectInput) (*planning.Project, error) {
	p := &planning.Project{
		Title:              strings.TrimSpace(in.Title),
		Index:              in.Index,
		EstimatedTime:      in.EstimatedTime,
		Metadata:           in.Metadata,
		ProblemDescription: in.ProblemDescription,
		PossibleSolution:   in.PossibleSolution,
		TrackerProjectKey:  in.TrackerProjectKey,
	}
	if p.Metadata.Languages == nil {
		p.Metadata.Languages = []string{}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var created *planning.Project
	err := s.store.Transact(ctx, func(repos records.Repositories) error {
		if p.Index == 0 {
			existing, err := repos.Projects().List(ctx)
			if err != nil {
				return err
			}
			p.Index = len(existing) + 1
		}

		seen := make(map[int64]struct{})
		for _, m := range in.Team {
			e, err := findOrCreateEmployee(ctx, repos.Employees(), m)
			if err != nil {
				return err
			}
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			p.Members = append(p.Members, planning.Membership{EmployeeID: e.ID, Employee: e, Role: m.Role})
		}
		if err := repos.Projects().Create(ctx, p); err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, ti := range in.Tasks {
			t, err := ti.toTask(p.ID)
			if err != nil {
				return err
			}
			if ti.AssigneeID != "" {
				e, err := repos.Employees().GetByExternalID(ctx, ti.AssigneeID)
				if err != nil {
					return err
				}
				t.Assign(manualAssignment(e, "", now), true)
			}
			if err := t.Validate(); err != nil {
				return err
			}
			if err := repos.Tasks().Create(ctx, &t); err != nil {
				return err
			}
		}

		var err error
		created, err = repos.Projects().Get(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project created", "project_id", created.ID, "members", len(created.Members), "tasks", len(created.Tasks))
	return created, nil
}

// findOrCreateEmployee resolves a team member by external id and creates the
// employee when it does not exist yet.
func findOrCreateEmployee(ctx context.Context, employees records.EmployeeRepository, m MemberInput) (*team.Employee, error) {
	if strings.TrimSpace(m.EmployeeID) == "" {
		return nil, domain.MissingField("team.employee_id")
	}
	e, err := employees.GetByExternalID(ctx, m.EmployeeID)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	e = &team.Employee{
		ExternalID: m.EmployeeID,
		Name:       m.Name,
		Role:       m.Department,
		Skills:     []team.Skill(m.Skills),
	}
	e.ApplyDefaults()
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := employees.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id int64) (*planning.Project, error) {
	return s.store.Projects().Get(ctx, id)
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]planning.Project, error) {
	return s.store.Projects().List(ctx)
}

// UpdateProject applies a patch to the project's own fields.
func (s *ProjectService) UpdateProject(ctx context.Context, id int64, patch ProjectPatch) (*planning.Project, error) {
	var updated *planning.Project
	err := s.store.Transact(ctx, func(repos records.Repositories) error {
		p, err := repos.Projects().Get(ctx, id)
		if err != nil {
			return err
		}
		patch.apply(p)
		if err := p.Validate(); err != nil {
			return err
		}
		if err := repos.Projects().Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProject removes the project with its tasks and memberships.
func (s *ProjectService) DeleteProject(ctx context.Context, id int64) error {
	if err := s.store.Transact(ctx, func(repos records.Repositories) error {
		return repos.Projects().Delete(ctx, id)
	}); err != nil {
		return err
	}
	s.logger.Info("project deleted", "project_id", id)
	return nil
}

// AddTeamMember puts an existing employee on the project team.
func (s *ProjectService) AddTeamMember(ctx context.Context, projectID int64, externalID, role string) (*planning.Project, error) {
	var updated *planning.Project
	err := s.store.Transact(ctx, func(repos records.Repositories) error {
		if _, err := repos.Projects().Get(ctx, projectID); err != nil {
			return err
		}
		e, err := repos.Employees().GetByExternalID(ctx, externalID)
		if err != nil {
			return err
		}
		if err := repos.Projects().AddMember(ctx, projectID, planning.Membership{EmployeeID: e.ID, Role: role}); err != nil {
			return err
		}
		updated, err = repos.Projects().Get(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AnalyzeProject reports coverage, risks and recommendations for a project.
func (s *ProjectService) AnalyzeProject(ctx context.Context, id int64) (*analysis.Report, error) {
	p, err := s.store.Projects().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	report := analysis.Analyze(p)
	return &report, nil
}

func manualAssignment(e *team.Employee, rationale string, at time.Time) planning.Assignment {
	return planning.Assignment{
		EmployeeID:       e.ID,
		ExternalID:       e.ExternalID,
		Name:             e.Name,
		TrackerAccountID: e.Integrations.TrackerAccountID,
		DecidedBy:        planning.DecidedByManual,
		DecidedAt:        at,
		Rationale:        rationale,
	}
}

// Package records defines the persistence ports for projects, employees,
// tasks and sync logs.
package records

import (
	"context"
	"time"

	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/synclog"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

// Sync log page sizes.
const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500
)

// ClampLogLimit applies the default and the cap to a requested page size.
func ClampLogLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLogLimit
	case limit > MaxLogLimit:
		return MaxLogLimit
	default:
		return limit
	}
}

// ProjectRepository persists projects. Loaded projects carry their members
// (with employees) and their tasks in ascending id order.
type ProjectRepository interface {
	// Create inserts the project with its members and tasks.
	Create(ctx context.Context, p *planning.Project) error
	Get(ctx context.Context, id int64) (*planning.Project, error)
	List(ctx context.Context) ([]planning.Project, error)
	// Update writes the project's own fields. Members and tasks are untouched.
	Update(ctx context.Context, p *planning.Project) error
	// Delete removes the project with its tasks and memberships.
	Delete(ctx context.Context, id int64) error
	AddMember(ctx context.Context, projectID int64, m planning.Membership) error
	// RecordSync sets the synced flag and time and merges epicKeys into the
	// stored epic map. No other column is written.
	RecordSync(ctx context.Context, id int64, at time.Time, epicKeys map[string]string) error
}

// EmployeeRepository persists employees.
type EmployeeRepository interface {
	// Create fails with domain.ErrConflict when the external id is taken.
	Create(ctx context.Context, e *team.Employee) error
	Get(ctx context.Context, id int64) (*team.Employee, error)
	GetByExternalID(ctx context.Context, externalID string) (*team.Employee, error)
	List(ctx context.Context) ([]*team.Employee, error)
	Update(ctx context.Context, e *team.Employee) error
	// Delete removes the employee, clears their assignments and drops their memberships.
	Delete(ctx context.Context, id int64) error
}

// TaskFilter narrows a task listing. Zero values do not filter.
type TaskFilter struct {
	ProjectID  int64
	Status     string
	AssigneeID int64
}

// TaskRepository persists tasks.
type TaskRepository interface {
	// Create fails with domain.ErrConflict when the task number is taken in the project.
	Create(ctx context.Context, t *planning.Task) error
	Get(ctx context.Context, id int64) (*planning.Task, error)
	GetByNumber(ctx context.Context, projectID int64, number int) (*planning.Task, error)
	// FindByNumber returns the lowest-id task with the number in any project.
	FindByNumber(ctx context.Context, number int) (*planning.Task, error)
	List(ctx context.Context, f TaskFilter) ([]planning.Task, error)
	Update(ctx context.Context, t *planning.Task) error
	// MarkSynced writes only the remote key, remote id, synced flag and time.
	MarkSynced(ctx context.Context, id int64, key, issueID string, at time.Time) error
	// SetStatus writes only the status name.
	SetStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

// SyncLogRepository appends and reads sync log entries.
type SyncLogRepository interface {
	Append(ctx context.Context, e *synclog.Entry) error
	Get(ctx context.Context, id int64) (*synclog.Entry, error)
	// Conclude persists a concluded entry. Only in_progress rows are updated.
	Conclude(ctx context.Context, e *synclog.Entry) error
	// List returns entries newest first.
	List(ctx context.Context, limit int) ([]synclog.Entry, error)
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories interface {
	Projects() ProjectRepository
	Employees() EmployeeRepository
	Tasks() TaskRepository
	SyncLogs() SyncLogRepository
}

// Store is the record store. Transact runs fn in one transaction and rolls
// back when fn returns an error.
type Store interface {
	Repositories
	Transact(ctx context.Context, fn func(Repositories) error) error
	Close() error
}

// Package storage implements the record store on gorm with a pure-Go SQLite driver.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/records"
)

// DefaultDSN is the database used when none is configured.
const DefaultDSN = "planllama.db"

// Store is the gorm-backed records.Store.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
	repos
}

var _ records.Store = (*Store)(nil)

// NormalizeDSN strips SQLAlchemy-style "sqlite:///" prefixes so database
// URLs from older deployments keep working.
func NormalizeDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	for _, prefix := range []string{"sqlite:///", "sqlite://"} {
		if strings.HasPrefix(dsn, prefix) {
			dsn = strings.TrimPrefix(dsn, prefix)
			break
		}
	}
	if dsn == "" {
		return DefaultDSN
	}
	return dsn
}

// Open connects to the database and migrates the schema.
func Open(dsn string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := gorm.Open(sqlite.Open(NormalizeDSN(dsn)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		// Ownership cascades are done explicitly in the repositories.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	// SQLite serializes writers; one connection also keeps :memory: databases shared.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&employeeRow{}, &projectRow{}, &memberRow{}, &taskRow{}, &syncLogRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Debug("record store opened", "dsn", NormalizeDSN(dsn))
	return &Store{db: db, logger: log, repos: repos{db: db}}, nil
}

// Transact runs fn inside one database transaction.
func (s *Store) Transact(ctx context.Context, fn func(records.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos{db: tx})
	})
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type repos struct {
	db *gorm.DB
}

func (r repos) Projects() records.ProjectRepository   { return &projectRepo{db: r.db} }
func (r repos) Employees() records.EmployeeRepository { return &employeeRepo{db: r.db} }
func (r repos) Tasks() records.TaskRepository         { return &taskRepo{db: r.db} }
func (r repos) SyncLogs() records.SyncLogRepository   { return &syncLogRepo{db: r.db} }

// notFound maps gorm's missing-row error to the domain error.
func notFound(err error, entity string, key any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(entity, key)
	}
	return err
}

// conflict maps unique violations to the domain error.
func conflict(err error, entity string, key any) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique constraint") {
		return domain.Conflict(entity, key)
	}
	return err
}

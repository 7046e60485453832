package storage

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/records"
	"github.com/felixgeelhaar/planllama/pkg/domain/synclog"
)

type syncLogRepo struct {
	db *gorm.DB
}

func (r *syncLogRepo) Append(ctx context.Context, e *synclog.Entry) error {
	row := fromSyncLog(e)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append sync log: %w", err)
	}
	e.ID, e.CreatedAt = row.ID, row.CreatedAt
	return nil
}

func (r *syncLogRepo) Get(ctx context.Context, id int64) (*synclog.Entry, error) {
	var row syncLogRow
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, notFound(err, "sync log", id)
	}
	e := toSyncLog(&row)
	return &e, nil
}

func (r *syncLogRepo) Conclude(ctx context.Context, e *synclog.Entry) error {
	if !e.Status.IsFinal() {
		return domain.Invalid("status", "sync log must be concluded with a final status")
	}
	db := r.db.WithContext(ctx)

	res := db.Model(&syncLogRow{}).
		Where("id = ? AND status = ?", e.ID, string(synclog.StatusInProgress)).
		Updates(map[string]any{
			"status":        string(e.Status),
			"details":       datatypes.JSON(e.Details),
			"error_message": e.ErrorMessage,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to conclude sync log: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, e.ID); err != nil {
			return err
		}
		return synclog.ErrAlreadyConcluded
	}
	return nil
}

func (r *syncLogRepo) List(ctx context.Context, limit int) ([]synclog.Entry, error) {
	var rows []syncLogRow
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(records.ClampLogLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sync logs: %w", err)
	}
	out := make([]synclog.Entry, 0, len(rows))
	for i := range rows {
		out = append(out, toSyncLog(&rows[i]))
	}
	return out, nil
}

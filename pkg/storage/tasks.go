package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/records"
)

type taskRepo struct {
	db *gorm.DB
}

func (r *taskRepo) Create(ctx context.Context, t *planning.Task) error {
	db := r.db.WithContext(ctx)
	key := fmt.Sprintf("%d/%d", t.ProjectID, t.Number)

	var count int64
	if err := db.Model(&taskRow{}).
		Where("project_id = ? AND task_id = ?", t.ProjectID, t.Number).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check task: %w", err)
	}
	if count > 0 {
		return domain.Conflict("task", key)
	}

	row := fromTask(t)
	if err := db.Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", conflict(err, "task", key))
	}
	t.ID, t.CreatedAt, t.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *taskRepo) Get(ctx context.Context, id int64) (*planning.Task, error) {
	var row taskRow
	if err := r.db.WithContext(ctx).Preload("Assignee").First(&row, id).Error; err != nil {
		return nil, notFound(err, "task", id)
	}
	t := toTask(&row)
	return &t, nil
}

func (r *taskRepo) GetByNumber(ctx context.Context, projectID int64, number int) (*planning.Task, error) {
	var row taskRow
	err := r.db.WithContext(ctx).Preload("Assignee").
		Where("project_id = ? AND task_id = ?", projectID, number).
		First(&row).Error
	if err != nil {
		return nil, notFound(err, "task", fmt.Sprintf("%d/%d", projectID, number))
	}
	t := toTask(&row)
	return &t, nil
}

func (r *taskRepo) FindByNumber(ctx context.Context, number int) (*planning.Task, error) {
	var row taskRow
	err := r.db.WithContext(ctx).Preload("Assignee").
		Where("task_id = ?", number).
		Order("id ASC").
		First(&row).Error
	if err != nil {
		return nil, notFound(err, "task", number)
	}
	t := toTask(&row)
	return &t, nil
}

func (r *taskRepo) List(ctx context.Context, f records.TaskFilter) ([]planning.Task, error) {
	q := r.db.WithContext(ctx).Preload("Assignee")
	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.Status != "" {
		q = q.Where("status_name = ?", f.Status)
	}
	if f.AssigneeID != 0 {
		q = q.Where("assignee_id = ?", f.AssigneeID)
	}

	var rows []taskRow
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	out := make([]planning.Task, 0, len(rows))
	for i := range rows {
		out = append(out, toTask(&rows[i]))
	}
	return out, nil
}

func (r *taskRepo) Update(ctx context.Context, t *planning.Task) error {
	db := r.db.WithContext(ctx)

	var existing taskRow
	if err := db.Select("id", "project_id", "task_id").First(&existing, t.ID).Error; err != nil {
		return notFound(err, "task", t.ID)
	}
	if existing.TaskNumber != t.Number || existing.ProjectID != t.ProjectID {
		var count int64
		if err := db.Model(&taskRow{}).
			Where("project_id = ? AND task_id = ? AND id <> ?", t.ProjectID, t.Number, t.ID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check task: %w", err)
		}
		if count > 0 {
			return domain.Conflict("task", fmt.Sprintf("%d/%d", t.ProjectID, t.Number))
		}
	}

	row := fromTask(t)
	if err := db.Omit(clause.Associations).Save(&row).Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	t.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *taskRepo) MarkSynced(ctx context.Context, id int64, key, issueID string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&taskRow{ID: id}).
		Select("JiraIssueKey", "JiraIssueID", "JiraSynced", "JiraSyncDate").
		Updates(&taskRow{JiraIssueKey: key, JiraIssueID: issueID, JiraSynced: true, JiraSyncDate: &at})
	if res.Error != nil {
		return fmt.Errorf("failed to mark task synced: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("task", id)
	}
	return nil
}

func (r *taskRepo) SetStatus(ctx context.Context, id int64, status string) error {
	res := r.db.WithContext(ctx).Model(&taskRow{ID: id}).
		Select("StatusName").
		Updates(&taskRow{StatusName: status})
	if res.Error != nil {
		return fmt.Errorf("failed to set task status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("task", id)
	}
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&taskRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("task", id)
	}
	return nil
}

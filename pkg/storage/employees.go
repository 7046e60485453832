package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

type employeeRepo struct {
	db *gorm.DB
}

func (r *employeeRepo) Create(ctx context.Context, e *team.Employee) error {
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&employeeRow{}).Where("employee_id = ?", e.ExternalID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check employee: %w", err)
	}
	if count > 0 {
		return domain.Conflict("employee", e.ExternalID)
	}

	row := fromEmployee(e)
	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create employee: %w", conflict(err, "employee", e.ExternalID))
	}
	e.ID, e.CreatedAt, e.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *employeeRepo) Get(ctx context.Context, id int64) (*team.Employee, error) {
	var row employeeRow
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, notFound(err, "employee", id)
	}
	return toEmployee(&row), nil
}

func (r *employeeRepo) GetByExternalID(ctx context.Context, externalID string) (*team.Employee, error) {
	var row employeeRow
	if err := r.db.WithContext(ctx).Where("employee_id = ?", externalID).First(&row).Error; err != nil {
		return nil, notFound(err, "employee", externalID)
	}
	return toEmployee(&row), nil
}

func (r *employeeRepo) List(ctx context.Context) ([]*team.Employee, error) {
	var rows []employeeRow
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	out := make([]*team.Employee, 0, len(rows))
	for i := range rows {
		out = append(out, toEmployee(&rows[i]))
	}
	return out, nil
}

func (r *employeeRepo) Update(ctx context.Context, e *team.Employee) error {
	db := r.db.WithContext(ctx)
	if _, err := r.Get(ctx, e.ID); err != nil {
		return err
	}
	row := fromEmployee(e)
	if err := db.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to update employee: %w", conflict(err, "employee", e.ExternalID))
	}
	e.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *employeeRepo) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}

	reset := map[string]any{
		"assignee_id":    nil,
		"assignee_score": nil,
		"decided_by":     "",
		"decided_at":     nil,
		"rationale":      "",
	}
	if err := db.Model(&taskRow{}).Where("assignee_id = ?", id).Updates(reset).Error; err != nil {
		return fmt.Errorf("failed to clear assignments: %w", err)
	}
	if err := db.Where("employee_id = ?", id).Delete(&memberRow{}).Error; err != nil {
		return fmt.Errorf("failed to remove memberships: %w", err)
	}
	if err := db.Delete(&employeeRow{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

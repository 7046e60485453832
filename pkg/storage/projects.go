package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
)

type projectRepo struct {
	db *gorm.DB
}

// withGraph preloads members with their employees and tasks with their assignees.
func withGraph(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("project_team_members.id ASC") }).
		Preload("Members.Employee").
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("tasks.id ASC") }).
		Preload("Tasks.Assignee")
}

func (r *projectRepo) Create(ctx context.Context, p *planning.Project) error {
	db := r.db.WithContext(ctx)

	row := fromProject(p)
	if err := db.Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	p.ID, p.CreatedAt, p.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt

	for _, m := range p.Members {
		if err := r.AddMember(ctx, p.ID, m); err != nil {
			return err
		}
	}

	tasks := &taskRepo{db: r.db}
	for i := range p.Tasks {
		p.Tasks[i].ProjectID = p.ID
		if err := tasks.Create(ctx, &p.Tasks[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *projectRepo) Get(ctx context.Context, id int64) (*planning.Project, error) {
	var row projectRow
	if err := withGraph(r.db.WithContext(ctx)).First(&row, id).Error; err != nil {
		return nil, notFound(err, "project", id)
	}
	return toProject(&row), nil
}

func (r *projectRepo) List(ctx context.Context) ([]planning.Project, error) {
	var rows []projectRow
	if err := withGraph(r.db.WithContext(ctx)).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	out := make([]planning.Project, 0, len(rows))
	for i := range rows {
		out = append(out, *toProject(&rows[i]))
	}
	return out, nil
}

func (r *projectRepo) Update(ctx context.Context, p *planning.Project) error {
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&projectRow{}).Where("id = ?", p.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	if count == 0 {
		return domain.NotFound("project", p.ID)
	}

	row := fromProject(p)
	if err := db.Omit(clause.Associations).Save(&row).Error; err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	p.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *projectRepo) RecordSync(ctx context.Context, id int64, at time.Time, epicKeys map[string]string) error {
	db := r.db.WithContext(ctx)

	var current projectRow
	if err := db.Select("id", "epic_keys").First(&current, id).Error; err != nil {
		return notFound(err, "project", id)
	}
	merged := make(map[string]string, len(current.EpicKeys)+len(epicKeys))
	for name, key := range current.EpicKeys {
		merged[name] = key
	}
	for name, key := range epicKeys {
		merged[name] = key
	}

	err := db.Model(&projectRow{ID: id}).
		Select("JiraSynced", "JiraSyncDate", "EpicKeys").
		Updates(&projectRow{JiraSynced: true, JiraSyncDate: &at, EpicKeys: merged}).Error
	if err != nil {
		return fmt.Errorf("failed to record project sync: %w", err)
	}
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)

	res := db.Delete(&projectRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete project: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("project", id)
	}
	if err := db.Where("project_id = ?", id).Delete(&taskRow{}).Error; err != nil {
		return fmt.Errorf("failed to delete project tasks: %w", err)
	}
	if err := db.Where("project_id = ?", id).Delete(&memberRow{}).Error; err != nil {
		return fmt.Errorf("failed to delete project members: %w", err)
	}
	return nil
}

func (r *projectRepo) AddMember(ctx context.Context, projectID int64, m planning.Membership) error {
	db := r.db.WithContext(ctx)

	employeeID := m.EmployeeID
	if employeeID == 0 && m.Employee != nil {
		employeeID = m.Employee.ID
	}
	if employeeID == 0 {
		return domain.MissingField("employee_id")
	}

	var count int64
	if err := db.Model(&memberRow{}).
		Where("project_id = ? AND employee_id = ?", projectID, employeeID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if count > 0 {
		return domain.Conflict("team member", employeeID)
	}

	row := memberRow{ProjectID: projectID, EmployeeID: employeeID, RoleInProject: m.Role}
	if err := db.Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to add team member: %w", conflict(err, "team member", employeeID))
	}
	return nil
}

package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/planllama/pkg/application"
	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

func TestTaskService_CRUD(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	projects := application.NewProjectService(store, nil)
	svc := application.NewTaskService(store, nil)
	pid := mustCreateProject(t, projects, application.ProjectInput{Title: "Portal"})

	task, err := svc.CreateTask(ctx, pid, application.TaskInput{TaskID: 1, Title: "API", EstimatedTime: "P2D"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Status != planning.StatusProposed || task.Priority != planning.PriorityMedium {
		t.Errorf("defaults not applied: %+v", task)
	}

	if _, err := svc.CreateTask(ctx, pid, application.TaskInput{TaskID: 1, Title: "again"}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
	if _, err := svc.CreateTask(ctx, 404, application.TaskInput{TaskID: 1, Title: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found for unknown project, got %v", err)
	}
	if _, err := svc.CreateTask(ctx, pid, application.TaskInput{TaskID: 2}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for missing title, got %v", err)
	}
	if _, err := svc.CreateTask(ctx, pid, application.TaskInput{TaskID: 2, Title: "x", EstimatedTime: "soon"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for bad estimate, got %v", err)
	}

	title, priority := "API v2", "low"
	updated, err := svc.UpdateTask(ctx, task.ID, application.TaskPatch{Title: &title, Priority: &priority})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if updated.Title != title || updated.Priority != planning.PriorityLow {
		t.Errorf("patch not applied: %+v", updated)
	}

	bad := "critical"
	if _, err := svc.UpdateTask(ctx, task.ID, application.TaskPatch{Priority: &bad}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	status, err := svc.UpdateStatus(ctx, task.ID, "In Progress")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if status.Status != planning.StatusInProgress {
		t.Errorf("expected in_progress, got %q", status.Status)
	}

	if err := svc.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if _, err := svc.GetTask(ctx, task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestTaskService_AssignAndFilter(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	employees := application.NewEmployeeService(store, nil)
	projects := application.NewProjectService(store, nil)
	svc := application.NewTaskService(store, nil)

	mustCreateEmployee(t, employees, &team.Employee{ExternalID: "e1", Name: "Ana"})
	mustCreateEmployee(t, employees, &team.Employee{ExternalID: "e2", Name: "Bo"})
	p, err := projects.CreateProject(ctx, application.ProjectInput{
		Title: "Portal",
		Tasks: []application.TaskInput{{TaskID: 1, Title: "a"}, {TaskID: 2, Title: "b"}},
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	task, err := svc.AssignTask(ctx, p.Tasks[0].ID, application.ManualAssignment{EmployeeID: "e2", Rationale: "owner"})
	if err != nil {
		t.Fatalf("AssignTask failed: %v", err)
	}
	if task.Status != planning.StatusAssigned || task.Assignment.DecidedBy != planning.DecidedByManual {
		t.Errorf("unexpected assignment: status %q, %+v", task.Status, task.Assignment)
	}

	if _, err := svc.AssignTask(ctx, p.Tasks[1].ID, application.ManualAssignment{EmployeeID: "e404"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := svc.AssignTask(ctx, p.Tasks[1].ID, application.ManualAssignment{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	tests := []struct {
		name  string
		query application.TaskQuery
		want  int
	}{
		{"all", application.TaskQuery{}, 2},
		{"by project", application.TaskQuery{ProjectID: p.ID}, 2},
		{"by status", application.TaskQuery{Status: planning.StatusAssigned}, 1},
		{"by assignee", application.TaskQuery{AssigneeID: "e2"}, 1},
		{"assignee without tasks", application.TaskQuery{AssigneeID: "e1"}, 0},
		{"unknown assignee", application.TaskQuery{AssigneeID: "e404"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := svc.ListTasks(ctx, tt.query)
			if err != nil {
				t.Fatalf("ListTasks failed: %v", err)
			}
			if len(tasks) != tt.want {
				t.Errorf("expected %d tasks, got %d", tt.want, len(tasks))
			}
		})
	}
}

func TestEmployeeService(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	svc := application.NewEmployeeService(store, nil)

	e := mustCreateEmployee(t, svc, &team.Employee{ExternalID: "e1", Name: "Ana"})
	if e.CapacityHours != team.DefaultCapacityHours {
		t.Errorf("expected default capacity, got %d", e.CapacityHours)
	}

	tests := []struct {
		name   string
		in     *team.Employee
		target error
	}{
		{"duplicate", &team.Employee{ExternalID: "e1", Name: "Other"}, domain.ErrConflict},
		{"bad id", &team.Employee{ExternalID: "x1", Name: "Other"}, domain.ErrValidation},
		{"missing name", &team.Employee{ExternalID: "e2"}, domain.ErrValidation},
		{"bad skill level", &team.Employee{ExternalID: "e3", Name: "C", Skills: []team.Skill{{Name: "go", Level: 9}}}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateEmployee(ctx, tt.in); !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}

	load := 12
	updated, err := svc.UpdateEmployee(ctx, "e1", application.EmployeePatch{CurrentLoadHours: &load})
	if err != nil {
		t.Fatalf("UpdateEmployee failed: %v", err)
	}
	if updated.CurrentLoadHours != 12 {
		t.Errorf("expected load 12, got %d", updated.CurrentLoadHours)
	}

	if err := svc.DeleteEmployee(ctx, "e1"); err != nil {
		t.Fatalf("DeleteEmployee failed: %v", err)
	}
	if _, err := svc.GetEmployee(ctx, "e1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	list, err := svc.ListEmployees(ctx)
	if err != nil {
		t.Fatalf("ListEmployees failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty directory, got %d", len(list))
	}
}

package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/felixgeelhaar/planllama/pkg/application"
	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

func TestProjectService_CreateProject_InlineTeamAndTasks(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	employees := application.NewEmployeeService(store, nil)
	projects := application.NewProjectService(store, nil)

	mustCreateEmployee(t, employees, &team.Employee{ExternalID: "e1", Name: "Ana"})

	var in application.ProjectInput
	payload := `{
		"project_title": "Portal",
		"team": [
			{"employee_id": "e1", "role_in_project": "lead"},
			{"employee_id": "e2", "name": "Bo", "department": "Backend", "skills": ["Go", {"name": "redis", "level": 5}]}
		],
		"tasks": [
			{"task_id": 1, "title": "API", "priority": "HIGH", "assignee_id": "e2"},
			{"task_id": 2, "title": "UI"}
		]
	}`
	if err := json.Unmarshal([]byte(payload), &in); err != nil {
		t.Fatalf("decode input: %v", err)
	}

	p, err := projects.CreateProject(ctx, in)
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if p.Index != 1 {
		t.Errorf("expected index 1, got %d", p.Index)
	}
	if len(p.Members) != 2 || len(p.Tasks) != 2 {
		t.Fatalf("expected 2 members and 2 tasks, got %d/%d", len(p.Members), len(p.Tasks))
	}

	bo, err := employees.GetEmployee(ctx, "e2")
	if err != nil {
		t.Fatalf("inline member not created: %v", err)
	}
	if bo.Role != "Backend" || len(bo.Skills) != 2 {
		t.Errorf("unexpected inline employee %+v", bo)
	}
	if bo.Skills[0].Level != team.DefaultSkillLevel || bo.Skills[1].Level != 5 {
		t.Errorf("unexpected skill levels %+v", bo.Skills)
	}

	api := p.FindTask(1)
	if api.Priority != planning.PriorityHigh {
		t.Errorf("expected high priority, got %s", api.Priority)
	}
	if !api.IsAssigned() || api.Assignment.ExternalID != "e2" || api.Assignment.DecidedBy != planning.DecidedByManual {
		t.Errorf("unexpected assignment %+v", api.Assignment)
	}
	if ui := p.FindTask(2); ui.Status != planning.StatusProposed || ui.IsAssigned() {
		t.Errorf("unexpected task %+v", ui)
	}
}

func TestProjectService_CreateProject_RollsBack(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	projects := application.NewProjectService(store, nil)

	tests := []struct {
		name   string
		in     application.ProjectInput
		target error
	}{
		{
			name:   "missing title",
			in:     application.ProjectInput{},
			target: domain.ErrValidation,
		},
		{
			name: "duplicate task number",
			in: application.ProjectInput{
				Title: "Dup",
				Team:  []application.MemberInput{{EmployeeID: "e9", Name: "Cy"}},
				Tasks: []application.TaskInput{{TaskID: 1, Title: "a"}, {TaskID: 1, Title: "b"}},
			},
			target: domain.ErrConflict,
		},
		{
			name: "unknown assignee",
			in: application.ProjectInput{
				Title: "Ghost",
				Tasks: []application.TaskInput{{TaskID: 1, Title: "a", AssigneeID: "e404"}},
			},
			target: domain.ErrNotFound,
		},
		{
			name: "bad priority",
			in: application.ProjectInput{
				Title: "Bad",
				Tasks: []application.TaskInput{{TaskID: 1, Title: "a", Priority: "urgent"}},
			},
			target: domain.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := projects.CreateProject(ctx, tt.in)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
		})
	}

	list, err := projects.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no projects after failed creates, got %d", len(list))
	}
	if _, err := store.Employees().GetByExternalID(ctx, "e9"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("inline employee should have been rolled back, got %v", err)
	}
}

func TestProjectService_UpdateAndDelete(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	projects := application.NewProjectService(store, nil)
	id := mustCreateProject(t, projects, application.ProjectInput{
		Title: "Portal",
		Tasks: []application.TaskInput{{TaskID: 1, Title: "a"}},
	})

	title := "Portal v2"
	p, err := projects.UpdateProject(ctx, id, application.ProjectPatch{Title: &title})
	if err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}
	if p.Title != title {
		t.Errorf("expected title %q, got %q", title, p.Title)
	}

	empty := " "
	if _, err := projects.UpdateProject(ctx, id, application.ProjectPatch{Title: &empty}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	if err := projects.DeleteProject(ctx, id); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}
	if _, err := projects.GetProject(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if err := projects.DeleteProject(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestProjectService_AddTeamMember(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	employees := application.NewEmployeeService(store, nil)
	projects := application.NewProjectService(store, nil)
	mustCreateEmployee(t, employees, &team.Employee{ExternalID: "e1", Name: "Ana"})
	id := mustCreateProject(t, projects, application.ProjectInput{Title: "Portal"})

	p, err := projects.AddTeamMember(ctx, id, "e1", "dev")
	if err != nil {
		t.Fatalf("AddTeamMember failed: %v", err)
	}
	if len(p.Members) != 1 || p.Members[0].Role != "dev" {
		t.Errorf("unexpected members %+v", p.Members)
	}
	if _, err := projects.AddTeamMember(ctx, id, "e1", "dev"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected conflict on duplicate member, got %v", err)
	}
	if _, err := projects.AddTeamMember(ctx, id, "e2", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found for unknown employee, got %v", err)
	}
}

func TestProjectService_AnalyzeProject(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	projects := application.NewProjectService(store, nil)
	id := mustCreateProject(t, projects, application.ProjectInput{
		Title: "Portal",
		Team:  []application.MemberInput{{EmployeeID: "e1", Name: "Ana", Skills: application.SkillInput{{Name: "go", Level: 4}}}},
		Tasks: []application.TaskInput{
			{TaskID: 1, Title: "API", RequiredSkills: []string{"go", "k8s"}, Priority: "high"},
		},
	})

	report, err := projects.AnalyzeProject(ctx, id)
	if err != nil {
		t.Fatalf("AnalyzeProject failed: %v", err)
	}
	if report.SkillCoverage.CoverageRatio != 0.5 {
		t.Errorf("expected coverage 0.5, got %v", report.SkillCoverage.CoverageRatio)
	}
	if len(report.Recommendations) == 0 {
		t.Error("expected recommendations")
	}

	if _, err := projects.AnalyzeProject(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

package e2e

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/planllama/internal/infrastructure/config"
	"github.com/felixgeelhaar/planllama/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/planllama/pkg/application"
	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
	"github.com/felixgeelhaar/planllama/pkg/domain/tracker"
)

// TestMCPServicesHappyPath exercises the services behind the MCP tools
// through direct service calls.
func TestMCPServicesHappyPath(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.Default()
	cfg.Database.URL = filepath.Join(t.TempDir(), "planllama.db")
	services, err := wiring.BuildAppServices(cfg, nil)
	if err != nil {
		t.Fatalf("BuildAppServices failed: %v", err)
	}
	defer func() { _ = services.Close() }()

	t.Log("Creating employees...")
	for _, e := range []*team.Employee{
		{ExternalID: "e14", Name: "Yavuz K.", CapacityHours: 40, CurrentLoadHours: 18,
			Skills: []team.Skill{{Name: "python", Level: 5}, {Name: "redis", Level: 4}}},
		{ExternalID: "e42", Name: "Jane Smith", CapacityHours: 40, CurrentLoadHours: 20,
			Skills: []team.Skill{{Name: "react", Level: 5}, {Name: "typescript", Level: 4}}},
	} {
		if _, err := services.Employees.CreateEmployee(ctx, e); err != nil {
			t.Fatalf("CreateEmployee failed: %v", err)
		}
	}

	t.Log("Creating project...")
	p, err := services.Projects.CreateProject(ctx, application.ProjectInput{
		Title: "Dashboard",
		Team:  []application.MemberInput{{EmployeeID: "e14"}, {EmployeeID: "e42"}},
		Tasks: []application.TaskInput{
			{TaskID: 1, Title: "Cache layer", EpicName: "Backend", RequiredSkills: []string{"python", "redis"}},
			{TaskID: 2, Title: "Charts", EpicName: "Frontend", RequiredSkills: []string{"react"}},
		},
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	t.Log("Testing rank candidates...")
	report, err := services.Assignment.RankCandidates(ctx, p.FindTask(2).ID)
	if err != nil {
		t.Fatalf("RankCandidates failed: %v", err)
	}
	if report.Candidates[0].EmployeeID != "e42" {
		t.Errorf("Expected e42 first for Charts, got %s", report.Candidates[0].EmployeeID)
	}

	t.Log("Testing auto assign...")
	res, err := services.Assignment.AutoAssign(ctx, p.ID, nil)
	if err != nil {
		t.Fatalf("AutoAssign failed: %v", err)
	}
	if res.Summary.AssignedCount != 2 {
		t.Errorf("Expected 2 assignments, got %d", res.Summary.AssignedCount)
	}

	t.Log("Testing analyze project...")
	analysis, err := services.Projects.AnalyzeProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("AnalyzeProject failed: %v", err)
	}
	if analysis.Summary.AssignedTasks != 2 || analysis.SkillCoverage.CoverageRatio != 1 {
		t.Errorf("Unexpected analysis %+v", analysis.Summary)
	}

	t.Log("Testing sync without Jira...")
	if _, err := services.Sync.SyncProject(ctx, p.ID, application.SyncOptions{}); tracker.KindOf(err) != tracker.KindNotConfigured {
		t.Errorf("Expected not_configured, got %v", err)
	}
	if _, err := services.Sync.RefreshStatusFromTracker(ctx, p.FindTask(1).ID); tracker.KindOf(err) != tracker.KindNotConfigured {
		t.Errorf("Expected not_configured, got %v", err)
	}

	logs, err := services.Sync.ListLogs(ctx, 10)
	if err != nil {
		t.Fatalf("ListLogs failed: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("Rejected syncs must not log, got %d entries", len(logs))
	}

	if _, err := services.Projects.GetProject(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/planllama/internal/infrastructure/config"
	"github.com/felixgeelhaar/planllama/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/planllama/pkg/application"
	"github.com/felixgeelhaar/planllama/pkg/domain/assignment"
	"github.com/felixgeelhaar/planllama/pkg/domain/synclog"
)

func newTestServer(t *testing.T) (*Server, *wiring.AppServices) {
	t.Helper()
	cfg := config.Default()
	cfg.Database.URL = filepath.Join(t.TempDir(), "planllama.db")
	services, err := wiring.BuildAppServices(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("build services: %v", err)
	}
	t.Cleanup(func() { _ = services.Close() })

	server, err := NewServer(services)
	if err != nil {
		t.Fatalf("create server: %v", err)
	}
	return server, services
}

func TestServer_AssignmentTools(t *testing.T) {
	server, services := newTestServer(t)
	ctx := context.Background()

	p, err := services.Projects.CreateProject(ctx, application.ProjectInput{
		Title: "Portal",
		Team: []application.MemberInput{
			{EmployeeID: "e1", Name: "Ana", Skills: application.SkillInput{{Name: "go", Level: 5}}},
		},
		Tasks: []application.TaskInput{{TaskID: 1, Title: "API", RequiredSkills: []string{"go"}}},
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	out, err := server.handleRankCandidates(ctx, TaskArgs{TaskID: p.Tasks[0].ID})
	if err != nil {
		t.Fatalf("handleRankCandidates failed: %v", err)
	}
	if report := out.(*application.CandidateReport); len(report.Candidates) != 1 {
		t.Errorf("expected one candidate, got %+v", report)
	}

	out, err = server.handleAutoAssign(ctx, AutoAssignArgs{ProjectID: p.ID})
	if err != nil {
		t.Fatalf("handleAutoAssign failed: %v", err)
	}
	if res := out.(*assignment.Result); res.Summary.AssignedCount != 1 {
		t.Errorf("expected one assignment, got %+v", res.Summary)
	}

	if _, err := server.handleAnalyzeProject(ctx, ProjectArgs{ProjectID: p.ID}); err != nil {
		t.Fatalf("handleAnalyzeProject failed: %v", err)
	}

	_, err = server.handleAutoAssign(ctx, AutoAssignArgs{ProjectID: 404})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found message, got %v", err)
	}
}

func TestServer_SyncToolsWithoutTracker(t *testing.T) {
	server, services := newTestServer(t)
	ctx := context.Background()

	p, err := services.Projects.CreateProject(ctx, application.ProjectInput{
		Title: "Portal",
		Tasks: []application.TaskInput{{TaskID: 1, Title: "API"}},
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	_, err = server.handleSyncProject(ctx, SyncProjectArgs{ProjectID: p.ID})
	if err == nil || !strings.Contains(err.Error(), "not_configured") {
		t.Errorf("expected not configured error, got %v", err)
	}
	if _, err := server.handleSyncTask(ctx, SyncTaskArgs{TaskID: p.Tasks[0].ID}); err == nil {
		t.Error("expected error without tracker")
	}
	if _, err := server.handleRefreshStatus(ctx, TaskArgs{TaskID: p.Tasks[0].ID}); err == nil {
		t.Error("expected error without tracker")
	}

	out, err := server.handleSyncLogs(ctx, SyncLogsArgs{})
	if err != nil {
		t.Fatalf("handleSyncLogs failed: %v", err)
	}
	if logs := out.([]synclog.Entry); len(logs) != 0 {
		t.Errorf("expected no logs, got %d", len(logs))
	}
}

func TestServerServeHTTPReturnsCanceled(t *testing.T) {
	server, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := server.ServeHTTP(ctx, "127.0.0.1:0"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestToolErrHidesInternals(t *testing.T) {
	err := toolErr("sync project", errors.New("database is locked"))
	if strings.Contains(err.Error(), "locked") {
		t.Errorf("internal detail leaked: %v", err)
	}
}

package wiring

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/planllama/internal/infrastructure/config"
	"github.com/felixgeelhaar/planllama/pkg/application"
	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/tracker"
	"github.com/felixgeelhaar/planllama/pkg/jira"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Database.URL = filepath.Join(t.TempDir(), "planllama.db")
	return cfg
}

func TestBuildAppServicesDefaults(t *testing.T) {
	services, err := BuildAppServices(testConfig(t), nil)
	if err != nil {
		t.Fatalf("build services failed: %v", err)
	}
	t.Cleanup(func() { _ = services.Close() })

	if services.Projects == nil || services.Tasks == nil || services.Assignment == nil || services.Sync == nil {
		t.Fatalf("expected non-nil services, got %+v", services)
	}
	if _, ok := services.Tracker.(tracker.Unconfigured); !ok {
		t.Fatalf("expected unconfigured tracker, got %T", services.Tracker)
	}
	if services.Events == nil || services.Notifier != nil {
		t.Errorf("expected SSE events and no webhook notifier, got %v / %v", services.Events, services.Notifier)
	}
}

func TestBuildAppServicesWithTracker(t *testing.T) {
	cfg := testConfig(t)
	cfg.Jira = config.JiraConfig{Domain: "acme.atlassian.net", Email: "a@b.c", APIToken: "tok", ProjectKey: "PLL"}
	cfg.Assist.URL = "http://127.0.0.1:1/assign"

	services, err := BuildAppServices(cfg, nil)
	if err != nil {
		t.Fatalf("build services failed: %v", err)
	}
	t.Cleanup(func() { _ = services.Close() })

	client, ok := services.Tracker.(*jira.Client)
	if !ok {
		t.Fatalf("expected jira client, got %T", services.Tracker)
	}
	if client.ProjectKey() != "PLL" {
		t.Errorf("unexpected project key %q", client.ProjectKey())
	}
}

func TestBuildAssist(t *testing.T) {
	if c := BuildAssist(config.AssistConfig{}, nil); c != nil {
		t.Fatalf("expected nil client without endpoint, got %T", c)
	}
	if c := BuildAssist(config.AssistConfig{URL: "http://localhost/assign", TimeoutSec: 3}, nil); c == nil {
		t.Fatal("expected client")
	}
}

func TestReloadTracker(t *testing.T) {
	services, err := BuildAppServices(testConfig(t), nil)
	if err != nil {
		t.Fatalf("build services failed: %v", err)
	}
	t.Cleanup(func() { _ = services.Close() })
	ctx := context.Background()

	if _, err := services.Sync.SyncProject(ctx, 999, application.SyncOptions{}); tracker.KindOf(err) != tracker.KindNotConfigured {
		t.Fatalf("expected not_configured, got %v", err)
	}

	creds := config.JiraConfig{Domain: "acme.atlassian.net", Email: "a@b.c", APIToken: "tok", ProjectKey: "PLL"}
	if err := services.ReloadTracker(creds); err != nil {
		t.Fatalf("ReloadTracker failed: %v", err)
	}
	// The tracker check passes now, so the missing project is reported.
	if _, err := services.Sync.SyncProject(ctx, 999, application.SyncOptions{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found after reload, got %v", err)
	}

	if err := services.ReloadTracker(config.JiraConfig{}); err != nil {
		t.Fatalf("ReloadTracker failed: %v", err)
	}
	if _, err := services.Sync.SyncProject(ctx, 999, application.SyncOptions{}); tracker.KindOf(err) != tracker.KindNotConfigured {
		t.Errorf("expected not_configured after clearing credentials, got %v", err)
	}
}

func TestBuildNotifier(t *testing.T) {
	if n := BuildNotifier(config.NotifyConfig{}, nil); n != nil {
		t.Fatal("expected nil notifier without webhooks")
	}
	if n := BuildNotifier(config.NotifyConfig{Webhooks: []config.WebhookConfig{{Name: "blank"}}}, nil); n != nil {
		t.Fatal("expected nil notifier when no webhook has a URL")
	}

	cfg := testConfig(t)
	cfg.Notify = config.NotifyConfig{
		Webhooks:       []config.WebhookConfig{{Name: "ops", URL: "http://127.0.0.1:1/hook"}},
		DeadLetterPath: filepath.Join(t.TempDir(), "dead.jsonl"),
	}
	services, err := BuildAppServices(cfg, nil)
	if err != nil {
		t.Fatalf("build services failed: %v", err)
	}
	if services.Notifier == nil {
		t.Fatal("expected notifier to be wired")
	}
	if err := services.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

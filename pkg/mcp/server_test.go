package mcp_test

import (
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/planllama/internal/infrastructure/config"
	"github.com/felixgeelhaar/planllama/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/planllama/pkg/mcp"
)

func TestNewServer_Initialization(t *testing.T) {
	cfg := config.Default()
	cfg.Database.URL = filepath.Join(t.TempDir(), "planllama.db")
	services, err := wiring.BuildAppServices(cfg, nil)
	if err != nil {
		t.Fatalf("build services: %v", err)
	}
	defer services.Close() //nolint:errcheck

	s, err := mcp.NewServer(services)
	if err != nil || s == nil {
		t.Fatalf("expected server instance, got %v", err)
	}
	if _, err := mcp.NewServer(nil); err == nil {
		t.Error("expected error for nil services")
	}
}

package mcp

import (
	infra "github.com/felixgeelhaar/planllama/internal/infrastructure/mcp"
	"github.com/felixgeelhaar/planllama/internal/infrastructure/wiring"
)

// Server exposes the MCP server implementation from the infrastructure layer.
type Server = infra.Server

// NewServer constructs an MCP server over already built services.
func NewServer(services *wiring.AppServices) (*Server, error) {
	return infra.NewServer(services)
}

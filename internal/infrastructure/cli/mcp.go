package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	inframcp "github.com/felixgeelhaar/planllama/internal/infrastructure/mcp"
)

var (
	mcpTransport string
	mcpAddr      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the planllama MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("PLANLLAMA_SKIP_MCP_START") == "true" {
			return nil
		}
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck // best-effort close on exit

		server, err := inframcp.NewServer(services)
		if err != nil {
			return err
		}
		switch strings.ToLower(mcpTransport) {
		case "stdio", "":
			return server.ServeStdio(cmd.Context())
		case "http":
			return server.ServeHTTP(cmd.Context(), mcpAddr)
		default:
			return fmt.Errorf("unsupported transport: %s", mcpTransport)
		}
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to use (stdio, http)")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8080", "Address for the http transport")
	RootCmd.AddCommand(mcpCmd)
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/planllama/internal/infrastructure/config"
	"github.com/felixgeelhaar/planllama/internal/infrastructure/wiring"
)

// loadConfig reads the config file, then the environment, then flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(globals.configPath)
	if err != nil {
		return nil, NewCLIError("failed to load config", "Check the YAML syntax of "+configPath(), err)
	}
	if globals.dbURL != "" {
		cfg.Database.URL = globals.dbURL
	}
	return cfg, nil
}

func configPath() string {
	if globals.configPath != "" {
		return globals.configPath
	}
	return config.DefaultFile
}

func loadServices(cmd *cobra.Command) (*wiring.AppServices, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := cfg.Log.NewLogger(os.Stderr)
	services, loadErr := wiring.BuildAppServices(cfg, logger)
	if services == nil {
		return nil, fmt.Errorf("failed to build services: %w", loadErr)
	}
	if loadErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", loadErr)
	}
	return services, nil
}

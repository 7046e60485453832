package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/planllama/internal/infrastructure/api"
	"github.com/felixgeelhaar/planllama/internal/infrastructure/watch"
	"github.com/felixgeelhaar/planllama/internal/infrastructure/wiring"
)

var (
	serveAddr        string
	serveWatchConfig bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck // best-effort close on exit

		addr := services.Config.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		server := api.NewServer(addr, services, services.Logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if serveWatchConfig {
			watcher, err := watch.NewFileWatcher(configPath(), watch.DefaultDebounce, reloadTracker(services))
			if err != nil {
				return NewCLIError("failed to watch config", "Create the config directory or drop --watch-config", err)
			}
			go func() {
				if err := watcher.Run(ctx); err != nil {
					services.Logger.Warn("config watcher stopped", "error", err)
				}
			}()
			services.Logger.Info("watching config for tracker credentials", "path", watcher.Path())
		}

		errCh := make(chan error, 1)
		go func() { errCh <- server.Start() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	},
}

// reloadTracker re-reads the config and swaps in a tracker built from its
// jira section. A broken file keeps the current tracker.
func reloadTracker(services *wiring.AppServices) func(string) {
	return func(path string) {
		cfg, err := loadConfig()
		if err != nil {
			services.Logger.Warn("config reload failed", "path", path, "error", err)
			return
		}
		if err := services.ReloadTracker(cfg.Jira); err != nil {
			services.Logger.Warn("tracker reload failed", "path", path, "error", err)
		}
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :5000)")
	serveCmd.Flags().BoolVar(&serveWatchConfig, "watch-config", false, "Reload Jira credentials when the config file changes")
	RootCmd.AddCommand(serveCmd)
}

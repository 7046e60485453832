package wiring

import (
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/planllama/internal/infrastructure/config"
	"github.com/felixgeelhaar/planllama/internal/infrastructure/sse"
	"github.com/felixgeelhaar/planllama/internal/infrastructure/webhook"
	"github.com/felixgeelhaar/planllama/pkg/ai"
	"github.com/felixgeelhaar/planllama/pkg/application"
	"github.com/felixgeelhaar/planllama/pkg/domain/assist"
	"github.com/felixgeelhaar/planllama/pkg/domain/tracker"
	"github.com/felixgeelhaar/planllama/pkg/jira"
	"github.com/felixgeelhaar/planllama/pkg/storage"
)

// AppServices exposes the application layer services wired to one store.
type AppServices struct {
	Config     *config.Config
	Store      *storage.Store
	Projects   *application.ProjectService
	Employees  *application.EmployeeService
	Tasks      *application.TaskService
	Assignment *application.AssignmentService
	Sync       *application.SyncService
	// Tracker is the client built at startup; ReloadTracker replaces the
	// one Sync uses.
	Tracker  tracker.Client
	Notifier *webhook.Notifier
	// Events streams committed sync log entries to SSE subscribers.
	Events *sse.Broadcaster
	Logger *slog.Logger
}

// Close waits for pending webhook deliveries and releases the store.
func (s *AppServices) Close() error {
	if s.Notifier != nil {
		s.Notifier.Wait()
	}
	return s.Store.Close()
}

// ReloadTracker rebuilds the tracker client from fresh credentials and hands
// it to the sync service.
func (s *AppServices) ReloadTracker(cfg config.JiraConfig) error {
	client, err := BuildTracker(cfg, s.Logger)
	if err != nil {
		return err
	}
	s.Sync.SetTracker(client)
	_, unconfigured := client.(tracker.Unconfigured)
	s.Logger.Info("issue tracker reloaded", "configured", !unconfigured)
	return nil
}

// BuildAppServices opens the store and constructs every service from cfg.
// A tracker that cannot be built degrades to unconfigured; the services are
// still returned together with the error so callers may warn and continue.
func BuildAppServices(cfg *config.Config, logger *slog.Logger) (*AppServices, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	store, err := storage.Open(cfg.Database.URL, logger)
	if err != nil {
		return nil, err
	}

	var loadErr error
	trackerClient, err := BuildTracker(cfg.Jira, logger)
	if err != nil {
		loadErr = fmt.Errorf("issue tracker disabled: %w", err)
		trackerClient = tracker.Unconfigured{}
	}

	services := &AppServices{
		Config:     cfg,
		Store:      store,
		Projects:   application.NewProjectService(store, logger),
		Employees:  application.NewEmployeeService(store, logger),
		Tasks:      application.NewTaskService(store, logger),
		Assignment: application.NewAssignmentService(store, BuildAssist(cfg.Assist, logger), logger),
		Sync:       application.NewSyncService(store, trackerClient, logger),
		Tracker:    trackerClient,
		Events:     sse.NewBroadcaster(logger),
		Logger:     logger,
	}
	notifiers := application.Notifiers{services.Events}
	if n := BuildNotifier(cfg.Notify, logger); n != nil {
		services.Notifier = n
		notifiers = append(notifiers, n)
	}
	services.Sync.SetNotifier(notifiers)
	return services, loadErr
}

// BuildTracker returns the Jira client, or Unconfigured when credentials are
// incomplete.
func BuildTracker(cfg config.JiraConfig, logger *slog.Logger) (tracker.Client, error) {
	if !cfg.Configured() {
		return tracker.Unconfigured{}, nil
	}
	client, err := jira.NewClient(jira.Config{
		Domain:     cfg.Domain,
		Email:      cfg.Email,
		APIToken:   cfg.APIToken,
		ProjectKey: cfg.ProjectKey,
		Timeout:    cfg.Timeout(),
	}, jira.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return client, nil
}

// BuildAssist returns the generative client, or nil when no endpoint is set.
func BuildAssist(cfg config.AssistConfig, logger *slog.Logger) assist.Client {
	if cfg.URL == "" {
		return nil
	}
	client := ai.NewAssistClient(cfg.URL, cfg.Token, logger)
	if d := cfg.Timeout(); d > 0 {
		client = client.WithTimeout(d)
	}
	return client
}

// BuildNotifier returns the webhook notifier, or nil when no webhook is set.
func BuildNotifier(cfg config.NotifyConfig, logger *slog.Logger) *webhook.Notifier {
	if len(cfg.Webhooks) == 0 {
		return nil
	}
	endpoints := make([]webhook.Endpoint, 0, len(cfg.Webhooks))
	for _, wh := range cfg.Webhooks {
		if wh.URL == "" {
			continue
		}
		endpoints = append(endpoints, webhook.Endpoint{
			Name:       wh.Name,
			URL:        wh.URL,
			Secret:     wh.Secret,
			Format:     wh.Format,
			Events:     wh.Events,
			MaxRetries: wh.MaxRetries,
		})
	}
	if len(endpoints) == 0 {
		return nil
	}
	var deadLetter *webhook.DeadLetterStore
	if cfg.DeadLetterPath != "" {
		deadLetter = webhook.NewDeadLetterStore(cfg.DeadLetterPath)
	}
	return webhook.NewNotifier(endpoints, deadLetter, logger)
}

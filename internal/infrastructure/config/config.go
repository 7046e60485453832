// Package config loads planllama settings from a YAML file and the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no --config flag is given.
const DefaultFile = "planllama.yaml"

// DefaultAddr is the HTTP API listen address.
const DefaultAddr = ":5000"

// Config is the full runtime configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Jira     JiraConfig     `yaml:"jira"`
	Assist   AssistConfig   `yaml:"assist"`
	Log      LogConfig      `yaml:"log"`
	Notify   NotifyConfig   `yaml:"notify,omitempty"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// JiraConfig holds the issue tracker credentials. The tracker is only
// enabled when every field but the timeout is set.
type JiraConfig struct {
	Domain     string `yaml:"domain"`
	Email      string `yaml:"email"`
	APIToken   string `yaml:"api_token"`
	ProjectKey string `yaml:"project_key"`
	TimeoutSec int    `yaml:"timeout_sec,omitempty"`
}

// Configured reports whether all credentials are present.
func (j JiraConfig) Configured() bool {
	return j.Domain != "" && j.Email != "" && j.APIToken != "" && j.ProjectKey != ""
}

// Timeout returns the per-call timeout, zero meaning the client default.
func (j JiraConfig) Timeout() time.Duration {
	return time.Duration(j.TimeoutSec) * time.Second
}

type AssistConfig struct {
	URL        string `yaml:"url"`
	Token      string `yaml:"token,omitempty"`
	TimeoutSec int    `yaml:"timeout_sec,omitempty"`
}

// Timeout returns the per-call timeout, zero meaning the client default.
func (a AssistConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSec) * time.Second
}

// NotifyConfig lists outgoing webhooks told about finished sync runs.
// Deliveries that exhaust their retries are appended to DeadLetterPath
// when it is set.
type NotifyConfig struct {
	Webhooks       []WebhookConfig `yaml:"webhooks,omitempty"`
	DeadLetterPath string          `yaml:"dead_letter_path,omitempty"`
}

// WebhookConfig is one endpoint. Events holds patterns such as
// "sync.*.error"; an empty list receives everything.
type WebhookConfig struct {
	Name       string   `yaml:"name"`
	URL        string   `yaml:"url"`
	Secret     string   `yaml:"secret,omitempty"`
	Format     string   `yaml:"format,omitempty"`
	Events     []string `yaml:"events,omitempty"`
	MaxRetries int      `yaml:"max_retries,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{URL: "planllama.db"},
		Server:   ServerConfig{Addr: DefaultAddr},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

var retryConfig = retry.Config{
	MaxAttempts:   3,
	InitialDelay:  10 * time.Millisecond,
	BackoffPolicy: retry.BackoffExponential,
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	retryer := retry.New[[]byte](retryConfig)
	data, err := retryer.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		// #nosec G304 -- path comes from the operator's --config flag
		return os.ReadFile(path)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML. The file holds credentials, so it is owner-only.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if path == "" {
		path = DefaultFile
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// ApplyEnv overrides file values with set, non-empty environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for name, dst := range map[string]*string{
		"DATABASE_URL":           &c.Database.URL,
		"PLANLLAMA_ADDR":         &c.Server.Addr,
		"JIRA_DOMAIN":            &c.Jira.Domain,
		"JIRA_EMAIL":             &c.Jira.Email,
		"JIRA_API_TOKEN":         &c.Jira.APIToken,
		"JIRA_PROJECT_KEY":       &c.Jira.ProjectKey,
		"PLANLLAMA_ASSIST_URL":   &c.Assist.URL,
		"PLANLLAMA_ASSIST_TOKEN": &c.Assist.Token,
		"PLANLLAMA_LOG_LEVEL":    &c.Log.Level,
	} {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
}

// LoadWithEnv is Load followed by ApplyEnv with the process environment.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// SlogLevel parses the configured level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a text or JSON logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

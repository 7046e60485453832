package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/planllama/internal/infrastructure/config"
	"github.com/felixgeelhaar/planllama/pkg/storage"
)

var setupOpts struct {
	jiraDomain  string
	jiraEmail   string
	jiraToken   string
	jiraProject string
	assistURL   string
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write the config file and create the database schema",
	Long: `Write the config file and create the database schema.

Flags given here are stored in the config file. An existing file is kept
and only the given fields change.

Examples:
  planllama setup
  planllama setup --jira-domain acme.atlassian.net --jira-email ops@acme.io \
    --jira-token $TOKEN --jira-project PLL`,
	RunE: runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return NewCLIError("failed to load config", "Fix or remove "+path, err)
	}

	changed := false
	for flag, dst := range map[string]*string{
		"jira-domain":  &cfg.Jira.Domain,
		"jira-email":   &cfg.Jira.Email,
		"jira-token":   &cfg.Jira.APIToken,
		"jira-project": &cfg.Jira.ProjectKey,
		"assist-url":   &cfg.Assist.URL,
	} {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			*dst = f.Value.String()
			changed = true
		}
	}
	if globals.dbURL != "" {
		cfg.Database.URL = globals.dbURL
		changed = true
	}

	_, statErr := os.Stat(path)
	if changed || errors.Is(statErr, os.ErrNotExist) {
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	}

	store, err := storage.Open(cfg.Database.URL, nil)
	if err != nil {
		return NewCLIError("failed to create database", "Check database.url in "+path, err)
	}
	if err := store.Close(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, successStyle.Render("Database ready: "+storage.NormalizeDSN(cfg.Database.URL)))
	for _, table := range []string{"projects", "employees", "tasks", "project_team_members", "sync_logs"} {
		fmt.Fprintf(out, "  - %s\n", table)
	}
	if !cfg.Jira.Configured() {
		fmt.Fprintln(out, hintStyle.Render("Jira is not configured; sync commands will fail until it is."))
	}
	return nil
}

func init() {
	setupCmd.Flags().StringVar(&setupOpts.jiraDomain, "jira-domain", "", "Jira site, e.g. acme.atlassian.net")
	setupCmd.Flags().StringVar(&setupOpts.jiraEmail, "jira-email", "", "Jira account email")
	setupCmd.Flags().StringVar(&setupOpts.jiraToken, "jira-token", "", "Jira API token")
	setupCmd.Flags().StringVar(&setupOpts.jiraProject, "jira-project", "", "Jira project key")
	setupCmd.Flags().StringVar(&setupOpts.assistURL, "assist-url", "", "Task assistant endpoint")
	RootCmd.AddCommand(setupCmd)
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/felixgeelhaar/planllama/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/planllama/pkg/application"
	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

var seedPath string

// seedEmployee accepts the flat email and jira_account_id fields of older
// seed files next to the nested integrations object.
type seedEmployee struct {
	team.Employee
	Skills        application.SkillInput `json:"skills"`
	Email         string                 `json:"email"`
	JiraAccountID string                 `json:"jira_account_id"`
}

type seedFile struct {
	Employees []seedEmployee             `json:"employees"`
	Projects  []application.ProjectInput `json:"projects"`
}

// SeedSummary counts what a seed run created.
type SeedSummary struct {
	EmployeesCreated int     `json:"employees_created"`
	EmployeesSkipped int     `json:"employees_skipped"`
	ProjectIDs       []int64 `json:"project_ids"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load employees and projects from a JSON (with comments) file",
	Long: `Load employees and projects from a JSON file. Comments and trailing
commas are allowed. Employees that already exist are skipped.

Example:
  planllama seed --file examples/seed.jsonc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck // best-effort close on exit

		summary, err := seed(cmd.Context(), services, seedPath)
		if err != nil {
			return err
		}
		if globals.jsonOutput {
			return printJSON(cmd.OutOrStdout(), summary)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render("Seed complete"))
		fmt.Fprintf(out, "  employees created: %d (skipped %d)\n", summary.EmployeesCreated, summary.EmployeesSkipped)
		fmt.Fprintf(out, "  projects created:  %d %v\n", len(summary.ProjectIDs), summary.ProjectIDs)
		return nil
	},
}

func readSeedFile(path string) (*seedFile, error) {
	// #nosec G304 -- path comes from the operator's --file flag
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewCLIError("failed to read seed file", "Pass an existing file with --file", err)
	}
	var f seedFile
	if err := json.Unmarshal(jsonc.ToJSON(data), &f); err != nil {
		return nil, NewCLIError("failed to parse seed file", "Check the JSON syntax of "+path, err)
	}
	return &f, nil
}

func seed(ctx context.Context, services *wiring.AppServices, path string) (*SeedSummary, error) {
	f, err := readSeedFile(path)
	if err != nil {
		return nil, err
	}

	summary := &SeedSummary{ProjectIDs: []int64{}}
	for _, se := range f.Employees {
		e := se.Employee
		e.Skills = []team.Skill(se.Skills)
		if se.Email != "" && e.Integrations.Email == "" {
			e.Integrations.Email = se.Email
		}
		if se.JiraAccountID != "" && e.Integrations.TrackerAccountID == "" {
			e.Integrations.TrackerAccountID = se.JiraAccountID
		}
		if _, err := services.Employees.CreateEmployee(ctx, &e); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				summary.EmployeesSkipped++
				continue
			}
			return nil, fmt.Errorf("employee %s: %w", e.ExternalID, err)
		}
		summary.EmployeesCreated++
	}

	for _, in := range f.Projects {
		p, err := services.Projects.CreateProject(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("project %q: %w", in.Title, err)
		}
		summary.ProjectIDs = append(summary.ProjectIDs, p.ID)
	}
	return summary, nil
}

func init() {
	seedCmd.Flags().StringVar(&seedPath, "file", "seed.jsonc", "Seed file to load")
	RootCmd.AddCommand(seedCmd)
}

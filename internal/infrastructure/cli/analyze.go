package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <project-id>",
	Short: "Report staffing, skill coverage and risks for a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := parseID(args[0], "project_id")
		if err != nil {
			return err
		}
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck // best-effort close on exit

		report, err := services.Projects.AnalyzeProject(cmd.Context(), projectID)
		if err != nil {
			return err
		}
		if globals.jsonOutput {
			return printJSON(cmd.OutOrStdout(), report)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s (%d tasks)", report.Project.Title, report.Project.TotalTasks)))
		fmt.Fprintf(out, "  assigned %d, unassigned %d\n", report.Summary.AssignedTasks, report.Summary.UnassignedTasks)

		statuses := make([]string, 0, len(report.Summary.StatusBreakdown))
		for s := range report.Summary.StatusBreakdown {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)
		for _, s := range statuses {
			fmt.Fprintf(out, "  %-14s %d\n", statusStyle(s).Render(s), report.Summary.StatusBreakdown[s])
		}

		fmt.Fprintf(out, "\nSkill coverage: %.0f%%\n", report.SkillCoverage.CoverageRatio*100)
		if len(report.SkillCoverage.MissingSkills) > 0 {
			fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("  missing: %v", report.SkillCoverage.MissingSkills)))
		}
		for _, r := range report.Risks {
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("  risk: task %d %q needs %v", r.TaskID, r.Title, r.MissingSkills)))
		}
		if len(report.Recommendations) > 0 {
			fmt.Fprintln(out, "\nRecommendations:")
			for _, rec := range report.Recommendations {
				fmt.Fprintln(out, "  - "+rec)
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(analyzeCmd)
}

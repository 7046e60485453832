package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/planllama/pkg/application"
	"github.com/felixgeelhaar/planllama/pkg/domain/assignment"
)

var (
	assignLimit     int
	assignRationale string
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign tasks to employees",
}

var assignAutoCmd = &cobra.Command{
	Use:   "auto <project-id>",
	Short: "Assign unassigned tasks to the best scoring team member",
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

		var limit *int
		if cmd.Flags().Changed("limit") {
			limit = &assignLimit
		}
		res, err := services.Assignment.AutoAssign(cmd.Context(), projectID, limit)
		if err != nil {
			return err
		}
		if globals.jsonOutput {
			return printJSON(cmd.OutOrStdout(), res)
		}
		printDecisions(cmd.OutOrStdout(), res)
		return nil
	},
}

func printDecisions(w io.Writer, res *assignment.Result) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Assigned %d task(s)", res.Summary.AssignedCount)))
	for _, d := range res.Assignments {
		fmt.Fprintf(w, "  #%d %-30s -> %s (%s) score %.3f\n",
			d.TaskNumber, d.TaskTitle, d.Assignee.Name, d.Assignee.EmployeeID, d.Score)
	}
	if res.Summary.RemainingUnassigned > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d task(s) remain unassigned", res.Summary.RemainingUnassigned)))
	}
}

var assignManualCmd = &cobra.Command{
	Use:   "manual <task-id> <employee-id>",
	Short: "Assign a task to a specific employee",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := parseID(args[0], "task_id")
		if err != nil {
			return err
		}
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck // best-effort close on exit

		task, err := services.Tasks.AssignTask(cmd.Context(), taskID, application.ManualAssignment{
			EmployeeID: args[1],
			Rationale:  assignRationale,
		})
		if err != nil {
			return err
		}
		if globals.jsonOutput {
			return printJSON(cmd.OutOrStdout(), task)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s task %d assigned to %s [%s]\n",
			successStyle.Render("✓"), task.ID, args[1], statusStyle(task.Status).Render(task.Status))
		return nil
	},
}

var assignCandidatesCmd = &cobra.Command{
	Use:   "candidates <task-id>",
	Short: "Show how every candidate scores for a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := parseID(args[0], "task_id")
		if err != nil {
			return err
		}
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck // best-effort close on exit

		report, err := services.Assignment.RankCandidates(cmd.Context(), taskID)
		if err != nil {
			return err
		}
		if globals.jsonOutput {
			return printJSON(cmd.OutOrStdout(), report)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Candidates for #%d %s", report.TaskNumber, report.TaskTitle)))
		if len(report.Candidates) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("  no candidates"))
			return nil
		}
		for i, c := range report.Candidates {
			fmt.Fprintf(out, "  %d. %-20s %.3f  skills %.2f  capacity %.2f", i+1, c.Name, c.Score, c.MatchRatio, c.RemainingRatio)
			if len(c.MissingSkills) > 0 {
				fmt.Fprint(out, mutedStyle.Render(fmt.Sprintf("  missing %v", c.MissingSkills)))
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

var assignGenerateCmd = &cobra.Command{
	Use:   "generate <project-id>",
	Short: "Ask the assist service to propose assignments",
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

		res, err := services.Assignment.GenerateAssignments(cmd.Context(), projectID)
		if err != nil {
			return err
		}
		if globals.jsonOutput {
			return printJSON(cmd.OutOrStdout(), res)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Applied %d of %d proposal(s)", len(res.Assignments), res.Proposed)))
		for _, a := range res.Assignments {
			fmt.Fprintf(out, "  #%d %-30s -> %s\n", a.TaskNumber, a.TaskTitle, a.Assignee.Name)
			if a.Rationale != "" {
				fmt.Fprintln(out, mutedStyle.Render("     "+a.Rationale))
			}
		}
		if res.Skipped > 0 {
			fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("%d proposal(s) skipped", res.Skipped)))
		}
		return nil
	},
}

func init() {
	assignAutoCmd.Flags().IntVar(&assignLimit, "limit", 0, "Maximum number of tasks to assign")
	assignManualCmd.Flags().StringVar(&assignRationale, "rationale", "", "Why this person was chosen")
	assignCmd.AddCommand(assignAutoCmd, assignManualCmd, assignCandidatesCmd, assignGenerateCmd)
	RootCmd.AddCommand(assignCmd)
}

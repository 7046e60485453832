package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/planllama/pkg/application"
)

var (
	syncForce    bool
	syncLogLimit int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror projects and tasks into Jira",
}

var syncProjectCmd = &cobra.Command{
	Use:   "project <project-id>",
	Short: "Create epics and issues for a project",
	Long: `Create one epic per epic name and one issue per task. Tasks that already
have an issue are skipped unless --force is given.`,
	Args: cobra.ExactArgs(1),
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

		res, err := services.Sync.SyncProject(cmd.Context(), projectID, application.SyncOptions{Force: syncForce})
		if err != nil {
			return err
		}
		if globals.jsonOutput {
			return printJSON(cmd.OutOrStdout(), res)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s [%s]\n", titleStyle.Render("Synced "+res.ProjectTitle),
			mutedStyle.Render(fmt.Sprintf("log %d", res.LogID)), statusStyle(string(res.Status)).Render(string(res.Status)))
		for _, e := range res.Epics {
			note := ""
			if e.Reused {
				note = mutedStyle.Render(" (existing)")
			}
			fmt.Fprintf(out, "  epic %-24s %s%s\n", e.Name, e.Key, note)
		}
		for _, t := range res.TasksSynced {
			fmt.Fprintf(out, "  #%-3d %-28s %s\n", t.Number, t.Title, t.Key)
		}
		for _, s := range res.Skipped {
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("  #%-3d skipped, already %s", s.Number, s.Key)))
		}
		for _, e := range res.Errors {
			item := e.Epic
			if item == "" {
				item = e.Title
			}
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("  %s: %s", item, e.Error)))
		}
		return nil
	},
}

var syncTaskCmd = &cobra.Command{
	Use:   "task <task-id>",
	Short: "Create a top-level issue for a single task",
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

		res, err := services.Sync.SyncTask(cmd.Context(), taskID, application.SyncOptions{Force: syncForce})
		if err != nil {
			return err
		}
		if globals.jsonOutput {
			return printJSON(cmd.OutOrStdout(), res)
		}
		if res.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "%s task %d already synced as %s\n", mutedStyle.Render("-"), res.TaskID, res.Key)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s task %d synced as %s\n", successStyle.Render("✓"), res.TaskID, res.Key)
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Pull a task's status from its Jira issue",
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

		res, err := services.Sync.RefreshStatusFromTracker(cmd.Context(), taskID)
		if err != nil {
			return err
		}
		if globals.jsonOutput {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s -> %s\n", res.Key, mutedStyle.Render(res.RemoteStatus),
			res.PreviousStatus, statusStyle(res.Status).Render(res.Status))
		return nil
	},
}

var syncTransitionCmd = &cobra.Command{
	Use:   "transition <task-id> <transition-id>",
	Short: "Apply a workflow transition to a task's Jira issue",
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

		if err := services.Sync.TransitionTask(cmd.Context(), taskID, args[1]); err != nil {
			return err
		}
		if globals.jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{"task_id": taskID, "transition_id": args[1]})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s transition %s applied to task %d\n", successStyle.Render("✓"), args[1], taskID)
		return nil
	},
}

var syncLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent sync log entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck // best-effort close on exit

		logs, err := services.Sync.ListLogs(cmd.Context(), syncLogLimit)
		if err != nil {
			return err
		}
		if globals.jsonOutput {
			return printJSON(cmd.OutOrStdout(), logs)
		}
		out := cmd.OutOrStdout()
		if len(logs) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("No sync runs yet."))
			return nil
		}
		for _, l := range logs {
			fmt.Fprintf(out, "%4d %s %-8s %-13s %s", l.ID, l.CreatedAt.Format("2006-01-02 15:04:05"),
				l.Type, l.Direction, statusStyle(string(l.Status)).Render(string(l.Status)))
			if l.ErrorMessage != "" {
				fmt.Fprint(out, mutedStyle.Render("  "+l.ErrorMessage))
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	syncProjectCmd.Flags().BoolVar(&syncForce, "force", false, "Create issues even for tasks synced before")
	syncTaskCmd.Flags().BoolVar(&syncForce, "force", false, "Create an issue even if the task was synced before")
	syncLogsCmd.Flags().IntVar(&syncLogLimit, "limit", 20, "Maximum number of entries")
	syncCmd.AddCommand(syncProjectCmd, syncTaskCmd, syncStatusCmd, syncTransitionCmd, syncLogsCmd)
	RootCmd.AddCommand(syncCmd)
}

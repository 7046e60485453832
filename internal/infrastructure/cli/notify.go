package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/planllama/internal/infrastructure/webhook"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Inspect sync notifications",
}

var notifyDeadLettersCmd = &cobra.Command{
	Use:   "dead-letters",
	Short: "List webhook deliveries that ran out of retries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path := cfg.Notify.DeadLetterPath
		if path == "" {
			return NewCLIError("no dead letter file configured", "Set notify.dead_letter_path in "+configPath(), nil)
		}

		letters, err := webhook.NewDeadLetterStore(path).ReadAll()
		if err != nil {
			return NewCLIError("failed to read dead letters", "Check that "+path+" is readable", err)
		}
		if globals.jsonOutput {
			if letters == nil {
				letters = []webhook.DeadLetter{}
			}
			return printJSON(cmd.OutOrStdout(), letters)
		}

		out := cmd.OutOrStdout()
		if len(letters) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("No failed deliveries."))
			return nil
		}
		for _, dl := range letters {
			fmt.Fprintf(out, "%s %-12s %-24s %s\n",
				dl.Timestamp.Format("2006-01-02 15:04:05"),
				dl.WebhookName,
				dl.EventType,
				errorStyle.Render(fmt.Sprintf("%d attempts: %s", dl.Attempts, dl.Error)))
		}
		return nil
	},
}

func init() {
	notifyCmd.AddCommand(notifyDeadLettersCmd)
	RootCmd.AddCommand(notifyCmd)
}

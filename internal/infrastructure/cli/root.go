package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	dbURL      string
	jsonOutput bool
}

var globals globalOptions

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "planllama",
	Version: Version,
	Short:   "Assign project tasks to the right people and mirror them into Jira",
	Long: `planllama keeps projects, employees and tasks in one record store.
It helps teams answer:
1. Who should take this task?
2. Is the team covering the skills the project needs?
3. Is Jira in line with the plan?`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// globalFlagSet builds the persistent flags.
func globalFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("global", pflag.ContinueOnError)
	fs.StringVar(&globals.configPath, "config", "", "Config file (default planllama.yaml)")
	fs.StringVar(&globals.dbURL, "db", "", "Database path or URL, overrides config and DATABASE_URL")
	fs.BoolVar(&globals.jsonOutput, "json", false, "Output in JSON format")
	return fs
}

// Execute runs the root command and prints mapped errors with their hints.
func Execute() error {
	err := RootCmd.Execute()
	if err == nil {
		return nil
	}
	err = MapError(err)
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.Hint != "" {
		fmt.Fprintln(os.Stderr, hintStyle.Render("Hint: "+cliErr.Hint))
	}
	return err
}

func init() {
	RootCmd.PersistentFlags().AddFlagSet(globalFlagSet())
}

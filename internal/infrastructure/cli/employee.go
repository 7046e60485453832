package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var employeeCmd = &cobra.Command{
	Use:   "employee",
	Short: "Inspect the employee directory",
}

var employeeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees with their load and skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck // best-effort close on exit

		employees, err := services.Employees.ListEmployees(cmd.Context())
		if err != nil {
			return err
		}
		if globals.jsonOutput {
			return printJSON(cmd.OutOrStdout(), employees)
		}
		out := cmd.OutOrStdout()
		if len(employees) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("No employees. Run 'planllama seed' to load some."))
			return nil
		}
		for _, e := range employees {
			fmt.Fprintf(out, "%-6s %-22s %3d/%-3dh", e.ExternalID, e.Name, e.CurrentLoadHours, e.CapacityHours)
			for _, s := range e.Skills {
				fmt.Fprint(out, mutedStyle.Render(fmt.Sprintf(" %s:%d", s.Name, s.Level)))
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	employeeCmd.AddCommand(employeeListCmd)
	RootCmd.AddCommand(employeeCmd)
}

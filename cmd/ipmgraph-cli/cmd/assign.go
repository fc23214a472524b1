package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ipmgraph/internal/application"
	"ipmgraph/internal/application/assign"
	"ipmgraph/internal/application/commands"
	"ipmgraph/internal/domain"
)

var resetTypes bool

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign node types from the active profile",
	Long: `Scan the package and search for a node type for every entry that
satisfies the profile. Exits with an error and lists the violations when
no valid assignment exists.

Examples:
  ipmgraph-cli assign
  ipmgraph-cli assign --profile johnny-decimal
  ipmgraph-cli assign --reset`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := GetWorkspace()
		ctx := cmd.Context()
		scan, err := commands.NewScanCommand(w.Scanner, w.Store, w.Profile, w.RootPath).Execute(ctx)
		if err != nil {
			return err
		}

		c := commands.NewAssignCommand(w.Engine, scan.Root)
		c.Reset = resetTypes
		result, err := c.Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		if !result.Assigned {
			printViolations(result.Violations)
			return application.ErrValidation
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the synced tree against the profile",
	Long: `Check every rule of the profile against the types stored by the
last sync, without changing anything.

Example:
  ipmgraph-cli validate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := GetWorkspace()
		ctx := cmd.Context()
		root, err := w.Store.LoadTree(ctx, w.Profile)
		if err != nil {
			return err
		}
		if root == nil {
			return application.ErrNoSnapshot
		}

		result, err := commands.NewValidateTreeCommand(w.Engine, root).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		if !result.Valid {
			printViolations(result.Violations)
			return application.ErrValidation
		}
		return nil
	},
}

var settypeCmd = &cobra.Command{
	Use:   "settype <path> [type]",
	Short: "Lock or unlock the node type of one entry",
	Long: `Lock an entry to a node type so assignment keeps it fixed, then sync
the store. Without a type the entry is unlocked.

Examples:
  ipmgraph-cli settype docs/report.pdf file
  ipmgraph-cli settype "10-19 Finance" area
  ipmgraph-cli settype docs/report.pdf`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := GetWorkspace()
		ctx := cmd.Context()
		typeID := ""
		if len(args) == 2 {
			typeID = args[1]
		}

		result, err := w.Sync(ctx, func(root *domain.Node) error {
			res, err := commands.NewSetTypeCommand(w.Profile, root, args[0], typeID).Execute(ctx)
			if err != nil {
				return err
			}
			fmt.Println(res.Message)
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var setpropCmd = &cobra.Command{
	Use:   "setprop <path> <property> [values...]",
	Short: "Set or clear a property of one entry",
	Long: `Replace the values a user supplies for one property or cross-reference
of an entry, then sync the store. Without values the property is cleared and
derived or inherited values apply again. Cross-references take node IDs or
object URIs.

Examples:
  ipmgraph-cli setprop . rights CC-BY-4.0
  ipmgraph-cli setprop "S01.10-19 Finance" owner "Accounts team"
  ipmgraph-cli setprop docs/report.pdf rights`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := GetWorkspace()
		ctx := cmd.Context()

		result, err := w.Sync(ctx, func(root *domain.Node) error {
			res, err := commands.NewSetPropertyCommand(w.Profile, root, args[0], args[1], args[2:]...).Execute(ctx)
			if err != nil {
				return err
			}
			fmt.Println(res.Message)
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func printViolations(violations []assign.Violation) {
	for _, v := range violations {
		fmt.Printf("  %s\n", v)
	}
}

func init() {
	assignCmd.Flags().BoolVar(&resetTypes, "reset", false, "drop unlocked types carried from the last snapshot first")
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(settypeCmd)
	rootCmd.AddCommand(setpropCmd)
}

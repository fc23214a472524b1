package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <uri>",
	Short: "List the triples about one domain object",
	Long: `List every triple whose subject is the given object URI. Use
"tree --uris" to find the URI of an entry.

Example:
  ipmgraph-cli describe https://ipmgraph.dev/objects/0b7f...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		triples, err := GetWorkspace().Objects.Describe(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, t := range triples {
			fmt.Printf("%s  %s\n", t.Predicate, t.Object)
		}
		return nil
	},
}

var objectCmd = &cobra.Command{
	Use:   "object",
	Short: "Create domain objects that are not (yet) in the package",
}

var reserveCmd = &cobra.Command{
	Use:   "reserve <path> <type>",
	Short: "Reserve a URI for an entry that does not exist yet",
	Long: `Mint a URI for a future entry and record its path and node type.

Example:
  ipmgraph-cli object reserve docs/annual-report.pdf file`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uri, err := GetWorkspace().Objects.ReserveResource(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(uri)
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create <path> <type> <source-file>",
	Short: "Describe a file-bearing object from its content",
	Long: `Mint a URI and record size, checksums and format of source-file under
the given package path and node type. Use "-" to read stdin.

Example:
  ipmgraph-cli object create docs/scan.tiff file ~/incoming/scan.tiff`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := os.Stdin
		if args[2] != "-" {
			f, err := os.Open(args[2])
			if err != nil {
				return err
			}
			defer f.Close()
			src = f
		}

		uri, err := GetWorkspace().Objects.CreateResource(cmd.Context(), args[0], args[1], src)
		if err != nil {
			return err
		}
		fmt.Println(uri)
		return nil
	},
}

func init() {
	objectCmd.AddCommand(reserveCmd)
	objectCmd.AddCommand(createCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(objectCmd)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ipmgraph/internal/application"
	"ipmgraph/internal/application/commands"
	"ipmgraph/internal/domain"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the package and report what was found",
	Long: `Scan the package root, computing checksums and detecting formats.
Identifiers, locked types and properties are carried over from the last
synced snapshot.

Example:
  ipmgraph-cli scan --root ./my-package`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := GetWorkspace()
		result, err := commands.NewScanCommand(w.Scanner, w.Store, w.Profile, w.RootPath).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		if result.Previous != nil {
			fmt.Println("Carried identifiers from the last snapshot")
		}
		return nil
	},
}

var showURIs bool

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Display the package tree with node types",
	Long: `Scan the package, assign node types and display the tree.
Types locked with settype are marked with *.

Example:
  ipmgraph-cli tree
  ipmgraph-cli tree --uris`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scan, assigned, err := GetWorkspace().Typed(cmd.Context())
		if err != nil {
			return err
		}
		printTree(scan.Root, showURIs)
		if !assigned.Assigned {
			fmt.Println()
			fmt.Println(assigned.Message)
		}
		return nil
	},
}

func printTree(root *domain.Node, uris bool) {
	domain.Walk(root, domain.PreOrder, func(n *domain.Node) error {
		name := n.Name()
		if n.IsDir() {
			name += "/"
		}
		line := fmt.Sprintf("%s%s [%s]", strings.Repeat("  ", n.Depth()), name, application.TypeLabel(n))
		if uris && n.ObjectURI != "" {
			line += " " + n.ObjectURI
		}
		fmt.Println(line)
		return nil
	})
}

func init() {
	treeCmd.Flags().BoolVar(&showURIs, "uris", false, "show object URIs")
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(treeCmd)
}

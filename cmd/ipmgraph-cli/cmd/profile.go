package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ipmgraph/internal/adapters/profiledoc"
	"ipmgraph/internal/application/commands"
	"ipmgraph/internal/workspace"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect and convert domain profiles",
}

var profileListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List the built-in profiles",
	Annotations: map[string]string{skipWorkspace: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range profiledoc.BuiltinNames() {
			marker := " "
			if name == cfg.Profile {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name-or-path]",
	Short: "Describe a profile",
	Long: `Describe the node types, permitted children, properties and relations
of a profile. Without an argument the active profile is shown.

Examples:
  ipmgraph-cli profile show
  ipmgraph-cli profile show johnny-decimal
  ipmgraph-cli profile show ./archive.yaml`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{skipWorkspace: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			cfg.Profile = args[0]
		}
		profile, err := workspace.LoadProfile(cfg)
		if err != nil {
			return err
		}
		result, err := commands.NewShowProfileCommand(profile).Execute(cmd.Context())
		if err != nil {
			return err
		}
		printProfile(result)
		return nil
	},
}

var profileConvertCmd = &cobra.Command{
	Use:   "convert <name-or-path> <output>",
	Short: "Write a profile as YAML or JSON",
	Long: `Write a profile document, picking YAML or JSON from the output file
extension. Built-in profiles can be exported this way as a starting point.

Examples:
  ipmgraph-cli profile convert basic my-profile.yaml
  ipmgraph-cli profile convert ./archive.yaml archive.json`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{skipWorkspace: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := profiledoc.Resolve(args[0])
		if err != nil {
			return err
		}
		if err := profiledoc.Save(args[1], profile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Wrote %s (%s)\n", args[1], profiledoc.FormatFromPath(args[1]))
		return nil
	},
}

func printProfile(p *commands.ProfileResult) {
	fmt.Printf("%s %s (%s)\n", p.ID, p.Version, p.Name)
	fmt.Printf("namespace: %s\n", p.Namespace)
	for _, t := range p.Types {
		root := ""
		if t.Root {
			root = ", root"
		}
		fmt.Printf("\n%s  %s  [%s%s]\n", t.ID, t.Label, t.Bearing, root)
		if t.Pattern != "" {
			fmt.Printf("  name:     %s\n", t.Pattern)
		}
		for _, c := range t.Children {
			fmt.Printf("  child:    %s\n", c)
		}
		for _, prop := range t.Properties {
			fmt.Printf("  property: %s\n", prop)
		}
		for _, r := range t.Relations {
			fmt.Printf("  relation: %s\n", r)
		}
	}
}

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileConvertCmd)
	rootCmd.AddCommand(profileCmd)
}

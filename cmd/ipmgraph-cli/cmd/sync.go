package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ipmgraph/internal/adapters/watch"
	"ipmgraph/internal/application/commands"
	"ipmgraph/internal/domain"
	"ipmgraph/internal/workspace"
)

var materializeCmd = &cobra.Command{
	Use:   "materialize",
	Short: "Write every node of the package to the object store",
	Long: `Scan the package, assign types and write a domain object for every
node, minting URIs where none exist yet. The tree becomes the snapshot the
next sync compares against.

Example:
  ipmgraph-cli materialize`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := GetWorkspace()
		ctx := cmd.Context()
		scan, assigned, err := w.Typed(ctx)
		if err != nil {
			return err
		}
		if !assigned.Assigned {
			return &workspace.AssignmentError{Result: assigned}
		}

		result, err := commands.NewMaterializeCommand(w.Objects, w.Store, scan.Root).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Bring the object store in line with the package",
	Long: `Rescan the package, assign types and compare the tree with the last
snapshot. Only added, updated and deleted nodes are written.

Example:
  ipmgraph-cli sync`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), GetWorkspace(), true)
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show what the next sync would change",
	Long: `Compare the package on disk with the last snapshot without writing.

Example:
  ipmgraph-cli diff`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := GetWorkspace()
		ctx := cmd.Context()
		scan, assigned, err := w.Typed(ctx)
		if err != nil {
			return err
		}
		if !assigned.Assigned {
			return &workspace.AssignmentError{Result: assigned}
		}

		result, err := commands.NewDiffCommand(w.Store, w.Profile, scan.Root).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		printChanges(result.Changes)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync the store whenever the package changes",
	Long: `Sync once, then watch the package and sync again after every burst of
file system events. The quiet period comes from watch.debounce in the
configuration. Stop with Ctrl+C.

Example:
  ipmgraph-cli watch --log-level info`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := GetWorkspace()
		ctx := cmd.Context()
		if err := runSync(ctx, w, false); err != nil {
			return err
		}

		matcher, err := w.Ignore()
		if err != nil {
			return err
		}
		// A store inside the root must not retrigger the sync that wrote it
		storePath, _ := filepath.Abs(w.Store.Path())
		ignore := func(rel string, isDir bool) bool {
			if matcher.Match(rel, isDir) {
				return true
			}
			return strings.HasPrefix(filepath.Join(w.RootPath, filepath.FromSlash(rel)), storePath)
		}
		watcher, err := watch.New(w.RootPath,
			func(ctx context.Context) error {
				err := runSync(ctx, w, false)
				var assignErr *workspace.AssignmentError
				if errors.As(err, &assignErr) {
					// Keep watching; the package may be mid-edit
					fmt.Println(assignErr.Error())
					return nil
				}
				return err
			},
			watch.WithDebounce(w.Config.Watch.Debounce),
			watch.WithIgnore(ignore),
			watch.WithLogger(w.Logger),
		)
		if err != nil {
			return err
		}

		fmt.Printf("Watching %s\n", w.RootPath)
		return watcher.Run(ctx)
	},
}

func runSync(ctx context.Context, w *workspace.Workspace, verbose bool) error {
	result, err := w.Sync(ctx, nil)
	if err != nil {
		return err
	}
	fmt.Println(result.Message)
	if verbose {
		printChanges(result.Changes)
	}
	return nil
}

func printChanges(changes []domain.NodeComparison) {
	for _, c := range changes {
		fmt.Printf("  %-9s %s\n", c.Status, c.Node.RelPath())
	}
}

func init() {
	rootCmd.AddCommand(materializeCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(watchCmd)
}

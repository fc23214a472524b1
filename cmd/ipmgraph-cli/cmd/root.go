package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ipmgraph/internal/config"
	"ipmgraph/internal/workspace"
)

// skipWorkspace marks commands that run without opening the store
const skipWorkspace = "skip-workspace"

var (
	rootPath    string
	profileName string
	storePath   string
	namespace   string
	logLevel    string

	logger *slog.Logger
	cfg    *config.Config
	ws     *workspace.Workspace
)

var rootCmd = &cobra.Command{
	Use:   "ipmgraph-cli",
	Short: "Describe information packages as typed RDF graphs",
	Long: `ipmgraph-cli scans an information package (a directory tree of files),
assigns each entry a node type from a domain profile, and keeps a store of
RDF domain objects in line with the package as it changes.

Configuration is read from ~/.config/ipmgraph/config.yaml, ipmgraph.yaml in
the package root or its parents, IPMGRAPH_* environment variables and
finally the flags below.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		level, err := parseLevel(logLevel)
		if err != nil {
			return err
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		cfg, err = config.NewLoader(logger).Load(rootPath)
		if err != nil {
			return err
		}
		applyFlags(cmd)

		if cmd.Annotations[skipWorkspace] != "" {
			return nil
		}
		ws, err = workspace.Open(rootPath, cfg, logger)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ws == nil {
			return nil
		}
		err := ws.Close()
		ws = nil
		return err
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if ws != nil {
			ws.Close()
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&rootPath, "root", "r", config.RootPath(), "path to the package root")
	flags.StringVarP(&profileName, "profile", "p", "", "built-in profile name or profile document path")
	flags.StringVar(&storePath, "store", "", "database path (default: per-root location under XDG_DATA_HOME)")
	flags.StringVar(&namespace, "namespace", "", "base IRI for minted object URIs")
	flags.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
}

// applyFlags lets explicitly set flags override the loaded configuration
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("profile") {
		cfg.Profile = profileName
	}
	if flags.Changed("store") {
		cfg.Store.Path = storePath
	}
	if flags.Changed("namespace") {
		cfg.Namespace = namespace
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return level, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// GetWorkspace returns the initialized workspace
func GetWorkspace() *workspace.Workspace {
	return ws
}

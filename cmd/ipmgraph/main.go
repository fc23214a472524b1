package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ipmgraph/internal/adapters/editor"
	"ipmgraph/internal/adapters/tui"
	"ipmgraph/internal/config"
	"ipmgraph/internal/workspace"
)

func main() {
	rootFlag := flag.String("root", config.RootPath(), "path to the package root")
	profileFlag := flag.String("profile", "", "built-in profile name or profile document path")
	flag.Parse()

	// The alternate screen owns the terminal; only errors are reported,
	// after it closes
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg, err := config.NewLoader(logger).Load(*rootFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *profileFlag != "" {
		cfg.Profile = *profileFlag
	}

	// Initialize adapters
	w, err := workspace.Open(*rootFlag, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()

	// Create and run TUI app
	app := tui.NewApp(w, editor.NewOpener())

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		w.Close()
		os.Exit(1)
	}
}

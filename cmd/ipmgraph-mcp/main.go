package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "ipmgraph/internal/adapters/mcp"
	"ipmgraph/internal/config"
	"ipmgraph/internal/workspace"
)

func main() {
	rootFlag := flag.String("root", config.RootPath(), "path to the package root")
	profileFlag := flag.String("profile", "", "built-in profile name or profile document path")
	verbose := flag.Bool("verbose", false, "log debug output to stderr")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	// stdout carries the protocol, so logs go to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.NewLoader(logger).Load(*rootFlag)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *profileFlag != "" {
		cfg.Profile = *profileFlag
	}

	w, err := workspace.Open(*rootFlag, cfg, logger)
	if err != nil {
		logger.Error("Failed to open workspace", "error", err)
		os.Exit(1)
	}
	defer w.Close()

	mcpServer := server.NewMCPServer(
		"ipmgraph-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, w)
	mcpadapter.RegisterWriteTools(mcpServer, w)

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("ipmgraph-mcp stopped", "error", err)
		w.Close()
		os.Exit(1)
	}
}

package commands

import (
	"context"
	"fmt"

	"ipmgraph/internal/application"
	"ipmgraph/internal/domain"
	"ipmgraph/internal/ports"
)

// ScanResult contains the scanned tree
type ScanResult struct {
	Root *domain.Node
	// Previous is the stored snapshot the scan carried identifiers from,
	// nil on a first scan
	Previous    *domain.Node
	Files       int
	Directories int
	Message     string
}

// ScanCommand builds the IPM tree of a package root. When a snapshot of an
// earlier scan exists, node IDs, object URIs, user properties and locked
// types carry over by relative path.
type ScanCommand struct {
	scanner   ports.TreeScanner
	snapshots ports.TreeStore
	profile   *domain.Profile
	RootPath  string
}

// NewScanCommand creates a new ScanCommand. snapshots may be nil.
func NewScanCommand(scanner ports.TreeScanner, snapshots ports.TreeStore, profile *domain.Profile, rootPath string) *ScanCommand {
	return &ScanCommand{
		scanner:   scanner,
		snapshots: snapshots,
		profile:   profile,
		RootPath:  rootPath,
	}
}

// Validate checks if the scan can run
func (c *ScanCommand) Validate() error {
	return application.ValidateRequired("rootPath", c.RootPath)
}

// Execute runs the scan command
func (c *ScanCommand) Execute(ctx context.Context) (*ScanResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var previous *domain.Node
	if c.snapshots != nil {
		prev, err := c.snapshots.LoadTree(ctx, c.profile)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		previous = prev
	}

	var (
		root *domain.Node
		err  error
	)
	if previous != nil {
		root, err = c.scanner.RescanTree(ctx, c.RootPath, previous)
	} else {
		root, err = c.scanner.BuildTree(ctx, c.RootPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", c.RootPath, err)
	}

	result := &ScanResult{Root: root, Previous: previous}
	domain.Walk(root, domain.PreOrder, func(n *domain.Node) error {
		if n.IsFile() {
			result.Files++
		} else {
			result.Directories++
		}
		return nil
	})
	result.Message = fmt.Sprintf("Scanned %d files in %d directories", result.Files, result.Directories)
	return result, nil
}

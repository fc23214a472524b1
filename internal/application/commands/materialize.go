package commands

import (
	"context"
	"fmt"

	"ipmgraph/internal/application"
	"ipmgraph/internal/application/compare"
	"ipmgraph/internal/application/objects"
	"ipmgraph/internal/domain"
	"ipmgraph/internal/ports"
)

// MaterializeResult contains the outcome of a full materialization
type MaterializeResult struct {
	Resources int
	Message   string
}

// MaterializeCommand writes a resource for every node of a typed tree and
// stores the tree as the snapshot later syncs compare against
type MaterializeCommand struct {
	store     *objects.Store
	snapshots ports.TreeStore
	Root      *domain.Node
}

// NewMaterializeCommand creates a new MaterializeCommand. snapshots may be nil.
func NewMaterializeCommand(store *objects.Store, snapshots ports.TreeStore, root *domain.Node) *MaterializeCommand {
	return &MaterializeCommand{store: store, snapshots: snapshots, Root: root}
}

// Validate checks that every node is typed
func (c *MaterializeCommand) Validate() error {
	return requireTyped(c.Root)
}

// Execute runs the materialize command
func (c *MaterializeCommand) Execute(ctx context.Context) (*MaterializeResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := c.store.Materialize(ctx, c.Root); err != nil {
		return nil, fmt.Errorf("failed to materialize: %w", err)
	}
	if c.snapshots != nil {
		if err := c.snapshots.SaveTree(ctx, c.Root); err != nil {
			return nil, fmt.Errorf("failed to save snapshot: %w", err)
		}
	}

	n := c.Root.Count()
	return &MaterializeResult{
		Resources: n,
		Message:   fmt.Sprintf("Materialized %d resources", n),
	}, nil
}

// SyncResult contains the outcome of reconciling a tree with the store
type SyncResult struct {
	Stats   *domain.SyncStats
	Changes []domain.NodeComparison
	Message string
}

// SyncCommand reconciles the object store with a rescanned tree. The tree
// is compared with the stored snapshot, only changed resources are written,
// and the tree becomes the new snapshot.
type SyncCommand struct {
	store     *objects.Store
	snapshots ports.TreeStore
	recorder  ports.SyncRecorder
	Root      *domain.Node
}

// NewSyncCommand creates a new SyncCommand. recorder may be nil.
func NewSyncCommand(store *objects.Store, snapshots ports.TreeStore, recorder ports.SyncRecorder, root *domain.Node) *SyncCommand {
	return &SyncCommand{
		store:     store,
		snapshots: snapshots,
		recorder:  recorder,
		Root:      root,
	}
}

// Validate checks that every node is typed
func (c *SyncCommand) Validate() error {
	if c.snapshots == nil {
		return &application.ValidationError{Field: "snapshots", Message: "snapshot store is required"}
	}
	return requireTyped(c.Root)
}

// Execute runs the sync command
func (c *SyncCommand) Execute(ctx context.Context) (*SyncResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	previous, err := c.snapshots.LoadTree(ctx, c.store.Profile())
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	comparisons := compare.Trees(previous, c.Root)
	stats, err := c.store.Apply(ctx, c.Root, comparisons)
	if err != nil {
		return nil, fmt.Errorf("failed to apply changes: %w", err)
	}
	stats.FilesScanned = compare.Summarize(comparisons).FilesScanned

	if err := c.snapshots.SaveTree(ctx, c.Root); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	if c.recorder != nil {
		if err := c.recorder.RecordSync(ctx, c.store.Profile().ID(), stats); err != nil {
			return nil, fmt.Errorf("failed to record sync: %w", err)
		}
	}

	msg := "Store is up to date"
	if stats.Changed() {
		msg = fmt.Sprintf("Synced: %d added, %d updated, %d deleted", stats.NodesAdded, stats.NodesUpdated, stats.NodesDeleted)
	}
	return &SyncResult{
		Stats:   stats,
		Changes: compare.Changes(comparisons),
		Message: msg,
	}, nil
}

// DiffResult lists what a sync would change
type DiffResult struct {
	Changes []domain.NodeComparison
	Stats   domain.SyncStats
	Message string
}

// DiffCommand compares a tree with the stored snapshot without writing
type DiffCommand struct {
	snapshots ports.TreeStore
	profile   *domain.Profile
	Root      *domain.Node
}

// NewDiffCommand creates a new DiffCommand
func NewDiffCommand(snapshots ports.TreeStore, profile *domain.Profile, root *domain.Node) *DiffCommand {
	return &DiffCommand{snapshots: snapshots, profile: profile, Root: root}
}

// Validate checks if the diff can run
func (c *DiffCommand) Validate() error {
	if c.Root == nil {
		return &application.ValidationError{Field: "root", Message: "tree is required"}
	}
	return nil
}

// Execute runs the diff command
func (c *DiffCommand) Execute(ctx context.Context) (*DiffResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	previous, err := c.snapshots.LoadTree(ctx, c.profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	comparisons := compare.Trees(previous, c.Root)
	stats := compare.Summarize(comparisons)
	msg := "No changes"
	if stats.Changed() {
		msg = fmt.Sprintf("%d added, %d updated, %d deleted", stats.NodesAdded, stats.NodesUpdated, stats.NodesDeleted)
	}
	return &DiffResult{
		Changes: compare.Changes(comparisons),
		Stats:   stats,
		Message: msg,
	}, nil
}

func requireTyped(root *domain.Node) error {
	if root == nil {
		return &application.ValidationError{Field: "root", Message: "tree is required"}
	}
	var untyped *domain.Node
	domain.Walk(root, domain.PreOrder, func(n *domain.Node) error {
		if n.Type == nil {
			untyped = n
			return domain.StopWalk
		}
		return nil
	})
	if untyped != nil {
		return &application.ValidationError{Field: untyped.RelPath(), Message: "node has no type; run assign first"}
	}
	return nil
}

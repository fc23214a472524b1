package objects

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"ipmgraph/internal/domain"
)

// Materialize writes a resource for every node of a typed tree. URIs are
// minted top-down first so that each node can reference its parent; the
// resources are then written bottom-up so children exist before their
// parents point at them. The first failure stops the walk; resources
// already written stay in the store.
func (s *Store) Materialize(ctx context.Context, root *domain.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mintAll(ctx, root, nil); err != nil {
		return err
	}
	return domain.Walk(root, domain.PostOrder, func(n *domain.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return s.updateObject(ctx, n)
	})
}

// mintAll assigns URIs in pre-order to nodes that lack one. When only is
// non-nil, nodes outside it are skipped.
func (s *Store) mintAll(ctx context.Context, root *domain.Node, only map[domain.NodeID]bool) error {
	return domain.Walk(root, domain.PreOrder, func(n *domain.Node) error {
		if n.ObjectURI != "" || (only != nil && !only[n.ID]) {
			return nil
		}
		uri, err := s.mintURI(ctx)
		if err != nil {
			return err
		}
		n.ObjectURI = uri
		return nil
	})
}

// Apply reconciles the store with root given the comparison of the
// previously materialized tree against root. DELETED nodes lose their
// resources first; then ADDED and UPDATED nodes are written, together with
// every neighbour whose derived triples depend on them: the parents of
// added or deleted nodes, the parent and children of a node whose type
// changed, and the descendants of a node whose inheritable properties
// changed. Writes happen bottom-up.
func (s *Store) Apply(ctx context.Context, root *domain.Node, comparisons []domain.NodeComparison) (*domain.SyncStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	stats := &domain.SyncStats{}

	dirty := make(map[domain.NodeID]bool)
	added := make(map[domain.NodeID]bool)

	for _, c := range comparisons {
		switch c.Status {
		case domain.StatusDeleted:
			if err := s.deleteObject(ctx, c.Node); err != nil {
				return stats, err
			}
			stats.NodesDeleted++
			if c.Node.Parent != nil {
				dirty[c.Node.Parent.ID] = true
			}
		case domain.StatusAdded:
			stats.NodesAdded++
			added[c.Node.ID] = true
			dirty[c.Node.ID] = true
			if c.Node.Parent != nil {
				dirty[c.Node.Parent.ID] = true
			}
		case domain.StatusUpdated:
			stats.NodesUpdated++
			dirty[c.Node.ID] = true
			s.markDependents(c, dirty)
		case domain.StatusUnchanged:
			stats.NodesUnchanged++
		}
	}

	if err := s.mintAll(ctx, root, added); err != nil {
		return stats, err
	}

	written := 0
	err := domain.Walk(root, domain.PostOrder, func(n *domain.Node) error {
		if !dirty[n.ID] {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		written++
		return s.updateObject(ctx, n)
	})
	if err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	s.logger.Debug("Applied tree changes",
		slog.Int("added", stats.NodesAdded),
		slog.Int("updated", stats.NodesUpdated),
		slog.Int("deleted", stats.NodesDeleted),
		slog.Int("written", written),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

// markDependents marks the nodes whose derived triples an UPDATED node
// invalidates. Hierarchical relations are chosen by the neighbour's type,
// and inherited values are read from the nearest ancestor.
func (s *Store) markDependents(c domain.NodeComparison, dirty map[domain.NodeID]bool) {
	prev, n := c.Previous, c.Node
	if prev == nil {
		return
	}

	if typeID(prev) != typeID(n) {
		if n.Parent != nil {
			dirty[n.Parent.ID] = true
		}
		for _, child := range n.Children {
			dirty[child.ID] = true
		}
	}

	if s.inheritableChanged(prev, n) {
		domain.Walk(n, domain.PreOrder, func(d *domain.Node) error {
			dirty[d.ID] = true
			return nil
		})
	}
}

// inheritableChanged reports whether a property some type inherits has
// different values on the two snapshots of a node
func (s *Store) inheritableChanged(prev, n *domain.Node) bool {
	for _, id := range s.inheritable {
		if !slices.Equal(prev.Properties[id], n.Properties[id]) {
			return true
		}
	}
	return false
}

func typeID(n *domain.Node) string {
	if n.Type == nil {
		return ""
	}
	return n.Type.ID
}

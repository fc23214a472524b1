// Package compare classifies the differences between two snapshots of the
// same IPM tree.
package compare

import (
	"maps"
	"slices"

	"ipmgraph/internal/domain"
)

// Trees compares before against after by node ID. Every node of after appears once
// in pre-order, followed by the DELETED nodes of before in pre-order. Either
// tree may be nil.
//
// A matched node is UPDATED when its type, user properties, content, path
// or its ordered list of retained children differ. A child that was only
// added or removed is reported on the child itself, so the parent keeps its
// status; a child that moved between parents changes both parents.
func Trees(before, after *domain.Node) []domain.NodeComparison {
	oldByID := index(before)
	newByID := index(after)

	var out []domain.NodeComparison
	domain.Walk(after, domain.PreOrder, func(n *domain.Node) error {
		prev, ok := oldByID[n.ID]
		status := domain.StatusAdded
		if ok {
			status = domain.StatusUnchanged
			if changed(prev, n, oldByID, newByID) {
				status = domain.StatusUpdated
			}
		}
		out = append(out, domain.NodeComparison{Node: n, Status: status, Previous: prev})
		return nil
	})

	domain.Walk(before, domain.PreOrder, func(n *domain.Node) error {
		if _, ok := newByID[n.ID]; !ok {
			out = append(out, domain.NodeComparison{Node: n, Status: domain.StatusDeleted})
		}
		return nil
	})
	return out
}

// Summarize counts comparisons by status
func Summarize(comparisons []domain.NodeComparison) domain.SyncStats {
	var stats domain.SyncStats
	for _, c := range comparisons {
		switch c.Status {
		case domain.StatusAdded:
			stats.NodesAdded++
		case domain.StatusUpdated:
			stats.NodesUpdated++
		case domain.StatusDeleted:
			stats.NodesDeleted++
		case domain.StatusUnchanged:
			stats.NodesUnchanged++
		}
		if c.Status != domain.StatusDeleted && c.Node.IsFile() {
			stats.FilesScanned++
		}
	}
	return stats
}

// Changes drops UNCHANGED entries
func Changes(comparisons []domain.NodeComparison) []domain.NodeComparison {
	var out []domain.NodeComparison
	for _, c := range comparisons {
		if c.Status != domain.StatusUnchanged {
			out = append(out, c)
		}
	}
	return out
}

func index(root *domain.Node) map[domain.NodeID]*domain.Node {
	byID := make(map[domain.NodeID]*domain.Node)
	domain.Walk(root, domain.PreOrder, func(n *domain.Node) error {
		byID[n.ID] = n
		return nil
	})
	return byID
}

func changed(prev, cur *domain.Node, oldByID, newByID map[domain.NodeID]*domain.Node) bool {
	if typeID(prev) != typeID(cur) || prev.TypeLocked != cur.TypeLocked {
		return true
	}
	if prev.RelPath() != cur.RelPath() {
		return true
	}
	if !prev.Info.SameContent(cur.Info) {
		return true
	}
	if !maps.EqualFunc(prev.Properties, cur.Properties, slices.Equal[[]string]) {
		return true
	}
	return !slices.Equal(retained(prev.Children, newByID), retained(cur.Children, oldByID))
}

// retained returns the IDs of children that also exist in the other snapshot
func retained(children []*domain.Node, other map[domain.NodeID]*domain.Node) []domain.NodeID {
	ids := make([]domain.NodeID, 0, len(children))
	for _, c := range children {
		if _, ok := other[c.ID]; ok {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func typeID(n *domain.Node) string {
	if n.Type == nil {
		return ""
	}
	return n.Type.ID
}

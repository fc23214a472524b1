package application

import "ipmgraph/internal/domain"

// Re-export domain types for use by adapters
type (
	Node             = domain.Node
	NodeID           = domain.NodeID
	NodeType         = domain.NodeType
	Profile          = domain.Profile
	Triple           = domain.Triple
	NodeComparison   = domain.NodeComparison
	ComparisonStatus = domain.ComparisonStatus
	SyncStats        = domain.SyncStats
)

const (
	StatusAdded     = domain.StatusAdded
	StatusDeleted   = domain.StatusDeleted
	StatusUpdated   = domain.StatusUpdated
	StatusUnchanged = domain.StatusUnchanged
)

// TypeLabel returns the ID of n's type, or "-" when it has none
func TypeLabel(n *domain.Node) string {
	if n.Type == nil {
		return "-"
	}
	if n.TypeLocked {
		return n.Type.ID + "*"
	}
	return n.Type.ID
}

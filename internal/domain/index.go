package domain

import "time"

// ComparisonStatus classifies a node when two tree snapshots are compared
type ComparisonStatus string

const (
	StatusAdded     ComparisonStatus = "ADDED"
	StatusDeleted   ComparisonStatus = "DELETED"
	StatusUpdated   ComparisonStatus = "UPDATED"
	StatusUnchanged ComparisonStatus = "UNCHANGED"
)

// NodeComparison pairs a node with its status from one comparison pass
type NodeComparison struct {
	Node   *Node
	Status ComparisonStatus
	// Previous is the matched node of the earlier tree; nil for ADDED and
	// DELETED entries
	Previous *Node
}

// SyncStats holds statistics from a sync or reconciliation
type SyncStats struct {
	NodesAdded     int
	NodesUpdated   int
	NodesDeleted   int
	NodesUnchanged int
	FilesScanned   int
	Duration       time.Duration
}

// Changed reports whether any node was added, updated or deleted
func (s SyncStats) Changed() bool {
	return s.NodesAdded+s.NodesUpdated+s.NodesDeleted > 0
}

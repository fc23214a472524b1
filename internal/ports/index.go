package ports

import (
	"context"
	"io"

	"ipmgraph/internal/domain"
)

// TripleStore holds domain-object triples plus the bookkeeping of which
// structural relations currently hold between resources.
type TripleStore interface {
	// Lifecycle
	Close() error

	// Queries
	Match(ctx context.Context, pattern domain.TriplePattern) ([]domain.Triple, error)
	Exists(ctx context.Context, subject string) (bool, error)
	Relations(ctx context.Context, subject string) ([]domain.RelationEdge, error)
	RelationsTo(ctx context.Context, target string) ([]domain.RelationEdge, error)

	// Mutations happen inside a transaction so one resource is never
	// half-written
	BeginTx(ctx context.Context) (TripleTx, error)
}

// TripleTx is an atomic batch of triple mutations
type TripleTx interface {
	Add(t domain.Triple) error
	Remove(pattern domain.TriplePattern) (int64, error)

	AddRelation(edge domain.RelationEdge) error
	// RemoveRelations deletes edges (and their triples) from subject. When
	// hierarchical is nil every edge goes, otherwise only the matching kind.
	RemoveRelations(subject string, hierarchical *bool) (int64, error)
	RemoveRelation(subject, relation string) (int64, error)
	RemoveRelationsTo(target string) (int64, error)

	Commit() error
	Rollback() error
}

// TreeStore persists a tree snapshot so later scans can be reconciled with
// what was materialized before
type TreeStore interface {
	SaveTree(ctx context.Context, root *domain.Node) error
	// LoadTree returns the last saved snapshot, or nil if none exists. Node
	// types are resolved against profile.
	LoadTree(ctx context.Context, profile *domain.Profile) (*domain.Node, error)
}

// SyncRecorder keeps the outcome of the last reconciliation
type SyncRecorder interface {
	RecordSync(ctx context.Context, profileID string, stats *domain.SyncStats) error
}

// TripleEncoder serializes triples to a byte stream
type TripleEncoder interface {
	Encode(w io.Writer, triples []domain.Triple) error
}

package ports

import (
	"context"

	"ipmgraph/internal/domain"
)

// TreeScanner builds an untyped IPM tree from a filesystem root
type TreeScanner interface {
	BuildTree(ctx context.Context, rootPath string) (*domain.Node, error)

	// RescanTree is BuildTree that carries node IDs, object URIs, user
	// properties and locked types forward from previous by relative path
	RescanTree(ctx context.Context, rootPath string, previous *domain.Node) (*domain.Node, error)
}

// FormatDetector identifies the content format of a file from its path and
// leading bytes. A detector is an explicitly owned handle: callers create
// it, pass it where needed, and Close it when done.
type FormatDetector interface {
	// Detect returns zero or more candidate formats, best match first
	Detect(path string, header []byte) ([]domain.Format, error)

	// HeaderSize is the number of leading bytes Detect wants to see
	HeaderSize() int

	Close() error
}

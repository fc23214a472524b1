package commands

import (
	"context"
	"fmt"
	"io"

	"ipmgraph/internal/application"
	"ipmgraph/internal/domain"
	"ipmgraph/internal/ports"
)

// ExportResult contains the outcome of an export
type ExportResult struct {
	Triples int
	Message string
}

// ExportCommand serializes the whole object store
type ExportCommand struct {
	triples ports.TripleStore
	encoder ports.TripleEncoder
	Out     io.Writer
}

// NewExportCommand creates a new ExportCommand
func NewExportCommand(triples ports.TripleStore, encoder ports.TripleEncoder, out io.Writer) *ExportCommand {
	return &ExportCommand{triples: triples, encoder: encoder, Out: out}
}

// Validate checks if the export can run
func (c *ExportCommand) Validate() error {
	if c.Out == nil {
		return &application.ValidationError{Field: "out", Message: "output is required"}
	}
	if c.encoder == nil {
		return &application.ValidationError{Field: "format", Message: "encoder is required"}
	}
	return nil
}

// Execute runs the export command
func (c *ExportCommand) Execute(ctx context.Context) (*ExportResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	triples, err := c.triples.Match(ctx, domain.TriplePattern{})
	if err != nil {
		return nil, fmt.Errorf("failed to read store: %w", err)
	}
	if err := c.encoder.Encode(c.Out, triples); err != nil {
		return nil, fmt.Errorf("failed to encode: %w", err)
	}

	return &ExportResult{
		Triples: len(triples),
		Message: fmt.Sprintf("Exported %d triples", len(triples)),
	}, nil
}

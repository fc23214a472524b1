package application

import (
	"errors"

	"ipmgraph/internal/domain"
)

// Sentinel errors for common conditions
var (
	ErrNotFound         = domain.ErrNotFound
	ErrValidation       = domain.ErrValidation
	ErrIO               = domain.ErrIO
	ErrInvalidOperation = errors.New("invalid operation")
	ErrNoSnapshot       = errors.New("no tree snapshot; run materialize first")
)

// Re-exported so adapters never reach into domain for error kinds
type (
	ValidationError = domain.ValidationError
	NotFoundError   = domain.NotFoundError
	IOError         = domain.IOError
)

// Package objects projects typed IPM trees into a triple store and keeps
// the projection in step with later tree edits.
package objects

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"ipmgraph/internal/domain"
	"ipmgraph/internal/ports"
	"ipmgraph/internal/vocabulary"
)

// maxMintAttempts bounds URI minting retries on collision
const maxMintAttempts = 8

// Store is the domain object store. Every mutating call runs in one
// transaction, and calls are serialized, so one resource's triples are
// never half-written.
type Store struct {
	profile    *domain.Profile
	triples    ports.TripleStore
	detector   ports.FormatDetector
	algorithms []domain.ChecksumAlgorithm
	suffix     func() string
	logger     *slog.Logger

	// inheritable lists the property IDs some type marks inheritable
	inheritable []string

	mu     sync.Mutex
	minted map[string]bool // minted in this instance, possibly not yet written
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithSuffixGenerator replaces the random URI suffix source
func WithSuffixGenerator(fn func() string) Option {
	return func(s *Store) {
		s.suffix = fn
	}
}

// WithDetector sets the format detector used by CreateResource
func WithDetector(d ports.FormatDetector) Option {
	return func(s *Store) {
		s.detector = d
	}
}

// WithAlgorithms sets the digests CreateResource records
func WithAlgorithms(algs ...domain.ChecksumAlgorithm) Option {
	return func(s *Store) {
		s.algorithms = algs
	}
}

// NewStore creates an object store writing to triples
func NewStore(profile *domain.Profile, triples ports.TripleStore, opts ...Option) *Store {
	s := &Store{
		profile:    profile,
		triples:    triples,
		algorithms: domain.DefaultAlgorithms,
		suffix:     uuid.NewString,
		logger:     slog.Default(),
		minted:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, t := range profile.Types() {
		for _, pt := range t.Properties {
			if pt.Inheritable && !slices.Contains(s.inheritable, pt.ID) {
				s.inheritable = append(s.inheritable, pt.ID)
			}
		}
	}
	return s
}

// Profile returns the profile objects are typed with
func (s *Store) Profile() *domain.Profile {
	return s.profile
}

// mintURI returns a fresh URI in the profile namespace that neither the
// store nor this instance has used
func (s *Store) mintURI(ctx context.Context) (string, error) {
	for range maxMintAttempts {
		uri := s.profile.Namespace() + s.suffix()
		if s.minted[uri] {
			continue
		}
		exists, err := s.triples.Exists(ctx, uri)
		if err != nil {
			return "", fmt.Errorf("checking URI %s: %w", uri, err)
		}
		if !exists {
			s.minted[uri] = true
			return uri, nil
		}
	}
	return "", fmt.Errorf("could not mint a unique URI after %d attempts", maxMintAttempts)
}

// Describe returns every triple about uri
func (s *Store) Describe(ctx context.Context, uri string) ([]domain.Triple, error) {
	triples, err := s.triples.Match(ctx, domain.TriplePattern{Subject: uri})
	if err != nil {
		return nil, err
	}
	if len(triples) == 0 {
		return nil, &domain.NotFoundError{Kind: "object", ID: uri}
	}
	return triples, nil
}

// withTx runs fn in one transaction, rolling back on error
func (s *Store) withTx(ctx context.Context, fn func(tx ports.TripleTx) error) error {
	tx, err := s.triples.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func classTriple(uri string, t *domain.NodeType) (domain.Triple, bool) {
	if t.ClassURI == "" {
		return domain.Triple{}, false
	}
	return domain.IRITriple(uri, vocabulary.RDFType, t.ClassURI), true
}

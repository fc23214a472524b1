package objects

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"ipmgraph/internal/domain"
	"ipmgraph/internal/ports"
	"ipmgraph/internal/vocabulary"
)

// ReserveResource mints a URI for an entry an archive assembler is about to
// write, before any tree node exists for it
func (s *Store) ReserveResource(ctx context.Context, path, typeID string) (string, error) {
	t, err := s.profile.MustType(typeID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uri, err := s.mintURI(ctx)
	if err != nil {
		return "", err
	}

	triples := []domain.Triple{
		domain.LiteralTriple(uri, vocabulary.NodeType, t.ID, ""),
		domain.LiteralTriple(uri, vocabulary.Path, path, ""),
		domain.LiteralTriple(uri, vocabulary.Reserved, "true", vocabulary.XSDBoolean),
	}
	if class, ok := classTriple(uri, t); ok {
		triples = append(triples, class)
	}
	if err := s.addAll(ctx, triples); err != nil {
		return "", fmt.Errorf("reserving %s: %w", path, err)
	}
	return uri, nil
}

// CreateResource records a file-bearing resource from raw content. The
// content is read once; its size and digests are recorded, along with the
// detected format when a detector is configured.
func (s *Store) CreateResource(ctx context.Context, path, typeID string, content io.Reader) (string, error) {
	t, err := s.profile.MustType(typeID)
	if err != nil {
		return "", err
	}
	if t.Bearing == domain.BearingDirectory {
		return "", &domain.ValidationError{Field: path, Message: "type " + t.ID + " cannot hold content"}
	}

	headerSize := 0
	if s.detector != nil {
		headerSize = s.detector.HeaderSize()
	}
	result, err := domain.Digest(content, s.algorithms, headerSize)
	if err != nil {
		return "", &domain.IOError{Op: "read", Path: path, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uri, err := s.mintURI(ctx)
	if err != nil {
		return "", err
	}

	triples := []domain.Triple{
		domain.LiteralTriple(uri, vocabulary.NodeType, t.ID, ""),
		domain.LiteralTriple(uri, vocabulary.Path, path, ""),
		domain.LiteralTriple(uri, vocabulary.Size, strconv.FormatInt(result.Size, 10), vocabulary.XSDInteger),
	}
	if class, ok := classTriple(uri, t); ok {
		triples = append(triples, class)
	}
	for _, alg := range s.algorithms {
		if sum, ok := result.Checksums[alg]; ok {
			triples = append(triples, domain.LiteralTriple(uri, vocabulary.DigestPredicate(alg), hex.EncodeToString(sum), ""))
		}
	}
	if s.detector != nil {
		if formats, err := s.detector.Detect(path, result.Header); err == nil && len(formats) > 0 {
			triples = append(triples, domain.LiteralTriple(uri, vocabulary.Format, formats[0].MIME, ""))
		}
	}

	if err := s.addAll(ctx, triples); err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	return uri, nil
}

func (s *Store) addAll(ctx context.Context, triples []domain.Triple) error {
	return s.withTx(ctx, func(tx ports.TripleTx) error {
		for _, t := range triples {
			if err := tx.Add(t); err != nil {
				return err
			}
		}
		return nil
	})
}

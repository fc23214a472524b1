// Package rdf serializes store triples as N-Triples or Turtle
package rdf

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/klauspost/compress/zstd"

	"ipmgraph/internal/domain"
	"ipmgraph/internal/ports"
	"ipmgraph/internal/vocabulary"
)

// Format specifies the output serialization format
type Format string

const (
	FormatNTriples Format = "ntriples"
	FormatTurtle   Format = "turtle"
)

// CompressedExt is appended to file names of zstd-compressed exports
const CompressedExt = ".zst"

// Formats returns the supported format names
func Formats() []string {
	return []string{string(FormatNTriples), string(FormatTurtle)}
}

// ParseFormat accepts a format name or its usual file extension
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "ntriples", "nt", "n-triples":
		return FormatNTriples, nil
	case "turtle", "ttl":
		return FormatTurtle, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// FormatFromPath picks the format and compression from a file name such as
// "graph.ttl" or "graph.nt.zst"
func FormatFromPath(path string) (Format, bool, error) {
	compressed := strings.EqualFold(filepath.Ext(path), CompressedExt)
	if compressed {
		path = strings.TrimSuffix(path, filepath.Ext(path))
	}
	f, err := ParseFormat(filepath.Ext(path))
	return f, compressed, err
}

// Encoder writes triples in one format
type Encoder struct {
	format   Format
	compress bool
	prefixes map[string]string
}

// Ensure Encoder implements TripleEncoder
var _ ports.TripleEncoder = (*Encoder)(nil)

// Option configures an Encoder
type Option func(*Encoder)

// WithCompression wraps the output in a zstd stream
func WithCompression(on bool) Option {
	return func(e *Encoder) {
		e.compress = on
	}
}

// WithPrefix adds a Turtle prefix
func WithPrefix(name, iri string) Option {
	return func(e *Encoder) {
		e.prefixes[name] = iri
	}
}

// NewEncoder creates an encoder; Turtle output starts with the vocabulary
// prefixes
func NewEncoder(format Format, opts ...Option) *Encoder {
	e := &Encoder{format: format, prefixes: vocabulary.Prefixes()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode writes triples to w. Output is sorted by subject, predicate and
// object so equal stores serialize identically.
func (e *Encoder) Encode(w io.Writer, triples []domain.Triple) (err error) {
	if e.compress {
		zw, zerr := zstd.NewWriter(w)
		if zerr != nil {
			return fmt.Errorf("creating zstd encoder: %w", zerr)
		}
		defer func() {
			if cerr := zw.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("closing encoder: %w", cerr)
			}
		}()
		w = zw
	}

	sorted := slices.Clone(triples)
	slices.SortStableFunc(sorted, compareTriples)

	bw := bufio.NewWriter(w)
	switch e.format {
	case FormatNTriples:
		writeNTriples(bw, sorted)
	case FormatTurtle:
		e.writeTurtle(bw, sorted)
	default:
		return fmt.Errorf("unsupported format: %s", e.format)
	}
	return bw.Flush()
}

func compareTriples(a, b domain.Triple) int {
	if c := strings.Compare(a.Subject, b.Subject); c != 0 {
		return c
	}
	if c := strings.Compare(a.Predicate, b.Predicate); c != 0 {
		return c
	}
	return strings.Compare(a.Object, b.Object)
}

func writeNTriples(w *bufio.Writer, triples []domain.Triple) {
	for _, t := range triples {
		fmt.Fprintf(w, "<%s> <%s> %s .\n", t.Subject, t.Predicate, objectNTriples(t))
	}
}

func objectNTriples(t domain.Triple) string {
	if t.Kind == domain.ObjectIRI {
		return "<" + t.Object + ">"
	}
	lit := `"` + escapeString(t.Object) + `"`
	if t.Datatype != "" && t.Datatype != vocabulary.XSDString {
		lit += "^^<" + t.Datatype + ">"
	}
	return lit
}

func (e *Encoder) writeTurtle(w *bufio.Writer, triples []domain.Triple) {
	names := make([]string, 0, len(e.prefixes))
	for name := range e.prefixes {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(w, "@prefix %s: <%s> .\n", name, e.prefixes[name])
	}

	for i, t := range triples {
		switch {
		case i == 0:
			fmt.Fprintf(w, "\n%s\n", e.compact(t.Subject))
		case triples[i-1].Subject != t.Subject:
			fmt.Fprintf(w, " .\n\n%s\n", e.compact(t.Subject))
		default:
			w.WriteString(" ;\n")
		}

		predicate := e.compact(t.Predicate)
		if t.Predicate == vocabulary.RDFType {
			predicate = "a"
		}
		fmt.Fprintf(w, "    %s %s", predicate, e.objectTurtle(t))
	}
	if len(triples) > 0 {
		w.WriteString(" .\n")
	}
}

func (e *Encoder) objectTurtle(t domain.Triple) string {
	if t.Kind == domain.ObjectIRI {
		return e.compact(t.Object)
	}
	lit := `"` + escapeString(t.Object) + `"`
	if t.Datatype != "" && t.Datatype != vocabulary.XSDString {
		lit += "^^" + e.compact(t.Datatype)
	}
	return lit
}

var localName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// compact returns prefix:local when a prefix covers iri and the remainder is
// a plain local name, else the full <iri>. The longest namespace wins.
func (e *Encoder) compact(iri string) string {
	best, bestNS := "", ""
	for name, ns := range e.prefixes {
		if strings.HasPrefix(iri, ns) && len(ns) > len(bestNS) && localName.MatchString(iri[len(ns):]) {
			best, bestNS = name, ns
		}
	}
	if bestNS == "" {
		return "<" + iri + ">"
	}
	return best + ":" + iri[len(bestNS):]
}

func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

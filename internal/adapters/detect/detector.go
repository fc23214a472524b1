// Package detect identifies file content formats from leading bytes
package detect

import (
	"errors"
	"log/slog"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"ipmgraph/internal/domain"
	"ipmgraph/internal/ports"
)

// DefaultHeaderSize matches the number of bytes the signature matchers read
const DefaultHeaderSize = 3072

// ErrClosed is returned by Detect after Close
var ErrClosed = errors.New("detector closed")

const octetStream = "application/octet-stream"

// versionSniffers pull a format version out of well-known headers
var versionSniffers = map[string]*regexp.Regexp{
	"application/pdf": regexp.MustCompile(`^%PDF-(\d+\.\d+)`),
	"text/xml":        regexp.MustCompile(`^<\?xml version="([^"]+)"`),
}

// Detector is an explicitly owned detection handle
type Detector struct {
	headerSize int
	extensions bool
	logger     *slog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ ports.FormatDetector = (*Detector)(nil)

// Option configures a Detector
type Option func(*Detector)

// WithHeaderSize overrides how many leading bytes are inspected
func WithHeaderSize(n int) Option {
	return func(d *Detector) {
		d.headerSize = n
	}
}

// WithExtensionFallback enables a lookup by file extension when the content
// signature is inconclusive
func WithExtensionFallback(enabled bool) Option {
	return func(d *Detector) {
		d.extensions = enabled
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = l
	}
}

// New creates a detector. Callers own it and must Close it.
func New(opts ...Option) *Detector {
	d := &Detector{
		headerSize: DefaultHeaderSize,
		extensions: true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.headerSize <= 0 {
		d.headerSize = DefaultHeaderSize
	}
	return d
}

// HeaderSize is the number of leading bytes Detect wants to see
func (d *Detector) HeaderSize() int {
	return d.headerSize
}

// Detect returns candidate formats, most specific first. The generic
// octet-stream type is never returned; an empty result means unknown.
func (d *Detector) Detect(path string, header []byte) ([]domain.Format, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, ErrClosed
	}

	var formats []domain.Format
	for m := mimetype.Detect(header); m != nil; m = m.Parent() {
		if m.Is(octetStream) {
			break
		}
		formats = append(formats, toFormat(m.String(), m.Extension(), header))
	}

	if len(formats) == 0 && d.extensions {
		ext := strings.ToLower(filepath.Ext(path))
		if mt := mime.TypeByExtension(ext); mt != "" {
			formats = append(formats, toFormat(mt, ext, header))
		}
	}

	if len(formats) == 0 {
		d.logger.Debug("No format detected", slog.String("path", path))
	}
	return formats, nil
}

// Close releases the handle; later Detect calls fail
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func toFormat(mimeType, ext string, header []byte) domain.Format {
	base, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		base = mimeType
	}

	id := strings.TrimPrefix(ext, ".")
	if id == "" {
		id = base
	}

	f := domain.Format{
		ID:   id,
		Name: formatName(base, id),
		MIME: mimeType,
	}
	if re, ok := versionSniffers[base]; ok {
		if m := re.FindSubmatch(header); m != nil {
			f.Version = string(m[1])
		}
	}
	return f
}

func formatName(base, id string) string {
	if id != base {
		return strings.ToUpper(id)
	}
	_, sub, _ := strings.Cut(base, "/")
	return sub
}

package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"ipmgraph/internal/domain"
	"ipmgraph/internal/ports"
)

// Scanner builds IPM trees from the filesystem
type Scanner struct {
	algorithms []domain.ChecksumAlgorithm
	detector   ports.FormatDetector
	ignore     *Matcher
	extra      []string
	workers    int
	previous   *domain.Node
	logger     *slog.Logger
}

// Ensure Scanner implements TreeScanner
var _ ports.TreeScanner = (*Scanner)(nil)

// Option configures a Scanner
type Option func(*Scanner)

// WithAlgorithms sets the checksum algorithms computed for every file
func WithAlgorithms(algs ...domain.ChecksumAlgorithm) Option {
	return func(s *Scanner) {
		s.algorithms = algs
	}
}

// WithDetector sets the content-format detector
func WithDetector(d ports.FormatDetector) Option {
	return func(s *Scanner) {
		s.detector = d
	}
}

// WithIgnore sets a custom ignore matcher instead of loading .ipmignore
func WithIgnore(m *Matcher) Option {
	return func(s *Scanner) {
		s.ignore = m
	}
}

// WithIgnorePatterns adds patterns on top of the defaults and .ipmignore
func WithIgnorePatterns(patterns ...string) Option {
	return func(s *Scanner) {
		s.extra = append(s.extra, patterns...)
	}
}

// WithWorkers bounds how many files are digested concurrently
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		s.workers = n
	}
}

// WithPrevious carries stable identifiers forward from an earlier snapshot.
// Entries found at the same relative path keep their node ID, object URI,
// user properties and locked type.
func WithPrevious(prev *domain.Node) Option {
	return func(s *Scanner) {
		s.previous = prev
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = l
	}
}

// NewScanner creates a scanner; by default it computes SHA-1 and MD5 with
// one worker per CPU
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		algorithms: domain.DefaultAlgorithms,
		workers:    runtime.NumCPU(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

type digestJob struct {
	node *domain.Node
	path string
}

// BuildTree walks rootPath and returns the untyped tree. Siblings are
// ordered by name, directories come before their contents. Digests are
// computed in parallel, one full pass per file; the tree is returned only
// when every file has been read, otherwise an IOError is returned and no
// tree at all.
func (s *Scanner) BuildTree(ctx context.Context, rootPath string) (*domain.Node, error) {
	start := time.Now()

	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, &domain.IOError{Op: "resolve", Path: rootPath, Err: err}
	}
	rootStat, err := os.Stat(absRoot)
	if err != nil {
		return nil, &domain.IOError{Op: "stat", Path: absRoot, Err: err}
	}

	ignore := s.ignore
	if ignore == nil && rootStat.IsDir() {
		if ignore, err = LoadIgnore(absRoot, s.extra...); err != nil {
			return nil, &domain.IOError{Op: "load ignore", Path: absRoot, Err: err}
		}
	}

	carried := indexByPath(s.previous)

	var (
		root *domain.Node
		jobs []digestJob
		dirs = make(map[string]*domain.Node)
	)

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &domain.IOError{Op: "walk", Path: path, Err: walkErr}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("getting relative path: %w", err)
		}
		relPath = filepath.ToSlash(relPath)

		if path != absRoot {
			if ignore != nil && ignore.Match(relPath, d.IsDir()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && !d.Type().IsRegular() {
				s.logger.Debug("Skipping special file", slog.String("path", relPath))
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			return &domain.IOError{Op: "stat", Path: path, Err: err}
		}

		var node *domain.Node
		if d.IsDir() {
			node = domain.NewNode(domain.NewDirectoryInfo(path, info.ModTime()))
			dirs[path] = node
		} else {
			// FileInfo is attached once the digest pass completes
			node = domain.NewNode(nil)
			jobs = append(jobs, digestJob{node: node, path: path})
		}
		carryForward(node, carried[relPath])

		if path == absRoot {
			root = node
			return nil
		}
		parent, ok := dirs[filepath.Dir(path)]
		if !ok {
			return fmt.Errorf("parent of %s not scanned", relPath)
		}
		parent.AddChild(node)
		return nil
	})
	if err != nil {
		return nil, err
	}

	infos, err := s.digestAll(ctx, jobs)
	if err != nil {
		return nil, err
	}
	for i, job := range jobs {
		job.node.Info = infos[i]
	}

	s.logger.Debug("Scanned tree",
		slog.String("root", absRoot),
		slog.Int("files", len(jobs)),
		slog.Int("directories", len(dirs)),
		slog.Duration("duration", time.Since(start)))

	return root, nil
}

// digestAll reads every file concurrently. Each job writes only its own
// slot, so no state is shared between files.
func (s *Scanner) digestAll(ctx context.Context, jobs []digestJob) ([]*domain.FileInfo, error) {
	infos := make([]*domain.FileInfo, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := ReadFileInfo(job.path, s.algorithms, s.detector)
			if err != nil {
				return err
			}
			infos[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

// indexByPath maps relative paths of a previous snapshot to its nodes
func indexByPath(prev *domain.Node) map[string]*domain.Node {
	index := make(map[string]*domain.Node)
	if prev == nil {
		return index
	}
	domain.Walk(prev, domain.PreOrder, func(n *domain.Node) error {
		index[n.RelPath()] = n
		return nil
	})
	return index
}

func carryForward(node, prev *domain.Node) {
	if prev == nil {
		return
	}
	node.ID = prev.ID
	node.ObjectURI = prev.ObjectURI
	node.Properties = maps.Clone(prev.Properties)
	if node.Properties == nil {
		node.Properties = make(map[string][]string)
	}
	if prev.TypeLocked {
		node.Type = prev.Type
		node.TypeLocked = true
	}
}

// RescanTree builds the tree of rootPath carrying identifiers forward from
// previous, as WithPrevious does
func (s *Scanner) RescanTree(ctx context.Context, rootPath string, previous *domain.Node) (*domain.Node, error) {
	c := *s
	c.previous = previous
	return c.BuildTree(ctx, rootPath)
}

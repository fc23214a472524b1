package filesystem

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreFile is the per-root file holding extra ignore patterns
const IgnoreFile = ".ipmignore"

// defaultIgnores keeps VCS metadata and OS droppings out of packages
var defaultIgnores = []string{
	".git/",
	".svn/",
	".hg/",
	".DS_Store",
	"Thumbs.db",
	"Desktop.ini",
	"*.swp",
	"*~",
	IgnoreFile,
	"ipmgraph.yaml",
}

type pattern struct {
	glob     string
	negated  bool
	dirOnly  bool
	anchored bool
}

// Matcher decides which entries a scan skips, using gitignore-style patterns.
// Later patterns override earlier ones; "!" negates.
type Matcher struct {
	patterns []pattern
}

// NewMatcher creates a matcher holding the default patterns plus extra
func NewMatcher(extra ...string) *Matcher {
	m := &Matcher{}
	m.AddPatterns(defaultIgnores)
	m.AddPatterns(extra)
	return m
}

// LoadIgnore builds a matcher from the defaults, extra patterns and the
// root's .ipmignore file if present
func LoadIgnore(root string, extra ...string) (*Matcher, error) {
	m := NewMatcher(extra...)
	if err := m.LoadFile(filepath.Join(root, IgnoreFile)); err != nil {
		return nil, err
	}
	return m, nil
}

// AddPattern adds one pattern line. Blank lines and # comments are skipped.
func (m *Matcher) AddPattern(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	p := pattern{}
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = line[1:]
	}
	// Unanchored patterns without a slash match the basename at any depth
	if !p.anchored && !strings.Contains(line, "/") {
		line = "**/" + line
	}

	p.glob = line
	m.patterns = append(m.patterns, p)
}

// AddPatterns adds several pattern lines
func (m *Matcher) AddPatterns(lines []string) {
	for _, line := range lines {
		m.AddPattern(line)
	}
}

// LoadFile reads patterns from a gitignore-style file. A missing file is not
// an error.
func (m *Matcher) LoadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		m.AddPattern(scanner.Text())
	}
	return scanner.Err()
}

// Match reports whether relPath (slash-separated, relative to the scan
// root) should be skipped
func (m *Matcher) Match(relPath string, isDir bool) bool {
	relPath = strings.TrimPrefix(filepath.ToSlash(relPath), "./")

	ignored := false
	for _, p := range m.patterns {
		var matched bool
		if p.dirOnly && !isDir {
			matched = matchParentDir(p.glob, relPath)
		} else {
			matched = matchGlob(p.glob, relPath)
		}
		if matched {
			ignored = !p.negated
		}
	}
	return ignored
}

// matchParentDir checks whether any ancestor directory of a file matches
func matchParentDir(glob, relPath string) bool {
	parts := strings.Split(relPath, "/")
	for i := 1; i < len(parts); i++ {
		if matchGlob(glob, strings.Join(parts[:i], "/")) {
			return true
		}
	}
	return false
}

func matchGlob(glob, relPath string) bool {
	if ok, _ := doublestar.Match(glob, relPath); ok {
		return true
	}
	if !strings.HasSuffix(glob, "/**") {
		ok, _ := doublestar.Match(glob+"/**", relPath)
		return ok
	}
	return false
}

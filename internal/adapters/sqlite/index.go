package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ipmgraph/internal/domain"
	"ipmgraph/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Store implements ports.TripleStore and ports.TreeStore using SQLite
type Store struct {
	db       *sql.DB
	rootPath string
	dbPath   string
}

// Ensure Store implements the store ports
var (
	_ ports.TripleStore = (*Store)(nil)
	_ ports.TreeStore   = (*Store)(nil)
)

// Open opens (creating if needed) the database at dbPath for the package
// rooted at rootPath. Pass ":memory:" for a throwaway store.
func Open(dbPath, rootPath string) (*Store, error) {
	rootPath = expandHome(rootPath)
	if abs, err := filepath.Abs(rootPath); err == nil {
		rootPath = abs
	}

	dsn := ":memory:"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		dsn = dbPath + "?_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)

	s := &Store{db: db, rootPath: rootPath, dbPath: dbPath}

	// Performance pragmas + schema in single batch (reduces round-trips)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -64000;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS triples (
			subject TEXT NOT NULL,
			predicate TEXT NOT NULL,
			object TEXT NOT NULL,
			kind TEXT NOT NULL,
			datatype TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (subject, predicate, object, kind)
		);
		CREATE TABLE IF NOT EXISTS relations (
			subject TEXT NOT NULL,
			relation TEXT NOT NULL,
			predicate TEXT NOT NULL,
			target TEXT NOT NULL,
			hierarchical INTEGER NOT NULL,
			PRIMARY KEY (subject, relation, target)
		);
		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			parent_id TEXT,
			ordinal INTEGER NOT NULL,
			rel_path TEXT NOT NULL,
			is_file INTEGER NOT NULL,
			size INTEGER NOT NULL DEFAULT 0,
			mtime INTEGER NOT NULL DEFAULT 0,
			checksums TEXT,
			formats TEXT,
			type_id TEXT,
			locked INTEGER NOT NULL DEFAULT 0,
			uri TEXT,
			properties TEXT
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_triples_object ON triples(object);
		CREATE INDEX IF NOT EXISTS idx_triples_predicate ON triples(predicate);
		CREATE INDEX IF NOT EXISTS idx_relations_target ON relations(target);
		CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id, ordinal);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	if s.NeedsFullRebuild() {
		if err := s.reset(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to reset store: %w", err)
		}
	}

	if err := s.updateMeta(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to update metadata: %w", err)
	}

	return s, nil
}

// OpenDefault opens the store for rootPath at its default location
func OpenDefault(rootPath string) (*Store, error) {
	return Open(DatabasePath(rootPath), rootPath)
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.dbPath
}

// RootPath returns the package root the store belongs to
func (s *Store) RootPath() string {
	return s.rootPath
}

// NeedsFullRebuild returns true if the stored data was written by another
// schema version or for another package root
func (s *Store) NeedsFullRebuild() bool {
	var version, rootHash string

	s.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	s.db.QueryRow("SELECT value FROM meta WHERE key = 'root_path_hash'").Scan(&rootHash)

	if version == "" && rootHash == "" {
		return false
	}
	return version != schemaVersion || rootHash != hashRootPath(s.rootPath)
}

// DatabasePath returns the default database location for a package root
func DatabasePath(rootPath string) string {
	rootPath = expandHome(rootPath)
	if abs, err := filepath.Abs(rootPath); err == nil {
		rootPath = abs
	}

	// XDG data directory
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, "ipmgraph", hashRootPath(rootPath)+".db")
}

// hashRootPath returns a short hash of the root path
func hashRootPath(rootPath string) string {
	h := sha256.Sum256([]byte(rootPath))
	return hex.EncodeToString(h[:8]) // First 8 bytes = 16 hex chars
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func (s *Store) reset() error {
	_, err := s.db.Exec(`
		DELETE FROM triples;
		DELETE FROM relations;
		DELETE FROM nodes;
		DELETE FROM meta;
	`)
	return err
}

// updateMeta updates the schema version and root path hash
func (s *Store) updateMeta() error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?);
		INSERT OR REPLACE INTO meta (key, value) VALUES ('root_path_hash', ?);
	`, schemaVersion, hashRootPath(s.rootPath))
	return err
}

// Meta returns a metadata value, or "" if unset
func (s *Store) Meta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetMeta stores a metadata value
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// Match returns the triples satisfying pattern in a stable order
func (s *Store) Match(ctx context.Context, pattern domain.TriplePattern) ([]domain.Triple, error) {
	query := `SELECT subject, predicate, object, kind, datatype FROM triples`
	var (
		clauses []string
		args    []any
	)
	if pattern.Subject != "" {
		clauses = append(clauses, "subject = ?")
		args = append(args, pattern.Subject)
	}
	if pattern.Predicate != "" {
		clauses = append(clauses, "predicate = ?")
		args = append(args, pattern.Predicate)
	}
	if pattern.Object != "" {
		clauses = append(clauses, "object = ?")
		args = append(args, pattern.Object)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY subject, predicate, object"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var triples []domain.Triple
	for rows.Next() {
		var t domain.Triple
		var kind string
		if err := rows.Scan(&t.Subject, &t.Predicate, &t.Object, &kind, &t.Datatype); err != nil {
			return nil, err
		}
		t.Kind = domain.ObjectKind(kind)
		triples = append(triples, t)
	}

	return triples, rows.Err()
}

// Exists reports whether any triple has subject as its subject
func (s *Store) Exists(ctx context.Context, subject string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM triples WHERE subject = ? LIMIT 1`, subject).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Subjects returns every distinct subject in the store
func (s *Store) Subjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT subject FROM triples ORDER BY subject`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var subject string
		if err := rows.Scan(&subject); err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}

// Relations returns all relation edges leaving subject
func (s *Store) Relations(ctx context.Context, subject string) ([]domain.RelationEdge, error) {
	return s.queryRelations(ctx, `
		SELECT subject, relation, predicate, target, hierarchical
		FROM relations WHERE subject = ? ORDER BY relation, target
	`, subject)
}

// RelationsTo returns all relation edges pointing at target
func (s *Store) RelationsTo(ctx context.Context, target string) ([]domain.RelationEdge, error) {
	return s.queryRelations(ctx, `
		SELECT subject, relation, predicate, target, hierarchical
		FROM relations WHERE target = ? ORDER BY subject, relation
	`, target)
}

func (s *Store) queryRelations(ctx context.Context, query string, arg string) ([]domain.RelationEdge, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []domain.RelationEdge
	for rows.Next() {
		var e domain.RelationEdge
		if err := rows.Scan(&e.Subject, &e.Relation, &e.Predicate, &e.Target, &e.Hierarchical); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}

	return edges, rows.Err()
}

// Counts returns the number of triples and distinct resources
func (s *Store) Counts(ctx context.Context) (triples, resources int, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(DISTINCT subject) FROM triples`).Scan(&triples, &resources)
	return triples, resources, err
}

// BeginTx starts a new transaction
func (s *Store) BeginTx(ctx context.Context) (ports.TripleTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &tripleTx{tx: tx}, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"ipmgraph/internal/domain"
)

// SaveTree replaces the stored tree snapshot with root
func (s *Store) SaveTree(ctx context.Context, root *domain.Node) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (id, parent_id, ordinal, rel_path, is_file, size, mtime,
			checksums, formats, type_id, locked, uri, properties)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	err = domain.Walk(root, domain.PreOrder, func(n *domain.Node) error {
		var parentID, ordinal any = nil, 0
		if n.Parent != nil {
			parentID = string(n.Parent.ID)
			ordinal = indexOf(n.Parent.Children, n)
		}

		row, err := encodeNode(n)
		if err != nil {
			return fmt.Errorf("encoding node %s: %w", n.ID, err)
		}

		_, err = stmt.ExecContext(ctx, string(n.ID), parentID, ordinal, n.RelPath(),
			row.isFile, row.size, row.mtime, row.checksums, row.formats,
			row.typeID, n.TypeLocked, nullString(n.ObjectURI), row.properties)
		return err
	})
	if err != nil {
		return err
	}

	return tx.Commit()
}

// LoadTree rebuilds the last saved snapshot, or returns nil if there is
// none. File paths are resolved against the store's root path and node
// types against profile; types the profile does not know are left unset.
func (s *Store) LoadTree(ctx context.Context, profile *domain.Profile) (*domain.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, parent_id, rel_path, is_file, size, mtime, checksums, formats,
			type_id, locked, uri, properties
		FROM nodes ORDER BY parent_id, ordinal
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		root    *domain.Node
		nodes   = make(map[domain.NodeID]*domain.Node)
		parents = make(map[domain.NodeID]domain.NodeID)
		order   []*domain.Node
	)

	for rows.Next() {
		var (
			id, relPath               string
			parentID, typeID, uri     sql.NullString
			checksums, formats, props sql.NullString
			isFile, locked            bool
			size, mtime               int64
		)
		if err := rows.Scan(&id, &parentID, &relPath, &isFile, &size, &mtime,
			&checksums, &formats, &typeID, &locked, &uri, &props); err != nil {
			return nil, err
		}

		info, err := decodeInfo(filepath.Join(s.rootPath, filepath.FromSlash(relPath)),
			isFile, size, mtime, checksums, formats)
		if err != nil {
			return nil, fmt.Errorf("decoding node %s: %w", id, err)
		}

		n := domain.NewNode(info)
		n.ID = domain.NodeID(id)
		n.ObjectURI = uri.String
		if props.Valid {
			if err := json.Unmarshal([]byte(props.String), &n.Properties); err != nil {
				return nil, fmt.Errorf("decoding properties of %s: %w", id, err)
			}
		}
		if typeID.Valid && profile != nil {
			if t, ok := profile.Type(typeID.String); ok {
				n.Type = t
				n.TypeLocked = locked
			}
		}

		nodes[n.ID] = n
		order = append(order, n)
		if parentID.Valid {
			parents[n.ID] = domain.NodeID(parentID.String)
		} else {
			root = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}

	// Rows arrive ordered by (parent, ordinal), so appending keeps sibling order
	for _, n := range order {
		pid, ok := parents[n.ID]
		if !ok {
			continue
		}
		parent, ok := nodes[pid]
		if !ok {
			return nil, fmt.Errorf("snapshot node %s references missing parent %s", n.ID, pid)
		}
		parent.AddChild(n)
	}

	return root, nil
}

// RecordSync stores the outcome of the last reconciliation
func (s *Store) RecordSync(ctx context.Context, profileID string, stats *domain.SyncStats) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO meta (key, value) VALUES ('last_sync_time', ?);
		INSERT OR REPLACE INTO meta (key, value) VALUES ('profile_id', ?);
		INSERT OR REPLACE INTO meta (key, value) VALUES ('last_sync_changes', ?);
	`, strconv.FormatInt(time.Now().Unix(), 10), profileID,
		strconv.Itoa(stats.NodesAdded+stats.NodesUpdated+stats.NodesDeleted))
	return err
}

// LastSync returns when the store was last reconciled, zero if never
func (s *Store) LastSync(ctx context.Context) (time.Time, error) {
	value, err := s.Meta(ctx, "last_sync_time")
	if err != nil || value == "" {
		return time.Time{}, err
	}
	unix, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid last sync time %q: %w", value, err)
	}
	return time.Unix(unix, 0), nil
}

type nodeRow struct {
	isFile     bool
	size       int64
	mtime      int64
	checksums  any
	formats    any
	typeID     any
	properties any
}

func encodeNode(n *domain.Node) (nodeRow, error) {
	row := nodeRow{}

	if n.Info != nil {
		row.isFile = n.Info.IsFile
		row.size = n.Info.Size
		row.mtime = n.Info.ModTime.UnixNano()

		if n.Info.Checksums != nil {
			sums := make(map[string]string, len(n.Info.Checksums))
			for alg, sum := range n.Info.Checksums {
				sums[string(alg)] = hex.EncodeToString(sum)
			}
			data, err := json.Marshal(sums)
			if err != nil {
				return row, err
			}
			row.checksums = string(data)
		}
		if n.Info.Formats != nil {
			data, err := json.Marshal(n.Info.Formats)
			if err != nil {
				return row, err
			}
			row.formats = string(data)
		}
	}

	if n.Type != nil {
		row.typeID = n.Type.ID
	}
	if len(n.Properties) > 0 {
		data, err := json.Marshal(n.Properties)
		if err != nil {
			return row, err
		}
		row.properties = string(data)
	}
	return row, nil
}

func decodeInfo(path string, isFile bool, size, mtime int64, checksums, formats sql.NullString) (*domain.FileInfo, error) {
	modTime := time.Unix(0, mtime)
	if !isFile {
		return domain.NewDirectoryInfo(path, modTime), nil
	}

	var sums map[domain.ChecksumAlgorithm][]byte
	if checksums.Valid {
		var encoded map[string]string
		if err := json.Unmarshal([]byte(checksums.String), &encoded); err != nil {
			return nil, err
		}
		sums = make(map[domain.ChecksumAlgorithm][]byte, len(encoded))
		for alg, hexSum := range encoded {
			sum, err := hex.DecodeString(hexSum)
			if err != nil {
				return nil, fmt.Errorf("checksum %s: %w", alg, err)
			}
			sums[domain.ChecksumAlgorithm(alg)] = sum
		}
	}

	var fmts []domain.Format
	if formats.Valid {
		if err := json.Unmarshal([]byte(formats.String), &fmts); err != nil {
			return nil, err
		}
	}

	return domain.NewFileInfo(path, size, modTime, sums, fmts), nil
}

func indexOf(nodes []*domain.Node, n *domain.Node) int {
	for i, c := range nodes {
		if c == n {
			return i
		}
	}
	return -1
}

// nullString returns nil for empty strings (for nullable columns)
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

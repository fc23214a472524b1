package sqlite

import (
	"database/sql"
	"strings"

	"ipmgraph/internal/domain"
	"ipmgraph/internal/ports"
)

// tripleTx implements ports.TripleTx
type tripleTx struct {
	tx *sql.Tx
}

// Ensure tripleTx implements TripleTx
var _ ports.TripleTx = (*tripleTx)(nil)

// Add inserts a triple; adding an existing triple is a no-op
func (t *tripleTx) Add(triple domain.Triple) error {
	kind := triple.Kind
	if kind == "" {
		kind = domain.ObjectLiteral
	}
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO triples (subject, predicate, object, kind, datatype)
		VALUES (?, ?, ?, ?, ?)
	`, triple.Subject, triple.Predicate, triple.Object, string(kind), triple.Datatype)
	return err
}

// Remove deletes every triple matching pattern
func (t *tripleTx) Remove(pattern domain.TriplePattern) (int64, error) {
	res, err := t.tx.Exec(`
		DELETE FROM triples
		WHERE (? = '' OR subject = ?)
		  AND (? = '' OR predicate = ?)
		  AND (? = '' OR object = ?)
	`, pattern.Subject, pattern.Subject,
		pattern.Predicate, pattern.Predicate,
		pattern.Object, pattern.Object)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// AddRelation records an edge and writes its triple
func (t *tripleTx) AddRelation(edge domain.RelationEdge) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO relations (subject, relation, predicate, target, hierarchical)
		VALUES (?, ?, ?, ?, ?)
	`, edge.Subject, edge.Relation, edge.Predicate, edge.Target, edge.Hierarchical)
	if err != nil {
		return err
	}
	return t.Add(domain.IRITriple(edge.Subject, edge.Predicate, edge.Target))
}

// RemoveRelations deletes edges leaving subject together with their triples
func (t *tripleTx) RemoveRelations(subject string, hierarchical *bool) (int64, error) {
	if hierarchical == nil {
		return t.removeRelations([]string{"subject"}, subject)
	}
	return t.removeRelations([]string{"subject", "hierarchical"}, subject, *hierarchical)
}

// RemoveRelation deletes the edges of one relation leaving subject
func (t *tripleTx) RemoveRelation(subject, relation string) (int64, error) {
	return t.removeRelations([]string{"subject", "relation"}, subject, relation)
}

// RemoveRelationsTo deletes every edge pointing at target
func (t *tripleTx) RemoveRelationsTo(target string) (int64, error) {
	return t.removeRelations([]string{"target"}, target)
}

// removeRelations drops the matching triples first, then the bookkeeping
// rows, filtering both on the same columns
func (t *tripleTx) removeRelations(columns []string, args ...any) (int64, error) {
	plain := make([]string, len(columns))
	aliased := make([]string, len(columns))
	for i, col := range columns {
		plain[i] = col + " = ?"
		aliased[i] = "r." + col + " = ?"
	}

	_, err := t.tx.Exec(`
		DELETE FROM triples
		WHERE kind = 'iri' AND EXISTS (
			SELECT 1 FROM relations r
			WHERE r.subject = triples.subject
			  AND r.predicate = triples.predicate
			  AND r.target = triples.object
			  AND `+strings.Join(aliased, " AND ")+`
		)
	`, args...)
	if err != nil {
		return 0, err
	}

	res, err := t.tx.Exec(`DELETE FROM relations WHERE `+strings.Join(plain, " AND "), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Commit commits the transaction
func (t *tripleTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *tripleTx) Rollback() error {
	return t.tx.Rollback()
}

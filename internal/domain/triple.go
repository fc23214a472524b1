package domain

// ObjectKind distinguishes resource references from literal values
type ObjectKind string

const (
	ObjectIRI     ObjectKind = "iri"
	ObjectLiteral ObjectKind = "literal"
)

// Triple is a single statement about a domain object
type Triple struct {
	Subject   string
	Predicate string
	Object    string
	Kind      ObjectKind
	Datatype  string // literals only, empty means plain string
}

// IRITriple builds a triple whose object is a resource reference
func IRITriple(subject, predicate, object string) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: object, Kind: ObjectIRI}
}

// LiteralTriple builds a triple with a literal object
func LiteralTriple(subject, predicate, value, datatype string) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: value, Kind: ObjectLiteral, Datatype: datatype}
}

// TriplePattern selects triples; empty fields match anything
type TriplePattern struct {
	Subject   string
	Predicate string
	Object    string
}

// Matches reports whether t satisfies the pattern
func (p TriplePattern) Matches(t Triple) bool {
	return (p.Subject == "" || p.Subject == t.Subject) &&
		(p.Predicate == "" || p.Predicate == t.Predicate) &&
		(p.Object == "" || p.Object == t.Object)
}

// RelationEdge records that a structural relation currently holds between
// two resources
type RelationEdge struct {
	Subject      string
	Relation     string // StructuralRelation ID
	Predicate    string
	Target       string
	Hierarchical bool
}

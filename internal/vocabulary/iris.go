// Package vocabulary holds the IRIs the object store writes that are not
// supplied by a domain profile.
package vocabulary

import "ipmgraph/internal/domain"

// Standard namespaces
const (
	RDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS = "http://www.w3.org/2000/01/rdf-schema#"
	XSD  = "http://www.w3.org/2001/XMLSchema#"
	DC   = "http://purl.org/dc/terms/"
	PREM = "http://www.loc.gov/premis/rdf/v3/"
)

// Namespace is the base IRI of the package-model terms
const Namespace = "https://ipmgraph.dev/ontology/"

// RDFType is the class predicate
const RDFType = RDF + "type"

// Bookkeeping predicates attached to every materialized resource
const (
	// NodeID links a resource back to the tree node that owns it
	NodeID = Namespace + "nodeId"

	// Path is the entry path relative to the package root
	Path = Namespace + "path"

	// Reserved marks a resource minted for an external assembler before any
	// tree node exists for it
	Reserved = Namespace + "reserved"

	// NodeType records the profile node type ID
	NodeType = Namespace + "nodeType"
)

// File-level predicates written for resources created from raw content
const (
	Size          = PREM + "size"
	MessageDigest = PREM + "hasMessageDigest"
	Format        = DC + "format"
)

// Literal datatypes
const (
	XSDString   = XSD + "string"
	XSDInteger  = XSD + "integer"
	XSDBoolean  = XSD + "boolean"
	XSDDateTime = XSD + "dateTime"
	XSDAnyURI   = XSD + "anyURI"
)

// DigestPredicate is the predicate carrying a checksum of the given algorithm
func DigestPredicate(alg domain.ChecksumAlgorithm) string {
	return MessageDigest + "/" + string(alg)
}

// Datatype maps a profile value type to its XSD datatype. URI values are
// written as IRIs and have no datatype.
func Datatype(v domain.ValueType) string {
	switch v {
	case domain.ValueInteger:
		return XSDInteger
	case domain.ValueBoolean:
		return XSDBoolean
	case domain.ValueDateTime:
		return XSDDateTime
	case domain.ValueURI:
		return ""
	default:
		return XSDString
	}
}

// Prefixes are the well-known prefixes used when writing Turtle
func Prefixes() map[string]string {
	return map[string]string{
		"rdf":    RDF,
		"rdfs":   RDFS,
		"xsd":    XSD,
		"dc":     DC,
		"premis": PREM,
		"ipm":    Namespace,
	}
}

package objects

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"ipmgraph/internal/domain"
	"ipmgraph/internal/ports"
	"ipmgraph/internal/vocabulary"
)

// UpdateObject writes the resource of a typed node. A URI is minted on first
// use. Property triples are replaced wholesale, hierarchical relations are
// re-derived from the node's current parent and children, and
// non-hierarchical relations change only when set in the node's property
// map. Calling it twice on an unchanged node leaves the store unchanged.
func (s *Store) UpdateObject(ctx context.Context, node *domain.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateObject(ctx, node)
}

func (s *Store) updateObject(ctx context.Context, node *domain.Node) error {
	if node.Type == nil {
		return &domain.ValidationError{Field: node.RelPath(), Message: "node has no type"}
	}
	t := node.Type

	values, explicit, err := s.collectValues(node)
	if err != nil {
		return err
	}

	edges, err := s.hierarchicalEdges(node)
	if err != nil {
		return err
	}

	explicitEdges, err := s.explicitEdges(ctx, node, explicit)
	if err != nil {
		return err
	}

	uri := node.ObjectURI
	if uri == "" {
		if uri, err = s.mintURI(ctx); err != nil {
			return err
		}
	}
	for i := range edges {
		edges[i].Subject = uri
	}
	for i := range explicitEdges {
		explicitEdges[i].Subject = uri
	}

	// Cross-references not set on the node survive the rewrite
	existing, err := s.triples.Relations(ctx, uri)
	if err != nil {
		return fmt.Errorf("reading relations of %s: %w", uri, err)
	}
	for _, e := range existing {
		if _, replaced := explicit[e.Relation]; e.Hierarchical || replaced {
			continue
		}
		if r, ok := t.Relation(e.Relation); !ok || r.Hierarchical {
			continue
		}
		edges = append(edges, e)
	}
	edges = append(edges, explicitEdges...)

	err = s.withTx(ctx, func(tx ports.TripleTx) error {
		if _, err := tx.RemoveRelations(uri, nil); err != nil {
			return err
		}
		if _, err := tx.Remove(domain.TriplePattern{Subject: uri}); err != nil {
			return err
		}

		if class, ok := classTriple(uri, t); ok {
			if err := tx.Add(class); err != nil {
				return err
			}
		}
		bookkeeping := []domain.Triple{
			domain.LiteralTriple(uri, vocabulary.NodeID, string(node.ID), ""),
			domain.LiteralTriple(uri, vocabulary.NodeType, t.ID, ""),
			domain.LiteralTriple(uri, vocabulary.Path, node.RelPath(), ""),
		}
		for _, tr := range bookkeeping {
			if err := tx.Add(tr); err != nil {
				return err
			}
		}

		for _, pt := range t.Properties {
			for _, v := range values[pt.ID] {
				if err := tx.Add(propertyTriple(uri, pt, v)); err != nil {
					return err
				}
			}
		}

		for _, e := range edges {
			if err := tx.AddRelation(e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("updating %s: %w", node.RelPath(), err)
	}

	node.ObjectURI = uri
	return nil
}

// DeleteObject removes the node's resource and every relation that points
// at it. Nodes that were never materialized are ignored.
func (s *Store) DeleteObject(ctx context.Context, node *domain.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteObject(ctx, node)
}

func (s *Store) deleteObject(ctx context.Context, node *domain.Node) error {
	uri := node.ObjectURI
	if uri == "" {
		return nil
	}

	err := s.withTx(ctx, func(tx ports.TripleTx) error {
		if _, err := tx.RemoveRelations(uri, nil); err != nil {
			return err
		}
		if _, err := tx.RemoveRelationsTo(uri); err != nil {
			return err
		}
		if _, err := tx.Remove(domain.TriplePattern{Subject: uri}); err != nil {
			return err
		}
		// URI-valued properties of other resources
		_, err := tx.Remove(domain.TriplePattern{Object: uri})
		return err
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", uri, err)
	}

	delete(s.minted, uri)
	node.ObjectURI = ""
	return nil
}

// collectValues resolves the final value list of every property of the
// node's type and checks it. Values come from the node itself, else from
// the property's metadata source, else, for inheritable properties, from
// the nearest ancestor that sets the property. The second result holds the
// explicitly set non-hierarchical relations.
func (s *Store) collectValues(node *domain.Node) (map[string][]string, map[string][]string, error) {
	t := node.Type
	field := func(id string) string { return node.RelPath() + "#" + id }

	explicit := make(map[string][]string)
	for _, key := range sortedKeys(node.Properties) {
		if pt, ok := t.Property(key); ok {
			if pt.ReadOnly {
				return nil, nil, &domain.ValidationError{Field: field(key), Message: "property is read-only"}
			}
			continue
		}
		if r, ok := t.Relation(key); ok {
			if r.Hierarchical {
				return nil, nil, &domain.ValidationError{Field: field(key), Message: "hierarchical relations follow the tree and cannot be set"}
			}
			explicit[key] = node.Properties[key]
			continue
		}
		return nil, nil, &domain.ValidationError{Field: field(key), Message: fmt.Sprintf("type %s has no property %s", t.ID, key)}
	}

	values := make(map[string][]string, len(t.Properties))
	for _, pt := range t.Properties {
		vals, set := node.Properties[pt.ID]
		if !set && pt.Source != "" {
			vals = domain.DeriveValues(node, pt.Source)
		}
		if !set && len(vals) == 0 && pt.Inheritable {
			vals = inherited(node, pt.ID)
		}

		if !pt.Cardinality.Allows(len(vals)) {
			msg := fmt.Sprintf("%d values, want %s", len(vals), pt.Cardinality)
			if len(vals) == 0 {
				msg = "required property is missing"
			}
			return nil, nil, &domain.ValidationError{Field: field(pt.ID), Message: msg}
		}
		for _, v := range vals {
			if err := checkValue(pt.ValueType, v); err != nil {
				return nil, nil, &domain.ValidationError{Field: field(pt.ID), Message: err.Error()}
			}
		}
		values[pt.ID] = vals
	}
	return values, explicit, nil
}

// inherited returns the values the nearest ancestor sets for property id
func inherited(node *domain.Node, id string) []string {
	for a := node.Parent; a != nil; a = a.Parent {
		if vals, ok := a.Properties[id]; ok && len(vals) > 0 {
			return vals
		}
	}
	return nil
}

func checkValue(vt domain.ValueType, v string) error {
	switch vt {
	case domain.ValueInteger:
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return fmt.Errorf("%q is not an integer", v)
		}
	case domain.ValueBoolean:
		if _, err := strconv.ParseBool(v); err != nil {
			return fmt.Errorf("%q is not a boolean", v)
		}
	case domain.ValueDateTime:
		if _, err := time.Parse(time.RFC3339, v); err != nil {
			return fmt.Errorf("%q is not an RFC 3339 date-time", v)
		}
	case domain.ValueURI:
		if u, err := url.Parse(v); err != nil || u.Scheme == "" {
			return fmt.Errorf("%q is not an absolute URI", v)
		}
	}
	return nil
}

func propertyTriple(uri string, pt domain.PropertyType, v string) domain.Triple {
	if pt.ValueType == domain.ValueURI {
		return domain.IRITriple(uri, pt.Predicate, v)
	}
	return domain.LiteralTriple(uri, pt.Predicate, v, vocabulary.Datatype(pt.ValueType))
}

// hierarchicalEdges derives the hierarchical relations of node from its
// parent and children. A relation applies to a neighbour whose type is the
// relation's target type; that neighbour must already have a URI.
func (s *Store) hierarchicalEdges(node *domain.Node) ([]domain.RelationEdge, error) {
	var edges []domain.RelationEdge
	for _, r := range node.Type.Relations {
		if !r.Hierarchical {
			continue
		}

		var targets []*domain.Node
		switch r.Direction {
		case domain.DirectionChildren:
			for _, c := range node.Children {
				if c.Type != nil && c.Type.ID == r.TargetType {
					targets = append(targets, c)
				}
			}
		case domain.DirectionParent:
			if p := node.Parent; p != nil && p.Type != nil && p.Type.ID == r.TargetType {
				targets = append(targets, p)
			}
		}

		for _, target := range targets {
			if target.ObjectURI == "" {
				return nil, &domain.NotFoundError{Kind: "object for node", ID: target.RelPath()}
			}
			edges = append(edges, domain.RelationEdge{
				Relation:     r.ID,
				Predicate:    r.Predicate,
				Target:       target.ObjectURI,
				Hierarchical: true,
			})
		}
	}
	return edges, nil
}

// explicitEdges resolves explicitly set cross-references. A value is either
// the ID of a node in the same tree, which must have a URI, or a URI that
// must already exist in the store.
func (s *Store) explicitEdges(ctx context.Context, node *domain.Node, explicit map[string][]string) ([]domain.RelationEdge, error) {
	var edges []domain.RelationEdge
	root := node.Root()

	for _, id := range sortedKeys(explicit) {
		r, _ := node.Type.Relation(id)
		target, _ := s.profile.Type(r.TargetType)

		for _, v := range explicit[id] {
			uri, err := s.resolveTarget(ctx, root, v, target)
			if err != nil {
				return nil, err
			}
			edges = append(edges, domain.RelationEdge{
				Relation:  r.ID,
				Predicate: r.Predicate,
				Target:    uri,
			})
		}
	}
	return edges, nil
}

func (s *Store) resolveTarget(ctx context.Context, root *domain.Node, value string, target *domain.NodeType) (string, error) {
	if n := root.Find(domain.NodeID(value)); n != nil {
		if n.ObjectURI == "" {
			return "", &domain.NotFoundError{Kind: "object for node", ID: n.RelPath()}
		}
		if n.Type == nil || n.Type.ID != target.ID {
			return "", &domain.ValidationError{Field: n.RelPath(), Message: "cross-reference target must be of type " + target.ID}
		}
		return n.ObjectURI, nil
	}

	if !strings.Contains(value, ":") {
		return "", &domain.NotFoundError{Kind: "node", ID: value}
	}
	classes, err := s.triples.Match(ctx, domain.TriplePattern{Subject: value, Predicate: vocabulary.RDFType})
	if err != nil {
		return "", err
	}
	if len(classes) == 0 {
		if s.minted[value] {
			return value, nil
		}
		return "", &domain.NotFoundError{Kind: "object", ID: value}
	}
	if target.ClassURI != "" {
		for _, c := range classes {
			if c.Object == target.ClassURI {
				return value, nil
			}
		}
		return "", &domain.ValidationError{Field: value, Message: "cross-reference target must be of type " + target.ID}
	}
	return value, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

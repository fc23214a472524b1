package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Bearing says which kind of filesystem entry a node type may describe
type Bearing string

const (
	BearingFile      Bearing = "file"
	BearingDirectory Bearing = "directory"
	BearingAny       Bearing = "any"
)

// Accepts reports whether a node backed by info may carry this bearing.
// Nodes without FileInfo are only accepted by BearingAny.
func (b Bearing) Accepts(info *FileInfo) bool {
	switch b {
	case BearingAny:
		return true
	case BearingFile:
		return info != nil && info.IsFile
	case BearingDirectory:
		return info != nil && !info.IsFile
	default:
		return false
	}
}

func (b Bearing) valid() bool {
	return b == BearingFile || b == BearingDirectory || b == BearingAny
}

// ValueType is the literal type of a property value
type ValueType string

const (
	ValueString   ValueType = "string"
	ValueInteger  ValueType = "integer"
	ValueBoolean  ValueType = "boolean"
	ValueDateTime ValueType = "datetime"
	ValueURI      ValueType = "uri"
)

func (v ValueType) valid() bool {
	switch v {
	case ValueString, ValueInteger, ValueBoolean, ValueDateTime, ValueURI:
		return true
	}
	return false
}

// Direction of a hierarchical structural relation
type Direction string

const (
	DirectionChildren Direction = "children" // parent -> each matching child
	DirectionParent   Direction = "parent"   // child -> its parent
)

// Unbounded marks a cardinality without upper bound
const Unbounded = -1

// CardinalityConstraint holds inclusive occurrence bounds
type CardinalityConstraint struct {
	Min int
	Max int // Unbounded for no upper bound
}

// Cardinality builds a constraint; pass Unbounded as max for "min..*"
func Cardinality(min, max int) CardinalityConstraint {
	return CardinalityConstraint{Min: min, Max: max}
}

// Allows reports whether count lies within the bounds
func (c CardinalityConstraint) Allows(count int) bool {
	if count < c.Min {
		return false
	}
	return c.Max == Unbounded || count <= c.Max
}

// Required reports whether at least one occurrence is needed
func (c CardinalityConstraint) Required() bool {
	return c.Min > 0
}

func (c CardinalityConstraint) String() string {
	if c.Max == Unbounded {
		return fmt.Sprintf("%d..*", c.Min)
	}
	return fmt.Sprintf("%d..%d", c.Min, c.Max)
}

// MarshalText encodes the constraint as "min..max" or "min..*"
func (c CardinalityConstraint) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses "min..max", "min..*" or a single exact count
func (c *CardinalityConstraint) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	lo, hi, found := strings.Cut(s, "..")
	if !found {
		hi = lo
	}
	minimum, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return fmt.Errorf("invalid cardinality %q: %w", s, err)
	}
	maximum := Unbounded
	if hi = strings.TrimSpace(hi); hi != "*" {
		if maximum, err = strconv.Atoi(hi); err != nil {
			return fmt.Errorf("invalid cardinality %q: %w", s, err)
		}
	}
	c.Min, c.Max = minimum, maximum
	return nil
}

func (c CardinalityConstraint) valid() bool {
	return c.Min >= 0 && (c.Max == Unbounded || c.Max >= c.Min)
}

// NodeConstraint permits ChildType beneath the declaring type with the given
// multiplicity. Child types without a constraint are not permitted.
type NodeConstraint struct {
	ChildType   string
	Cardinality CardinalityConstraint
}

// PropertyType defines a property carried by nodes of a type
type PropertyType struct {
	ID          string
	Predicate   string
	ValueType   ValueType
	Cardinality CardinalityConstraint
	Inheritable bool
	ReadOnly    bool
	Source      string // metadata source, see DeriveValues; empty for user input
}

// StructuralRelation is a named edge from a type to TargetType
type StructuralRelation struct {
	ID           string
	Predicate    string
	TargetType   string
	Hierarchical bool
	Direction    Direction // hierarchical relations only
}

// NodeType is a profile-defined classification for tree nodes
type NodeType struct {
	ID          string
	Label       string
	ClassURI    string
	Bearing     Bearing
	NamePattern string // optional regexp on the entry name
	Constraints []NodeConstraint
	Properties  []PropertyType
	Relations   []StructuralRelation
}

// Constraint returns the constraint for childType
func (t *NodeType) Constraint(childType string) (NodeConstraint, bool) {
	for _, c := range t.Constraints {
		if c.ChildType == childType {
			return c, true
		}
	}
	return NodeConstraint{}, false
}

// Property returns the property type with the given ID
func (t *NodeType) Property(id string) (*PropertyType, bool) {
	for i := range t.Properties {
		if t.Properties[i].ID == id {
			return &t.Properties[i], true
		}
	}
	return nil, false
}

// Relation returns the structural relation with the given ID
func (t *NodeType) Relation(id string) (*StructuralRelation, bool) {
	for i := range t.Relations {
		if t.Relations[i].ID == id {
			return &t.Relations[i], true
		}
	}
	return nil, false
}

func (t *NodeType) clone() NodeType {
	c := *t
	c.Constraints = slices.Clone(t.Constraints)
	c.Properties = slices.Clone(t.Properties)
	c.Relations = slices.Clone(t.Relations)
	return c
}

// ProfileDefinition is the plain-data form of a profile, as read from or
// written to a profile document
type ProfileDefinition struct {
	ID        string
	Name      string
	Version   string
	Namespace string // base IRI for minted object URIs
	RootTypes []string
	Types     []NodeType
}

// Profile is a compiled, immutable domain profile. It is shared by pointer
// between every tree and operation that uses it.
type Profile struct {
	def      ProfileDefinition
	byID     map[string]*NodeType
	patterns map[string]*regexp.Regexp
	roots    map[string]bool
}

// NewProfile validates def and compiles it into a Profile. def is copied, so
// later changes to it do not affect the profile.
func NewProfile(def ProfileDefinition) (*Profile, error) {
	if strings.TrimSpace(def.ID) == "" {
		return nil, &ValidationError{Field: "id", Message: "profile ID is required"}
	}
	if len(def.Types) == 0 {
		return nil, &ValidationError{Field: "types", Message: "profile declares no node types"}
	}

	p := &Profile{
		def: ProfileDefinition{
			ID:        def.ID,
			Name:      def.Name,
			Version:   def.Version,
			Namespace: def.Namespace,
			RootTypes: slices.Clone(def.RootTypes),
			Types:     make([]NodeType, len(def.Types)),
		},
		byID:     make(map[string]*NodeType, len(def.Types)),
		patterns: make(map[string]*regexp.Regexp),
		roots:    make(map[string]bool, len(def.RootTypes)),
	}

	for i := range def.Types {
		p.def.Types[i] = def.Types[i].clone()
		t := &p.def.Types[i]
		if t.ID == "" {
			return nil, &ValidationError{Field: fmt.Sprintf("types[%d].id", i), Message: "node type ID is required"}
		}
		if _, dup := p.byID[t.ID]; dup {
			return nil, &ValidationError{Field: fmt.Sprintf("types[%d].id", i), Message: "duplicate node type " + t.ID}
		}
		if !t.Bearing.valid() {
			return nil, &ValidationError{Field: t.ID + ".bearing", Message: fmt.Sprintf("invalid bearing %q", t.Bearing)}
		}
		if t.NamePattern != "" {
			re, err := regexp.Compile(t.NamePattern)
			if err != nil {
				return nil, &ValidationError{Field: t.ID + ".name_pattern", Message: err.Error()}
			}
			p.patterns[t.ID] = re
		}
		p.byID[t.ID] = t
	}

	for _, t := range p.byID {
		if err := p.checkReferences(t); err != nil {
			return nil, err
		}
	}

	for _, id := range p.def.RootTypes {
		if _, ok := p.byID[id]; !ok {
			return nil, &ValidationError{Field: "root_types", Message: "unknown node type " + id}
		}
		p.roots[id] = true
	}

	return p, nil
}

func (p *Profile) checkReferences(t *NodeType) error {
	seen := make(map[string]bool)
	for _, c := range t.Constraints {
		if _, ok := p.byID[c.ChildType]; !ok {
			return &ValidationError{Field: t.ID + ".constraints", Message: "unknown child type " + c.ChildType}
		}
		if seen[c.ChildType] {
			return &ValidationError{Field: t.ID + ".constraints", Message: "duplicate constraint for " + c.ChildType}
		}
		if !c.Cardinality.valid() {
			return &ValidationError{Field: t.ID + ".constraints", Message: "invalid cardinality " + c.Cardinality.String()}
		}
		seen[c.ChildType] = true
	}

	names := make(map[string]bool)
	for _, pt := range t.Properties {
		if pt.ID == "" || names[pt.ID] {
			return &ValidationError{Field: t.ID + ".properties", Message: fmt.Sprintf("missing or duplicate property ID %q", pt.ID)}
		}
		if !pt.ValueType.valid() {
			return &ValidationError{Field: t.ID + "." + pt.ID, Message: fmt.Sprintf("invalid value type %q", pt.ValueType)}
		}
		if !pt.Cardinality.valid() {
			return &ValidationError{Field: t.ID + "." + pt.ID, Message: "invalid cardinality " + pt.Cardinality.String()}
		}
		if pt.Source != "" && !IsKnownSource(pt.Source) {
			return &ValidationError{Field: t.ID + "." + pt.ID, Message: "unknown metadata source " + pt.Source}
		}
		names[pt.ID] = true
	}

	for _, r := range t.Relations {
		if r.ID == "" || names[r.ID] {
			return &ValidationError{Field: t.ID + ".relations", Message: fmt.Sprintf("missing or duplicate relation ID %q", r.ID)}
		}
		if _, ok := p.byID[r.TargetType]; !ok {
			return &ValidationError{Field: t.ID + "." + r.ID, Message: "unknown target type " + r.TargetType}
		}
		if r.Hierarchical && r.Direction != DirectionChildren && r.Direction != DirectionParent {
			return &ValidationError{Field: t.ID + "." + r.ID, Message: fmt.Sprintf("invalid direction %q", r.Direction)}
		}
		names[r.ID] = true
	}
	return nil
}

func (p *Profile) ID() string        { return p.def.ID }
func (p *Profile) Name() string      { return p.def.Name }
func (p *Profile) Version() string   { return p.def.Version }
func (p *Profile) Namespace() string { return p.def.Namespace }

// RootTypes returns the IDs of types allowed at the tree root. An empty list
// means the root is exempt from parent-compatibility checks.
func (p *Profile) RootTypes() []string {
	return slices.Clone(p.def.RootTypes)
}

// Type returns the node type with the given ID
func (p *Profile) Type(id string) (*NodeType, bool) {
	t, ok := p.byID[id]
	return t, ok
}

// MustType is Type for callers that treat an unknown ID as a usage error
func (p *Profile) MustType(id string) (*NodeType, error) {
	t, ok := p.byID[id]
	if !ok {
		return nil, &NotFoundError{Kind: "node type", ID: id}
	}
	return t, nil
}

// Types returns the node types in declaration order. The returned pointers
// refer to the profile's own records and must not be modified.
func (p *Profile) Types() []*NodeType {
	types := make([]*NodeType, len(p.def.Types))
	for i := range p.def.Types {
		types[i] = &p.def.Types[i]
	}
	return types
}

// IsRootType reports whether t may sit at the root of a tree
func (p *Profile) IsRootType(t *NodeType) bool {
	if len(p.roots) == 0 {
		return true
	}
	return t != nil && p.roots[t.ID]
}

// Permits reports whether child may appear beneath parent
func (p *Profile) Permits(parent, child *NodeType) bool {
	if parent == nil || child == nil {
		return false
	}
	_, ok := parent.Constraint(child.ID)
	return ok
}

// Compatible reports whether t may describe node n on its own: bearing and
// name pattern both match.
func (p *Profile) Compatible(t *NodeType, n *Node) bool {
	if !t.Bearing.Accepts(n.Info) {
		return false
	}
	if re, ok := p.patterns[t.ID]; ok && !re.MatchString(n.Name()) {
		return false
	}
	return true
}

// Definition returns a deep copy of the profile's plain-data form
func (p *Profile) Definition() ProfileDefinition {
	def := p.def
	def.RootTypes = slices.Clone(p.def.RootTypes)
	def.Types = make([]NodeType, len(p.def.Types))
	for i := range p.def.Types {
		def.Types[i] = p.def.Types[i].clone()
	}
	return def
}

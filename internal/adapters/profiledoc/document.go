// Package profiledoc reads and writes domain profiles as YAML or JSON
// documents.
package profiledoc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ipmgraph/internal/domain"
)

// Format is a profile document serialization
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension, defaulting to YAML
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Document is the on-disk shape of a profile
type Document struct {
	ID        string     `yaml:"id" json:"id"`
	Name      string     `yaml:"name,omitempty" json:"name,omitempty"`
	Version   string     `yaml:"version,omitempty" json:"version,omitempty"`
	Namespace string     `yaml:"namespace" json:"namespace"`
	RootTypes []string   `yaml:"root_types,omitempty" json:"root_types,omitempty"`
	Types     []TypeSpec `yaml:"types" json:"types"`
}

// TypeSpec describes one node type
type TypeSpec struct {
	ID          string           `yaml:"id" json:"id"`
	Label       string           `yaml:"label,omitempty" json:"label,omitempty"`
	Class       string           `yaml:"class" json:"class"`
	Bearing     string           `yaml:"bearing" json:"bearing"`
	NamePattern string           `yaml:"name_pattern,omitempty" json:"name_pattern,omitempty"`
	Constraints []ConstraintSpec `yaml:"constraints,omitempty" json:"constraints,omitempty"`
	Properties  []PropertySpec   `yaml:"properties,omitempty" json:"properties,omitempty"`
	Relations   []RelationSpec   `yaml:"relations,omitempty" json:"relations,omitempty"`
}

// ConstraintSpec permits a child type with a "min..max" cardinality
type ConstraintSpec struct {
	Child       string `yaml:"child" json:"child"`
	Cardinality string `yaml:"cardinality" json:"cardinality"`
}

// PropertySpec describes one property type
type PropertySpec struct {
	ID          string `yaml:"id" json:"id"`
	Predicate   string `yaml:"predicate" json:"predicate"`
	ValueType   string `yaml:"value_type,omitempty" json:"value_type,omitempty"`
	Cardinality string `yaml:"cardinality,omitempty" json:"cardinality,omitempty"`
	Inheritable bool   `yaml:"inheritable,omitempty" json:"inheritable,omitempty"`
	ReadOnly    bool   `yaml:"read_only,omitempty" json:"read_only,omitempty"`
	Source      string `yaml:"source,omitempty" json:"source,omitempty"`
}

// RelationSpec describes one structural relation
type RelationSpec struct {
	ID           string `yaml:"id" json:"id"`
	Predicate    string `yaml:"predicate" json:"predicate"`
	Target       string `yaml:"target" json:"target"`
	Hierarchical bool   `yaml:"hierarchical,omitempty" json:"hierarchical,omitempty"`
	Direction    string `yaml:"direction,omitempty" json:"direction,omitempty"`
}

// FromProfile converts a compiled profile into its document form
func FromProfile(p *domain.Profile) *Document {
	def := p.Definition()
	doc := &Document{
		ID:        def.ID,
		Name:      def.Name,
		Version:   def.Version,
		Namespace: def.Namespace,
		RootTypes: def.RootTypes,
		Types:     make([]TypeSpec, 0, len(def.Types)),
	}

	for _, t := range def.Types {
		spec := TypeSpec{
			ID:          t.ID,
			Label:       t.Label,
			Class:       t.ClassURI,
			Bearing:     string(t.Bearing),
			NamePattern: t.NamePattern,
		}
		for _, c := range t.Constraints {
			spec.Constraints = append(spec.Constraints, ConstraintSpec{
				Child:       c.ChildType,
				Cardinality: c.Cardinality.String(),
			})
		}
		for _, pt := range t.Properties {
			spec.Properties = append(spec.Properties, PropertySpec{
				ID:          pt.ID,
				Predicate:   pt.Predicate,
				ValueType:   string(pt.ValueType),
				Cardinality: pt.Cardinality.String(),
				Inheritable: pt.Inheritable,
				ReadOnly:    pt.ReadOnly,
				Source:      pt.Source,
			})
		}
		for _, r := range t.Relations {
			spec.Relations = append(spec.Relations, RelationSpec{
				ID:           r.ID,
				Predicate:    r.Predicate,
				Target:       r.TargetType,
				Hierarchical: r.Hierarchical,
				Direction:    string(r.Direction),
			})
		}
		doc.Types = append(doc.Types, spec)
	}
	return doc
}

// Definition converts the document into a profile definition. Omitted
// property value types default to string and omitted property
// cardinalities to 0..1.
func (d *Document) Definition() (domain.ProfileDefinition, error) {
	def := domain.ProfileDefinition{
		ID:        d.ID,
		Name:      d.Name,
		Version:   d.Version,
		Namespace: d.Namespace,
	}
	if len(d.RootTypes) > 0 {
		def.RootTypes = append([]string(nil), d.RootTypes...)
	}

	for _, spec := range d.Types {
		t := domain.NodeType{
			ID:          spec.ID,
			Label:       spec.Label,
			ClassURI:    spec.Class,
			Bearing:     domain.Bearing(spec.Bearing),
			NamePattern: spec.NamePattern,
		}

		for _, c := range spec.Constraints {
			var card domain.CardinalityConstraint
			if err := card.UnmarshalText([]byte(c.Cardinality)); err != nil {
				return def, fmt.Errorf("type %s, child %s: %w", spec.ID, c.Child, err)
			}
			t.Constraints = append(t.Constraints, domain.NodeConstraint{ChildType: c.Child, Cardinality: card})
		}

		for _, ps := range spec.Properties {
			card := domain.Cardinality(0, 1)
			if ps.Cardinality != "" {
				if err := card.UnmarshalText([]byte(ps.Cardinality)); err != nil {
					return def, fmt.Errorf("type %s, property %s: %w", spec.ID, ps.ID, err)
				}
			}
			valueType := domain.ValueString
			if ps.ValueType != "" {
				valueType = domain.ValueType(ps.ValueType)
			}
			t.Properties = append(t.Properties, domain.PropertyType{
				ID:          ps.ID,
				Predicate:   ps.Predicate,
				ValueType:   valueType,
				Cardinality: card,
				Inheritable: ps.Inheritable,
				ReadOnly:    ps.ReadOnly,
				Source:      ps.Source,
			})
		}

		for _, rs := range spec.Relations {
			t.Relations = append(t.Relations, domain.StructuralRelation{
				ID:           rs.ID,
				Predicate:    rs.Predicate,
				TargetType:   rs.Target,
				Hierarchical: rs.Hierarchical,
				Direction:    domain.Direction(rs.Direction),
			})
		}

		def.Types = append(def.Types, t)
	}
	return def, nil
}

// Profile compiles the document
func (d *Document) Profile() (*domain.Profile, error) {
	def, err := d.Definition()
	if err != nil {
		return nil, &domain.ValidationError{Field: "profile", Message: err.Error()}
	}
	return domain.NewProfile(def)
}

// Marshal serializes p in the given format
func Marshal(p *domain.Profile, format Format) ([]byte, error) {
	doc := FromProfile(p)
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported profile format: %s", format)
	}
}

// Unmarshal parses and compiles a profile document
func Unmarshal(data []byte, format Format) (*domain.Profile, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing profile: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing profile: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported profile format: %s", format)
	}
	return doc.Profile()
}

// Load reads a profile document, picking the format from the extension
func Load(path string) (*domain.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.IOError{Op: "read profile", Path: path, Err: err}
	}
	p, err := Unmarshal(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Save writes p to path, picking the format from the extension
func Save(path string, p *domain.Profile) error {
	data, err := Marshal(p, FormatFromPath(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &domain.IOError{Op: "write profile", Path: path, Err: err}
	}
	return nil
}

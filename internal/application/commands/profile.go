package commands

import (
	"context"
	"fmt"

	"ipmgraph/internal/application"
	"ipmgraph/internal/domain"
)

// TypeSummary is a flat view of one node type
type TypeSummary struct {
	ID         string
	Label      string
	Bearing    domain.Bearing
	Root       bool
	Pattern    string
	Children   []string // "type (min..max)"
	Properties []string
	Relations  []string
}

// ProfileResult describes a profile
type ProfileResult struct {
	ID        string
	Name      string
	Version   string
	Namespace string
	Types     []TypeSummary
	Message   string
}

// ShowProfileCommand summarizes a domain profile
type ShowProfileCommand struct {
	Profile *domain.Profile
}

// NewShowProfileCommand creates a new ShowProfileCommand
func NewShowProfileCommand(profile *domain.Profile) *ShowProfileCommand {
	return &ShowProfileCommand{Profile: profile}
}

// Validate checks a profile was given
func (c *ShowProfileCommand) Validate() error {
	if c.Profile == nil {
		return &application.ValidationError{Field: "profile", Message: "profile is required"}
	}
	return nil
}

// Execute runs the show profile command
func (c *ShowProfileCommand) Execute(ctx context.Context) (*ProfileResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	p := c.Profile
	result := &ProfileResult{
		ID:        p.ID(),
		Name:      p.Name(),
		Version:   p.Version(),
		Namespace: p.Namespace(),
	}

	for _, t := range p.Types() {
		s := TypeSummary{
			ID:      t.ID,
			Label:   t.Label,
			Bearing: t.Bearing,
			Root:    len(p.RootTypes()) > 0 && p.IsRootType(t),
			Pattern: t.NamePattern,
		}
		for _, nc := range t.Constraints {
			s.Children = append(s.Children, fmt.Sprintf("%s (%s)", nc.ChildType, nc.Cardinality))
		}
		for _, pt := range t.Properties {
			s.Properties = append(s.Properties, fmt.Sprintf("%s %s (%s)", pt.ID, pt.ValueType, pt.Cardinality))
		}
		for _, r := range t.Relations {
			kind := "cross-reference"
			if r.Hierarchical {
				kind = string(r.Direction)
			}
			s.Relations = append(s.Relations, fmt.Sprintf("%s -> %s (%s)", r.ID, r.TargetType, kind))
		}
		result.Types = append(result.Types, s)
	}

	result.Message = fmt.Sprintf("Profile %s has %d types", p.ID(), len(result.Types))
	return result, nil
}

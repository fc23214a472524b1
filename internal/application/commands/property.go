package commands

import (
	"context"
	"fmt"
	"strings"

	"ipmgraph/internal/application"
	"ipmgraph/internal/domain"
)

// SetPropertyResult contains the node whose property was set
type SetPropertyResult struct {
	Node    *domain.Node
	Message string
}

// SetPropertyCommand replaces the user-supplied values of one property or
// cross-reference of a node. No values clears it, so derived or inherited
// values apply again.
type SetPropertyCommand struct {
	profile    *domain.Profile
	Root       *domain.Node
	NodePath   string
	PropertyID string
	Values     []string
}

// NewSetPropertyCommand creates a new SetPropertyCommand
func NewSetPropertyCommand(profile *domain.Profile, root *domain.Node, nodePath, propertyID string, values ...string) *SetPropertyCommand {
	return &SetPropertyCommand{
		profile:    profile,
		Root:       root,
		NodePath:   nodePath,
		PropertyID: propertyID,
		Values:     values,
	}
}

// Validate checks that the profile lets users set the property somewhere
func (c *SetPropertyCommand) Validate() error {
	if c.Root == nil {
		return &application.ValidationError{Field: "root", Message: "tree is required"}
	}
	if err := application.ValidateRelPath("nodePath", c.NodePath); err != nil {
		return err
	}
	if strings.TrimSpace(c.PropertyID) == "" {
		return &application.ValidationError{Field: "propertyID", Message: "property is required"}
	}

	reason := ""
	for _, t := range c.profile.Types() {
		why := settable(t, c.PropertyID)
		if why == "" {
			return nil
		}
		if reason == "" || why != "unknown" {
			reason = why
		}
	}
	if reason == "" || reason == "unknown" {
		return &application.NotFoundError{Kind: "property", ID: c.PropertyID}
	}
	return &application.ValidationError{Field: "propertyID", Message: fmt.Sprintf("%s is %s", c.PropertyID, reason)}
}

// Execute runs the set property command
func (c *SetPropertyCommand) Execute(ctx context.Context) (*SetPropertyResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	node := c.Root.FindPath(c.NodePath)
	if node == nil {
		return nil, &application.NotFoundError{Kind: "node", ID: c.NodePath}
	}

	// Untyped nodes are checked once the store writes them
	if node.Type != nil {
		switch why := settable(node.Type, c.PropertyID); why {
		case "":
		case "unknown":
			return nil, &application.ValidationError{
				Field:   "propertyID",
				Message: fmt.Sprintf("type %s has no property %s", node.Type.ID, c.PropertyID),
			}
		default:
			return nil, &application.ValidationError{
				Field:   "propertyID",
				Message: fmt.Sprintf("%s is %s on type %s", c.PropertyID, why, node.Type.ID),
			}
		}
	}

	node.SetProperty(c.PropertyID, c.Values...)
	if len(c.Values) == 0 {
		return &SetPropertyResult{Node: node, Message: fmt.Sprintf("Cleared %s on %s", c.PropertyID, c.NodePath)}, nil
	}
	return &SetPropertyResult{
		Node:    node,
		Message: fmt.Sprintf("Set %s on %s to %s", c.PropertyID, c.NodePath, strings.Join(c.Values, ", ")),
	}, nil
}

// settable returns "" when users may set id on nodes of type t, otherwise
// why not
func settable(t *domain.NodeType, id string) string {
	if pt, ok := t.Property(id); ok {
		if pt.ReadOnly {
			return "read-only"
		}
		return ""
	}
	if r, ok := t.Relation(id); ok {
		if r.Hierarchical {
			return "a hierarchical relation"
		}
		return ""
	}
	return "unknown"
}

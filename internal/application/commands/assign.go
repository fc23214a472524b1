package commands

import (
	"context"
	"fmt"

	"ipmgraph/internal/application"
	"ipmgraph/internal/application/assign"
	"ipmgraph/internal/domain"
)

// AssignResult contains the outcome of type assignment
type AssignResult struct {
	Assigned   bool
	Violations []assign.Violation
	Message    string
}

// AssignCommand assigns a profile node type to every node of a tree
type AssignCommand struct {
	engine *assign.Engine
	Root   *domain.Node
	// Reset drops earlier unlocked assignments first
	Reset bool
}

// NewAssignCommand creates a new AssignCommand
func NewAssignCommand(engine *assign.Engine, root *domain.Node) *AssignCommand {
	return &AssignCommand{engine: engine, Root: root}
}

// Validate checks if the assignment can run
func (c *AssignCommand) Validate() error {
	if c.Root == nil {
		return &application.ValidationError{Field: "root", Message: "tree is required"}
	}
	return nil
}

// Execute runs the assign command. A failed search is not an error: the
// result reports the violations of the partial assignment instead.
func (c *AssignCommand) Execute(ctx context.Context) (*AssignResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Reset {
		c.Root.ClearTypes()
	}

	result := &AssignResult{Assigned: c.engine.AssignNodeTypes(c.Root)}
	if result.Assigned {
		result.Message = fmt.Sprintf("Assigned types to %d nodes using profile %s", c.Root.Count(), c.engine.Profile().ID())
		return result, nil
	}

	result.Violations = c.engine.Violations(c.Root)
	result.Message = fmt.Sprintf("No valid assignment under profile %s (%d violations)", c.engine.Profile().ID(), len(result.Violations))
	return result, nil
}

// ValidateTreeResult lists the rule violations of a typed tree
type ValidateTreeResult struct {
	Valid      bool
	Violations []assign.Violation
	Message    string
}

// ValidateTreeCommand re-checks an assignment without changing it
type ValidateTreeCommand struct {
	engine *assign.Engine
	Root   *domain.Node
}

// NewValidateTreeCommand creates a new ValidateTreeCommand
func NewValidateTreeCommand(engine *assign.Engine, root *domain.Node) *ValidateTreeCommand {
	return &ValidateTreeCommand{engine: engine, Root: root}
}

// Validate checks if the validation can run
func (c *ValidateTreeCommand) Validate() error {
	if c.Root == nil {
		return &application.ValidationError{Field: "root", Message: "tree is required"}
	}
	return nil
}

// Execute runs the validate command
func (c *ValidateTreeCommand) Execute(ctx context.Context) (*ValidateTreeResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	violations := c.engine.Violations(c.Root)
	result := &ValidateTreeResult{Valid: len(violations) == 0, Violations: violations}
	if result.Valid {
		result.Message = "Tree is valid"
	} else {
		result.Message = fmt.Sprintf("Tree has %d violations", len(violations))
	}
	return result, nil
}

// SetTypeResult contains the node whose type was overridden
type SetTypeResult struct {
	Node    *domain.Node
	Message string
}

// SetTypeCommand overrides the type of one node and locks it. An empty
// TypeID unlocks the node and clears its type.
type SetTypeCommand struct {
	profile  *domain.Profile
	Root     *domain.Node
	NodePath string
	TypeID   string
}

// NewSetTypeCommand creates a new SetTypeCommand
func NewSetTypeCommand(profile *domain.Profile, root *domain.Node, nodePath, typeID string) *SetTypeCommand {
	return &SetTypeCommand{
		profile:  profile,
		Root:     root,
		NodePath: nodePath,
		TypeID:   typeID,
	}
}

// Validate checks if the override is valid
func (c *SetTypeCommand) Validate() error {
	if c.Root == nil {
		return &application.ValidationError{Field: "root", Message: "tree is required"}
	}
	if err := application.ValidateRelPath("nodePath", c.NodePath); err != nil {
		return err
	}
	if c.TypeID != "" {
		if _, err := c.profile.MustType(c.TypeID); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs the set type command
func (c *SetTypeCommand) Execute(ctx context.Context) (*SetTypeResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	node := c.Root.FindPath(c.NodePath)
	if node == nil {
		return nil, &application.NotFoundError{Kind: "node", ID: c.NodePath}
	}

	if c.TypeID == "" {
		node.SetTypeManually(nil)
		return &SetTypeResult{Node: node, Message: fmt.Sprintf("Unlocked %s", c.NodePath)}, nil
	}

	t, _ := c.profile.Type(c.TypeID)
	if !c.profile.Compatible(t, node) {
		return nil, &application.ValidationError{
			Field:   "typeID",
			Message: fmt.Sprintf("type %s (%s) does not fit %s", t.ID, t.Bearing, c.NodePath),
		}
	}
	node.SetTypeManually(t)

	return &SetTypeResult{
		Node:    node,
		Message: fmt.Sprintf("Locked %s as %s", c.NodePath, t.ID),
	}, nil
}

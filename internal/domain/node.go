package domain

import (
	"path/filepath"
	"slices"

	"github.com/google/uuid"
)

// NodeID is the stable identifier of a node within one tree. It survives
// renames and content changes, which is what tree comparison matches on.
type NodeID string

// NewNodeID returns a fresh random node identifier
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// Node is a vertex of the IPM tree
type Node struct {
	ID         NodeID
	ObjectURI  string    // set once the node has been materialized
	Info       *FileInfo // nil before scan
	Type       *NodeType // nil until assignment; points into a shared Profile
	TypeLocked bool      // manual override, kept fixed by the engine
	Children   []*Node
	Parent     *Node // lookup only, never owns the parent
	Properties map[string][]string
}

// NewNode creates a detached node for the given file information
func NewNode(info *FileInfo) *Node {
	return &Node{
		ID:         NewNodeID(),
		Info:       info,
		Properties: make(map[string][]string),
	}
}

// IsFile reports whether the node is backed by a regular file
func (n *Node) IsFile() bool {
	return n.Info != nil && n.Info.IsFile
}

// IsDir reports whether the node is backed by a directory
func (n *Node) IsDir() bool {
	return n.Info != nil && !n.Info.IsFile
}

// IsLeaf reports whether the node has no children
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Name returns the base name of the backing filesystem entry
func (n *Node) Name() string {
	if n.Info == nil {
		return ""
	}
	return filepath.Base(n.Info.Path)
}

// AddChild appends child to n and sets its parent pointer
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// RemoveChild detaches the child with the given ID. It returns the removed
// node, or nil when n has no such child.
func (n *Node) RemoveChild(id NodeID) *Node {
	for i, c := range n.Children {
		if c.ID == id {
			n.Children = slices.Delete(n.Children, i, i+1)
			c.Parent = nil
			return c
		}
	}
	return nil
}

// Root returns the root of the tree n belongs to
func (n *Node) Root() *Node {
	current := n
	for current.Parent != nil {
		current = current.Parent
	}
	return current
}

// Depth returns the depth of this node in the tree
func (n *Node) Depth() int {
	depth := 0
	current := n.Parent
	for current != nil {
		depth++
		current = current.Parent
	}
	return depth
}

// Find returns the node with the given ID in the subtree rooted at n
func (n *Node) Find(id NodeID) *Node {
	var found *Node
	Walk(n, PreOrder, func(c *Node) error {
		if c.ID == id {
			found = c
			return StopWalk
		}
		return nil
	})
	return found
}

// RelPath returns the slash-separated path of n relative to the tree root.
// The root itself is ".".
func (n *Node) RelPath() string {
	root := n.Root()
	if n == root || n.Info == nil || root.Info == nil {
		return "."
	}
	rel, err := filepath.Rel(root.Info.Path, n.Info.Path)
	if err != nil {
		return n.Name()
	}
	return filepath.ToSlash(rel)
}

// FindPath returns the node whose RelPath equals rel
func (n *Node) FindPath(rel string) *Node {
	var found *Node
	Walk(n, PreOrder, func(c *Node) error {
		if c.RelPath() == rel {
			found = c
			return StopWalk
		}
		return nil
	})
	return found
}

// SetProperty replaces the user-supplied values of a property or
// non-hierarchical relation
func (n *Node) SetProperty(name string, values ...string) {
	if n.Properties == nil {
		n.Properties = make(map[string][]string)
	}
	if len(values) == 0 {
		delete(n.Properties, name)
		return
	}
	n.Properties[name] = slices.Clone(values)
}

// Property returns the user-supplied values of a property
func (n *Node) Property(name string) []string {
	return n.Properties[name]
}

// SetTypeManually assigns t and locks it against automatic reassignment
func (n *Node) SetTypeManually(t *NodeType) {
	n.Type = t
	n.TypeLocked = t != nil
}

// ClearTypes removes every unlocked type assignment in the subtree
func (n *Node) ClearTypes() {
	Walk(n, PreOrder, func(c *Node) error {
		if !c.TypeLocked {
			c.Type = nil
		}
		return nil
	})
}

// Count returns the number of nodes in the subtree rooted at n
func (n *Node) Count() int {
	count := 0
	Walk(n, PreOrder, func(*Node) error {
		count++
		return nil
	})
	return count
}

package domain

import "errors"

// WalkOrder selects when the visitor sees a node relative to its children
type WalkOrder int

const (
	PreOrder WalkOrder = iota
	PostOrder
)

var (
	// StopWalk ends the traversal without error
	StopWalk = errors.New("stop walk")
	// SkipChildren skips the children of the node just visited (pre-order only)
	SkipChildren = errors.New("skip children")
)

// Visitor is called once per node during Walk
type Visitor func(n *Node) error

// Walk traverses the subtree rooted at root depth-first, visiting children in
// their stored order. The traversal is iterative so very deep trees do not
// grow the goroutine stack. A visitor error other than StopWalk or
// SkipChildren aborts the walk and is returned.
func Walk(root *Node, order WalkOrder, visit Visitor) error {
	if root == nil {
		return nil
	}

	type frame struct {
		node    *Node
		next    int
		entered bool
	}

	stack := []*frame{{node: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if !top.entered {
			top.entered = true
			if order == PreOrder {
				switch err := visit(top.node); {
				case errors.Is(err, StopWalk):
					return nil
				case errors.Is(err, SkipChildren):
					stack = stack[:len(stack)-1]
					continue
				case err != nil:
					return err
				}
			}
		}

		if top.next < len(top.node.Children) {
			child := top.node.Children[top.next]
			top.next++
			stack = append(stack, &frame{node: child})
			continue
		}

		stack = stack[:len(stack)-1]
		if order == PostOrder {
			if err := visit(top.node); err != nil {
				if errors.Is(err, StopWalk) {
					return nil
				}
				if !errors.Is(err, SkipChildren) {
					return err
				}
			}
		}
	}
	return nil
}

// Flatten returns the nodes of the subtree in pre-order
func Flatten(root *Node) []*Node {
	var result []*Node
	Walk(root, PreOrder, func(n *Node) error {
		result = append(result, n)
		return nil
	})
	return result
}

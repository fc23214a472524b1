package assign

import (
	"fmt"

	"ipmgraph/internal/domain"
)

// Rule names the check a Violation failed
type Rule string

const (
	RuleUntyped     Rule = "untyped"
	RuleBearing     Rule = "bearing"
	RuleNamePattern Rule = "name-pattern"
	RuleRoot        Rule = "root"
	RuleParent      Rule = "parent"
	RuleCardinality Rule = "cardinality"
)

// Violation is one failed check on one node
type Violation struct {
	Node    *domain.Node
	Rule    Rule
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s: %s", v.Node.RelPath(), v.Rule, v.Message)
}

// ValidateTree re-checks every node of an already typed tree without
// modifying it
func (e *Engine) ValidateTree(root *domain.Node) bool {
	return len(e.Violations(root)) == 0
}

// Violations lists every failed check in pre-order. Nodes without children
// are exempt from child cardinality checks.
func (e *Engine) Violations(root *domain.Node) []Violation {
	var out []Violation
	report := func(n *domain.Node, rule Rule, format string, args ...any) {
		out = append(out, Violation{Node: n, Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	domain.Walk(root, domain.PreOrder, func(n *domain.Node) error {
		t := n.Type
		if t == nil {
			report(n, RuleUntyped, "no node type assigned")
			return nil
		}

		if !t.Bearing.Accepts(n.Info) {
			report(n, RuleBearing, "type %s has %s bearing", t.ID, t.Bearing)
		} else if !e.profile.Compatible(t, n) {
			report(n, RuleNamePattern, "name %q does not match type %s", n.Name(), t.ID)
		}

		if n.Parent == nil {
			if !e.profile.IsRootType(t) {
				report(n, RuleRoot, "type %s is not a root type", t.ID)
			}
		} else if pt := n.Parent.Type; pt != nil && !e.profile.Permits(pt, t) {
			report(n, RuleParent, "type %s is not permitted under %s", t.ID, pt.ID)
		}

		if len(n.Children) == 0 {
			return nil
		}
		counts := make(map[string]int)
		for _, c := range n.Children {
			if c.Type != nil {
				counts[c.Type.ID]++
			}
		}
		for _, c := range t.Constraints {
			if got := counts[c.ChildType]; !c.Cardinality.Allows(got) {
				report(n, RuleCardinality, "%d children of type %s, want %s", got, c.ChildType, c.Cardinality)
			}
		}
		return nil
	})
	return out
}

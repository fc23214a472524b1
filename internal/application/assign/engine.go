// Package assign finds a profile node type for every node of an IPM tree.
package assign

import (
	"errors"
	"log/slog"
	"slices"
	"time"

	"ipmgraph/internal/domain"
)

// Engine assigns and validates node types against one profile. It is not
// safe for concurrent use on the same tree.
type Engine struct {
	profile     *domain.Profile
	searchLimit int
	logger      *slog.Logger

	// childOK[id] is true when some type permits id as a child
	childOK map[string]bool
}

// Option configures an Engine
type Option func(*Engine)

// WithSearchLimit aborts the search after n candidate evaluations. Zero
// means unlimited.
func WithSearchLimit(n int) Option {
	return func(e *Engine) {
		e.searchLimit = n
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an engine for profile
func NewEngine(profile *domain.Profile, opts ...Option) *Engine {
	e := &Engine{
		profile: profile,
		logger:  slog.Default(),
		childOK: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, t := range profile.Types() {
		for _, c := range t.Constraints {
			e.childOK[c.ChildType] = true
		}
	}
	return e
}

// Profile returns the profile the engine assigns from
func (e *Engine) Profile() *domain.Profile {
	return e.profile
}

// Candidates returns the types node n may carry on its own: bearing and
// name pattern match. File-bearing types come first, then types of any
// bearing, then directory types; declaration order within each group.
func (e *Engine) Candidates(n *domain.Node) []*domain.NodeType {
	var file, anyBearing, dir []*domain.NodeType
	for _, t := range e.profile.Types() {
		if !e.profile.Compatible(t, n) {
			continue
		}
		switch t.Bearing {
		case domain.BearingFile:
			file = append(file, t)
		case domain.BearingAny:
			anyBearing = append(anyBearing, t)
		default:
			dir = append(dir, t)
		}
	}
	out := append(file, anyBearing...)
	return append(out, dir...)
}

// AssignNodeTypes searches for a type assignment under which every node
// satisfies its constraints and sets node types in place. Locked nodes keep
// their type.
//
// Subtrees are independent once their root's type is fixed, so the search
// never revisits a sibling subtree to repair a failure elsewhere. It runs in
// three passes. A pre-order pass drops every candidate that no candidate of
// the parent permits. A post-order pass keeps, per node, only the candidates
// its children can satisfy, where a node with no surviving candidate fails
// the whole search at once. A final pre-order pass fixes the types: the
// children of each node take the first combination, in child order and
// candidate preference order, that meets the parent's cardinality bounds.
//
// It returns false when no valid assignment exists or the search limit was
// reached. In that case the tree holds whatever state the search reached.
func (e *Engine) AssignNodeTypes(root *domain.Node) bool {
	if root == nil {
		return false
	}
	start := time.Now()

	s := &search{engine: e, candidates: make(map[*domain.Node][]*domain.NodeType)}
	err := s.prune(root)
	if err == nil {
		err = s.resolve(root)
	}
	if err == nil {
		err = s.fix(root)
	}

	var dead *deadEnd
	switch {
	case errors.Is(err, errSearchLimit):
		e.logger.Debug("Type assignment search limit reached",
			slog.Int("limit", e.searchLimit),
			slog.Duration("duration", time.Since(start)))
	case errors.As(err, &dead):
		e.logger.Debug("Type assignment found no candidate",
			slog.String("path", dead.node.RelPath()),
			slog.Int("evaluations", s.evaluations))
	}

	ok := err == nil
	e.logger.Debug("Type assignment finished",
		slog.Bool("ok", ok),
		slog.Int("nodes", len(s.candidates)),
		slog.Int("evaluations", s.evaluations),
		slog.Duration("duration", time.Since(start)))
	return ok
}

var errSearchLimit = errors.New("search limit reached")

// deadEnd reports the node whose candidate set ran empty
type deadEnd struct {
	node *domain.Node
}

func (d *deadEnd) Error() string {
	return "no candidate type for " + d.node.RelPath()
}

// search holds the per-node candidate sets of one AssignNodeTypes call
type search struct {
	engine      *Engine
	candidates  map[*domain.Node][]*domain.NodeType
	evaluations int
}

// evaluate counts one candidate evaluation against the search limit
func (s *search) evaluate() error {
	s.evaluations++
	if s.engine.searchLimit > 0 && s.evaluations > s.engine.searchLimit {
		return errSearchLimit
	}
	return nil
}

// prune computes the static candidates of every node, dropping types that
// no candidate of the parent permits
func (s *search) prune(root *domain.Node) error {
	p := s.engine.profile
	return domain.Walk(root, domain.PreOrder, func(n *domain.Node) error {
		parents, hasParent := s.candidates[n.Parent]

		var out []*domain.NodeType
		for _, t := range s.engine.searchCandidates(n) {
			if hasParent && !slices.ContainsFunc(parents, func(pt *domain.NodeType) bool {
				return p.Permits(pt, t)
			}) {
				continue
			}
			out = append(out, t)
		}
		if len(out) == 0 {
			return &deadEnd{node: n}
		}
		s.candidates[n] = out
		return nil
	})
}

// resolve keeps, bottom-up, the candidates whose children can be typed to
// satisfy them. Unlocked nodes take their first surviving candidate as the
// provisional type.
func (s *search) resolve(root *domain.Node) error {
	return domain.Walk(root, domain.PostOrder, func(n *domain.Node) error {
		var feasible []*domain.NodeType
		for _, t := range s.candidates[n] {
			if err := s.evaluate(); err != nil {
				return err
			}
			if len(n.Children) == 0 {
				feasible = append(feasible, t)
				continue
			}
			if choices := s.childChoices(t, n.Children); choices != nil && countsFeasible(choices, t.Constraints) {
				feasible = append(feasible, t)
			}
		}
		if len(feasible) == 0 {
			return &deadEnd{node: n}
		}
		s.candidates[n] = feasible
		if !n.TypeLocked {
			n.Type = feasible[0]
		}
		return nil
	})
}

// fix walks top-down and settles the children of every node on the first
// combination that satisfies the node's type
func (s *search) fix(root *domain.Node) error {
	return domain.Walk(root, domain.PreOrder, func(n *domain.Node) error {
		if len(n.Children) == 0 {
			return nil
		}
		choices := s.childChoices(n.Type, n.Children)
		if choices == nil {
			return &deadEnd{node: n}
		}

		for i := range choices {
			if len(choices[i]) == 1 {
				continue
			}
			if firstChoicesFit(choices, n.Type.Constraints) {
				break
			}
			options := choices[i]
			picked := false
			for _, t := range options {
				if err := s.evaluate(); err != nil {
					return err
				}
				choices[i] = []*domain.NodeType{t}
				if countsFeasible(choices, n.Type.Constraints) {
					picked = true
					break
				}
			}
			if !picked {
				return &deadEnd{node: n.Children[i]}
			}
		}

		for i, c := range n.Children {
			if !c.TypeLocked {
				c.Type = choices[i][0]
			}
		}
		return nil
	})
}

// childChoices returns, per child, its surviving candidates that t permits,
// or nil when some child has none
func (s *search) childChoices(t *domain.NodeType, children []*domain.Node) [][]*domain.NodeType {
	p := s.engine.profile
	out := make([][]*domain.NodeType, len(children))
	for i, c := range children {
		for _, ct := range s.candidates[c] {
			if p.Permits(t, ct) {
				out[i] = append(out[i], ct)
			}
		}
		if len(out[i]) == 0 {
			return nil
		}
	}
	return out
}

// searchCandidates narrows Candidates to the types that could ever sit at
// the node's position: the root must be a root type, any other node must be
// permitted as a child by some type.
func (e *Engine) searchCandidates(n *domain.Node) []*domain.NodeType {
	if n.TypeLocked && n.Type != nil {
		if !e.profile.Compatible(n.Type, n) {
			return nil
		}
		return []*domain.NodeType{n.Type}
	}

	var out []*domain.NodeType
	for _, t := range e.Candidates(n) {
		if n.Parent == nil {
			if !e.profile.IsRootType(t) {
				continue
			}
		} else if !e.childOK[t.ID] {
			continue
		}
		out = append(out, t)
	}
	return out
}

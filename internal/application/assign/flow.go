package assign

import (
	"ipmgraph/internal/domain"
)

// firstChoicesFit reports whether giving every child its first choice meets
// all bounds
func firstChoicesFit(choices [][]*domain.NodeType, constraints []domain.NodeConstraint) bool {
	counts := make(map[string]int, len(constraints))
	for _, c := range choices {
		counts[c[0].ID]++
	}
	for _, c := range constraints {
		if !c.Cardinality.Allows(counts[c.ChildType]) {
			return false
		}
	}
	return true
}

// countsFeasible reports whether every child can take one of its choices so
// that each constrained type occurs within its bounds.
//
// The check is a flow with lower bounds: one unit per child runs to the type
// it takes, and each type node must pass on at least Min and at most Max
// units. The lower bounds are moved onto an auxiliary source and sink, and
// the bounds are satisfiable iff the auxiliary flow saturates.
func countsFeasible(choices [][]*domain.NodeType, constraints []domain.NodeConstraint) bool {
	if firstChoicesFit(choices, constraints) {
		return true
	}

	const (
		auxSource = iota
		auxSink
		source
		sink
		firstNode
	)
	k := len(choices)
	child := func(i int) int { return firstNode + i }
	typeNode := func(j int) int { return firstNode + k + j }

	net := newFlowNet(firstNode + k + len(constraints))
	index := make(map[string]int, len(constraints))
	minTotal := 0
	for j, c := range constraints {
		index[c.ChildType] = j
		lo, hi := c.Cardinality.Min, c.Cardinality.Max
		if hi == domain.Unbounded || hi > k {
			hi = k
		}
		if lo > hi {
			return false
		}
		net.add(typeNode(j), sink, hi-lo)
		net.add(typeNode(j), auxSink, lo)
		minTotal += lo
	}
	for i, options := range choices {
		net.add(auxSource, child(i), 1)
		for _, t := range options {
			if j, ok := index[t.ID]; ok {
				net.add(child(i), typeNode(j), 1)
			}
		}
	}
	net.add(auxSource, sink, minTotal)
	net.add(source, auxSink, k)
	net.add(sink, source, k+minTotal)

	return net.maxFlow(auxSource, auxSink) == k+minTotal
}

// flowNet is an integer-capacity network stored as paired residual edges:
// edge i^1 is the reverse of edge i
type flowNet struct {
	edges []flowEdge
	adj   [][]int
}

type flowEdge struct {
	to  int
	cap int
}

func newFlowNet(nodes int) *flowNet {
	return &flowNet{adj: make([][]int, nodes)}
}

func (f *flowNet) add(from, to, capacity int) {
	if capacity <= 0 {
		return
	}
	f.adj[from] = append(f.adj[from], len(f.edges))
	f.edges = append(f.edges, flowEdge{to: to, cap: capacity})
	f.adj[to] = append(f.adj[to], len(f.edges))
	f.edges = append(f.edges, flowEdge{to: from})
}

// maxFlow augments along shortest paths until none is left
func (f *flowNet) maxFlow(s, t int) int {
	total := 0
	via := make([]int, len(f.adj))
	for {
		for i := range via {
			via[i] = -1
		}
		via[s] = len(f.edges)

		queue := []int{s}
		for len(queue) > 0 && via[t] < 0 {
			v := queue[0]
			queue = queue[1:]
			for _, ei := range f.adj[v] {
				e := f.edges[ei]
				if e.cap > 0 && via[e.to] < 0 {
					via[e.to] = ei
					queue = append(queue, e.to)
				}
			}
		}
		if via[t] < 0 {
			return total
		}

		push := -1
		for v := t; v != s; v = f.edges[via[v]^1].to {
			if c := f.edges[via[v]].cap; push < 0 || c < push {
				push = c
			}
		}
		for v := t; v != s; v = f.edges[via[v]^1].to {
			f.edges[via[v]].cap -= push
			f.edges[via[v]^1].cap += push
		}
		total += push
	}
}

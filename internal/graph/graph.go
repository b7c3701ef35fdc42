// Package graph compiles a static directed acyclic graph of named steps into
// an immutable execution plan and runs it against caller-supplied state.
//
// Steps are grouped into layers with Kahn's algorithm: a step's layer is one
// past the deepest layer among its predecessors. A run executes layer by
// layer; the steps of a layer run concurrently against the same state
// snapshot and their updates are merged, in layer order, on the calling
// goroutine before the next layer starts.
package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Synthetic entry and exit markers. They cannot be used as step names.
const (
	Start = "__start__"
	End   = "__end__"
)

var (
	ErrCycle         = errors.New("graph contains a cycle")
	ErrUnknownNode   = errors.New("edge references an unknown node")
	ErrUnreachable   = errors.New("node is not on a path from start to end")
	ErrDuplicateNode = errors.New("duplicate node")
	ErrReservedName  = errors.New("reserved node name")
	ErrEmpty         = errors.New("graph has no nodes")
)

// NodeFunc is one step: it reads state and returns a partial update.
type NodeFunc[S, U any] func(ctx context.Context, state S) (U, error)

// MergeFunc folds a batch of sibling updates into state. It must not modify
// its inputs.
type MergeFunc[S, U any] func(state S, updates ...U) (S, error)

// Edge is a dependency: To runs after From.
type Edge struct {
	From string
	To   string
}

// Builder accumulates nodes and edges. The first error is kept and returned
// by Compile.
type Builder[S, U any] struct {
	nodes map[string]NodeFunc[S, U]
	order []string
	edges []Edge
	err   error
}

// New returns an empty builder.
func New[S, U any]() *Builder[S, U] {
	return &Builder[S, U]{nodes: make(map[string]NodeFunc[S, U])}
}

// AddNode registers a step.
func (b *Builder[S, U]) AddNode(name string, fn NodeFunc[S, U]) *Builder[S, U] {
	if b.err != nil {
		return b
	}
	switch {
	case name == Start || name == End || name == "":
		b.err = fmt.Errorf("%w: %q", ErrReservedName, name)
	case fn == nil:
		b.err = fmt.Errorf("node %q: nil function", name)
	case b.nodes[name] != nil:
		b.err = fmt.Errorf("%w: %q", ErrDuplicateNode, name)
	default:
		b.nodes[name] = fn
		b.order = append(b.order, name)
	}
	return b
}

// AddEdge declares that to depends on from. Use Start and End for the entry
// and exit markers.
func (b *Builder[S, U]) AddEdge(from, to string) *Builder[S, U] {
	if b.err != nil {
		return b
	}
	b.edges = append(b.edges, Edge{From: from, To: to})
	return b
}

// Compile validates the topology and returns the execution plan.
func (b *Builder[S, U]) Compile(merge MergeFunc[S, U]) (*Plan[S, U], error) {
	if b.err != nil {
		return nil, b.err
	}
	if merge == nil {
		return nil, errors.New("nil merge function")
	}
	if len(b.nodes) == 0 {
		return nil, ErrEmpty
	}

	known := func(name string) bool { return b.nodes[name] != nil }
	preds := make(map[string][]string, len(b.nodes))
	succs := make(map[string][]string, len(b.nodes)+1)
	seen := make(map[Edge]bool, len(b.edges))
	var edges []Edge

	for _, e := range b.edges {
		switch {
		case e.From == End:
			return nil, fmt.Errorf("%w: edge leaves %s", ErrUnknownNode, End)
		case e.To == Start:
			return nil, fmt.Errorf("%w: edge enters %s", ErrUnknownNode, Start)
		case e.From != Start && !known(e.From):
			return nil, fmt.Errorf("%w: %q", ErrUnknownNode, e.From)
		case e.To != End && !known(e.To):
			return nil, fmt.Errorf("%w: %q", ErrUnknownNode, e.To)
		case e.From == e.To:
			return nil, fmt.Errorf("%w: self edge on %q", ErrCycle, e.From)
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		edges = append(edges, e)
		succs[e.From] = append(succs[e.From], e.To)
		if e.From != Start && e.To != End {
			preds[e.To] = append(preds[e.To], e.From)
		}
	}

	layerOf, err := b.layer(preds, succs)
	if err != nil {
		return nil, err
	}
	if err := b.checkReachable(edges); err != nil {
		return nil, err
	}

	depth := 0
	for _, l := range layerOf {
		if l+1 > depth {
			depth = l + 1
		}
	}
	layers := make([][]string, depth)
	for _, name := range b.order {
		l := layerOf[name]
		layers[l] = append(layers[l], name)
	}

	nodes := make(map[string]NodeFunc[S, U], len(b.nodes))
	for k, v := range b.nodes {
		nodes[k] = v
	}
	for k := range preds {
		sort.Slice(preds[k], func(i, j int) bool { return b.index(preds[k][i]) < b.index(preds[k][j]) })
	}

	return &Plan[S, U]{
		nodes:  nodes,
		order:  append([]string(nil), b.order...),
		layers: layers,
		edges:  edges,
		preds:  preds,
		merge:  merge,
	}, nil
}

// layer runs Kahn's algorithm over the real nodes and returns each node's
// layer index.
func (b *Builder[S, U]) layer(preds, succs map[string][]string) (map[string]int, error) {
	inDegree := make(map[string]int, len(b.nodes))
	for _, name := range b.order {
		inDegree[name] = len(preds[name])
	}

	var queue []string
	for _, name := range b.order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	layerOf := make(map[string]int, len(b.nodes))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		l := 0
		for _, p := range preds[name] {
			if layerOf[p]+1 > l {
				l = layerOf[p] + 1
			}
		}
		layerOf[name] = l

		for _, next := range succs[name] {
			if next == End {
				continue
			}
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(layerOf) != len(b.nodes) {
		var stuck []string
		for _, name := range b.order {
			if _, ok := layerOf[name]; !ok {
				stuck = append(stuck, name)
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrCycle, stuck)
	}
	return layerOf, nil
}

// checkReachable requires every node to be reachable from Start and to reach
// End.
func (b *Builder[S, U]) checkReachable(edges []Edge) error {
	fwd := make(map[string][]string)
	rev := make(map[string][]string)
	for _, e := range edges {
		fwd[e.From] = append(fwd[e.From], e.To)
		rev[e.To] = append(rev[e.To], e.From)
	}
	fromStart := walk(Start, fwd)
	toEnd := walk(End, rev)
	for _, name := range b.order {
		if !fromStart[name] {
			return fmt.Errorf("%w: %q is not reachable from %s", ErrUnreachable, name, Start)
		}
		if !toEnd[name] {
			return fmt.Errorf("%w: %q does not reach %s", ErrUnreachable, name, End)
		}
	}
	return nil
}

func walk(from string, adj map[string][]string) map[string]bool {
	visited := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range adj[n] {
			if !visited[m] {
				visited[m] = true
				stack = append(stack, m)
			}
		}
	}
	return visited
}

func (b *Builder[S, U]) index(name string) int {
	for i, n := range b.order {
		if n == name {
			return i
		}
	}
	return -1
}

package graph

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

var (
	// ErrDuplicateNode is returned when a node value is added twice.
	ErrDuplicateNode = errors.New("node already exists")
	// ErrUnknownNode is returned when an operation references a missing node.
	ErrUnknownNode = errors.New("node not found")
	// ErrDuplicateEdge is returned when an edge is added twice.
	ErrDuplicateEdge = errors.New("edge already exists")
)

// node holds one value and its adjacency lists.
type node[T comparable] struct {
	value T
	out   []T
	in    []T
}

// DirectedGraph is a set of unique nodes connected by directed edges.
type DirectedGraph[T comparable] struct {
	order []*node[T]
	index map[T]*node[T]
}

// New creates an empty graph.
func New[T comparable]() *DirectedGraph[T] {
	return &DirectedGraph[T]{
		index: make(map[T]*node[T]),
	}
}

// AddNode adds v to the graph.
func (g *DirectedGraph[T]) AddNode(v T) error {
	if _, ok := g.index[v]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateNode, v)
	}
	n := &node[T]{value: v}
	g.order = append(g.order, n)
	g.index[v] = n
	return nil
}

// AddEdge creates the edge from -> to. Both nodes must exist.
func (g *DirectedGraph[T]) AddEdge(from, to T) error {
	fromNode, ok := g.index[from]
	if !ok {
		return fmt.Errorf("%w: source %v", ErrUnknownNode, from)
	}
	toNode, ok := g.index[to]
	if !ok {
		return fmt.Errorf("%w: destination %v", ErrUnknownNode, to)
	}
	if slices.Contains(fromNode.out, to) {
		return fmt.Errorf("%w: %v -> %v", ErrDuplicateEdge, from, to)
	}
	fromNode.out = append(fromNode.out, to)
	toNode.in = append(toNode.in, from)
	return nil
}

// ExistNode reports whether v is a node of the graph.
func (g *DirectedGraph[T]) ExistNode(v T) bool {
	_, ok := g.index[v]
	return ok
}

// ExistEdge reports whether the edge from -> to exists.
func (g *DirectedGraph[T]) ExistEdge(from, to T) bool {
	n, ok := g.index[from]
	if !ok {
		return false
	}
	return slices.Contains(n.out, to)
}

// NeighborsOut returns the nodes v points to, in insertion order.
func (g *DirectedGraph[T]) NeighborsOut(v T) ([]T, error) {
	n, ok := g.index[v]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownNode, v)
	}
	return slices.Clone(n.out), nil
}

// NeighborsIn returns the nodes pointing to v, in insertion order.
func (g *DirectedGraph[T]) NeighborsIn(v T) ([]T, error) {
	n, ok := g.index[v]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownNode, v)
	}
	return slices.Clone(n.in), nil
}

// Accessible returns every node reachable from v through outgoing edges, in
// depth-first discovery order. v itself is only included when it lies on a
// cycle.
func (g *DirectedGraph[T]) Accessible(v T) ([]T, error) {
	if _, ok := g.index[v]; !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownNode, v)
	}
	seen := make(map[T]struct{})
	var reached []T

	var visit func(from T)
	visit = func(from T) {
		for _, next := range g.index[from].out {
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			reached = append(reached, next)
			visit(next)
		}
	}
	visit(v)
	return reached, nil
}

// IsDAG reports whether the graph has no cycle.
func (g *DirectedGraph[T]) IsDAG() bool {
	for _, n := range g.order {
		reached, _ := g.Accessible(n.value)
		if slices.Contains(reached, n.value) {
			return false
		}
	}
	return true
}

// All yields the nodes in insertion order. The sequence can be ranged over
// any number of times.
func (g *DirectedGraph[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, n := range g.order {
			if !yield(n.value) {
				return
			}
		}
	}
}

// Nodes returns a copy of the node values in insertion order.
func (g *DirectedGraph[T]) Nodes() []T {
	return slices.Collect(g.All())
}

// Len returns the number of nodes.
func (g *DirectedGraph[T]) Len() int {
	return len(g.order)
}

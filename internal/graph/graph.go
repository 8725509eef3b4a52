// Package graph provides the arena-backed directed graph that the linker
// and the pass pipeline operate on.
package graph

import (
	"fmt"
	"sort"
)

// NodeID identifies a node in a Graph. IDs are dense, zero-based and
// assigned in creation order. They stay valid for the lifetime of one
// Graph value but are not preserved across Projection.
type NodeID = int

// Graph is a directed graph with forward adjacency only. Every node
// carries a payload of type T. Parallel edges and self-loops are
// permitted and preserved unless explicitly deduplicated by a caller.
type Graph[T any] struct {
	succs    [][]NodeID
	payloads []T
}

// New returns an empty graph.
func New[T any]() *Graph[T] {
	return &Graph[T]{}
}

// NewWithPayloads returns a graph with one node per payload, in order,
// and no edges. The payload slice is copied.
func NewWithPayloads[T any](payloads []T) *Graph[T] {
	g := &Graph[T]{
		succs:    make([][]NodeID, len(payloads)),
		payloads: make([]T, len(payloads)),
	}
	copy(g.payloads, payloads)
	return g
}

// Len returns the number of nodes.
func (g *Graph[T]) Len() int {
	return len(g.succs)
}

// NumEdges returns the number of edges, counting parallel edges.
func (g *Graph[T]) NumEdges() int {
	n := 0
	for _, next := range g.succs {
		n += len(next)
	}
	return n
}

// NewNode appends a node carrying payload and returns its ID.
func (g *Graph[T]) NewNode(payload T) NodeID {
	id := len(g.succs)
	g.succs = append(g.succs, nil)
	g.payloads = append(g.payloads, payload)
	return id
}

// AddEdge appends to to from's successor list. There is no self-loop or
// duplicate check. Both IDs must name existing nodes.
func (g *Graph[T]) AddEdge(from, to NodeID) {
	g.check(from)
	g.check(to)
	g.succs[from] = append(g.succs[from], to)
}

// Succs returns the successor list of v. The returned slice is owned by
// the graph and must not be modified.
func (g *Graph[T]) Succs(v NodeID) []NodeID {
	g.check(v)
	return g.succs[v]
}

// Payload returns the payload of v.
func (g *Graph[T]) Payload(v NodeID) T {
	g.check(v)
	return g.payloads[v]
}

// Payloads returns a copy of all node payloads, indexed by node ID.
func (g *Graph[T]) Payloads() []T {
	out := make([]T, len(g.payloads))
	copy(out, g.payloads)
	return out
}

// Reachable returns the set of nodes reachable from the union of the
// start nodes, start nodes included, sorted ascending. The traversal is
// a depth-first search over a shared visited array, so every node is
// processed at most once and cycles terminate.
func (g *Graph[T]) Reachable(starts []NodeID) []NodeID {
	visited := make([]bool, g.Len())
	for _, s := range starts {
		g.check(s)
		g.markReachable(s, visited)
	}
	var out []NodeID
	for v, ok := range visited {
		if ok {
			out = append(out, v)
		}
	}
	return out
}

// markReachable marks every node reachable from start, start included.
// Nodes are marked when pushed, so each is expanded at most once.
func (g *Graph[T]) markReachable(start NodeID, visited []bool) {
	if visited[start] {
		return
	}
	visited[start] = true
	stack := []NodeID{start}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, u := range g.succs[v] {
			if !visited[u] {
				visited[u] = true
				stack = append(stack, u)
			}
		}
	}
}

// Inverse returns a new graph with identical node count and payloads and
// an edge u->v for every original edge v->u. Node IDs are preserved.
func (g *Graph[T]) Inverse() *Graph[T] {
	inv := NewWithPayloads(g.payloads)
	for v, next := range g.succs {
		for _, u := range next {
			inv.AddEdge(u, v)
		}
	}
	return inv
}

// Projection returns the subgraph induced by nodes, with node IDs
// compacted. The input set is deduplicated and the distinct IDs sorted
// ascending; node i of the result corresponds to mapping[i] in g and
// copies its payload. An edge i->j exists iff g has an edge
// mapping[i]->mapping[j]; edges to dropped nodes are silently omitted.
func (g *Graph[T]) Projection(nodes []NodeID) (*Graph[T], []NodeID) {
	distinct := make(map[NodeID]struct{}, len(nodes))
	for _, v := range nodes {
		g.check(v)
		distinct[v] = struct{}{}
	}
	mapping := make([]NodeID, 0, len(distinct))
	for v := range distinct {
		mapping = append(mapping, v)
	}
	sort.Ints(mapping)

	payloads := make([]T, len(mapping))
	for i, orig := range mapping {
		payloads[i] = g.payloads[orig]
	}
	sub := NewWithPayloads(payloads)

	invMapping := make(map[NodeID]NodeID, len(mapping))
	for i, orig := range mapping {
		invMapping[orig] = i
	}
	for i, orig := range mapping {
		for _, u := range g.succs[orig] {
			if j, ok := invMapping[u]; ok {
				sub.AddEdge(i, j)
			}
		}
	}
	return sub, mapping
}

func (g *Graph[T]) check(v NodeID) {
	if v < 0 || v >= len(g.succs) {
		panic(fmt.Sprintf("graph: node %d out of range [0, %d)", v, len(g.succs)))
	}
}

// Package graph holds the directed graph used for recipe discovery and the
// exhaustive enumeration of its topological orders.
package graph

// Graph is a directed graph over a fixed, ordered vertex set.
// Vertex order is the iteration order of every search, which makes the
// enumeration reproducible.
//
// A positive edge src -> dst means src may run immediately before dst. A
// negative edge records that the pair must not be assumed adjacent.
type Graph[T comparable] struct {
	vertices []T
	index    map[T]int
	adj      [][]int
	negative [][]int
}

// New creates a graph over vertices. Duplicates are ignored.
func New[T comparable](vertices ...T) *Graph[T] {
	g := &Graph[T]{index: make(map[T]int, len(vertices))}
	for _, v := range vertices {
		if _, ok := g.index[v]; ok {
			continue
		}
		g.index[v] = len(g.vertices)
		g.vertices = append(g.vertices, v)
	}
	g.adj = make([][]int, len(g.vertices))
	g.negative = make([][]int, len(g.vertices))
	return g
}

// Vertices returns the vertices in iteration order.
func (g *Graph[T]) Vertices() []T {
	out := make([]T, len(g.vertices))
	copy(out, g.vertices)
	return out
}

// AddEdge adds the positive edge src -> dst. Unknown vertices, self-loops and
// duplicates are ignored; it reports whether the edge was added.
func (g *Graph[T]) AddEdge(src, dst T) bool {
	return g.link(g.adj, src, dst)
}

// AddNegativeEdge records that src must not be assumed adjacent to dst.
func (g *Graph[T]) AddNegativeEdge(src, dst T) bool {
	return g.link(g.negative, src, dst)
}

func (g *Graph[T]) link(lists [][]int, src, dst T) bool {
	s, ok := g.index[src]
	if !ok {
		return false
	}
	d, ok := g.index[dst]
	if !ok || s == d {
		return false
	}
	for _, n := range lists[s] {
		if n == d {
			return false
		}
	}
	lists[s] = append(lists[s], d)
	return true
}

// HasEdge reports whether the positive edge src -> dst exists.
func (g *Graph[T]) HasEdge(src, dst T) bool {
	return g.has(g.adj, src, dst)
}

// HasNegativeEdge reports whether the negative edge src -> dst exists.
func (g *Graph[T]) HasNegativeEdge(src, dst T) bool {
	return g.has(g.negative, src, dst)
}

func (g *Graph[T]) has(lists [][]int, src, dst T) bool {
	s, ok := g.index[src]
	if !ok {
		return false
	}
	d, ok := g.index[dst]
	if !ok {
		return false
	}
	return contains(lists[s], d)
}

func contains(list []int, d int) bool {
	for _, n := range list {
		if n == d {
			return true
		}
	}
	return false
}

// Successors returns the positive successors of v in insertion order.
func (g *Graph[T]) Successors(v T) []T {
	i, ok := g.index[v]
	if !ok {
		return nil
	}
	out := make([]T, len(g.adj[i]))
	for k, n := range g.adj[i] {
		out[k] = g.vertices[n]
	}
	return out
}

// Linked reports whether src is causally joined to dst: a positive edge
// exists and no negative edge contradicts it.
func (g *Graph[T]) Linked(src, dst T) bool {
	return g.HasEdge(src, dst) && !g.HasNegativeEdge(src, dst)
}

// linked is Linked on vertex indices.
func (g *Graph[T]) linked(s, d int) bool {
	return contains(g.adj[s], d) && !contains(g.negative[s], d)
}

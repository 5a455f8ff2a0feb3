package graph

// frame is one level of the backtracking search.
type frame struct {
	next     int   // next candidate vertex to try at this level
	chosen   int   // vertex currently placed by this level, -1 if none
	branched bool  // whether any candidate was placed at this level
	saved    []int // in-degrees before chosen was placed
}

// AllTopologicalOrders enumerates every total order of the vertices that
// respects the positive edges.
//
// The search is a backtracking one driven by an explicit stack of frames, so
// deep graphs do not grow the goroutine stack. Each frame snapshots in-degrees
// before placing a vertex and restores them on backtrack. Orders come out in
// the same sequence as the classic recursive formulation that tries vertices
// in iteration order. The count is exponential in the worst case.
func (g *Graph[T]) AllTopologicalOrders() [][]T {
	return g.orders(false)
}

// orders runs the search. With chainsOnly, a candidate not linked to the
// vertex placed before it is never placed, so broken prefixes are cut off
// instead of being expanded.
func (g *Graph[T]) orders(chainsOnly bool) [][]T {
	n := len(g.vertices)
	if n == 0 {
		return nil
	}

	inDegree := make([]int, n)
	for _, succ := range g.adj {
		for _, d := range succ {
			inDegree[d]++
		}
	}

	visited := make([]bool, n)
	order := make([]int, 0, n)
	stack := []frame{{chosen: -1}}
	var result [][]T

	for len(stack) > 0 {
		top := len(stack) - 1
		f := &stack[top]

		// Undo the previous choice of this level before trying the next one.
		if f.chosen >= 0 {
			visited[f.chosen] = false
			order = order[:len(order)-1]
			copy(inDegree, f.saved)
			f.chosen = -1
		}

		placed := false
		for f.next < n {
			v := f.next
			f.next++
			if visited[v] || inDegree[v] != 0 {
				continue
			}
			if chainsOnly && len(order) > 0 && !g.linked(order[len(order)-1], v) {
				continue
			}
			if f.saved == nil {
				f.saved = make([]int, n)
			}
			copy(f.saved, inDegree)
			visited[v] = true
			order = append(order, v)
			for _, d := range g.adj[v] {
				inDegree[d]--
			}
			f.chosen = v
			f.branched = true
			placed = true
			break
		}

		if placed {
			stack = append(stack, frame{chosen: -1})
			continue
		}

		// No candidate left at this level: either a complete order or a dead
		// end left by a cycle.
		if !f.branched && len(order) == n {
			out := make([]T, n)
			for i, v := range order {
				out[i] = g.vertices[v]
			}
			result = append(result, out)
		}
		stack = stack[:top]
	}

	return result
}

// IsChain reports whether every consecutive pair of order is linked by a
// positive edge not contradicted by a negative one.
func (g *Graph[T]) IsChain(order []T) bool {
	for i := 0; i+1 < len(order); i++ {
		if !g.Linked(order[i], order[i+1]) {
			return false
		}
	}
	return true
}

// Chains returns the topological orders that are also causal chains: orders
// which are valid only because nothing constrains them are dropped. They come
// out in the same sequence as in AllTopologicalOrders.
func (g *Graph[T]) Chains() [][]T {
	return g.orders(true)
}

// Dedupe removes orders whose key sequence was already seen, keeping the
// first occurrence and the original order.
func Dedupe[T any](orders [][]T, key func(T) string) [][]T {
	seen := make(map[string]bool, len(orders))
	out := make([][]T, 0, len(orders))
	for _, order := range orders {
		k := ""
		for i, v := range order {
			if i > 0 {
				k += "\x00"
			}
			k += key(v)
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, order)
	}
	return out
}

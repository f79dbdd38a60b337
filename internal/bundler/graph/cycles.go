package graph

import (
	"sort"
	"strings"
)

// StronglyConnectedComponents returns every non-trivial strongly
// connected component, computed via Tarjan's algorithm. A single-node
// component is included only if that node has a self-loop; anything
// smaller is not a cycle.
func (g *DependencyGraph) StronglyConnectedComponents() [][]string {
	n := len(g.names)
	indexOf := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	visited := make([]bool, n)
	for i := range indexOf {
		indexOf[i] = -1
	}

	var stack []int
	counter := 0
	var sccs [][]int

	var strongconnect func(v int)
	strongconnect = func(v int) {
		indexOf[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
		visited[v] = true

		for _, w := range g.adj[v] {
			if indexOf[w] == -1 {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indexOf[w] < lowlink[v] {
					lowlink[v] = indexOf[w]
				}
			}
		}

		if lowlink[v] == indexOf[v] {
			var component []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				component = append(component, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, component)
		}
	}

	// Deterministic iteration order over roots.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return g.names[order[i]] < g.names[order[j]] })

	for _, v := range order {
		if !visited[v] {
			strongconnect(v)
		}
	}

	out := make([][]string, 0, len(sccs))
	for _, component := range sccs {
		if len(component) == 1 {
			v := component[0]
			if !hasSelfLoop(g, v) {
				continue
			}
		}
		names := make([]string, len(component))
		for i, id := range component {
			names[i] = g.names[id]
		}
		out = append(out, orderMembers(names))
	}
	sort.Slice(out, func(i, j int) bool { return strings.Join(out[i], ",") < strings.Join(out[j], ",") })
	return out
}

func hasSelfLoop(g *DependencyGraph, v int) bool {
	for _, to := range g.adj[v] {
		if to == v {
			return true
		}
	}
	return false
}

// orderMembers sorts an SCC's members per spec.md §4.3: (a) when one
// name is a dotted prefix of another, the deeper (more specific) name
// sorts first; (b) otherwise by dotted-segment depth descending; (c)
// otherwise lexicographically.
func orderMembers(names []string) []string {
	out := append([]string(nil), names...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if strings.HasPrefix(b, a+".") {
			return false // b is deeper, a is its ancestor: b first
		}
		if strings.HasPrefix(a, b+".") {
			return true // a is deeper: a first
		}
		da, db := nameDepth(a), nameDepth(b)
		if da != db {
			return da > db
		}
		return a < b
	})
	return out
}

func nameDepth(name string) int {
	return strings.Count(name, ".") + 1
}

// FindCyclePaths enumerates a concrete member chain for each
// back-edge found by a three-colour DFS (white/grey/black), used to
// render a readable cycle in diagnostics. Each path starts and ends on
// the same module name.
func (g *DependencyGraph) FindCyclePaths() [][]string {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	n := len(g.names)
	color := make([]int, n)
	var stack []int
	var paths [][]string

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return g.names[order[i]] < g.names[order[j]] })

	var visit func(v int)
	visit = func(v int) {
		color[v] = grey
		stack = append(stack, v)
		deps := append([]int(nil), g.adj[v]...)
		sort.Slice(deps, func(i, j int) bool { return g.names[deps[i]] < g.names[deps[j]] })
		for _, to := range deps {
			switch color[to] {
			case white:
				visit(to)
			case grey:
				// Found a back edge: stack[idx:] .. v .. to is the cycle.
				idx := 0
				for i, s := range stack {
					if s == to {
						idx = i
						break
					}
				}
				chain := append([]int(nil), stack[idx:]...)
				chain = append(chain, to)
				names := make([]string, len(chain))
				for i, id := range chain {
					names[i] = g.names[id]
				}
				paths = append(paths, names)
			}
		}
		stack = stack[:len(stack)-1]
		color[v] = black
	}

	for _, v := range order {
		if color[v] == white {
			visit(v)
		}
	}
	return paths
}

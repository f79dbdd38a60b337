package graph

import (
	"sort"

	"sentra-bundle/internal/bundler/bundleerr"
)

func errGraphCycle() error {
	return bundleerr.New(bundleerr.Graph, "dependency graph contains a cycle the cycle rewriter did not resolve")
}

// EmissionOrder computes a deterministic dependency-first module order
// even in the presence of cycles: every non-trivial cycle (as
// classified by ClassifyCycles) is contracted to a single node, the
// resulting condensation is topologically sorted, and each contracted
// node expands back to its already-ordered member list (spec.md §4.3's
// SCC ordering rule, applied by ClassifyCycles/StronglyConnectedComponents).
func (g *DependencyGraph) EmissionOrder(cycles []Cycle) ([]string, error) {
	groupOf := make(map[string]int) // module name -> group id
	var groups [][]string

	for _, c := range cycles {
		gid := len(groups)
		groups = append(groups, c.Members)
		for _, m := range c.Members {
			groupOf[m] = gid
		}
	}
	for _, name := range g.names {
		if _, ok := groupOf[name]; !ok {
			gid := len(groups)
			groups = append(groups, []string{name})
			groupOf[name] = gid
		}
	}

	n := len(groups)
	adj := make([][]int, n)
	seenEdge := make(map[[2]int]bool)
	for fromID, edges := range g.adj {
		fromGroup := groupOf[g.names[fromID]]
		for _, toID := range edges {
			toGroup := groupOf[g.names[toID]]
			if fromGroup == toGroup {
				continue
			}
			key := [2]int{fromGroup, toGroup}
			if seenEdge[key] {
				continue
			}
			seenEdge[key] = true
			adj[fromGroup] = append(adj[fromGroup], toGroup)
		}
	}

	indegree := make([]int, n)
	for _, edges := range adj {
		for _, to := range edges {
			indegree[to]++
		}
	}

	repName := func(gid int) string {
		m := groups[gid][0]
		for _, x := range groups[gid] {
			if x < m {
				m = x
			}
		}
		return m
	}

	ready := make([]int, 0, n)
	for gid := 0; gid < n; gid++ {
		if indegree[gid] == 0 {
			ready = append(ready, gid)
		}
	}

	var groupOrder []int
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return repName(ready[i]) < repName(ready[j]) })
		gid := ready[0]
		ready = ready[1:]
		groupOrder = append(groupOrder, gid)
		for _, to := range adj[gid] {
			indegree[to]--
			if indegree[to] == 0 {
				ready = append(ready, to)
			}
		}
	}

	if len(groupOrder) != n {
		return nil, errGraphCycle()
	}

	out := make([]string, 0, len(g.names))
	for i := len(groupOrder) - 1; i >= 0; i-- {
		out = append(out, groups[groupOrder[i]]...)
	}
	return out, nil
}

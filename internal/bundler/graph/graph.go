// Package graph builds the module dependency graph, computes a
// deterministic topological emission order, and detects import cycles
// via Tarjan's strongly-connected-components algorithm.
package graph

import (
	"sort"

	"sentra-bundle/internal/bundler/bundleerr"
)

// DependencyGraph is a directed graph of module names. Nodes are added
// explicitly; edges connect a dependent module to the module it
// imports.
type DependencyGraph struct {
	index   map[string]int
	names   []string
	adj     [][]int // adj[i] = ids this node depends on
	rev     [][]int // rev[i] = ids that depend on this node
	entries map[int]bool
}

// New returns an empty graph.
func New() *DependencyGraph {
	return &DependencyGraph{
		index:   make(map[string]int),
		entries: make(map[int]bool),
	}
}

// AddModule registers name if not already present and returns its id.
// Re-adding an existing name is a no-op that returns the existing id.
// Nodes are keyed by name only: the same file added under a second
// name gets a second node.
func (g *DependencyGraph) AddModule(name string) int {
	if id, ok := g.index[name]; ok {
		return id
	}
	id := len(g.names)
	g.index[name] = id
	g.names = append(g.names, name)
	g.adj = append(g.adj, nil)
	g.rev = append(g.rev, nil)
	return id
}

// MarkEntry flags name as a program entry point. name must already
// have been added.
func (g *DependencyGraph) MarkEntry(name string) {
	if id, ok := g.index[name]; ok {
		g.entries[id] = true
	}
}

// AddDependency records that from imports to. Both names must already
// be registered via AddModule; adding the same edge twice is a no-op.
func (g *DependencyGraph) AddDependency(from, to string) error {
	fromID, ok := g.index[from]
	if !ok {
		return bundleerr.New(bundleerr.Graph, "module not found: "+from)
	}
	toID, ok := g.index[to]
	if !ok {
		return bundleerr.New(bundleerr.Graph, "module not found: "+to)
	}
	for _, existing := range g.adj[fromID] {
		if existing == toID {
			return nil
		}
	}
	g.adj[fromID] = append(g.adj[fromID], toID)
	g.rev[toID] = append(g.rev[toID], fromID)
	return nil
}

// Modules returns every registered module name, sorted.
func (g *DependencyGraph) Modules() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	sort.Strings(out)
	return out
}

// EntryModules returns every module marked via MarkEntry, sorted.
func (g *DependencyGraph) EntryModules() []string {
	out := make([]string, 0, len(g.entries))
	for id := range g.entries {
		out = append(out, g.names[id])
	}
	sort.Strings(out)
	return out
}

// Dependencies returns the modules that name directly imports, sorted.
func (g *DependencyGraph) Dependencies(name string) []string {
	id, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.namesOf(g.adj[id])
}

// Dependents returns the modules that directly import name, sorted.
func (g *DependencyGraph) Dependents(name string) []string {
	id, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.namesOf(g.rev[id])
}

func (g *DependencyGraph) namesOf(ids []int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.names[id]
	}
	sort.Strings(out)
	return out
}

// Has reports whether name has been registered.
func (g *DependencyGraph) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// TopologicalSort returns modules in dependency-first order (a module
// appears after everything it depends on), breaking ties
// lexicographically for determinism. It fails with a Graph-kind error
// if the graph contains a cycle; callers that tolerate cycles should
// classify and rewrite them first.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	n := len(g.names)
	indegree := make([]int, n)
	for _, edges := range g.adj {
		for _, to := range edges {
			indegree[to]++
		}
	}

	// Kahn's algorithm, with a sorted-by-name ready set so ties resolve
	// deterministically regardless of insertion order.
	ready := make([]int, 0, n)
	for id := 0; id < n; id++ {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, n)
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return g.names[ready[i]] < g.names[ready[j]] })
		id := ready[0]
		ready = ready[1:]
		order = append(order, g.names[id])
		for _, to := range g.adj[id] {
			indegree[to]--
			if indegree[to] == 0 {
				ready = append(ready, to)
			}
		}
	}

	if len(order) != n {
		return nil, bundleerr.New(bundleerr.Graph, "dependency graph contains a cycle")
	}

	// order is dependency-last (importers after imports are satisfied);
	// reverse so dependencies come first in emission order.
	reversed := make([]string, n)
	for i, name := range order {
		reversed[n-1-i] = name
	}
	return reversed, nil
}

// FilterReachableFrom returns a new graph containing only modules
// reachable from entry (inclusive), preserving edges between them.
func (g *DependencyGraph) FilterReachableFrom(entry string) *DependencyGraph {
	startID, ok := g.index[entry]
	if !ok {
		return New()
	}

	visited := make(map[int]bool)
	queue := []int{startID}
	visited[startID] = true
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, to := range g.adj[id] {
			if !visited[to] {
				visited[to] = true
				queue = append(queue, to)
			}
		}
	}

	out := New()
	for id := range visited {
		out.AddModule(g.names[id])
	}
	for id := range visited {
		for _, to := range g.adj[id] {
			if visited[to] {
				_ = out.AddDependency(g.names[id], g.names[to])
			}
		}
	}
	if g.entries[startID] {
		out.MarkEntry(g.names[startID])
	}
	return out
}

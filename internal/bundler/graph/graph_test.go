package graph

import (
	"reflect"
	"testing"
)

func TestTopologicalSortDependencyFirst(t *testing.T) {
	g := New()
	g.AddModule("app.main")
	g.AddModule("app.util")
	g.AddModule("app.models")
	_ = g.AddDependency("app.main", "app.util")
	_ = g.AddDependency("app.main", "app.models")
	_ = g.AddDependency("app.util", "app.models")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort: %v", err)
	}
	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	if pos["app.models"] > pos["app.util"] || pos["app.util"] > pos["app.main"] {
		t.Errorf("order = %v, want models before util before main", order)
	}
}

func TestTopologicalSortDetectsCycle(t *testing.T) {
	g := New()
	g.AddModule("a")
	g.AddModule("b")
	_ = g.AddDependency("a", "b")
	_ = g.AddDependency("b", "a")

	if _, err := g.TopologicalSort(); err == nil {
		t.Fatal("expected an error for a cyclic graph")
	}
}

func TestAddDependencyUnknownModule(t *testing.T) {
	g := New()
	g.AddModule("a")
	if err := g.AddDependency("a", "missing"); err == nil {
		t.Fatal("expected an error referencing an unregistered module")
	}
}

func TestFilterReachableFrom(t *testing.T) {
	g := New()
	for _, n := range []string{"entry", "used", "unused"} {
		g.AddModule(n)
	}
	_ = g.AddDependency("entry", "used")
	g.MarkEntry("entry")

	sub := g.FilterReachableFrom("entry")
	if !sub.Has("entry") || !sub.Has("used") || sub.Has("unused") {
		t.Errorf("reachable modules = %v, want [entry used]", sub.Modules())
	}
	if got := sub.EntryModules(); !reflect.DeepEqual(got, []string{"entry"}) {
		t.Errorf("EntryModules() = %v, want [entry]", got)
	}
}

func TestStronglyConnectedComponentsFindsCycle(t *testing.T) {
	g := New()
	for _, n := range []string{"a", "b", "c", "d"} {
		g.AddModule(n)
	}
	_ = g.AddDependency("a", "b")
	_ = g.AddDependency("b", "a")
	_ = g.AddDependency("c", "d")

	sccs := g.StronglyConnectedComponents()
	if len(sccs) != 1 {
		t.Fatalf("len(sccs) = %d, want 1 (only a<->b forms a cycle)", len(sccs))
	}
	got := append([]string{}, sccs[0]...)
	want := []string{"a", "b"}
	sortedEqual := len(got) == len(want)
	if sortedEqual {
		seen := map[string]bool{}
		for _, g := range got {
			seen[g] = true
		}
		for _, w := range want {
			if !seen[w] {
				sortedEqual = false
			}
		}
	}
	if !sortedEqual {
		t.Errorf("scc members = %v, want a and b", got)
	}
}

func TestClassifyCyclesModuleConstantsIsUnresolvable(t *testing.T) {
	g := New()
	g.AddModule("a")
	g.AddModule("b")
	_ = g.AddDependency("a", "b")
	_ = g.AddDependency("b", "a")

	memberUses := map[string][]string{
		"a": {"constants", "SHARED"},
		"b": {"constants", "SHARED"},
	}
	cycles := g.ClassifyCycles(memberUses)
	if len(cycles) != 1 {
		t.Fatalf("len(cycles) = %d, want 1", len(cycles))
	}
	if cycles[0].Kind != ModuleConstants || cycles[0].Strategy != Unresolvable {
		t.Errorf("got kind=%s strategy=%s, want ModuleConstants/Unresolvable", cycles[0].Kind, cycles[0].Strategy)
	}
	if cycles[0].Reason == "" {
		t.Error("Unresolvable cycle should carry a non-empty reason")
	}
}

func TestClassifyCyclesFunctionLevelDefaultsToLazyImport(t *testing.T) {
	g := New()
	g.AddModule("a")
	g.AddModule("b")
	_ = g.AddDependency("a", "b")
	_ = g.AddDependency("b", "a")

	cycles := g.ClassifyCycles(map[string][]string{})
	if len(cycles) != 1 || cycles[0].Kind != FunctionLevel || cycles[0].Strategy != LazyImport {
		t.Fatalf("got %+v, want FunctionLevel/LazyImport", cycles)
	}
}

func TestEmissionOrderHandlesResolvableCycle(t *testing.T) {
	g := New()
	for _, n := range []string{"entry", "a", "b"} {
		g.AddModule(n)
	}
	g.MarkEntry("entry")
	_ = g.AddDependency("entry", "a")
	_ = g.AddDependency("a", "b")
	_ = g.AddDependency("b", "a")

	cycles := g.ClassifyCycles(map[string][]string{})
	order, err := g.EmissionOrder(cycles)
	if err != nil {
		t.Fatalf("EmissionOrder: %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("len(order) = %d, want 3", len(order))
	}
	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	if pos["entry"] <= pos["a"] || pos["entry"] <= pos["b"] {
		t.Errorf("order = %v, entry must come after both cycle members", order)
	}
}

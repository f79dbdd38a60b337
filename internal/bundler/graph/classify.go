package graph

import "strings"

// CycleKind classifies a dependency cycle by what it involves, which
// in turn determines whether the cycle rewriter can resolve it.
type CycleKind string

const (
	FunctionLevel   CycleKind = "function_level"
	ClassLevel      CycleKind = "class_level"
	ImportTime      CycleKind = "import_time"
	ModuleConstants CycleKind = "module_constants"
)

// ResolutionStrategy is the action the cycle rewriter takes for a
// classified cycle.
type ResolutionStrategy string

const (
	LazyImport           ResolutionStrategy = "lazy_import"
	FunctionScopedImport ResolutionStrategy = "function_scoped_import"
	ModuleSplit          ResolutionStrategy = "module_split"
	Unresolvable         ResolutionStrategy = "unresolvable"
)

// Cycle is a classified strongly-connected component: its members, the
// heuristic classification, the strategy chosen to resolve it, and (for
// Unresolvable cycles) a human-readable reason.
type Cycle struct {
	Members  []string
	Kind     CycleKind
	Strategy ResolutionStrategy
	Reason   string
}

// ClassifyCycles runs StronglyConnectedComponents and classifies each
// one. memberUses maps a module name to the names its imports mention
// (imported module names and the local names they bind), used to
// fingerprint the cycle's
// flavor: class-heavy cycles mention "class", import-time cycles
// mention "import" or "loader", and cycles built from module-level
// constants mention "constants".
func (g *DependencyGraph) ClassifyCycles(memberUses map[string][]string) []Cycle {
	sccs := g.StronglyConnectedComponents()
	out := make([]Cycle, 0, len(sccs))
	for _, members := range sccs {
		kind := classifyKind(members, memberUses)
		strategy, reason := strategyFor(kind)
		out = append(out, Cycle{Members: members, Kind: kind, Strategy: strategy, Reason: reason})
	}
	return out
}

func classifyKind(members []string, memberUses map[string][]string) CycleKind {
	var tokens []string
	for _, m := range members {
		tokens = append(tokens, memberUses[m]...)
		tokens = append(tokens, m)
	}
	joined := strings.ToLower(strings.Join(tokens, " "))

	switch {
	case strings.Contains(joined, "constants"):
		return ModuleConstants
	case strings.Contains(joined, "import") || strings.Contains(joined, "loader"):
		return ImportTime
	case strings.Contains(joined, "class"):
		return ClassLevel
	default:
		return FunctionLevel
	}
}

func strategyFor(kind CycleKind) (ResolutionStrategy, string) {
	switch kind {
	case FunctionLevel:
		return LazyImport, ""
	case ClassLevel:
		return FunctionScopedImport, ""
	case ImportTime:
		return ModuleSplit, ""
	case ModuleConstants:
		return Unresolvable, "module-level constants are read across the cycle at import time"
	default:
		return Unresolvable, "unrecognized cycle shape"
	}
}

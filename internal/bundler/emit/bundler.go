package emit

import (
	"sort"
	"strings"

	"sentra-bundle/internal/bundler/extract"
	"sentra-bundle/internal/bundler/resolve"
	"sentra-bundle/internal/bundler/symbols"
	"sentra-bundle/internal/parser"
)

// futureModulePrefix is the convention this bundler uses to recognise
// a future-version pragma: a bare import whose leading dotted segment
// is "future" selects a language-version behaviour and must surface
// exactly once near the top of the bundle, ahead of every other
// statement, regardless of which module declared it.
const futureModulePrefix = "future"

// ModuleInput is everything the static bundler needs about one module
// to merge it into the output.
type ModuleInput struct {
	Name      string
	Body      []parser.Stmt
	Imports   []extract.DiscoveredImport
	IsPackage bool
}

// Inputs bundles every argument the static bundler needs.
type Inputs struct {
	// Order lists every bundled module in dependency-first order,
	// ending with Entry.
	Order    []string
	Entry    string
	Modules  map[string]ModuleInput
	Renames  symbols.RenamePlan
	Resolver *resolve.Resolver
}

// Merge produces the single output statement list described by
// spec.md §4.6: future pragmas, preserved third-party/stdlib imports,
// transformed non-entry bodies in dependency order, then the entry
// body with alias-assignment compensation.
func Merge(in Inputs) []parser.Stmt {
	bundled := make(map[string]bool, len(in.Order))
	for _, name := range in.Order {
		bundled[name] = true
	}

	var out []parser.Stmt
	out = append(out, futurePragmas(in)...)

	preserved := collectPreservedImports(in, bundled)

	var transformedBodies []parser.Stmt
	for _, name := range in.Order {
		if name == in.Entry {
			continue
		}
		mod := in.Modules[name]
		tr := newModuleTransform(name, in, bundled, false)
		transformedBodies = append(transformedBodies, tr.rewriteStmts(cloneStmtSlice(mod.Body))...)
	}

	entryMod := in.Modules[in.Entry]
	entryTr := newModuleTransform(in.Entry, in, bundled, true)
	entryBody := entryTr.rewriteStmts(cloneStmtSlice(entryMod.Body))
	entryBody = append(entryTr.aliasAssignments(), entryBody...)

	preserved = pruneUnused(preserved, transformedBodies, entryBody)

	out = append(out, importStmtsOf(preserved)...)
	out = append(out, transformedBodies...)
	out = append(out, entryBody...)
	return out
}

// cloneStmtSlice returns a shallow copy of the slice header so
// in-place rewriting doesn't alias the caller's backing array for
// top-level statement removal/insertion.
func cloneStmtSlice(body []parser.Stmt) []parser.Stmt {
	out := make([]parser.Stmt, len(body))
	copy(out, body)
	return out
}

func futurePragmas(in Inputs) []parser.Stmt {
	seen := make(map[string]bool)
	var out []*parser.ImportStmt
	for _, name := range in.Order {
		for _, di := range in.Modules[name].Imports {
			if di.IsFrom || len(di.Stmt.ModuleParts) == 0 {
				continue
			}
			if di.Stmt.ModuleParts[0] != futureModulePrefix {
				continue
			}
			key := strings.Join(di.Stmt.ModuleParts, ".")
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, di.Stmt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Join(out[i].ModuleParts, ".") < strings.Join(out[j].ModuleParts, ".")
	})
	stmts := make([]parser.Stmt, len(out))
	for i, s := range out {
		stmts[i] = s
	}
	return stmts
}

// preservedImport is one surviving non-bundled import, with enough
// provenance to sort deterministically and to check for later use.
type preservedImport struct {
	stmt       *parser.ImportStmt
	module     string
	emitOrder  int
	sourceLine int
	localNames []string
}

func collectPreservedImports(in Inputs, bundled map[string]bool) []preservedImport {
	orderIndex := make(map[string]int, len(in.Order))
	for i, name := range in.Order {
		orderIndex[name] = i
	}

	type key struct{ module, name, alias string }
	seen := make(map[key]bool)
	var out []preservedImport

	for _, name := range in.Order {
		mod := in.Modules[name]
		for _, di := range mod.Imports {
			if bundled[di.ModuleName] {
				continue
			}
			if !di.IsFrom && len(di.Stmt.ModuleParts) > 0 && di.Stmt.ModuleParts[0] == futureModulePrefix {
				continue
			}
			if !di.IsFrom {
				k := key{di.ModuleName, "", di.Alias}
				if seen[k] {
					continue
				}
				seen[k] = true
				out = append(out, preservedImport{
					stmt: di.Stmt, module: name, emitOrder: orderIndex[name],
					sourceLine: di.Line, localNames: di.LocalNames(),
				})
				continue
			}
			fresh := false
			for _, sym := range di.Symbols {
				k := key{di.ModuleName, sym.Name, sym.Alias}
				if seen[k] {
					continue
				}
				seen[k] = true
				fresh = true
			}
			if !fresh {
				continue
			}
			out = append(out, preservedImport{
				stmt: di.Stmt, module: name, emitOrder: orderIndex[name],
				sourceLine: di.Line, localNames: di.LocalNames(),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].emitOrder != out[j].emitOrder {
			return out[i].emitOrder < out[j].emitOrder
		}
		return out[i].sourceLine < out[j].sourceLine
	})
	return out
}

func importStmtsOf(preserved []preservedImport) []parser.Stmt {
	out := make([]parser.Stmt, len(preserved))
	for i, p := range preserved {
		out[i] = p.stmt
	}
	return out
}

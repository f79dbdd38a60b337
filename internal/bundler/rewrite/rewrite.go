// Package rewrite implements the cycle rewriter: given a resolvable
// cycle, it finds imports that can be deferred into function scope and
// applies the FunctionStart placement strategy.
package rewrite

import (
	"strings"

	"sentra-bundle/internal/bundler/extract"
	"sentra-bundle/internal/parser"
)

// MovableImport is one import statement the rewriter has determined
// can move from module scope into the named target functions.
type MovableImport struct {
	Module       string
	TargetModule string
	Stmt         *parser.ImportStmt
	Functions    []string // "name" for a top-level function, "Class.Method" for a method
}

// Plan inspects every import of every module in cycleMembers and
// returns the subset that satisfies the movability predicate. bodies
// and imports are both keyed by module name.
func Plan(bodies map[string][]parser.Stmt, imports map[string][]extract.DiscoveredImport, cycleMembers map[string]bool, sideEffectModules map[string]bool) []MovableImport {
	var out []MovableImport
	for module := range cycleMembers {
		body := bodies[module]
		for _, di := range imports[module] {
			if !cycleMembers[leftmostModule(di.ModuleName, cycleMembers)] {
				continue
			}
			if di.ModuleName == module {
				continue
			}
			names := di.LocalNames()
			if len(names) == 0 {
				continue
			}

			allFunctions := map[string]bool{}
			var order []string
			movableAll := true
			for _, name := range names {
				ok, fns := Movable(body, name, leftmostSegment(di.ModuleName), sideEffectModules)
				if !ok {
					movableAll = false
					break
				}
				for _, f := range fns {
					if !allFunctions[f] {
						allFunctions[f] = true
						order = append(order, f)
					}
				}
			}
			if !movableAll || len(order) == 0 {
				continue
			}
			out = append(out, MovableImport{
				Module:       module,
				TargetModule: di.ModuleName,
				Stmt:         di.Stmt,
				Functions:    order,
			})
		}
	}
	return out
}

// leftmostModule finds which of cycleMembers is a prefix-ancestor of
// (or equal to) name; used because an import may name a submodule of a
// package that is itself the cycle member.
func leftmostModule(name string, cycleMembers map[string]bool) string {
	if cycleMembers[name] {
		return name
	}
	parts := strings.Split(name, ".")
	for i := len(parts) - 1; i > 0; i-- {
		candidate := strings.Join(parts[:i], ".")
		if cycleMembers[candidate] {
			return candidate
		}
	}
	return name
}

func leftmostSegment(name string) string {
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		return name[:idx]
	}
	return name
}

// Apply mutates bodies in place: every planned import is removed from
// its module's top-level statement list and re-inserted at the head of
// each of its target functions' bodies (FunctionStart strategy),
// deduplicated per function. BeforeFirstUse is not implemented (spec
// lists it as optional).
func Apply(bodies map[string][]parser.Stmt, moves []MovableImport) {
	byModule := make(map[string][]MovableImport)
	for _, m := range moves {
		byModule[m.Module] = append(byModule[m.Module], m)
	}

	for module, mvs := range byModule {
		body := bodies[module]
		removeSet := make(map[*parser.ImportStmt]bool)
		for _, m := range mvs {
			removeSet[m.Stmt] = true
		}
		bodies[module] = removeImports(body, removeSet)

		for _, m := range mvs {
			for _, fn := range m.Functions {
				insertAtFunctionStart(bodies[module], fn, m.Stmt)
			}
		}
	}
}

func removeImports(body []parser.Stmt, remove map[*parser.ImportStmt]bool) []parser.Stmt {
	out := make([]parser.Stmt, 0, len(body))
	for _, s := range body {
		if imp, ok := s.(*parser.ImportStmt); ok && remove[imp] {
			continue
		}
		out = append(out, s)
	}
	return out
}

// insertAtFunctionStart finds the top-level function or method named
// fn ("name" or "Class.Method") and prepends stmt to its body,
// skipping if an identical import is already present.
func insertAtFunctionStart(body []parser.Stmt, fn string, stmt *parser.ImportStmt) {
	class, method, isMethod := splitFunctionName(fn)
	for _, s := range body {
		if isMethod {
			cls, ok := s.(*parser.ClassStmt)
			if !ok || cls.Name != class {
				continue
			}
			for _, m := range cls.Methods {
				if m.Name == method {
					m.Body = prependUnique(m.Body, stmt)
					return
				}
			}
		} else {
			f, ok := s.(*parser.FunctionStmt)
			if ok && f.Name == fn {
				f.Body = prependUnique(f.Body, stmt)
				return
			}
		}
	}
}

func splitFunctionName(fn string) (class, method string, isMethod bool) {
	idx := strings.Index(fn, ".")
	if idx < 0 {
		return "", fn, false
	}
	return fn[:idx], fn[idx+1:], true
}

func prependUnique(body []parser.Stmt, stmt *parser.ImportStmt) []parser.Stmt {
	for _, s := range body {
		if existing, ok := s.(*parser.ImportStmt); ok && existing == stmt {
			return body
		}
	}
	out := make([]parser.Stmt, 0, len(body)+1)
	out = append(out, stmt)
	out = append(out, body...)
	return out
}

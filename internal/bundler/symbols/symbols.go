// Package symbols implements the bundler's symbol analyzer: per-module
// top-level bindings, cross-module conflict detection, and the rename
// plan the static bundler applies to resolve those conflicts.
package symbols

import (
	"sort"
	"strconv"
	"strings"

	"sentra-bundle/internal/parser"
)

// BindingKind classifies how a top-level name came to exist.
type BindingKind string

const (
	Class      BindingKind = "class"
	Function   BindingKind = "function"
	Assignment BindingKind = "assignment"
	Import     BindingKind = "import"
)

// Binding is one top-level name defined by a module.
type Binding struct {
	Module  string
	Name    string
	Kind    BindingKind
	Private bool // leading underscore, not a dunder
}

// AnalyzeModule returns every top-level binding in stmts. Only
// module-level class/function declarations, name-target assignments,
// and imports are recorded — nested declarations are not bindings of
// the module's own namespace.
func AnalyzeModule(moduleName string, stmts []parser.Stmt) []Binding {
	var out []Binding
	for _, s := range stmts {
		switch st := s.(type) {
		case *parser.ClassStmt:
			out = append(out, bind(moduleName, st.Name, Class))
		case *parser.FunctionStmt:
			out = append(out, bind(moduleName, st.Name, Function))
		case *parser.LetStmt:
			out = append(out, bind(moduleName, st.Name, Assignment))
		case *parser.AssignmentStmt:
			out = append(out, bind(moduleName, st.Name, Assignment))
		case *parser.ImportStmt:
			if st.IsFrom() {
				for _, n := range st.Names {
					local := n.Name
					if n.Alias != "" {
						local = n.Alias
					}
					out = append(out, bind(moduleName, local, Import))
				}
			} else {
				local := st.ModuleParts[len(st.ModuleParts)-1]
				if st.Alias != "" {
					local = st.Alias
				}
				out = append(out, bind(moduleName, local, Import))
			}
		case *parser.ExportStmt:
			if st.Stmt != nil {
				out = append(out, AnalyzeModule(moduleName, []parser.Stmt{st.Stmt})...)
			}
		}
	}
	return out
}

func bind(module, name string, kind BindingKind) Binding {
	return Binding{
		Module:  module,
		Name:    name,
		Kind:    kind,
		Private: isPrivate(name),
	}
}

func isPrivate(name string) bool {
	if !strings.HasPrefix(name, "_") {
		return false
	}
	return !(strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"))
}

// ConflictRegistry maps a non-private binding name to every module
// that defines it.
type ConflictRegistry map[string][]string

// BuildConflictRegistry aggregates bindings by name across modules.
func BuildConflictRegistry(byModule map[string][]Binding) ConflictRegistry {
	reg := make(ConflictRegistry)
	for module, bindings := range byModule {
		for _, b := range bindings {
			if b.Private {
				continue
			}
			reg[b.Name] = appendUnique(reg[b.Name], module)
		}
	}
	for name := range reg {
		if len(reg[name]) < 2 {
			delete(reg, name)
		}
	}
	return reg
}

func appendUnique(modules []string, m string) []string {
	for _, existing := range modules {
		if existing == m {
			return modules
		}
	}
	return append(modules, m)
}

// RenamePlan maps a (module, name) conflict to the new top-level name
// the static bundler must substitute.
type RenamePlan map[[2]string]string

// BuildRenamePlan computes renames for every conflicting name in reg,
// suffixing ALL conflicting modules — never leaving one module with
// its original name — per the spec's chosen resolution of the
// "first module keeps its name" ambiguity.
func BuildRenamePlan(reg ConflictRegistry) RenamePlan {
	plan := make(RenamePlan)
	usedNames := make(map[string]bool)

	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		modules := append([]string(nil), reg[name]...)
		sort.Strings(modules)
		for _, module := range modules {
			renamed := sanitize(module) + "_" + name
			renamed = dedupe(renamed, usedNames)
			usedNames[renamed] = true
			plan[[2]string{module, name}] = renamed
		}
	}
	return plan
}

// sanitize turns a dotted module path into a name-safe prefix.
func sanitize(module string) string {
	s := strings.ReplaceAll(module, ".", "_")
	return strings.TrimLeft(s, "_")
}

func dedupe(name string, used map[string]bool) string {
	if !used[name] {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if !used[candidate] {
			return candidate
		}
	}
}

// Package extract implements the bundler's import extractor: walking a
// parsed module's AST with an explicit scope stack, producing one
// DiscoveredImport per import statement, tagged with the scope it
// occurs in.
package extract

import (
	"strings"

	"sentra-bundle/internal/bundler/bundleerr"
	"sentra-bundle/internal/parser"
)

// ScopeKind classifies where an import statement occurs.
type ScopeKind string

const (
	ScopeModule      ScopeKind = "module"
	ScopeFunction    ScopeKind = "function"
	ScopeMethod      ScopeKind = "method"
	ScopeConditional ScopeKind = "conditional"
	ScopeNested      ScopeKind = "nested"
)

// Scope describes the placement of one import statement within its
// module, per spec.md §4.2.
type Scope struct {
	Kind ScopeKind

	Function string // ScopeFunction: enclosing function name
	Class    string // ScopeMethod: enclosing class name
	Method   string // ScopeMethod: enclosing method name
	Depth    int    // ScopeConditional: nesting depth of conditional blocks
	Path     []string // ScopeNested: descriptive chain of enclosing frames, outermost first
}

// ImportedSymbol is one name pulled from a from-import.
type ImportedSymbol struct {
	Name  string
	Alias string
}

// DiscoveredImport is one import statement found in a module, with its
// resolved absolute dotted module name and every symbol it binds.
type DiscoveredImport struct {
	ModuleName string // absolute dotted name, relative imports already resolved
	IsFrom     bool
	Alias      string           // bare-form only
	Symbols    []ImportedSymbol // from-form only; one multi-name statement is ONE DiscoveredImport
	Scope      Scope
	Line       int
	Stmt       *parser.ImportStmt // the original AST node, for rewriting/removal
}

// LocalNames returns every name this import binds in its module's
// namespace: the alias (or last module segment) for a bare import, or
// each symbol's alias/name for a from-import.
func (d DiscoveredImport) LocalNames() []string {
	if !d.IsFrom {
		if d.Alias != "" {
			return []string{d.Alias}
		}
		parts := strings.Split(d.ModuleName, ".")
		return []string{parts[len(parts)-1]}
	}
	names := make([]string, len(d.Symbols))
	for i, s := range d.Symbols {
		if s.Alias != "" {
			names[i] = s.Alias
		} else {
			names[i] = s.Name
		}
	}
	return names
}

// frame is one entry of the explicit scope stack threaded through the
// walk; frames are pushed on entry to a nested body and popped on exit.
type frame struct {
	kind ScopeKind
	desc string // human-readable tag used when building a ScopeNested path
}

// Extractor walks a single module's statement list, accumulating
// DiscoveredImport values. A fresh Extractor is used per module.
type Extractor struct {
	currentModule   string
	currentIsPackage bool

	stack   []frame
	imports []DiscoveredImport
	err     error
}

// FromFile extracts every import in stmts, which belong to the module
// named currentModule (its absolute dotted name). currentIsPackage is
// true when the source file is a package-init file, which affects
// relative-import level resolution.
func FromFile(stmts []parser.Stmt, currentModule string, currentIsPackage bool) ([]DiscoveredImport, error) {
	ex := &Extractor{currentModule: currentModule, currentIsPackage: currentIsPackage}
	ex.walkStmts(stmts)
	if ex.err != nil {
		return nil, ex.err
	}
	return ex.imports, nil
}

func (ex *Extractor) push(f frame) {
	ex.stack = append(ex.stack, f)
}

func (ex *Extractor) pop() {
	ex.stack = ex.stack[:len(ex.stack)-1]
}

func (ex *Extractor) walkStmts(stmts []parser.Stmt) {
	for _, s := range stmts {
		if ex.err != nil {
			return
		}
		ex.walkStmt(s)
	}
}

func (ex *Extractor) walkStmt(s parser.Stmt) {
	switch st := s.(type) {
	case *parser.ImportStmt:
		ex.record(st)
	case *parser.FunctionStmt:
		ex.push(frame{kind: ScopeFunction, desc: st.Name})
		ex.walkStmts(st.Body)
		ex.pop()
	case *parser.ClassStmt:
		for _, m := range st.Methods {
			ex.push(frame{kind: ScopeMethod, desc: st.Name + "." + m.Name})
			ex.walkStmts(m.Body)
			ex.pop()
		}
	case *parser.IfStmt:
		ex.push(frame{kind: ScopeConditional, desc: "if"})
		ex.walkStmts(st.Then)
		ex.pop()
		if st.Else != nil {
			ex.push(frame{kind: ScopeConditional, desc: "else"})
			ex.walkStmts(st.Else)
			ex.pop()
		}
	case *parser.WhileStmt:
		ex.push(frame{kind: ScopeConditional, desc: "while"})
		ex.walkStmts(st.Body)
		ex.pop()
	case *parser.ForStmt:
		ex.push(frame{kind: ScopeConditional, desc: "for"})
		ex.walkStmts(st.Body)
		ex.pop()
	case *parser.ForInStmt:
		ex.push(frame{kind: ScopeConditional, desc: "for_in"})
		ex.walkStmts(st.Body)
		ex.pop()
	case *parser.TryStmt:
		ex.push(frame{kind: ScopeConditional, desc: "try"})
		ex.walkStmts(st.TryBlock)
		ex.pop()
		if st.CatchBlock != nil {
			ex.push(frame{kind: ScopeConditional, desc: "catch"})
			ex.walkStmts(st.CatchBlock)
			ex.pop()
		}
		if st.FinallyBlock != nil {
			ex.push(frame{kind: ScopeConditional, desc: "finally"})
			ex.walkStmts(st.FinallyBlock)
			ex.pop()
		}
	case *parser.MatchStmt:
		for i, c := range st.Cases {
			ex.push(frame{kind: ScopeConditional, desc: "case"})
			_ = i
			ex.walkStmts(c.Body)
			ex.pop()
		}
	case *parser.ExportStmt:
		if st.Stmt != nil {
			ex.walkStmt(st.Stmt)
		}
	default:
		// PrintStmt, LetStmt, AssignmentStmt, ReturnStmt, ExpressionStmt,
		// BreakStmt, ContinueStmt, ThrowStmt, IndexAssignmentStmt: none
		// can carry a nested import statement directly.
	}
}

func (ex *Extractor) record(st *parser.ImportStmt) {
	moduleName, err := ex.resolveModuleName(st)
	if err != nil {
		ex.err = err
		return
	}

	di := DiscoveredImport{
		ModuleName: moduleName,
		IsFrom:     st.IsFrom(),
		Alias:      st.Alias,
		Line:       st.Line,
		Scope:      ex.currentScope(),
		Stmt:       st,
	}
	for _, n := range st.Names {
		di.Symbols = append(di.Symbols, ImportedSymbol{Name: n.Name, Alias: n.Alias})
	}
	ex.imports = append(ex.imports, di)
}

// resolveModuleName combines a relative import's leading-dot level
// with the current module's own package path, producing an absolute
// dotted name. A bare (non-relative) import's module path is returned
// unchanged, dotted-joined.
func (ex *Extractor) resolveModuleName(st *parser.ImportStmt) (string, error) {
	if st.RelativeLevel == 0 {
		return strings.Join(st.ModuleParts, "."), nil
	}

	parts := strings.Split(ex.currentModule, ".")
	var pkgParts []string
	if ex.currentIsPackage {
		pkgParts = parts
	} else if len(parts) > 0 {
		pkgParts = parts[:len(parts)-1]
	}

	// Level 1 means "this module's own package"; each additional level
	// climbs one more directory.
	climbs := st.RelativeLevel - 1
	if climbs > len(pkgParts) {
		return "", bundleerr.New(bundleerr.Discovery,
			"UnresolvableRelativeImport: level exceeds package depth for "+ex.currentModule)
	}
	pkgParts = pkgParts[:len(pkgParts)-climbs]

	if len(st.ModuleParts) == 0 {
		if len(pkgParts) == 0 {
			return "", bundleerr.New(bundleerr.Discovery,
				"UnresolvableRelativeImport: level exceeds package depth for "+ex.currentModule)
		}
		return strings.Join(pkgParts, "."), nil
	}
	return strings.Join(append(pkgParts, st.ModuleParts...), "."), nil
}

// currentScope computes the tag for an import found with the current
// stack contents, per the Module/Function/Method/Conditional/Nested
// rules of spec.md §4.2.
func (ex *Extractor) currentScope() Scope {
	if len(ex.stack) == 0 {
		return Scope{Kind: ScopeModule}
	}
	if len(ex.stack) == 1 {
		f := ex.stack[0]
		switch f.kind {
		case ScopeFunction:
			return Scope{Kind: ScopeFunction, Function: f.desc}
		case ScopeMethod:
			cls, method := splitMethodDesc(f.desc)
			return Scope{Kind: ScopeMethod, Class: cls, Method: method}
		case ScopeConditional:
			return Scope{Kind: ScopeConditional, Depth: 1}
		}
	}

	allConditional := true
	for _, f := range ex.stack {
		if f.kind != ScopeConditional {
			allConditional = false
			break
		}
	}
	if allConditional {
		return Scope{Kind: ScopeConditional, Depth: len(ex.stack)}
	}

	path := make([]string, len(ex.stack))
	for i, f := range ex.stack {
		path[i] = f.desc
	}
	return Scope{Kind: ScopeNested, Path: path}
}

func splitMethodDesc(desc string) (class, method string) {
	idx := strings.LastIndex(desc, ".")
	if idx < 0 {
		return desc, ""
	}
	return desc[:idx], desc[idx+1:]
}

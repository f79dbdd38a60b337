package rewrite

import "sentra-bundle/internal/parser"

// useForm classifies how a single occurrence of a name was used.
type useForm int

const (
	useBare useForm = iota
	useCallee
	usePropertyObject
)

// occurrence is one use of a tracked name somewhere in a module.
type occurrence struct {
	form          useForm
	inFunction    bool
	functionNames []string // every enclosing function, innermost last
	inClassBody   bool
	moduleLevel   bool // true if outside every function and every class
}

// findUses returns every occurrence of localName anywhere in body.
// Module-level statements are scanned with inFunction=false,
// moduleLevel=true; function bodies (including nested blocks within
// them) are scanned with inFunction=true and the enclosing function
// name chain recorded.
func findUses(body []parser.Stmt, localName string) []occurrence {
	w := &usageWalker{name: localName}
	w.walkStmts(body, nil, false)
	return w.uses
}

type usageWalker struct {
	name string
	uses []occurrence
}

func (w *usageWalker) walkStmts(stmts []parser.Stmt, funcStack []string, inClass bool) {
	for _, s := range stmts {
		w.walkStmt(s, funcStack, inClass)
	}
}

func (w *usageWalker) walkStmt(s parser.Stmt, funcStack []string, inClass bool) {
	switch st := s.(type) {
	case *parser.PrintStmt:
		w.walkExpr(st.Expr, funcStack, inClass, useBare)
	case *parser.LetStmt:
		w.walkExpr(st.Expr, funcStack, inClass, useBare)
	case *parser.AssignmentStmt:
		w.walkExpr(st.Value, funcStack, inClass, useBare)
	case *parser.IndexAssignmentStmt:
		w.walkExpr(st.Object, funcStack, inClass, useBare)
		w.walkExpr(st.Index, funcStack, inClass, useBare)
		w.walkExpr(st.Value, funcStack, inClass, useBare)
	case *parser.ExpressionStmt:
		w.walkExpr(st.Expr, funcStack, inClass, useBare)
	case *parser.FunctionStmt:
		next := append(append([]string(nil), funcStack...), st.Name)
		w.walkStmts(st.Body, next, false)
	case *parser.ReturnStmt:
		if st.Value != nil {
			w.walkExpr(st.Value, funcStack, inClass, useBare)
		}
	case *parser.IfStmt:
		w.walkExpr(st.Condition, funcStack, inClass, useBare)
		w.walkStmts(st.Then, funcStack, inClass)
		w.walkStmts(st.Else, funcStack, inClass)
	case *parser.WhileStmt:
		w.walkExpr(st.Condition, funcStack, inClass, useBare)
		w.walkStmts(st.Body, funcStack, inClass)
	case *parser.ForStmt:
		if st.Condition != nil {
			w.walkExpr(st.Condition, funcStack, inClass, useBare)
		}
		if st.Update != nil {
			w.walkExpr(st.Update, funcStack, inClass, useBare)
		}
		w.walkStmts(st.Body, funcStack, inClass)
	case *parser.ForInStmt:
		w.walkExpr(st.Collection, funcStack, inClass, useBare)
		w.walkStmts(st.Body, funcStack, inClass)
	case *parser.ExportStmt:
		if st.Stmt != nil {
			w.walkStmt(st.Stmt, funcStack, inClass)
		}
	case *parser.ClassStmt:
		for _, m := range st.Methods {
			next := append(append([]string(nil), funcStack...), st.Name+"."+m.Name)
			w.walkStmts(m.Body, next, true)
		}
	case *parser.TryStmt:
		w.walkStmts(st.TryBlock, funcStack, inClass)
		w.walkStmts(st.CatchBlock, funcStack, inClass)
		w.walkStmts(st.FinallyBlock, funcStack, inClass)
	case *parser.ThrowStmt:
		w.walkExpr(st.Value, funcStack, inClass, useBare)
	case *parser.MatchStmt:
		w.walkExpr(st.Value, funcStack, inClass, useBare)
		for _, c := range st.Cases {
			w.walkStmts(c.Body, funcStack, inClass)
		}
	}
}

func (w *usageWalker) walkExpr(e parser.Expr, funcStack []string, inClass bool, form useForm) {
	if e == nil {
		return
	}
	switch ex := e.(type) {
	case *parser.Variable:
		if ex.Name == w.name {
			w.uses = append(w.uses, occurrence{
				form:          form,
				inFunction:    len(funcStack) > 0,
				functionNames: append([]string(nil), funcStack...),
				inClassBody:   inClass,
				moduleLevel:   len(funcStack) == 0 && !inClass,
			})
		}
	case *parser.Binary:
		w.walkExpr(ex.Left, funcStack, inClass, useBare)
		w.walkExpr(ex.Right, funcStack, inClass, useBare)
	case *parser.Assign:
		w.walkExpr(ex.Value, funcStack, inClass, useBare)
	case *parser.CallExpr:
		w.walkExpr(ex.Callee, funcStack, inClass, useCallee)
		for _, a := range ex.Args {
			w.walkExpr(a, funcStack, inClass, useBare)
		}
	case *parser.IfExpr:
		w.walkExpr(ex.Cond, funcStack, inClass, useBare)
		w.walkExpr(ex.ThenBranch, funcStack, inClass, useBare)
		w.walkExpr(ex.ElseBranch, funcStack, inClass, useBare)
	case *parser.BlockExpr:
		w.walkStmts(ex.Stmts, funcStack, inClass)
	case *parser.ArrayExpr:
		for _, el := range ex.Elements {
			w.walkExpr(el, funcStack, inClass, useBare)
		}
	case *parser.MapExpr:
		for _, v := range ex.Values {
			w.walkExpr(v, funcStack, inClass, useBare)
		}
	case *parser.IndexExpr:
		w.walkExpr(ex.Object, funcStack, inClass, useBare)
		w.walkExpr(ex.Index, funcStack, inClass, useBare)
	case *parser.SetIndexExpr:
		w.walkExpr(ex.Object, funcStack, inClass, useBare)
		w.walkExpr(ex.Index, funcStack, inClass, useBare)
		w.walkExpr(ex.Value, funcStack, inClass, useBare)
	case *parser.UnaryExpr:
		w.walkExpr(ex.Operand, funcStack, inClass, useBare)
	case *parser.LogicalExpr:
		w.walkExpr(ex.Left, funcStack, inClass, useBare)
		w.walkExpr(ex.Right, funcStack, inClass, useBare)
	case *parser.InterpolationExpr:
		for _, p := range ex.Parts {
			w.walkExpr(p, funcStack, inClass, useBare)
		}
	case *parser.LambdaExpr:
		w.walkExpr(ex.Body, funcStack, inClass, useBare)
	case *parser.PropertyExpr:
		w.walkExpr(ex.Object, funcStack, inClass, usePropertyObject)
	}
}

// Movable reports whether an import binding localName (from a module
// whose leftmost segment is targetLeftmost) may be moved into function
// scope, per spec.md §4.5's three-part predicate.
func Movable(body []parser.Stmt, localName, targetLeftmost string, sideEffectModules map[string]bool) (ok bool, functions []string) {
	if isSideEffecting(targetLeftmost, sideEffectModules) {
		return false, nil
	}

	uses := findUses(body, localName)
	if len(uses) == 0 {
		return false, nil
	}

	seen := make(map[string]bool)
	var fns []string
	for _, u := range uses {
		if !u.inFunction || u.inClassBody {
			return false, nil
		}
		if u.form != useCallee && u.form != usePropertyObject {
			return false, nil
		}
		top := u.functionNames[0]
		if !seen[top] {
			seen[top] = true
			fns = append(fns, top)
		}
	}
	return true, fns
}

// isSideEffecting reports whether a module's leftmost dotted segment
// is in the configured side-effect list, or begins with a single
// underscore (the convention for init-at-import-time modules).
func isSideEffecting(leftmost string, sideEffectModules map[string]bool) bool {
	if sideEffectModules[leftmost] {
		return true
	}
	if len(leftmost) >= 2 && leftmost[0] == '_' && leftmost[1] != '_' {
		return true
	}
	return false
}

// DefaultSideEffectModules is the small built-in list of modules known
// to run initialization work at import time.
var DefaultSideEffectModules = map[string]bool{
	"os":     true,
	"io":     true,
	"logging": true,
}

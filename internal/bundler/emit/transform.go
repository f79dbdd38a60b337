package emit

import (
	"sentra-bundle/internal/parser"
)

// moduleTransform rewrites one module's statement list in place: it
// drops the module's import statements (bundled modules are inlined;
// the others are re-emitted once at the top by Merge), flattens
// `module.symbol` attribute access on bundled module aliases, and
// substitutes renamed bindings. The entry module keeps its own
// from-import local names untouched and instead receives compensating
// alias assignments (spec.md §4.6 step 6).
type moduleTransform struct {
	module  string
	in      Inputs
	bundled map[string]bool
	isEntry bool

	// bareAliasToModule maps a bare-import local name (alias or last
	// dotted segment) to the bundled module it names.
	bareAliasToModule map[string]string
	// fromNameToBinding maps a from-import local name to the module and
	// original symbol it came from, for bundled sources only.
	fromNameToBinding map[string]binding
	// dropStmts marks every import statement the module declares,
	// removed from the module's own body.
	dropStmts map[*parser.ImportStmt]bool
}

type binding struct {
	module string
	symbol string
}

func newModuleTransform(module string, in Inputs, bundled map[string]bool, isEntry bool) *moduleTransform {
	t := &moduleTransform{
		module:            module,
		in:                in,
		bundled:           bundled,
		isEntry:           isEntry,
		bareAliasToModule: make(map[string]string),
		fromNameToBinding: make(map[string]binding),
		dropStmts:         make(map[*parser.ImportStmt]bool),
	}
	for _, di := range in.Modules[module].Imports {
		t.dropStmts[di.Stmt] = true
		if !bundled[di.ModuleName] {
			continue
		}
		if di.IsFrom {
			for _, sym := range di.Symbols {
				local := sym.Name
				if sym.Alias != "" {
					local = sym.Alias
				}
				t.fromNameToBinding[local] = binding{module: di.ModuleName, symbol: sym.Name}
			}
		} else {
			local := di.Stmt.ModuleParts[len(di.Stmt.ModuleParts)-1]
			if di.Alias != "" {
				local = di.Alias
			}
			t.bareAliasToModule[local] = di.ModuleName
		}
	}
	return t
}

func (t *moduleTransform) renameFor(module, symbol string) string {
	if renamed, ok := t.in.Renames[[2]string{module, symbol}]; ok {
		return renamed
	}
	return symbol
}

// aliasAssignments builds the entry module's compensating `Y = m_X`
// statements for every from-import local name whose target symbol was
// renamed due to a cross-module conflict.
func (t *moduleTransform) aliasAssignments() []parser.Stmt {
	if !t.isEntry {
		return nil
	}
	var out []parser.Stmt
	for local, b := range t.fromNameToBinding {
		renamed := t.renameFor(b.module, b.symbol)
		if renamed == local {
			continue
		}
		out = append(out, &parser.AssignmentStmt{Name: local, Value: &parser.Variable{Name: renamed}})
	}
	return out
}

func (t *moduleTransform) rewriteStmts(stmts []parser.Stmt) []parser.Stmt {
	out := make([]parser.Stmt, 0, len(stmts))
	for _, s := range stmts {
		if imp, ok := s.(*parser.ImportStmt); ok && t.dropStmts[imp] {
			continue
		}
		out = append(out, t.rewriteStmt(s))
	}
	return out
}

func (t *moduleTransform) rewriteStmt(s parser.Stmt) parser.Stmt {
	switch st := s.(type) {
	case *parser.LetStmt:
		st.Expr = t.rewriteExpr(st.Expr)
		if !t.isEntry {
			st.Name = t.renameFor(t.module, st.Name)
		}
	case *parser.AssignmentStmt:
		st.Value = t.rewriteExpr(st.Value)
		if !t.isEntry {
			st.Name = t.renameFor(t.module, st.Name)
		}
	case *parser.IndexAssignmentStmt:
		st.Object = t.rewriteExpr(st.Object)
		st.Index = t.rewriteExpr(st.Index)
		st.Value = t.rewriteExpr(st.Value)
	case *parser.ExpressionStmt:
		st.Expr = t.rewriteExpr(st.Expr)
	case *parser.PrintStmt:
		st.Expr = t.rewriteExpr(st.Expr)
	case *parser.FunctionStmt:
		if !t.isEntry {
			st.Name = t.renameFor(t.module, st.Name)
		}
		st.Body = t.rewriteStmts(st.Body)
	case *parser.ReturnStmt:
		st.Value = t.rewriteExpr(st.Value)
	case *parser.IfStmt:
		st.Condition = t.rewriteExpr(st.Condition)
		st.Then = t.rewriteStmts(st.Then)
		st.Else = t.rewriteStmts(st.Else)
	case *parser.WhileStmt:
		st.Condition = t.rewriteExpr(st.Condition)
		st.Body = t.rewriteStmts(st.Body)
	case *parser.ForStmt:
		if st.Init != nil {
			st.Init = t.rewriteStmt(st.Init)
		}
		st.Condition = t.rewriteExpr(st.Condition)
		st.Update = t.rewriteExpr(st.Update)
		st.Body = t.rewriteStmts(st.Body)
	case *parser.ForInStmt:
		st.Collection = t.rewriteExpr(st.Collection)
		st.Body = t.rewriteStmts(st.Body)
	case *parser.ExportStmt:
		st.Stmt = t.rewriteStmt(st.Stmt)
	case *parser.ClassStmt:
		if !t.isEntry {
			st.Name = t.renameFor(t.module, st.Name)
		}
		for _, m := range st.Methods {
			m.Body = t.rewriteStmts(m.Body)
		}
	case *parser.TryStmt:
		st.TryBlock = t.rewriteStmts(st.TryBlock)
		st.CatchBlock = t.rewriteStmts(st.CatchBlock)
		st.FinallyBlock = t.rewriteStmts(st.FinallyBlock)
	case *parser.ThrowStmt:
		st.Value = t.rewriteExpr(st.Value)
	case *parser.MatchStmt:
		st.Value = t.rewriteExpr(st.Value)
		for i := range st.Cases {
			st.Cases[i].Body = t.rewriteStmts(st.Cases[i].Body)
		}
	}
	return s
}

func (t *moduleTransform) rewriteExpr(e parser.Expr) parser.Expr {
	if e == nil {
		return nil
	}
	switch ex := e.(type) {
	case *parser.Variable:
		if !t.isEntry {
			if b, ok := t.fromNameToBinding[ex.Name]; ok {
				return &parser.Variable{Name: t.renameFor(b.module, b.symbol)}
			}
			if renamed, ok := t.in.Renames[[2]string{t.module, ex.Name}]; ok {
				return &parser.Variable{Name: renamed}
			}
		}
		return ex
	case *parser.PropertyExpr:
		if v, ok := ex.Object.(*parser.Variable); ok {
			if mod, ok := t.bareAliasToModule[v.Name]; ok {
				return &parser.Variable{Name: t.renameFor(mod, ex.Property)}
			}
		}
		ex.Object = t.rewriteExpr(ex.Object)
		return ex
	case *parser.Binary:
		ex.Left = t.rewriteExpr(ex.Left)
		ex.Right = t.rewriteExpr(ex.Right)
		return ex
	case *parser.Assign:
		ex.Value = t.rewriteExpr(ex.Value)
		if !t.isEntry {
			if renamed, ok := t.in.Renames[[2]string{t.module, ex.Name}]; ok {
				ex.Name = renamed
			}
		}
		return ex
	case *parser.CallExpr:
		ex.Callee = t.rewriteExpr(ex.Callee)
		for i := range ex.Args {
			ex.Args[i] = t.rewriteExpr(ex.Args[i])
		}
		return ex
	case *parser.IfExpr:
		ex.Cond = t.rewriteExpr(ex.Cond)
		ex.ThenBranch = t.rewriteExpr(ex.ThenBranch)
		ex.ElseBranch = t.rewriteExpr(ex.ElseBranch)
		return ex
	case *parser.BlockExpr:
		ex.Stmts = t.rewriteStmts(ex.Stmts)
		return ex
	case *parser.ArrayExpr:
		for i := range ex.Elements {
			ex.Elements[i] = t.rewriteExpr(ex.Elements[i])
		}
		return ex
	case *parser.MapExpr:
		for i := range ex.Values {
			ex.Values[i] = t.rewriteExpr(ex.Values[i])
		}
		return ex
	case *parser.IndexExpr:
		ex.Object = t.rewriteExpr(ex.Object)
		ex.Index = t.rewriteExpr(ex.Index)
		return ex
	case *parser.SetIndexExpr:
		ex.Object = t.rewriteExpr(ex.Object)
		ex.Index = t.rewriteExpr(ex.Index)
		ex.Value = t.rewriteExpr(ex.Value)
		return ex
	case *parser.UnaryExpr:
		ex.Operand = t.rewriteExpr(ex.Operand)
		return ex
	case *parser.LogicalExpr:
		ex.Left = t.rewriteExpr(ex.Left)
		ex.Right = t.rewriteExpr(ex.Right)
		return ex
	case *parser.InterpolationExpr:
		for i := range ex.Parts {
			ex.Parts[i] = t.rewriteExpr(ex.Parts[i])
		}
		return ex
	case *parser.LambdaExpr:
		ex.Body = t.rewriteExpr(ex.Body)
		return ex
	default:
		return e
	}
}

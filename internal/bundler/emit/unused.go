package emit

import "sentra-bundle/internal/parser"

// pruneUnused drops any preserved import none of whose local names are
// referenced anywhere across bodies (spec.md §4.6 "unused-import
// elimination"), scanning every nested scope.
func pruneUnused(preserved []preservedImport, bodies ...[]parser.Stmt) []preservedImport {
	referenced := make(map[string]bool)
	for _, body := range bodies {
		collectReferencedNames(body, referenced)
	}

	out := preserved[:0]
	for _, p := range preserved {
		used := false
		for _, name := range p.localNames {
			if referenced[name] {
				used = true
				break
			}
		}
		if used {
			out = append(out, p)
		}
	}
	return out
}

func collectReferencedNames(stmts []parser.Stmt, into map[string]bool) {
	for _, s := range stmts {
		collectStmt(s, into)
	}
}

func collectStmt(s parser.Stmt, into map[string]bool) {
	switch st := s.(type) {
	case *parser.PrintStmt:
		collectExpr(st.Expr, into)
	case *parser.LetStmt:
		collectExpr(st.Expr, into)
	case *parser.AssignmentStmt:
		collectExpr(st.Value, into)
	case *parser.IndexAssignmentStmt:
		collectExpr(st.Object, into)
		collectExpr(st.Index, into)
		collectExpr(st.Value, into)
	case *parser.ExpressionStmt:
		collectExpr(st.Expr, into)
	case *parser.FunctionStmt:
		collectReferencedNames(st.Body, into)
	case *parser.ReturnStmt:
		collectExpr(st.Value, into)
	case *parser.IfStmt:
		collectExpr(st.Condition, into)
		collectReferencedNames(st.Then, into)
		collectReferencedNames(st.Else, into)
	case *parser.WhileStmt:
		collectExpr(st.Condition, into)
		collectReferencedNames(st.Body, into)
	case *parser.ForStmt:
		if st.Init != nil {
			collectStmt(st.Init, into)
		}
		collectExpr(st.Condition, into)
		collectExpr(st.Update, into)
		collectReferencedNames(st.Body, into)
	case *parser.ForInStmt:
		collectExpr(st.Collection, into)
		collectReferencedNames(st.Body, into)
	case *parser.ExportStmt:
		if st.Stmt != nil {
			collectStmt(st.Stmt, into)
		}
	case *parser.ClassStmt:
		for _, m := range st.Methods {
			collectReferencedNames(m.Body, into)
		}
	case *parser.TryStmt:
		collectReferencedNames(st.TryBlock, into)
		collectReferencedNames(st.CatchBlock, into)
		collectReferencedNames(st.FinallyBlock, into)
	case *parser.ThrowStmt:
		collectExpr(st.Value, into)
	case *parser.MatchStmt:
		collectExpr(st.Value, into)
		for _, c := range st.Cases {
			collectReferencedNames(c.Body, into)
		}
	}
}

func collectExpr(e parser.Expr, into map[string]bool) {
	if e == nil {
		return
	}
	switch ex := e.(type) {
	case *parser.Variable:
		into[ex.Name] = true
	case *parser.Binary:
		collectExpr(ex.Left, into)
		collectExpr(ex.Right, into)
	case *parser.Assign:
		collectExpr(ex.Value, into)
	case *parser.CallExpr:
		collectExpr(ex.Callee, into)
		for _, a := range ex.Args {
			collectExpr(a, into)
		}
	case *parser.IfExpr:
		collectExpr(ex.Cond, into)
		collectExpr(ex.ThenBranch, into)
		collectExpr(ex.ElseBranch, into)
	case *parser.BlockExpr:
		collectReferencedNames(ex.Stmts, into)
	case *parser.ArrayExpr:
		for _, el := range ex.Elements {
			collectExpr(el, into)
		}
	case *parser.MapExpr:
		for _, v := range ex.Values {
			collectExpr(v, into)
		}
	case *parser.IndexExpr:
		collectExpr(ex.Object, into)
		collectExpr(ex.Index, into)
	case *parser.SetIndexExpr:
		collectExpr(ex.Object, into)
		collectExpr(ex.Index, into)
		collectExpr(ex.Value, into)
	case *parser.UnaryExpr:
		collectExpr(ex.Operand, into)
	case *parser.LogicalExpr:
		collectExpr(ex.Left, into)
		collectExpr(ex.Right, into)
	case *parser.InterpolationExpr:
		for _, p := range ex.Parts {
			collectExpr(p, into)
		}
	case *parser.LambdaExpr:
		collectExpr(ex.Body, into)
	case *parser.PropertyExpr:
		collectExpr(ex.Object, into)
	}
}

// Package emit implements the static bundler: merging ordered module
// ASTs into one output AST and serialising it back to source text.
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"sentra-bundle/internal/parser"
)

// Printer renders a statement list back to Sentra source text. It is
// adapted from the interpreter's own statement/expression walk, kept
// as a plain recursive descent over the same Stmt/Expr union instead
// of a token-stream emitter.
type Printer struct {
	sb     strings.Builder
	indent int
}

// Print renders stmts and returns the resulting source text.
func Print(stmts []parser.Stmt) string {
	p := &Printer{}
	p.printStmts(stmts)
	return p.sb.String()
}

func (p *Printer) writeIndent() {
	p.sb.WriteString(strings.Repeat("    ", p.indent))
}

func (p *Printer) printStmts(stmts []parser.Stmt) {
	for _, s := range stmts {
		p.printStmt(s)
	}
}

func (p *Printer) printStmt(s parser.Stmt) {
	p.writeIndent()
	switch st := s.(type) {
	case *parser.PrintStmt:
		p.sb.WriteString("log(")
		p.sb.WriteString(p.expr(st.Expr))
		p.sb.WriteString(")\n")
	case *parser.LetStmt:
		p.sb.WriteString("let ")
		p.sb.WriteString(st.Name)
		p.sb.WriteString(" = ")
		p.sb.WriteString(p.expr(st.Expr))
		p.sb.WriteString("\n")
	case *parser.AssignmentStmt:
		p.sb.WriteString(st.Name)
		p.sb.WriteString(" = ")
		p.sb.WriteString(p.expr(st.Value))
		p.sb.WriteString("\n")
	case *parser.IndexAssignmentStmt:
		p.sb.WriteString(p.expr(st.Object))
		p.sb.WriteString("[")
		p.sb.WriteString(p.expr(st.Index))
		p.sb.WriteString("] = ")
		p.sb.WriteString(p.expr(st.Value))
		p.sb.WriteString("\n")
	case *parser.ExpressionStmt:
		p.sb.WriteString(p.expr(st.Expr))
		p.sb.WriteString("\n")
	case *parser.FunctionStmt:
		p.printFunction(st)
	case *parser.ReturnStmt:
		p.sb.WriteString("return")
		if st.Value != nil {
			p.sb.WriteString(" ")
			p.sb.WriteString(p.expr(st.Value))
		}
		p.sb.WriteString("\n")
	case *parser.IfStmt:
		p.sb.WriteString("if ")
		p.sb.WriteString(p.expr(st.Condition))
		p.sb.WriteString(" {\n")
		p.indent++
		p.printStmts(st.Then)
		p.indent--
		p.writeIndent()
		if st.Else != nil {
			p.sb.WriteString("} else {\n")
			p.indent++
			p.printStmts(st.Else)
			p.indent--
			p.writeIndent()
		}
		p.sb.WriteString("}\n")
	case *parser.WhileStmt:
		p.sb.WriteString("while ")
		p.sb.WriteString(p.expr(st.Condition))
		p.sb.WriteString(" {\n")
		p.indent++
		p.printStmts(st.Body)
		p.indent--
		p.writeIndent()
		p.sb.WriteString("}\n")
	case *parser.ForStmt:
		p.sb.WriteString("for (")
		if st.Init != nil {
			p.sb.WriteString(strings.TrimRight(p.stmtInline(st.Init), "\n"))
		}
		p.sb.WriteString("; ")
		if st.Condition != nil {
			p.sb.WriteString(p.expr(st.Condition))
		}
		p.sb.WriteString("; ")
		if st.Update != nil {
			p.sb.WriteString(p.expr(st.Update))
		}
		p.sb.WriteString(") {\n")
		p.indent++
		p.printStmts(st.Body)
		p.indent--
		p.writeIndent()
		p.sb.WriteString("}\n")
	case *parser.ForInStmt:
		p.sb.WriteString("for ")
		p.sb.WriteString(st.Variable)
		p.sb.WriteString(" in ")
		p.sb.WriteString(p.expr(st.Collection))
		p.sb.WriteString(" {\n")
		p.indent++
		p.printStmts(st.Body)
		p.indent--
		p.writeIndent()
		p.sb.WriteString("}\n")
	case *parser.BreakStmt:
		p.sb.WriteString("break\n")
	case *parser.ContinueStmt:
		p.sb.WriteString("continue\n")
	case *parser.ImportStmt:
		p.sb.WriteString(p.importStmt(st))
		p.sb.WriteString("\n")
	case *parser.ExportStmt:
		p.sb.WriteString("export ")
		p.indent = 0
		inner := Print([]parser.Stmt{st.Stmt})
		p.sb.WriteString(strings.TrimLeft(inner, " "))
	case *parser.ClassStmt:
		p.printClass(st)
	case *parser.TryStmt:
		p.sb.WriteString("try {\n")
		p.indent++
		p.printStmts(st.TryBlock)
		p.indent--
		p.writeIndent()
		p.sb.WriteString("} catch ")
		p.sb.WriteString(st.CatchVar)
		p.sb.WriteString(" {\n")
		p.indent++
		p.printStmts(st.CatchBlock)
		p.indent--
		p.writeIndent()
		if st.FinallyBlock != nil {
			p.sb.WriteString("} finally {\n")
			p.indent++
			p.printStmts(st.FinallyBlock)
			p.indent--
			p.writeIndent()
		}
		p.sb.WriteString("}\n")
	case *parser.ThrowStmt:
		p.sb.WriteString("throw ")
		p.sb.WriteString(p.expr(st.Value))
		p.sb.WriteString("\n")
	case *parser.MatchStmt:
		p.sb.WriteString("match ")
		p.sb.WriteString(p.expr(st.Value))
		p.sb.WriteString(" {\n")
		p.indent++
		for _, c := range st.Cases {
			p.writeIndent()
			p.sb.WriteString(p.expr(c.Pattern))
			p.sb.WriteString(" => {\n")
			p.indent++
			p.printStmts(c.Body)
			p.indent--
			p.writeIndent()
			p.sb.WriteString("}\n")
		}
		p.indent--
		p.writeIndent()
		p.sb.WriteString("}\n")
	default:
		p.sb.WriteString(fmt.Sprintf("/* unprintable statement %T */\n", s))
	}
}

// stmtInline renders a single statement without a trailing indent
// prefix, for embedding inline (for-loop init clause).
func (p *Printer) stmtInline(s parser.Stmt) string {
	inner := &Printer{}
	inner.printStmt(s)
	return inner.sb.String()
}

func (p *Printer) printFunction(st *parser.FunctionStmt) {
	p.sb.WriteString("fn ")
	p.sb.WriteString(st.Name)
	p.sb.WriteString("(")
	p.sb.WriteString(strings.Join(st.Params, ", "))
	p.sb.WriteString(")")
	if st.ReturnType != "" {
		p.sb.WriteString(": ")
		p.sb.WriteString(st.ReturnType)
	}
	p.sb.WriteString(" {\n")
	p.indent++
	p.printStmts(st.Body)
	p.indent--
	p.writeIndent()
	p.sb.WriteString("}\n")
}

func (p *Printer) printClass(st *parser.ClassStmt) {
	p.sb.WriteString("class ")
	p.sb.WriteString(st.Name)
	if st.Superclass != "" {
		p.sb.WriteString(" : ")
		p.sb.WriteString(st.Superclass)
	}
	p.sb.WriteString(" {\n")
	p.indent++
	for _, f := range st.Fields {
		p.writeIndent()
		p.sb.WriteString("let ")
		p.sb.WriteString(f)
		p.sb.WriteString("\n")
	}
	for _, m := range st.Methods {
		p.writeIndent()
		p.printFunction(m)
	}
	p.indent--
	p.writeIndent()
	p.sb.WriteString("}\n")
}

func (p *Printer) importStmt(st *parser.ImportStmt) string {
	if !st.IsFrom() {
		path := strings.Join(st.ModuleParts, ".")
		if st.Alias != "" {
			return fmt.Sprintf("import %s as %s", path, st.Alias)
		}
		return fmt.Sprintf("import %s", path)
	}

	dots := strings.Repeat(".", st.RelativeLevel)
	path := dots + strings.Join(st.ModuleParts, ".")
	names := make([]string, len(st.Names))
	for i, n := range st.Names {
		if n.Alias != "" {
			names[i] = fmt.Sprintf("%s as %s", n.Name, n.Alias)
		} else {
			names[i] = n.Name
		}
	}
	return fmt.Sprintf("from %s import %s", path, strings.Join(names, ", "))
}

// expr renders e as source text.
func (p *Printer) expr(e parser.Expr) string {
	if e == nil {
		return ""
	}
	switch ex := e.(type) {
	case *parser.Binary:
		return fmt.Sprintf("(%s %s %s)", p.expr(ex.Left), ex.Operator, p.expr(ex.Right))
	case *parser.Literal:
		return literalString(ex.Value)
	case *parser.Variable:
		return ex.Name
	case *parser.Assign:
		return fmt.Sprintf("%s = %s", ex.Name, p.expr(ex.Value))
	case *parser.CallExpr:
		args := make([]string, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = p.expr(a)
		}
		return fmt.Sprintf("%s(%s)", p.expr(ex.Callee), strings.Join(args, ", "))
	case *parser.IfExpr:
		return fmt.Sprintf("if %s { %s } else { %s }", p.expr(ex.Cond), p.expr(ex.ThenBranch), p.expr(ex.ElseBranch))
	case *parser.BlockExpr:
		inner := Print(ex.Stmts)
		return fmt.Sprintf("{ %s }", strings.TrimSpace(inner))
	case *parser.ArrayExpr:
		elems := make([]string, len(ex.Elements))
		for i, el := range ex.Elements {
			elems[i] = p.expr(el)
		}
		return fmt.Sprintf("[%s]", strings.Join(elems, ", "))
	case *parser.MapExpr:
		parts := make([]string, len(ex.Keys))
		for i := range ex.Keys {
			parts[i] = fmt.Sprintf("%s: %s", p.expr(ex.Keys[i]), p.expr(ex.Values[i]))
		}
		return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
	case *parser.IndexExpr:
		return fmt.Sprintf("%s[%s]", p.expr(ex.Object), p.expr(ex.Index))
	case *parser.SetIndexExpr:
		return fmt.Sprintf("%s[%s] = %s", p.expr(ex.Object), p.expr(ex.Index), p.expr(ex.Value))
	case *parser.UnaryExpr:
		return fmt.Sprintf("%s%s", ex.Operator, p.expr(ex.Operand))
	case *parser.LogicalExpr:
		return fmt.Sprintf("(%s %s %s)", p.expr(ex.Left), ex.Operator, p.expr(ex.Right))
	case *parser.InterpolationExpr:
		var sb strings.Builder
		sb.WriteString("`")
		for _, part := range ex.Parts {
			if lit, ok := part.(*parser.Literal); ok {
				if s, ok := lit.Value.(string); ok {
					sb.WriteString(s)
					continue
				}
			}
			sb.WriteString("${")
			sb.WriteString(p.expr(part))
			sb.WriteString("}")
		}
		sb.WriteString("`")
		return sb.String()
	case *parser.LambdaExpr:
		return fmt.Sprintf("fn(%s) => %s", strings.Join(ex.Params, ", "), p.expr(ex.Body))
	case *parser.PropertyExpr:
		return fmt.Sprintf("%s.%s", p.expr(ex.Object), ex.Property)
	default:
		return fmt.Sprintf("/* unprintable expr %T */", e)
	}
}

func literalString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%v", val)
	}
}

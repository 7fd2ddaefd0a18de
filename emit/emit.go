// Package emit textually renders a recovered statement tree as JS/TS
// -flavoured source: a streaming tree walker indenting by nesting depth,
// in the same style as the teacher's wast.WriteTo (a bufio.Writer-backed
// writer accumulating the first error and refusing further writes once
// set, with one write* method per node kind).
package emit

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/abcd-project/abcd/ir"
)

const tab = "  "

// WriteFunction renders one decompiled function/method: a header with the
// given name and userParamCount parameters p1..pN (the names
// recover.ArgOrVar gives user-parameter registers), followed by the
// structured body.
func WriteFunction(w io.Writer, name string, userParamCount int, body []ir.Stmt) error {
	e := &writer{bw: bufio.NewWriter(w)}
	params := make([]string, userParamCount)
	for i := range params {
		params[i] = fmt.Sprintf("p%d", i+1)
	}
	e.printf("function %s(%s) {\n", name, strings.Join(params, ", "))
	e.writeStmts(body, 1)
	e.printf("}\n")
	if e.err != nil {
		return e.err
	}
	return e.bw.Flush()
}

// WriteStatements renders a bare statement list with no enclosing function
// header, useful for top-level/module-scope code.
func WriteStatements(w io.Writer, body []ir.Stmt) error {
	e := &writer{bw: bufio.NewWriter(w)}
	e.writeStmts(body, 0)
	if e.err != nil {
		return e.err
	}
	return e.bw.Flush()
}

type writer struct {
	bw  *bufio.Writer
	err error
}

func (e *writer) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.bw, format, args...)
}

func (e *writer) indent(depth int) {
	for i := 0; i < depth; i++ {
		e.printf(tab)
	}
}

func (e *writer) writeStmts(stmts []ir.Stmt, depth int) {
	for _, s := range stmts {
		e.writeStmt(s, depth)
	}
}

func (e *writer) writeBlock(stmts []ir.Stmt, depth int) {
	e.printf("{\n")
	e.writeStmts(stmts, depth+1)
	e.indent(depth)
	e.printf("}")
}

func (e *writer) writeStmt(s ir.Stmt, depth int) {
	e.indent(depth)
	switch st := s.(type) {
	case ir.ExprStmt:
		e.writeExpr(st.X)
		e.printf(";\n")

	case ir.DeclStmt:
		e.printf("%s %s = ", st.Kind, st.Name)
		e.writeExpr(st.Init)
		e.printf(";\n")

	case ir.AssignStmt:
		e.writeExpr(st.Target)
		e.printf(" = ")
		e.writeExpr(st.Value)
		e.printf(";\n")

	case ir.ReturnStmt:
		if st.Value == nil {
			e.printf("return;\n")
		} else {
			e.printf("return ")
			e.writeExpr(st.Value)
			e.printf(";\n")
		}

	case ir.ThrowStmt:
		e.printf("throw ")
		e.writeExpr(st.Value)
		e.printf(";\n")

	case ir.IfStmt:
		e.printf("if (")
		e.writeExpr(st.Cond)
		e.printf(") ")
		e.writeBlock(st.Then, depth)
		if st.Else != nil {
			e.printf(" else ")
			e.writeBlock(st.Else, depth)
		}
		e.printf("\n")

	case ir.WhileStmt:
		e.printf("while (")
		e.writeExpr(st.Cond)
		e.printf(") ")
		e.writeBlock(st.Body, depth)
		e.printf("\n")

	case ir.ForInStmt:
		e.printf("for (let %s in ", st.Var)
		e.writeExpr(st.Object)
		e.printf(") ")
		e.writeBlock(st.Body, depth)
		e.printf("\n")

	case ir.ForOfStmt:
		e.printf("for (let %s of ", st.Var)
		e.writeExpr(st.Object)
		e.printf(") ")
		e.writeBlock(st.Body, depth)
		e.printf("\n")

	case ir.TryStmt:
		e.printf("try ")
		e.writeBlock(st.Body, depth)
		if st.CatchParam != "" || st.CatchBody != nil {
			if st.CatchParam != "" {
				e.printf(" catch (%s) ", st.CatchParam)
			} else {
				e.printf(" catch ")
			}
			e.writeBlock(st.CatchBody, depth)
		}
		if st.Finally != nil {
			e.printf(" finally ")
			e.writeBlock(st.Finally, depth)
		}
		e.printf("\n")

	case ir.SwitchStmt:
		e.printf("switch (")
		e.writeExpr(st.Disc)
		e.printf(") {\n")
		for _, c := range st.Cases {
			e.indent(depth + 1)
			if c.Test != nil {
				e.printf("case ")
				e.writeExpr(c.Test)
				e.printf(":\n")
			} else {
				e.printf("default:\n")
			}
			e.writeStmts(c.Body, depth+2)
		}
		e.indent(depth)
		e.printf("}\n")

	case ir.BreakStmt:
		e.printf("break;\n")

	case ir.ContinueStmt:
		e.printf("continue;\n")

	case ir.BlockStmt:
		e.writeBlock(st.Body, depth)
		e.printf("\n")

	case ir.CommentStmt:
		e.printf("// %s\n", st.Text)

	case ir.DebuggerStmt:
		e.printf("debugger;\n")

	default:
		e.printf("// <unhandled statement>\n")
	}
}

func (e *writer) writeExpr(x ir.Expr) {
	switch v := x.(type) {
	case nil:
		e.printf("undefined")
	case ir.NumberLit:
		e.printf("%s", strconv.FormatFloat(v.Value, 'g', -1, 64))
	case ir.StringLit:
		e.printf("%q", v.Value)
	case ir.BoolLit:
		e.printf("%t", v.Value)
	case ir.NullLit:
		e.printf("null")
	case ir.UndefinedLit:
		e.printf("undefined")
	case ir.NaNLit:
		e.printf("NaN")
	case ir.InfinityLit:
		if v.Negative {
			e.printf("-Infinity")
		} else {
			e.printf("Infinity")
		}
	case ir.SymbolLit:
		e.printf("Symbol(%q)", v.Description)
	case ir.HoleLit:
		// elided array element; caller renders the surrounding commas.
	case ir.Ident:
		e.printf("%s", v.Name)
	case ir.ThisExpr:
		e.printf("this")
	case ir.NewTargetExpr:
		e.printf("new.target")
	case ir.ArgumentsExpr:
		e.printf("arguments")
	case ir.GlobalThisExpr:
		e.printf("globalThis")
	case ir.BinaryExpr:
		e.writeExpr(v.Left)
		e.printf(" %s ", string(v.Op))
		e.writeExpr(v.Right)
	case ir.UnaryExpr:
		e.printf("%s", string(v.Op))
		e.writeExpr(v.Operand)
	case ir.TypeofExpr:
		e.printf("typeof ")
		e.writeExpr(v.Operand)
	case ir.MemberExpr:
		e.writeExpr(v.Object)
		if v.Computed {
			e.printf("[")
			e.writeExpr(v.Property)
			e.printf("]")
		} else {
			e.printf(".")
			e.writeExpr(v.Property)
		}
	case ir.CallExpr:
		e.writeExpr(v.Callee)
		e.writeArgs(v.Args)
	case ir.NewExpr:
		e.printf("new ")
		e.writeExpr(v.Callee)
		e.writeArgs(v.Args)
	case ir.SuperCallExpr:
		e.printf("super")
		e.writeArgs(v.Args)
	case ir.ArrayLit:
		e.printf("[")
		for i, el := range v.Elements {
			if i > 0 {
				e.printf(", ")
			}
			e.writeExpr(el)
		}
		e.printf("]")
	case ir.ObjectLit:
		e.printf("{")
		for i, p := range v.Props {
			if i > 0 {
				e.printf(", ")
			}
			if p.Computed {
				e.printf("[")
				e.writeExpr(p.Key)
				e.printf("]")
			} else {
				e.writeExpr(p.Key)
			}
			e.printf(": ")
			e.writeExpr(p.Value)
		}
		e.printf("}")
	case ir.TemplateLit:
		e.printf("`")
		for i, q := range v.Quasis {
			e.printf("%s", q)
			if i < len(v.Exprs) {
				e.printf("${")
				e.writeExpr(v.Exprs[i])
				e.printf("}")
			}
		}
		e.printf("`")
	case ir.ConditionalExpr:
		e.writeExpr(v.Test)
		e.printf(" ? ")
		e.writeExpr(v.Cons)
		e.printf(" : ")
		e.writeExpr(v.Alt)
	case ir.SpreadExpr:
		e.printf("...")
		e.writeExpr(v.Argument)
	case ir.AwaitExpr:
		e.printf("await ")
		e.writeExpr(v.Argument)
	case ir.YieldExpr:
		if v.Delegate {
			e.printf("yield* ")
		} else {
			e.printf("yield ")
		}
		e.writeExpr(v.Argument)
	case ir.AssignmentExpr:
		e.writeExpr(v.Target)
		e.printf(" = ")
		e.writeExpr(v.Value)
	case ir.RegexLit:
		e.printf("/%s/%s", v.Pattern, v.Flags)
	case ir.UnknownExpr:
		e.printf("%s", v.Text)
	default:
		e.printf("/* unhandled expr */")
	}
}

func (e *writer) writeArgs(args []ir.Expr) {
	e.printf("(")
	for i, a := range args {
		if i > 0 {
			e.printf(", ")
		}
		e.writeExpr(a)
	}
	e.printf(")")
}

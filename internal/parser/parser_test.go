package parser

import (
	"strings"
	"testing"

	"minilang/internal/ast"
	"minilang/internal/lexer"
	"minilang/internal/token"
)

func parseSource(t *testing.T, source string) *ast.File {
	t.Helper()
	l := lexer.New(source, "test.mini")
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("unexpected lex diagnostics: %v", lexDiags)
	}
	p := New(tokens)
	file, diags := p.ParseFile()
	if len(diags) > 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	return file
}

func expectParseError(t *testing.T, source, code, contains string) {
	t.Helper()
	l := lexer.New(source, "test.mini")
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("unexpected lex diagnostics: %v", lexDiags)
	}
	p := New(tokens)
	_, diags := p.ParseFile()
	if len(diags) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d: %v", len(diags), diags)
	}
	d := diags[0]
	if d.Code != code {
		t.Errorf("expected code %s, got %s (%v)", code, d.Code, d)
	}
	if !strings.Contains(d.Message, contains) {
		t.Errorf("expected message containing %q, got %q", contains, d.Message)
	}
}

// ---- statements ----

func TestParseAssignment(t *testing.T) {
	file := parseSource(t, `x = 1 + 2`)
	if len(file.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(file.Body))
	}
	assign, ok := file.Body[0].(*ast.AssignStmt)
	if !ok {
		t.Fatalf("expected AssignStmt, got %T", file.Body[0])
	}
	target, ok := assign.Target.(*ast.IdentExpr)
	if !ok || target.Name != "x" {
		t.Errorf("expected target ident x, got %#v", assign.Target)
	}
	if _, ok := assign.Value.(*ast.BinaryExpr); !ok {
		t.Errorf("expected BinaryExpr value, got %T", assign.Value)
	}
}

func TestParseIndexAssignment(t *testing.T) {
	file := parseSource(t, `lst[0] = 5`)
	assign := file.Body[0].(*ast.AssignStmt)
	if _, ok := assign.Target.(*ast.IndexExpr); !ok {
		t.Errorf("expected IndexExpr target, got %T", assign.Target)
	}
}

func TestParseIfElifElse(t *testing.T) {
	file := parseSource(t, `
if a {
  x = 1
} elif b {
  x = 2
} elif c {
  x = 3
} else {
  x = 4
}
`)
	stmt := file.Body[0].(*ast.IfStmt)
	if len(stmt.Elifs) != 2 {
		t.Errorf("expected 2 elif clauses, got %d", len(stmt.Elifs))
	}
	if stmt.ElseBody == nil {
		t.Error("expected else body")
	}
}

func TestParseColonBody(t *testing.T) {
	file := parseSource(t, `if x > 0: print("Positivo")`)
	stmt := file.Body[0].(*ast.IfStmt)
	if len(stmt.Body.Stmts) != 1 {
		t.Fatalf("expected a single statement body, got %d", len(stmt.Body.Stmts))
	}
	if _, ok := stmt.Body.Stmts[0].(*ast.ExprStmt); !ok {
		t.Errorf("expected ExprStmt in colon body, got %T", stmt.Body.Stmts[0])
	}
}

func TestParseWhile(t *testing.T) {
	file := parseSource(t, `
while i < 10 {
  i = i + 1
}
`)
	stmt := file.Body[0].(*ast.WhileStmt)
	if _, ok := stmt.Condition.(*ast.BinaryExpr); !ok {
		t.Errorf("expected BinaryExpr condition, got %T", stmt.Condition)
	}
}

func TestParseForIn(t *testing.T) {
	file := parseSource(t, `
for item in [1, 2, 3] {
  print(item)
}
`)
	stmt := file.Body[0].(*ast.ForInStmt)
	if stmt.VarName != "item" {
		t.Errorf("expected loop var item, got %q", stmt.VarName)
	}
	if _, ok := stmt.Iterable.(*ast.ListLiteral); !ok {
		t.Errorf("expected ListLiteral iterable, got %T", stmt.Iterable)
	}
}

func TestParseFuncDecl(t *testing.T) {
	file := parseSource(t, `
func add(a, b) {
  return a + b
}
`)
	decl := file.Body[0].(*ast.FuncDecl)
	if decl.Name != "add" {
		t.Errorf("expected name add, got %q", decl.Name)
	}
	if len(decl.Params) != 2 || decl.Params[0] != "a" || decl.Params[1] != "b" {
		t.Errorf("expected params [a b], got %v", decl.Params)
	}
}

func TestParseBareReturn(t *testing.T) {
	file := parseSource(t, `
func f() {
  return
}
`)
	decl := file.Body[0].(*ast.FuncDecl)
	ret := decl.Body.Stmts[0].(*ast.ReturnStmt)
	if ret.Value != nil {
		t.Errorf("expected nil return value, got %#v", ret.Value)
	}
}

// ---- expressions ----

func TestPrecedence(t *testing.T) {
	// 2 + 3 * 4 parses as 2 + (3 * 4)
	file := parseSource(t, `x = 2 + 3 * 4`)
	assign := file.Body[0].(*ast.AssignStmt)
	root := assign.Value.(*ast.BinaryExpr)
	if root.Op != token.PLUS {
		t.Fatalf("expected + at root, got %s", root.Op)
	}
	right := root.Right.(*ast.BinaryExpr)
	if right.Op != token.STAR {
		t.Errorf("expected * on the right, got %s", right.Op)
	}
}

func TestLeftAssociativity(t *testing.T) {
	// 10 - 2 - 3 parses as (10 - 2) - 3
	file := parseSource(t, `x = 10 - 2 - 3`)
	root := file.Body[0].(*ast.AssignStmt).Value.(*ast.BinaryExpr)
	if _, ok := root.Left.(*ast.BinaryExpr); !ok {
		t.Errorf("expected BinaryExpr on the left, got %T", root.Left)
	}
	if _, ok := root.Right.(*ast.IntLiteral); !ok {
		t.Errorf("expected IntLiteral on the right, got %T", root.Right)
	}
}

func TestLogicalPrecedence(t *testing.T) {
	// a or b and c parses as a or (b and c)
	file := parseSource(t, `x = a or b and c`)
	root := file.Body[0].(*ast.AssignStmt).Value.(*ast.BinaryExpr)
	if root.Op != token.KW_OR {
		t.Fatalf("expected or at root, got %s", root.Op)
	}
	right := root.Right.(*ast.BinaryExpr)
	if right.Op != token.KW_AND {
		t.Errorf("expected and on the right, got %s", right.Op)
	}
}

func TestNotBinding(t *testing.T) {
	// not a == b parses as not (a == b)
	file := parseSource(t, `x = not a == b`)
	root := file.Body[0].(*ast.AssignStmt).Value.(*ast.UnaryExpr)
	if _, ok := root.Operand.(*ast.BinaryExpr); !ok {
		t.Errorf("expected comparison under not, got %T", root.Operand)
	}
}

func TestUnaryMinusBinding(t *testing.T) {
	// -a * b parses as (-a) * b
	file := parseSource(t, `x = -a * b`)
	root := file.Body[0].(*ast.AssignStmt).Value.(*ast.BinaryExpr)
	if root.Op != token.STAR {
		t.Fatalf("expected * at root, got %s", root.Op)
	}
	if _, ok := root.Left.(*ast.UnaryExpr); !ok {
		t.Errorf("expected UnaryExpr on the left, got %T", root.Left)
	}
}

func TestParseGrouping(t *testing.T) {
	file := parseSource(t, `x = (2 + 3) * 4`)
	root := file.Body[0].(*ast.AssignStmt).Value.(*ast.BinaryExpr)
	if root.Op != token.STAR {
		t.Fatalf("expected * at root, got %s", root.Op)
	}
	if _, ok := root.Left.(*ast.BinaryExpr); !ok {
		t.Errorf("expected grouped BinaryExpr on the left, got %T", root.Left)
	}
}

func TestParseCallChain(t *testing.T) {
	file := parseSource(t, `x = f(1)(2)`)
	outer := file.Body[0].(*ast.AssignStmt).Value.(*ast.CallExpr)
	if _, ok := outer.Callee.(*ast.CallExpr); !ok {
		t.Errorf("expected nested CallExpr callee, got %T", outer.Callee)
	}
}

func TestParseIndexChain(t *testing.T) {
	file := parseSource(t, `x = m[0][1]`)
	outer := file.Body[0].(*ast.AssignStmt).Value.(*ast.IndexExpr)
	if _, ok := outer.Object.(*ast.IndexExpr); !ok {
		t.Errorf("expected nested IndexExpr object, got %T", outer.Object)
	}
}

func TestParseListLiteral(t *testing.T) {
	file := parseSource(t, `x = [1, "two", [3]]`)
	lit := file.Body[0].(*ast.AssignStmt).Value.(*ast.ListLiteral)
	if len(lit.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(lit.Elements))
	}
	if _, ok := lit.Elements[2].(*ast.ListLiteral); !ok {
		t.Errorf("expected nested list, got %T", lit.Elements[2])
	}
}

func TestParseTrailingComma(t *testing.T) {
	file := parseSource(t, `x = [1, 2, 3,]`)
	lit := file.Body[0].(*ast.AssignStmt).Value.(*ast.ListLiteral)
	if len(lit.Elements) != 3 {
		t.Errorf("expected 3 elements with trailing comma, got %d", len(lit.Elements))
	}
}

func TestMultilineList(t *testing.T) {
	file := parseSource(t, `
x = [
  1,
  2,
]
`)
	lit := file.Body[0].(*ast.AssignStmt).Value.(*ast.ListLiteral)
	if len(lit.Elements) != 2 {
		t.Errorf("expected 2 elements, got %d", len(lit.Elements))
	}
}

// ---- error cases ----

func TestErrMissingBody(t *testing.T) {
	expectParseError(t, `if x > 0 print("a")`, "E2003", "expected ':' or '{'")
}

func TestErrMissingExpr(t *testing.T) {
	expectParseError(t, `x = `, "E2002", "expected expression")
	expectParseError(t, `x = 1 + `, "E2002", "expected expression")
}

func TestErrUnclosedParen(t *testing.T) {
	expectParseError(t, `x = (1 + 2`, "E2001", "expected ')'")
}

func TestErrInvalidAssignTarget(t *testing.T) {
	expectParseError(t, `1 + 2 = 3`, "E2004", "invalid assignment target")
	expectParseError(t, `f() = 3`, "E2004", "invalid assignment target")
}

func TestErrReturnOutsideFunction(t *testing.T) {
	expectParseError(t, `return 1`, "E2005", "return outside of function")
}

func TestErrBreakOutsideLoop(t *testing.T) {
	expectParseError(t, `break`, "E2006", "break outside of loop")
	expectParseError(t, `continue`, "E2006", "continue outside of loop")
}

func TestErrBreakInFuncInsideLoop(t *testing.T) {
	// A function boundary resets the loop context.
	expectParseError(t, `
while true {
  func f() {
    break
  }
}
`, "E2006", "break outside of loop")
}

func TestErrIntOverflow(t *testing.T) {
	expectParseError(t, `x = 99999999999999999999`, "E2007", "out of range")
}

func TestErrStatementRunOn(t *testing.T) {
	expectParseError(t, `x = 1 2`, "E2001", "expected newline")
}

func TestFailFastSingleDiagnostic(t *testing.T) {
	// Several errors in sequence still yield exactly one diagnostic.
	l := lexer.New("x = \ny = \nz = ", "test.mini")
	tokens, _ := l.Tokenize()
	p := New(tokens)
	_, diags := p.ParseFile()
	if len(diags) != 1 {
		t.Errorf("expected a single diagnostic, got %d: %v", len(diags), diags)
	}
}

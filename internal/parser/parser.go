// Package parser implements syntax analysis for minilang.
// It uses Pratt parsing for expressions and recursive descent for statements.
// Parsing is fail-fast: the first grammar violation aborts the entire parse.
package parser

import (
	"fmt"
	"strconv"

	"minilang/internal/ast"
	"minilang/internal/diag"
	"minilang/internal/span"
	"minilang/internal/token"
)

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpOr         = 10 // or
	bpAnd        = 20 // and
	bpNot        = 30 // not (prefix)
	bpComparison = 40 // == != < <= > >=
	bpAdditive   = 50 // + -
	bpMultiply   = 60 // * / %
	bpUnary      = 70 // - (prefix)
	bpPostfix    = 80 // () []
)

// infixBP returns the left binding power for an infix/postfix operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.KW_OR:
		return bpOr
	case token.KW_AND:
		return bpAnd
	case token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpAdditive
	case token.STAR, token.SLASH, token.PERCENT:
		return bpMultiply
	case token.LPAREN, token.LBRACKET:
		return bpPostfix
	default:
		return bpNone
	}
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int

	failed bool
	diags  []diag.Diagnostic

	loopDepth int
	funcDepth int
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// ParseFile parses the entire file and returns the AST root and diagnostics.
// On a grammar violation the returned AST is truncated at the error and the
// diagnostics slice holds exactly one entry.
func (p *Parser) ParseFile() (*ast.File, []diag.Diagnostic) {
	file := &ast.File{}
	startPos := p.peek().Span.Start

	p.skipNewlines()
	for !p.isAtEnd() && !p.failed {
		stmt := p.parseStmt()
		if stmt != nil {
			file.Body = append(file.Body, stmt)
		}
		p.skipNewlines()
	}

	endPos := p.peek().Span.End
	file.Span = span.Span{Start: startPos, End: endPos}
	return file, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	tok := p.peek()
	found := tok.Kind.String()
	if tok.Kind == token.EOF {
		found = "end of input"
	}
	p.error("E2001", tok.Span, fmt.Sprintf("expected '%s', got '%s'", kind, found))
	return tok, false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

// skipNewlines skips NEWLINE tokens between statements.
func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

// error records the first diagnostic and marks the parse as failed.
// Later errors are dropped: one error aborts the entire parse.
func (p *Parser) error(code string, s span.Span, msg string) {
	if p.failed {
		return
	}
	p.failed = true
	p.diags = append(p.diags, diag.Errorf(code, s, "%s", msg))
}

// ============================================================
// Statement parsing
// ============================================================

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peekKind() {
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.KW_FOR:
		return p.parseForInStmt()
	case token.KW_FUNC:
		return p.parseFuncDecl()
	case token.KW_RETURN:
		return p.parseReturnStmt()
	case token.KW_BREAK:
		return p.parseBreakStmt()
	case token.KW_CONTINUE:
		return p.parseContinueStmt()
	default:
		return p.parseSimpleStmt()
	}
}

// parseIfStmt parses: if expr body { elif expr body } [ else body ]
func (p *Parser) parseIfStmt() *ast.IfStmt {
	start := p.advance() // consume 'if'
	stmt := &ast.IfStmt{}

	stmt.Condition = p.parseExprChecked()
	stmt.Body = p.parseBody()

	for p.check(token.KW_ELIF) && !p.failed {
		elifStart := p.advance() // consume 'elif'
		clause := ast.ElifClause{}
		clause.Condition = p.parseExprChecked()
		clause.Body = p.parseBody()
		clause.Span = p.makeSpan(elifStart.Span.Start)
		stmt.Elifs = append(stmt.Elifs, clause)
	}

	if p.check(token.KW_ELSE) {
		p.advance() // consume 'else'
		stmt.ElseBody = p.parseBody()
	}

	stmt.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt
}

// parseWhileStmt parses: while expr body
func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	start := p.advance() // consume 'while'
	stmt := &ast.WhileStmt{}

	stmt.Condition = p.parseExprChecked()
	p.loopDepth++
	stmt.Body = p.parseBody()
	p.loopDepth--

	stmt.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt
}

// parseForInStmt parses: for IDENT in expr body
func (p *Parser) parseForInStmt() *ast.ForInStmt {
	start := p.advance() // consume 'for'
	stmt := &ast.ForInStmt{}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return stmt
	}
	stmt.VarName = nameTok.Lexeme

	if _, ok := p.expect(token.KW_IN); !ok {
		return stmt
	}

	stmt.Iterable = p.parseExprChecked()
	p.loopDepth++
	stmt.Body = p.parseBody()
	p.loopDepth--

	stmt.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt
}

// parseFuncDecl parses: func IDENT ( params ) body
func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	start := p.advance() // consume 'func'
	decl := &ast.FuncDecl{}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return decl
	}
	decl.Name = nameTok.Lexeme

	decl.Params = p.parseParamList()
	// A function body starts a fresh loop context: break/continue cannot
	// cross a function boundary into an enclosing loop.
	savedLoopDepth := p.loopDepth
	p.loopDepth = 0
	p.funcDepth++
	decl.Body = p.parseBody()
	p.funcDepth--
	p.loopDepth = savedLoopDepth

	decl.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return decl
}

// parseReturnStmt parses: return [expr]
func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	start := p.advance() // consume 'return'
	stmt := &ast.ReturnStmt{}

	if p.funcDepth == 0 {
		p.error("E2005", start.Span, "return outside of function")
		return stmt
	}

	// return may be followed by an expression on the same line
	if !p.check(token.NEWLINE) && !p.check(token.RBRACE) && !p.check(token.EOF) {
		stmt.Value = p.parseExprChecked()
	}

	stmt.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt
}

func (p *Parser) parseBreakStmt() *ast.BreakStmt {
	start := p.advance()
	if p.loopDepth == 0 {
		p.error("E2006", start.Span, "break outside of loop")
	}
	return &ast.BreakStmt{StmtBase: makeStmtBase(start.Span.Start, p.prevEnd())}
}

func (p *Parser) parseContinueStmt() *ast.ContinueStmt {
	start := p.advance()
	if p.loopDepth == 0 {
		p.error("E2006", start.Span, "continue outside of loop")
	}
	return &ast.ContinueStmt{StmtBase: makeStmtBase(start.Span.Start, p.prevEnd())}
}

// parseSimpleStmt parses an expression statement or assignment.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	expr := p.parseExprChecked()
	if p.failed {
		return &ast.ExprStmt{StmtBase: makeStmtBase(p.peek().Span.Start, p.peek().Span.End)}
	}

	// Assignment: target = value
	if p.check(token.ASSIGN) {
		switch expr.(type) {
		case *ast.IdentExpr, *ast.IndexExpr:
		default:
			p.error("E2004", p.peek().Span, "invalid assignment target")
			return &ast.ExprStmt{StmtBase: makeStmtBase(expr.GetSpan().Start, expr.GetSpan().End)}
		}
		p.advance()
		value := p.parseExprChecked()
		p.expectStmtEnd()
		return &ast.AssignStmt{
			StmtBase: makeStmtBase(expr.GetSpan().Start, p.prevEnd()),
			Target:   expr,
			Value:    value,
		}
	}

	p.expectStmtEnd()
	return &ast.ExprStmt{
		StmtBase: makeStmtBase(expr.GetSpan().Start, expr.GetSpan().End),
		Expr:     expr,
	}
}

// expectStmtEnd verifies a simple statement is followed by a newline, a
// closing brace, or end of input. The terminator itself is not consumed.
func (p *Parser) expectStmtEnd() {
	if p.failed {
		return
	}
	switch p.peekKind() {
	case token.NEWLINE, token.RBRACE, token.EOF:
	default:
		tok := p.peek()
		p.error("E2001", tok.Span, fmt.Sprintf("expected newline after statement, got '%s'", tok.Kind))
	}
}

// ============================================================
// Body parsing
// ============================================================

// parseBody parses either a braced block or a colon followed by a single
// statement on the same line.
func (p *Parser) parseBody() *ast.BlockStmt {
	if p.check(token.COLON) {
		start := p.advance() // consume ':'
		block := &ast.BlockStmt{}
		stmt := p.parseStmt()
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		block.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
		return block
	}
	if p.check(token.LBRACE) {
		return p.parseBlock()
	}

	tok := p.peek()
	p.error("E2003", tok.Span, fmt.Sprintf("expected ':' or '{', got '%s'", tok.Kind))
	return &ast.BlockStmt{StmtBase: makeStmtBase(tok.Span.Start, tok.Span.End)}
}

// parseBlock parses: { stmts }
func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.peek()
	block := &ast.BlockStmt{}

	if _, ok := p.expect(token.LBRACE); !ok {
		return block
	}

	p.skipNewlines()
	for !p.check(token.RBRACE) && !p.isAtEnd() && !p.failed {
		stmt := p.parseStmt()
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		p.skipNewlines()
	}

	p.expect(token.RBRACE)
	block.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return block
}

// parseParamList parses: ( ident, ident, ... )
func (p *Parser) parseParamList() []string {
	var params []string

	if _, ok := p.expect(token.LPAREN); !ok {
		return params
	}

	if !p.check(token.RPAREN) {
		nameTok, ok := p.expect(token.IDENT)
		if ok {
			params = append(params, nameTok.Lexeme)
		}
		for p.check(token.COMMA) && !p.failed {
			p.advance() // consume ','
			p.skipNewlines()
			nameTok, ok = p.expect(token.IDENT)
			if ok {
				params = append(params, nameTok.Lexeme)
			}
		}
	}

	p.expect(token.RPAREN)
	return params
}

// ============================================================
// Expression parsing (Pratt / precedence climbing)
// ============================================================

// parseExprChecked parses an expression and reports an error if none is found.
func (p *Parser) parseExprChecked() ast.Expr {
	expr := p.parseExpr(bpNone)
	if expr == nil && !p.failed {
		tok := p.peek()
		found := tok.Lexeme
		if tok.Kind == token.EOF {
			found = "end of input"
		}
		p.error("E2002", tok.Span, fmt.Sprintf("expected expression, got '%s'", found))
	}
	return expr
}

// parseExpr parses an expression with the given minimum binding power.
func (p *Parser) parseExpr(minBP int) ast.Expr {
	left := p.nud()
	if left == nil {
		return nil
	}

	for !p.failed {
		kind := p.peekKind()
		bp := infixBP(kind)
		if bp <= minBP {
			break
		}
		left = p.led(left)
	}

	return left
}

// nud handles prefix (null denotation) parsing.
func (p *Parser) nud() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.INT:
		p.advance()
		val, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.error("E2007", tok.Span, fmt.Sprintf("integer literal out of range: %s", tok.Lexeme))
		}
		return &ast.IntLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    val,
		}

	case token.FLOAT:
		p.advance()
		val, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return &ast.FloatLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    val,
		}

	case token.STRING:
		p.advance()
		return &ast.StringLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Lexeme,
		}

	case token.KW_TRUE:
		p.advance()
		return &ast.BoolLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    true,
		}

	case token.KW_FALSE:
		p.advance()
		return &ast.BoolLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    false,
		}

	case token.IDENT:
		p.advance()
		return &ast.IdentExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Name:     tok.Lexeme,
		}

	case token.LPAREN:
		// Grouped expression: ( expr )
		p.advance() // consume '('
		p.skipNewlines()
		expr := p.parseExprChecked()
		p.skipNewlines()
		p.expect(token.RPAREN)
		return expr

	case token.MINUS:
		// Unary: -expr (binds tighter than * / %)
		p.advance()
		operand := p.parseExpr(bpUnary)
		if operand == nil {
			p.error("E2002", tok.Span, "expected expression after '-'")
			return nil
		}
		return &ast.UnaryExpr{
			ExprBase: makeExprBase(tok.Span.Start, operand.GetSpan().End),
			Op:       token.MINUS,
			Operand:  operand,
		}

	case token.KW_NOT:
		// Unary: not expr (binds looser than comparisons)
		p.advance()
		operand := p.parseExpr(bpNot)
		if operand == nil {
			p.error("E2002", tok.Span, "expected expression after 'not'")
			return nil
		}
		return &ast.UnaryExpr{
			ExprBase: makeExprBase(tok.Span.Start, operand.GetSpan().End),
			Op:       token.KW_NOT,
			Operand:  operand,
		}

	case token.LBRACKET:
		return p.parseListLiteral()

	default:
		return nil
	}
}

// led handles infix/postfix (left denotation) parsing.
func (p *Parser) led(left ast.Expr) ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE,
		token.KW_AND, token.KW_OR:
		// Binary infix operator (left-associative)
		bp := infixBP(tok.Kind)
		p.advance()
		p.skipNewlines() // allow continuation on next line after operator
		right := p.parseExpr(bp)
		if right == nil {
			p.error("E2002", tok.Span, fmt.Sprintf("expected expression after '%s'", tok.Kind))
			return left
		}
		return &ast.BinaryExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, right.GetSpan().End),
			Op:       tok.Kind,
			Left:     left,
			Right:    right,
		}

	case token.LPAREN:
		// Call expression: callee(args)
		return p.parseCallExpr(left)

	case token.LBRACKET:
		// Index expression: object[index]
		p.advance() // consume '['
		p.skipNewlines()
		index := p.parseExprChecked()
		p.skipNewlines()
		end, _ := p.expect(token.RBRACKET)
		return &ast.IndexExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, end.Span.End),
			Object:   left,
			Index:    index,
		}

	default:
		return left
	}
}

// parseCallExpr parses: callee ( args )
func (p *Parser) parseCallExpr(callee ast.Expr) *ast.CallExpr {
	p.advance() // consume '('
	var args []ast.Expr

	p.skipNewlines()
	if !p.check(token.RPAREN) {
		args = append(args, p.parseExprChecked())
		for p.check(token.COMMA) && !p.failed {
			p.advance() // consume ','
			p.skipNewlines()
			args = append(args, p.parseExprChecked())
		}
	}
	p.skipNewlines()
	end, _ := p.expect(token.RPAREN)

	return &ast.CallExpr{
		ExprBase: makeExprBase(callee.GetSpan().Start, end.Span.End),
		Callee:   callee,
		Args:     args,
	}
}

// parseListLiteral parses: [ expr, expr, ... ]
func (p *Parser) parseListLiteral() *ast.ListLiteral {
	start := p.advance() // consume '['
	var elements []ast.Expr

	p.skipNewlines()
	if !p.check(token.RBRACKET) {
		elements = append(elements, p.parseExprChecked())
		for p.check(token.COMMA) && !p.failed {
			p.advance() // consume ','
			p.skipNewlines()
			if p.check(token.RBRACKET) {
				break // trailing comma
			}
			elements = append(elements, p.parseExprChecked())
		}
	}
	p.skipNewlines()
	end, _ := p.expect(token.RBRACKET)

	return &ast.ListLiteral{
		ExprBase: makeExprBase(start.Span.Start, end.Span.End),
		Elements: elements,
	}
}

// ============================================================
// Span helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func (p *Parser) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: p.prevEnd()}
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func makeStmtBase(start, end span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

// Package ast defines the abstract syntax tree for minilang.
// The tree is built once per parse and never mutated afterward.
package ast

import (
	"minilang/internal/span"
	"minilang/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// File (top-level AST root)
// ============================================================

// File represents an entire source file: a sequence of statements.
type File struct {
	NodeBase
	Body []Stmt
}

// ============================================================
// Expressions
// ============================================================

// IdentExpr represents an identifier reference.
type IdentExpr struct {
	ExprBase
	Name string
}

// IntLiteral represents an integer literal.
type IntLiteral struct {
	ExprBase
	Value int64
}

// FloatLiteral represents a floating-point literal.
type FloatLiteral struct {
	ExprBase
	Value float64
}

// StringLiteral represents a string literal.
type StringLiteral struct {
	ExprBase
	Value string
}

// BoolLiteral represents true or false.
type BoolLiteral struct {
	ExprBase
	Value bool
}

// UnaryExpr represents a unary operation: -x, not x.
type UnaryExpr struct {
	ExprBase
	Op      token.Kind
	Operand Expr
}

// BinaryExpr represents a binary operation: a + b, x == y, a and b.
type BinaryExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// CallExpr represents a function call: f(a, b).
type CallExpr struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

// IndexExpr represents indexing: a[i].
type IndexExpr struct {
	ExprBase
	Object Expr
	Index  Expr
}

// ListLiteral represents a list literal: [a, b, c].
type ListLiteral struct {
	ExprBase
	Elements []Expr
}

// ============================================================
// Statements
// ============================================================

// ExprStmt wraps an expression used as a statement.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// AssignStmt represents an assignment: target = value.
// Target is an IdentExpr or IndexExpr.
type AssignStmt struct {
	StmtBase
	Target Expr
	Value  Expr
}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	StmtBase
	Value Expr // may be nil
}

// BreakStmt represents a break statement.
type BreakStmt struct {
	StmtBase
}

// ContinueStmt represents a continue statement.
type ContinueStmt struct {
	StmtBase
}

// BlockStmt represents a statement body: { ... } or a single
// colon-introduced statement.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// IfStmt represents an if/elif/else chain.
type IfStmt struct {
	StmtBase
	Condition Expr
	Body      *BlockStmt
	Elifs     []ElifClause
	ElseBody  *BlockStmt // may be nil
}

// ElifClause represents a single "elif" branch.
type ElifClause struct {
	Span      span.Span
	Condition Expr
	Body      *BlockStmt
}

// WhileStmt represents a while loop.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      *BlockStmt
}

// ForInStmt represents a for-in loop: for name in iterable { body }.
type ForInStmt struct {
	StmtBase
	VarName  string
	Iterable Expr
	Body     *BlockStmt
}

// FuncDecl represents a function definition: func name(params) { body }.
type FuncDecl struct {
	StmtBase
	Name   string
	Params []string
	Body   *BlockStmt
}

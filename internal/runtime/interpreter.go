package runtime

import (
	"io"

	"minilang/internal/ast"
	"minilang/internal/span"
	"minilang/internal/token"
)

// ============================================================
// Control flow signals
// ============================================================

// ExecSignal represents a control flow signal from statement execution.
type ExecSignal int

const (
	SigNone     ExecSignal = iota
	SigReturn              // return from function
	SigBreak               // break from loop
	SigContinue            // continue in loop
)

// ExecResult carries a control flow signal and an optional value (for return).
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

var resultNone = ExecResult{Signal: SigNone}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the AST and executes it against an environment chain.
type Interpreter struct {
	global   *Environment
	env      *Environment
	builtins map[string]Value
	output   io.Writer
}

// NewInterpreter creates a new interpreter writing print output to the
// given writer. The builtin table is constructed once here and never
// mutated afterwards.
func NewInterpreter(output io.Writer) *Interpreter {
	global := NewEnvironment(nil)
	return &Interpreter{
		global:   global,
		env:      global,
		builtins: Builtins(output),
		output:   output,
	}
}

// Run executes the entire AST file. Statements already executed keep their
// side effects even when a later statement fails. The file should come from
// a parse that reported no diagnostics; a truncated tree fails with an
// error rather than executing partially.
func (i *Interpreter) Run(file *ast.File) error {
	for _, stmt := range file.Body {
		if _, err := i.execStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RunInteractive executes a file like Run but returns the value of the
// final statement when it is a bare expression, so a REPL can echo it.
// Any other final statement yields a nil value.
func (i *Interpreter) RunInteractive(file *ast.File) (Value, error) {
	var last Value
	for _, stmt := range file.Body {
		last = nil
		if es, ok := stmt.(*ast.ExprStmt); ok && es.Expr != nil {
			val, err := i.evalExpr(es.Expr)
			if err != nil {
				return nil, err
			}
			last = val
			continue
		}
		if _, err := i.execStmt(stmt); err != nil {
			return nil, err
		}
	}
	return last, nil
}

// Env returns the current environment (useful for the REPL).
func (i *Interpreter) Env() *Environment {
	return i.env
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt) (ExecResult, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		if s.Expr == nil {
			return resultNone, nil
		}
		_, err := i.evalExpr(s.Expr)
		return resultNone, err

	case *ast.AssignStmt:
		return i.execAssign(s)

	case *ast.ReturnStmt:
		var val Value = UnitVal{}
		if s.Value != nil {
			v, err := i.evalExpr(s.Value)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		return ExecResult{Signal: SigReturn, Value: val}, nil

	case *ast.BreakStmt:
		return ExecResult{Signal: SigBreak}, nil

	case *ast.ContinueStmt:
		return ExecResult{Signal: SigContinue}, nil

	case *ast.IfStmt:
		return i.execIf(s)

	case *ast.WhileStmt:
		return i.execWhile(s)

	case *ast.ForInStmt:
		return i.execForIn(s)

	case *ast.FuncDecl:
		fn := &FuncVal{
			Name:    s.Name,
			Params:  s.Params,
			Body:    s.Body,
			Closure: i.env,
		}
		i.env.Define(s.Name, fn)
		return resultNone, nil

	case *ast.BlockStmt:
		return i.execBlock(s, NewEnvironment(i.env))

	default:
		return resultNone, runtimeErr(TypeMismatch, stmt.GetSpan(), "unhandled statement type: %T", stmt)
	}
}

func (i *Interpreter) execAssign(s *ast.AssignStmt) (ExecResult, error) {
	val, err := i.evalExpr(s.Value)
	if err != nil {
		return resultNone, err
	}

	switch target := s.Target.(type) {
	case *ast.IdentExpr:
		i.env.Assign(target.Name, val)
	case *ast.IndexExpr:
		obj, err := i.evalExpr(target.Object)
		if err != nil {
			return resultNone, err
		}
		idx, err := i.evalExpr(target.Index)
		if err != nil {
			return resultNone, err
		}
		lst, ok := obj.(*ListVal)
		if !ok {
			return resultNone, runtimeErr(TypeMismatch, s.GetSpan(), "cannot index-assign value of type '%s'", obj.TypeName())
		}
		idxInt, ok := ToInt64(idx)
		if !ok {
			return resultNone, runtimeErr(TypeMismatch, target.Index.GetSpan(), "list index must be an int, got '%s'", idx.TypeName())
		}
		if idxInt < 0 || int(idxInt) >= len(lst.Elements) {
			return resultNone, runtimeErr(IndexOutOfRange, s.GetSpan(), "list index %d out of range (length %d)", idxInt, len(lst.Elements))
		}
		lst.Elements[idxInt] = val
	default:
		return resultNone, runtimeErr(TypeMismatch, s.GetSpan(), "invalid assignment target")
	}
	return resultNone, nil
}

func (i *Interpreter) execIf(s *ast.IfStmt) (ExecResult, error) {
	cond, err := i.evalExpr(s.Condition)
	if err != nil {
		return resultNone, err
	}

	if IsTruthy(cond) {
		return i.execBlock(s.Body, NewEnvironment(i.env))
	}

	for _, elif := range s.Elifs {
		cond, err := i.evalExpr(elif.Condition)
		if err != nil {
			return resultNone, err
		}
		if IsTruthy(cond) {
			return i.execBlock(elif.Body, NewEnvironment(i.env))
		}
	}

	if s.ElseBody != nil {
		return i.execBlock(s.ElseBody, NewEnvironment(i.env))
	}

	return resultNone, nil
}

func (i *Interpreter) execWhile(s *ast.WhileStmt) (ExecResult, error) {
	for {
		cond, err := i.evalExpr(s.Condition)
		if err != nil {
			return resultNone, err
		}
		if !IsTruthy(cond) {
			break
		}

		result, err := i.execBlock(s.Body, NewEnvironment(i.env))
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigBreak {
			break
		}
		if result.Signal == SigReturn {
			return result, nil // propagate return
		}
		// SigContinue: just continue the loop
	}
	return resultNone, nil
}

func (i *Interpreter) execForIn(s *ast.ForInStmt) (ExecResult, error) {
	iterable, err := i.evalExpr(s.Iterable)
	if err != nil {
		return resultNone, err
	}

	lst, ok := iterable.(*ListVal)
	if !ok {
		return resultNone, runtimeErr(TypeMismatch, s.Iterable.GetSpan(), "for-in requires a list, got '%s'", iterable.TypeName())
	}

	for _, elem := range lst.Elements {
		loopEnv := NewEnvironment(i.env)
		loopEnv.Define(s.VarName, elem)

		result, err := i.execBlock(s.Body, loopEnv)
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigBreak {
			break
		}
		if result.Signal == SigReturn {
			return result, nil
		}
		// SigContinue: next element
	}

	return resultNone, nil
}

// execBlock executes a block's statements in the given environment,
// propagating control flow signals to the caller.
func (i *Interpreter) execBlock(block *ast.BlockStmt, blockEnv *Environment) (ExecResult, error) {
	prevEnv := i.env
	i.env = blockEnv
	defer func() { i.env = prevEnv }()

	for _, stmt := range block.Stmts {
		result, err := i.execStmt(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.Signal != SigNone {
			return result, nil // propagate signal
		}
	}
	return resultNone, nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	// A failed parse leaves nil expressions in the tree.
	if expr == nil {
		return nil, &Error{Kind: TypeMismatch, Message: "cannot evaluate incomplete expression"}
	}

	switch e := expr.(type) {
	case *ast.IntLiteral:
		return IntVal(e.Value), nil
	case *ast.FloatLiteral:
		return FloatVal(e.Value), nil
	case *ast.StringLiteral:
		return StringVal(e.Value), nil
	case *ast.BoolLiteral:
		return BoolVal(e.Value), nil
	case *ast.IdentExpr:
		return i.evalIdent(e)
	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	case *ast.CallExpr:
		return i.evalCall(e)
	case *ast.IndexExpr:
		return i.evalIndex(e)
	case *ast.ListLiteral:
		return i.evalListLiteral(e)
	default:
		return nil, runtimeErr(TypeMismatch, expr.GetSpan(), "unhandled expression type: %T", expr)
	}
}

// evalIdent resolves a name through the environment chain, falling back to
// the builtin table.
func (i *Interpreter) evalIdent(e *ast.IdentExpr) (Value, error) {
	if val, ok := i.env.Get(e.Name); ok {
		return val, nil
	}
	if val, ok := i.builtins[e.Name]; ok {
		return val, nil
	}
	return nil, runtimeErr(UndefinedVariable, e.GetSpan(), "undefined variable '%s'", e.Name)
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := i.evalExpr(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.KW_NOT:
		return BoolVal(!IsTruthy(operand)), nil
	case token.MINUS:
		switch v := operand.(type) {
		case IntVal:
			return IntVal(-int64(v)), nil
		case FloatVal:
			return FloatVal(-float64(v)), nil
		default:
			return nil, runtimeErr(TypeMismatch, e.GetSpan(), "cannot negate value of type '%s'", operand.TypeName())
		}
	default:
		return nil, runtimeErr(TypeMismatch, e.GetSpan(), "unknown unary operator: %s", e.Op)
	}
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	// Short-circuit for logical operators
	if e.Op == token.KW_AND || e.Op == token.KW_OR {
		return i.evalLogical(e)
	}

	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	// Equality is structural and defined across all types.
	if e.Op == token.EQ {
		return BoolVal(valuesEqual(left, right)), nil
	}
	if e.Op == token.NEQ {
		return BoolVal(!valuesEqual(left, right)), nil
	}

	// String operands: concatenation and lexicographic ordering. A string
	// paired with any other type is a type mismatch.
	leftStr, leftIsStr := left.(StringVal)
	rightStr, rightIsStr := right.(StringVal)
	if leftIsStr || rightIsStr {
		if !leftIsStr || !rightIsStr {
			return nil, runtimeErr(TypeMismatch, e.GetSpan(),
				"cannot apply '%s' to '%s' and '%s'", e.Op, left.TypeName(), right.TypeName())
		}
		switch e.Op {
		case token.PLUS:
			return StringVal(string(leftStr) + string(rightStr)), nil
		case token.LT:
			return BoolVal(leftStr < rightStr), nil
		case token.LTE:
			return BoolVal(leftStr <= rightStr), nil
		case token.GT:
			return BoolVal(leftStr > rightStr), nil
		case token.GTE:
			return BoolVal(leftStr >= rightStr), nil
		default:
			return nil, runtimeErr(TypeMismatch, e.GetSpan(),
				"cannot apply '%s' to strings", e.Op)
		}
	}

	// Int pairs stay on int64 end to end so arithmetic is exact for the
	// full literal range; float64 would round past 2^53.
	if li, lok := left.(IntVal); lok {
		if ri, rok := right.(IntVal); rok {
			return i.evalIntBinary(e, int64(li), int64(ri))
		}
	}

	// Mixed Int/Float or Float/Float promotes to Float.
	leftF, leftOk := ToFloat64(left)
	rightF, rightOk := ToFloat64(right)
	if !leftOk || !rightOk {
		return nil, runtimeErr(TypeMismatch, e.GetSpan(),
			"cannot apply '%s' to '%s' and '%s'", e.Op, left.TypeName(), right.TypeName())
	}

	switch e.Op {
	case token.PLUS:
		return FloatVal(leftF + rightF), nil
	case token.MINUS:
		return FloatVal(leftF - rightF), nil
	case token.STAR:
		return FloatVal(leftF * rightF), nil
	case token.SLASH:
		if rightF == 0 {
			return nil, runtimeErr(DivisionByZero, e.GetSpan(), "division by zero")
		}
		return FloatVal(leftF / rightF), nil
	case token.PERCENT:
		return nil, runtimeErr(TypeMismatch, e.GetSpan(), "modulo requires int operands")
	case token.LT:
		return BoolVal(leftF < rightF), nil
	case token.LTE:
		return BoolVal(leftF <= rightF), nil
	case token.GT:
		return BoolVal(leftF > rightF), nil
	case token.GTE:
		return BoolVal(leftF >= rightF), nil
	default:
		return nil, runtimeErr(TypeMismatch, e.GetSpan(), "unknown binary operator: %s", e.Op)
	}
}

// evalIntBinary applies a binary operator to two int operands.
func (i *Interpreter) evalIntBinary(e *ast.BinaryExpr, left, right int64) (Value, error) {
	switch e.Op {
	case token.PLUS:
		return IntVal(left + right), nil
	case token.MINUS:
		return IntVal(left - right), nil
	case token.STAR:
		return IntVal(left * right), nil
	case token.SLASH:
		if right == 0 {
			return nil, runtimeErr(DivisionByZero, e.GetSpan(), "division by zero")
		}
		return IntVal(left / right), nil
	case token.PERCENT:
		if right == 0 {
			return nil, runtimeErr(DivisionByZero, e.GetSpan(), "division by zero")
		}
		return IntVal(left % right), nil
	case token.LT:
		return BoolVal(left < right), nil
	case token.LTE:
		return BoolVal(left <= right), nil
	case token.GT:
		return BoolVal(left > right), nil
	case token.GTE:
		return BoolVal(left >= right), nil
	default:
		return nil, runtimeErr(TypeMismatch, e.GetSpan(), "unknown binary operator: %s", e.Op)
	}
}

// evalLogical evaluates 'and'/'or' with short-circuiting. The result is
// always a Bool.
func (i *Interpreter) evalLogical(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op == token.KW_OR {
		if IsTruthy(left) {
			return BoolVal(true), nil
		}
	} else {
		if !IsTruthy(left) {
			return BoolVal(false), nil
		}
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}
	return BoolVal(IsTruthy(right)), nil
}

func (i *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	callee, err := i.evalExpr(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(e.Args))
	for idx, argExpr := range e.Args {
		val, err := i.evalExpr(argExpr)
		if err != nil {
			return nil, err
		}
		args[idx] = val
	}

	return i.callValue(callee, args, e.GetSpan())
}

func (i *Interpreter) callValue(callee Value, args []Value, s span.Span) (Value, error) {
	switch fn := callee.(type) {
	case *FuncVal:
		return i.callFunc(fn, args, s)
	case *BuiltinVal:
		val, err := fn.Fn(args)
		if err != nil {
			if rerr, ok := err.(*Error); ok && rerr.Span.IsZero() {
				rerr.Span = s
			}
			return nil, err
		}
		return val, nil
	default:
		return nil, runtimeErr(TypeMismatch, s, "cannot call value of type '%s'", callee.TypeName())
	}
}

// callFunc invokes a user-defined function. The call environment's parent is
// the function's closure environment, not the caller's (lexical scoping).
func (i *Interpreter) callFunc(fn *FuncVal, args []Value, s span.Span) (Value, error) {
	if len(args) != len(fn.Params) {
		return nil, runtimeErr(ArityMismatch, s, "%s() expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}

	funcEnv := NewEnvironment(fn.Closure)
	for idx, param := range fn.Params {
		funcEnv.Define(param, args[idx])
	}

	result, err := i.execBlock(fn.Body, funcEnv)
	if err != nil {
		return nil, err
	}

	if result.Signal == SigReturn {
		return result.Value, nil
	}
	return UnitVal{}, nil
}

func (i *Interpreter) evalIndex(e *ast.IndexExpr) (Value, error) {
	obj, err := i.evalExpr(e.Object)
	if err != nil {
		return nil, err
	}
	idx, err := i.evalExpr(e.Index)
	if err != nil {
		return nil, err
	}

	switch o := obj.(type) {
	case *ListVal:
		idxInt, ok := ToInt64(idx)
		if !ok {
			return nil, runtimeErr(TypeMismatch, e.Index.GetSpan(), "list index must be an int, got '%s'", idx.TypeName())
		}
		if idxInt < 0 || int(idxInt) >= len(o.Elements) {
			return nil, runtimeErr(IndexOutOfRange, e.GetSpan(), "list index %d out of range (length %d)", idxInt, len(o.Elements))
		}
		return o.Elements[idxInt], nil
	case StringVal:
		idxInt, ok := ToInt64(idx)
		if !ok {
			return nil, runtimeErr(TypeMismatch, e.Index.GetSpan(), "string index must be an int, got '%s'", idx.TypeName())
		}
		// Index by code point, consistent with len().
		runes := []rune(string(o))
		if idxInt < 0 || int(idxInt) >= len(runes) {
			return nil, runtimeErr(IndexOutOfRange, e.GetSpan(), "string index %d out of range (length %d)", idxInt, len(runes))
		}
		return StringVal(string(runes[idxInt])), nil
	default:
		return nil, runtimeErr(TypeMismatch, e.GetSpan(), "cannot index value of type '%s'", obj.TypeName())
	}
}

func (i *Interpreter) evalListLiteral(e *ast.ListLiteral) (Value, error) {
	elements := make([]Value, len(e.Elements))
	for idx, elemExpr := range e.Elements {
		val, err := i.evalExpr(elemExpr)
		if err != nil {
			return nil, err
		}
		elements[idx] = val
	}
	return &ListVal{Elements: elements}, nil
}

// Package runtime implements the interpreter and runtime value system for minilang.
package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"minilang/internal/ast"
)

// Value is the interface for all runtime values.
type Value interface {
	TypeName() string
	String() string
}

// ---- Scalar values ----

// IntVal represents an integer value.
type IntVal int64

func (v IntVal) TypeName() string { return "int" }
func (v IntVal) String() string   { return strconv.FormatInt(int64(v), 10) }

// FloatVal represents a floating-point value.
type FloatVal float64

func (v FloatVal) TypeName() string { return "float" }

// String renders the shortest representation that round-trips, forcing a
// ".0" suffix when the result would otherwise look like an integer.
func (v FloatVal) String() string {
	s := strconv.FormatFloat(float64(v), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// StringVal represents a string value.
type StringVal string

func (v StringVal) TypeName() string { return "string" }
func (v StringVal) String() string   { return string(v) }

// BoolVal represents a boolean value.
type BoolVal bool

func (v BoolVal) TypeName() string { return "bool" }
func (v BoolVal) String() string   { return strconv.FormatBool(bool(v)) }

// UnitVal is the result of statements and of functions that fall off the
// end of their body without an explicit return.
type UnitVal struct{}

func (v UnitVal) TypeName() string { return "unit" }
func (v UnitVal) String() string   { return "unit" }

// ---- List value ----

// ListVal represents a mutable ordered sequence of values. Lists are
// reference-shared across assignment and call boundaries.
type ListVal struct {
	Elements []Value
}

func (v *ListVal) TypeName() string { return "list" }
func (v *ListVal) String() string {
	parts := make([]string, len(v.Elements))
	for i, elem := range v.Elements {
		if s, ok := elem.(StringVal); ok {
			parts[i] = fmt.Sprintf("%q", string(s))
		} else {
			parts[i] = elem.String()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ---- Callable values ----

// FuncVal represents a user-defined function (closure).
type FuncVal struct {
	Name    string
	Params  []string
	Body    *ast.BlockStmt
	Closure *Environment
}

func (v *FuncVal) TypeName() string { return "function" }
func (v *FuncVal) String() string   { return fmt.Sprintf("<function %s>", v.Name) }

// BuiltinFn is the Go signature for built-in functions.
type BuiltinFn func(args []Value) (Value, error)

// BuiltinVal represents a built-in (native) function.
type BuiltinVal struct {
	Name string
	Fn   BuiltinFn
}

func (v *BuiltinVal) TypeName() string { return "builtin" }
func (v *BuiltinVal) String() string   { return fmt.Sprintf("<builtin %s>", v.Name) }

// ---- Truthiness ----

// IsTruthy maps a value to a boolean for use in conditionals: zero numbers,
// the empty string, the empty list, false, and unit are falsy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case UnitVal:
		return false
	case BoolVal:
		return bool(val)
	case IntVal:
		return int64(val) != 0
	case FloatVal:
		return float64(val) != 0
	case StringVal:
		return string(val) != ""
	case *ListVal:
		return len(val.Elements) > 0
	default:
		return true
	}
}

// ---- Equality ----

// valuesEqual implements structural equality: numbers compare across
// Int/Float, lists compare pairwise, functions compare by identity.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case IntVal:
		if bv, ok := b.(IntVal); ok {
			return int64(av) == int64(bv)
		}
		if bv, ok := b.(FloatVal); ok {
			return float64(av) == float64(bv)
		}
		return false
	case FloatVal:
		if bv, ok := b.(FloatVal); ok {
			return float64(av) == float64(bv)
		}
		if bv, ok := b.(IntVal); ok {
			return float64(av) == float64(bv)
		}
		return false
	case StringVal:
		bv, ok := b.(StringVal)
		return ok && string(av) == string(bv)
	case BoolVal:
		bv, ok := b.(BoolVal)
		return ok && bool(av) == bool(bv)
	case UnitVal:
		_, ok := b.(UnitVal)
		return ok
	case *ListVal:
		bv, ok := b.(*ListVal)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !valuesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	default:
		// Identity for functions and builtins.
		return a == b
	}
}

// ---- Helpers ----

// ValuesString formats a slice of values with a separator.
func ValuesString(vals []Value, sep string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, sep)
}

// ToFloat64 attempts to convert a numeric value to float64.
func ToFloat64(v Value) (float64, bool) {
	switch val := v.(type) {
	case IntVal:
		return float64(int64(val)), true
	case FloatVal:
		return float64(val), true
	default:
		return 0, false
	}
}

// ToInt64 attempts to convert an integer value to int64.
func ToInt64(v Value) (int64, bool) {
	if val, ok := v.(IntVal); ok {
		return int64(val), true
	}
	return 0, false
}

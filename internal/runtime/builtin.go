package runtime

import (
	"fmt"
	"io"
	"unicode/utf8"
)

// Builtins constructs the immutable builtin table. It is built once per
// interpreter and injected at creation; name lookup falls through to it
// after the environment chain.
func Builtins(w io.Writer) map[string]Value {
	return map[string]Value{
		"print": &BuiltinVal{
			Name: "print",
			Fn: func(args []Value) (Value, error) {
				fmt.Fprintln(w, ValuesString(args, " "))
				return UnitVal{}, nil
			},
		},

		"len": &BuiltinVal{
			Name: "len",
			Fn: func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, builtinErr(ArityMismatch, "len() expects 1 argument, got %d", len(args))
				}
				switch v := args[0].(type) {
				case StringVal:
					// Strings measure code points, not bytes.
					return IntVal(utf8.RuneCountInString(string(v))), nil
				case *ListVal:
					return IntVal(len(v.Elements)), nil
				default:
					return nil, builtinErr(TypeMismatch, "len() not supported for type '%s'", args[0].TypeName())
				}
			},
		},

		"append": &BuiltinVal{
			Name: "append",
			Fn: func(args []Value) (Value, error) {
				if len(args) != 2 {
					return nil, builtinErr(ArityMismatch, "append() expects 2 arguments, got %d", len(args))
				}
				lst, ok := args[0].(*ListVal)
				if !ok {
					return nil, builtinErr(TypeMismatch, "append() first argument must be a list, got '%s'", args[0].TypeName())
				}
				lst.Elements = append(lst.Elements, args[1])
				return lst, nil
			},
		},

		"pop": &BuiltinVal{
			Name: "pop",
			Fn: func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, builtinErr(ArityMismatch, "pop() expects 1 argument, got %d", len(args))
				}
				lst, ok := args[0].(*ListVal)
				if !ok {
					return nil, builtinErr(TypeMismatch, "pop() argument must be a list, got '%s'", args[0].TypeName())
				}
				if len(lst.Elements) == 0 {
					return nil, builtinErr(IndexOutOfRange, "pop() on empty list")
				}
				last := lst.Elements[len(lst.Elements)-1]
				lst.Elements = lst.Elements[:len(lst.Elements)-1]
				return last, nil
			},
		},

		// range(stop) or range(start, stop): ints in [start, stop).
		"range": &BuiltinVal{
			Name: "range",
			Fn: func(args []Value) (Value, error) {
				if len(args) < 1 || len(args) > 2 {
					return nil, builtinErr(ArityMismatch, "range() expects 1 or 2 arguments, got %d", len(args))
				}
				var start, stop int64
				var ok bool
				if len(args) == 1 {
					stop, ok = ToInt64(args[0])
					if !ok {
						return nil, builtinErr(TypeMismatch, "range() bound must be an int, got '%s'", args[0].TypeName())
					}
				} else {
					start, ok = ToInt64(args[0])
					if !ok {
						return nil, builtinErr(TypeMismatch, "range() bound must be an int, got '%s'", args[0].TypeName())
					}
					stop, ok = ToInt64(args[1])
					if !ok {
						return nil, builtinErr(TypeMismatch, "range() bound must be an int, got '%s'", args[1].TypeName())
					}
				}
				var elements []Value
				for i := start; i < stop; i++ {
					elements = append(elements, IntVal(i))
				}
				if elements == nil {
					elements = []Value{}
				}
				return &ListVal{Elements: elements}, nil
			},
		},
	}
}

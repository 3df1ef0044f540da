package runtime

import (
	"fmt"

	"minilang/internal/span"
)

// ErrKind classifies a runtime error.
type ErrKind int

const (
	UndefinedVariable ErrKind = iota
	TypeMismatch
	DivisionByZero
	IndexOutOfRange
	ArityMismatch
)

var errKindNames = map[ErrKind]string{
	UndefinedVariable: "UndefinedVariable",
	TypeMismatch:      "TypeMismatch",
	DivisionByZero:    "DivisionByZero",
	IndexOutOfRange:   "IndexOutOfRange",
	ArityMismatch:     "ArityMismatch",
}

func (k ErrKind) String() string {
	if name, ok := errKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrKind(%d)", int(k))
}

// Error represents an error raised during interpretation. It always carries
// a source position; builtins raise it with a zero span which the call site
// fills in.
type Error struct {
	Kind    ErrKind
	Message string
	Span    span.Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("runtime error at %d:%d: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

func runtimeErr(kind ErrKind, s span.Span, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: s}
}

// builtinErr builds an error inside a builtin; the interpreter attaches the
// call site span before propagating it.
func builtinErr(kind ErrKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

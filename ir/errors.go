package ir

import "fmt"

// ErrorKind classifies a CompileError per the error taxonomy: callers branch
// on Kind, not on the error string.
type ErrorKind uint8

const (
	// ErrInvalidInput covers malformed input handed to a public entry point:
	// nil pointers, zero word counts, a bad SPIR-V magic, an id-bound out of
	// range.
	ErrInvalidInput ErrorKind = iota
	// ErrInvalidStructure covers a broken IR invariant surfaced by the
	// validator (dangling reference, duplicate SSA-style definition,
	// malformed terminator).
	ErrInvalidStructure
	// ErrUnsupportedFeature covers an opcode, capability, or type that
	// cannot be represented in the requested target.
	ErrUnsupportedFeature
	// ErrOutOfMemory covers allocation failure.
	ErrOutOfMemory
	// ErrInternal covers an assertion-level invariant violation that should
	// not occur on well-formed input.
	ErrInternal
)

// String returns the taxonomy name, e.g. "InvalidInput".
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidInput:
		return "InvalidInput"
	case ErrInvalidStructure:
		return "InvalidStructure"
	case ErrUnsupportedFeature:
		return "UnsupportedFeature"
	case ErrOutOfMemory:
		return "OutOfMemory"
	case ErrInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Span identifies a source location, carried on errors produced while
// parsing or lowering so callers can render a caret under the offending
// text. Line and Column are 1-based; the zero value means "no location".
type Span struct {
	Line   int
	Column int
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// CompileError is the error type returned by public entry points across the
// lowering, validation, serialization, and deserialization stages. Every
// public call that can fail returns one (possibly wrapped) so that callers
// can branch on Kind rather than matching strings.
type CompileError struct {
	Kind    ErrorKind
	Message string
	Span    Span
	Wrapped error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if !e.Span.IsZero() {
		return fmt.Sprintf("%s: %d:%d: %s", e.Kind, e.Span.Line, e.Span.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is/errors.As to see through to the wrapped cause.
func (e *CompileError) Unwrap() error {
	return e.Wrapped
}

// NewError builds a CompileError with no source span.
func NewError(kind ErrorKind, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewSpanError builds a CompileError carrying a source span.
func NewSpanError(kind ErrorKind, span Span, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds a CompileError that wraps an underlying error for
// errors.Is/As purposes while still classifying it under the taxonomy.
func WrapError(kind ErrorKind, err error) *CompileError {
	if err == nil {
		return nil
	}
	return &CompileError{Kind: kind, Message: err.Error(), Wrapped: err}
}

package parse

import "fmt"

// Category separates errors produced by the parser from errors produced by
// later analysis. Both share the Error shape so they can be reported alike.
type Category int

const (
	Syntax Category = iota
	Semantics
)

func (c Category) String() string {
	switch c {
	case Syntax:
		return "syntax"
	case Semantics:
		return "semantic"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Error describes a problem at a location in the source text.
type Error struct {
	Category Category
	Message  string
	Index    int
	Length   int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error at offset %d: %s", e.Category, e.Index, e.Message)
}

// Span returns the source range the error points at.
func (e *Error) Span() Span {
	return Span{Start: e.Index, Length: e.Length}
}

// Errorf returns a syntax error at index.
func Errorf(index, length int, format string, args ...any) *Error {
	return &Error{
		Category: Syntax,
		Message:  fmt.Sprintf(format, args...),
		Index:    index,
		Length:   length,
	}
}

// SemanticErrorf returns a semantic error covering span.
func SemanticErrorf(span Span, format string, args ...any) *Error {
	return &Error{
		Category: Semantics,
		Message:  fmt.Sprintf(format, args...),
		Index:    span.Start,
		Length:   span.Length,
	}
}

// Choose picks the more useful of two errors found on different paths: the
// one that got further into the input. Ties go to a. Either may be nil.
func Choose(a, b *Error) *Error {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Index >= b.Index:
		return a
	default:
		return b
	}
}

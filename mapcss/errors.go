package mapcss

import (
	"errors"
	"fmt"
)

// ErrPropertyMissing is returned by the strict accessors of Style for
// properties which have not been declared.
var ErrPropertyMissing = errors.New("property missing")

// ErrTypeMismatch is returned by the strict accessors of Style if a property
// has been declared with a value of a different kind.
var ErrTypeMismatch = errors.New("property type mismatch")

// ParseError is returned for malformed stylesheets. Line and Column are
// 1-based and locate the offending token.
type ParseError struct {
	Line, Column int
	Token        string // offending token, empty at end of input
	Expected     string // what the parser was looking for, may be empty
	Msg          string // additional detail, may be empty
}

func (e *ParseError) Error() string {
	tok := e.Token
	if tok == "" {
		tok = "<EOF>"
	}
	s := fmt.Sprintf("unexpected token '%s' at %d:%d", tok, e.Line, e.Column)
	if e.Expected != "" {
		s += ", expected: " + e.Expected
	}
	if e.Msg != "" {
		s += " (" + e.Msg + ")"
	}
	return s
}

func missing(name string) error {
	return fmt.Errorf("%w: %s", ErrPropertyMissing, name)
}

func mismatch(name string, want, have ValueKind) error {
	return fmt.Errorf("%w: %s is %s, not %s", ErrTypeMismatch, name, have, want)
}

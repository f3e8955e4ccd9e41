package keyexpr

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	// ErrEmpty is returned for an empty key expression.
	ErrEmpty = errors.New("key expression is empty")

	// ErrEmptyChunk is returned when a chunk between separators is empty.
	ErrEmptyChunk = errors.New("key expression contains an empty chunk")

	// ErrLeadingSlash is returned for a key expression starting with '/'.
	ErrLeadingSlash = errors.New("key expression starts with '/'")

	// ErrTrailingSlash is returned for a key expression ending with '/'.
	ErrTrailingSlash = errors.New("key expression ends with '/'")

	// ErrInvalidChar is returned for characters forbidden in key expressions.
	ErrInvalidChar = errors.New("key expression contains an invalid character")
)

// KeyExpr is a validated, immutable key expression.
//
// A key expression is a '/'-separated hierarchical address such as
// "demo/test" or "building/*/temperature". Matching and wildcard algebra
// are handled by the engine; this layer only guarantees that a KeyExpr
// held by application code has passed validation exactly once.
//
// The zero value is invalid; obtain a KeyExpr through New.
type KeyExpr struct {
	expr string
}

// New validates expr and returns it as a KeyExpr.
func New(expr string) (KeyExpr, error) {
	if expr == "" {
		return KeyExpr{}, ErrEmpty
	}
	if strings.HasPrefix(expr, "/") {
		return KeyExpr{}, fmt.Errorf("%w: %q", ErrLeadingSlash, expr)
	}
	if strings.HasSuffix(expr, "/") {
		return KeyExpr{}, fmt.Errorf("%w: %q", ErrTrailingSlash, expr)
	}

	for _, chunk := range strings.Split(expr, "/") {
		if chunk == "" {
			return KeyExpr{}, fmt.Errorf("%w: %q", ErrEmptyChunk, expr)
		}
	}

	for _, r := range expr {
		switch r {
		case '#', '?', '\x00':
			return KeyExpr{}, fmt.Errorf("%w: %q in %q", ErrInvalidChar, r, expr)
		}
	}

	return KeyExpr{expr: expr}, nil
}

// MustNew is like New but panics on invalid input.
// Intended for constant expressions in tests and examples.
func MustNew(expr string) KeyExpr {
	ke, err := New(expr)
	if err != nil {
		panic(err)
	}
	return ke
}

// String returns the textual form of the key expression.
func (k KeyExpr) String() string {
	return k.expr
}

// IsZero reports whether k is the zero (unvalidated) value.
func (k KeyExpr) IsZero() bool {
	return k.expr == ""
}

// Equal reports whether two key expressions have the same textual form.
func (k KeyExpr) Equal(other KeyExpr) bool {
	return k.expr == other.expr
}

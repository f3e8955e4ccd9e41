// Package keyexpr provides the validated key expression value type.
//
// Key expressions are hierarchical, '/'-separated addresses that identify
// the data a publisher produces or a queryable serves, e.g. "demo/test"
// or "building/*/temperature". Validation happens once, in New; a KeyExpr
// value in circulation is always well-formed and safe to share across
// goroutines.
//
// Wildcard semantics ('*', '**') are interpreted by the engine during
// routing. This package deliberately implements no matching algebra.
package keyexpr

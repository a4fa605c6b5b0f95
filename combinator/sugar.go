package combinator

import "github.com/dtromb/stackfa/graph"

// Toss consumes exactly the token t and discards it (identity action).
// Equivalent to filter-by-equality with an identity action, implemented
// directly as a single-point TokenRange so it composes with other ranges
// during determinization instead of being carried as an opaque Guard.
func Toss[T graph.Token, V any](t T) Expr[T, V] {
	return TokenRange[T, V](t, t, graph.Identity[T, V]())
}

// Ignore is an alias for Toss, kept distinct for readability at call
// sites that want to signal "skip this token" rather than "match and
// discard this literal".
func Ignore[T graph.Token, V any](t T) Expr[T, V] {
	return Toss[T, V](t)
}

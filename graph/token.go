// Package graph holds the in-memory representation of parsers: the
// nondeterministic graph produced by the combinator algebra, the
// deterministic graph produced by determinization, and the pieces shared
// by both (states, curried transitions, actions, indices).
package graph

import (
	"golang.org/x/exp/constraints"
)

// StateID names a state within a single Graph. Ids are never shared
// across graphs; combinators relabel on every structural copy.
type StateID int

// StackSymbol names the state a Return should resume at. It is always a
// StateID of the graph that pushed it; the model never computes a
// destination at runtime, only at the pushing Call.
type StackSymbol StateID

// Token is the opaque input alphabet element a graph dispatches on. Any
// totally ordered Go type works: runes for text grammars, ints for a
// tokenized stream, etc.
type Token interface {
	constraints.Ordered
}

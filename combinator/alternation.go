package combinator

import "github.com/dtromb/stackfa/graph"

type alternationExpr[T graph.Token, V any] struct {
	left, right Expr[T, V]
}

// Alternation builds left or right: a fresh initial index is the union of
// both operands' initial indices, and the accepting states are the union
// of both (spec.md §4.1). Because indices are sets, this is a no-op
// beyond the union - no epsilon, no relabel beyond making ids disjoint.
func Alternation[T graph.Token, V any](left, right Expr[T, V]) Expr[T, V] {
	return alternationExpr[T, V]{left: left, right: right}
}

func (e alternationExpr[T, V]) build() *graph.NGraph[T, V] {
	a := e.left.build()
	b := e.right.build().Relabel(graph.StateID(a.NumStates()))
	initial := a.Initial.Union(b.Initial)
	a.Merge(b)
	a.Initial = initial
	return a
}

func (e alternationExpr[T, V]) structuralTag() string {
	return "alt(" + e.left.structuralTag() + "," + e.right.structuralTag() + ")"
}

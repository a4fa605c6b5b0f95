package combinator

import "github.com/dtromb/stackfa/graph"

type sequenceExpr[T graph.Token, V any] struct {
	left, right Expr[T, V]
}

// Sequence builds left then right: every accepting state of left gets an
// epsilon edge into right's initial index (spec.md §4.1). The combined
// graph accepts exactly left's accepted strings followed by right's.
func Sequence[T graph.Token, V any](left, right Expr[T, V]) Expr[T, V] {
	return sequenceExpr[T, V]{left: left, right: right}
}

func (e sequenceExpr[T, V]) build() *graph.NGraph[T, V] {
	a := e.left.build()
	b := e.right.build().Relabel(graph.StateID(a.NumStates()))

	for _, id := range a.States() {
		s := a.State(id)
		if !s.Accepting() {
			continue
		}
		action := graph.Identity[T, V]()
		if s.Produce != nil {
			action = *s.Produce
		}
		for target := range b.Initial {
			s.Epsilon = append(s.Epsilon, graph.EpsilonEdge[T, V]{Next: target, Action: action})
		}
	}
	a.Merge(b)
	// Accepting states of the result are exactly b's accepting states:
	// a's formerly-accepting states keep their epsilon edge into b but
	// are no longer terminal on their own.
	markNonTerminal(a, b)
	return a
}

// markNonTerminal demotes every accepting state of a (the left operand)
// that just received a splice epsilon, since the sequence's accepted
// language ends in b, not in a's own acceptance.
func markNonTerminal[T graph.Token, V any](a, b *graph.NGraph[T, V]) {
	bIDs := map[graph.StateID]struct{}{}
	for _, id := range b.States() {
		bIDs[id] = struct{}{}
	}
	for _, id := range a.States() {
		if _, inB := bIDs[id]; inB {
			continue
		}
		s := a.State(id)
		if len(s.Epsilon) > 0 && s.Accepting() {
			s.NonAccept = append(s.NonAccept, "sequence: continuation required")
		}
	}
}

func (e sequenceExpr[T, V]) structuralTag() string {
	return "seq(" + e.left.structuralTag() + "," + e.right.structuralTag() + ")"
}

package combinator

import (
	"fmt"
	"reflect"

	"github.com/dtromb/stackfa/graph"
)

// selfExpr is the placeholder Fix hands to its body function in place of
// the value Fix itself is defining. It builds to a single inert leaf,
// tagged Recur, that Fix.build() rewrites once the rest of the body has
// been built around it and its final initial index is known. Grounded
// on original_source's recurse()/fixpoint() pair (src/recurse.rs,
// src/fixpoint.rs), which also resolves a recursive reference by tag
// once the whole automaton is assembled rather than by a pre-known
// numeric id - this repo's combinators always hand back freshly
// 0-based, disjoint graphs for the caller to Relabel, so a self
// reference cannot carry a stable id of its own until its enclosing
// Fix gets the finished graph back.
type selfExpr[T graph.Token, V any] struct {
	tag string
}

func (e selfExpr[T, V]) build() *graph.NGraph[T, V] {
	g := graph.NewNGraph[T, V]()
	id := g.ReserveState()
	g.AddState(&graph.State[T, V]{
		ID:         id,
		NonAccept:  []string{"fix: recursion point with no base case reached in this call path"},
		Recur:      true,
		Breadcrumb: e.tag,
	})
	g.Initial = graph.NewNIndex(id)
	return g
}

func (e selfExpr[T, V]) structuralTag() string { return "self()" }

type fixExpr[T graph.Token, V any] struct {
	f   func(Expr[T, V]) Expr[T, V]
	tag string
}

// Fix builds a self-referential parser (spec.md §8 scenario 4): f
// receives a placeholder standing for the very expression Fix returns,
// and may splice it in anywhere a sub-expression is expected, e.g.
// balanced parens:
//
//	p := Fix(func(q Expr[rune, V]) Expr[rune, V] {
//		return Alternation(Empty[rune, V](),
//			Region("p", Toss[rune, V]('('), q, Toss[rune, V](')'), ignore))
//	})
//
// build() builds f(self) as an ordinary expression tree first, then
// rewrites every Recur leaf left behind in the result to epsilon into
// the whole tree's own initial index, closing the loop.
//
// Recursion through a region() is genuine Call/Return, not a bounded
// unroll: region() already treats a nullable inner as an implicit
// return point (see region.go's doc comment), so an inner that loops
// back to the region's own start via self reuses that machinery
// unchanged. Every open pushes a fresh stack frame, so nesting depth is
// bounded only by the input, not by this graph - "((()))" and a
// thousand-deep input are the same construction. A self-reference used
// outside any region - fix(Q => sequence(toss('a'), Q)), tail position -
// instead produces an ordinary epsilon loop: the Kleene-star shape,
// with no Call/Return involved at all.
func Fix[T graph.Token, V any](f func(Expr[T, V]) Expr[T, V]) Expr[T, V] {
	return fixExpr[T, V]{f: f, tag: nextBreadcrumb("fix")}
}

func (e fixExpr[T, V]) build() *graph.NGraph[T, V] {
	body := e.f(selfExpr[T, V]{tag: e.tag}).build()
	for _, id := range body.States() {
		s := body.State(id)
		if !s.Recur {
			continue
		}
		s.Recur = false
		for target := range body.Initial {
			s.Epsilon = append(s.Epsilon, graph.EpsilonEdge[T, V]{Next: target, Action: graph.Identity[T, V]()})
		}
	}
	return body
}

// structuralTag keys on f's identity, not e.tag (which carries
// nextBreadcrumb's construction-order counter): two Fix calls over the
// same body function compare structurally equal.
func (e fixExpr[T, V]) structuralTag() string {
	return fmt.Sprintf("fix(0x%x)", reflect.ValueOf(e.f).Pointer())
}

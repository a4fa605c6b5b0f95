package combinator

import (
	"fmt"
	"reflect"

	"github.com/dtromb/stackfa/graph"
)

type emptyExpr[T graph.Token, V any] struct{}

// Empty accepts only the empty input, unconditionally.
func Empty[T graph.Token, V any]() Expr[T, V] {
	return emptyExpr[T, V]{}
}

func (emptyExpr[T, V]) build() *graph.NGraph[T, V] {
	g := graph.NewNGraph[T, V]()
	id := g.ReserveState()
	g.AddState(&graph.State[T, V]{ID: id, Breadcrumb: nextBreadcrumb("empty")})
	g.Initial = graph.NewNIndex(id)
	return g
}

func (emptyExpr[T, V]) structuralTag() string { return "empty()" }

type anyExpr[T graph.Token, V any] struct {
	action graph.Action[T, V]
	tag    string
}

// Any consumes exactly one token, applying action, and accepts.
func Any[T graph.Token, V any](action graph.Action[T, V]) Expr[T, V] {
	return anyExpr[T, V]{action: action, tag: nextBreadcrumb("any")}
}

func (e anyExpr[T, V]) build() *graph.NGraph[T, V] {
	g := graph.NewNGraph[T, V]()
	s0 := g.ReserveState()
	s1 := g.ReserveState()
	g.AddState(&graph.State[T, V]{
		ID:        s0,
		NonAccept: []string{"expected any token, found end of input"},
		Dispatch:  graph.Dispatch[T, V]{Kind: graph.DispatchAny, Any: graph.LateralTo(s1, e.action)},
		Breadcrumb: e.tag,
	})
	g.AddState(&graph.State[T, V]{ID: s1, Breadcrumb: e.tag})
	g.Initial = graph.NewNIndex(s0)
	return g
}

// structuralTag deliberately excludes e.tag: that carries
// nextBreadcrumb's construction-order counter, which would make every
// independently-built any() compare unequal to every other one
// regardless of shape (spec.md §6's "equality is structural"). The
// action's Key() is the only part of an any() node that can vary.
func (e anyExpr[T, V]) structuralTag() string { return fmt.Sprintf("any(%v)", e.action.Key()) }

type filterExpr[T graph.Token, V any] struct {
	pred   func(T) bool
	action graph.Action[T, V]
	tag    string
}

// Filter consumes one token if predicate holds, applying action;
// otherwise the state is non-accepting with reason.
func Filter[T graph.Token, V any](predicate func(T) bool, action graph.Action[T, V]) Expr[T, V] {
	return filterExpr[T, V]{pred: predicate, action: action, tag: nextBreadcrumb("filter")}
}

func (e filterExpr[T, V]) build() *graph.NGraph[T, V] {
	g := graph.NewNGraph[T, V]()
	s0 := g.ReserveState()
	s1 := g.ReserveState()
	guard := graph.NewGuard(e.pred)
	g.AddState(&graph.State[T, V]{
		ID:        s0,
		NonAccept: []string{"predicate did not hold"},
		Dispatch: graph.Dispatch[T, V]{
			Kind: graph.DispatchGuard,
			Guard: graph.GuardEdge[T, V]{
				Test:   guard,
				Then:   graph.LateralTo(s1, e.action),
				Reason: "predicate did not hold",
			},
		},
		Breadcrumb: e.tag,
	})
	g.AddState(&graph.State[T, V]{ID: s1, Breadcrumb: e.tag})
	g.Initial = graph.NewNIndex(s0)
	return g
}

// pred is a raw func with no Key() surrogate the way an Action has one;
// reflect.ValueOf(...).Pointer() is the teacher's own way of keying a
// func by identity (earley.go's ptr/lptr/rptr), used here so two
// filter() calls over the literal same predicate value still compare
// structurally equal.
func (e filterExpr[T, V]) structuralTag() string {
	return fmt.Sprintf("filter(%v,0x%x)", e.action.Key(), reflect.ValueOf(e.pred).Pointer())
}

type rangeExpr[T graph.Token, V any] struct {
	lo, hi T
	action graph.Action[T, V]
	tag    string
}

// TokenRange consumes one token in [lo, hi] (inclusive), applying action.
// Specialized over Filter so determinization can preserve the range
// instead of treating it as an opaque guard.
func TokenRange[T graph.Token, V any](lo, hi T, action graph.Action[T, V]) Expr[T, V] {
	return rangeExpr[T, V]{lo: lo, hi: hi, action: action, tag: nextBreadcrumb("range")}
}

func (e rangeExpr[T, V]) build() *graph.NGraph[T, V] {
	g := graph.NewNGraph[T, V]()
	s0 := g.ReserveState()
	s1 := g.ReserveState()
	g.AddState(&graph.State[T, V]{
		ID:        s0,
		NonAccept: []string{"expected token in range"},
		Dispatch: graph.Dispatch[T, V]{
			Kind: graph.DispatchRanges,
			Ranges: []graph.RangeEdge[T, V]{
				{Lo: e.lo, Hi: e.hi, Trans: graph.LateralTo(s1, e.action)},
			},
		},
		Breadcrumb: e.tag,
	})
	g.AddState(&graph.State[T, V]{ID: s1, Breadcrumb: e.tag})
	g.Initial = graph.NewNIndex(s0)
	return g
}

func (e rangeExpr[T, V]) structuralTag() string {
	return fmt.Sprintf("range(%v,%v,%v)", e.lo, e.hi, e.action.Key())
}

type produceExpr[T graph.Token, V any] struct {
	f   func(T, V) V
	tag string
}

// Produce applies f to the accumulator without consuming input. It has no
// observable effect on its own; it only matters once sequence() splices
// it next to something else, at which point f runs on that epsilon edge.
func Produce[T graph.Token, V any](f func(tok T, acc V) V) Expr[T, V] {
	return produceExpr[T, V]{f: f, tag: nextBreadcrumb("produce")}
}

func (e produceExpr[T, V]) build() *graph.NGraph[T, V] {
	g := graph.NewNGraph[T, V]()
	id := g.ReserveState()
	action := graph.NewAction(e.f)
	g.AddState(&graph.State[T, V]{ID: id, Produce: &action, Breadcrumb: e.tag})
	g.Initial = graph.NewNIndex(id)
	return g
}

func (e produceExpr[T, V]) structuralTag() string {
	return fmt.Sprintf("produce(0x%x)", reflect.ValueOf(e.f).Pointer())
}

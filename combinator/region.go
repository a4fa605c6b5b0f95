package combinator

import (
	"fmt"
	"reflect"

	"github.com/dtromb/stackfa/graph"
)

type regionExpr[T graph.Token, V any] struct {
	name                 string
	open, inner, close   Expr[T, V]
	combine              func(pre, ret V) V
	tag                  string
}

// Region builds a Call/Return-bracketed subgraph: open runs, then inner
// runs as a called subroutine that returns, then close runs; combine
// merges the pre-call accumulator with the subroutine's returned value.
// name is carried only as a diagnostic string (spec.md §4.1).
//
// inner may itself accept the empty string at its own initial state
// (spec.md §8's parens example regions over inner=empty): convertToCall
// and convertToReturn below only ever rewrite real, token-consuming
// Lateral edges into Call/Return, so a nullable inner never gets a
// literal Return transition synthesized for it. Instead
// determinize/reachability.go treats any Accepting state as implicitly
// able to return, and interp.Run/the emitted code unwind the symbol
// stack through such a state on a dispatch miss rather than reject -
// observably identical to a Return carrying the identity action, without
// adding a zero-width transition kind to the graph itself. See
// DESIGN.md.
//
// open must still consume at least one token before a Call can fire: a
// Call only ever exists as the rewrite of a real dispatch arm (see
// convertToCall), so a region whose open matches the empty string has
// no edge for anything to become a Call in the first place. Every
// worked example in spec.md §8 opens on a literal delimiter, so this
// restriction is never exercised by the spec itself.
func Region[T graph.Token, V any](name string, open, inner, close Expr[T, V], combine func(pre, ret V) V) Expr[T, V] {
	return regionExpr[T, V]{name: name, open: open, inner: inner, close: close, combine: combine, tag: nextBreadcrumb("region:" + name)}
}

func (e regionExpr[T, V]) build() *graph.NGraph[T, V] {
	og := e.open.build()
	openIDs, openAccept := idSets(og)

	ig := e.inner.build().Relabel(graph.StateID(og.NumStates()))
	_, innerAccept := idSets(ig)

	cg := e.close.build().Relabel(graph.StateID(og.NumStates() + ig.NumStates()))

	og.Merge(ig)
	og.Merge(cg)

	// innerEntry/closeEntry are pure wiring: reserved purely so open's
	// rewritten Call has somewhere to detour to (and close's Call-return
	// has somewhere to resume) before inner/close's own states exist to
	// be pointed at. Left at their ReserveState zero value they'd be
	// accepting by default, which would let a subset containing one of
	// them terminate a match before the real inner/close leaf it splices
	// to ever fires - explicitly non-accepting here so only the spliced
	// graph's own acceptance counts.
	innerEntry := og.ReserveState()
	og.State(innerEntry).Breadcrumb = e.tag
	og.State(innerEntry).NonAccept = []string{"region: call site, not itself a stopping point"}
	for target := range ig.Initial {
		og.State(innerEntry).Epsilon = append(og.State(innerEntry).Epsilon,
			graph.EpsilonEdge[T, V]{Next: target, Action: graph.Identity[T, V]()})
	}

	closeEntry := og.ReserveState()
	og.State(closeEntry).Breadcrumb = e.tag
	og.State(closeEntry).NonAccept = []string{"region: return site, not itself a stopping point"}
	for target := range cg.Initial {
		og.State(closeEntry).Epsilon = append(og.State(closeEntry).Epsilon,
			graph.EpsilonEdge[T, V]{Next: target, Action: graph.Identity[T, V]()})
	}

	convertToCall(og, openAccept, innerEntry, graph.StackSymbol(closeEntry), e.combine)
	convertToReturn(og, innerAccept)

	// The region's own accepting states are close's: open's states (now
	// call sites) no longer terminate the match on their own. inner's
	// former accept leaves are left alone: a leaf that convertToReturn
	// rewrote is already unreachable (nothing transitions to it anymore,
	// the rewrite happened in place at the edge that used to), and a
	// leaf that convertToReturn had nothing to rewrite (inner accepting
	// at its own initial state, still reached via innerEntry's epsilon
	// edge) is exactly the state that must stay Accepting - it is the
	// signal determinize/reachability.go and interp.Run's unwind use to
	// return the call without a literal Return transition.
	demote(og, openIDs)

	return og
}

func (e regionExpr[T, V]) structuralTag() string {
	return fmt.Sprintf("region(%s,%s,%s,%s,0x%x)", e.name,
		e.open.structuralTag(), e.inner.structuralTag(), e.close.structuralTag(),
		reflect.ValueOf(e.combine).Pointer())
}

func idSets[T graph.Token, V any](g *graph.NGraph[T, V]) (all, accept map[graph.StateID]bool) {
	all = map[graph.StateID]bool{}
	accept = map[graph.StateID]bool{}
	for _, id := range g.States() {
		all[id] = true
		if g.State(id).Accepting() {
			accept[id] = true
		}
	}
	return all, accept
}

// epsilonCloseInto returns every state that is in seed, or that reaches
// seed purely through its own Epsilon (Lateral, non-consuming) edges.
func epsilonCloseInto[T graph.Token, V any](g *graph.NGraph[T, V], seed map[graph.StateID]bool) map[graph.StateID]bool {
	reach := map[graph.StateID]bool{}
	for id := range seed {
		reach[id] = true
	}
	for changed := true; changed; {
		changed = false
		for _, id := range g.States() {
			if reach[id] {
				continue
			}
			for _, ep := range g.State(id).Epsilon {
				if reach[ep.Next] {
					reach[id] = true
					changed = true
					break
				}
			}
		}
	}
	return reach
}

// convertToCall rewrites every real (token-consuming) Lateral transition
// that lands on acceptSet (transitively through epsilon chains) into a
// Call to detour/dest.
func convertToCall[T graph.Token, V any](g *graph.NGraph[T, V], acceptSet map[graph.StateID]bool, detour graph.StateID, dest graph.StackSymbol, combine func(pre, ret V) V) {
	reach := epsilonCloseInto(g, acceptSet)
	for _, id := range g.States() {
		d := &g.State(id).Dispatch
		switch d.Kind {
		case graph.DispatchAny:
			if d.Any.Kind == graph.Lateral && reach[d.Any.Next] {
				d.Any = graph.CallToWithCombine(detour, dest, d.Any.Action, combine)
			}
		case graph.DispatchRanges:
			for i := range d.Ranges {
				t := &d.Ranges[i].Trans
				if t.Kind == graph.Lateral && reach[t.Next] {
					*t = graph.CallToWithCombine(detour, dest, t.Action, combine)
				}
			}
			if d.Fallback != nil && d.Fallback.Kind == graph.Lateral && reach[d.Fallback.Next] {
				*d.Fallback = graph.CallToWithCombine(detour, dest, d.Fallback.Action, combine)
			}
		case graph.DispatchGuard:
			t := &d.Guard.Then
			if t.Kind == graph.Lateral && reach[t.Next] {
				*t = graph.CallToWithCombine(detour, dest, t.Action, combine)
			}
		}
	}
}

// convertToReturn rewrites every real Lateral transition that lands on
// acceptSet into a Return, dropping the stack-pop destination (the
// caller that pushed it decides where control resumes).
func convertToReturn[T graph.Token, V any](g *graph.NGraph[T, V], acceptSet map[graph.StateID]bool) {
	reach := epsilonCloseInto(g, acceptSet)
	for _, id := range g.States() {
		d := &g.State(id).Dispatch
		switch d.Kind {
		case graph.DispatchAny:
			if d.Any.Kind == graph.Lateral && reach[d.Any.Next] {
				d.Any = graph.ReturnWith(d.Any.Action)
			}
		case graph.DispatchRanges:
			for i := range d.Ranges {
				t := &d.Ranges[i].Trans
				if t.Kind == graph.Lateral && reach[t.Next] {
					*t = graph.ReturnWith(t.Action)
				}
			}
			if d.Fallback != nil && d.Fallback.Kind == graph.Lateral && reach[d.Fallback.Next] {
				*d.Fallback = graph.ReturnWith(d.Fallback.Action)
			}
		case graph.DispatchGuard:
			t := &d.Guard.Then
			if t.Kind == graph.Lateral && reach[t.Next] {
				*t = graph.ReturnWith(t.Action)
			}
		}
	}
}

// demote strips accepting status from every accepting state in ids
// (open's states), whether or not it still carries an outgoing dispatch
// or epsilon, since the region's own acceptance now belongs to close
// alone.
func demote[T graph.Token, V any](g *graph.NGraph[T, V], ids map[graph.StateID]bool) {
	for id := range ids {
		s := g.State(id)
		if s.Accepting() {
			s.NonAccept = append(s.NonAccept, "region: open/inner boundary is not a stopping point")
		}
	}
}


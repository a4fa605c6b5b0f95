package determinize

import (
	"github.com/dtromb/stackfa/diag"
	"github.com/dtromb/stackfa/graph"
)

// brzozowskiMinimize runs the classical reverse-determinize-reverse-
// determinize construction, grounded on original_source's
// automata/src/brzozowski.rs (this repo supplements the base subset
// construction with it per SPEC_FULL.md §11, as an alternative to
// mergeEquivalent's Hopcroft pass - always minimal, at the cost of two
// extra determinization passes).
//
// Reversal is only well-defined here for the token-consuming sublattice:
// a Call/Return pair's stack discipline does not reverse the way a
// plain token edge does (the nesting order of calls would need to
// invert too), so a graph containing any Call/Return edge is left to
// mergeEquivalent instead.
func brzozowskiMinimize[T graph.Token, V any](dg *graph.DGraph[T, V], opts Options) *graph.DGraph[T, V] {
	if hasCallReturn(dg) {
		return mergeEquivalent(dg)
	}
	rev1 := reverseForBrzozowski(dg)
	bag := &diag.Bag{}
	mid := subsetConstruct[T, V](rev1, opts, bag)
	if !bag.Empty() {
		return mergeEquivalent(dg)
	}
	mid = eliminateDead(mid)

	rev2 := reverseForBrzozowski(mid)
	bag2 := &diag.Bag{}
	final := subsetConstruct[T, V](rev2, opts, bag2)
	if !bag2.Empty() {
		return mergeEquivalent(dg)
	}
	return eliminateDead(final)
}

func hasCallReturn[T graph.Token, V any](dg *graph.DGraph[T, V]) bool {
	found := false
	for _, s := range dg.States {
		walkTransitions(s, func(t graph.Transition[T, V]) {
			if t.Kind != graph.Lateral {
				found = true
			}
		})
	}
	return found
}

// reverseForBrzozowski builds the reversed NFA: the new initial set is
// the old accepting states, the old initial state is the only new
// accepting state, and every edge flips direction. Since one NFA state
// in this model carries exactly one dispatch shape, a state that gains
// more than one reversed arm fans out through fresh single-arm states
// joined by epsilon, mirroring how the combinator layer itself builds
// one state per primitive.
func reverseForBrzozowski[T graph.Token, V any](dg *graph.DGraph[T, V]) *graph.NGraph[T, V] {
	ng := graph.NewNGraph[T, V]()
	n := dg.NumStates()
	for i := 0; i < n; i++ {
		ng.ReserveState()
	}
	for i := 0; i < n; i++ {
		s := &graph.State[T, V]{ID: graph.StateID(i)}
		if graph.StateID(i) == graph.StateID(dg.Initial) {
			s.NonAccept = nil
		} else {
			s.NonAccept = []string{"brzozowski: not the original initial state"}
		}
		ng.AddState(s)
	}

	initSet := graph.NIndex{}
	for i := 0; i < n; i++ {
		if dg.States[i].Accepting() {
			initSet[graph.StateID(i)] = struct{}{}
		}
	}
	ng.Initial = initSet

	addArm := func(from graph.StateID, arm graph.Dispatch[T, V]) {
		leaf := ng.ReserveState()
		ng.State(leaf).Dispatch = arm
		ng.State(leaf).NonAccept = []string{"brzozowski: reversed arm, never a stopping point on its own"}
		ng.State(from).Epsilon = append(ng.State(from).Epsilon, graph.EpsilonEdge[T, V]{Next: leaf, Action: graph.Identity[T, V]()})
	}

	for i := 0; i < n; i++ {
		s := dg.States[i]
		switch s.Dispatch.Kind {
		case graph.DispatchAny:
			t := s.Dispatch.Any
			addArm(t.Next, graph.Dispatch[T, V]{Kind: graph.DispatchAny, Any: graph.LateralTo(graph.StateID(i), t.Action)})
		case graph.DispatchRanges:
			for _, r := range s.Dispatch.Ranges {
				t := r.Trans
				edge := graph.RangeEdge[T, V]{Lo: r.Lo, Hi: r.Hi, Trans: graph.LateralTo(graph.StateID(i), t.Action)}
				addArm(t.Next, graph.Dispatch[T, V]{Kind: graph.DispatchRanges, Ranges: []graph.RangeEdge[T, V]{edge}})
			}
		case graph.DispatchGuard:
			t := s.Dispatch.Guard.Then
			addArm(t.Next, graph.Dispatch[T, V]{Kind: graph.DispatchGuard, Guard: graph.GuardEdge[T, V]{Test: s.Dispatch.Guard.Test, Then: graph.LateralTo(graph.StateID(i), t.Action), Reason: s.Dispatch.Guard.Reason}})
		}
	}
	return ng
}

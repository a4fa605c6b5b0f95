package determinize

import (
	"fmt"

	"github.com/dtromb/stackfa/diag"
	"github.com/dtromb/stackfa/graph"
)

// checkReturnReachability verifies every Call's detour can actually
// reach a Return before determinization runs - a Call whose subroutine
// can never return would determinize cleanly, but every input taking
// that Call would then be rejected, since its stack frame is never
// popped.
// Grounded on lexr/fa.go's own reachability sweep over its DFA before
// handing it to the builder.
func checkReturnReachability[T graph.Token, V any](ng *graph.NGraph[T, V], bag *diag.Bag) {
	canReturn := map[graph.StateID]bool{}
	for changed := true; changed; {
		changed = false
		for _, id := range ng.States() {
			if canReturn[id] {
				continue
			}
			if reachesReturn(ng, id, canReturn) {
				canReturn[id] = true
				changed = true
			}
		}
	}

	for _, id := range ng.States() {
		s := ng.State(id)
		walkTransitions(s, func(t graph.Transition[T, V]) {
			if t.Kind == graph.Call && !canReturn[t.Detour] {
				bag.Add(diag.Diagnostic{
					Kind:        diag.UnmatchedCallTarget,
					Message:     fmt.Sprintf("call from state %d detours to state %d, which can never reach a return", int(id), int(t.Detour)),
					Breadcrumbs: []string{s.Breadcrumb},
				})
			}
		})
	}
}

func reachesReturn[T graph.Token, V any](ng *graph.NGraph[T, V], id graph.StateID, canReturn map[graph.StateID]bool) bool {
	s := ng.State(id)
	if s.Accepting() {
		// Accepting with nothing further to match is itself a valid
		// return point: the interpreter/emitter unwind the stack here
		// exactly as if a Return had fired (interp.Run's unwind, and
		// the emitted code's equivalent early-return branch).
		return true
	}
	found := false
	walkTransitions(s, func(t graph.Transition[T, V]) {
		switch t.Kind {
		case graph.Return:
			found = true
		case graph.Lateral:
			if canReturn[t.Next] {
				found = true
			}
		case graph.Call:
			if canReturn[t.Detour] {
				found = true
			}
		}
	})
	for _, ep := range s.Epsilon {
		if canReturn[ep.Next] {
			found = true
		}
	}
	return found
}

func walkTransitions[T graph.Token, V any](s *graph.State[T, V], visit func(graph.Transition[T, V])) {
	switch s.Dispatch.Kind {
	case graph.DispatchAny:
		visit(s.Dispatch.Any)
	case graph.DispatchRanges:
		for _, r := range s.Dispatch.Ranges {
			visit(r.Trans)
		}
		if s.Dispatch.Fallback != nil {
			visit(*s.Dispatch.Fallback)
		}
	case graph.DispatchGuard:
		visit(s.Dispatch.Guard.Then)
	}
}

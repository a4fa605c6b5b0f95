package interp

import "github.com/dtromb/stackfa/graph"

// dispatch finds the transition tok takes out of s, per spec.md §3's
// curried-transition shapes: accept-any always matches; a range
// partition matches the cell containing tok, falling back to Fallback
// (if any) when tok lands in none of the declared cells; a guard
// matches when its predicate holds.
func dispatch[T graph.Token, V any](s *graph.State[T, V], tok T) (graph.Transition[T, V], bool) {
	switch s.Dispatch.Kind {
	case graph.DispatchAny:
		return s.Dispatch.Any, true
	case graph.DispatchRanges:
		for _, r := range s.Dispatch.Ranges {
			if r.Lo <= tok && tok <= r.Hi {
				return r.Trans, true
			}
		}
		if s.Dispatch.Fallback != nil {
			return *s.Dispatch.Fallback, true
		}
		return graph.Transition[T, V]{}, false
	case graph.DispatchGuard:
		if s.Dispatch.Guard.Test.Test(tok) {
			return s.Dispatch.Guard.Then, true
		}
		return graph.Transition[T, V]{}, false
	default:
		return graph.Transition[T, V]{}, false
	}
}

package determinize

import (
	"github.com/dtromb/stackfa/diag"
	"github.com/dtromb/stackfa/graph"
)

// mergeGroup folds a set of transitions that landed on the same cell
// into one, checking the spec.md §4.2 rule 3 invariants: every member
// must agree on Kind and carry an Equal action, and a Call must agree
// with its siblings on the destination symbol. Lateral/Call targets
// union into targets (the raw ng state ids the resulting cell moves
// to); Return has none. Diagnostics append to bag rather than aborting,
// so a single malformed subset doesn't stop the rest of the graph from
// being built speculatively - Compile discards the graph anyway once
// bag is non-empty.
func mergeGroup[T graph.Token, V any](group []graph.Transition[T, V], bag *diag.Bag, where string, bcs []string) (graph.Transition[T, V], map[graph.StateID]bool) {
	if len(group) == 0 {
		return graph.Transition[T, V]{}, nil
	}
	first := group[0]
	targets := map[graph.StateID]bool{}
	for _, t := range group {
		if t.Kind != first.Kind {
			bag.Add(diag.Diagnostic{Kind: diag.ActionConflict, Message: "mixed stack operations merged on " + where, Breadcrumbs: bcs})
			continue
		}
		if !t.Action.Equal(first.Action) {
			bag.Add(diag.Diagnostic{Kind: diag.ActionConflict, Message: "conflicting actions merged on " + where, Breadcrumbs: bcs})
		}
		switch t.Kind {
		case graph.Lateral:
			targets[t.Next] = true
		case graph.Call:
			if t.Dest != first.Dest {
				bag.Add(diag.Diagnostic{Kind: diag.StackSymbolConflict, Message: "merged calls on " + where + " push different destination symbols", Breadcrumbs: bcs})
			}
			targets[t.Detour] = true
		case graph.Return:
		}
	}
	out := first
	return out, targets
}

// resolveTargets turns mergeGroup's raw ng-level target set into a DFA
// state id via the worklist, and for a Call, resolves Dest from an
// ng-level StackSymbol to the DFA state id that symbol's singleton
// closure determinizes to - the stack alphabet after determinization is
// DFA state ids, not NFA ones, so a Return can resume directly at the
// popped value (graph/transition.go's "a Return moves to the state the
// popped symbol names").
func resolveTargets[T graph.Token, V any](t graph.Transition[T, V], targets map[graph.StateID]bool, w *worklist[T, V]) graph.Transition[T, V] {
	switch t.Kind {
	case graph.Lateral:
		t.Next = w.register(targets)
	case graph.Call:
		t.Detour = w.register(targets)
		t.Dest = graph.StackSymbol(w.register(map[graph.StateID]bool{graph.StateID(t.Dest): true}))
	}
	return t
}

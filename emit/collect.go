package emit

import (
	"fmt"

	"github.com/dtromb/stackfa/graph"
)

// tables assigns a canonical, dense index to every distinct action,
// guard, and combine function the graph references, by walking states
// in id order and, within a state, arms in a fixed order (Any; Ranges,
// already sorted by Lo; Fallback; Guard). Since dg arrives already
// canonicalized (determinize.Compile's last pass), this walk order is
// itself a pure function of the graph - the whole point of spec.md
// §4.4's "emission is a function of the deterministic graph alone".
//
// Combine funcs carry no equality tag (graph.Transition.Combine is a
// bare func field, unlike Action/Guard), so each Call
// edge gets its own combine slot rather than being deduplicated; this
// only costs a few extra table rows, never correctness.
type tables[T graph.Token, V any] struct {
	actions  []graph.Action[T, V]
	actionOf map[graph.ActionKey]int

	guards  []graph.Guard[T]
	guardOf map[graph.ActionKey]int

	combines []func(pre, ret V) V
	// combineOf maps a (state id, arm tag) pair to its combine slot, set
	// while walking; arm tag disambiguates within one state.
	combineOf map[string]int
}

func newTables[T graph.Token, V any]() *tables[T, V] {
	return &tables[T, V]{
		actionOf:  map[graph.ActionKey]int{},
		guardOf:   map[graph.ActionKey]int{},
		combineOf: map[string]int{},
	}
}

func (t *tables[T, V]) action(a graph.Action[T, V]) int {
	k := a.Key()
	if i, ok := t.actionOf[k]; ok {
		return i
	}
	i := len(t.actions)
	t.actions = append(t.actions, a)
	t.actionOf[k] = i
	return i
}

func (t *tables[T, V]) guard(g graph.Guard[T]) int {
	k := g.Key()
	if i, ok := t.guardOf[k]; ok {
		return i
	}
	i := len(t.guards)
	t.guards = append(t.guards, g)
	t.guardOf[k] = i
	return i
}

func (t *tables[T, V]) combine(arm string, fn func(pre, ret V) V) int {
	if fn == nil {
		return -1
	}
	if i, ok := t.combineOf[arm]; ok {
		return i
	}
	i := len(t.combines)
	t.combines = append(t.combines, fn)
	t.combineOf[arm] = i
	return i
}

// collect walks dg in canonical order, assigning table slots to every
// action/guard/combine it finds and returning the completed tables.
func collect[T graph.Token, V any](dg *graph.DGraph[T, V]) *tables[T, V] {
	t := newTables[T, V]()
	for i := 0; i < dg.NumStates(); i++ {
		s := dg.State(graph.DIndex(i))
		armTag := func(suffix string) string { return fmt.Sprintf("%d:%s", i, suffix) }
		switch s.Dispatch.Kind {
		case graph.DispatchAny:
			t.action(s.Dispatch.Any.Action)
			t.combine(armTag("any"), s.Dispatch.Any.Combine)
		case graph.DispatchRanges:
			for ri, r := range s.Dispatch.Ranges {
				t.action(r.Trans.Action)
				t.combine(armTag(fmt.Sprintf("range%d", ri)), r.Trans.Combine)
			}
			if s.Dispatch.Fallback != nil {
				t.action(s.Dispatch.Fallback.Action)
				t.combine(armTag("fallback"), s.Dispatch.Fallback.Combine)
			}
		case graph.DispatchGuard:
			t.guard(s.Dispatch.Guard.Test)
			t.action(s.Dispatch.Guard.Then.Action)
			t.combine(armTag("guard"), s.Dispatch.Guard.Then.Combine)
		}
	}
	return t
}

package determinize

import (
	"fmt"
	"sort"

	"github.com/dtromb/stackfa/graph"
	"github.com/dtromb/stackfa/internal/canonhash"
	"github.com/dtromb/stackfa/internal/set"
)

// mergeEquivalent collapses states that are behaviorally
// indistinguishable (spec.md §6, MergeEquivalentStates). It seeds the
// partition with localSignature - canonhash's structural signature
// (accept/reject reasons, dispatch kind, fallback, produce) plus the
// list of range spans and their action keys, so two states only ever land in the same block
// if their dispatch shapes line up cell-for-cell - then refines by
// comparing, position by position, which block each cell's target
// falls into, to a fixpoint. Grounded on lexr/fa.go's DFA minimization
// pass, adapted from its hand-rolled partition loop to use
// internal/set's worklist helpers.
func mergeEquivalent[T graph.Token, V any](dg *graph.DGraph[T, V]) *graph.DGraph[T, V] {
	n := dg.NumStates()
	block := make([]int, n)
	sigToBlock := map[string]int{}
	nextBlock := 0
	for i, s := range dg.States {
		sig := localSignature(s)
		b, ok := sigToBlock[sig]
		if !ok {
			b = nextBlock
			nextBlock++
			sigToBlock[sig] = b
		}
		block[i] = b
	}

	for changed := true; changed; {
		changed = false
		byBlock := map[int][]int{}
		for i, b := range block {
			byBlock[b] = append(byBlock[b], i)
		}
		nextBlock := 0
		newBlock := make([]int, n)
		seen := set.NewInts()
		var order []int
		for _, b := range block {
			if seen.Add(b) {
				order = append(order, b)
			}
		}
		for _, b := range order {
			members := byBlock[b]
			groups := map[string][]int{}
			for _, i := range members {
				key := targetSignature(dg.States[i], block)
				groups[key] = append(groups[key], i)
			}
			if len(groups) > 1 {
				changed = true
			}
			keys := make([]string, 0, len(groups))
			for k := range groups {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				id := nextBlock
				nextBlock++
				for _, i := range groups[k] {
					newBlock[i] = id
				}
			}
		}
		block = newBlock
	}

	// Pick one representative per block and relabel every transition to
	// point at its block's representative, then compact.
	repOf := map[int]int{}
	for i, b := range block {
		if _, ok := repOf[b]; !ok {
			repOf[b] = i
		}
	}
	keep := make([]bool, n)
	for _, i := range repOf {
		keep[i] = true
	}
	remap := make([]int, n)
	for i, b := range block {
		remap[i] = repOf[b]
	}
	// renumber expects a dense remap produced from keep; build it here
	// directly instead, since a block's representative is not
	// necessarily state 0 of its block.
	compact := make([]int, n)
	next := 0
	for i := 0; i < n; i++ {
		if keep[i] {
			compact[i] = next
			next++
		}
	}
	finalRemap := make([]int, n)
	for i := 0; i < n; i++ {
		finalRemap[i] = compact[remap[i]]
	}

	out := make([]*graph.State[T, V], 0, next)
	for i := 0; i < n; i++ {
		if !keep[i] {
			continue
		}
		s := *dg.States[i]
		s.ID = graph.StateID(finalRemap[i])
		relabelState(&s, finalRemap)
		out = append(out, &s)
	}
	return &graph.DGraph[T, V]{States: out, Initial: graph.DIndex(finalRemap[int(dg.Initial)])}
}

func localSignature[T graph.Token, V any](s *graph.State[T, V]) string {
	spans := ""
	hasFallback := false
	switch s.Dispatch.Kind {
	case graph.DispatchRanges:
		for _, r := range s.Dispatch.Ranges {
			spans += fmt.Sprintf("%v-%v:%v;", r.Lo, r.Hi, r.Trans.Action.Key())
		}
		hasFallback = s.Dispatch.Fallback != nil
		if hasFallback {
			spans += fmt.Sprintf("fb:%v;", s.Dispatch.Fallback.Action.Key())
		}
	case graph.DispatchAny:
		spans = fmt.Sprintf("%v", s.Dispatch.Any.Action.Key())
	case graph.DispatchGuard:
		spans = fmt.Sprintf("%v", s.Dispatch.Guard.Then.Action.Key())
	}
	return canonhash.State(s.Accepting(), s.NonAccept, int(s.Dispatch.Kind), hasFallback, s.Produce != nil) + "|" + spans
}

func targetSignature[T graph.Token, V any](s *graph.State[T, V], block []int) string {
	key := ""
	// Two cells with the same target block and stack op still differ if
	// their actions aren't the same construction-time Action (spec.md
	// §4.2: merge requires target-equivalence-class, stack operation,
	// AND action to agree) - two states reached on different paths that
	// otherwise look alike must stay distinct if they'd apply different
	// actions on the same input.
	cellKey := func(t graph.Transition[T, V]) string {
		switch t.Kind {
		case graph.Lateral:
			return fmt.Sprintf("L%d/%v", block[int(t.Next)], t.Action.Key())
		case graph.Call:
			return fmt.Sprintf("C%d/%d/%v", block[int(t.Detour)], int(t.Dest), t.Action.Key())
		case graph.Return:
			return fmt.Sprintf("R/%v", t.Action.Key())
		default:
			return "-"
		}
	}
	switch s.Dispatch.Kind {
	case graph.DispatchAny:
		key = cellKey(s.Dispatch.Any)
	case graph.DispatchRanges:
		for _, r := range s.Dispatch.Ranges {
			key += cellKey(r.Trans) + ","
		}
		if s.Dispatch.Fallback != nil {
			key += "fb:" + cellKey(*s.Dispatch.Fallback)
		}
	case graph.DispatchGuard:
		key = cellKey(s.Dispatch.Guard.Then)
	}
	return key
}

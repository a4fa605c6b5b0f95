package determinize

import (
	"github.com/dtromb/stackfa/graph"
)

// eliminateDead drops every state that cannot reach an accepting state
// (directly or through a Call that eventually returns into one),
// shrinking the graph before the more expensive minimization pass.
func eliminateDead[T graph.Token, V any](dg *graph.DGraph[T, V]) *graph.DGraph[T, V] {
	live := make([]bool, dg.NumStates())
	for changed := true; changed; {
		changed = false
		for i, s := range dg.States {
			if live[i] {
				continue
			}
			if s.Accepting() {
				live[i] = true
				changed = true
				continue
			}
			found := false
			walkTransitions(s, func(t graph.Transition[T, V]) {
				switch t.Kind {
				case graph.Lateral:
					if live[int(t.Next)] {
						found = true
					}
				case graph.Call:
					if live[int(t.Detour)] {
						found = true
					}
				case graph.Return:
					// A return's liveness depends on the caller, which
					// is runtime state, not graph structure; treat it
					// as live so eliminateDead never discards a
					// subroutine's only exit.
					found = true
				}
			})
			if found {
				live[i] = true
				changed = true
			}
		}
	}
	return renumber(dg, live)
}

// renumber rebuilds dg keeping only the states marked true in keep,
// relabeling every surviving reference.
func renumber[T graph.Token, V any](dg *graph.DGraph[T, V], keep []bool) *graph.DGraph[T, V] {
	remap := make([]int, len(keep))
	next := 0
	for i, k := range keep {
		if k {
			remap[i] = next
			next++
		} else {
			remap[i] = -1
		}
	}
	out := make([]*graph.State[T, V], 0, next)
	for i, k := range keep {
		if !k {
			continue
		}
		s := *dg.States[i]
		s.ID = graph.StateID(remap[i])
		relabelState(&s, remap)
		out = append(out, &s)
	}
	return &graph.DGraph[T, V]{States: out, Initial: graph.DIndex(remap[int(dg.Initial)])}
}

func relabelState[T graph.Token, V any](s *graph.State[T, V], remap []int) {
	relabel := func(t *graph.Transition[T, V]) {
		switch t.Kind {
		case graph.Lateral:
			t.Next = graph.StateID(remap[int(t.Next)])
		case graph.Call:
			t.Detour = graph.StateID(remap[int(t.Detour)])
			if remap[int(t.Dest)] >= 0 {
				t.Dest = graph.StackSymbol(remap[int(t.Dest)])
			}
		}
	}
	switch s.Dispatch.Kind {
	case graph.DispatchAny:
		relabel(&s.Dispatch.Any)
	case graph.DispatchRanges:
		for i := range s.Dispatch.Ranges {
			relabel(&s.Dispatch.Ranges[i].Trans)
		}
		if s.Dispatch.Fallback != nil {
			relabel(s.Dispatch.Fallback)
		}
	case graph.DispatchGuard:
		relabel(&s.Dispatch.Guard.Then)
	}
}

// canonicalize renumbers dg in BFS or DFS discovery order from Initial,
// so two structurally identical parsers compiled independently always
// produce byte-identical state numbering (spec.md §4.4's determinism
// requirement, load-bearing for the emitter's byte-identical output).
func canonicalize[T graph.Token, V any](dg *graph.DGraph[T, V], order Order) *graph.DGraph[T, V] {
	n := dg.NumStates()
	visited := make([]bool, n)
	var seq []int
	var frontier []int
	frontier = append(frontier, int(dg.Initial))
	visited[int(dg.Initial)] = true

	push := func(id int) {
		if !visited[id] {
			visited[id] = true
			frontier = append(frontier, id)
		}
	}

	for len(frontier) > 0 {
		var id int
		if order == DFSOrder {
			id = frontier[len(frontier)-1]
			frontier = frontier[:len(frontier)-1]
		} else {
			id = frontier[0]
			frontier = frontier[1:]
		}
		seq = append(seq, id)
		s := dg.States[id]
		walkTransitions(s, func(t graph.Transition[T, V]) {
			switch t.Kind {
			case graph.Lateral:
				push(int(t.Next))
			case graph.Call:
				push(int(t.Detour))
			}
		})
	}
	for i := 0; i < n; i++ {
		if !visited[i] {
			seq = append(seq, i)
		}
	}

	remap := make([]int, n)
	for newID, oldID := range seq {
		remap[oldID] = newID
	}
	reordered := make([]*graph.State[T, V], n)
	for oldID := 0; oldID < n; oldID++ {
		s := *dg.States[oldID]
		s.ID = graph.StateID(remap[oldID])
		relabelState(&s, remap)
		reordered[remap[oldID]] = &s
	}
	return &graph.DGraph[T, V]{States: reordered, Initial: graph.DIndex(remap[int(dg.Initial)])}
}

package determinize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dtromb/stackfa/diag"
	"github.com/dtromb/stackfa/graph"
	"github.com/dtromb/stackfa/internal/set"
)

// closure maps every state reachable from a seed purely through Epsilon
// edges to the composed action picked up along the way (Identity if the
// path carried no real work, which is the overwhelming common case -
// see withPrefix below for why preserving that matters).
func closure[T graph.Token, V any](ng *graph.NGraph[T, V], seed map[graph.StateID]bool) map[graph.StateID]graph.Action[T, V] {
	type item struct {
		id     graph.StateID
		prefix graph.Action[T, V]
	}
	result := map[graph.StateID]graph.Action[T, V]{}
	var queue []item
	for id := range seed {
		queue = append(queue, item{id, graph.Identity[T, V]()})
	}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if _, seen := result[it.id]; seen {
			continue
		}
		result[it.id] = it.prefix
		for _, ep := range ng.State(it.id).Epsilon {
			queue = append(queue, item{ep.Next, composePrefix[T, V](it.prefix, ep.Action)})
		}
	}
	return result
}

// composePrefix chains step after prefix, skipping the wrap whenever
// either leg is a no-op so that two independently-discovered paths that
// are both Identity-prefixed still compare Equal downstream.
func composePrefix[T graph.Token, V any](prefix, step graph.Action[T, V]) graph.Action[T, V] {
	id := graph.Identity[T, V]()
	if prefix.Equal(id) {
		return step
	}
	if step.Equal(id) {
		return prefix
	}
	return graph.NewAction[T, V](func(tok T, acc V) V {
		return step.Apply(tok, prefix.Apply(tok, acc))
	})
}

// withPrefix folds prefix into a member's own dispatch action before it
// is merged with siblings.
func withPrefix[T graph.Token, V any](t graph.Transition[T, V], prefix graph.Action[T, V]) graph.Transition[T, V] {
	t.Action = composePrefix[T, V](prefix, t.Action)
	return t
}

func subsetKey(ids map[graph.StateID]struct{}) string {
	out := make([]int, 0, len(ids))
	for id := range ids {
		out = append(out, int(id))
	}
	sort.Ints(out)
	parts := make([]string, len(out))
	for i, v := range out {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// worklist drives subset construction: every distinct epsilon-closed
// member set discovered becomes exactly one DFA state, numbered in
// discovery order (canonicalize renumbers later per Options).
type worklist[T graph.Token, V any] struct {
	ng      *graph.NGraph[T, V]
	seenIDs *set.Strings
	keyToID map[string]graph.StateID
	members []map[graph.StateID]graph.Action[T, V]
	bag     *diag.Bag
	opts    Options
}

func newWorklist[T graph.Token, V any](ng *graph.NGraph[T, V], bag *diag.Bag, opts Options) *worklist[T, V] {
	return &worklist[T, V]{ng: ng, seenIDs: set.NewStrings(), keyToID: map[string]graph.StateID{}, bag: bag, opts: opts}
}

// register returns the DFA state id for seed's epsilon closure,
// discovering it if this is the first time it has been seen.
func (w *worklist[T, V]) register(seed map[graph.StateID]bool) graph.StateID {
	mem := closure[T, V](w.ng, seed)
	key := func() string {
		idx := make(map[graph.StateID]struct{}, len(mem))
		for id := range mem {
			idx[id] = struct{}{}
		}
		return subsetKey(idx)
	}()
	if !w.seenIDs.Add(key) {
		return w.keyToID[key]
	}
	id := graph.StateID(len(w.members))
	w.keyToID[key] = id
	w.members = append(w.members, mem)
	return id
}

func toSeed(idx graph.NIndex) map[graph.StateID]bool {
	out := map[graph.StateID]bool{}
	for id := range idx {
		out[id] = true
	}
	return out
}

// subsetConstruct runs the worklist to completion and returns the raw
// (not yet dead-state-eliminated or minimized) deterministic graph.
func subsetConstruct[T graph.Token, V any](ng *graph.NGraph[T, V], opts Options, bag *diag.Bag) *graph.DGraph[T, V] {
	w := newWorklist[T, V](ng, bag, opts)
	initID := w.register(toSeed(ng.Initial))

	states := make([]*graph.State[T, V], 0)
	for i := 0; i < len(w.members); i++ {
		mem := w.members[i]
		states = append(states, buildState[T, V](ng, mem, graph.StateID(i), w, bag))
	}
	return &graph.DGraph[T, V]{States: states, Initial: graph.DIndex(initID)}
}

func buildState[T graph.Token, V any](ng *graph.NGraph[T, V], members map[graph.StateID]graph.Action[T, V], id graph.StateID, w *worklist[T, V], bag *diag.Bag) *graph.State[T, V] {
	out := &graph.State[T, V]{ID: id}

	var reasons []string
	var accepting bool
	var produceCandidates []graph.Action[T, V]
	var bcs []string
	for mid := range members {
		s := ng.State(mid)
		if s.Breadcrumb != "" {
			bcs = append(bcs, s.Breadcrumb)
		}
		if s.Accepting() {
			accepting = true
			if s.Produce != nil {
				produceCandidates = append(produceCandidates, *s.Produce)
			}
		} else {
			reasons = append(reasons, s.NonAccept...)
		}
	}
	if accepting {
		out.NonAccept = nil
		out.Produce = mergeProduce(produceCandidates, bag, bcs)
	} else {
		out.NonAccept = dedupStrings(reasons)
	}
	out.Breadcrumb = strings.Join(dedupStrings(bcs), "+")

	out.Dispatch = mergeDispatch[T, V](ng, members, w, bag, bcs)
	return out
}

func mergeProduce[T graph.Token, V any](cands []graph.Action[T, V], bag *diag.Bag, bcs []string) *graph.Action[T, V] {
	if len(cands) == 0 {
		return nil
	}
	first := cands[0]
	for _, c := range cands[1:] {
		if !c.Equal(first) {
			bag.Add(diag.Diagnostic{Kind: diag.ActionConflict, Message: "merged accepting states disagree on produce() action", Breadcrumbs: bcs})
			break
		}
	}
	return &first
}

func dedupStrings(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// mergeDispatch implements spec.md §4.2's per-subset dispatch collapse:
// disjoint ranges refined the way lexl/interval.go's resolveIntervals
// folds overlapping character classes together, accept-any fallbacks
// composing into every cell, guards only merging with an identically
// tagged guard, and Call/Return preserved symbol-for-symbol with a
// StackSymbolConflict diagnostic when members disagree.
func mergeDispatch[T graph.Token, V any](ng *graph.NGraph[T, V], members map[graph.StateID]graph.Action[T, V], w *worklist[T, V], bag *diag.Bag, bcs []string) graph.Dispatch[T, V] {
	type rangeArm struct {
		lo, hi T
		trans  graph.Transition[T, V]
	}
	var wilds []graph.Transition[T, V]
	var ranges []rangeArm
	var fallbacks []graph.Transition[T, V]
	var guards []graph.GuardEdge[T, V]

	for mid, prefix := range members {
		d := ng.State(mid).Dispatch
		switch d.Kind {
		case graph.DispatchNone:
		case graph.DispatchAny:
			wilds = append(wilds, withPrefix(d.Any, prefix))
		case graph.DispatchRanges:
			for _, r := range d.Ranges {
				ranges = append(ranges, rangeArm{r.Lo, r.Hi, withPrefix(r.Trans, prefix)})
			}
			if d.Fallback != nil {
				fallbacks = append(fallbacks, withPrefix(*d.Fallback, prefix))
			}
		case graph.DispatchGuard:
			guards = append(guards, graph.GuardEdge[T, V]{Test: d.Guard.Test, Then: withPrefix(d.Guard.Then, prefix), Reason: d.Guard.Reason})
		}
	}

	if len(guards) > 0 {
		if len(wilds) > 0 || len(ranges) > 0 {
			bag.Add(diag.Diagnostic{Kind: diag.GuardConflict, Message: "filter() dispatch merged with a range/any dispatch in the same subset", Breadcrumbs: bcs})
			return graph.Dispatch[T, V]{}
		}
		first := guards[0].Test
		var thens []graph.Transition[T, V]
		var reasons []string
		for _, g := range guards {
			if !g.Test.Equal(first) {
				bag.Add(diag.Diagnostic{Kind: diag.GuardConflict, Message: "merged subset carries two differently-tagged filter() guards", Breadcrumbs: bcs})
				return graph.Dispatch[T, V]{}
			}
			thens = append(thens, g.Then)
			reasons = append(reasons, g.Reason)
		}
		merged, targets := mergeGroup[T, V](thens, bag, "filter() guard", bcs)
		merged = resolveTargets(merged, targets, w)
		return graph.Dispatch[T, V]{Kind: graph.DispatchGuard, Guard: graph.GuardEdge[T, V]{Test: first, Then: merged, Reason: strings.Join(dedupStrings(reasons), "; ")}}
	}

	if len(ranges) == 0 {
		if len(wilds) == 0 {
			return graph.Dispatch[T, V]{}
		}
		merged, targets := mergeGroup[T, V](wilds, bag, "any()", bcs)
		merged = resolveTargets(merged, targets, w)
		return graph.Dispatch[T, V]{Kind: graph.DispatchAny, Any: merged}
	}

	// Group ranges by exact (lo, hi) span - spans from different members
	// that trace back to the same literal TokenRange() call always land
	// here. Spans that partially overlap without matching exactly are a
	// genuine ambiguity in the source grammar: diag it; this repo does
	// not attempt the general sub-range split.
	type group struct {
		lo, hi T
		trans  []graph.Transition[T, V]
	}
	var groups []group
	for _, r := range ranges {
		placed := false
		for i := range groups {
			if groups[i].lo == r.lo && groups[i].hi == r.hi {
				groups[i].trans = append(groups[i].trans, r.trans)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, group{lo: r.lo, hi: r.hi, trans: []graph.Transition[T, V]{r.trans}})
		}
	}
	for i := range groups {
		for j := range groups {
			if i == j {
				continue
			}
			if groups[i].lo == groups[j].lo && groups[i].hi == groups[j].hi {
				continue
			}
			if groups[i].lo <= groups[j].hi && groups[j].lo <= groups[i].hi {
				bag.Add(diag.Diagnostic{Kind: diag.OverlappingRange, Message: "two token ranges in the same subset overlap without matching exactly", Breadcrumbs: bcs})
			}
		}
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].lo < groups[j].lo })

	var edges []graph.RangeEdge[T, V]
	for _, g := range groups {
		pool := append([]graph.Transition[T, V](nil), g.trans...)
		pool = append(pool, wilds...)
		merged, targets := mergeGroup[T, V](pool, bag, "range "+fmtRange(g.lo, g.hi), bcs)
		merged = resolveTargets(merged, targets, w)
		edges = append(edges, graph.RangeEdge[T, V]{Lo: g.lo, Hi: g.hi, Trans: merged})
	}

	var fallback *graph.Transition[T, V]
	var fbPool []graph.Transition[T, V]
	if w.opts.EmitAcceptAnyFallback {
		fbPool = append(fbPool, wilds...)
	}
	fbPool = append(fbPool, fallbacks...)
	if len(fbPool) > 0 {
		merged, targets := mergeGroup[T, V](fbPool, bag, "fallback", bcs)
		merged = resolveTargets(merged, targets, w)
		fallback = &merged
	}

	return graph.Dispatch[T, V]{Kind: graph.DispatchRanges, Ranges: edges, Fallback: fallback}
}

func fmtRange[T graph.Token](lo, hi T) string {
	return fmt.Sprintf("[%v,%v]", lo, hi)
}

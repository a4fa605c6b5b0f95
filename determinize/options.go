// Package determinize turns the nondeterministic graphs the combinator
// algebra builds into deterministic ones: subset construction, conflict
// diagnostics, dead-state elimination and two interchangeable minimizers
// (spec.md §4.2, §4.4, §6).
package determinize

// Order picks the numbering strategy the final canonicalization pass
// uses to assign dense, deterministic state ids (spec.md §4.4).
type Order int

const (
	// BFSOrder numbers states in breadth-first discovery order from the
	// initial state. This is the default: it matches how subset
	// construction itself discovers states, so in the common case
	// canonicalization is a no-op relabeling.
	BFSOrder Order = iota
	// DFSOrder numbers states in depth-first discovery order, preferred
	// by the emitter when it wants call/return pairs laid out near each
	// other in the generated source.
	DFSOrder
)

// Options are the compile-time knobs spec.md §6 names.
type Options struct {
	// MergeEquivalentStates runs Hopcroft-style partition refinement
	// after subset construction, collapsing states that are
	// behaviorally indistinguishable. Default true.
	MergeEquivalentStates bool

	// EmitAcceptAnyFallback lets a merged cell's Fallback arm absorb
	// targets contributed by accept-any members even when the state
	// would otherwise be Kind: DispatchRanges with no Fallback at all.
	// Disabling it turns missing coverage into NonAccept instead.
	// Default true.
	EmitAcceptAnyFallback bool

	// CanonicalOrder picks BFS or DFS numbering for the final graph.
	CanonicalOrder Order

	// Minimizer picks which equivalence-collapsing algorithm
	// MergeEquivalentStates runs. Default HopcroftMinimizer.
	Minimizer Minimizer
}

// Minimizer selects among the interchangeable minimization algorithms
// spec.md §11 calls out as supplementing the base subset construction.
type Minimizer int

const (
	// HopcroftMinimizer partitions states by canonical signature and
	// refines by transition behavior (hopcroft.go).
	HopcroftMinimizer Minimizer = iota
	// BrzozowskiMinimizer reverses, determinizes, reverses, determinizes
	// again (brzozowski.go) - always produces a minimal automaton at the
	// cost of two extra determinization passes.
	BrzozowskiMinimizer
)

// DefaultOptions matches what Compile uses when a caller passes none of
// its own.
func DefaultOptions() Options {
	return Options{
		MergeEquivalentStates: true,
		EmitAcceptAnyFallback: true,
		CanonicalOrder:        BFSOrder,
		Minimizer:              HopcroftMinimizer,
	}
}

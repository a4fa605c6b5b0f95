package determinize

import (
	"github.com/dtromb/stackfa/diag"
	"github.com/dtromb/stackfa/graph"
)

// Compile lowers a nondeterministic graph to a deterministic one, or
// returns every diagnostic found along the way - never both (spec.md
// §7). Options with a zero value behaves like DefaultOptions() with
// every feature disabled except BFSOrder and HopcroftMinimizer, since
// Go zero-values bools to false; callers that want the usual defaults
// should start from DefaultOptions().
func Compile[T graph.Token, V any](ng *graph.NGraph[T, V], opts Options) (*graph.DGraph[T, V], *diag.Bag) {
	bag := &diag.Bag{}

	checkReturnReachability(ng, bag)
	if !bag.Empty() {
		return nil, bag
	}

	dg := subsetConstruct(ng, opts, bag)
	if !bag.Empty() {
		return nil, bag
	}

	dg = eliminateDead(dg)

	if opts.MergeEquivalentStates {
		switch opts.Minimizer {
		case BrzozowskiMinimizer:
			dg = brzozowskiMinimize(dg, opts)
		default:
			dg = mergeEquivalent(dg)
		}
	}

	dg = canonicalize(dg, opts.CanonicalOrder)
	return dg, bag
}

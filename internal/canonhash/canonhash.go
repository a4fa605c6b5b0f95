// Package canonhash computes a canonical signature for a deterministic
// state, used to seed Hopcroft-style partition refinement: two states
// with different signatures can never be equivalent, so they start in
// different blocks and are never compared again. Grounded on
// npillmayer-gorgo's go.mod pulling in a structural hasher for its own
// table-construction canonicalization; here that role is filled by
// github.com/cnf/structhash.
package canonhash

import (
	"sort"

	"github.com/cnf/structhash"
)

// signature is the part of a state's identity that transition-based
// refinement cannot change: whether it accepts, why not if it doesn't,
// and the shape of its dispatch (not its targets, which settle out of
// the partition refinement itself).
type signature struct {
	Accepting  bool
	Reasons    []string
	DispatchOf int
	HasFallback bool
	HasProduce bool
}

// State computes the seed signature for a state, given its dispatch
// kind as an int (graph.DispatchKind, passed as int to keep this
// package independent of graph's type parameters), whether it carries
// a Fallback arm, and whether it carries a Produce action.
func State(accepting bool, reasons []string, dispatchKind int, hasFallback, hasProduce bool) string {
	sorted := append([]string(nil), reasons...)
	sort.Strings(sorted)
	sig := signature{
		Accepting:   accepting,
		Reasons:     sorted,
		DispatchOf:  dispatchKind,
		HasFallback: hasFallback,
		HasProduce:  hasProduce,
	}
	h, err := structhash.Hash(sig, 1)
	if err != nil {
		// structhash only fails on types it cannot reflect over; sig is
		// a plain struct of strings/bools, so this is unreachable.
		panic("canonhash: " + err.Error())
	}
	return h
}

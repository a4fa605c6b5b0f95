package determinize_test

import (
	"testing"

	"github.com/dtromb/stackfa/combinator"
	"github.com/dtromb/stackfa/determinize"
	"github.com/dtromb/stackfa/graph"
	"github.com/dtromb/stackfa/interp"
)

// alternation(P, P) should collapse to a graph equivalent to P once
// equivalent states are merged (spec.md §8's "up to state merging" law).
func TestAlternationOfSelfMergesDown(t *testing.T) {
	p := combinator.Toss[rune, string]('a')
	alt := combinator.Alternation[rune, string](p, combinator.Toss[rune, string]('a'))

	ngP := combinator.Build[rune, string](p)
	dgP, bag := determinize.Compile(ngP, determinize.DefaultOptions())
	if !bag.Empty() {
		t.Fatalf("compiling P: %v", bag.Items())
	}

	ngAlt := combinator.Build[rune, string](alt)
	dgAlt, bag := determinize.Compile(ngAlt, determinize.DefaultOptions())
	if !bag.Empty() {
		t.Fatalf("compiling alternation(P,P): %v", bag.Items())
	}

	if dgAlt.NumStates() != dgP.NumStates() {
		t.Errorf("alternation(P,P) has %d states after merge, want %d (same as P)", dgAlt.NumStates(), dgP.NumStates())
	}
}

// Without MergeEquivalentStates, disabling the option must not collapse
// redundant states that Hopcroft would otherwise merge.
func TestMergeEquivalentStatesOptionIsHonored(t *testing.T) {
	p := combinator.Sequence[rune, string](combinator.Toss[rune, string]('a'), combinator.Toss[rune, string]('a'))
	ng := combinator.Build[rune, string](p)

	merged, bag := determinize.Compile(ng, determinize.DefaultOptions())
	if !bag.Empty() {
		t.Fatalf("compile: %v", bag.Items())
	}

	opts := determinize.DefaultOptions()
	opts.MergeEquivalentStates = false
	ng2 := combinator.Build[rune, string](p)
	unmerged, bag2 := determinize.Compile(ng2, opts)
	if !bag2.Empty() {
		t.Fatalf("compile (unmerged): %v", bag2.Items())
	}
	if unmerged.NumStates() < merged.NumStates() {
		t.Errorf("unmerged graph has fewer states (%d) than merged (%d)", unmerged.NumStates(), merged.NumStates())
	}
}

// Brzozowski minimization and Hopcroft merging must agree on the
// accepted language for a call/return-free graph.
func TestBrzozowskiAgreesWithHopcroft(t *testing.T) {
	p := combinator.Alternation[rune, string](
		combinator.Sequence[rune, string](combinator.Toss[rune, string]('a'), combinator.Toss[rune, string]('b')),
		combinator.Sequence[rune, string](combinator.Toss[rune, string]('a'), combinator.Toss[rune, string]('c')),
	)

	hop, bag := determinize.Compile(combinator.Build[rune, string](p), determinize.DefaultOptions())
	if !bag.Empty() {
		t.Fatalf("compile (hopcroft): %v", bag.Items())
	}

	opts := determinize.DefaultOptions()
	opts.Minimizer = determinize.BrzozowskiMinimizer
	brz, bag2 := determinize.Compile(combinator.Build[rune, string](p), opts)
	if !bag2.Empty() {
		t.Fatalf("compile (brzozowski): %v", bag2.Items())
	}

	for _, in := range []string{"ab", "ac", "a", "abc", ""} {
		_, errH := interp.Run(hop, interp.NewSliceStream([]rune(in)), "")
		_, errB := interp.Run(brz, interp.NewSliceStream([]rune(in)), "")
		if (errH == nil) != (errB == nil) {
			t.Errorf("input %q: hopcroft accept=%v, brzozowski accept=%v", in, errH == nil, errB == nil)
		}
	}
}

// Two states that look identical by dispatch shape alone, but that were
// reached by arms carrying different non-identity actions, must never
// be merged: spec.md §4.2 requires agreement on target-equivalence-
// class, stack operation, AND action before two states are considered
// equivalent. alternation(sequence(toss('a'), any(actX)), sequence(
// toss('b'), any(actY))) has exactly this shape: the state reached
// after 'a' and the state reached after 'b' both dispatch DispatchAny
// with no accept/fallback/produce to tell them apart, so a signature
// that ignores Action.Key() merges them and "bz" ends up running actX.
func TestMergeEquivalentStatesPreservesDistinctActions(t *testing.T) {
	actX := graph.NewAction(func(_ rune, acc string) string { return acc + "X" })
	actY := graph.NewAction(func(_ rune, acc string) string { return acc + "Y" })

	p := combinator.Alternation[rune, string](
		combinator.Sequence[rune, string](combinator.Toss[rune, string]('a'), combinator.Any(actX)),
		combinator.Sequence[rune, string](combinator.Toss[rune, string]('b'), combinator.Any(actY)),
	)

	dg, bag := determinize.Compile(combinator.Build[rune, string](p), determinize.DefaultOptions())
	if !bag.Empty() {
		t.Fatalf("compile: %v", bag.Items())
	}

	got, err := interp.Run(dg, interp.NewSliceStream([]rune("bz")), "")
	if err != nil {
		t.Fatalf(`Run("bz"): %v`, err)
	}
	if got != "Y" {
		t.Errorf(`Run("bz") = %q, want %q: state after 'b' was merged with the state after 'a' and ran actX instead of actY`, got, "Y")
	}

	got, err = interp.Run(dg, interp.NewSliceStream([]rune("az")), "")
	if err != nil {
		t.Fatalf(`Run("az"): %v`, err)
	}
	if got != "X" {
		t.Errorf(`Run("az") = %q, want %q`, got, "X")
	}
}

// A deterministic graph's transitions must only ever target a valid
// state id within the same graph (spec.md §3's invariant).
func TestCompileProducesValidTargets(t *testing.T) {
	p := combinator.Sequence[rune, string](combinator.Toss[rune, string]('a'), combinator.Toss[rune, string]('b'))
	dg, bag := determinize.Compile(combinator.Build[rune, string](p), determinize.DefaultOptions())
	if !bag.Empty() {
		t.Fatalf("compile: %v", bag.Items())
	}
	n := dg.NumStates()
	dg.Walk(func(s *graph.State[rune, string]) {
		switch s.Dispatch.Kind {
		case graph.DispatchRanges:
			for _, r := range s.Dispatch.Ranges {
				if int(r.Trans.Next) < 0 || int(r.Trans.Next) >= n {
					t.Errorf("state %d: range target %d out of bounds [0,%d)", s.ID, r.Trans.Next, n)
				}
			}
		}
	})
}

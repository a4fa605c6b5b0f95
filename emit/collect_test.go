package emit

import (
	"testing"

	"github.com/dtromb/stackfa/combinator"
	"github.com/dtromb/stackfa/determinize"
	"github.com/dtromb/stackfa/graph"
)

// The emitted parser and interp.Run both walk the same *graph.DGraph, so
// anything that merges two states that should stay distinct fools both
// equally (they'd still agree with each other, just not with the source
// parser's meaning - see determinize_test.go's
// TestMergeEquivalentStatesPreservesDistinctActions). This checks the
// table collect() hands the emitter directly: for
// alternation(sequence(toss('a'), any(actX)), sequence(toss('b'),
// any(actY))), the after-'a' and after-'b' states must still carry two
// distinct action slots once merging is done, or every piece of
// generated code downstream would bake in just one of them.
func TestCollectKeepsDistinctActionsAfterMerge(t *testing.T) {
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

	tbl := collect(dg)
	ix, okX := tbl.actionOf[actX.Key()]
	iy, okY := tbl.actionOf[actY.Key()]
	if !okX || !okY {
		t.Fatalf("expected both actX and actY to reach the emitted action table, got actions=%v", tbl.actions)
	}
	if ix == iy {
		t.Errorf("actX and actY were collapsed into the same action slot (%d); the compiled graph merged states it should have kept distinct", ix)
	}
}

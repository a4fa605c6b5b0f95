package combinator_test

import (
	"testing"

	"github.com/dtromb/stackfa/combinator"
	"github.com/dtromb/stackfa/determinize"
	"github.com/dtromb/stackfa/graph"
	"github.com/dtromb/stackfa/interp"
)

func identity() graph.Action[rune, string] {
	return graph.Identity[rune, string]()
}

func mustCompile(t *testing.T, e combinator.Expr[rune, string]) *graph.DGraph[rune, string] {
	t.Helper()
	ng := combinator.Build[rune, string](e)
	dg, bag := determinize.Compile(ng, determinize.DefaultOptions())
	if !bag.Empty() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	return dg
}

func accepts(t *testing.T, dg *graph.DGraph[rune, string], input string) bool {
	t.Helper()
	_, err := interp.Run(dg, interp.NewSliceStream([]rune(input)), "")
	return err == nil
}

// Scenario 1: toss('a') . toss('b') . toss('c')
func TestSequenceABC(t *testing.T) {
	e := combinator.Sequence[rune, string](
		combinator.Sequence[rune, string](combinator.Toss[rune, string]('a'), combinator.Toss[rune, string]('b')),
		combinator.Toss[rune, string]('c'),
	)
	dg := mustCompile(t, e)

	cases := map[string]bool{
		"abc":  true,
		"abd":  false,
		"ab":   false,
		"abcd": false,
	}
	for in, want := range cases {
		if got := accepts(t, dg, in); got != want {
			t.Errorf("accepts(%q) = %v, want %v", in, got, want)
		}
	}
}

// Scenario 2: toss('a') . (toss('b') | toss('z')) . toss('c')
func TestAlternationInSequence(t *testing.T) {
	bOrZ := combinator.Alternation[rune, string](combinator.Toss[rune, string]('b'), combinator.Toss[rune, string]('z'))
	e := combinator.Sequence[rune, string](
		combinator.Toss[rune, string]('a'),
		combinator.Sequence[rune, string](bOrZ, combinator.Toss[rune, string]('c')),
	)
	dg := mustCompile(t, e)

	cases := map[string]bool{
		"abc": true,
		"azc": true,
		"ayc": false,
	}
	for in, want := range cases {
		if got := accepts(t, dg, in); got != want {
			t.Errorf("accepts(%q) = %v, want %v", in, got, want)
		}
	}
	if n := dg.NumStates(); n != 4 {
		t.Errorf("NumStates() = %d, want 4 (initial, after-a, after-b-or-z, after-c-accept)", n)
	}
}

// Scenario 3: region("parens", toss('('), empty, toss(')'), ignore)
func TestRegionParens(t *testing.T) {
	ignore := func(pre, ret string) string { return pre }
	e := combinator.Region[rune, string]("parens",
		combinator.Toss[rune, string]('('),
		combinator.Empty[rune, string](),
		combinator.Toss[rune, string](')'),
		ignore,
	)
	dg := mustCompile(t, e)

	if !accepts(t, dg, "()") {
		t.Error(`accepts("()") = false, want true`)
	}
	if accepts(t, dg, "(") {
		t.Error(`accepts("(") = true, want false (unmatched open)`)
	}
	if accepts(t, dg, ")") {
		t.Error(`accepts(")") = true, want false (empty-stack pop)`)
	}
}

// Scenario 4, true fixpoint: fix(Q => alternation(empty, region("p",
// toss('('), Q, toss(')'), ignore))), accepting any depth of balanced
// parens via a genuine Call/Return loop rather than a bounded unroll.
func TestFixBalancedParens(t *testing.T) {
	ignore := func(pre, ret string) string { return pre }
	p := combinator.Fix[rune, string](func(q combinator.Expr[rune, string]) combinator.Expr[rune, string] {
		return combinator.Alternation[rune, string](
			combinator.Empty[rune, string](),
			combinator.Region[rune, string]("p", combinator.Toss[rune, string]('('), q, combinator.Toss[rune, string](')'), ignore),
		)
	})
	dg := mustCompile(t, p)

	accept := []string{"", "()", "(())", "((()))"}
	for _, in := range accept {
		if !accepts(t, dg, in) {
			t.Errorf("accepts(%q) = false, want true", in)
		}
	}
	reject := []string{"(", ")", "(()", "())", "(()))"}
	for _, in := range reject {
		if accepts(t, dg, in) {
			t.Errorf("accepts(%q) = true, want false", in)
		}
	}
}

// Scenario 4 (bounded, depth 2): the same shape built by hand at two
// concrete levels instead of through Fix, kept alongside
// TestFixBalancedParens to show the two constructions agree at the
// depths the bounded version can reach.
func TestNestedRegionsBoundedDepth(t *testing.T) {
	ignore := func(pre, ret string) string { return pre }
	level1 := combinator.Alternation[rune, string](
		combinator.Toss[rune, string]('x'),
		combinator.Region[rune, string]("p", combinator.Toss[rune, string]('('), combinator.Toss[rune, string]('x'), combinator.Toss[rune, string](')'), ignore),
	)
	level2 := combinator.Region[rune, string]("p", combinator.Toss[rune, string]('('), level1, combinator.Toss[rune, string](')'), ignore)
	dg := mustCompile(t, level2)

	accept := []string{"(x)", "((x))"}
	for _, in := range accept {
		if !accepts(t, dg, in) {
			t.Errorf("accepts(%q) = false, want true", in)
		}
	}
	reject := []string{"(x", "(())", "x)"}
	for _, in := range reject {
		if accepts(t, dg, in) {
			t.Errorf("accepts(%q) = true, want false", in)
		}
	}
}

// Equal is structural: two independently-built expressions with the
// same shape and leaves compare equal, and a shape or leaf difference
// compares unequal (spec.md §6).
func TestEqualIsStructural(t *testing.T) {
	if !combinator.Equal[rune, string](combinator.Toss[rune, string]('a'), combinator.Toss[rune, string]('a')) {
		t.Error("Toss('a') should equal an independently-built Toss('a')")
	}
	if combinator.Equal[rune, string](combinator.Toss[rune, string]('a'), combinator.Toss[rune, string]('b')) {
		t.Error("Toss('a') should not equal Toss('b')")
	}

	seqA := combinator.Sequence[rune, string](combinator.Toss[rune, string]('a'), combinator.Toss[rune, string]('b'))
	seqB := combinator.Sequence[rune, string](combinator.Toss[rune, string]('a'), combinator.Toss[rune, string]('b'))
	if !combinator.Equal[rune, string](seqA, seqB) {
		t.Error("sequence(toss('a'),toss('b')) should equal an independently-built copy of itself")
	}

	ignore := func(pre, ret string) string { return pre }
	regionA := combinator.Region[rune, string]("p", combinator.Toss[rune, string]('('), combinator.Empty[rune, string](), combinator.Toss[rune, string](')'), ignore)
	regionB := combinator.Region[rune, string]("p", combinator.Toss[rune, string]('('), combinator.Empty[rune, string](), combinator.Toss[rune, string](')'), ignore)
	if !combinator.Equal[rune, string](regionA, regionB) {
		t.Error("two regions built from the same literal combine func should compare equal")
	}
}

// Scenario 5: two branches filtering on the same literal with different
// actions must conflict at compile time, never silently pick one.
func TestActionConflictDiagnostic(t *testing.T) {
	act1 := graph.NewAction(func(tok rune, acc string) string { return acc + "1" })
	act2 := graph.NewAction(func(tok rune, acc string) string { return acc + "2" })
	isA := func(tok rune) bool { return tok == 'a' }

	branch1 := combinator.Sequence[rune, string](combinator.Filter[rune, string](isA, act1), combinator.Toss[rune, string]('b'))
	branch2 := combinator.Sequence[rune, string](combinator.Filter[rune, string](isA, act2), combinator.Toss[rune, string]('b'))
	e := combinator.Alternation[rune, string](branch1, branch2)

	ng := combinator.Build[rune, string](e)
	_, bag := determinize.Compile(ng, determinize.DefaultOptions())
	if bag.Empty() {
		t.Fatal("expected a diagnostic for conflicting actions on the same filter() cell, got none")
	}
}

// Scenario 6: produce(f) between two token consumers fires f exactly
// once, at that position, regardless of how the graph is determinized.
func TestProduceFiresExactlyOnce(t *testing.T) {
	calls := 0
	f := func(tok rune, acc string) string {
		calls++
		return acc + "!"
	}
	e := combinator.Sequence[rune, string](
		combinator.Toss[rune, string]('a'),
		combinator.Sequence[rune, string](combinator.Produce[rune, string](f), combinator.Toss[rune, string]('b')),
	)
	dg := mustCompile(t, e)

	acc, err := interp.Run(dg, interp.NewSliceStream([]rune("ab")), "")
	if err != nil {
		t.Fatalf("unexpected reject: %v", err)
	}
	if calls != 1 {
		t.Errorf("produce() fired %d times, want exactly 1", calls)
	}
	if acc != "!" {
		t.Errorf("accumulator = %q, want %q", acc, "!")
	}
}

// sequence(empty, P) and sequence(P, empty) both accept exactly L(P).
func TestSequenceWithEmptyIsIdentity(t *testing.T) {
	p := combinator.Toss[rune, string]('x')
	left := combinator.Sequence[rune, string](combinator.Empty[rune, string](), p)
	right := combinator.Sequence[rune, string](p, combinator.Empty[rune, string]())

	for _, dg := range []*graph.DGraph[rune, string]{mustCompile(t, left), mustCompile(t, right)} {
		if !accepts(t, dg, "x") {
			t.Error(`accepts("x") = false, want true`)
		}
		if accepts(t, dg, "xx") {
			t.Error(`accepts("xx") = true, want false`)
		}
		if accepts(t, dg, "") {
			t.Error(`accepts("") = true, want false`)
		}
	}
}

func TestEmptyInputOnAcceptingInitialState(t *testing.T) {
	dg := mustCompile(t, combinator.Empty[rune, string]())
	if !accepts(t, dg, "") {
		t.Error(`accepts("") = false, want true for empty()`)
	}
}

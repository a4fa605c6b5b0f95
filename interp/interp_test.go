package interp_test

import (
	"errors"
	"testing"

	"github.com/dtromb/stackfa/combinator"
	"github.com/dtromb/stackfa/determinize"
	"github.com/dtromb/stackfa/graph"
	"github.com/dtromb/stackfa/interp"
)

func compile(t *testing.T, e combinator.Expr[rune, string]) *graph.DGraph[rune, string] {
	t.Helper()
	ng := combinator.Build[rune, string](e)
	dg, bag := determinize.Compile(ng, determinize.DefaultOptions())
	if !bag.Empty() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	return dg
}

func TestRunRejectsUnmatchedOpenAtEndOfInput(t *testing.T) {
	ignore := func(pre, ret string) string { return pre }
	e := combinator.Region[rune, string]("p", combinator.Toss[rune, string]('('), combinator.Toss[rune, string]('x'), combinator.Toss[rune, string](')'), ignore)
	dg := compile(t, e)

	_, err := interp.Run(dg, interp.NewSliceStream([]rune("(x")), "")
	if err == nil {
		t.Fatal("expected a rejection for an unmatched open")
	}
	var perr *interp.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *interp.ParseError, got %T", err)
	}
	if !perr.UnmatchedStack {
		t.Errorf("expected UnmatchedStack=true, got %+v", perr)
	}
}

func TestRunReportsConsumedCount(t *testing.T) {
	e := combinator.Sequence[rune, string](combinator.Toss[rune, string]('a'), combinator.Toss[rune, string]('b'))
	dg := compile(t, e)

	_, err := interp.Run(dg, interp.NewSliceStream([]rune("ax")), "")
	var perr *interp.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *interp.ParseError, got %T", err)
	}
	if perr.Consumed != 1 {
		t.Errorf("Consumed = %d, want 1 (the 'a' that matched before 'x' failed)", perr.Consumed)
	}
}

func TestSliceStreamExhausts(t *testing.T) {
	s := interp.NewSliceStream([]rune("ab"))
	for i := 0; i < 2; i++ {
		more, err := s.HasMore()
		if err != nil || !more {
			t.Fatalf("HasMore() at %d = %v, %v, want true, nil", i, more, err)
		}
		if _, err := s.Next(); err != nil {
			t.Fatalf("Next() at %d: %v", i, err)
		}
	}
	more, err := s.HasMore()
	if err != nil || more {
		t.Fatalf("HasMore() after exhaustion = %v, %v, want false, nil", more, err)
	}
}

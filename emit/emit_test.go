package emit_test

import (
	"go/parser"
	"go/token"
	"strconv"
	"strings"
	"testing"

	"github.com/dtromb/stackfa/combinator"
	"github.com/dtromb/stackfa/determinize"
	"github.com/dtromb/stackfa/emit"
)

func runeLiteral(v interface{}) string {
	return strconv.QuoteRune(v.(rune))
}

func TestEmitProducesValidGoSource(t *testing.T) {
	e := combinator.Sequence[rune, string](combinator.Toss[rune, string]('a'), combinator.Toss[rune, string]('b'))
	ng := combinator.Build[rune, string](e)
	dg, bag := determinize.Compile(ng, determinize.DefaultOptions())
	if !bag.Empty() {
		t.Fatalf("compile: %v", bag.Items())
	}

	src, err := emit.Emit[rune, string](dg, emit.Config{
		Package:   "testparser",
		TokenType: "rune",
		AccType:   "string",
		Literal:   runeLiteral,
	})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, "generated.go", src, parser.AllErrors); err != nil {
		t.Fatalf("emitted source failed to parse: %v\n%s", err, src)
	}

	text := string(src)
	for _, want := range []string{"package testparser", "func Parse(", "func state0(", "type Actions struct"} {
		if !strings.Contains(text, want) {
			t.Errorf("emitted source missing %q", want)
		}
	}
}

func TestEmitIsDeterministicAcrossCalls(t *testing.T) {
	build := func() ([]byte, error) {
		e := combinator.Alternation[rune, string](combinator.Toss[rune, string]('a'), combinator.Toss[rune, string]('z'))
		ng := combinator.Build[rune, string](e)
		dg, bag := determinize.Compile(ng, determinize.DefaultOptions())
		if !bag.Empty() {
			t.Fatalf("compile: %v", bag.Items())
		}
		return emit.Emit[rune, string](dg, emit.Config{
			Package:   "p",
			TokenType: "rune",
			AccType:   "string",
			Literal:   runeLiteral,
		})
	}

	a, err := build()
	if err != nil {
		t.Fatalf("first Emit: %v", err)
	}
	b, err := build()
	if err != nil {
		t.Fatalf("second Emit: %v", err)
	}
	if string(a) != string(b) {
		t.Error("two Emit calls over structurally identical input produced different source")
	}
}

func TestEmitRejectsIncompleteConfig(t *testing.T) {
	e := combinator.Empty[rune, string]()
	ng := combinator.Build[rune, string](e)
	dg, bag := determinize.Compile(ng, determinize.DefaultOptions())
	if !bag.Empty() {
		t.Fatalf("compile: %v", bag.Items())
	}
	if _, err := emit.Emit[rune, string](dg, emit.Config{}); err == nil {
		t.Error("Emit with a zero-value Config should have returned an error")
	}
}

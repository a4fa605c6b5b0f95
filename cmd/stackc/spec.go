package main

import (
	"fmt"

	"github.com/dtromb/stackfa/combinator"
	"github.com/dtromb/stackfa/graph"
)

// exprSpec is the YAML shape of one combinator.Expr node (SPEC_FULL.md
// §9): a small nested structure mirroring the algebra directly, rather
// than a general-purpose expression language. cmd/stackc is specialized
// to a rune alphabet and a string accumulator - embedding package
// combinator directly is the path for any other (Token, Acc) pair; see
// DESIGN.md.
type exprSpec struct {
	Op      string     `yaml:"op"`
	Token   string     `yaml:"token,omitempty"`
	Lo      string     `yaml:"lo,omitempty"`
	Hi      string     `yaml:"hi,omitempty"`
	Name    string     `yaml:"name,omitempty"`
	Combine string     `yaml:"combine,omitempty"`
	Args    []exprSpec `yaml:"args,omitempty"`
	Open    *exprSpec  `yaml:"open,omitempty"`
	Inner   *exprSpec  `yaml:"inner,omitempty"`
	Close   *exprSpec  `yaml:"close,omitempty"`
}

// fileSpec is the top-level .stackspec document.
type fileSpec struct {
	Package string   `yaml:"package"`
	Prefix  string   `yaml:"prefix"`
	Expr    exprSpec `yaml:"expr"`
}

func combineFunc(name string) (func(pre, ret string) string, error) {
	switch name {
	case "", "ignore":
		return func(pre, ret string) string { return pre }, nil
	case "concat":
		return func(pre, ret string) string { return pre + ret }, nil
	case "replace":
		return func(pre, ret string) string { return ret }, nil
	default:
		return nil, fmt.Errorf("stackspec: unknown combine %q (want ignore, concat, or replace)", name)
	}
}

// build lowers an exprSpec to a combinator.Expr[rune, string]. Actions
// on every leaf are the identity, since a YAML document cannot carry an
// arbitrary Go func value - see DESIGN.md. filter()'s opaque predicate
// is consequently unreachable from this CLI; range() covers the token
// tests a grammar description needs.
func (e exprSpec) build() (combinator.Expr[rune, string], error) {
	switch e.Op {
	case "empty":
		return combinator.Empty[rune, string](), nil
	case "any":
		return combinator.Any[rune, string](graph.Identity[rune, string]()), nil
	case "toss", "ignore":
		if len(e.Token) != 1 {
			return nil, fmt.Errorf("stackspec: %s needs a single-character token, got %q", e.Op, e.Token)
		}
		return combinator.Toss[rune, string](rune(e.Token[0])), nil
	case "range":
		if len(e.Lo) != 1 || len(e.Hi) != 1 {
			return nil, fmt.Errorf("stackspec: range needs single-character lo/hi, got %q/%q", e.Lo, e.Hi)
		}
		return combinator.TokenRange[rune, string](rune(e.Lo[0]), rune(e.Hi[0]), graph.Identity[rune, string]()), nil
	case "sequence":
		return buildChain(e.Args, combinator.Sequence[rune, string])
	case "alternation":
		return buildChain(e.Args, combinator.Alternation[rune, string])
	case "region":
		if e.Open == nil || e.Inner == nil || e.Close == nil {
			return nil, fmt.Errorf("stackspec: region needs open, inner, and close")
		}
		open, err := e.Open.build()
		if err != nil {
			return nil, err
		}
		inner, err := e.Inner.build()
		if err != nil {
			return nil, err
		}
		close, err := e.Close.build()
		if err != nil {
			return nil, err
		}
		combine, err := combineFunc(e.Combine)
		if err != nil {
			return nil, err
		}
		name := e.Name
		if name == "" {
			name = "region"
		}
		return combinator.Region[rune, string](name, open, inner, close, combine), nil
	default:
		return nil, fmt.Errorf("stackspec: unknown op %q", e.Op)
	}
}

func buildChain(args []exprSpec, op func(a, b combinator.Expr[rune, string]) combinator.Expr[rune, string]) (combinator.Expr[rune, string], error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("stackspec: sequence/alternation needs at least one arg")
	}
	built := make([]combinator.Expr[rune, string], len(args))
	for i, a := range args {
		e, err := a.build()
		if err != nil {
			return nil, err
		}
		built[i] = e
	}
	acc := built[0]
	for _, e := range built[1:] {
		acc = op(acc, e)
	}
	return acc, nil
}

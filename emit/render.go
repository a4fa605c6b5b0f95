package emit

import (
	"fmt"
	"go/format"
	"sort"
	"strings"

	"github.com/dtromb/stackfa/graph"
)

// Emit translates dg to a standalone Go source file per cfg, per
// spec.md §4.4 and §6. The result is a function of (dg, cfg) alone:
// dg arrives already canonically numbered (determinize.Compile's last
// pass), and this package never consults anything else - no map
// iteration order, no pointer address, no clock (spec.md §4.4's
// determinism requirement).
func Emit[T graph.Token, V any](dg *graph.DGraph[T, V], cfg Config) ([]byte, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	t := collect(dg)

	var b strings.Builder
	writeHeader(&b, cfg, t)
	writeRuntime(&b, cfg)
	for i := 0; i < dg.NumStates(); i++ {
		writeState(&b, dg, graph.DIndex(i), cfg, t)
	}

	out, err := format.Source([]byte(b.String()))
	if err != nil {
		return nil, fmt.Errorf("emit: generated source did not gofmt: %w\n%s", err, b.String())
	}
	return out, nil
}

func writeHeader[T graph.Token, V any](b *strings.Builder, cfg Config, t *tables[T, V]) {
	fmt.Fprintf(b, "// Code generated by stackfa/emit. DO NOT EDIT.\npackage %s\n\n", cfg.Package)
	b.WriteString("import \"fmt\"\n\n")
	fmt.Fprintf(b, "type Token = %s\n", cfg.TokenType)
	fmt.Fprintf(b, "type Acc = %s\n\n", cfg.AccType)
	fmt.Fprintf(b, "// Actions supplies the semantics for every tagged edge in the compiled\n")
	fmt.Fprintf(b, "// graph, indexed by the canonical ids this file bakes into its dispatch\n")
	fmt.Fprintf(b, "// code. Populate one with the same (Token, Acc) functions the combinator\n")
	fmt.Fprintf(b, "// expression used to build the original graph.\n")
	fmt.Fprintf(b, "type Actions struct {\n")
	fmt.Fprintf(b, "\tA [%d]func(tok Token, acc Acc) Acc\n", atLeast1(len(t.actions)))
	fmt.Fprintf(b, "\tG [%d]func(tok Token) bool\n", atLeast1(len(t.guards)))
	fmt.Fprintf(b, "\tC [%d]func(pre, ret Acc) Acc\n", atLeast1(len(t.combines)))
	fmt.Fprintf(b, "}\n\n")
}

func atLeast1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func writeRuntime(b *strings.Builder, cfg Config) {
	fmt.Fprintf(b, `// Stream is the token source Parse consumes.
type Stream interface {
	HasMore() (bool, error)
	Peek() (Token, error)
	Next() (Token, error)
}

// ParseError mirrors interp.ParseError: how far the parse got, why it
// stopped, and which stack-discipline violation (if any) stopped it.
type ParseError struct {
	Consumed       int
	Reasons        []string
	UnmatchedStack bool
	EmptyStackPop  bool
}

func (e *ParseError) Error() string {
	switch {
	case e.UnmatchedStack:
		return fmt.Sprintf("parse failed after %%d token(s): unmatched open, region never closed (%%v)", e.Consumed, e.Reasons)
	case e.EmptyStackPop:
		return fmt.Sprintf("parse failed after %%d token(s): unmatched close, nothing to return to (%%v)", e.Consumed, e.Reasons)
	default:
		return fmt.Sprintf("parse failed after %%d token(s): %%v", e.Consumed, e.Reasons)
	}
}

// Parse runs the compiled parser over stream, starting from initial.
// The host call stack plays the role of the automaton's symbol stack:
// a Call becomes an ordinary Go call, a Return becomes an ordinary Go
// return, and a Lateral move becomes a tail call - see the per-state
// functions below.
func Parse(stream Stream, acts *Actions, initial Acc) (Acc, error) {
	return %s0(stream, acts, initial, 0)
}

`, cfg.prefix())
}

func stateFn(cfg Config, id graph.DIndex) string {
	return fmt.Sprintf("%s%d", cfg.prefix(), int(id))
}

func writeState[T graph.Token, V any](b *strings.Builder, dg *graph.DGraph[T, V], id graph.DIndex, cfg Config, t *tables[T, V]) {
	s := dg.State(id)
	fn := stateFn(cfg, id)
	fmt.Fprintf(b, "func %s(stream Stream, acts *Actions, acc Acc, consumed int) (Acc, error) {\n", fn)
	fmt.Fprintf(b, "\tvar zero Acc\n")
	fmt.Fprintf(b, "\tmore, err := stream.HasMore()\n\tif err != nil {\n\t\treturn zero, err\n\t}\n")
	fmt.Fprintf(b, "\tif !more {\n")
	if s.Accepting() {
		fmt.Fprintf(b, "\t\treturn acc, nil\n")
	} else {
		fmt.Fprintf(b, "\t\treturn zero, &ParseError{Consumed: consumed, Reasons: %s}\n", reasonsLit(s.NonAccept, "unexpected end of input"))
	}
	fmt.Fprintf(b, "\t}\n")
	fmt.Fprintf(b, "\ttok, err := stream.Peek()\n\tif err != nil {\n\t\treturn zero, err\n\t}\n")

	// noMatch fires only once no dispatch arm below claimed tok: a state
	// that is itself accepting treats this exactly like running out of
	// input, an implicit Return (see interp.Run's unwind), without
	// having consumed tok - the caller this function returns to tries
	// its own continuation against the very same token.
	noMatch := func(reasons []string, fallback string) {
		if s.Accepting() {
			fmt.Fprintf(b, "\treturn acc, nil\n")
			return
		}
		fmt.Fprintf(b, "\treturn zero, &ParseError{Consumed: consumed, Reasons: %s}\n", reasonsLit(reasons, fallback))
	}

	switch s.Dispatch.Kind {
	case graph.DispatchAny:
		writeArm(b, id, &s.Dispatch.Any, cfg, t, "any", 0)
	case graph.DispatchRanges:
		for ri, r := range s.Dispatch.Ranges {
			lo, hi := cfg.Literal(r.Lo), cfg.Literal(r.Hi)
			cond := fmt.Sprintf("tok >= %s && tok <= %s", lo, hi)
			if r.Lo == r.Hi {
				cond = fmt.Sprintf("tok == %s", lo)
			}
			fmt.Fprintf(b, "\tif %s {\n", cond)
			writeArm(b, id, &r.Trans, cfg, t, fmt.Sprintf("range%d", ri), 2)
			fmt.Fprintf(b, "\t}\n")
		}
		if s.Dispatch.Fallback != nil {
			writeArm(b, id, s.Dispatch.Fallback, cfg, t, "fallback", 0)
		} else {
			noMatch(s.NonAccept, "unexpected token")
		}
	case graph.DispatchGuard:
		gi := t.guard(s.Dispatch.Guard.Test)
		fmt.Fprintf(b, "\tif acts.G[%d](tok) {\n", gi)
		writeArm(b, id, &s.Dispatch.Guard.Then, cfg, t, "guard", 2)
		fmt.Fprintf(b, "\t}\n")
		reason := s.Dispatch.Guard.Reason
		if reason == "" {
			reason = "unexpected token"
		}
		noMatch(append(append([]string(nil), s.NonAccept...), reason), "unexpected token")
	default:
		noMatch(s.NonAccept, "unexpected token")
	}
	fmt.Fprintf(b, "}\n\n")
}

// writeArm renders one transition's body. id is the state the arm
// belongs to (used to key the combine table); indent is the extra
// leading tab count (0 at top level, 2 inside one `if` block). The
// transition is only committed - stream.Next() discarding the already
// Peek'd tok - once it is known to fire, so a state that ends up
// matching nothing never consumes the token it looked at.
func writeArm[T graph.Token, V any](b *strings.Builder, id graph.DIndex, tr *graph.Transition[T, V], cfg Config, t *tables[T, V], armTag string, indent int) {
	pad := strings.Repeat("\t", indent)
	ai := t.action(tr.Action)
	fmt.Fprintf(b, "%s\tif _, err := stream.Next(); err != nil {\n%s\t\treturn zero, err\n%s\t}\n", pad, pad, pad)
	switch tr.Kind {
	case graph.Lateral:
		fmt.Fprintf(b, "%s\tacc = acts.A[%d](tok, acc)\n", pad, ai)
		fmt.Fprintf(b, "%s\treturn %s(stream, acts, acc, consumed+1)\n", pad, stateFn(cfg, graph.DIndex(tr.Next)))
	case graph.Return:
		fmt.Fprintf(b, "%s\treturn acts.A[%d](tok, acc), nil\n", pad, ai)
	case graph.Call:
		ci := t.combine(fmt.Sprintf("%d:%s", int(id), armTag), tr.Combine)
		fmt.Fprintf(b, "%s\tpre := acts.A[%d](tok, acc)\n", pad, ai)
		fmt.Fprintf(b, "%s\tret, err := %s(stream, acts, pre, consumed+1)\n", pad, stateFn(cfg, graph.DIndex(tr.Detour)))
		fmt.Fprintf(b, "%s\tif err != nil {\n%s\t\tvar zero Acc\n%s\t\treturn zero, err\n%s\t}\n", pad, pad, pad, pad)
		if tr.Combine != nil {
			fmt.Fprintf(b, "%s\tacc = acts.C[%d](pre, ret)\n", pad, ci)
		} else {
			fmt.Fprintf(b, "%s\tacc = ret\n", pad)
		}
		fmt.Fprintf(b, "%s\treturn %s(stream, acts, acc, consumed+1)\n", pad, stateFn(cfg, graph.DIndex(tr.Dest)))
	}
}

func reasonsLit(reasons []string, fallback string) string {
	if len(reasons) == 0 {
		reasons = []string{fallback}
	}
	sorted := append([]string(nil), reasons...)
	sort.Strings(sorted)
	var parts []string
	for _, r := range sorted {
		parts = append(parts, fmt.Sprintf("%q", r))
	}
	return "[]string{" + strings.Join(parts, ", ") + "}"
}

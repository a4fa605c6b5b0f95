package interp

import "github.com/dtromb/stackfa/graph"

// frame is one entry of the interpreter's explicit symbol stack: the
// state a Return should resume at, the accumulator value as of the Call
// (needed by Combine once the detour returns), and the Combine function
// itself. spec.md §3 models the stack as holding only a StackSymbol;
// carrying pre and combine alongside it is the same implementation
// detail graph.Transition.Combine documents - invisible to the data
// model, load-bearing for region()'s combine step (spec.md §5's
// ordering rule: "the caller's pending combine runs after the callee
// returns").
type frame[T graph.Token, V any] struct {
	dest    graph.DIndex
	pre     V
	combine func(pre, ret V) V
}

// Run walks g against tokens starting from an empty stack and the given
// initial accumulator, per spec.md §4.3. It is the oracle interpreter:
// the emitted parser (package emit) must accept exactly the same inputs
// and produce exactly the same accumulator.
//
// A state that is Accepting() but has no dispatch arm matching the next
// token (or none at all, at end of input) is treated as an implicit
// Return: region()'s inner may itself accept the empty string (spec.md
// §8's parens example uses inner=empty), and no real token-consuming
// edge ever exists for convertToReturn to rewrite into a literal Return
// in that case. Unwinding the stack here, rather than inside region's
// graph construction, keeps the NGraph free of a zero-width transition
// kind: the next real token is read only once a transition actually
// fires, so this is observably identical to a Return that carries the
// identity action.
func Run[T graph.Token, V any](g *graph.DGraph[T, V], tokens Stream[T], initial V) (V, error) {
	var zero V
	cur := g.Initial
	acc := initial
	var stack []frame[T, V]
	consumed := 0

	unwind := func() {
		for len(stack) > 0 && g.State(cur).Accepting() {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if f.combine != nil {
				acc = f.combine(f.pre, acc)
			}
			cur = f.dest
		}
	}

	for {
		more, err := tokens.HasMore()
		if err != nil {
			return zero, err
		}
		if !more {
			unwind()
			if len(stack) != 0 {
				return zero, &ParseError{Consumed: consumed, Reasons: g.State(cur).NonAccept, UnmatchedStack: true}
			}
			if g.State(cur).Accepting() {
				return acc, nil
			}
			reasons := g.State(cur).NonAccept
			if len(reasons) == 0 {
				reasons = []string{"unexpected end of input"}
			}
			return zero, &ParseError{Consumed: consumed, Reasons: reasons}
		}

		tok, err := tokens.Peek()
		if err != nil {
			return zero, err
		}

		trans, ok := dispatch(g.State(cur), tok)
		for !ok && len(stack) > 0 && g.State(cur).Accepting() {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if f.combine != nil {
				acc = f.combine(f.pre, acc)
			}
			cur = f.dest
			trans, ok = dispatch(g.State(cur), tok)
		}
		if !ok {
			reasons := g.State(cur).NonAccept
			if len(reasons) == 0 {
				reasons = []string{"unexpected token"}
			}
			return zero, &ParseError{Consumed: consumed, Reasons: reasons}
		}

		if _, err := tokens.Next(); err != nil {
			return zero, err
		}
		consumed++

		switch trans.Kind {
		case graph.Lateral:
			acc = trans.Action.Apply(tok, acc)
			cur = graph.DIndex(trans.Next)
		case graph.Call:
			pre := trans.Action.Apply(tok, acc)
			stack = append(stack, frame[T, V]{dest: graph.DIndex(trans.Dest), pre: pre, combine: trans.Combine})
			acc = pre
			cur = graph.DIndex(trans.Detour)
		case graph.Return:
			ret := trans.Action.Apply(tok, acc)
			if len(stack) == 0 {
				return zero, &ParseError{Consumed: consumed, Reasons: []string{"unmatched close: nothing on the symbol stack to return to"}, EmptyStackPop: true}
			}
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if f.combine != nil {
				acc = f.combine(f.pre, ret)
			} else {
				acc = ret
			}
			cur = f.dest
		}
	}
}

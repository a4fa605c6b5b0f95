package graph

// TransitionKind distinguishes the three edge shapes spec.md §3 allows.
type TransitionKind int

const (
	// Lateral moves to Next without touching the stack.
	Lateral TransitionKind = iota
	// Return pops one symbol and moves to the state it names; rejects
	// if the stack is empty.
	Return
	// Call pushes Dest, moves to Detour, and resumes at the state named
	// by Dest once a matching Return pops it.
	Call
)

func (k TransitionKind) String() string {
	switch k {
	case Lateral:
		return "lateral"
	case Return:
		return "return"
	case Call:
		return "call"
	default:
		return "unknown"
	}
}

// Transition is the per-edge behavior: a stack operation plus an action.
// Two transitions merged by determinization must agree on Kind, on
// Next/Detour/Dest (after renaming through the subset map) and must
// carry Equal actions, or a conflict is raised.
type Transition[T Token, V any] struct {
	Kind   TransitionKind
	Next   StateID     // Lateral target
	Detour StateID     // Call target (the subroutine's entry state)
	Dest   StackSymbol // Call: symbol pushed, named by the resuming state

	// Action fires on the token that triggers this transition (for
	// Call, it produces the pre-call accumulator handed to the
	// detour; for Return, it produces the value that gets merged back
	// into the caller).
	Action Action[T, V]

	// Combine merges a Call's pre-call accumulator with its eventual
	// Return value once the detour completes. Only meaningful when
	// Kind == Call; nil means "use the returned value as-is" (the
	// ordinary case outside of region()). Spec.md §3 models the stack
	// as holding only a destination symbol; carrying the pre-call
	// accumulator and this function across the call is an
	// implementation detail of how region()'s combine step survives
	// the call, invisible to the Token/Action data model - see
	// DESIGN.md.
	Combine func(pre, ret V) V
}

// LateralTo builds a Lateral transition.
func LateralTo[T Token, V any](next StateID, action Action[T, V]) Transition[T, V] {
	return Transition[T, V]{Kind: Lateral, Next: next, Action: action}
}

// ReturnWith builds a Return transition.
func ReturnWith[T Token, V any](action Action[T, V]) Transition[T, V] {
	return Transition[T, V]{Kind: Return, Action: action}
}

// CallTo builds a Call transition: control detours to detour, and once
// that subroutine returns, resumes at dest with the returned value as-is.
func CallTo[T Token, V any](detour StateID, dest StackSymbol, action Action[T, V]) Transition[T, V] {
	return Transition[T, V]{Kind: Call, Detour: detour, Dest: dest, Action: action}
}

// CallToWithCombine is CallTo plus an explicit combine step, as used by
// region().
func CallToWithCombine[T Token, V any](detour StateID, dest StackSymbol, action Action[T, V], combine func(pre, ret V) V) Transition[T, V] {
	return Transition[T, V]{Kind: Call, Detour: detour, Dest: dest, Action: action, Combine: combine}
}

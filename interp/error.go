package interp

import "fmt"

// ParseError is spec.md §6's ParseError record: how far the parse got,
// why it stopped, and whether it stopped with an unmatched region open.
type ParseError struct {
	Consumed       int      // tokens read before the failure
	Reasons        []string // the failing state's non-acceptance reasons
	UnmatchedStack bool     // end-of-input reached with the symbol stack non-empty (unmatched open)
	EmptyStackPop  bool     // a Return executed with nothing on the symbol stack (unmatched close)
}

func (e *ParseError) Error() string {
	switch {
	case e.UnmatchedStack:
		return fmt.Sprintf("parse failed after %d token(s): unmatched open, region never closed (%v)", e.Consumed, e.Reasons)
	case e.EmptyStackPop:
		return fmt.Sprintf("parse failed after %d token(s): unmatched close, nothing to return to (%v)", e.Consumed, e.Reasons)
	default:
		return fmt.Sprintf("parse failed after %d token(s): %v", e.Consumed, e.Reasons)
	}
}

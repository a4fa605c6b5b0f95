// Package emit translates a deterministic graph to a standalone Go
// source file: every state becomes a function, Lateral transitions
// become tail calls, Call transitions become ordinary calls, and Return
// transitions become ordinary returns - the host call stack plays the
// role of the parser's symbol stack (spec.md §4.4, §5). Grounded on
// lexr/builder.go's code-generation style: named identifiers per state,
// hand-assembled with strings.Builder/fmt rather than a templating
// library, gofmt'd at the end with the stdlib go/format package (no
// example repo in the pack imports a codegen DSL for this, so none is
// introduced here - see DESIGN.md).
package emit

import "fmt"

// Config is spec.md §6's target_language_config: the only semantically
// visible choices are identifier naming (Prefix) and a namespace/module
// prefix (Package). Literal is an ADDED field this repo's config record
// needs beyond what spec.md names: an opaque alphabet T has no universal
// Go source-literal spelling (a rune wants `'a'`, a string wants `"ab"`,
// an int wants `7`), so the caller supplies the rendering once per
// Emit call. Emit(graph, cfg) is still a pure function of its two
// arguments - see DESIGN.md for why this does not violate spec.md
// §4.4's "no hashing, no pointer addresses, no wall-clock" determinism
// requirement.
type Config struct {
	// Package names the emitted file's package clause.
	Package string
	// Prefix names the per-state function identifiers: state N becomes
	// Prefix+N. Defaults to "state".
	Prefix string
	// TokenType is the Go type expression for T, e.g. "rune" or "int".
	TokenType string
	// AccType is the Go type expression for V, e.g. "string" or a
	// named struct type visible to the emitted file's build.
	AccType string
	// Literal renders a token value as Go source, e.g. for T=rune,
	// func(v interface{}) string { return strconv.QuoteRune(v.(rune)) }.
	Literal func(interface{}) string
}

func (c Config) prefix() string {
	if c.Prefix == "" {
		return "state"
	}
	return c.Prefix
}

func (c Config) validate() error {
	if c.Package == "" {
		return fmt.Errorf("emit: Config.Package is required")
	}
	if c.TokenType == "" {
		return fmt.Errorf("emit: Config.TokenType is required")
	}
	if c.AccType == "" {
		return fmt.Errorf("emit: Config.AccType is required")
	}
	if c.Literal == nil {
		return fmt.Errorf("emit: Config.Literal is required (no universal Go literal spelling for an opaque token type)")
	}
	return nil
}

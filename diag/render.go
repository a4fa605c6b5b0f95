package diag

import (
	"fmt"
	"io"
)

// Render writes every diagnostic in the bag as plain text, one per
// paragraph. This is the Diagnostics component itself (spec.md §4.5);
// the pretty-printer that turns this into a human-friendly report with
// source spans and color is an external collaborator (spec.md §1).
func Render(b *Bag, out io.Writer) {
	for _, d := range b.Items() {
		fmt.Fprintf(out, "%s: %s\n", d.Kind, d.Message)
		for _, bc := range d.Breadcrumbs {
			fmt.Fprintf(out, "  at %s\n", bc)
		}
	}
}

package symbols

import (
	"sort"

	"github.com/maruel/natural"
)

// SortedExportedNames lists every non-hidden, exported global's visible
// name (spec §4.5 "export"), in natural sort order, for CLI tooling that
// wants a stable, human-friendly listing of a unit's public surface
// (e.g. `buzzc check --list-globals`) rather than declaration order.
func SortedExportedNames(t *Table) []string {
	var names []string
	for _, g := range t.globals {
		if g.Hidden || !g.Exported {
			continue
		}
		names = append(names, g.VisibleName())
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

// Package plan orders a resolved template set into the sequence the merge
// engine applies fragments in.
package plan

import (
	"sort"

	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/simonhull/firebird-suite/weaver/internal/resolve"
)

// Tier returns the precedence tier of a template type. Lower tiers merge
// first, so base files exist before increments target their anchors.
func Tier(t catalog.TemplateType) int {
	switch t {
	case catalog.TypeProject:
		return 0
	case catalog.TypeService:
		return 1
	case catalog.TypePage, catalog.TypeFeature:
		return 2
	case catalog.TypeOther:
		return 3
	case catalog.TypeComposition:
		return 4
	default:
		return 3
	}
}

// Plan returns the resolved records ordered by tier, then catalog order, then
// name. The order is total and depends only on the set.
func Plan(set *resolve.ResolvedSet) []catalog.TemplateRecord {
	entries := set.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if ta, tb := Tier(a.Record.Type), Tier(b.Record.Type); ta != tb {
			return ta < tb
		}
		if a.Ordinal != b.Ordinal {
			return a.Ordinal < b.Ordinal
		}
		return a.Record.Name < b.Record.Name
	})

	out := make([]catalog.TemplateRecord, len(entries))
	for i, e := range entries {
		out[i] = e.Record
	}
	return out
}

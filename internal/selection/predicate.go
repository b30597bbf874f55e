package selection

import "github.com/simonhull/firebird-suite/weaver/internal/catalog"

// Predicate narrows a selection beyond the criteria axes.
type Predicate func(catalog.TemplateRecord) bool

// OfType accepts records of any of the given types.
func OfType(types ...catalog.TemplateType) Predicate {
	return func(r catalog.TemplateRecord) bool {
		for _, t := range types {
			if r.Type == t {
				return true
			}
		}
		return false
	}
}

// PagesAndFeatures accepts pages and features.
func PagesAndFeatures() Predicate {
	return OfType(catalog.TypePage, catalog.TypeFeature)
}

// RightClickItems accepts pages and features that can be added to an
// existing project.
func RightClickItems() Predicate {
	return And(PagesAndFeatures(), func(r catalog.TemplateRecord) bool {
		return r.RightClickEnabled
	})
}

// ExcludeGroupIdentity rejects records whose group identity is listed.
func ExcludeGroupIdentity(ids ...string) Predicate {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(r catalog.TemplateRecord) bool {
		_, excluded := set[r.GroupIdentity]
		return !excluded
	}
}

// Named accepts records answering to any of the ids (name or group identity).
func Named(ids ...string) Predicate {
	return func(r catalog.TemplateRecord) bool {
		for _, id := range ids {
			if r.Answers(id) {
				return true
			}
		}
		return false
	}
}

// And accepts records every predicate accepts.
func And(preds ...Predicate) Predicate {
	return func(r catalog.TemplateRecord) bool {
		for _, p := range preds {
			if p != nil && !p(r) {
				return false
			}
		}
		return true
	}
}

// Or accepts records any predicate accepts.
func Or(preds ...Predicate) Predicate {
	return func(r catalog.TemplateRecord) bool {
		for _, p := range preds {
			if p != nil && p(r) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(r catalog.TemplateRecord) bool {
		return !p(r)
	}
}

// FirstOfEachExclusiveGroup keeps non-exclusive records and only the first
// record (in input order) of each exclusive group.
func FirstOfEachExclusiveGroup(records []catalog.TemplateRecord) []catalog.TemplateRecord {
	seen := make(map[string]bool)
	out := make([]catalog.TemplateRecord, 0, len(records))
	for _, r := range records {
		if r.IsGroupExclusiveSelection {
			if seen[r.Group] {
				continue
			}
			seen[r.Group] = true
		}
		out = append(out, r)
	}
	return out
}

// Package resolve expands a candidate set to its dependency closure and
// reduces exclusive-selection groups to a single member.
package resolve

import (
	"fmt"
	"sort"

	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/simonhull/firebird-suite/weaver/internal/diagnostic"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
)

// Overrides pick the surviving member of an exclusive group: group name to
// template id.
type Overrides map[string]string

// Drop records an exclusive-group member removed during reduction.
type Drop struct {
	Group   string `json:"group"`
	Kept    string `json:"kept"`
	Dropped string `json:"dropped"`
}

// Options tune a resolution.
type Options struct {
	Overrides Overrides
	// Satisfied ids are already present in the destination project. They
	// satisfy dependencies and composition filters but are never emitted.
	Satisfied []string
	// Compose adds composition records whose filter is met.
	Compose bool
}

// Entry is a resolved record with its catalog position.
type Entry struct {
	Record  catalog.TemplateRecord
	Ordinal int
}

// ResolvedSet is the result of a resolution, in catalog order.
type ResolvedSet struct {
	entries []Entry
	drops   []Drop
	diags   diagnostic.Diagnostics
}

// Entries returns the resolved entries in catalog order.
func (s *ResolvedSet) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Records returns the resolved records in catalog order.
func (s *ResolvedSet) Records() []catalog.TemplateRecord {
	out := make([]catalog.TemplateRecord, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Record
	}
	return out
}

// Names returns the resolved template names in catalog order.
func (s *ResolvedSet) Names() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Record.Name
	}
	return out
}

// Drops returns exclusive-group members removed during reduction.
func (s *ResolvedSet) Drops() []Drop {
	out := make([]Drop, len(s.drops))
	copy(out, s.drops)
	return out
}

// Diagnostics returns informational findings of the resolution.
func (s *ResolvedSet) Diagnostics() diagnostic.Diagnostics {
	return s.diags
}

// Len returns the number of resolved records.
func (s *ResolvedSet) Len() int {
	return len(s.entries)
}

// Contains reports whether a resolved record answers id.
func (s *ResolvedSet) Contains(id string) bool {
	for _, e := range s.entries {
		if e.Record.Answers(id) {
			return true
		}
	}
	return false
}

// Resolver resolves candidates against one catalog snapshot and criteria.
type Resolver struct {
	records  []catalog.TemplateRecord
	byName   map[string]int
	criteria selection.Criteria
}

// NewResolver snapshots the catalog. Dependencies given as group identities
// resolve to the first variant matching criteria.
func NewResolver(c catalog.Catalog, criteria selection.Criteria) *Resolver {
	records := c.GetAll()
	byName := make(map[string]int, len(records))
	for i, r := range records {
		byName[r.Name] = i
	}
	return &Resolver{records: records, byName: byName, criteria: criteria}
}

// lookup maps a template id to a catalog ordinal, or -1.
func (r *Resolver) lookup(id string) int {
	if i, ok := r.byName[id]; ok {
		return i
	}
	for i, rec := range r.records {
		if rec.GroupIdentity == id && selection.Matches(rec, r.criteria) {
			return i
		}
	}
	return -1
}

// run holds the mutable state of one Resolve call.
type run struct {
	*Resolver
	opts         Options
	satisfiedIDs map[string]bool
	satisfied    map[int]bool
	dropped      map[int]bool
	diags        diagnostic.Diagnostics
}

// Resolve computes the dependency closure of candidates, applies the
// composition step and reduces exclusive groups. The only fatal condition is
// an unresolvable dependency.
func (r *Resolver) Resolve(candidates []catalog.TemplateRecord, opts Options) (*ResolvedSet, error) {
	st := &run{
		Resolver:     r,
		opts:         opts,
		satisfiedIDs: make(map[string]bool),
		satisfied:    make(map[int]bool),
		dropped:      make(map[int]bool),
	}
	for _, id := range opts.Satisfied {
		st.satisfiedIDs[id] = true
		if i := r.lookup(id); i >= 0 {
			st.satisfied[i] = true
		}
	}

	seeds := make([]int, 0, len(candidates))
	seen := make(map[int]bool, len(candidates))
	for _, c := range candidates {
		i, ok := r.byName[c.Name]
		if !ok {
			return nil, fmt.Errorf("candidate %s is not in the catalog", c.Name)
		}
		if !seen[i] {
			seen[i] = true
			seeds = append(seeds, i)
		}
	}

	var drops []Drop
	var working map[int]bool
	var warnings diagnostic.Diagnostics
	for {
		var err error
		working, warnings, err = st.expand(seeds)
		if err != nil {
			return nil, err
		}

		newDrops := st.reduce(working)
		if len(newDrops) == 0 {
			break
		}
		drops = append(drops, newDrops...)
	}
	st.diags.Merge(warnings)

	ordinals := make([]int, 0, len(working))
	for i := range working {
		if st.satisfied[i] && !seen[i] {
			continue
		}
		ordinals = append(ordinals, i)
	}
	sort.Ints(ordinals)

	set := &ResolvedSet{drops: drops, diags: st.diags}
	for _, i := range ordinals {
		set.entries = append(set.entries, Entry{Record: r.records[i], Ordinal: i})
	}
	return set, nil
}

// expand computes the closure of the surviving seeds, then adds compositions
// until nothing changes.
func (st *run) expand(seeds []int) (map[int]bool, diagnostic.Diagnostics, error) {
	var warnings diagnostic.Diagnostics
	working := make(map[int]bool)

	queue := make([]int, 0, len(seeds))
	for _, i := range seeds {
		if !st.dropped[i] {
			queue = append(queue, i)
		}
	}

	for {
		if err := st.closure(working, queue, &warnings); err != nil {
			return nil, warnings, err
		}
		if !st.opts.Compose {
			break
		}
		queue = st.compositions(working, &warnings)
		if len(queue) == 0 {
			break
		}
	}
	return working, warnings, nil
}

func (st *run) closure(working map[int]bool, queue []int, warnings *diagnostic.Diagnostics) error {
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if working[i] {
			continue
		}
		working[i] = true

		rec := st.records[i]
		for _, dep := range rec.Dependencies {
			if st.satisfiedIDs[dep] {
				continue
			}
			j := st.lookup(dep)
			if j < 0 {
				return &UnresolvableDependencyError{Template: rec.Name, Dependency: dep}
			}
			if st.satisfied[j] {
				continue
			}
			if st.dropped[j] {
				warnings.AddWarning(diagnostic.CodeDroppedDependency,
					fmt.Sprintf("depends on %s, which lost its exclusive group", st.records[j].Name),
					rec.Name, "")
				continue
			}
			if !working[j] {
				queue = append(queue, j)
			}
		}
	}
	return nil
}

// compositions returns composition records whose filter is met by the working
// set plus satisfied ids, requiring at least one match from the working set.
func (st *run) compositions(working map[int]bool, notes *diagnostic.Diagnostics) []int {
	var added []int
	for i, rec := range st.records {
		if rec.Type != catalog.TypeComposition || working[i] || st.dropped[i] || st.satisfied[i] {
			continue
		}
		if len(rec.CompositionFilter) == 0 || !selection.Matches(rec, st.criteria) {
			continue
		}

		fromWorking := false
		met := true
		for _, id := range rec.CompositionFilter {
			if st.present(working, id) {
				fromWorking = true
				continue
			}
			if st.satisfiedIDs[id] || st.satisfiedByIndex(id) {
				continue
			}
			met = false
			break
		}
		if met && fromWorking {
			notes.AddInfo(diagnostic.CodeCompositionApplied, "composition filter met", rec.Name, "")
			added = append(added, i)
		}
	}
	return added
}

func (st *run) present(working map[int]bool, id string) bool {
	for i := range working {
		if st.records[i].Answers(id) {
			return true
		}
	}
	return false
}

func (st *run) satisfiedByIndex(id string) bool {
	for i := range st.satisfied {
		if st.records[i].Answers(id) {
			return true
		}
	}
	return false
}

// reduce keeps one member per exclusive group and marks the rest dropped.
func (st *run) reduce(working map[int]bool) []Drop {
	groups := make(map[string][]int)
	for i := range working {
		rec := st.records[i]
		if rec.IsGroupExclusiveSelection && rec.Group != "" {
			groups[rec.Group] = append(groups[rec.Group], i)
		}
	}

	names := make([]string, 0, len(groups))
	for g := range groups {
		names = append(names, g)
	}
	sort.Strings(names)

	var drops []Drop
	for _, group := range names {
		members := groups[group]
		sort.Ints(members)

		installed := st.installedMember(group)
		if len(members) < 2 && installed < 0 {
			continue
		}

		keep := members[0]
		keptName := st.records[keep].Name
		switch {
		case installed >= 0:
			keep = -1
			keptName = st.records[installed].Name
		default:
			if id, ok := st.opts.Overrides[group]; ok {
				found := false
				for _, m := range members {
					if st.records[m].Answers(id) {
						keep, keptName, found = m, st.records[m].Name, true
						break
					}
				}
				if !found {
					st.diags.AddWarning(diagnostic.CodeOverrideIgnored,
						fmt.Sprintf("override %q is not a candidate of group %s", id, group), "", "")
				}
			}
		}

		for _, m := range members {
			if m == keep {
				continue
			}
			st.dropped[m] = true
			d := Drop{Group: group, Kept: keptName, Dropped: st.records[m].Name}
			drops = append(drops, d)
			st.diags.AddInfo(diagnostic.CodeGroupDrop,
				fmt.Sprintf("group %s keeps %s", group, keptName), d.Dropped, "")
		}
	}
	return drops
}

// installedMember returns the ordinal of a satisfied record in group, or -1.
func (st *run) installedMember(group string) int {
	best := -1
	for i := range st.satisfied {
		rec := st.records[i]
		if rec.IsGroupExclusiveSelection && rec.Group == group && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

package batch

import (
	"sort"
	"strings"

	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
)

// Combinations enumerates the distinct project type, framework, platform and
// language tuples that visible project records support. A universal axis
// expands to the values other project records on the same platform and
// language name. The result is sorted by Criteria.Short.
func Combinations(c catalog.Catalog) []selection.Criteria {
	type target struct{ platform, language string }
	var projects []catalog.TemplateRecord
	types := make(map[target][]string)
	frameworks := make(map[target][]string)

	for _, r := range c.GetAll() {
		if r.Type != catalog.TypeProject || r.IsHidden {
			continue
		}
		projects = append(projects, r)
		k := target{r.Platform, r.Language}
		types[k] = addNamed(types[k], r.ProjectTypes)
		frameworks[k] = addNamed(frameworks[k], r.FrontEndFrameworks)
	}

	seen := make(map[string]struct{})
	var out []selection.Criteria
	for _, r := range projects {
		k := target{r.Platform, r.Language}
		for _, pt := range expand(r.ProjectTypes, types[k]) {
			for _, fw := range expand(r.FrontEndFrameworks, frameworks[k]) {
				crit := selection.Criteria{ProjectType: pt, Framework: fw, Platform: r.Platform, Language: r.Language}
				key := strings.ToLower(crit.Short())
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, crit)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Short() < out[j].Short() })
	return out
}

func isUniversal(list []string) bool {
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if strings.EqualFold(v, catalog.Universal) {
			return true
		}
	}
	return false
}

func addNamed(known, list []string) []string {
	for _, v := range list {
		if strings.EqualFold(v, catalog.Universal) {
			continue
		}
		dup := false
		for _, k := range known {
			if strings.EqualFold(k, v) {
				dup = true
				break
			}
		}
		if !dup {
			known = append(known, v)
		}
	}
	return known
}

// expand returns the concrete values of an axis list. A universal list with
// nothing to expand to yields one unconstrained value.
func expand(list, known []string) []string {
	if !isUniversal(list) {
		return list
	}
	if len(known) == 0 {
		return []string{""}
	}
	return known
}

// Package selection filters a catalog down to the templates that apply to a
// set of user-chosen axes.
package selection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
)

// ErrEmptyCandidateSet is returned when a selection that must be non-empty
// matched nothing.
var ErrEmptyCandidateSet = errors.New("empty candidate set")

// Criteria are the axes a generation request is made for. An empty field
// constrains nothing.
type Criteria struct {
	ProjectType      string `yaml:"projectType" json:"projectType"`
	Framework        string `yaml:"framework" json:"framework"`
	BackendFramework string `yaml:"backendFramework,omitempty" json:"backendFramework,omitempty"`
	Platform         string `yaml:"platform" json:"platform"`
	Language         string `yaml:"language" json:"language"`
}

// String renders the criteria for logs and errors.
func (c Criteria) String() string {
	parts := []string{
		"projectType=" + c.ProjectType,
		"framework=" + c.Framework,
		"platform=" + c.Platform,
		"language=" + c.Language,
	}
	if c.BackendFramework != "" {
		parts = append(parts, "backend="+c.BackendFramework)
	}
	return strings.Join(parts, " ")
}

// Short returns a compact label such as "SplitView.MVVMBasic.Uwp.C#".
func (c Criteria) Short() string {
	var parts []string
	for _, p := range []string{c.ProjectType, c.Framework, c.BackendFramework, c.Platform, c.Language} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// Matches reports whether a record applies to the criteria, ignoring the
// hidden flag. Platform and language must match exactly.
func Matches(r catalog.TemplateRecord, c Criteria) bool {
	if c.Platform != "" && r.Platform != c.Platform {
		return false
	}
	if c.Language != "" && r.Language != c.Language {
		return false
	}
	if c.ProjectType != "" && !catalog.AppliesTo(r.ProjectTypes, c.ProjectType) {
		return false
	}
	if c.Framework != "" && !catalog.AppliesTo(r.FrontEndFrameworks, c.Framework) {
		return false
	}
	if c.BackendFramework != "" && !catalog.AppliesTo(r.BackendFrameworks, c.BackendFramework) {
		return false
	}
	return true
}

// Options tune Select.
type Options struct {
	IncludeHidden   bool
	Predicate       Predicate // nil accepts everything
	RequireNonEmpty bool
}

// Select returns the records applicable to criteria, in catalog order.
func Select(c catalog.Catalog, criteria Criteria, opts Options) ([]catalog.TemplateRecord, error) {
	var out []catalog.TemplateRecord
	for _, r := range c.GetAll() {
		if r.IsHidden && !opts.IncludeHidden {
			continue
		}
		if !Matches(r, criteria) {
			continue
		}
		if opts.Predicate != nil && !opts.Predicate(r) {
			continue
		}
		out = append(out, r)
	}

	if len(out) == 0 && opts.RequireNonEmpty {
		return nil, fmt.Errorf("%w for %s", ErrEmptyCandidateSet, criteria)
	}
	return out, nil
}

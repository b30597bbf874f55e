package testutil

import (
	"testing"

	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/stretchr/testify/require"
)

// RecordOption customises a record built by Rec.
type RecordOption func(*catalog.TemplateRecord)

// Rec builds a record that applies to every project type and framework on
// Uwp/C# unless options say otherwise.
func Rec(name string, typ catalog.TemplateType, opts ...RecordOption) catalog.TemplateRecord {
	r := catalog.TemplateRecord{
		Name:               name,
		Type:               typ,
		ProjectTypes:       []string{catalog.Universal},
		FrontEndFrameworks: []string{catalog.Universal},
		Platform:           "Uwp",
		Language:           "C#",
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Identity sets the group identity.
func Identity(id string) RecordOption {
	return func(r *catalog.TemplateRecord) { r.GroupIdentity = id }
}

// Deps sets the dependency list.
func Deps(ids ...string) RecordOption {
	return func(r *catalog.TemplateRecord) { r.Dependencies = ids }
}

// Exclusive places the record in an exclusive-selection group.
func Exclusive(group string) RecordOption {
	return func(r *catalog.TemplateRecord) {
		r.Group = group
		r.IsGroupExclusiveSelection = true
	}
}

// Hidden marks the record hidden.
func Hidden() RecordOption {
	return func(r *catalog.TemplateRecord) { r.IsHidden = true }
}

// RightClick marks the record as addable to an existing project.
func RightClick() RecordOption {
	return func(r *catalog.TemplateRecord) { r.RightClickEnabled = true }
}

// ProjectTypes restricts the project types.
func ProjectTypes(types ...string) RecordOption {
	return func(r *catalog.TemplateRecord) { r.ProjectTypes = types }
}

// Frameworks restricts the front-end frameworks.
func Frameworks(fw ...string) RecordOption {
	return func(r *catalog.TemplateRecord) { r.FrontEndFrameworks = fw }
}

// Platform sets platform and language.
func Platform(platform, language string) RecordOption {
	return func(r *catalog.TemplateRecord) {
		r.Platform = platform
		r.Language = language
	}
}

// Filter sets a composition filter.
func Filter(ids ...string) RecordOption {
	return func(r *catalog.TemplateRecord) { r.CompositionFilter = ids }
}

// SourceName sets the item-name token.
func SourceName(name string) RecordOption {
	return func(r *catalog.TemplateRecord) { r.SourceName = name }
}

// File adds a fragment file.
func File(path, content string) RecordOption {
	return func(r *catalog.TemplateRecord) {
		r.Files = append(r.Files, catalog.SourceFile{Path: path, Content: []byte(content)})
	}
}

// MustCatalog builds an in-memory catalog or fails the test.
func MustCatalog(t testing.TB, records ...catalog.TemplateRecord) *catalog.Memory {
	t.Helper()
	c, err := catalog.NewMemory(records...)
	require.NoError(t, err)
	return c
}

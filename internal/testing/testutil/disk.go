package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
)

// WriteCatalog lays records out below root in the on-disk template format,
// one numbered directory per record so catalog order survives a reload.
func WriteCatalog(t testing.TB, root string, records ...catalog.TemplateRecord) {
	t.Helper()
	for i, r := range records {
		dir := filepath.Join(root, fmt.Sprintf("%03d-%s", i, r.Name))
		meta := map[string]any{
			"name":              r.Name,
			"type":              r.Type.String(),
			"platform":          r.Platform,
			"language":          r.Language,
			"hidden":            r.IsHidden,
			"rightClickEnabled": r.RightClickEnabled,
			"exclusive":         r.IsGroupExclusiveSelection,
		}
		set := func(key string, v any, present bool) {
			if present {
				meta[key] = v
			}
		}
		set("groupIdentity", r.GroupIdentity, r.GroupIdentity != "")
		set("projectTypes", r.ProjectTypes, len(r.ProjectTypes) > 0)
		set("frameworks", r.FrontEndFrameworks, len(r.FrontEndFrameworks) > 0)
		set("backendFrameworks", r.BackendFrameworks, len(r.BackendFrameworks) > 0)
		set("group", r.Group, r.Group != "")
		set("dependencies", r.Dependencies, len(r.Dependencies) > 0)
		set("compositionFilter", r.CompositionFilter, len(r.CompositionFilter) > 0)
		set("sourceName", r.SourceName, r.SourceName != "")
		set("defaultName", r.DefaultName, r.DefaultName != "")

		data, err := yaml.Marshal(meta)
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "template.yml"), data, 0o644))

		for _, f := range r.Files {
			path := filepath.Join(dir, filepath.FromSlash(f.Path))
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
			require.NoError(t, os.WriteFile(path, f.Content, 0o644))
		}
	}
}

package project

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// ModuleInfo is what weaver reads from a go.mod.
type ModuleInfo struct {
	Path      string
	GoVersion string
}

// DetectModule parses root/go.mod.
func DetectModule(root string) (*ModuleInfo, error) {
	modPath := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(modPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("go.mod not found in %s", root)
		}
		return nil, fmt.Errorf("failed to read go.mod: %w", err)
	}
	f, err := modfile.Parse(modPath, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod: %w", err)
	}
	if f.Module == nil {
		return nil, fmt.Errorf("go.mod in %s has no module directive", root)
	}
	info := &ModuleInfo{Path: f.Module.Mod.Path}
	if f.Go != nil {
		info.GoVersion = f.Go.Version
	}
	return info, nil
}

// RootNamespaceOrInfer returns the namespace for generated code: the manifest's
// value, else the last element of the go.mod module path (major-version
// suffixes skipped), else the project name.
func (m *Manifest) RootNamespaceOrInfer() string {
	if m.RootNamespace != "" {
		return m.RootNamespace
	}
	if info, err := DetectModule(m.root); err == nil {
		return NamespaceFromModule(info.Path)
	}
	return m.Name
}

// NamespaceFromModule picks a namespace from a module path.
func NamespaceFromModule(modulePath string) string {
	base := path.Base(modulePath)
	if len(base) > 1 && base[0] == 'v' && strings.Trim(base[1:], "0123456789") == "" {
		base = path.Base(path.Dir(modulePath))
	}
	return base
}

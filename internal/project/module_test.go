package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectModule(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module github.com/contoso/shop/v2\n\ngo 1.25\n"), 0o644))

	info, err := DetectModule(root)
	require.NoError(t, err)
	assert.Equal(t, "github.com/contoso/shop/v2", info.Path)
	assert.Equal(t, "1.25", info.GoVersion)
}

func TestDetectModule_Errors(t *testing.T) {
	root := t.TempDir()
	_, err := DetectModule(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "go.mod not found")

	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("modul broken\n"), 0o644))
	_, err = DetectModule(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse go.mod")
}

func TestNamespaceFromModule(t *testing.T) {
	tests := []struct{ in, want string }{
		{"github.com/contoso/shop", "shop"},
		{"github.com/contoso/shop/v2", "shop"},
		{"shop", "shop"},
		{"example.com/vendor", "vendor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NamespaceFromModule(tt.in), tt.in)
	}
}

func TestRootNamespaceOrInfer(t *testing.T) {
	root := t.TempDir()
	m := New(root, "Contoso", criteria)
	assert.Equal(t, "Contoso", m.RootNamespaceOrInfer())

	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module github.com/contoso/shop\n"), 0o644))
	assert.Equal(t, "shop", m.RootNamespaceOrInfer())

	m.RootNamespace = "Contoso.Shop"
	assert.Equal(t, "Contoso.Shop", m.RootNamespaceOrInfer())
}

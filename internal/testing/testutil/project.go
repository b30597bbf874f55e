package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// TestProject is a scratch directory a weaver binary generates into.
type TestProject struct {
	Root      string // parent directory the project is created in
	Name      string
	Templates string // catalog directory passed with --templates
	Bin       string // weaver binary
	t         *testing.T
}

// NewTestProject creates a temporary parent directory for project name.
func NewTestProject(t *testing.T, bin, templates, name string) *TestProject {
	t.Helper()
	return &TestProject{
		Root:      t.TempDir(),
		Name:      name,
		Templates: templates,
		Bin:       bin,
		t:         t,
	}
}

// Dir returns the project directory.
func (p *TestProject) Dir() string {
	return filepath.Join(p.Root, p.Name)
}

// RunWeaver runs the binary with args plus --templates. "new" runs in Root,
// everything else in the project directory.
func (p *TestProject) RunWeaver(args ...string) (string, error) {
	p.t.Helper()

	args = append(args, "--templates", p.Templates)
	cmd := exec.Command(p.Bin, args...)
	if len(args) > 0 && args[0] == "new" {
		cmd.Dir = p.Root
	} else {
		cmd.Dir = p.Dir()
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		p.t.Logf("weaver %v failed: %s\nOutput: %s", args, err, out)
		return string(out), err
	}
	p.t.Logf("weaver output: %s", out)
	return string(out), nil
}

// FileExists reports whether path exists inside the project.
func (p *TestProject) FileExists(path string) bool {
	p.t.Helper()
	_, err := os.Stat(filepath.Join(p.Dir(), filepath.FromSlash(path)))
	return err == nil
}

// ReadFile reads a project file.
func (p *TestProject) ReadFile(path string) (string, error) {
	p.t.Helper()
	content, err := os.ReadFile(filepath.Join(p.Dir(), filepath.FromSlash(path)))
	return string(content), err
}

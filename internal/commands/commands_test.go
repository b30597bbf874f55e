package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/weaver/internal/orchestrator"
	"github.com/simonhull/firebird-suite/weaver/internal/project"
	"github.com/simonhull/firebird-suite/weaver/internal/resolve"
	"github.com/simonhull/firebird-suite/weaver/internal/testing/testutil"
	"github.com/simonhull/firebird-suite/weaver/pkg/input"
	"github.com/simonhull/firebird-suite/weaver/pkg/output"
)

var sampleFlags = []string{"-t", "Blank", "-f", "MVVMBasic", "-p", "Uwp", "-l", "C#"}

func writeSampleCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteCatalog(t, dir, testutil.SampleRecords()...)
	return dir
}

// run executes the command tree with stdin fed from stdin and returns what
// was written to stdout (including styled output).
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	output.SetWriter(&out)
	t.Cleanup(func() {
		output.SetWriter(nil)
		output.SetVerbose(false)
	})

	a := &app{prompt: input.New(strings.NewReader(stdin), &out)}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "weaver version")
}

func TestNewCmd(t *testing.T) {
	templates := writeSampleCatalog(t)
	dest := t.TempDir()

	args := append([]string{"new", "Contoso", "--templates", templates, "-o", dest, "-i", "Page.Blank:Main", "-i", "Feat.Settings"}, sampleFlags...)
	out, err := run(t, "", args...)
	require.NoError(t, err)

	assert.Contains(t, out, "Created project Contoso")
	root := filepath.Join(dest, "Contoso")
	assert.FileExists(t, filepath.Join(root, "Views", "MainPage.xaml.cs"))
	assert.FileExists(t, filepath.Join(root, "Services", "SettingsService.Basic.cs"))

	m, err := project.Load(root)
	require.NoError(t, err)
	assert.Equal(t, "Contoso", m.Name)
	assert.Contains(t, m.InstalledNames(), "Page.Blank")
}

func TestNewCmd_Prompts(t *testing.T) {
	templates := writeSampleCatalog(t)
	dest := t.TempDir()

	// Name, then the first offered combination.
	out, err := run(t, "Fabrikam\n1\n", "new", "--templates", templates, "-o", dest)
	require.NoError(t, err)

	assert.Contains(t, out, "Project name")
	assert.Contains(t, out, "Blank.MVVMBasic.Uwp.C#")
	m, err := project.Load(filepath.Join(dest, "Fabrikam"))
	require.NoError(t, err)
	assert.Equal(t, "Blank", m.Criteria.ProjectType)
	assert.Equal(t, "MVVMBasic", m.Criteria.Framework)
}

func TestNewCmd_DryRun(t *testing.T) {
	templates := writeSampleCatalog(t)
	dest := t.TempDir()

	args := append([]string{"new", "Contoso", "--templates", templates, "-o", dest, "--dry-run"}, sampleFlags...)
	out, err := run(t, "", args...)
	require.NoError(t, err)
	assert.Contains(t, out, "[DRY RUN]")
	assert.NoDirExists(t, filepath.Join(dest, "Contoso"))
}

func TestNewCmd_Errors(t *testing.T) {
	templates := writeSampleCatalog(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"invalid name", append([]string{"new", "My App"}, sampleFlags...), "project name"},
		{"unknown item", append([]string{"new", "Contoso", "-i", "Page.Nope"}, sampleFlags...), "Page.Nope"},
		{"bad override", append([]string{"new", "Contoso", "--override", "Identity"}, sampleFlags...), "group=template"},
		{"no project template", []string{"new", "Contoso", "-t", "Tabbed", "-p", "Uwp", "-l", "C#"}, "no project template"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--templates", templates, "-o", t.TempDir())
			_, err := run(t, "", args...)
			require.Error(t, err)
			assert.Contains(t, strings.ToLower(err.Error()), strings.ToLower(tt.want))
		})
	}
}

func TestAddCmd(t *testing.T) {
	templates := writeSampleCatalog(t)
	dest := t.TempDir()
	_, err := run(t, "", append([]string{"new", "Contoso", "--templates", templates, "-o", dest}, sampleFlags...)...)
	require.NoError(t, err)
	root := filepath.Join(dest, "Contoso")

	out, err := run(t, "", "add", "Page.Map:Places", "--templates", templates, "--project", root, "--skip")
	require.NoError(t, err)
	assert.Contains(t, out, "Added 1 template(s)")
	assert.FileExists(t, filepath.Join(root, "Views", "PlacesPage.xaml.cs"))
	assert.FileExists(t, filepath.Join(root, "Services", "LocationService.cs"))

	shell, err := os.ReadFile(filepath.Join(root, "ViewModels", "ShellViewModel.cs"))
	require.NoError(t, err)
	assert.Contains(t, string(shell), "Register<PlacesPage>")
}

func TestAddCmd_Errors(t *testing.T) {
	templates := writeSampleCatalog(t)

	_, err := run(t, "", "add", "Page.Map", "--templates", templates, "--force", "--skip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be combined")

	_, err = run(t, "", "add", "Page.Map", "--templates", templates, "--project", t.TempDir(), "--skip")
	assert.ErrorIs(t, err, project.ErrNotProject)
}

func TestListCmd(t *testing.T) {
	templates := writeSampleCatalog(t)

	out, err := run(t, "", "list", "--templates", templates, "--type", "page")
	require.NoError(t, err)
	assert.Contains(t, out, "Page.Blank")
	assert.Contains(t, out, "Page.Map")
	assert.NotContains(t, out, "Feat.Settings")
	assert.Contains(t, out, "2 template(s)")

	out, err = run(t, "", "list", "--templates", templates, "--hidden", "--type", "service")
	require.NoError(t, err)
	assert.Contains(t, out, "Serv.Location")
	assert.Contains(t, out, "hidden")

	_, err = run(t, "", "list", "--templates", templates, "--type", "widget")
	assert.Error(t, err)
}

func TestPlanCmd(t *testing.T) {
	templates := writeSampleCatalog(t)

	out, err := run(t, "", append([]string{"plan", "--templates", templates, "-i", "Page.Map", "--files"}, sampleFlags...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "1. Proj.Blank (project)")
	assert.Contains(t, out, "2. Serv.Location (service)")
	assert.Contains(t, out, "3. Page.Map (page)")
	assert.Contains(t, out, "Services/LocationService.cs")
	assert.Contains(t, out, "Digest")

	_, err = run(t, "", append([]string{"plan", "--templates", templates, "-i", "Page.Nope"}, sampleFlags...)...)
	assert.ErrorIs(t, err, orchestrator.ErrUnknownTemplate)
}

func TestMatrixCmd(t *testing.T) {
	templates := writeSampleCatalog(t)
	dest := t.TempDir()

	out, err := run(t, "", "matrix", "--templates", templates, "-o", dest, "-j", "2")
	require.NoError(t, err)

	for _, name := range []string{"BlankMVVMBasicUwpCSharp", "BlankPrismUwpCSharp", "SplitViewMVVMBasicUwpCSharp", "SplitViewPrismUwpCSharp"} {
		assert.Contains(t, out, name)
		assert.FileExists(t, filepath.Join(dest, name, project.ManifestName))
	}

	_, err = run(t, "", "matrix", "--templates", templates, "-o", t.TempDir(), "--platform", "Android")
	assert.Error(t, err)
}

func TestBuildCmd(t *testing.T) {
	templates := writeSampleCatalog(t)
	dest := t.TempDir()
	_, err := run(t, "", append([]string{"new", "Contoso", "--templates", templates, "-o", dest}, sampleFlags...)...)
	require.NoError(t, err)

	cfgFile := filepath.Join(t.TempDir(), "weaver.config.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
build:
  timeout: 1m
  toolchains:
    - platform: Uwp
      build: [go, version]
`), 0o644))

	out, err := run(t, "", "build", filepath.Join(dest, "Contoso"), "--config", cfgFile, "--no-test", "--quiet=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Contoso builds on Uwp")
	assert.Contains(t, out, "go version")

	_, err = run(t, "", "build", t.TempDir(), "--config", cfgFile)
	assert.ErrorIs(t, err, project.ErrNotProject)
}

func TestParseItems(t *testing.T) {
	items, err := parseItems([]string{"Page.Map", "Page.Blank:Main", " Feat.Settings : Prefs "})
	require.NoError(t, err)
	assert.Equal(t, []orchestrator.Item{
		{Template: "Page.Map"},
		{Template: "Page.Blank", Name: "Main"},
		{Template: "Feat.Settings", Name: "Prefs"},
	}, items)

	_, err = parseItems([]string{":Main"})
	assert.Error(t, err)
}

func TestParseOverrides(t *testing.T) {
	ovr, err := parseOverrides([]string{"Identity=Feat.Identity.Optional"})
	require.NoError(t, err)
	assert.Equal(t, resolve.Overrides{"Identity": "Feat.Identity.Optional"}, ovr)

	ovr, err = parseOverrides(nil)
	require.NoError(t, err)
	assert.Nil(t, ovr)

	for _, bad := range []string{"Identity", "=x", "Identity="} {
		_, err := parseOverrides([]string{bad})
		assert.Error(t, err, bad)
	}
}

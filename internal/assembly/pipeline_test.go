package assembly_test

import (
	"context"
	"errors"
	"testing"

	"github.com/simonhull/firebird-suite/weaver/internal/assembly"
	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/simonhull/firebird-suite/weaver/internal/diagnostic"
	"github.com/simonhull/firebird-suite/weaver/internal/logger"
	"github.com/simonhull/firebird-suite/weaver/internal/merge"
	"github.com/simonhull/firebird-suite/weaver/internal/resolve"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
	"github.com/simonhull/firebird-suite/weaver/internal/testing/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pick(t *testing.T, c *catalog.Memory, names ...string) []catalog.TemplateRecord {
	t.Helper()
	out := make([]catalog.TemplateRecord, 0, len(names))
	for _, n := range names {
		rec, ok := c.Lookup(n)
		require.True(t, ok, "missing %s", n)
		out = append(out, rec)
	}
	return out
}

func TestTargetPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"App_postaction.xaml.cs", "App.xaml.cs"},
		{"ViewModels/ShellViewModel_postaction.cs", "ViewModels/ShellViewModel.cs"},
		{"Views/ShellPage.xaml", "Views/ShellPage.xaml"},
		{"my_postaction_dir/File.cs", "my_postaction_dir/File.cs"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, assembly.TargetPath(tt.in))
		})
	}
}

func TestPipeline_Run_AccumulatesContributions(t *testing.T) {
	c := testutil.SampleCatalog(t)
	p := assembly.NewPipeline(c, assembly.WithLogger(logger.NewTestLogger(t)))

	result, err := p.Run(context.Background(), assembly.Request{
		Criteria:   testutil.SampleCriteria,
		Candidates: pick(t, c, "Proj.Blank", "Feat.Settings", "Page.Map", "Page.Blank"),
	})
	require.NoError(t, err)
	assert.True(t, result.Succeeded())

	assert.Equal(t,
		[]string{"Proj.Blank", "Serv.Location", "Page.Blank", "Page.Map", "Feat.Settings"},
		result.PlanNames())

	shell, ok := result.File("ViewModels/ShellViewModel.cs")
	require.True(t, ok)
	assert.Equal(t, `namespace Param_RootNamespace.ViewModels
{
    public class ShellViewModel
    {
        public void RegisterPages()
        {
            Register<BlankViewPage>("BlankView");
            Register<MapViewPage>("MapView");
            //^^ Pages
        }
    }
}
`, string(shell.Content))

	app, ok := result.File("App.xaml.cs")
	require.True(t, ok)
	assert.Contains(t, string(app.Content), "LoadAsync();\n            //^^ OnLaunched")

	assert.Contains(t, result.Paths(), "Services/LocationService.cs")
	assert.NotContains(t, result.Paths(), "ViewModels/ShellViewModel_postaction.cs")
}

func TestPipeline_Run_SelectsWhenNoCandidates(t *testing.T) {
	c := testutil.SampleCatalog(t)
	p := assembly.NewPipeline(c)

	result, err := p.Run(context.Background(), assembly.Request{
		Criteria: testutil.SampleCriteria,
		Selection: selection.Options{
			Predicate: selection.Or(selection.OfType(catalog.TypeProject), selection.Named("Page.Blank")),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Proj.Blank", "Page.Blank"}, result.PlanNames())
}

func TestPipeline_Run_EmptyCandidateSet(t *testing.T) {
	p := assembly.NewPipeline(testutil.SampleCatalog(t))

	result, err := p.Run(context.Background(), assembly.Request{
		Criteria:  selection.Criteria{Platform: "Wpf", Language: "C#"},
		Selection: selection.Options{RequireNonEmpty: true},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, selection.ErrEmptyCandidateSet)
	assert.Nil(t, result)
}

func TestPipeline_Run_UnresolvableDependencyAbortsBeforeMerge(t *testing.T) {
	c := testutil.MustCatalog(t,
		testutil.Rec("Page.Broken", catalog.TypePage, testutil.Deps("wts.Serv.Missing"),
			testutil.File("Broken.cs", "broken\n")),
	)
	p := assembly.NewPipeline(c)

	result, err := p.Run(context.Background(), assembly.Request{
		Candidates: pick(t, c, "Page.Broken"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, resolve.ErrUnresolvableDependency)
	assert.Nil(t, result)
}

func TestPipeline_Run_DanglingAnchorFailsOnlyItsFile(t *testing.T) {
	c := testutil.MustCatalog(t,
		testutil.Rec("Proj", catalog.TypeProject,
			testutil.File("Main.cs", "class Main {\n    //^^ Body\n}\n"),
			testutil.File("Other.cs", "class Other {}\n"),
		),
		testutil.Rec("Page.Bad", catalog.TypePage,
			testutil.File("Bad.cs", "class Bad {}\n"),
			testutil.File("Main_postaction.cs", "//{[{ Missing\nx();\n//}]}\n"),
		),
	)
	p := assembly.NewPipeline(c)

	result, err := p.Run(context.Background(), assembly.Request{
		Candidates: pick(t, c, "Proj", "Page.Bad"),
	})
	require.NoError(t, err)
	assert.False(t, result.Succeeded())
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "Main.cs", result.Failed[0].Path)

	var dangling *merge.DanglingAnchorError
	require.True(t, errors.As(result.Failed[0].Err, &dangling))
	assert.Equal(t, "Missing", dangling.Anchor)

	assert.Equal(t, []string{"Bad.cs", "Other.cs"}, result.Paths())
	assert.NotEmpty(t, result.Diagnostics.WithCode(diagnostic.CodeDanglingAnchor))
}

func TestPipeline_Run_ExclusiveGroupDrop(t *testing.T) {
	c := testutil.SampleCatalog(t)
	p := assembly.NewPipeline(c)

	result, err := p.Run(context.Background(), assembly.Request{
		Criteria:   testutil.SampleCriteria,
		Candidates: pick(t, c, "Proj.Blank", "Feat.Identity.Forced", "Feat.Identity.Optional"),
		Overrides:  resolve.Overrides{"Identity": "Feat.Identity.Optional"},
	})
	require.NoError(t, err)
	require.Len(t, result.Dropped, 1)
	assert.Equal(t, "Feat.Identity.Forced", result.Dropped[0].Dropped)

	identity, ok := result.File("Services/IdentityService.cs")
	require.True(t, ok)
	assert.Contains(t, string(identity.Content), "optional")
	assert.Empty(t, result.Conflicts)
}

func TestPipeline_Run_Deterministic(t *testing.T) {
	c := testutil.SampleCatalog(t)
	p := assembly.NewPipeline(c)
	req := assembly.Request{
		Criteria:   testutil.SampleCriteria,
		Candidates: pick(t, c, "Proj.Blank", "Page.Blank", "Page.Map", "Feat.Settings"),
		Compose:    true,
	}

	first, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.Digest(), second.Digest())
	assert.Len(t, first.Digest(), 64)

	req.Candidates = pick(t, c, "Proj.Blank", "Page.Blank")
	third, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.Digest(), third.Digest())
}

func TestPipeline_Run_StripAnchors(t *testing.T) {
	c := testutil.SampleCatalog(t)
	p := assembly.NewPipeline(c)

	result, err := p.Run(context.Background(), assembly.Request{
		Criteria:     testutil.SampleCriteria,
		Candidates:   pick(t, c, "Proj.Blank", "Page.Blank"),
		StripAnchors: true,
	})
	require.NoError(t, err)
	for _, f := range result.Files {
		assert.NotContains(t, string(f.Content), "^^", f.Path)
	}
}

func TestPipeline_Run_ExistingBase(t *testing.T) {
	c := testutil.SampleCatalog(t)
	p := assembly.NewPipeline(c)
	base := map[string][]byte{
		"App.xaml.cs": []byte("class App {\r\n    //^^ OnLaunched\r\n}\r\n"),
	}

	result, err := p.Run(context.Background(), assembly.Request{
		Criteria:   testutil.SampleCriteria,
		Candidates: pick(t, c, "Feat.Settings"),
		Satisfied:  []string{"Proj.Blank"},
		Base:       base,
	})
	require.NoError(t, err)

	app, ok := result.File("App.xaml.cs")
	require.True(t, ok)
	assert.True(t, app.Modified())
	assert.Equal(t, "class App {\r\n            await Singleton<SettingsService>.Instance.LoadAsync();\n    //^^ OnLaunched\r\n}\r\n", string(app.Content))
	assert.Equal(t, "class App {\r\n    //^^ OnLaunched\r\n}\r\n", string(base["App.xaml.cs"]), "base must not be mutated")
}

func TestPipeline_Run_StripAnchorsLeavesUntouchedBase(t *testing.T) {
	c := testutil.SampleCatalog(t)
	p := assembly.NewPipeline(c)
	app := "class App {\n    //^^ OnLaunched\n}\n"
	shell := "class Shell {\n            //^^ Pages\n}\n"

	result, err := p.Run(context.Background(), assembly.Request{
		Criteria:     testutil.SampleCriteria,
		Candidates:   pick(t, c, "Page.Map"),
		Satisfied:    []string{"Proj.Blank"},
		Base:         map[string][]byte{"App.xaml.cs": []byte(app), "ViewModels/ShellViewModel.cs": []byte(shell)},
		StripAnchors: true,
	})
	require.NoError(t, err)

	untouched, ok := result.File("App.xaml.cs")
	require.True(t, ok)
	assert.False(t, untouched.Modified())
	assert.Equal(t, app, string(untouched.Content))

	merged, ok := result.File("ViewModels/ShellViewModel.cs")
	require.True(t, ok)
	assert.True(t, merged.Modified())
	assert.Contains(t, string(merged.Content), "Register<MapViewPage>")
	assert.NotContains(t, string(merged.Content), "^^")
}

type stubChecker struct{ paths []string }

func (s *stubChecker) Check(path string, _ []byte) []diagnostic.Diagnostic {
	s.paths = append(s.paths, path)
	return []diagnostic.Diagnostic{{Code: diagnostic.CodeSyntaxError, Message: "bad", Path: path}}
}

func TestPipeline_Run_Checker(t *testing.T) {
	c := testutil.MustCatalog(t, testutil.Rec("Proj", catalog.TypeProject, testutil.File("a.go", "package a\n")))
	checker := &stubChecker{}
	p := assembly.NewPipeline(c, assembly.WithChecker(checker))

	result, err := p.Run(context.Background(), assembly.Request{Candidates: pick(t, c, "Proj")})
	require.NoError(t, err)
	assert.Empty(t, checker.paths, "checker runs only when requested")

	result, err = p.Run(context.Background(), assembly.Request{Candidates: pick(t, c, "Proj"), CheckSyntax: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go"}, checker.paths)
	assert.Len(t, result.Diagnostics.WithCode(diagnostic.CodeSyntaxError), 1)
	assert.True(t, result.Succeeded(), "syntax findings are warnings")
}

func TestPipeline_Run_CheckerSkipsUntouchedBase(t *testing.T) {
	c := testutil.SampleCatalog(t)
	checker := &stubChecker{}
	p := assembly.NewPipeline(c, assembly.WithChecker(checker))

	_, err := p.Run(context.Background(), assembly.Request{
		Criteria:   testutil.SampleCriteria,
		Candidates: pick(t, c, "Feat.Settings"),
		Satisfied:  []string{"Proj.Blank"},
		Base: map[string][]byte{
			"App.xaml.cs":      []byte("class App {\n    //^^ OnLaunched\n}\n"),
			"Views/Other.xaml": []byte("<Page />\n"),
			"ViewModels/Vm.cs": []byte("class Vm {}\n"),
		},
		Compose:     true,
		CheckSyntax: true,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"App.xaml.cs",
		"Services/SettingsService.Basic.cs",
		"Services/SettingsService.cs",
	}, checker.paths)
}

func TestPipeline_Run_RenderError(t *testing.T) {
	c := testutil.MustCatalog(t, testutil.Rec("Proj", catalog.TypeProject, testutil.File("a.cs", "x\n")))
	p := assembly.NewPipeline(c)
	boom := errors.New("boom")

	_, err := p.Run(context.Background(), assembly.Request{
		Candidates: pick(t, c, "Proj"),
		Render: func(catalog.TemplateRecord, catalog.SourceFile) (string, []byte, error) {
			return "", nil, boom
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "rendering a.cs of Proj")
}

func TestPipeline_Run_Cancelled(t *testing.T) {
	c := testutil.SampleCatalog(t)
	p := assembly.NewPipeline(c)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, assembly.Request{Candidates: pick(t, c, "Proj.Blank")})
	assert.ErrorIs(t, err, context.Canceled)
}

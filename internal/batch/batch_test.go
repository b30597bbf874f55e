package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/weaver/internal/assembly"
	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/simonhull/firebird-suite/weaver/internal/harness"
	"github.com/simonhull/firebird-suite/weaver/internal/logger"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
	"github.com/simonhull/firebird-suite/weaver/internal/testing/testutil"
)

func helperCommand(name string, args ...string) *exec.Cmd {
	cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
	cmd := exec.Command(os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	switch args[0] {
	case "build":
		if _, err := os.Stat("weaver.yml"); err != nil {
			fmt.Fprintln(os.Stderr, "not a project")
			os.Exit(1)
		}
		fmt.Println("Build succeeded.")
	case "hang":
		time.Sleep(30 * time.Second)
	}
	os.Exit(0)
}

func TestCombinations(t *testing.T) {
	got := Combinations(testutil.SampleCatalog(t))

	var labels []string
	for _, c := range got {
		labels = append(labels, c.Short())
	}
	assert.Equal(t, []string{
		"Blank.MVVMBasic.Uwp.C#",
		"Blank.Prism.Uwp.C#",
		"SplitView.MVVMBasic.Uwp.C#",
		"SplitView.Prism.Uwp.C#",
	}, labels)
}

func TestCombinations_SkipsHiddenAndNonProjects(t *testing.T) {
	c := testutil.MustCatalog(t,
		testutil.Rec("Proj.Wpf", catalog.TypeProject, testutil.ProjectTypes("Blank"), testutil.Frameworks(catalog.Universal), testutil.Platform("Wpf", "C#")),
		testutil.Rec("Proj.Hidden", catalog.TypeProject, testutil.ProjectTypes("Secret"), testutil.Frameworks("MVVMBasic"), testutil.Hidden()),
		testutil.Rec("Page.Blank", catalog.TypePage, testutil.ProjectTypes("Tabbed")),
	)

	got := Combinations(c)
	require.Len(t, got, 1)
	assert.Equal(t, selection.Criteria{ProjectType: "Blank", Platform: "Wpf", Language: "C#"}, got[0])
}

func TestRun(t *testing.T) {
	var running, peak atomic.Int32
	boom := errors.New("boom")

	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = func(ctx context.Context) error {
			n := running.Add(1)
			defer running.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			if i == 3 {
				return boom
			}
			return nil
		}
	}

	errs := Run(context.Background(), 2, jobs)
	require.Len(t, errs, 8)
	for i, err := range errs {
		if i == 3 {
			assert.ErrorIs(t, err, boom)
		} else {
			assert.NoError(t, err, "job %d", i)
		}
	}
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int32
	jobs := []Job{
		func(context.Context) error { ran.Add(1); return nil },
		func(context.Context) error { ran.Add(1); return nil },
	}
	for _, err := range Run(ctx, 1, jobs) {
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Zero(t, ran.Load())
}

func TestProjectName(t *testing.T) {
	tests := []struct {
		crit selection.Criteria
		want string
	}{
		{selection.Criteria{ProjectType: "SplitView", Framework: "MVVMBasic", Platform: "Uwp", Language: "C#"}, "SplitViewMVVMBasicUwpCSharp"},
		{selection.Criteria{ProjectType: "Blank", Framework: "Code-Behind", Platform: "Wpf", Language: "VisualBasic"}, "BlankCodeBehindWpfVisualBasic"},
		{selection.Criteria{ProjectType: "3D"}, "App3D"},
		{selection.Criteria{}, "App"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectName(tt.crit))
		})
	}
}

func newRunner(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	log := logger.NewTestLogger(t)
	p := assembly.NewPipeline(testutil.SampleCatalog(t), assembly.WithLogger(log))
	return NewRunner(p, &bytes.Buffer{}, append([]Option{WithLogger(log)}, opts...)...)
}

func TestMatrix(t *testing.T) {
	dest := t.TempDir()
	combos := []selection.Criteria{
		{ProjectType: "Blank", Framework: "MVVMBasic", Platform: "Uwp", Language: "C#"},
		{ProjectType: "Blank", Framework: "Prism", Platform: "Uwp", Language: "C#"},
		{ProjectType: "Blank", Framework: "MVVMBasic", Platform: "Wpf", Language: "C#"},
	}

	results, err := newRunner(t, WithConcurrency(2)).Matrix(context.Background(), MatrixRequest{
		Destination:  dest,
		Combinations: combos,
		Select:       selection.OfType(catalog.TypeFeature),
		Compose:      true,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, res := range results[:2] {
		require.NoError(t, res.Err, res.ProjectName)
		assert.FileExists(t, filepath.Join(dest, res.ProjectName, "weaver.yml"))
		assert.FileExists(t, filepath.Join(dest, res.ProjectName, "Services", "SettingsService.cs"))
		assert.Contains(t, res.Result.PlanNames(), "Feat.Settings")
	}
	assert.FileExists(t, filepath.Join(dest, "BlankMVVMBasicUwpCSharp", "Services", "SettingsService.Basic.cs"))
	assert.FileExists(t, filepath.Join(dest, "BlankPrismUwpCSharp", "Services", "SettingsService.Prism.cs"))

	assert.ErrorIs(t, results[2].Err, selection.ErrEmptyCandidateSet)
	assert.NoDirExists(t, filepath.Join(dest, results[2].ProjectName))
}

func TestMatrix_Build(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		timeout time.Duration
		check   func(t *testing.T, res JobResult)
	}{
		{
			name:    "passes",
			argv:    []string{"build"},
			timeout: time.Minute,
			check: func(t *testing.T, res JobResult) {
				require.NoError(t, res.Err)
				require.NotNil(t, res.Report)
				assert.True(t, res.Report.Passed())
			},
		},
		{
			name:    "timeout passed through",
			argv:    []string{"hang"},
			timeout: 100 * time.Millisecond,
			check: func(t *testing.T, res JobResult) {
				assert.IsType(t, &harness.BuildTimedOutError{}, res.Err)
				assert.ErrorIs(t, res.Err, harness.ErrBuildTimedOut)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := harness.New(
				harness.NewRegistry(harness.Toolchain{Platform: "Uwp", Build: tt.argv}),
				harness.WithOutput(&bytes.Buffer{}),
				harness.WithTimeout(tt.timeout),
				harness.WithCommand(helperCommand),
			)
			results, err := newRunner(t, WithHarness(h)).Matrix(context.Background(), MatrixRequest{
				Destination:  t.TempDir(),
				Combinations: []selection.Criteria{testutil.SampleCriteria},
				Build:        true,
				Steps:        []harness.Step{harness.StepBuild},
			})
			require.NoError(t, err)
			require.Len(t, results, 1)
			tt.check(t, results[0])
		})
	}
}

func TestMatrix_BuildWithoutHarness(t *testing.T) {
	_, err := newRunner(t).Matrix(context.Background(), MatrixRequest{Build: true})
	assert.Error(t, err)
}

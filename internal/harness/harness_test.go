package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgexec "github.com/simonhull/firebird-suite/weaver/pkg/exec"
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
		fmt.Println("Build succeeded.")
	case "test":
		fmt.Println("Passed: 3")
	case "fail":
		fmt.Fprintln(os.Stderr, "error CS0103: name does not exist")
		os.Exit(1)
	case "hang":
		time.Sleep(30 * time.Second)
	}
	os.Exit(0)
}

func newHarness(out *bytes.Buffer, timeout time.Duration, toolchains ...Toolchain) *Harness {
	return New(NewRegistry(toolchains...),
		WithOutput(out),
		WithTimeout(timeout),
		WithCommand(helperCommand),
	)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(DefaultToolchains()...)

	tc, err := r.Lookup("uwp")
	require.NoError(t, err)
	assert.Equal(t, "Uwp", tc.Platform)
	assert.Nil(t, tc.Command(StepTest))

	_, err = r.Lookup("Android")
	assert.ErrorIs(t, err, ErrNoToolchain)

	r.Register(Toolchain{Platform: "Android", Build: []string{"gradle", "build"}})
	assert.Contains(t, r.Platforms(), "Android")
	assert.Equal(t, []string{"Android", "Go", "Uwp", "WinUI", "Wpf"}, r.Platforms())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		toolchain Toolchain
		steps     []Step
		wantSteps int
		wantErr   error
		wantOut   []string
	}{
		{
			name:      "build and test pass",
			toolchain: Toolchain{Platform: "Test", Build: []string{"build"}, Test: []string{"test"}},
			wantSteps: 2,
			wantOut:   []string{"[App1] ", "Build succeeded.", "Passed: 3"},
		},
		{
			name:      "unsupported step skipped",
			toolchain: Toolchain{Platform: "Test", Build: []string{"build"}},
			wantSteps: 1,
		},
		{
			name:      "build only",
			toolchain: Toolchain{Platform: "Test", Build: []string{"build"}, Test: []string{"test"}},
			steps:     []Step{StepBuild},
			wantSteps: 1,
		},
		{
			name:      "build failure stops",
			toolchain: Toolchain{Platform: "Test", Build: []string{"fail"}, Test: []string{"test"}},
			wantSteps: 1,
			wantErr:   &StepFailedError{},
			wantOut:   []string{"CS0103"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			h := newHarness(&out, time.Minute, tt.toolchain)

			report, err := h.Validate(context.Background(), "App1", "Test", t.TempDir(), tt.steps...)
			require.NotNil(t, report)
			assert.Len(t, report.Steps, tt.wantSteps)
			if tt.wantErr != nil {
				var failed *StepFailedError
				require.True(t, errors.As(err, &failed))
				assert.Equal(t, StepBuild, failed.Step)
				var cmdErr *pkgexec.CommandError
				assert.True(t, errors.As(err, &cmdErr))
				assert.False(t, report.Passed())
			} else {
				require.NoError(t, err)
				assert.True(t, report.Passed())
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestValidate_Timeout(t *testing.T) {
	var out bytes.Buffer
	h := newHarness(&out, 100*time.Millisecond, Toolchain{Platform: "Test", Build: []string{"hang"}})

	start := time.Now()
	report, err := h.Validate(context.Background(), "Slow", "Test", t.TempDir())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)

	assert.ErrorIs(t, err, ErrBuildTimedOut)
	var timedOut *BuildTimedOutError
	require.True(t, errors.As(err, &timedOut))
	assert.Equal(t, "Slow", timedOut.Project)
	assert.Equal(t, StepBuild, timedOut.Step)
	assert.Equal(t, 100*time.Millisecond, timedOut.Timeout)
	assert.Same(t, timedOut, report.Steps[0].Err)
}

func TestValidate_ParentCancelled(t *testing.T) {
	var out bytes.Buffer
	h := newHarness(&out, time.Minute, Toolchain{Platform: "Test", Build: []string{"hang"}})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	_, err := h.Validate(ctx, "App1", "Test", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrBuildTimedOut)
}

func TestValidate_UnknownPlatform(t *testing.T) {
	h := newHarness(&bytes.Buffer{}, time.Minute)
	_, err := h.Validate(context.Background(), "App1", "Nope", t.TempDir())
	assert.ErrorIs(t, err, ErrNoToolchain)
}

func TestValidate_Spinner(t *testing.T) {
	var out bytes.Buffer
	h := New(NewRegistry(Toolchain{Platform: "Test", Build: []string{"fail"}}),
		WithOutput(&out),
		WithSpinner(true),
		WithCommand(helperCommand),
	)

	_, err := h.Validate(context.Background(), "App1", "Test", t.TempDir())
	var cmdErr *pkgexec.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Contains(t, cmdErr.Output, "CS0103")
}

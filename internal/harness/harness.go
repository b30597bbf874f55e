// Package harness builds and tests generated projects with the toolchain of
// their platform. Each step runs under its own deadline.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/simonhull/firebird-suite/weaver/internal/logger"
	"github.com/simonhull/firebird-suite/weaver/pkg/exec"
)

// DefaultTimeout bounds one step when no timeout is configured.
const DefaultTimeout = 10 * time.Minute

// ErrBuildTimedOut is wrapped by BuildTimedOutError.
var ErrBuildTimedOut = errors.New("build timed out")

// BuildTimedOutError is a step that outlived its deadline.
type BuildTimedOutError struct {
	Project  string
	Platform string
	Step     Step
	Timeout  time.Duration
}

func (e *BuildTimedOutError) Error() string {
	return fmt.Sprintf("%s: %s on %s exceeded %s: %v", e.Project, e.Step, e.Platform, e.Timeout, ErrBuildTimedOut)
}

func (e *BuildTimedOutError) Unwrap() error { return ErrBuildTimedOut }

// StepFailedError is a step whose command exited unsuccessfully.
type StepFailedError struct {
	Project string
	Step    Step
	Err     error
}

func (e *StepFailedError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Project, e.Step, e.Err)
}

func (e *StepFailedError) Unwrap() error { return e.Err }

// StepResult records one step that ran.
type StepResult struct {
	Step     Step
	Command  string
	Duration time.Duration
	Err      error
}

// Report is the outcome of validating one project.
type Report struct {
	Project  string
	Platform string
	Steps    []StepResult
}

// Passed reports whether every step that ran succeeded.
func (r *Report) Passed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return false
		}
	}
	return true
}

// Harness runs toolchain steps against project directories.
type Harness struct {
	registry *Registry
	timeout  time.Duration
	out      io.Writer
	log      logger.Logger
	spinner  bool
	command  func(name string, args ...string) *osexec.Cmd
}

// Option configures a Harness.
type Option func(*Harness)

// WithTimeout sets the per-step deadline.
func WithTimeout(d time.Duration) Option {
	return func(h *Harness) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithOutput sends toolchain output to w, each line prefixed with the
// project name.
func WithOutput(w io.Writer) Option {
	return func(h *Harness) { h.out = w }
}

// WithSpinner hides toolchain output behind a spinner; the tail of the
// output is attached to the error when a step fails.
func WithSpinner(on bool) Option {
	return func(h *Harness) { h.spinner = on }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Harness) { h.log = l }
}

// WithCommand replaces process construction, for tests.
func WithCommand(fn func(name string, args ...string) *osexec.Cmd) Option {
	return func(h *Harness) { h.command = fn }
}

// New returns a harness using registry, or the default toolchains when nil.
func New(registry *Registry, opts ...Option) *Harness {
	if registry == nil {
		registry = NewRegistry(DefaultToolchains()...)
	}
	h := &Harness{
		registry: registry,
		timeout:  DefaultTimeout,
		out:      os.Stdout,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Registry returns the toolchains the harness knows.
func (h *Harness) Registry() *Registry {
	return h.registry
}

var prefixStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

// Validate runs steps (build then test by default) in dir with platform's
// toolchain. It stops at the first failing step. A step past its deadline
// yields a *BuildTimedOutError; cancellation of ctx is returned as is.
func (h *Harness) Validate(ctx context.Context, project, platform, dir string, steps ...Step) (*Report, error) {
	tc, err := h.registry.Lookup(platform)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		steps = []Step{StepBuild, StepTest}
	}

	report := &Report{Project: project, Platform: tc.Platform}
	pw := exec.NewPrefixWriter(h.out, fmt.Sprintf("[%s] ", project), prefixStyle)
	defer func() { _ = pw.Flush() }()

	ex := exec.NewExecutor(&exec.Options{
		Stdout:  pw,
		Stderr:  pw,
		Env:     tc.Env,
		Dir:     dir,
		Command: h.command,
	})

	for _, step := range steps {
		argv := tc.Command(step)
		if len(argv) == 0 {
			h.log.Debug("step not supported", logger.F("platform", tc.Platform), logger.F("step", step))
			continue
		}
		res, err := h.runStep(ctx, ex, project, tc.Platform, step, argv)
		report.Steps = append(report.Steps, res)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (h *Harness) runStep(ctx context.Context, ex *exec.Executor, project, platform string, step Step, argv []string) (StepResult, error) {
	cmd := exec.Command{Name: argv[0], Args: argv[1:]}
	res := StepResult{Step: step, Command: cmd.String()}

	stepCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	h.log.Info("running step", logger.F("project", project), logger.F("step", step), logger.F("command", res.Command))
	start := time.Now()
	var err error
	if h.spinner {
		msg := fmt.Sprintf("%s: %s", project, res.Command)
		err = ex.WithOutput(h.out, h.out).RunWithSpinner(stepCtx, msg, cmd.Name, cmd.Args...)
	} else {
		err = ex.Run(stepCtx, cmd.Name, cmd.Args...)
	}
	res.Duration = time.Since(start)

	switch {
	case err == nil:
		h.log.Info("step passed", logger.F("project", project), logger.F("step", step), logger.F("duration", res.Duration))
		return res, nil
	case ctx.Err() != nil:
		res.Err = err
		return res, err
	case errors.Is(stepCtx.Err(), context.DeadlineExceeded):
		res.Err = &BuildTimedOutError{Project: project, Platform: platform, Step: step, Timeout: h.timeout}
	default:
		res.Err = &StepFailedError{Project: project, Step: step, Err: err}
	}
	h.log.Warn("step failed", logger.F("project", project), logger.F("step", step), logger.F("error", res.Err))
	return res, res.Err
}

package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrNotFound is wrapped when the command is not installed.
var ErrNotFound = errors.New("command not found")

// CommandError is a command that ran and failed. Output holds the tail of
// its combined output when it was captured.
type CommandError struct {
	Name   string
	Err    error
	Output string
}

func (e *CommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s failed: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s failed: %v\n%s", e.Name, e.Err, e.Output)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Executor runs external commands.
type Executor struct {
	stdout io.Writer
	stderr io.Writer
	env    []string
	dir    string

	commandFunc func(name string, args ...string) *exec.Cmd
}

// Options configures an Executor.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Env    []string // added to the process environment
	Dir    string
	// Command builds the process; nil uses os/exec.Command.
	Command func(name string, args ...string) *exec.Cmd
}

// NewExecutor returns an executor; nil options write to the process streams.
func NewExecutor(opts *Options) *Executor {
	if opts == nil {
		opts = &Options{}
	}
	e := &Executor{
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		env:         opts.Env,
		dir:         opts.Dir,
		commandFunc: exec.Command,
	}
	if opts.Command != nil {
		e.commandFunc = opts.Command
	}
	if e.stdout == nil {
		e.stdout = os.Stdout
	}
	if e.stderr == nil {
		e.stderr = os.Stderr
	}
	return e
}

// WithDir returns a copy of e running in dir.
func (e *Executor) WithDir(dir string) *Executor {
	c := *e
	c.dir = dir
	return &c
}

// WithOutput returns a copy of e writing to stdout and stderr.
func (e *Executor) WithOutput(stdout, stderr io.Writer) *Executor {
	c := *e
	c.stdout, c.stderr = stdout, stderr
	return &c
}

// Run runs name with args and waits. Cancelling ctx kills the process and
// returns an error wrapping ctx.Err().
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	cmd := e.commandFunc(name, args...)
	if e.dir != "" {
		cmd.Dir = e.dir
	}
	if len(e.env) > 0 {
		base := cmd.Env
		if base == nil {
			base = os.Environ()
		}
		cmd.Env = append(base, e.env...)
	}
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
	case err := <-done:
		if err == nil {
			return nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 127 {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return &CommandError{Name: name, Err: err}
	}
}

// Output runs the command and returns its combined output.
func (e *Executor) Output(ctx context.Context, name string, args ...string) (string, error) {
	var buf syncBuffer
	err := e.WithOutput(&buf, &buf).Run(ctx, name, args...)
	out := buf.String()
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		cmdErr.Output = tail(out, 40)
	}
	return out, err
}

// RunWithSpinner hides output behind a spinner on e's stderr. When the
// command fails the last lines of its output are attached to the error.
func (e *Executor) RunWithSpinner(ctx context.Context, message, name string, args ...string) error {
	p := tea.NewProgram(newSpinnerModel(message), tea.WithOutput(e.stderr), tea.WithInput(nil))
	finished := make(chan struct{})
	go func() {
		_, _ = p.Run()
		close(finished)
	}()

	_, err := e.Output(ctx, name, args...)

	p.Send(spinnerDoneMsg{err: err})
	select {
	case <-finished:
	case <-time.After(200 * time.Millisecond):
		p.Quit()
		<-finished
	}
	return err
}

// Command is a reusable command line.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a command line on whitespace.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, errors.New("empty command")
	}
	return Command{Name: fields[0], Args: fields[1:]}, nil
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

type spinnerDoneMsg struct{ err error }

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
	err     error
}

func newSpinnerModel(message string) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &spinnerModel{spinner: s, message: message}
}

func (m *spinnerModel) Init() tea.Cmd { return m.spinner.Tick }

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done, m.err = true, msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	switch {
	case !m.done:
		return fmt.Sprintf("%s %s...", m.spinner.View(), m.message)
	case m.err != nil:
		return fmt.Sprintf("❌ %s\n", m.message)
	default:
		return fmt.Sprintf("✅ %s\n", m.message)
	}
}

// syncBuffer is a bytes.Buffer safe for the concurrent stdout and stderr
// copies of one command.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// tail returns the last n lines of s.
func tail(s string, n int) string {
	s = strings.TrimRight(s, "\n")
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

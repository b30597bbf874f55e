package generator

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user cancels during conflict resolution.
var ErrCancelled = errors.New("generation cancelled")

// ConflictResolution is the decision for one conflicting file.
type ConflictResolution int

const (
	Skip ConflictResolution = iota
	Overwrite
	ShowDiff
	Cancel
)

func (r ConflictResolution) String() string {
	switch r {
	case Skip:
		return "skip"
	case Overwrite:
		return "overwrite"
	case ShowDiff:
		return "diff"
	default:
		return "cancel"
	}
}

// Conflict is a generated file whose whole content would replace a different
// file already on disk.
type Conflict struct {
	Path     string
	Template string
	Existing []byte
	Proposed []byte
}

// ConflictStrategy decides what to do with a conflict.
type ConflictStrategy interface {
	Resolve(c Conflict) (ConflictResolution, error)
}

// NewConflictResolver picks a strategy from CLI flags. --force cannot be
// combined with --skip or --diff.
func NewConflictResolver(force, skip, diff bool) (ConflictStrategy, error) {
	if force && (skip || diff) {
		return nil, fmt.Errorf("--force cannot be combined with --skip or --diff")
	}
	switch {
	case force:
		return ForceStrategy{}, nil
	case skip:
		return SkipStrategy{}, nil
	case diff:
		return &DiffStrategy{Out: os.Stdout, Options: TerminalDiffOptions(), Then: &InteractiveStrategy{}}, nil
	default:
		return &InteractiveStrategy{}, nil
	}
}

// ForceStrategy takes every proposal.
type ForceStrategy struct{}

func (ForceStrategy) Resolve(Conflict) (ConflictResolution, error) { return Overwrite, nil }

// SkipStrategy keeps every existing file.
type SkipStrategy struct{}

func (SkipStrategy) Resolve(Conflict) (ConflictResolution, error) { return Skip, nil }

// DiffStrategy prints the diff, then defers to Then. With no Then the
// existing file is kept.
type DiffStrategy struct {
	Out     io.Writer
	Options DiffOptions
	Then    ConflictStrategy
}

func (s *DiffStrategy) Resolve(c Conflict) (ConflictResolution, error) {
	out := s.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprint(out, Diff(c.Path, c.Path, c.Existing, c.Proposed, s.Options))
	if s.Then == nil {
		return Skip, nil
	}
	return s.Then.Resolve(c)
}

var (
	conflictWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true)
	conflictPathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("white")).Bold(true)
	conflictMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	conflictPickStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	conflictFrameStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
)

// InteractiveStrategy asks on the terminal. Choosing the diff opens a
// scrollable viewer and returns to the menu.
type InteractiveStrategy struct {
	// Run starts a bubbletea program; nil uses tea.NewProgram.
	Run func(m tea.Model, opts ...tea.ProgramOption) (tea.Model, error)
}

func (s *InteractiveStrategy) run(m tea.Model, opts ...tea.ProgramOption) (tea.Model, error) {
	if s.Run != nil {
		return s.Run(m, opts...)
	}
	return tea.NewProgram(m, opts...).Run()
}

func (s *InteractiveStrategy) Resolve(c Conflict) (ConflictResolution, error) {
	for {
		final, err := s.run(newConflictMenu(c))
		if err != nil {
			return Cancel, fmt.Errorf("failed to show menu: %w", err)
		}
		menu := final.(conflictMenu)
		if menu.chosen == nil {
			return Cancel, nil
		}
		if *menu.chosen != ShowDiff {
			return *menu.chosen, nil
		}
		diff := Diff(c.Path, c.Path, c.Existing, c.Proposed, DiffOptions{Color: true})
		if _, err := s.run(newDiffViewer(c.Path, diff), tea.WithAltScreen()); err != nil {
			return Cancel, fmt.Errorf("failed to show diff: %w", err)
		}
	}
}

var menuChoices = []struct {
	label  string
	choice ConflictResolution
}{
	{"Show diff", ShowDiff},
	{"Keep existing file", Skip},
	{"Take generated version", Overwrite},
	{"Cancel generation", Cancel},
}

type conflictMenu struct {
	conflict Conflict
	cursor   int
	chosen   *ConflictResolution
}

func newConflictMenu(c Conflict) conflictMenu {
	return conflictMenu{conflict: c}
}

func (m conflictMenu) Init() tea.Cmd { return nil }

func (m conflictMenu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menuChoices)-1 {
			m.cursor++
		}
	case "d":
		choice := ShowDiff
		m.chosen = &choice
		return m, tea.Quit
	case "enter":
		choice := menuChoices[m.cursor].choice
		m.chosen = &choice
		return m, tea.Quit
	}
	return m, nil
}

func (m conflictMenu) View() string {
	var b strings.Builder
	b.WriteString(conflictWarnStyle.Render("⚠️  Conflict: ") + conflictPathStyle.Render(m.conflict.Path) + "\n")
	if m.conflict.Template != "" {
		b.WriteString(conflictMutedStyle.Render("    from template "+m.conflict.Template) + "\n")
	}
	added, removed := DiffStat(m.conflict.Existing, m.conflict.Proposed)
	b.WriteString(conflictMutedStyle.Render(fmt.Sprintf("    +%d -%d lines", added, removed)) + "\n\n")
	b.WriteString(conflictMutedStyle.Render("    [↑/↓] move  [enter] choose  [d] diff  [q] cancel") + "\n\n")
	for i, c := range menuChoices {
		if i == m.cursor {
			b.WriteString("    " + conflictPickStyle.Render("> "+c.label) + "\n")
			continue
		}
		b.WriteString("      " + c.label + "\n")
	}
	return b.String()
}

type diffViewer struct {
	path     string
	diff     string
	viewport viewport.Model
	ready    bool
}

func newDiffViewer(path, diff string) diffViewer {
	return diffViewer{path: path, diff: diff}
}

func (m diffViewer) Init() tea.Cmd { return nil }

func (m diffViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		const chrome = 4
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, msg.Height-chrome)
			m.viewport.SetContent(m.diff)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = msg.Height - chrome
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m diffViewer) View() string {
	if !m.ready {
		return "Loading diff..."
	}
	header := conflictPathStyle.Render(m.path)
	footer := conflictMutedStyle.Render(fmt.Sprintf("%3.0f%%  [↑/↓ pgup/pgdn] scroll  [q] back", m.viewport.ScrollPercent()*100))
	return header + "\n" + conflictFrameStyle.Render(m.viewport.View()) + "\n" + footer
}

package generator

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// maxDiffCells bounds the LCS table; larger inputs get a size summary.
const maxDiffCells = 4_000_000

// DiffOptions configures Diff. The zero value gives three context lines, no
// colour and no truncation.
type DiffOptions struct {
	Context int
	Color   bool
	Width   int // truncate lines to this many runes when > 0
}

// TerminalDiffOptions colours and truncates output when stdout is a terminal.
func TerminalDiffOptions() DiffOptions {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return DiffOptions{}
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		width = 80
	}
	return DiffOptions{Color: true, Width: width - 2}
}

var (
	diffHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	diffHunkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	diffAddStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("green"))
	diffDelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("red"))
)

type editKind int

const (
	editKeep editKind = iota
	editAdd
	editDel
)

type edit struct {
	kind editKind
	text string
}

type hunk struct {
	oldStart, oldCount int
	newStart, newCount int
	edits              []edit
}

// Diff renders a unified diff between old and newer. Identical inputs yield
// an empty string.
func Diff(oldPath, newPath string, old, newer []byte, opts DiffOptions) string {
	if bytes.Equal(old, newer) {
		return ""
	}
	if opts.Context <= 0 {
		opts.Context = 3
	}
	if looksBinary(old) || looksBinary(newer) {
		return fmt.Sprintf("Binary files %s and %s differ\n", oldPath, newPath)
	}

	a, b := diffLines(old), diffLines(newer)
	if (len(a)+1)*(len(b)+1) > maxDiffCells {
		return fmt.Sprintf("Files too large to diff (%d and %d lines)\n", len(a), len(b))
	}

	var buf strings.Builder
	style := func(s lipgloss.Style, text string) string {
		if opts.Color {
			return s.Render(text)
		}
		return text
	}
	buf.WriteString(style(diffHeaderStyle, "--- "+oldPath) + "\n")
	buf.WriteString(style(diffHeaderStyle, "+++ "+newPath) + "\n")

	for _, h := range groupHunks(lineEdits(a, b), opts.Context) {
		buf.WriteString(style(diffHunkStyle, fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.oldStart, h.oldCount, h.newStart, h.newCount)) + "\n")
		for _, e := range h.edits {
			text := truncateRunes(strings.TrimRight(e.text, "\r"), opts.Width)
			switch e.kind {
			case editAdd:
				buf.WriteString(style(diffAddStyle, "+"+text) + "\n")
			case editDel:
				buf.WriteString(style(diffDelStyle, "-"+text) + "\n")
			default:
				buf.WriteString(" " + text + "\n")
			}
		}
	}
	return buf.String()
}

// DiffStat counts added and removed lines.
func DiffStat(old, newer []byte) (added, removed int) {
	a, b := diffLines(old), diffLines(newer)
	if (len(a)+1)*(len(b)+1) > maxDiffCells {
		return len(b), len(a)
	}
	for _, e := range lineEdits(a, b) {
		switch e.kind {
		case editAdd:
			added++
		case editDel:
			removed++
		}
	}
	return added, removed
}

// lineEdits computes a minimal edit script from the longest common
// subsequence of a and b.
func lineEdits(a, b []string) []edit {
	n, m := len(a), len(b)
	lcs := make([][]int32, n+1)
	for i := range lcs {
		lcs[i] = make([]int32, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				lcs[i][j] = lcs[i+1][j+1] + 1
			case lcs[i+1][j] >= lcs[i][j+1]:
				lcs[i][j] = lcs[i+1][j]
			default:
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	out := make([]edit, 0, n+m)
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			out = append(out, edit{editKeep, a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			out = append(out, edit{editDel, a[i]})
			i++
		default:
			out = append(out, edit{editAdd, b[j]})
			j++
		}
	}
	for ; i < n; i++ {
		out = append(out, edit{editDel, a[i]})
	}
	for ; j < m; j++ {
		out = append(out, edit{editAdd, b[j]})
	}
	return out
}

// groupHunks splits edits into hunks with ctx lines of context. Changes
// separated by at most 2*ctx unchanged lines share a hunk.
func groupHunks(edits []edit, ctx int) []hunk {
	oldBefore := make([]int, len(edits)+1)
	newBefore := make([]int, len(edits)+1)
	for i, e := range edits {
		oldBefore[i+1], newBefore[i+1] = oldBefore[i], newBefore[i]
		if e.kind != editAdd {
			oldBefore[i+1]++
		}
		if e.kind != editDel {
			newBefore[i+1]++
		}
	}

	var out []hunk
	i := 0
	for i < len(edits) {
		for i < len(edits) && edits[i].kind == editKeep {
			i++
		}
		if i == len(edits) {
			break
		}

		start := max(i-ctx, 0)
		end := i
		for end < len(edits) {
			if edits[end].kind != editKeep {
				end++
				continue
			}
			k := end
			for k < len(edits) && edits[k].kind == editKeep {
				k++
			}
			if k == len(edits) || k-end > 2*ctx {
				break
			}
			end = k
		}
		stop := min(end+ctx, len(edits))

		h := hunk{
			oldCount: oldBefore[stop] - oldBefore[start],
			newCount: newBefore[stop] - newBefore[start],
			edits:    edits[start:stop],
		}
		h.oldStart = oldBefore[start]
		if h.oldCount > 0 {
			h.oldStart++
		}
		h.newStart = newBefore[start]
		if h.newCount > 0 {
			h.newStart++
		}
		out = append(out, h)
		i = stop
	}
	return out
}

func diffLines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	lines := strings.Split(string(b), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func looksBinary(b []byte) bool {
	if len(b) > 8000 {
		b = b[:8000]
	}
	return bytes.IndexByte(b, 0) >= 0
}

func truncateRunes(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:width-1]) + "…"
}

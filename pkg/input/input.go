// Package input reads answers from an interactive terminal.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Prompter asks questions on one reader/writer pair.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a prompter over in and out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Stdio returns a prompter over the process terminal.
func Stdio() *Prompter {
	return New(os.Stdin, os.Stdout)
}

func (p *Prompter) readLine() (string, bool) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

// Prompt asks for text. Empty input or EOF yields defaultValue.
func (p *Prompter) Prompt(message, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprint(p.out, promptStyle.Render(message)+" "+hintStyle.Render("("+defaultValue+")")+": ")
	} else {
		fmt.Fprint(p.out, promptStyle.Render(message)+": ")
	}
	answer, ok := p.readLine()
	if !ok || answer == "" {
		return defaultValue
	}
	return answer
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(message string, defaultYes bool) bool {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Fprint(p.out, promptStyle.Render(message)+" "+hintStyle.Render(hint)+": ")
	answer, ok := p.readLine()
	if !ok || answer == "" {
		return defaultYes
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

// Choose lists options and returns the chosen index. Empty input or an
// invalid answer yields def.
func (p *Prompter) Choose(message string, options []string, def int) int {
	fmt.Fprintln(p.out, promptStyle.Render(message))
	for i, o := range options {
		marker := " "
		if i == def {
			marker = "*"
		}
		fmt.Fprintf(p.out, "  %s %d) %s\n", marker, i+1, o)
	}
	fmt.Fprint(p.out, hintStyle.Render(fmt.Sprintf("[1-%d]", len(options)))+": ")
	answer, ok := p.readLine()
	if !ok || answer == "" {
		return def
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(options) {
		return def
	}
	return n - 1
}

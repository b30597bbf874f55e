// Package output prints styled terminal messages for the weaver CLI.
//
// Messages go to a package-level writer (stdout unless SetWriter says
// otherwise) so commands and tests share one sink.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("white")).Bold(true)

	mu          sync.Mutex
	out         io.Writer = os.Stdout
	verboseMode bool
)

// SetWriter redirects all output. A nil writer restores stdout.
func SetWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// SetVerbose enables Verbose messages. Wired to the --verbose flag.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verboseMode = v
}

func emit(s string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, s)
}

// Success reports a completed operation.
//
//	output.Success("Generated project: Contoso")
func Success(msg string) {
	emit(successStyle.Render("🔥 " + msg))
}

// Error reports a failure that needs attention.
func Error(msg string) {
	emit(errorStyle.Render("❌ " + msg))
}

// Warn reports something that did not stop the run but should be read.
func Warn(msg string) {
	emit(warnStyle.Render("⚠️  " + msg))
}

// Info prints a status line.
func Info(msg string) {
	emit(infoStyle.Render("ℹ️  " + msg))
}

// Step prints an indented sub-item.
func Step(msg string) {
	emit(stepStyle.Render("   " + msg))
}

// KeyValue prints an aligned "key: value" row.
func KeyValue(key, value string) {
	emit("   " + keyStyle.Render(fmt.Sprintf("%-12s", key+":")) + " " + value)
}

// Verbose prints only when verbose mode is on.
func Verbose(msg string) {
	mu.Lock()
	v := verboseMode
	mu.Unlock()
	if v {
		emit(stepStyle.Render("🔍 " + msg))
	}
}

// Package diagnostic collects non-fatal findings raised while assembling a
// project: dropped exclusive-group members, merge conflicts, syntax warnings.
package diagnostic

import (
	"fmt"
	"strings"
)

// Codes used across the pipeline.
const (
	CodeGroupDrop          = "group_drop"
	CodeDroppedDependency  = "dropped_dependency"
	CodeOverrideIgnored    = "override_ignored"
	CodeDanglingAnchor     = "dangling_anchor"
	CodeUnbalancedMarkers  = "unbalanced_markers"
	CodeBaseConflict       = "base_conflict"
	CodeDuplicateAnchor    = "duplicate_anchor"
	CodeSkippedFailedFile  = "skipped_failed_file"
	CodeSyntaxError        = "syntax_error"
	CodeCompositionApplied = "composition_applied"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a single finding.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Template string   `json:"template,omitempty"`
	Path     string   `json:"path,omitempty"`
}

// String formats the diagnostic as "[template] path: [code] message".
func (d Diagnostic) String() string {
	var prefix []string
	if d.Template != "" {
		prefix = append(prefix, "["+d.Template+"]")
	}
	if d.Path != "" {
		prefix = append(prefix, d.Path)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}
	return msg
}

// Diagnostics holds findings grouped by severity, each in the order raised.
type Diagnostics struct {
	Errors   []Diagnostic `json:"errors,omitempty"`
	Warnings []Diagnostic `json:"warnings,omitempty"`
	Infos    []Diagnostic `json:"infos,omitempty"`
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, template, path string) {
	d.Errors = append(d.Errors, Diagnostic{SeverityError, code, message, template, path})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, template, path string) {
	d.Warnings = append(d.Warnings, Diagnostic{SeverityWarning, code, message, template, path})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, template, path string) {
	d.Infos = append(d.Infos, Diagnostic{SeverityInfo, code, message, template, path})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Len returns the total number of diagnostics.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// Merge appends another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// WithCode returns every diagnostic carrying code, errors first.
func (d *Diagnostics) WithCode(code string) []Diagnostic {
	var out []Diagnostic
	for _, group := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, diag := range group {
			if diag.Code == code {
				out = append(out, diag)
			}
		}
	}
	return out
}

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/weaver/internal/diagnostic"
	"github.com/simonhull/firebird-suite/weaver/internal/orchestrator"
	"github.com/simonhull/firebird-suite/weaver/internal/resolve"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
	"github.com/simonhull/firebird-suite/weaver/pkg/output"
)

// criteriaFlags binds the selection axes.
func criteriaFlags(cmd *cobra.Command, c *selection.Criteria) {
	f := cmd.Flags()
	f.StringVarP(&c.ProjectType, "project-type", "t", "", "Project type (e.g. Blank, SplitView)")
	f.StringVarP(&c.Framework, "framework", "f", "", "Front-end framework (e.g. MVVMBasic, Prism)")
	f.StringVar(&c.BackendFramework, "backend", "", "Back-end framework")
	f.StringVarP(&c.Platform, "platform", "p", "", "Platform (e.g. Uwp, WinUI)")
	f.StringVarP(&c.Language, "language", "l", "", "Language (e.g. C#, VisualBasic)")
}

// parseItems turns "Template" or "Template:Name" arguments into items.
func parseItems(specs []string) ([]orchestrator.Item, error) {
	items := make([]orchestrator.Item, 0, len(specs))
	for _, spec := range specs {
		tmpl, name, _ := strings.Cut(spec, ":")
		tmpl, name = strings.TrimSpace(tmpl), strings.TrimSpace(name)
		if tmpl == "" {
			return nil, fmt.Errorf("invalid item %q: expected Template or Template:Name", spec)
		}
		items = append(items, orchestrator.Item{Template: tmpl, Name: name})
	}
	return items, nil
}

// parseOverrides turns "group=template" pairs into resolver overrides.
func parseOverrides(specs []string) (resolve.Overrides, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(resolve.Overrides, len(specs))
	for _, spec := range specs {
		group, tmpl, ok := strings.Cut(spec, "=")
		if !ok || group == "" || tmpl == "" {
			return nil, fmt.Errorf("invalid override %q: expected group=template", spec)
		}
		out[group] = tmpl
	}
	return out, nil
}

// printDiagnostics reports warnings and errors; infos only when verbose.
func printDiagnostics(d diagnostic.Diagnostics) {
	for _, e := range d.Errors {
		output.Error(e.String())
	}
	for _, w := range d.Warnings {
		output.Warn(w.String())
	}
	for _, i := range d.Infos {
		output.Verbose(i.String())
	}
}

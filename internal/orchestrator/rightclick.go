package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/simonhull/firebird-suite/weaver/internal/assembly"
	"github.com/simonhull/firebird-suite/weaver/internal/logger"
	"github.com/simonhull/firebird-suite/weaver/internal/project"
	"github.com/simonhull/firebird-suite/weaver/internal/resolve"
	"github.com/simonhull/firebird-suite/weaver/pkg/filesystem"
	"github.com/simonhull/firebird-suite/weaver/pkg/generator"
)

// RightClickRequest adds items to an existing project.
type RightClickRequest struct {
	ProjectPath  string
	Items        []Item
	Names        NameProvider
	Overrides    resolve.Overrides
	StripAnchors bool
	CheckSyntax  bool
	DryRun       bool
}

// ConflictOutcome records how one conflict was settled.
type ConflictOutcome struct {
	Path       string
	Template   string
	Resolution generator.ConflictResolution
}

// ChangeSummary lists what adding items did to the project.
type ChangeSummary struct {
	New       []string
	Modified  []string
	Conflicts []ConflictOutcome
	Skipped   []string
	Result    *assembly.Result
}

// GenerateRightClickItems merges new items into the project at
// req.ProjectPath. Installed templates count as present and are not
// regenerated. Existing files are merged at their anchors; whole-file
// conflicts go through the conflict strategy.
func (o *Orchestrator) GenerateRightClickItems(ctx context.Context, req RightClickRequest) (*ChangeSummary, error) {
	manifest, err := project.Detect(req.ProjectPath)
	if err != nil {
		return nil, err
	}
	root := manifest.Root()

	items, explicit, err := lookupItems(o.pipeline.Catalog(), req.Items, true)
	if err != nil {
		return nil, err
	}

	files, err := filesystem.ReadFiles(root, filesystem.WalkOptions{})
	if err != nil {
		return nil, fmt.Errorf("reading project: %w", err)
	}
	base := make(map[string][]byte, len(files))
	for _, f := range files {
		if f.Path == project.ManifestName {
			continue
		}
		base[f.Path] = f.Content
	}

	rootNS := manifest.RootNamespaceOrInfer()
	render := newRenderer(manifest.Name, rootNS, manifest.Criteria, req.Names, explicit, manifest.ItemNames(), o.renderer)

	log := o.log.WithFields(logger.F("project", manifest.Name))
	log.Info("adding items", logger.F("items", len(items)))

	result, err := o.pipeline.Run(ctx, assembly.Request{
		Criteria:     manifest.Criteria,
		Candidates:   items,
		Overrides:    req.Overrides,
		Satisfied:    manifest.InstalledNames(),
		Compose:      true,
		Base:         base,
		Render:       render.Render,
		StripAnchors: req.StripAnchors,
		CheckSyntax:  req.CheckSyntax,
	})
	if err != nil {
		return nil, err
	}
	summary := &ChangeSummary{Result: result}
	if result.HasFailures() {
		return summary, &AssemblyFailedError{Failures: result.Failed}
	}

	var ops []generator.Operation
	for _, f := range result.Files {
		abs := filepath.Join(root, filepath.FromSlash(f.Path))
		switch {
		case f.IsNew():
			summary.New = append(summary.New, f.Path)
			ops = append(ops, &generator.WriteFileOp{Path: abs, Content: f.Content, Mode: 0o644})
		case f.Modified():
			summary.Modified = append(summary.Modified, f.Path)
			ops = append(ops, &generator.WriteFileOp{Path: abs, Content: f.Content, Mode: 0o644, Update: true})
		}
	}

	for _, c := range result.Conflicts {
		choice, err := o.conflicts.Resolve(generator.Conflict{
			Path:     c.Path,
			Template: c.Template,
			Existing: c.Existing,
			Proposed: c.Proposed,
		})
		if err != nil {
			return summary, err
		}
		if choice == generator.Cancel {
			return summary, generator.ErrCancelled
		}
		summary.Conflicts = append(summary.Conflicts, ConflictOutcome{Path: c.Path, Template: c.Template, Resolution: choice})
		if choice != generator.Overwrite {
			summary.Skipped = append(summary.Skipped, c.Path)
			continue
		}
		abs := filepath.Join(root, filepath.FromSlash(c.Path))
		ops = append(ops, &generator.WriteFileOp{Path: abs, Content: c.Proposed, Mode: 0o644, Update: true})
		summary.Modified = appendOnce(summary.Modified, c.Path)
	}

	manifest.AddTemplates(installed(result.Plan, render.Assigned())...)
	data, err := manifest.Encode()
	if err != nil {
		return summary, err
	}
	ops = append(ops, &generator.WriteFileOp{Path: manifest.Path(), Content: data, Mode: 0o644, Update: true})

	if err := generator.Execute(ctx, ops, generator.ExecuteOptions{DryRun: req.DryRun, Writer: o.out}); err != nil {
		return summary, fmt.Errorf("writing items: %w", err)
	}
	log.Info("added items", logger.F("new", len(summary.New)), logger.F("modified", len(summary.Modified)))
	return summary, nil
}

func appendOnce(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// Package orchestrator drives whole generations: a new project from scratch,
// or new items added to a project weaver generated earlier.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	weaver "github.com/simonhull/firebird-suite/weaver"
	"github.com/simonhull/firebird-suite/weaver/internal/assembly"
	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/simonhull/firebird-suite/weaver/internal/logger"
	"github.com/simonhull/firebird-suite/weaver/internal/project"
	"github.com/simonhull/firebird-suite/weaver/internal/resolve"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
	"github.com/simonhull/firebird-suite/weaver/pkg/generator"
)

// Item is a template the user picked, with an optional item name.
type Item struct {
	Template string
	Name     string
}

// Orchestrator runs generations over one pipeline.
type Orchestrator struct {
	pipeline  *assembly.Pipeline
	renderer  *generator.Renderer
	conflicts generator.ConflictStrategy
	out       io.Writer
	log       logger.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConflictStrategy sets how existing files are handled when adding items.
func WithConflictStrategy(s generator.ConflictStrategy) Option {
	return func(o *Orchestrator) { o.conflicts = s }
}

// WithWriter sets where file operations are reported.
func WithWriter(w io.Writer) Option {
	return func(o *Orchestrator) { o.out = w }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// New returns an orchestrator. Conflicts are skipped unless a strategy is set.
func New(p *assembly.Pipeline, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		pipeline:  p,
		renderer:  generator.NewRenderer(),
		conflicts: generator.SkipStrategy{},
		out:       os.Stdout,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ProjectRequest describes a new project.
type ProjectRequest struct {
	Criteria      selection.Criteria
	ProjectName   string
	RootNamespace string // defaults to ProjectName
	Destination   string // parent directory; the project goes in Destination/ProjectName
	Items         []Item
	// Select adds every visible record it accepts, for batch runs.
	Select       selection.Predicate
	Names        NameProvider
	Overrides    resolve.Overrides
	Compose      bool
	StripAnchors bool
	CheckSyntax  bool
	DryRun       bool
}

// ProjectOutcome is a generated project.
type ProjectOutcome struct {
	Name   string
	Path   string
	Result *assembly.Result
}

// PlanProject assembles req in memory and writes nothing. An empty
// ProjectName plans as "App".
func (o *Orchestrator) PlanProject(ctx context.Context, req ProjectRequest) (*assembly.Result, error) {
	if req.ProjectName == "" {
		req.ProjectName = "App"
	}
	result, _, err := o.assemble(ctx, req)
	return result, err
}

// GenerateProject assembles and writes a new project. When any file fails to
// assemble nothing is written and the error wraps ErrAssemblyFailed.
func (o *Orchestrator) GenerateProject(ctx context.Context, req ProjectRequest) (*ProjectOutcome, error) {
	if err := ValidateProjectName(req.ProjectName); err != nil {
		return nil, err
	}
	dest := filepath.Join(req.Destination, req.ProjectName)
	if entries, err := os.ReadDir(dest); err == nil && len(entries) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDestinationExists, dest)
	}

	log := o.log.WithFields(logger.F("project", req.ProjectName))
	log.Info("generating project", logger.F("criteria", req.Criteria.String()), logger.F("destination", dest))

	result, render, err := o.assemble(ctx, req)
	if err != nil {
		return nil, err
	}
	outcome := &ProjectOutcome{Name: req.ProjectName, Path: dest, Result: result}
	if result.HasFailures() {
		return outcome, &AssemblyFailedError{Failures: result.Failed}
	}

	manifest := project.New(dest, req.ProjectName, req.Criteria)
	manifest.RootNamespace = render.rootNamespace
	manifest.WeaverVersion = weaver.Version
	manifest.AddTemplates(installed(result.Plan, render.Assigned())...)
	manifestData, err := manifest.Encode()
	if err != nil {
		return outcome, err
	}

	ops := make([]generator.Operation, 0, len(result.Files)+1)
	for _, f := range result.Files {
		ops = append(ops, &generator.WriteFileOp{Path: filepath.Join(dest, filepath.FromSlash(f.Path)), Content: f.Content, Mode: 0o644})
	}
	ops = append(ops, &generator.WriteFileOp{Path: manifest.Path(), Content: manifestData, Mode: 0o644})

	if err := generator.Execute(ctx, ops, generator.ExecuteOptions{DryRun: req.DryRun, Writer: o.out}); err != nil {
		return outcome, err
	}
	log.Info("generated project", logger.F("files", len(result.Files)), logger.F("digest", result.Digest()))
	return outcome, nil
}

// assemble selects the project template, the picked items and any extra
// records req.Select accepts, then runs the pipeline.
func (o *Orchestrator) assemble(ctx context.Context, req ProjectRequest) (*assembly.Result, *renderer, error) {
	cat := o.pipeline.Catalog()
	candidates, err := selection.Select(cat, req.Criteria, selection.Options{
		Predicate:       selection.OfType(catalog.TypeProject),
		RequireNonEmpty: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("no project template for %s: %w", req.Criteria.Short(), err)
	}
	items, explicit, err := lookupItems(cat, req.Items, false)
	if err != nil {
		return nil, nil, err
	}
	candidates = append(candidates, items...)
	if req.Select != nil {
		extra, err := selection.Select(cat, req.Criteria, selection.Options{
			Predicate: selection.And(req.Select, selection.Not(selection.OfType(catalog.TypeProject))),
		})
		if err != nil {
			return nil, nil, err
		}
		candidates = append(candidates, extra...)
	}

	rootNS := req.RootNamespace
	if rootNS == "" {
		rootNS = req.ProjectName
	}
	render := newRenderer(req.ProjectName, rootNS, req.Criteria, req.Names, explicit, nil, o.renderer)

	result, err := o.pipeline.Run(ctx, assembly.Request{
		Criteria:     req.Criteria,
		Candidates:   candidates,
		Overrides:    req.Overrides,
		Compose:      req.Compose,
		Render:       render.Render,
		StripAnchors: req.StripAnchors,
		CheckSyntax:  req.CheckSyntax,
	})
	if err != nil {
		return nil, nil, err
	}
	return result, render, nil
}

// lookupItems resolves picked templates. With rightClick set every template
// must be addable to an existing project.
func lookupItems(cat catalog.Catalog, picked []Item, rightClick bool) ([]catalog.TemplateRecord, map[string]string, error) {
	explicit := make(map[string]string, len(picked))
	out := make([]catalog.TemplateRecord, 0, len(picked))
	for _, it := range picked {
		rec, ok := catalog.Find(cat, it.Template)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, it.Template)
		}
		if rightClick && !rec.RightClickEnabled {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotRightClickable, it.Template)
		}
		out = append(out, rec)
		if it.Name != "" {
			explicit[rec.Name] = it.Name
		}
	}
	return out, explicit, nil
}

func installed(plan []catalog.TemplateRecord, names map[string]string) []project.Installed {
	out := make([]project.Installed, len(plan))
	for i, rec := range plan {
		out[i] = project.Installed{Template: rec.Name}
		if rec.Type != catalog.TypeProject {
			out[i].Item = names[rec.Name]
		}
	}
	return out
}

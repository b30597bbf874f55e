// Package assembly runs the generation pipeline: selection, resolution,
// planning and merging, for one request at a time.
package assembly

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/simonhull/firebird-suite/weaver/internal/diagnostic"
	"github.com/simonhull/firebird-suite/weaver/internal/logger"
	"github.com/simonhull/firebird-suite/weaver/internal/merge"
	"github.com/simonhull/firebird-suite/weaver/internal/plan"
	"github.com/simonhull/firebird-suite/weaver/internal/resolve"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
)

// MergeSuffix marks fragment files that merge into an existing file of the
// same name without the suffix.
const MergeSuffix = "_postaction"

// TargetPath maps a fragment file path to its destination path.
func TargetPath(p string) string {
	dir, base := path.Split(p)
	return dir + strings.Replace(base, MergeSuffix, "", 1)
}

// RenderFunc turns a fragment file into its destination path and content.
type RenderFunc func(rec catalog.TemplateRecord, file catalog.SourceFile) (string, []byte, error)

// DefaultRender applies TargetPath and leaves content untouched.
func DefaultRender(_ catalog.TemplateRecord, file catalog.SourceFile) (string, []byte, error) {
	return TargetPath(file.Path), file.Content, nil
}

// Checker inspects assembled content without changing it.
type Checker interface {
	Check(path string, content []byte) []diagnostic.Diagnostic
}

// Request describes one generation.
type Request struct {
	Criteria selection.Criteria
	// Candidates seed the resolver. When nil, Select runs with Selection.
	Candidates []catalog.TemplateRecord
	Selection  selection.Options
	Overrides  resolve.Overrides
	Satisfied  []string
	Compose    bool
	// Base is the destination tree before merging, keyed by slash path.
	Base         map[string][]byte
	Render       RenderFunc
	StripAnchors bool
	CheckSyntax  bool
}

// Pipeline wires the stages over one catalog.
type Pipeline struct {
	catalog catalog.Catalog
	engine  *merge.Engine
	checker Checker
	log     logger.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithEngine sets the merge engine.
func WithEngine(e *merge.Engine) Option {
	return func(p *Pipeline) { p.engine = e }
}

// WithChecker sets the post-merge checker used when Request.CheckSyntax is set.
func WithChecker(c Checker) Option {
	return func(p *Pipeline) { p.checker = c }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// NewPipeline creates a pipeline over c.
func NewPipeline(c catalog.Catalog, opts ...Option) *Pipeline {
	p := &Pipeline{catalog: c, log: logger.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	if p.engine == nil {
		p.engine = merge.NewEngine(merge.DefaultSyntax, p.log)
	}
	return p
}

// Catalog returns the pipeline's catalog.
func (p *Pipeline) Catalog() catalog.Catalog {
	return p.catalog
}

// Run executes the request. EmptyCandidateSet and UnresolvableDependency
// abort before any merging; per-file merge failures are reported in the
// result.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	log := p.log.WithFields(logger.F("criteria", req.Criteria.Short()))

	candidates := req.Candidates
	if candidates == nil {
		var err error
		candidates, err = selection.Select(p.catalog, req.Criteria, req.Selection)
		if err != nil {
			return nil, err
		}
	}
	log.Debug("selected candidates", logger.F("count", len(candidates)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, err := resolve.NewResolver(p.catalog, req.Criteria).Resolve(candidates, resolve.Options{
		Overrides: req.Overrides,
		Satisfied: req.Satisfied,
		Compose:   req.Compose,
	})
	if err != nil {
		return nil, err
	}
	for _, d := range set.Drops() {
		log.Info("dropped exclusive group member", logger.F("group", d.Group), logger.F("kept", d.Kept), logger.F("dropped", d.Dropped))
	}

	ordered := plan.Plan(set)
	log.Debug("planned templates", logger.F("plan", names(ordered)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	render := req.Render
	if render == nil {
		render = DefaultRender
	}

	var sources []merge.Source
	for _, rec := range ordered {
		for _, file := range rec.Files {
			target, content, err := render(rec, file)
			if err != nil {
				return nil, fmt.Errorf("rendering %s of %s: %w", file.Path, rec.Name, err)
			}
			sources = append(sources, merge.Source{Template: rec.Name, Path: target, Content: content})
		}
	}

	outcome := p.engine.Assemble(sources, req.Base)

	result := &Result{
		Criteria:  req.Criteria,
		Plan:      ordered,
		Files:     outcome.Files,
		Failed:    outcome.Failed,
		Conflicts: outcome.Conflicts,
		Dropped:   set.Drops(),
	}
	result.Diagnostics.Merge(set.Diagnostics())
	result.Diagnostics.Merge(outcome.Diagnostics)

	if req.StripAnchors {
		for _, f := range result.Files {
			if !touched(f) {
				continue
			}
			f.Content = merge.StripAnchors(f.Content, p.engine.Syntax())
		}
	}

	if req.CheckSyntax && p.checker != nil {
		for _, f := range result.Files {
			if !touched(f) {
				continue
			}
			for _, d := range p.checker.Check(f.Path, f.Content) {
				result.Diagnostics.AddWarning(d.Code, d.Message, d.Template, d.Path)
			}
		}
	}

	log.Info("assembled project",
		logger.F("templates", len(ordered)),
		logger.F("files", len(result.Files)),
		logger.F("failed", len(result.Failed)))
	return result, nil
}

// touched reports whether a fragment created f or inserted into it. Base
// files no fragment changed pass through byte for byte.
func touched(f *merge.AssembledFile) bool {
	if f.IsNew() {
		return true
	}
	for _, c := range f.Contributions {
		if c.Action == merge.ActionInserted {
			return true
		}
	}
	return false
}

func names(records []catalog.TemplateRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

// Package batch runs independent generations in parallel.
package batch

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/firebird-suite/weaver/internal/assembly"
	"github.com/simonhull/firebird-suite/weaver/internal/harness"
	"github.com/simonhull/firebird-suite/weaver/internal/logger"
	"github.com/simonhull/firebird-suite/weaver/internal/orchestrator"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
)

// Job is one independent unit of work.
type Job func(ctx context.Context) error

// Run executes jobs with at most limit running at once and returns each
// job's error by index. A failing job does not stop the others; only
// cancellation of ctx does, and jobs not yet started then report ctx.Err().
func Run(ctx context.Context, limit int, jobs []Job) []error {
	errs := make([]error, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = job(gctx)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// JobResult is the outcome of one matrix entry. Err is the first error the
// entry hit, returned as produced by generation or the harness.
type JobResult struct {
	Criteria    selection.Criteria
	ProjectName string
	Path        string
	Result      *assembly.Result
	Report      *harness.Report
	Err         error
}

// MatrixRequest generates one project per combination, optionally building
// each with the harness.
type MatrixRequest struct {
	Destination  string
	Combinations []selection.Criteria
	Select       selection.Predicate // extra templates per project
	Compose      bool
	StripAnchors bool
	CheckSyntax  bool
	Build        bool
	Steps        []harness.Step
}

// Runner generates matrices of projects.
type Runner struct {
	orch    *orchestrator.Orchestrator
	harness *harness.Harness
	limit   int
	log     logger.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency bounds how many projects are processed at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) { r.limit = n }
}

// WithHarness sets the harness used when a request asks for builds.
func WithHarness(h *harness.Harness) Option {
	return func(r *Runner) { r.harness = h }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// NewRunner returns a runner over p. File operations are reported to out,
// serialised across jobs.
func NewRunner(p *assembly.Pipeline, out io.Writer, opts ...Option) *Runner {
	if out == nil {
		out = os.Stdout
	}
	r := &Runner{limit: 4, log: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	r.orch = orchestrator.New(p, orchestrator.WithWriter(&lockedWriter{w: out}), orchestrator.WithLogger(r.log))
	return r
}

// Matrix runs req and returns one result per combination, in order.
func (r *Runner) Matrix(ctx context.Context, req MatrixRequest) ([]JobResult, error) {
	if req.Build && r.harness == nil {
		return nil, errors.New("build requested without a harness")
	}
	results := make([]JobResult, len(req.Combinations))
	jobs := make([]Job, len(req.Combinations))
	for i, crit := range req.Combinations {
		results[i] = JobResult{Criteria: crit, ProjectName: ProjectName(crit)}
		jobs[i] = func(ctx context.Context) error {
			return r.runOne(ctx, req, &results[i])
		}
	}

	for i, err := range Run(ctx, r.limit, jobs) {
		results[i].Err = err
	}
	return results, ctx.Err()
}

func (r *Runner) runOne(ctx context.Context, req MatrixRequest, res *JobResult) error {
	log := r.log.WithFields(logger.F("project", res.ProjectName))
	outcome, err := r.orch.GenerateProject(ctx, orchestrator.ProjectRequest{
		Criteria:     res.Criteria,
		ProjectName:  res.ProjectName,
		Destination:  req.Destination,
		Select:       req.Select,
		Compose:      req.Compose,
		StripAnchors: req.StripAnchors,
		CheckSyntax:  req.CheckSyntax,
	})
	if outcome != nil {
		res.Path = outcome.Path
		res.Result = outcome.Result
	}
	if err != nil {
		log.Warn("generation failed", logger.F("error", err))
		return err
	}
	if !req.Build {
		return nil
	}
	report, err := r.harness.Validate(ctx, res.ProjectName, res.Criteria.Platform, res.Path, req.Steps...)
	res.Report = report
	return err
}

// ProjectName derives a valid project name from criteria, such as
// "SplitViewMVVMBasicUwpCSharp".
func ProjectName(c selection.Criteria) string {
	var b strings.Builder
	for _, part := range []string{c.ProjectType, c.Framework, c.BackendFramework, c.Platform, c.Language} {
		part = strings.ReplaceAll(part, "#", "Sharp")
		for _, r := range part {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				b.WriteRune(r)
			}
		}
	}
	if b.Len() == 0 {
		return "App"
	}
	name := b.String()
	if unicode.IsDigit(rune(name[0])) {
		name = "App" + name
	}
	return name
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

package mcptools

import (
	"context"
	"errors"
	"io"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/simonhull/firebird-suite/weaver/internal/assembly"
	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/simonhull/firebird-suite/weaver/internal/logger"
	"github.com/simonhull/firebird-suite/weaver/internal/orchestrator"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
)

// Service answers tool calls against one pipeline.
type Service struct {
	pipeline *assembly.Pipeline
	orch     *orchestrator.Orchestrator
	log      logger.Logger
}

// NewService returns a service over p. Generation output goes to the logger
// only, since stdout carries the protocol.
func NewService(p *assembly.Pipeline, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		pipeline: p,
		orch:     orchestrator.New(p, orchestrator.WithWriter(io.Discard), orchestrator.WithLogger(log)),
		log:      log,
	}
}

// ListTemplates returns catalog templates matching the input filters.
func (s *Service) ListTemplates(_ context.Context, _ *mcp.CallToolRequest, in ListTemplatesInput) (*mcp.CallToolResult, ListTemplatesOutput, error) {
	var preds []selection.Predicate
	if in.Type != "" {
		t, err := catalog.ParseTemplateType(in.Type)
		if err != nil {
			return nil, ListTemplatesOutput{}, err
		}
		preds = append(preds, selection.OfType(t))
	}
	if in.RightClickOnly {
		preds = append(preds, selection.RightClickItems())
	}

	records, err := selection.Select(s.pipeline.Catalog(), in.Criteria.criteria(), selection.Options{
		IncludeHidden: in.IncludeHidden,
		Predicate:     selection.And(preds...),
	})
	if err != nil {
		return nil, ListTemplatesOutput{}, err
	}

	out := ListTemplatesOutput{Templates: make([]TemplateInfo, 0, len(records)), Total: len(records)}
	for _, r := range records {
		out.Templates = append(out.Templates, TemplateInfo{
			Name:          r.Name,
			GroupIdentity: r.GroupIdentity,
			Type:          r.Type.String(),
			Platform:      r.Platform,
			Language:      r.Language,
			Hidden:        r.IsHidden,
			RightClick:    r.RightClickEnabled,
			Group:         r.Group,
			Dependencies:  r.Dependencies,
			DefaultName:   r.DefaultName,
		})
	}
	return nil, out, nil
}

// PlanProject assembles a project in memory.
func (s *Service) PlanProject(ctx context.Context, _ *mcp.CallToolRequest, in PlanProjectInput) (*mcp.CallToolResult, PlanProjectOutput, error) {
	items := make([]orchestrator.Item, 0, len(in.Items))
	for _, name := range in.Items {
		items = append(items, orchestrator.Item{Template: name})
	}
	res, err := s.orch.PlanProject(ctx, orchestrator.ProjectRequest{
		Criteria:    in.Criteria.criteria(),
		ProjectName: in.ProjectName,
		Items:       items,
		Compose:     in.Compose,
	})
	if err != nil {
		return nil, PlanProjectOutput{}, err
	}
	s.log.Debug("planned project", logger.F("criteria", in.Criteria.criteria().Short()), logger.F("templates", len(res.Plan)))
	return nil, planOutput(res), nil
}

func planOutput(res *assembly.Result) PlanProjectOutput {
	out := PlanProjectOutput{
		Plan:      res.PlanNames(),
		Files:     res.Paths(),
		Digest:    res.Digest(),
		Succeeded: res.Succeeded(),
	}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, FailedFile{Path: f.Path, Template: f.Template, Error: f.Err.Error()})
	}
	for _, d := range res.Dropped {
		out.Dropped = append(out.Dropped, DroppedTemplate{Group: d.Group, Kept: d.Kept, Dropped: d.Dropped})
	}
	for _, c := range res.Conflicts {
		out.Conflicts = append(out.Conflicts, c.Path)
	}
	for _, d := range res.Diagnostics.Errors {
		out.Diagnostics = append(out.Diagnostics, d.String())
	}
	for _, d := range res.Diagnostics.Warnings {
		out.Diagnostics = append(out.Diagnostics, d.String())
	}
	return out
}

// GenerateProject writes a project to disk.
func (s *Service) GenerateProject(ctx context.Context, _ *mcp.CallToolRequest, in GenerateProjectInput) (*mcp.CallToolResult, GenerateProjectOutput, error) {
	if in.Destination == "" {
		return nil, GenerateProjectOutput{}, errors.New("destination is required")
	}
	items := make([]orchestrator.Item, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, orchestrator.Item{Template: it.Template, Name: it.Name})
	}

	outcome, err := s.orch.GenerateProject(ctx, orchestrator.ProjectRequest{
		Criteria:     in.Criteria.criteria(),
		ProjectName:  in.ProjectName,
		Destination:  in.Destination,
		Items:        items,
		Compose:      in.Compose,
		StripAnchors: in.StripAnchors,
		DryRun:       in.DryRun,
	})
	if err != nil {
		return nil, GenerateProjectOutput{}, err
	}
	return nil, GenerateProjectOutput{
		Name:   outcome.Name,
		Path:   outcome.Path,
		Files:  outcome.Result.Paths(),
		Digest: outcome.Result.Digest(),
	}, nil
}

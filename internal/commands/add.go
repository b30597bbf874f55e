package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/weaver/internal/orchestrator"
	"github.com/simonhull/firebird-suite/weaver/pkg/generator"
	"github.com/simonhull/firebird-suite/weaver/pkg/output"
)

// newAddCmd creates the 'add' command for adding items to a project.
func newAddCmd(a *app) *cobra.Command {
	var projectDir string
	var overrides []string
	var force, skip, diff, stripAnchors, checkSyntax, dryRun bool

	cmd := &cobra.Command{
		Use:   "add <template[:name]>...",
		Short: "Add pages or features to an existing project",
		Long: `Adds templates to a project weaver generated earlier.

Templates already installed in the project count as present: they satisfy
dependencies and are not generated again. New fragments merge into the
project's files at their anchors. When a template would replace a file that
already exists, you are asked what to do unless --force, --skip or --diff
decides for you.

Examples:
  weaver add Page.Map
  weaver add Page.Blank:Settings Feat.Settings --project ./Contoso
  weaver add Feat.Settings --diff`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := generator.NewConflictResolver(force, skip, diff)
			if err != nil {
				return err
			}
			items, err := parseItems(args)
			if err != nil {
				return err
			}
			ovr, err := parseOverrides(overrides)
			if err != nil {
				return err
			}
			p, err := a.pipeline()
			if err != nil {
				return err
			}

			req := orchestrator.RightClickRequest{
				ProjectPath:  projectDir,
				Items:        items,
				Overrides:    ovr,
				StripAnchors: a.cfg.Merge.StripAnchors,
				CheckSyntax:  a.cfg.Merge.CheckSyntax,
				DryRun:       dryRun,
			}
			if cmd.Flags().Changed("strip-anchors") {
				req.StripAnchors = stripAnchors
			}
			if cmd.Flags().Changed("check-syntax") {
				req.CheckSyntax = checkSyntax
			}

			orch := orchestrator.New(p,
				orchestrator.WithConflictStrategy(strategy),
				orchestrator.WithWriter(cmd.OutOrStdout()),
				orchestrator.WithLogger(a.log),
			)
			summary, err := orch.GenerateRightClickItems(cmd.Context(), req)
			if summary != nil && summary.Result != nil {
				printDiagnostics(summary.Result.Diagnostics)
			}
			if err != nil {
				return err
			}

			for _, c := range summary.Conflicts {
				output.Verbose(fmt.Sprintf("%s (%s): %s", c.Path, c.Template, c.Resolution))
			}
			if dryRun {
				output.Info(fmt.Sprintf("Dry run: %d new, %d modified, %d skipped", len(summary.New), len(summary.Modified), len(summary.Skipped)))
				return nil
			}
			output.Success(fmt.Sprintf("Added %d template(s)", len(items)))
			output.KeyValue("New", fmt.Sprint(len(summary.New)))
			output.KeyValue("Modified", fmt.Sprint(len(summary.Modified)))
			for _, path := range summary.Skipped {
				output.Warn(fmt.Sprintf("Kept existing %s", path))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&projectDir, "project", "C", ".", "Project directory (weaver.yml is searched upwards)")
	f.StringArrayVar(&overrides, "override", nil, "Exclusive group winner, as group=template (repeatable)")
	f.BoolVar(&force, "force", false, "Overwrite conflicting files")
	f.BoolVar(&skip, "skip", false, "Keep conflicting files")
	f.BoolVar(&diff, "diff", false, "Show a diff before asking about each conflict")
	f.BoolVar(&stripAnchors, "strip-anchors", false, "Remove anchor lines from written files")
	f.BoolVar(&checkSyntax, "check-syntax", false, "Parse merged Go, TypeScript, Python and Rust files")
	f.BoolVar(&dryRun, "dry-run", false, "Show what would be written without writing")
	return cmd
}

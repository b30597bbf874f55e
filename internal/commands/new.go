package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/weaver/internal/batch"
	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/simonhull/firebird-suite/weaver/internal/orchestrator"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
	"github.com/simonhull/firebird-suite/weaver/pkg/output"
)

// newNewCmd creates the 'new' command for generating projects.
func newNewCmd(a *app) *cobra.Command {
	var crit selection.Criteria
	var items, overrides []string
	var dest, namespace string
	var allItems, noCompose, stripAnchors, checkSyntax, randomNames, dryRun bool

	cmd := &cobra.Command{
		Use:   "new [project-name]",
		Short: "Generate a new project",
		Long: `Generates a project from the template catalog.

The project template is chosen from the criteria. Pages and features are
added with --item; their dependencies and matching compositions follow
automatically. When no project type is given you are asked to pick one of
the combinations the catalog supports.

Examples:
  weaver new Contoso -t Blank -f MVVMBasic -p Uwp -l C#
  weaver new Contoso -t SplitView -f Prism -p Uwp -l C# -i Page.Map:Locations -i Feat.Settings
  weaver new Contoso -t Blank -f MVVMBasic -p Uwp -l C# --override Identity=Feat.Identity.Optional`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline()
			if err != nil {
				return err
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			} else {
				name = a.prompt.Prompt("Project name", "App1")
			}

			if crit.ProjectType == "" {
				picked, err := chooseCombination(a, p.Catalog(), crit)
				if err != nil {
					return err
				}
				crit = picked
			}

			picks, err := parseItems(items)
			if err != nil {
				return err
			}
			ovr, err := parseOverrides(overrides)
			if err != nil {
				return err
			}
			if dest == "" {
				dest = a.cfg.Output
			}

			req := orchestrator.ProjectRequest{
				Criteria:      crit,
				ProjectName:   name,
				RootNamespace: namespace,
				Destination:   dest,
				Items:         picks,
				Overrides:     ovr,
				Compose:       !noCompose,
				StripAnchors:  a.cfg.Merge.StripAnchors,
				CheckSyntax:   a.cfg.Merge.CheckSyntax,
				DryRun:        dryRun,
			}
			if cmd.Flags().Changed("strip-anchors") {
				req.StripAnchors = stripAnchors
			}
			if cmd.Flags().Changed("check-syntax") {
				req.CheckSyntax = checkSyntax
			}
			if allItems {
				req.Select = selection.PagesAndFeatures()
			}
			if randomNames {
				req.Names = orchestrator.RandomNames{}
			}

			orch := orchestrator.New(p, orchestrator.WithWriter(cmd.OutOrStdout()), orchestrator.WithLogger(a.log))
			output.Verbose(fmt.Sprintf("Generating %s for %s", name, crit.Short()))

			outcome, err := orch.GenerateProject(cmd.Context(), req)
			if outcome != nil {
				printDiagnostics(outcome.Result.Diagnostics)
			}
			if err != nil {
				var failed *orchestrator.AssemblyFailedError
				if errors.As(err, &failed) {
					for _, f := range failed.Failures {
						output.Error(fmt.Sprintf("%s (%s): %v", f.Path, f.Template, f.Err))
					}
				}
				return err
			}

			if dryRun {
				output.Info(fmt.Sprintf("Dry run: %d files would be written to %s", len(outcome.Result.Files), outcome.Path))
				return nil
			}
			output.Success(fmt.Sprintf("Created project %s", outcome.Name))
			output.KeyValue("Path", outcome.Path)
			output.KeyValue("Templates", fmt.Sprint(len(outcome.Result.Plan)))
			output.KeyValue("Files", fmt.Sprint(len(outcome.Result.Files)))
			output.Info("Next steps:")
			output.Step(fmt.Sprintf("cd %s", outcome.Path))
			output.Step("weaver add <template>  # add pages or features")
			output.Step("weaver build            # build with the platform toolchain")
			return nil
		},
	}

	criteriaFlags(cmd, &crit)
	f := cmd.Flags()
	f.StringArrayVarP(&items, "item", "i", nil, "Template to add, as Template or Template:Name (repeatable)")
	f.StringArrayVar(&overrides, "override", nil, "Exclusive group winner, as group=template (repeatable)")
	f.StringVarP(&dest, "output", "o", "", "Parent directory for the project (default from config)")
	f.StringVar(&namespace, "namespace", "", "Root namespace (default: project name)")
	f.BoolVar(&allItems, "all-items", false, "Add every visible page and feature")
	f.BoolVar(&noCompose, "no-compose", false, "Do not add compositions")
	f.BoolVar(&stripAnchors, "strip-anchors", false, "Remove anchor lines from generated files")
	f.BoolVar(&checkSyntax, "check-syntax", false, "Parse generated Go, TypeScript, Python and Rust files")
	f.BoolVar(&randomNames, "random-names", false, "Give items random unique names")
	f.BoolVar(&dryRun, "dry-run", false, "Show what would be written without writing")
	return cmd
}

// chooseCombination asks for a project combination consistent with the
// axes already given.
func chooseCombination(a *app, cat catalog.Catalog, given selection.Criteria) (selection.Criteria, error) {
	var options []selection.Criteria
	for _, c := range batch.Combinations(cat) {
		if given.Framework != "" && !strings.EqualFold(c.Framework, given.Framework) {
			continue
		}
		if given.Platform != "" && !strings.EqualFold(c.Platform, given.Platform) {
			continue
		}
		if given.Language != "" && !strings.EqualFold(c.Language, given.Language) {
			continue
		}
		options = append(options, c)
	}
	switch len(options) {
	case 0:
		return given, fmt.Errorf("%w for %s", selection.ErrEmptyCandidateSet, given)
	case 1:
		return options[0], nil
	}

	labels := make([]string, len(options))
	for i, c := range options {
		labels[i] = c.Short()
	}
	return options[a.prompt.Choose("Project", labels, 0)], nil
}

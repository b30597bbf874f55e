package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/weaver/internal/orchestrator"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
	"github.com/simonhull/firebird-suite/weaver/pkg/output"
)

// newPlanCmd creates the 'plan' command, which assembles without writing.
func newPlanCmd(a *app) *cobra.Command {
	var crit selection.Criteria
	var items, overrides []string
	var name string
	var noCompose, showFiles bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the templates and files a generation would produce",
		Long: `Resolves and assembles a project in memory and prints the ordered plan.
Nothing is written.

Examples:
  weaver plan -t Blank -f MVVMBasic -p Uwp -l C# -i Page.Map
  weaver plan -t Blank -f MVVMBasic -p Uwp -l C# -i Feat.Settings --files`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			picks, err := parseItems(items)
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

			orch := orchestrator.New(p, orchestrator.WithWriter(cmd.OutOrStdout()), orchestrator.WithLogger(a.log))
			res, err := orch.PlanProject(cmd.Context(), orchestrator.ProjectRequest{
				Criteria:    crit,
				ProjectName: name,
				Items:       picks,
				Overrides:   ovr,
				Compose:     !noCompose,
			})
			if err != nil {
				return err
			}

			output.Info(fmt.Sprintf("Plan for %s", crit.Short()))
			for i, rec := range res.Plan {
				output.Step(fmt.Sprintf("%d. %s (%s)", i+1, rec.Name, rec.Type))
			}
			for _, d := range res.Dropped {
				output.Warn(fmt.Sprintf("%s dropped from group %s in favour of %s", d.Dropped, d.Group, d.Kept))
			}
			if showFiles {
				output.Info("Files:")
				for _, path := range res.Paths() {
					output.Step(path)
				}
			}
			printDiagnostics(res.Diagnostics)
			output.KeyValue("Digest", res.Digest())

			if res.HasFailures() {
				return &orchestrator.AssemblyFailedError{Failures: res.Failed}
			}
			return nil
		},
	}

	criteriaFlags(cmd, &crit)
	f := cmd.Flags()
	f.StringArrayVarP(&items, "item", "i", nil, "Template to add, as Template or Template:Name (repeatable)")
	f.StringArrayVar(&overrides, "override", nil, "Exclusive group winner, as group=template (repeatable)")
	f.StringVar(&name, "name", "", "Project name used for substitution")
	f.BoolVar(&noCompose, "no-compose", false, "Do not add compositions")
	f.BoolVar(&showFiles, "files", false, "List the assembled files")
	return cmd
}

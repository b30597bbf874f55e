package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/weaver/internal/batch"
	"github.com/simonhull/firebird-suite/weaver/internal/harness"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
	"github.com/simonhull/firebird-suite/weaver/pkg/output"
)

// newMatrixCmd creates the 'matrix' command, which generates one project per
// supported combination.
func newMatrixCmd(a *app) *cobra.Command {
	var dest, platform string
	var concurrency int
	var allItems, build, noTest bool

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Generate (and optionally build) every supported project combination",
		Long: `Generates one project for each project type, framework, platform and
language combination the catalog supports. With --build each project is
then built (and tested) with its platform toolchain.

Examples:
  weaver matrix -o ./out
  weaver matrix -o ./out --all-items --build --platform Uwp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline()
			if err != nil {
				return err
			}
			if dest == "" {
				dest = a.cfg.Output
			}
			if concurrency <= 0 {
				concurrency = a.cfg.Build.Concurrency
			}

			combos := batch.Combinations(p.Catalog())
			if platform != "" {
				filtered := combos[:0]
				for _, c := range combos {
					if strings.EqualFold(c.Platform, platform) {
						filtered = append(filtered, c)
					}
				}
				combos = filtered
			}
			if len(combos) == 0 {
				return fmt.Errorf("%w: no project combinations", selection.ErrEmptyCandidateSet)
			}

			opts := []batch.Option{batch.WithConcurrency(concurrency), batch.WithLogger(a.log)}
			if build {
				opts = append(opts, batch.WithHarness(harness.New(a.cfg.Toolchains(),
					harness.WithTimeout(a.cfg.Build.Timeout),
					harness.WithOutput(cmd.ErrOrStderr()),
					harness.WithLogger(a.log),
				)))
			}
			req := batch.MatrixRequest{
				Destination:  dest,
				Combinations: combos,
				Compose:      true,
				StripAnchors: a.cfg.Merge.StripAnchors,
				CheckSyntax:  a.cfg.Merge.CheckSyntax,
				Build:        build,
			}
			if allItems {
				req.Select = selection.PagesAndFeatures()
			}
			if noTest {
				req.Steps = []harness.Step{harness.StepBuild}
			}

			output.Info(fmt.Sprintf("Generating %d projects into %s", len(combos), dest))
			results, err := batch.NewRunner(p, cmd.OutOrStdout(), opts...).Matrix(cmd.Context(), req)
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				switch {
				case r.Err == nil:
					output.Success(fmt.Sprintf("%s (%s)", r.ProjectName, r.Criteria.Short()))
				case errors.Is(r.Err, harness.ErrBuildTimedOut):
					failed++
					output.Warn(fmt.Sprintf("%s: %v", r.ProjectName, r.Err))
				default:
					failed++
					output.Error(fmt.Sprintf("%s: %v", r.ProjectName, r.Err))
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d projects failed", failed, len(results))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&dest, "output", "o", "", "Directory the projects are generated in (default from config)")
	f.StringVarP(&platform, "platform", "p", "", "Only combinations for this platform")
	f.IntVarP(&concurrency, "concurrency", "j", 0, "Projects processed at once (default from config)")
	f.BoolVar(&allItems, "all-items", false, "Add every visible page and feature to each project")
	f.BoolVar(&build, "build", false, "Build each generated project")
	f.BoolVar(&noTest, "no-test", false, "With --build, skip the test step")
	return cmd
}

package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/simonhull/firebird-suite/weaver/internal/harness"
	"github.com/simonhull/firebird-suite/weaver/internal/project"
	"github.com/simonhull/firebird-suite/weaver/pkg/output"
)

// newBuildCmd creates the 'build' command, which runs the platform toolchain
// against a generated project.
func newBuildCmd(a *app) *cobra.Command {
	var platform string
	var buildOnly, quiet bool

	cmd := &cobra.Command{
		Use:   "build [project-dir]",
		Short: "Build and test a generated project with its platform toolchain",
		Long: `Runs the build and test commands configured for the project's platform.
Each step is bounded by build.timeout from the config.

Examples:
  weaver build
  weaver build ./Contoso --no-test`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			manifest, err := project.Detect(dir)
			if err != nil {
				return err
			}
			if platform == "" {
				platform = manifest.Criteria.Platform
			}

			spinner := quiet
			if !cmd.Flags().Changed("quiet") {
				spinner = isTerminal(cmd)
			}
			h := harness.New(a.cfg.Toolchains(),
				harness.WithTimeout(a.cfg.Build.Timeout),
				harness.WithOutput(cmd.OutOrStdout()),
				harness.WithSpinner(spinner),
				harness.WithLogger(a.log),
			)

			var steps []harness.Step
			if buildOnly {
				steps = []harness.Step{harness.StepBuild}
			}
			report, err := h.Validate(cmd.Context(), manifest.Name, platform, manifest.Root(), steps...)
			if report != nil {
				for _, s := range report.Steps {
					status := "passed"
					if s.Err != nil {
						status = "failed"
					}
					output.KeyValue(string(s.Step), fmt.Sprintf("%s in %s (%s)", status, s.Duration.Round(time.Millisecond), s.Command))
				}
			}
			if err != nil {
				return err
			}
			output.Success(fmt.Sprintf("%s builds on %s", manifest.Name, platform))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&platform, "platform", "p", "", "Toolchain platform (default from weaver.yml)")
	f.BoolVar(&buildOnly, "no-test", false, "Skip the test step")
	f.BoolVarP(&quiet, "quiet", "q", false, "Hide toolchain output behind a spinner (default on terminals)")
	return cmd
}

func isTerminal(cmd *cobra.Command) bool {
	type fder interface{ Fd() uintptr }
	f, ok := cmd.OutOrStdout().(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

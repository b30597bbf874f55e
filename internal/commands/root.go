package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	weaver "github.com/simonhull/firebird-suite/weaver"
	"github.com/simonhull/firebird-suite/weaver/internal/assembly"
	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/simonhull/firebird-suite/weaver/internal/config"
	"github.com/simonhull/firebird-suite/weaver/internal/logger"
	"github.com/simonhull/firebird-suite/weaver/internal/merge"
	"github.com/simonhull/firebird-suite/weaver/internal/syntaxcheck"
	"github.com/simonhull/firebird-suite/weaver/pkg/input"
	"github.com/simonhull/firebird-suite/weaver/pkg/output"
)

// app is the state shared by every command of one invocation.
type app struct {
	configFile string
	catalogDir string
	verbose    bool

	cfg    *config.Config
	log    logger.Logger
	prompt *input.Prompter
}

// load reads configuration and sets up logging. Flags win over config.
func (a *app) load(cmd *cobra.Command) error {
	output.SetVerbose(a.verbose)

	cfg, err := config.Load(config.Options{File: a.configFile})
	if err != nil {
		return err
	}
	if a.catalogDir != "" {
		cfg.Catalog = a.catalogDir
	}
	a.cfg = cfg

	opts := cfg.LoggerOptions()
	opts.Out = cmd.ErrOrStderr()
	if a.verbose {
		opts.Level = logger.LevelDebug
	}
	a.log = logger.NewLogger(opts)
	logger.SetDefault(a.log)

	if a.prompt == nil {
		a.prompt = input.New(cmd.InOrStdin(), cmd.OutOrStdout())
	}
	if cfg.File != "" {
		output.Verbose(fmt.Sprintf("Using config %s", cfg.File))
	}
	return nil
}

// pipeline loads the catalog and returns a pipeline configured from it.
func (a *app) pipeline() (*assembly.Pipeline, error) {
	cat, err := catalog.Load(a.cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	output.Verbose(fmt.Sprintf("Loaded %d templates from %s", cat.Len(), a.cfg.Catalog))
	return assembly.NewPipeline(cat,
		assembly.WithEngine(merge.NewEngine(a.cfg.Syntax(), a.log)),
		assembly.WithChecker(syntaxcheck.New()),
		assembly.WithLogger(a.log),
	), nil
}

// RootCmd creates the weaver command tree.
func RootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weaver",
		Short: "Assemble projects from composable templates",
		Long: `Weaver builds projects by merging template fragments.

A generation selects templates for a project type, framework, platform and
language, pulls in their dependencies and compositions, orders them, then
splices each fragment into the files before it:
• Project templates lay down the skeleton
• Pages and features merge into anchors the skeleton provides
• Items can be added to an existing project later`,
		Version:       weaver.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (default ./"+config.FileName+")")
	cmd.PersistentFlags().StringVar(&a.catalogDir, "templates", "", "Template catalog directory (overrides config)")

	cmd.AddCommand(
		newNewCmd(a),
		newAddCmd(a),
		newListCmd(a),
		newPlanCmd(a),
		newMatrixCmd(a),
		newBuildCmd(a),
		newMCPCmd(a),
	)
	return cmd
}

// Execute runs the command tree, printing any error.
func Execute(cmd *cobra.Command, errOut io.Writer) error {
	err := cmd.Execute()
	if err != nil {
		output.SetWriter(errOut)
		output.Error(err.Error())
	}
	return err
}

// internal/cli/root.go
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/config"
	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/workflow"
	"github.com/mobs-lab/hubverse-dashboards/internal/menu"
)

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// IO holds the streams commands read from and write to. Logs go to Err.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type globalFlags struct {
	ConfigFile  string
	ProjectRoot string
	DevMode     bool
	LogLevel    string
	LogFormat   string
}

// app is shared by every command once PersistentPreRunE has loaded settings.
type app struct {
	streams  IO
	in       *bufio.Reader
	build    BuildInfo
	globals  globalFlags
	settings *config.Config
	logger   logger.Logger
}

func NewRootCommand(streams IO, build BuildInfo) *cobra.Command {
	a := &app{streams: streams, in: bufio.NewReader(streams.In), build: build}

	cmd := &cobra.Command{
		Use:   "dashboard-builder",
		Short: "Build Hubverse forecast dashboard data",
		Long: "Turns a Hubverse project (config.yaml, target-data/, model-output/) into the\n" +
			"JSON documents read by the forecast dashboard. Without a subcommand an\n" +
			"interactive menu is shown.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := workflow.New(a.settings, a.logger, a.workflowOptions(false, false))
			m := menu.New(a.settings.Project.ConfigPath(), runner, a.in, streams.Out, a.logger)
			if code := m.Run(cmd.Context()); code != apperrors.ExitOK {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
	cmd.SetIn(streams.In)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.globals.ConfigFile, "config", "", "hub config file (default config.yaml in the project root)")
	flags.StringVar(&a.globals.ProjectRoot, "project-root", ".", "directory holding config.yaml, target-data/ and model-output/")
	flags.BoolVar(&a.globals.DevMode, "dev", false, "read inputs from test-data-input/")
	flags.StringVar(&a.globals.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.globals.LogFormat, "log-format", "", "log format: console or json")

	cmd.AddCommand(
		newBuildCommand(a),
		newCheckCommand(a),
		newValidateCommand(a),
		newSamplesCommand(a),
		newVersionCommand(a),
	)
	return cmd
}

func (a *app) load(cmd *cobra.Command) error {
	overrides := config.Overrides{
		ProjectRoot: a.globals.ProjectRoot,
		ConfigFile:  a.globals.ConfigFile,
		LogLevel:    a.globals.LogLevel,
		LogFormat:   a.globals.LogFormat,
	}
	if cmd.Flags().Changed("dev") {
		overrides.DevMode = &a.globals.DevMode
	}
	settings, err := config.Load(overrides)
	if err != nil {
		return apperrors.NewSettingsInvalidError(err.Error())
	}
	a.settings = settings
	a.logger = logger.NewZapAdapter(logger.NewWithWriter(settings.Logging.Level, settings.Logging.Format, a.streams.Err))
	return nil
}

func (a *app) workflowOptions(force, assumeYes bool) workflow.Options {
	return workflow.Options{
		Force:     force,
		AssumeYes: assumeYes,
		In:        a.in,
		Out:       a.streams.Out,
		Err:       a.streams.Err,
	}
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, streams IO, build BuildInfo) int {
	cmd := NewRootCommand(streams, build)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return apperrors.ExitOK
	}
	code, ok := exitCode(err)
	if !ok {
		code = apperrors.ExitFailure
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintf(streams.Err, "Error: %s\n", msg)
	}
	return code
}

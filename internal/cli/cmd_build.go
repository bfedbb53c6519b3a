// internal/cli/cmd_build.go
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/workflow"
	"github.com/mobs-lab/hubverse-dashboards/internal/menu"
)

func newBuildCommand(a *app) *cobra.Command {
	var force, assumeYes bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the dashboard data without the menu",
		Example: "  dashboard-builder build\n" +
			"  dashboard-builder build --yes --force",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := a.settings.Project.ConfigPath()
			if err := menu.CheckConfig(configPath, a.streams.Out); err != nil {
				return &ExitError{Code: apperrors.ExitFailure}
			}
			runner := workflow.New(a.settings, a.logger, a.workflowOptions(force, assumeYes))
			err := runner.Run(cmd.Context(), configPath)
			if errors.Is(err, workflow.ErrAborted) {
				fmt.Fprintln(a.streams.Out, "Build cancelled.")
				return nil
			}
			if err != nil {
				apperrors.NewErrorHandler(a.logger).Handle("build", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "rebuild even when inputs are unchanged")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the sample-shape confirmation")
	return cmd
}

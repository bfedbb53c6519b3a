// internal/cli/cmd_samples.go
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mobs-lab/hubverse-dashboards/internal/shapes"
)

func newSamplesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "Print the CSV shapes expected by config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, report, err := a.loadHubConfig()
			if report != nil {
				report.Print(a.streams.Out)
			}
			if err != nil {
				return err
			}
			shapes.NewPrinter(cfg, a.streams.Out).PrintAll()
			return nil
		},
	}
}

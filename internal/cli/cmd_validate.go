// internal/cli/cmd_validate.go
package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/hubconfig"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/pkg/locations"
)

func newValidateCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate config.yaml and print its warnings and errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, report, err := a.loadHubConfig()
			if report == nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.streams.Out)
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(report); encErr != nil {
					return encErr
				}
			} else {
				report.Print(a.streams.Out)
			}
			if err != nil {
				return &ExitError{Code: apperrors.ExitFailure}
			}
			if !asJSON {
				fmt.Fprintf(a.streams.Out, "\n✓ %s is valid (%d warning(s))\n",
					filepath.Base(a.settings.Project.ConfigPath()), len(report.Warnings))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

// loadHubConfig parses config.yaml with the location table from settings.
func (a *app) loadHubConfig() (*models.DashboardConfig, *hubconfig.Report, error) {
	mapping := a.settings.Locations.MappingFile
	if mapping != "" && !filepath.IsAbs(mapping) {
		mapping = filepath.Join(a.settings.Project.Root, mapping)
	}
	names, err := locations.Resolve(mapping)
	if err != nil {
		return nil, nil, err
	}
	return hubconfig.Load(a.settings.Project.ConfigPath(), hubconfig.Options{
		LocationNames: names,
		ProjectRoot:   a.settings.Project.DataRoot(),
		Logger:        a.logger,
	})
}

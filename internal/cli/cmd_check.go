// internal/cli/cmd_check.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mobs-lab/hubverse-dashboards/internal/menu"
)

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check for new data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(a.streams.Out, menu.NotImplementedMessage)
			return err
		},
	}
}

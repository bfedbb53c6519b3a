// internal/common/workflow/runner.go
package workflow

import (
	"context"
	"errors"
	"io"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/config"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
)

// ErrAborted is returned when the user declines the sample-shape confirmation.
var ErrAborted = errors.New("build aborted by user")

// Runner performs the dashboard build for a config file.
type Runner interface {
	Run(ctx context.Context, configPath string) error
}

// Options tune a build started from the CLI.
type Options struct {
	// Force rebuilds even when inputs are unchanged.
	Force bool
	// AssumeYes skips the sample-shape confirmation prompt.
	AssumeYes bool
	In        io.Reader
	Out       io.Writer
	Err       io.Writer
}

const (
	ModeBuiltin  = "builtin"
	ModeExternal = "external"
)

// New returns the runner selected by settings.Workflow.Mode.
func New(settings *config.Config, log logger.Logger, opts Options) Runner {
	if settings.Workflow.Mode == ModeExternal {
		return NewExternalRunner(settings, log, opts.Out, opts.Err)
	}
	return NewBuiltinRunner(settings, log, opts)
}

// internal/common/workflow/external.go
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/config"
	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
)

// ExternalRunner runs the workflow script as a child process in the project
// root and streams its output.
type ExternalRunner struct {
	Interpreter string
	Script      string
	Dir         string

	logger logger.Logger
	stdout io.Writer
	stderr io.Writer
}

func NewExternalRunner(settings *config.Config, log logger.Logger, stdout, stderr io.Writer) *ExternalRunner {
	return &ExternalRunner{
		Interpreter: settings.Workflow.Interpreter,
		Script:      settings.Workflow.Script,
		Dir:         settings.Project.Root,
		logger:      log.WithFields(map[string]interface{}{"workflow": ModeExternal}),
		stdout:      stdout,
		stderr:      stderr,
	}
}

func (r *ExternalRunner) Run(ctx context.Context, configPath string) error {
	args := []string{r.Script, "--config", configPath}
	cmd := exec.CommandContext(ctx, r.Interpreter, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	r.logger.Info("Starting workflow script", map[string]interface{}{
		"interpreter": r.Interpreter,
		"args":        args,
	})
	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		return apperrors.NewWorkflowFailedError(fmt.Sprintf("%s exited with status %d", r.Script, code), code, err)
	}
	return apperrors.NewWorkflowFailedError(fmt.Sprintf("could not start %s", r.Interpreter), -1, err)
}

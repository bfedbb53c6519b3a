// internal/stages/ingest/detect-changes/handler.go
package detectchanges

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
	exportjson "github.com/mobs-lab/hubverse-dashboards/internal/stages/export/export-json"
	"github.com/mobs-lab/hubverse-dashboards/internal/state"
)

const (
	TaskType = "detect-changes"
)

type Handler struct {
	config *Config
	logger logger.Logger
	store  state.Store
}

func NewHandler(config *Config, log logger.Logger, store state.Store) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		store:  store,
	}
}

func (h *Handler) Name() string { return TaskType }

func (h *Handler) Execute(ctx context.Context, st *pipeline.State) error {
	output, err := h.execute(ctx, st)
	if err != nil {
		return err
	}
	h.logger.Info("Input changes detected", map[string]interface{}{
		"projectKey":  output.ProjectKey,
		"mode":        output.Mode,
		"fingerprint": output.Fingerprint,
		"files":       output.Files,
		"halted":      output.Halted,
		"outputStale": output.OutputStale,
		"force":       st.Force,
	})
	return nil
}

func (h *Handler) execute(ctx context.Context, st *pipeline.State) (*Output, error) {
	root := st.Settings.Project.Root
	if st.ProjectKey == "" {
		st.ProjectKey = state.ProjectKey(root)
	}

	files := pipeline.InputFiles(st)
	fp, err := state.Fingerprint(root, files)
	if err != nil {
		return nil, apperrors.NewInvalidDataError("failed to fingerprint build inputs", err)
	}
	st.InputFiles = files
	st.Fingerprint = fp

	out := &Output{ProjectKey: st.ProjectKey, Fingerprint: fp, Files: len(files)}

	prev, err := h.store.Get(ctx, st.ProjectKey)
	switch {
	case errors.Is(err, state.ErrNotFound):
		out.Mode = models.BuildModeInitial
	case err != nil:
		return nil, apperrors.NewStateStoreFailedError("get", err)
	case prev.Fingerprint == fp && !outputCurrent(st.OutputDir, fp):
		out.Mode = models.BuildModeUpdate
		out.OutputStale = true
	case prev.Fingerprint == fp:
		out.Mode = models.BuildModeUnchanged
	default:
		out.Mode = models.BuildModeUpdate
	}
	if prev != nil {
		out.PreviousFingerprint = prev.Fingerprint
		out.PreviousRunID = prev.RunID
	}
	st.Mode = out.Mode

	if out.Mode == models.BuildModeUnchanged && h.config.HaltOnUnchanged && !st.Force {
		st.Halt(fmt.Sprintf("inputs unchanged since build %s", out.PreviousRunID))
		out.Halted = true
	}
	return out, nil
}

// outputCurrent reports whether outputDir holds an export of fingerprint fp.
func outputCurrent(outputDir, fp string) bool {
	manifest, err := exportjson.ReadManifest(outputDir)
	return err == nil && manifest.Fingerprint == fp
}

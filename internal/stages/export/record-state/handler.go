// internal/stages/export/record-state/handler.go
package recordstate

import (
	"context"
	"time"

	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
	"github.com/mobs-lab/hubverse-dashboards/internal/state"
)

const (
	TaskType = "record-state"
)

type Handler struct {
	config *Config
	logger logger.Logger
	store  state.Store
	now    func() time.Time
}

func NewHandler(config *Config, log logger.Logger, store state.Store) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		store:  store,
		now:    time.Now,
	}
}

func (h *Handler) Name() string { return TaskType }

func (h *Handler) Execute(ctx context.Context, st *pipeline.State) error {
	output, err := h.execute(ctx, st)
	if err != nil {
		return err
	}
	h.logger.Info("Build state recorded", map[string]interface{}{
		"projectKey":  output.ProjectKey,
		"fingerprint": output.Fingerprint,
		"recorded":    output.Recorded,
	})
	return nil
}

func (h *Handler) execute(ctx context.Context, st *pipeline.State) (*Output, error) {
	out := &Output{ProjectKey: st.ProjectKey, Fingerprint: st.Fingerprint}
	if st.Fingerprint == "" || st.ProjectKey == "" {
		st.Warn("No input fingerprint was computed, build state not recorded")
		return out, nil
	}

	record := &models.BuildState{
		ProjectKey:  st.ProjectKey,
		Fingerprint: st.Fingerprint,
		RunID:       st.RunID,
		BuiltAt:     h.now().UTC(),
	}
	if h.config.RecordFiles {
		record.Files = append([]string{}, st.ExportedFiles...)
	}
	if err := h.store.Put(ctx, record); err != nil {
		return nil, apperrors.NewStateStoreFailedError("put", err)
	}
	out.Recorded = true
	return out, nil
}

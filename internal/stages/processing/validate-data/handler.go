// internal/stages/processing/validate-data/handler.go
package validatedata

import (
	"context"
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
)

const (
	TaskType = "validate-data"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Name() string { return TaskType }

func (h *Handler) Execute(ctx context.Context, st *pipeline.State) error {
	output, err := h.execute(ctx, st)
	if err != nil {
		return err
	}
	h.logger.Info("Data validated", map[string]interface{}{
		"targetRows": output.TargetRows,
		"modelRows":  output.ModelRows,
		"valid":      output.Valid(),
	})
	return nil
}

func (h *Handler) execute(_ context.Context, st *pipeline.State) (*Output, error) {
	cfg := st.Config
	out := &Output{ModelRows: st.ModelOutput.Len()}
	if st.TargetData != nil {
		out.TargetRows = len(st.TargetData.Rows)
	}

	switch {
	case out.TargetRows == 0 && out.ModelRows == 0:
		return nil, apperrors.NewDataNotFoundError("neither target data nor model output contains any rows")
	case out.TargetRows == 0:
		st.Warn("Target data contains no rows")
	case out.ModelRows == 0:
		st.Warn("Model output contains no rows")
	}

	if st.ModelOutput != nil {
		out.UnknownHorizons = unknownHorizons(st.ModelOutput, cfg.Horizons)
		if len(out.UnknownHorizons) > 0 {
			st.Warn("Model output has horizons not listed in config: %s", h.list(intsToStrings(out.UnknownHorizons)))
		}

		if st.ModelOutput.HasTarget && !cfg.IsSingleTarget {
			known := make(map[string]bool, len(cfg.Targets))
			for _, t := range cfg.Targets {
				known[t.ModelOutputKey] = true
			}
			out.UnknownModelTargets = unknownStrings(modelTargets(st.ModelOutput), known)
			if len(out.UnknownModelTargets) > 0 {
				st.Warn("Model output has targets not listed in config: %s", h.list(out.UnknownModelTargets))
			}
		}

		out.UnknownQuantiles, out.MissingQuantiles = checkQuantiles(st.ModelOutput, cfg.AllQuantiles())
		if len(out.UnknownQuantiles) > 0 {
			st.Warn("Model output has quantiles not used by any interval: %s", h.list(out.UnknownQuantiles))
		}
		if len(out.MissingQuantiles) > 0 {
			st.Warn("Configured quantiles missing from model output: %s", h.list(out.MissingQuantiles))
		}
	}

	if st.TargetData != nil && st.TargetData.HasTarget && !cfg.IsSingleTarget {
		known := make(map[string]bool, len(cfg.Targets))
		for _, t := range cfg.Targets {
			known[t.TargetDataKey] = true
		}
		seen := make(map[string]bool)
		var values []string
		for _, r := range st.TargetData.Rows {
			if r.Target != "" && !seen[r.Target] {
				seen[r.Target] = true
				values = append(values, r.Target)
			}
		}
		out.UnknownTargetDataKeys = unknownStrings(values, known)
		if len(out.UnknownTargetDataKeys) > 0 {
			st.Warn("Target data has targets not listed in config: %s", h.list(out.UnknownTargetDataKeys))
		}
	}
	return out, nil
}

func (h *Handler) list(values []string) string {
	if h.config.MaxListed > 0 && len(values) > h.config.MaxListed {
		return fmt.Sprintf("%s (and %d more)", strings.Join(values[:h.config.MaxListed], ", "), len(values)-h.config.MaxListed)
	}
	return strings.Join(values, ", ")
}

func unknownHorizons(mo *models.ModelOutput, configured []int) []int {
	known := make(map[int]bool, len(configured))
	for _, h := range configured {
		known[h] = true
	}
	found := make(map[int]bool)
	for _, q := range mo.Quantiles {
		if !known[q.Horizon] {
			found[q.Horizon] = true
		}
	}
	for _, r := range mo.Other {
		if !known[r.Horizon] {
			found[r.Horizon] = true
		}
	}
	out := make([]int, 0, len(found))
	for h := range found {
		out = append(out, h)
	}
	sort.Ints(out)
	return out
}

func modelTargets(mo *models.ModelOutput) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, q := range mo.Quantiles {
		add(q.Target)
	}
	for _, r := range mo.Other {
		add(r.Target)
	}
	return out
}

func unknownStrings(values []string, known map[string]bool) []string {
	var out []string
	for _, v := range values {
		if !known[v] {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// checkQuantiles compares pivoted quantile columns with the configured
// quantile IDs. Both results are reported as output_type_id values. Model
// output without quantile rows is not checked.
func checkQuantiles(mo *models.ModelOutput, configured []string) (unknown, missing []string) {
	if len(mo.Quantiles) == 0 {
		return nil, nil
	}
	want := make(map[string]string, len(configured))
	for _, id := range configured {
		want[models.QuantileKey(id)] = id
	}
	present := make(map[string]bool)
	for _, q := range mo.Quantiles {
		for key := range q.Quantiles {
			present[key] = true
		}
	}
	for key := range present {
		if _, ok := want[key]; !ok {
			unknown = append(unknown, quantileID(key))
		}
	}
	for key, id := range want {
		if !present[key] {
			missing = append(missing, id)
		}
	}
	models.SortNumeric(unknown)
	models.SortNumeric(missing)
	return unknown, missing
}

// quantileID reverses models.QuantileKey.
func quantileID(key string) string {
	return strings.ReplaceAll(strings.TrimPrefix(key, "q"), "_", ".")
}

func intsToStrings(values []int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}

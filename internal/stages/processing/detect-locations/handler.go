// internal/stages/processing/detect-locations/handler.go
package detectlocations

import (
	"context"
	"sort"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
)

const (
	TaskType = "detect-locations"
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
	output := h.execute(ctx, st)
	h.logger.Info("Locations detected", map[string]interface{}{
		"locations":       output.Locations,
		"fromTargetData":  output.FromTargetData,
		"fromModelOutput": output.FromModelOutput,
	})
	return nil
}

// execute collects (code, name) pairs from target data when it has both
// columns, then model-output codes named through the location mapping. The
// first pair seen for a code wins; the result is sorted by code.
func (h *Handler) execute(_ context.Context, st *pipeline.State) *Output {
	cfg := st.Config
	out := &Output{}
	seen := make(map[string]bool)
	var locations []models.Location

	add := func(code, name string) bool {
		if code == "" || seen[code] {
			return false
		}
		seen[code] = true
		locations = append(locations, models.Location{Location: code, LocationName: name})
		return true
	}

	if td := st.TargetData; td != nil && td.HasLocation && td.HasLocationName {
		for _, r := range td.Rows {
			if add(r.Location, r.LocationName) {
				out.FromTargetData++
			}
		}
	}

	if mo := st.ModelOutput; mo != nil && mo.HasLocation {
		for _, code := range modelLocations(mo) {
			name := h.mappedName(cfg, code)
			if add(code, name) {
				out.FromModelOutput++
				if name == h.config.UnknownName {
					out.Unknown = append(out.Unknown, code)
				}
			}
		}
	}

	if len(locations) == 0 && cfg.IsSingleLocation && cfg.SingleLocationMapping != "" {
		add(cfg.SingleLocationMapping, h.mappedName(cfg, cfg.SingleLocationMapping))
	}
	if len(out.Unknown) > 0 {
		st.Warn("Location codes without a known name: %v", out.Unknown)
	}

	sort.SliceStable(locations, func(i, j int) bool {
		return locations[i].Location < locations[j].Location
	})
	st.Locations = locations
	out.Locations = len(locations)
	return out
}

func (h *Handler) mappedName(cfg *models.DashboardConfig, code string) string {
	if name, ok := cfg.LocationNames[models.PadLocationCode(code)]; ok {
		return name
	}
	return h.config.UnknownName
}

// modelLocations returns distinct model-output codes in order of appearance.
func modelLocations(mo *models.ModelOutput) []string {
	seen := make(map[string]bool)
	var out []string
	for _, q := range mo.Quantiles {
		if !seen[q.Location] {
			seen[q.Location] = true
			out = append(out, q.Location)
		}
	}
	for _, r := range mo.Other {
		if !seen[r.Location] {
			seen[r.Location] = true
			out = append(out, r.Location)
		}
	}
	return out
}

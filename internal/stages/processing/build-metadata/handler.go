// internal/stages/processing/build-metadata/handler.go
package buildmetadata

import (
	"context"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
)

const (
	TaskType = "build-metadata"
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
	fields := map[string]interface{}{
		"locations":      output.Locations,
		"seasons":        output.Seasons,
		"dynamicPeriods": output.DynamicPeriods,
	}
	if output.DefaultSelectedDate != nil {
		fields["defaultSelectedDate"] = *output.DefaultSelectedDate
	}
	h.logger.Info("Metadata generated", fields)
	return nil
}

func (h *Handler) execute(_ context.Context, st *pipeline.State) *Output {
	cfg := st.Config
	md := &models.Metadata{
		Locations:         append([]models.Location{}, st.Locations...),
		FullRangeSeasons:  []models.Season{},
		DynamicTimePeriod: []models.DynamicPeriod{},
		ModelNames:        cfg.ModelNames(),
		TimeUnit:          cfg.TimeUnit,
		Horizons:          append([]int{}, cfg.Horizons...),
		IsSingleLocation:  cfg.IsSingleLocation,
		IsSingleTarget:    cfg.IsSingleTarget,
	}

	for _, p := range cfg.ForecastPeriods {
		md.FullRangeSeasons = append(md.FullRangeSeasons, models.Season{
			SeasonID:      p.ID,
			DisplayString: p.DisplayString,
			StartDate:     models.FormatISO(p.Start),
			EndDate:       models.FormatISO(p.End),
		})
	}

	// Special periods carry dates only once partition-periods has resolved them.
	for _, part := range st.Partitions {
		if !part.Period.IsSpecial {
			continue
		}
		md.DynamicTimePeriod = append(md.DynamicTimePeriod, models.DynamicPeriod{
			Label:         part.Period.ID,
			DisplayString: part.Period.DisplayString,
			IsDynamic:     true,
			StartDate:     models.FormatISO(part.Period.Start),
			EndDate:       models.FormatISO(part.Period.End),
		})
	}

	if latest, ok := st.ModelOutput.LatestReferenceDate(); ok {
		s := models.FormatISO(latest)
		md.DefaultSelectedDate = &s
	}

	if p, ok := cfg.DefaultPeriod(); ok {
		md.DefaultSeasonID = p.ID
	} else if h.config.FallbackToLastSeason && len(cfg.ForecastPeriods) > 0 {
		md.DefaultSeasonID = cfg.ForecastPeriods[len(cfg.ForecastPeriods)-1].ID
	}

	md.Models = make([]models.ModelInfo, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		md.Models = append(md.Models, models.ModelInfo{Name: m.Name, DisplayName: m.DisplayName, Color: m.ColorHex})
	}
	md.Targets = make([]models.TargetInfo, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		md.Targets = append(md.Targets, models.TargetInfo{
			TargetDataKey:   t.TargetDataKey,
			ModelOutputKey:  t.ModelOutputKey,
			DisplayName:     t.DisplayName,
			ForecastPeriods: append([]string{}, t.ForecastPeriods...),
		})
	}
	md.PredictionIntervals = make([]models.IntervalInfo, 0, len(cfg.PredictionIntervals))
	for _, pi := range cfg.PredictionIntervals {
		md.PredictionIntervals = append(md.PredictionIntervals, models.IntervalInfo{
			Level:     pi.Level,
			Quantiles: append([]string{}, pi.OutputTypeIDs...),
		})
	}

	st.Metadata = md
	return &Output{
		Locations:           len(md.Locations),
		Seasons:             len(md.FullRangeSeasons),
		DynamicPeriods:      len(md.DynamicTimePeriod),
		DefaultSeasonID:     md.DefaultSeasonID,
		DefaultSelectedDate: md.DefaultSelectedDate,
	}
}

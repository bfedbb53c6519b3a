// internal/stages/processing/partition-periods/handler.go
package partitionperiods

import (
	"context"
	"time"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
)

const (
	TaskType = "partition-periods"
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
	for _, p := range output.Periods {
		h.logger.Info("Period partitioned", map[string]interface{}{
			"period":     p.ID,
			"start":      p.Start,
			"end":        p.End,
			"targetRows": p.TargetRows,
			"modelRows":  p.ModelRows,
		})
	}
	return nil
}

func (h *Handler) execute(_ context.Context, st *pipeline.State) *Output {
	cfg := st.Config
	out := &Output{}
	st.Partitions = nil

	for _, period := range cfg.AllPeriods() {
		summary := PeriodSummary{ID: period.ID}
		if period.IsSpecial {
			start, end, ok := h.resolveSpecial(st, period)
			if !ok {
				out.Skipped = append(out.Skipped, period.ID)
				continue
			}
			period.Start, period.End = start, end
			summary.SpecialFrom = period.Anchor.AnchorMode
		}

		part := &models.Partition{Period: period}
		if st.TargetData != nil {
			part.TargetData = filterTargetRows(st.TargetData.Rows, period.Start, period.End)
			if h.config.IncludeHistory && len(st.TargetData.History) > 0 {
				part.TargetHistory = make(map[string][]models.TargetRow, len(st.TargetData.History))
				for asOf, rows := range st.TargetData.History {
					part.TargetHistory[asOf] = filterTargetRows(rows, period.Start, period.End)
				}
			}
		}

		inRange := filterModelOutput(st.ModelOutput, period.Start, period.End)
		if !cfg.IsSingleTarget && inRange.HasTarget {
			part.ByTarget = groupByTarget(inRange, cfg.TargetsFor(period.ID))
			summary.ByTarget = true
			for _, mo := range part.ByTarget {
				summary.ModelRows += mo.Len()
			}
		} else {
			part.ModelOutput = inRange
			summary.ModelRows = inRange.Len()
		}

		summary.Start = models.FormatDate(period.Start)
		summary.End = models.FormatDate(period.End)
		summary.TargetRows = len(part.TargetData)
		st.Partitions = append(st.Partitions, part)
		out.Periods = append(out.Periods, summary)
	}
	return out
}

// resolveSpecial anchors a special period on the latest date of the chosen
// dataset: the period ends on that date and starts range_calculation time
// units away from it.
func (h *Handler) resolveSpecial(st *pipeline.State, period models.ForecastPeriod) (time.Time, time.Time, bool) {
	if period.Anchor == nil {
		st.Warn("Special period '%s' is missing time_anchor config. Skipping.", period.ID)
		return time.Time{}, time.Time{}, false
	}

	var anchor time.Time
	var found bool
	switch period.Anchor.AnchorMode {
	case models.AnchorModeModelOutput:
		anchor, found = st.ModelOutput.LatestReferenceDate()
	case models.AnchorModeTargetData:
		if st.TargetData != nil {
			anchor, found = st.TargetData.LatestDate()
		}
	default:
		st.Warn("Invalid anchor_mode '%s' for special period '%s'. Skipping.", period.Anchor.AnchorMode, period.ID)
		return time.Time{}, time.Time{}, false
	}
	if !found {
		st.Warn("Could not determine anchor date for special period '%s'. Skipping.", period.ID)
		return time.Time{}, time.Time{}, false
	}

	start, end := SpecialRange(anchor, period.Anchor.RangeCalculation, st.Config.TimeUnit)
	return start, end, true
}

// SpecialRange returns the range ending at anchor and starting
// rangeCalculation*timeUnit days from it. rangeCalculation is negative.
func SpecialRange(anchor time.Time, rangeCalculation, timeUnit int) (start, end time.Time) {
	return anchor.AddDate(0, 0, rangeCalculation*timeUnit), anchor
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func filterTargetRows(rows []models.TargetRow, start, end time.Time) []models.TargetRow {
	var out []models.TargetRow
	for _, r := range rows {
		if within(r.Date, start, end) {
			out = append(out, r)
		}
	}
	return out
}

// filterModelOutput keeps rows whose reference date lies in [start, end].
func filterModelOutput(mo *models.ModelOutput, start, end time.Time) *models.ModelOutput {
	out := &models.ModelOutput{}
	if mo == nil {
		return out
	}
	out.HasTarget, out.HasLocation = mo.HasTarget, mo.HasLocation
	for _, q := range mo.Quantiles {
		if within(q.ReferenceDate, start, end) {
			out.Quantiles = append(out.Quantiles, q)
		}
	}
	for _, r := range mo.Other {
		if within(r.ReferenceDate, start, end) {
			out.Other = append(out.Other, r)
		}
	}
	return out
}

// groupByTarget splits mo by target value, keeping only the given targets.
func groupByTarget(mo *models.ModelOutput, targets []string) map[string]*models.ModelOutput {
	valid := make(map[string]bool, len(targets))
	for _, t := range targets {
		valid[t] = true
	}
	groups := make(map[string]*models.ModelOutput)
	group := func(target string) *models.ModelOutput {
		g, ok := groups[target]
		if !ok {
			g = &models.ModelOutput{HasTarget: true, HasLocation: mo.HasLocation}
			groups[target] = g
		}
		return g
	}
	for _, q := range mo.Quantiles {
		if valid[q.Target] {
			g := group(q.Target)
			g.Quantiles = append(g.Quantiles, q)
		}
	}
	for _, r := range mo.Other {
		if valid[r.Target] {
			g := group(r.Target)
			g.Other = append(g.Other, r)
		}
	}
	return groups
}

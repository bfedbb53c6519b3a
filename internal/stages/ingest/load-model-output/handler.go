// internal/stages/ingest/load-model-output/handler.go
package loadmodeloutput

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/metrics"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/tabular"
	"github.com/mobs-lab/hubverse-dashboards/internal/hubconfig"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
)

const (
	TaskType = "load-model-output"
)

type Handler struct {
	config  *Config
	logger  logger.Logger
	metrics *metrics.Metrics
}

func NewHandler(config *Config, log logger.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		config:  config,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
		metrics: m,
	}
}

func (h *Handler) Name() string { return TaskType }

func (h *Handler) Execute(ctx context.Context, st *pipeline.State) error {
	output, err := h.execute(ctx, st)
	if err != nil {
		return err
	}
	h.logger.Info("Model output loaded", map[string]interface{}{
		"models":       output.Models,
		"skipped":      output.SkippedModels,
		"files":        output.Files,
		"quantileRows": output.QuantileRows,
		"otherRows":    output.OtherRows,
	})
	return nil
}

func (h *Handler) execute(ctx context.Context, st *pipeline.State) (*Output, error) {
	cfg := st.Config
	results := make([]*modelResult, len(cfg.Models))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.config.Concurrency)
	for i, m := range cfg.Models {
		i, name := i, m.Name
		g.Go(func() error {
			res, err := h.loadModel(gctx, st, name)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Output{}
	merged := &models.ModelOutput{Files: make(map[string][]string)}
	var rows []models.ModelOutputRow
	for _, res := range results {
		if res.skipReason != "" {
			st.Warn("%s for model '%s', skipping", res.skipReason, res.name)
			out.SkippedModels = append(out.SkippedModels, res.name)
			continue
		}
		out.Models = append(out.Models, res.name)
		out.Files += len(res.files)
		out.DroppedRows += res.dropped
		out.HorizonFromDates = out.HorizonFromDates || res.horizonFromDates
		merged.Files[res.name] = res.files
		merged.HasTarget = merged.HasTarget || res.hasTarget
		merged.HasLocation = merged.HasLocation || res.hasLocation
		rows = append(rows, res.rows...)

		if h.metrics != nil {
			h.metrics.FilesLoaded.WithLabelValues(h.config.Source).Add(float64(len(res.files)))
			h.metrics.RowsLoaded.WithLabelValues(h.config.Source).Add(float64(len(res.rows)))
		}
	}
	if len(out.Models) == 0 {
		return nil, apperrors.NewDataNotFoundError("no model output data could be loaded from " + st.ModelOutputDir)
	}
	if out.DroppedRows > 0 {
		st.Warn("%d model output row(s) have no value and were skipped", out.DroppedRows)
	}

	out.RawRows = len(rows)
	if hasQuantiles(rows) {
		merged.Quantiles, merged.Other = pivotQuantiles(rows, cfg.ModelNames())
	} else {
		st.Warn("No 'quantile' output_type found, skipping quantile pivot")
		merged.Other = rows
	}
	out.QuantileRows = len(merged.Quantiles)
	out.OtherRows = len(merged.Other)
	st.ModelOutput = merged
	return out, nil
}

type columns struct {
	referenceDate, targetEndDate, target, horizon, location, outputType, outputTypeID, value int
}

func resolveColumns(tbl *tabular.Table, m models.ColumnMapping) columns {
	return columns{
		referenceDate: tbl.Lookup(m.ReferenceDateCol, "reference_date"),
		targetEndDate: tbl.Lookup(m.TargetEndDateCol, "target_end_date"),
		target:        tbl.Lookup(m.ModelTargetCol, "target"),
		horizon:       tbl.Lookup(m.HorizonCol, "horizon"),
		location:      tbl.Lookup(m.ModelLocationCol(), "location"),
		outputType:    tbl.Lookup(m.OutputTypeCol, "output_type"),
		outputTypeID:  tbl.Lookup(m.OutputTypeIDCol, "output_type_id"),
		value:         tbl.Lookup(m.ValueCol, "value"),
	}
}

func (h *Handler) loadModel(ctx context.Context, st *pipeline.State, name string) (*modelResult, error) {
	res := &modelResult{name: name}
	files, ok := pipeline.ModelFiles(st.ModelOutputDir, name)
	switch {
	case !ok:
		res.skipReason = "Directory not found"
		return res, nil
	case len(files) == 0:
		res.skipReason = "No CSV files found"
		return res, nil
	}
	res.files = files

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tbl, err := tabular.ReadFile(path)
		if err != nil {
			return nil, apperrors.NewInvalidDataError("failed to read model output", err)
		}
		if err := h.parseFile(tbl, st.Config, res); err != nil {
			return nil, err
		}
	}
	h.logger.Debug("Model loaded", map[string]interface{}{"model": name, "files": len(files), "rows": len(res.rows)})
	return res, nil
}

func (h *Handler) parseFile(tbl *tabular.Table, cfg *models.DashboardConfig, res *modelResult) error {
	cols := resolveColumns(tbl, cfg.Columns)
	if cols.referenceDate < 0 {
		return apperrors.NewColumnMissingError(tbl.Source, "reference_date")
	}
	if cols.targetEndDate < 0 {
		return apperrors.NewColumnMissingError(tbl.Source, "target_end_date")
	}
	if cols.value < 0 {
		return apperrors.NewColumnMissingError(tbl.Source, "value")
	}
	res.hasTarget = res.hasTarget || cols.target >= 0
	res.hasLocation = res.hasLocation || cols.location >= 0 || cfg.IsSingleLocation

	for i, rec := range tbl.Rows {
		line := i + 2
		bad := func(what string, err error) error {
			return apperrors.NewInvalidDataError(fmt.Sprintf("%s line %d: bad %s", tbl.Source, line, what), err)
		}

		ref, err := hubconfig.ParseDate(tabular.Cell(rec, cols.referenceDate))
		if err != nil {
			return bad("reference_date", err)
		}
		ted, err := hubconfig.ParseDate(tabular.Cell(rec, cols.targetEndDate))
		if err != nil {
			return bad("target_end_date", err)
		}

		raw := tabular.Cell(rec, cols.value)
		if tabular.IsMissing(raw) {
			res.dropped++
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return bad("value", err)
		}

		var horizon int
		if hcell := tabular.Cell(rec, cols.horizon); !tabular.IsMissing(hcell) {
			if horizon, err = parseHorizon(hcell); err != nil {
				return bad("horizon", err)
			}
		} else {
			if cfg.TimeUnit <= 0 {
				return apperrors.NewInvalidDataError("time_unit must be greater than 0 to calculate horizon", nil)
			}
			horizon = DeriveHorizon(ref, ted, cfg.TimeUnit)
			res.horizonFromDates = true
		}

		row := models.ModelOutputRow{
			ReferenceDate: ref,
			TargetEndDate: ted,
			Target:        tabular.Cell(rec, cols.target),
			Horizon:       horizon,
			Location:      models.PadLocationCode(tabular.Cell(rec, cols.location)),
			OutputType:    tabular.Cell(rec, cols.outputType),
			OutputTypeID:  tabular.Cell(rec, cols.outputTypeID),
			Value:         value,
			Model:         res.name,
		}
		if row.Location == "" && cfg.IsSingleLocation {
			row.Location = cfg.SingleLocationMapping
		}
		res.rows = append(res.rows, row)
	}
	return nil
}

// parseHorizon accepts integers and whole floats such as "1.0".
func parseHorizon(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("horizon %q is not a whole number", v)
	}
	return int(f), nil
}

// DeriveHorizon is the number of whole time units between the reference
// date and the target end date. Partial days and units round toward
// negative infinity.
func DeriveHorizon(ref, ted time.Time, timeUnit int) int {
	days := int(math.Floor(ted.Sub(ref).Hours() / 24))
	return int(math.Floor(float64(days) / float64(timeUnit)))
}

func hasQuantiles(rows []models.ModelOutputRow) bool {
	for _, r := range rows {
		if r.OutputType == models.OutputTypeQuantile {
			return true
		}
	}
	return false
}

type pivotKey struct {
	ref, ted time.Time
	location string
	target   string
	horizon  int
	model    string
}

type cell struct {
	sum   float64
	count int
}

// pivotQuantiles turns long quantile rows into one wide row per pivotKey.
// Duplicate quantile cells are averaged. Non-quantile rows are returned
// unchanged. Wide rows are ordered by model (config order), then reference
// date, target end date, location, target and horizon.
func pivotQuantiles(rows []models.ModelOutputRow, modelOrder []string) ([]models.QuantileForecast, []models.ModelOutputRow) {
	cells := make(map[pivotKey]map[string]*cell)
	var keys []pivotKey
	var other []models.ModelOutputRow

	for _, r := range rows {
		if r.OutputType != models.OutputTypeQuantile {
			other = append(other, r)
			continue
		}
		k := pivotKey{ref: r.ReferenceDate, ted: r.TargetEndDate, location: r.Location, target: r.Target, horizon: r.Horizon, model: r.Model}
		qs, ok := cells[k]
		if !ok {
			qs = make(map[string]*cell)
			cells[k] = qs
			keys = append(keys, k)
		}
		name := models.QuantileKey(r.OutputTypeID)
		c, ok := qs[name]
		if !ok {
			c = &cell{}
			qs[name] = c
		}
		c.sum += r.Value
		c.count++
	}

	rank := make(map[string]int, len(modelOrder))
	for i, m := range modelOrder {
		rank[m] = i
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		switch {
		case rank[a.model] != rank[b.model]:
			return rank[a.model] < rank[b.model]
		case !a.ref.Equal(b.ref):
			return a.ref.Before(b.ref)
		case !a.ted.Equal(b.ted):
			return a.ted.Before(b.ted)
		case a.location != b.location:
			return a.location < b.location
		case a.target != b.target:
			return a.target < b.target
		}
		return a.horizon < b.horizon
	})

	wide := make([]models.QuantileForecast, 0, len(keys))
	for _, k := range keys {
		q := make(map[string]float64, len(cells[k]))
		for name, c := range cells[k] {
			q[name] = c.sum / float64(c.count)
		}
		wide = append(wide, models.QuantileForecast{
			ReferenceDate: k.ref,
			TargetEndDate: k.ted,
			Location:      k.location,
			Target:        k.target,
			Horizon:       k.horizon,
			Model:         k.model,
			Quantiles:     q,
		})
	}
	return wide, other
}

// internal/stages/ingest/load-target-data/handler.go
package loadtargetdata

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/metrics"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/tabular"
	"github.com/mobs-lab/hubverse-dashboards/internal/hubconfig"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
)

const (
	TaskType = "load-target-data"
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
	h.logger.Info("Target data loaded", map[string]interface{}{
		"file":        output.File,
		"rows":        output.Rows,
		"droppedRows": output.DroppedRows,
		"snapshots":   output.Snapshots,
		"latestAsOf":  output.LatestAsOf,
	})
	return nil
}

func (h *Handler) execute(_ context.Context, st *pipeline.State) (*Output, error) {
	cfg := st.Config
	switch cfg.TargetDataFileFormat {
	case FileFormatCSV, "":
	case FileFormatParquet:
		return nil, apperrors.NewUnsupportedFormatError("parquet target data is not supported yet")
	default:
		return nil, apperrors.NewUnsupportedFormatError(cfg.TargetDataFileFormat)
	}

	path, err := pipeline.TargetDataFile(st.TargetDataDir)
	if err != nil {
		return nil, err
	}
	tbl, err := tabular.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewInvalidDataError("failed to read target data", err)
	}

	data, dropped, err := h.parse(tbl, cfg)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		st.Warn("%d target data row(s) in %s have no observation and were skipped", dropped, path)
	}
	st.TargetData = data

	if h.metrics != nil {
		h.metrics.FilesLoaded.WithLabelValues(h.config.Source).Inc()
		h.metrics.RowsLoaded.WithLabelValues(h.config.Source).Add(float64(len(data.Rows)))
	}

	out := &Output{
		File:           path,
		Rows:           len(data.Rows),
		DroppedRows:    dropped,
		Snapshots:      len(data.History),
		HasLocation:    data.HasLocation,
		HasTarget:      data.HasTarget,
		SingleLocation: cfg.IsSingleLocation,
	}
	if data.LatestAsOf != nil {
		out.Snapshots++
		out.LatestAsOf = models.FormatISO(*data.LatestAsOf)
	}
	return out, nil
}

type columns struct {
	date, observation, location, locationName, target, asOf int
}

func resolveColumns(tbl *tabular.Table, m models.ColumnMapping) columns {
	return columns{
		date:         tbl.Lookup(m.DateCol, "date"),
		observation:  tbl.Lookup(m.ObservationCol, "observation"),
		location:     tbl.Lookup(m.LocationCol, "location"),
		locationName: tbl.Lookup(m.LocationNameCol, "location_name"),
		target:       tbl.Lookup(m.TargetCol, "target"),
		asOf:         tbl.Lookup(m.AsOfCol, "as_of"),
	}
}

func (h *Handler) parse(tbl *tabular.Table, cfg *models.DashboardConfig) (*models.TargetData, int, error) {
	cols := resolveColumns(tbl, cfg.Columns)
	if cols.date < 0 {
		return nil, 0, apperrors.NewColumnMissingError(tbl.Source, cfg.Columns.DateCol)
	}
	if cols.observation < 0 {
		return nil, 0, apperrors.NewColumnMissingError(tbl.Source, cfg.Columns.ObservationCol)
	}

	data := &models.TargetData{
		SourceFile:      tbl.Source,
		HasLocation:     cols.location >= 0,
		HasLocationName: cols.locationName >= 0,
		HasTarget:       cols.target >= 0,
	}

	rows := make([]models.TargetRow, 0, len(tbl.Rows))
	dropped := 0
	for i, rec := range tbl.Rows {
		line := i + 2
		date, err := hubconfig.ParseDate(tabular.Cell(rec, cols.date))
		if err != nil {
			return nil, 0, apperrors.NewInvalidDataError(fmt.Sprintf("%s line %d: bad date", tbl.Source, line), err)
		}
		obs, ok, err := parseObservation(tabular.Cell(rec, cols.observation), cfg.ObservationFormat)
		if err != nil {
			return nil, 0, apperrors.NewInvalidDataError(fmt.Sprintf("%s line %d: bad observation", tbl.Source, line), err)
		}
		if !ok {
			dropped++
			continue
		}

		row := models.TargetRow{
			Date:         date,
			Observation:  obs,
			Location:     models.PadLocationCode(tabular.Cell(rec, cols.location)),
			LocationName: tabular.Cell(rec, cols.locationName),
			Target:       tabular.Cell(rec, cols.target),
		}
		if cols.asOf >= 0 {
			asOf, err := hubconfig.ParseDate(tabular.Cell(rec, cols.asOf))
			if err != nil {
				return nil, 0, apperrors.NewInvalidDataError(fmt.Sprintf("%s line %d: bad as_of", tbl.Source, line), err)
			}
			row.AsOf = &asOf
		}
		rows = append(rows, row)
	}

	if cfg.IsSingleLocation {
		fillSingleLocation(data, rows, cfg)
	}
	if cols.asOf >= 0 {
		splitSnapshots(data, rows)
	} else {
		data.Rows = rows
	}
	return data, dropped, nil
}

func parseObservation(v, format string) (float64, bool, error) {
	if tabular.IsMissing(v) {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, err
	}
	if format == FormatInt {
		f = math.Round(f)
	}
	return f, true, nil
}

// fillSingleLocation stamps every row with the configured location when the
// file has no location column of its own.
func fillSingleLocation(data *models.TargetData, rows []models.TargetRow, cfg *models.DashboardConfig) {
	code := cfg.SingleLocationMapping
	name := cfg.LocationName(code)
	for i := range rows {
		if rows[i].Location == "" {
			rows[i].Location = code
		}
		if rows[i].LocationName == "" {
			rows[i].LocationName = name
		}
	}
	data.HasLocation = true
	data.HasLocationName = true
}

// splitSnapshots keeps the latest as_of snapshot as ground truth and files
// older snapshots under History.
func splitSnapshots(data *models.TargetData, rows []models.TargetRow) {
	var latest time.Time
	for _, r := range rows {
		if r.AsOf != nil && r.AsOf.After(latest) {
			latest = *r.AsOf
		}
	}
	if latest.IsZero() {
		data.Rows = rows
		return
	}
	data.LatestAsOf = &latest
	for _, r := range rows {
		if r.AsOf.Equal(latest) {
			data.Rows = append(data.Rows, r)
			continue
		}
		if data.History == nil {
			data.History = make(map[string][]models.TargetRow)
		}
		key := models.FormatISO(*r.AsOf)
		data.History[key] = append(data.History[key], r)
	}
	for _, snap := range data.History {
		sort.SliceStable(snap, func(i, j int) bool { return snap[i].Date.Before(snap[j].Date) })
	}
}

// internal/shapes/samples.go
package shapes

import (
	"strconv"
	"time"

	"github.com/mobs-lab/hubverse-dashboards/internal/models"
)

// Column describes one expected CSV header.
type Column struct {
	Name        string
	Description string
	Example     string
}

// Sample is the expected shape of one CSV: its columns and a few example
// rows. Rows are aligned with Headers.
type Sample struct {
	Required []Column
	Optional []Column
	Headers  []string
	Rows     [][]string
}

// ExpectedValues lists the values a model-output file may contain.
type ExpectedValues struct {
	Targets       []string
	Horizons      []int
	OutputType    string
	OutputTypeIDs []string
}

// ModelOutputSample is a Sample plus the values the loader will accept.
type ModelOutputSample struct {
	Sample
	Expected ExpectedValues
}

var fallbackReferenceDate = time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC)

// Generator builds sample shapes from a validated config.
type Generator struct {
	cfg *models.DashboardConfig
}

func NewGenerator(cfg *models.DashboardConfig) *Generator {
	return &Generator{cfg: cfg}
}

func (g *Generator) firstTargetKey() string {
	if len(g.cfg.Targets) > 0 {
		return g.cfg.Targets[0].ModelOutputKey
	}
	return "target_value"
}

func (g *Generator) referenceDate() time.Time {
	if len(g.cfg.ForecastPeriods) > 0 {
		return g.cfg.ForecastPeriods[0].Start
	}
	return fallbackReferenceDate
}

func (g *Generator) days(n int) time.Duration {
	return time.Duration(n*g.cfg.TimeUnit) * 24 * time.Hour
}

// TargetData returns the expected target-data shape with three sample rows
// spaced by time_unit from the first forecast period start.
func (g *Generator) TargetData() Sample {
	cols := g.cfg.Columns
	withLocation := !g.cfg.IsSingleLocation && cols.LocationCol != ""
	withTarget := !g.cfg.IsSingleTarget && cols.TargetCol != ""

	s := Sample{
		Required: []Column{
			{Name: cols.DateCol, Description: "Date of observation", Example: "2024-08-03"},
			{Name: cols.ObservationCol, Description: "Observation value", Example: "125.5"},
		},
		Headers: []string{cols.DateCol, cols.ObservationCol},
	}
	if withLocation {
		s.Required = append(s.Required, Column{Name: cols.LocationCol, Description: "Location code", Example: "01"})
	}
	if withTarget {
		s.Required = append(s.Required, Column{Name: cols.TargetCol, Description: "Target identifier", Example: g.firstTargetKey()})
	}
	if cols.LocationNameCol != "" {
		s.Optional = append(s.Optional, Column{Name: cols.LocationNameCol, Description: "Location name (optional)", Example: "Alabama"})
	}
	if cols.AsOfCol != "" {
		s.Optional = append(s.Optional, Column{Name: cols.AsOfCol, Description: "As-of date for historical data (optional)", Example: "2024-08-05"})
	}

	start := g.referenceDate()
	d1 := models.FormatDate(start)
	d2 := models.FormatDate(start.Add(g.days(1)))
	s.Rows = [][]string{{d1, "125.5"}, {d1, "43.2"}, {d2, "132.1"}}

	if withLocation {
		s.Headers = append(s.Headers, cols.LocationCol)
		codes := []string{"01", "02", "01"}
		for i := range s.Rows {
			s.Rows[i] = append(s.Rows[i], codes[i])
		}
		if cols.LocationNameCol != "" {
			s.Headers = append(s.Headers, cols.LocationNameCol)
			names := []string{"Alabama", "Alaska", "Alabama"}
			for i := range s.Rows {
				s.Rows[i] = append(s.Rows[i], names[i])
			}
		}
	}
	if withTarget {
		s.Headers = append(s.Headers, cols.TargetCol)
		for i := range s.Rows {
			s.Rows[i] = append(s.Rows[i], g.firstTargetKey())
		}
	}
	return s
}

// DemoHorizons picks up to four horizons: 0 when configured, then up to
// three of the others taken at an even stride.
func DemoHorizons(horizons []int) []int {
	var demo []int
	var others []int
	for _, h := range horizons {
		if h == 0 {
			if len(demo) == 0 {
				demo = append(demo, 0)
			}
			continue
		}
		others = append(others, h)
	}
	if len(others) > 0 {
		step := len(others) / 3
		if step < 1 {
			step = 1
		}
		picked := 0
		for i := 0; i < len(others) && picked < 3; i += step {
			demo = append(demo, others[i])
			picked++
		}
	}
	if len(demo) == 0 {
		if len(horizons) > 0 {
			demo = []int{horizons[0]}
		} else {
			demo = []int{0}
		}
	}
	if len(demo) > 4 {
		demo = demo[:4]
	}
	return demo
}

// DemoQuantiles picks at most two quantiles: the lowest and the median when
// at least three are configured, otherwise the median.
func DemoQuantiles(quantiles []string) []string {
	if len(quantiles) == 0 {
		return []string{"0.25", "0.5"}
	}
	var demo []string
	hasMedian := false
	for _, q := range quantiles {
		if q == "0.5" {
			hasMedian = true
			demo = append(demo, "0.5")
			break
		}
	}
	sorted := append([]string(nil), quantiles...)
	models.SortNumeric(sorted)
	switch {
	case len(sorted) >= 3:
		demo = append([]string{normaliseQuantile(sorted[0])}, demo...)
		demo = append(demo, normaliseQuantile(sorted[len(sorted)-1]))
	case !hasMedian:
		demo = append(demo, normaliseQuantile(sorted[0]))
	}
	if len(demo) > 2 {
		demo = demo[:2]
	}
	return demo
}

func normaliseQuantile(q string) string {
	f, err := strconv.ParseFloat(q, 64)
	if err != nil {
		return q
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ModelOutput returns the expected model-output shape with four sample rows
// per configured target.
func (g *Generator) ModelOutput() ModelOutputSample {
	cols := g.cfg.Columns
	quantiles := g.cfg.AllQuantiles()

	horizonExample := "0"
	if len(g.cfg.Horizons) > 0 && !containsInt(g.cfg.Horizons, 0) {
		horizonExample = strconv.Itoa(g.cfg.Horizons[0])
	}

	s := ModelOutputSample{
		Sample: Sample{
			Required: []Column{
				{Name: cols.ReferenceDateCol, Description: "Reference date (forecast made on)", Example: "2024-08-03"},
				{Name: cols.TargetEndDateCol, Description: "Target end date (forecast for)", Example: "2024-08-10"},
				{Name: cols.ModelTargetCol, Description: "Target identifier", Example: g.firstTargetKey()},
				{Name: cols.HorizonCol, Description: "Forecast horizon", Example: horizonExample},
			},
			Headers: []string{
				cols.ReferenceDateCol, cols.TargetEndDateCol, cols.ModelTargetCol, cols.HorizonCol,
				cols.OutputTypeCol, cols.OutputTypeIDCol, cols.ValueCol,
			},
		},
		Expected: ExpectedValues{
			Horizons:      g.cfg.Horizons,
			OutputType:    models.OutputTypeQuantile,
			OutputTypeIDs: quantiles,
		},
	}
	if !g.cfg.IsSingleLocation {
		s.Required = append(s.Required, Column{Name: cols.ModelLocationCol(), Description: "Location code", Example: "01"})
		s.Headers = append(s.Headers, cols.ModelLocationCol())
	}
	s.Required = append(s.Required,
		Column{Name: cols.OutputTypeCol, Description: `Output type (should be "quantile")`, Example: "quantile"},
		Column{Name: cols.OutputTypeIDCol, Description: "Quantile level", Example: "0.5"},
		Column{Name: cols.ValueCol, Description: "Predicted value", Example: "125.0"},
	)

	horizons := DemoHorizons(g.cfg.Horizons)
	demoQ := DemoQuantiles(quantiles)
	first, last := demoQ[0], demoQ[len(demoQ)-1]
	ref := g.referenceDate()

	row := func(target string, horizon int, quantile string, value float64) []string {
		r := []string{
			models.FormatDate(ref),
			models.FormatDate(ref.Add(g.days(horizon))),
			target,
			strconv.Itoa(horizon),
			models.OutputTypeQuantile,
			quantile,
			formatValue(value),
		}
		if !g.cfg.IsSingleLocation {
			r = append(r, "01")
		}
		return r
	}

	for _, t := range g.cfg.Targets {
		s.Expected.Targets = append(s.Expected.Targets, t.ModelOutputKey)

		rows := [][]string{
			row(t.ModelOutputKey, horizons[0], first, 120.5),
			row(t.ModelOutputKey, horizons[0], last, 125.0),
		}
		if len(horizons) >= 2 {
			rows = append(rows, row(t.ModelOutputKey, horizons[1], first, 130.2))
		}
		switch {
		case len(horizons) >= 3:
			rows = append(rows, row(t.ModelOutputKey, horizons[2], last, 132.0))
		case len(horizons) == 2:
			rows = append(rows, row(t.ModelOutputKey, horizons[1], last, 128.5))
		}
		for len(rows) < 4 {
			prev := rows[len(rows)-1]
			next := append([]string(nil), prev...)
			v, _ := strconv.ParseFloat(prev[6], 64)
			next[6] = formatValue(v + 5)
			rows = append(rows, next)
		}
		s.Rows = append(s.Rows, rows[:4]...)
	}
	return s
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

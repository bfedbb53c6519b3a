// internal/models/data.go
package models

import (
	"strconv"
	"strings"
	"time"
)

// Output types with special handling in model output.
const (
	OutputTypeQuantile = "quantile"
)

// ISOLayout is the timestamp layout used throughout the exported JSON.
const ISOLayout = "2006-01-02T15:04:05"

// FormatISO formats t with ISOLayout.
func FormatISO(t time.Time) string {
	return t.Format(ISOLayout)
}

// DateLayout is the plain calendar date used in CSV files.
const DateLayout = "2006-01-02"

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// TargetRow is one observation from target data, with canonical columns.
type TargetRow struct {
	Date         time.Time
	Observation  float64
	Location     string
	LocationName string
	Target       string
	AsOf         *time.Time
}

// TargetData is the loaded target dataset. Rows holds the latest as_of
// snapshot (or every row when there is no as_of column); History holds the
// older snapshots keyed by their as_of timestamp.
type TargetData struct {
	SourceFile      string
	HasLocation     bool
	HasLocationName bool
	HasTarget       bool
	LatestAsOf      *time.Time
	Rows            []TargetRow
	History         map[string][]TargetRow
}

// LatestDate returns the maximum Date in Rows.
func (d *TargetData) LatestDate() (time.Time, bool) {
	var latest time.Time
	found := false
	for _, r := range d.Rows {
		if !found || r.Date.After(latest) {
			latest, found = r.Date, true
		}
	}
	return latest, found
}

// ModelOutputRow is one long-format model-output row.
type ModelOutputRow struct {
	ReferenceDate time.Time
	TargetEndDate time.Time
	Target        string
	Horizon       int
	Location      string
	OutputType    string
	OutputTypeID  string
	Value         float64
	Model         string
}

// QuantileForecast is a wide row: all quantile values sharing reference
// date, target end date, location, target, horizon and model. Keys are
// QuantileKey names such as "q0_5".
type QuantileForecast struct {
	ReferenceDate time.Time
	TargetEndDate time.Time
	Location      string
	Target        string
	Horizon       int
	Model         string
	Quantiles     map[string]float64
}

// ModelOutput holds pivoted quantile rows and the remaining long rows.
type ModelOutput struct {
	HasTarget   bool
	HasLocation bool
	Quantiles   []QuantileForecast
	Other       []ModelOutputRow
	Files       map[string][]string
}

// Len returns the number of wide plus long rows.
func (m *ModelOutput) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Quantiles) + len(m.Other)
}

// LatestReferenceDate returns the maximum reference date over all rows.
func (m *ModelOutput) LatestReferenceDate() (time.Time, bool) {
	var latest time.Time
	found := false
	if m == nil {
		return latest, false
	}
	for _, q := range m.Quantiles {
		if !found || q.ReferenceDate.After(latest) {
			latest, found = q.ReferenceDate, true
		}
	}
	for _, r := range m.Other {
		if !found || r.ReferenceDate.After(latest) {
			latest, found = r.ReferenceDate, true
		}
	}
	return latest, found
}

// QuantileKey turns an output_type_id such as "0.5" or "0.50" into the wide
// column name "q0_5".
func QuantileKey(outputTypeID string) string {
	id := strings.TrimSpace(outputTypeID)
	if f, err := strconv.ParseFloat(id, 64); err == nil {
		id = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return "q" + strings.ReplaceAll(id, ".", "_")
}

// Partition is the slice of data belonging to one forecast period.
type Partition struct {
	Period        ForecastPeriod
	TargetData    []TargetRow
	TargetHistory map[string][]TargetRow

	// ByTarget is set in multi-target mode when model output has a target
	// column; otherwise ModelOutput holds every row in range.
	ByTarget    map[string]*ModelOutput
	ModelOutput *ModelOutput
}

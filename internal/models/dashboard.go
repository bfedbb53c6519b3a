// internal/models/dashboard.go
package models

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Anchor modes for special forecast periods.
const (
	AnchorModeTargetData  = "target-data"
	AnchorModeModelOutput = "model-output"
)

// DefaultColorPalette is assigned in order to models without color_hex.
var DefaultColorPalette = []string{
	"#4CAF50",
	"#2196F3",
	"#FF9800",
	"#9C27B0",
	"#F44336",
	"#00BCD4",
	"#FFEB3B",
	"#795548",
	"#607D8B",
	"#E91E63",
}

// DashboardConfig is the validated content of a hub's config.yaml.
type DashboardConfig struct {
	ConfigPath string `json:"configPath"`

	TargetDataLink  string `json:"targetDataLink,omitempty"`
	ModelOutputLink string `json:"modelOutputLink,omitempty"`

	ForecastPeriods []ForecastPeriod `json:"forecastPeriods"`
	SpecialPeriods  []ForecastPeriod `json:"specialPeriods"`

	IsSingleLocation      bool              `json:"isSingleLocation"`
	SingleLocationMapping string            `json:"singleLocationMapping,omitempty"`
	LocationNames         map[string]string `json:"-"`

	IsSingleTarget bool           `json:"isSingleTarget"`
	Targets        []TargetConfig `json:"targets"`

	TimeUnit int   `json:"timeUnit"`
	Horizons []int `json:"horizons"`

	Columns                   ColumnMapping `json:"columns"`
	ObservationFormat         string        `json:"observationFormat"`
	TargetDataFileFormat      string        `json:"targetDataFileFormat"`
	ModelOutputNamingStandard string        `json:"modelOutputNamingStandard"`

	Models              []ModelConfig        `json:"models"`
	PredictionIntervals []PredictionInterval `json:"predictionIntervals"`
	EvaluationIntervals []PredictionInterval `json:"evaluationIntervals"`
	BaselineModel       string               `json:"baselineModel"`
}

// ForecastPeriod is a named date range. Special periods carry a TimeAnchor
// and get their dates at build time.
type ForecastPeriod struct {
	ID                string      `json:"id"`
	DisplayString     string      `json:"displayString"`
	Start             time.Time   `json:"start"`
	End               time.Time   `json:"end"`
	IsSpecial         bool        `json:"isSpecial"`
	IsDefaultSelected bool        `json:"isDefaultSelected"`
	Anchor            *TimeAnchor `json:"anchor,omitempty"`
}

type TimeAnchor struct {
	AnchorOn         string `json:"anchorOn"`
	AnchorMode       string `json:"anchorMode"`
	RangeCalculation int    `json:"rangeCalculation"`
}

// TargetConfig maps a target-data target value to its model-output key.
type TargetConfig struct {
	TargetDataKey   string   `json:"targetDataKey"`
	ModelOutputKey  string   `json:"modelOutputKey"`
	ForecastPeriods []string `json:"forecastPeriods"`
	DisplayName     string   `json:"displayName"`
}

// ValidFor reports whether the target is shown in the given period.
func (t TargetConfig) ValidFor(periodID string) bool {
	for _, id := range t.ForecastPeriods {
		if id == periodID {
			return true
		}
	}
	return false
}

type ModelConfig struct {
	Name        string `json:"name"`
	ColorHex    string `json:"colorHex"`
	DisplayName string `json:"displayName"`
}

// PredictionInterval is a level with its quantile IDs sorted numerically.
type PredictionInterval struct {
	Level         int      `json:"level"`
	OutputTypeIDs []string `json:"outputTypeIds"`
}

// ColumnMapping maps user CSV headers to canonical column names. Empty
// optional fields mean the column is absent.
type ColumnMapping struct {
	DateCol         string `json:"dateCol"`
	ObservationCol  string `json:"observationCol"`
	LocationCol     string `json:"locationCol,omitempty"`
	LocationNameCol string `json:"locationNameCol,omitempty"`
	TargetCol       string `json:"targetCol,omitempty"`
	AsOfCol         string `json:"asOfCol,omitempty"`

	ReferenceDateCol string `json:"referenceDateCol"`
	TargetEndDateCol string `json:"targetEndDateCol"`
	ModelTargetCol   string `json:"modelTargetCol"`
	HorizonCol       string `json:"horizonCol"`
	OutputTypeCol    string `json:"outputTypeCol"`
	OutputTypeIDCol  string `json:"outputTypeIdCol"`
	ValueCol         string `json:"valueCol"`
}

// DefaultColumnMapping returns the Hubverse default header names.
func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{
		DateCol:          "date",
		ObservationCol:   "value",
		ReferenceDateCol: "reference_date",
		TargetEndDateCol: "target_end_date",
		ModelTargetCol:   "target",
		HorizonCol:       "horizon",
		OutputTypeCol:    "output_type",
		OutputTypeIDCol:  "output_type_id",
		ValueCol:         "value",
	}
}

// ModelLocationCol is the model-output location header: the target-data
// location header when mapped, otherwise "location".
func (c ColumnMapping) ModelLocationCol() string {
	if c.LocationCol != "" {
		return c.LocationCol
	}
	return "location"
}

// AllPeriods returns static periods followed by special periods.
func (c *DashboardConfig) AllPeriods() []ForecastPeriod {
	out := make([]ForecastPeriod, 0, len(c.ForecastPeriods)+len(c.SpecialPeriods))
	out = append(out, c.ForecastPeriods...)
	return append(out, c.SpecialPeriods...)
}

// AllPeriodIDs returns static period IDs followed by special period IDs.
func (c *DashboardConfig) AllPeriodIDs() []string {
	periods := c.AllPeriods()
	ids := make([]string, len(periods))
	for i, p := range periods {
		ids[i] = p.ID
	}
	return ids
}

// AllQuantiles returns every quantile ID used by any interval, plus the
// median, sorted numerically.
func (c *DashboardConfig) AllQuantiles() []string {
	seen := map[string]bool{"0.5": true}
	for _, set := range [][]PredictionInterval{c.PredictionIntervals, c.EvaluationIntervals} {
		for _, pi := range set {
			for _, id := range pi.OutputTypeIDs {
				seen[id] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	SortNumeric(out)
	return out
}

// ModelNames returns configured model names in config order.
func (c *DashboardConfig) ModelNames() []string {
	names := make([]string, len(c.Models))
	for i, m := range c.Models {
		names[i] = m.Name
	}
	return names
}

// TargetsFor returns the model-output keys of targets valid in periodID.
func (c *DashboardConfig) TargetsFor(periodID string) []string {
	var keys []string
	for _, t := range c.Targets {
		if t.ValidFor(periodID) {
			keys = append(keys, t.ModelOutputKey)
		}
	}
	return keys
}

// DefaultPeriod returns the period marked is_default_selected, if any.
func (c *DashboardConfig) DefaultPeriod() (ForecastPeriod, bool) {
	for _, p := range c.ForecastPeriods {
		if p.IsDefaultSelected {
			return p, true
		}
	}
	return ForecastPeriod{}, false
}

// LocationName resolves a location code through the state mapping,
// zero-padding numeric codes to two digits. Unknown codes map to "Unknown".
func (c *DashboardConfig) LocationName(code string) string {
	if name, ok := c.LocationNames[PadLocationCode(code)]; ok {
		return name
	}
	return "Unknown"
}

// PadLocationCode left-pads numeric codes shorter than two digits with zeros.
func PadLocationCode(code string) string {
	if code == "" || len(code) >= 2 {
		return code
	}
	if _, err := strconv.Atoi(code); err != nil {
		return code
	}
	return strings.Repeat("0", 2-len(code)) + code
}

// SortNumeric sorts quantile IDs by numeric value. Non-numeric IDs sort last.
func SortNumeric(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, errA := strconv.ParseFloat(ids[i], 64)
		b, errB := strconv.ParseFloat(ids[j], 64)
		switch {
		case errA != nil && errB != nil:
			return ids[i] < ids[j]
		case errA != nil:
			return false
		case errB != nil:
			return true
		}
		return a < b
	})
}

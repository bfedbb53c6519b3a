// internal/models/metadata.go
package models

// Location is a location code and display name as exported to the dashboard.
type Location struct {
	Location     string `json:"location"`
	LocationName string `json:"location_name"`
}

// Season describes a static forecast period.
type Season struct {
	SeasonID      string `json:"seasonId"`
	DisplayString string `json:"displayString"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
}

// DynamicPeriod describes a special period resolved at build time.
type DynamicPeriod struct {
	Label         string `json:"label"`
	DisplayString string `json:"displayString"`
	IsDynamic     bool   `json:"isDynamic"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
}

type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Color       string `json:"color"`
}

type TargetInfo struct {
	TargetDataKey   string   `json:"targetDataKey"`
	ModelOutputKey  string   `json:"modelOutputKey"`
	DisplayName     string   `json:"displayName"`
	ForecastPeriods []string `json:"forecastPeriods"`
}

type IntervalInfo struct {
	Level     int      `json:"level"`
	Quantiles []string `json:"quantiles"`
}

// Metadata is written to metadata.json for the front end.
type Metadata struct {
	Locations           []Location      `json:"locations"`
	FullRangeSeasons    []Season        `json:"fullRangeSeasons"`
	DynamicTimePeriod   []DynamicPeriod `json:"dynamicTimePeriod"`
	ModelNames          []string        `json:"modelNames"`
	DefaultSelectedDate *string         `json:"defaultSelectedDate"`

	DefaultSeasonID     string         `json:"defaultSeasonId,omitempty"`
	Models              []ModelInfo    `json:"models"`
	Targets             []TargetInfo   `json:"targets"`
	PredictionIntervals []IntervalInfo `json:"predictionIntervals"`
	TimeUnit            int            `json:"timeUnit"`
	Horizons            []int          `json:"horizons"`
	IsSingleLocation    bool           `json:"isSingleLocation"`
	IsSingleTarget      bool           `json:"isSingleTarget"`
}

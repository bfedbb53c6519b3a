// internal/stages/processing/build-metadata/models.go
package buildmetadata

type Output struct {
	Locations           int     `json:"locations"`
	Seasons             int     `json:"seasons"`
	DynamicPeriods      int     `json:"dynamicPeriods"`
	DefaultSeasonID     string  `json:"defaultSeasonId,omitempty"`
	DefaultSelectedDate *string `json:"defaultSelectedDate"`
}

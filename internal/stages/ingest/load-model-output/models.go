// internal/stages/ingest/load-model-output/models.go
package loadmodeloutput

import "github.com/mobs-lab/hubverse-dashboards/internal/models"

type Output struct {
	Models           []string `json:"models"`
	SkippedModels    []string `json:"skippedModels,omitempty"`
	Files            int      `json:"files"`
	RawRows          int      `json:"rawRows"`
	DroppedRows      int      `json:"droppedRows"`
	QuantileRows     int      `json:"quantileRows"`
	OtherRows        int      `json:"otherRows"`
	HorizonFromDates bool     `json:"horizonFromDates"`
}

// modelResult is what one model directory contributes.
type modelResult struct {
	name       string
	skipReason string
	files      []string
	rows       []models.ModelOutputRow
	dropped    int

	hasTarget        bool
	hasLocation      bool
	horizonFromDates bool
}

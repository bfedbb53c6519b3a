// internal/stages/ingest/load-target-data/models.go
package loadtargetdata

type Output struct {
	File           string `json:"file"`
	Rows           int    `json:"rows"`
	DroppedRows    int    `json:"droppedRows"`
	Snapshots      int    `json:"snapshots"`
	LatestAsOf     string `json:"latestAsOf,omitempty"`
	HasLocation    bool   `json:"hasLocation"`
	HasTarget      bool   `json:"hasTarget"`
	SingleLocation bool   `json:"singleLocation"`
}

// Observation formats accepted in config.yaml.
const (
	FormatFloat = "float"
	FormatInt   = "int"
)

// File formats accepted in config.yaml.
const (
	FileFormatCSV     = "csv"
	FileFormatParquet = "parquet"
)

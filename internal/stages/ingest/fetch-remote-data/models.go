// internal/stages/ingest/fetch-remote-data/models.go
package fetchremotedata

type Output struct {
	Skipped        bool     `json:"skipped"`
	TargetDataFile string   `json:"targetDataFile,omitempty"`
	ModelFiles     int      `json:"modelFiles"`
	FailedModels   []string `json:"failedModels,omitempty"`
	Bytes          int64    `json:"bytes"`
}

// ModelPlaceholder is replaced by each model name in model_output_link.
const ModelPlaceholder = "{model}"

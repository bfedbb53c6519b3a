// internal/stages/ingest/detect-changes/models.go
package detectchanges

type Output struct {
	ProjectKey          string `json:"projectKey"`
	Mode                string `json:"mode"`
	Fingerprint         string `json:"fingerprint"`
	PreviousFingerprint string `json:"previousFingerprint,omitempty"`
	PreviousRunID       string `json:"previousRunId,omitempty"`
	Files               int    `json:"files"`
	Halted              bool   `json:"halted"`
	// OutputStale is set when the inputs match the last build but the
	// exported files are missing or belong to another build.
	OutputStale         bool   `json:"outputStale,omitempty"`
}

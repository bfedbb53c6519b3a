// internal/stages/export/record-state/models.go
package recordstate

type Output struct {
	ProjectKey  string `json:"projectKey"`
	Fingerprint string `json:"fingerprint"`
	Recorded    bool   `json:"recorded"`
}

// internal/stages/processing/partition-periods/models.go
package partitionperiods

type Output struct {
	Periods []PeriodSummary `json:"periods"`
	Skipped []string        `json:"skipped,omitempty"`
}

type PeriodSummary struct {
	ID          string `json:"id"`
	Start       string `json:"start"`
	End         string `json:"end"`
	TargetRows  int    `json:"targetRows"`
	ModelRows   int    `json:"modelRows"`
	ByTarget    bool   `json:"byTarget"`
	SpecialFrom string `json:"specialFrom,omitempty"`
}

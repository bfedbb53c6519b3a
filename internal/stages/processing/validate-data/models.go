// internal/stages/processing/validate-data/models.go
package validatedata

type Output struct {
	TargetRows            int      `json:"targetRows"`
	ModelRows             int      `json:"modelRows"`
	UnknownHorizons       []int    `json:"unknownHorizons,omitempty"`
	UnknownModelTargets   []string `json:"unknownModelTargets,omitempty"`
	UnknownTargetDataKeys []string `json:"unknownTargetDataKeys,omitempty"`
	UnknownQuantiles      []string `json:"unknownQuantiles,omitempty"`
	MissingQuantiles      []string `json:"missingQuantiles,omitempty"`
}

// Valid reports whether no unconfigured values were found.
func (o *Output) Valid() bool {
	return len(o.UnknownHorizons) == 0 &&
		len(o.UnknownModelTargets) == 0 &&
		len(o.UnknownTargetDataKeys) == 0 &&
		len(o.UnknownQuantiles) == 0 &&
		len(o.MissingQuantiles) == 0
}

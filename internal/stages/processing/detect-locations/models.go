// internal/stages/processing/detect-locations/models.go
package detectlocations

type Output struct {
	Locations       int      `json:"locations"`
	FromTargetData  int      `json:"fromTargetData"`
	FromModelOutput int      `json:"fromModelOutput"`
	Unknown         []string `json:"unknown,omitempty"`
}

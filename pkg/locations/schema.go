// pkg/locations/schema.go
package locations

// Registry is a custom location mapping file. It extends or replaces the
// embedded US state FIPS table.
type Registry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Replace     bool    `json:"replace,omitempty"`
	Locations   []Entry `json:"locations"`
}

type Entry struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
}

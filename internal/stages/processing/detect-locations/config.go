// internal/stages/processing/detect-locations/config.go
package detectlocations

type Config struct {
	// UnknownName labels model-output codes missing from the location mapping.
	UnknownName string
}

func LoadConfig() *Config {
	return &Config{
		UnknownName: "Unknown",
	}
}

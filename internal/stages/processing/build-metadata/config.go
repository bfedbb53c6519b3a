// internal/stages/processing/build-metadata/config.go
package buildmetadata

type Config struct {
	// FallbackToLastSeason selects the last static period as the default
	// season when none is marked is_default_selected.
	FallbackToLastSeason bool
}

func LoadConfig() *Config {
	return &Config{
		FallbackToLastSeason: true,
	}
}

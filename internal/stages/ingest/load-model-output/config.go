// internal/stages/ingest/load-model-output/config.go
package loadmodeloutput

import "github.com/mobs-lab/hubverse-dashboards/internal/common/config"

type Config struct {
	// Concurrency bounds how many model directories are read at once.
	Concurrency int
	Source      string
}

func LoadConfig(settings *config.Config) *Config {
	c := &Config{
		Concurrency: 4,
		Source:      "model-output",
	}
	if settings != nil && settings.Loader.Concurrency > 0 {
		c.Concurrency = settings.Loader.Concurrency
	}
	return c
}

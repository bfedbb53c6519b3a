// internal/stages/ingest/fetch-remote-data/config.go
package fetchremotedata

import (
	"time"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/config"
)

type Config struct {
	CacheDir    string
	Timeout     time.Duration
	Concurrency int
}

func LoadConfig(settings *config.Config) *Config {
	c := &Config{
		CacheDir:    ".dashboard-builder/cache",
		Timeout:     30 * time.Second,
		Concurrency: 4,
	}
	if settings == nil {
		return c
	}
	if p := settings.Project.CachePath(); p != "" {
		c.CacheDir = p
	}
	if settings.HTTP.Timeout > 0 {
		c.Timeout = config.GetDuration(settings.HTTP.Timeout)
	}
	if settings.Loader.Concurrency > 0 {
		c.Concurrency = settings.Loader.Concurrency
	}
	return c
}

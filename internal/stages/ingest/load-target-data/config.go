// internal/stages/ingest/load-target-data/config.go
package loadtargetdata

type Config struct {
	// Source labels the rows-loaded metric.
	Source string
}

func LoadConfig() *Config {
	return &Config{
		Source: "target-data",
	}
}

// internal/stages/ingest/detect-changes/config.go
package detectchanges

type Config struct {
	// HaltOnUnchanged stops the build when the inputs match the last
	// recorded build and the run is not forced.
	HaltOnUnchanged bool
}

func LoadConfig() *Config {
	return &Config{
		HaltOnUnchanged: true,
	}
}

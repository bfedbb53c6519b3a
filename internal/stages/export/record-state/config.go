// internal/stages/export/record-state/config.go
package recordstate

type Config struct {
	// RecordFiles stores the exported file list alongside the fingerprint.
	RecordFiles bool
}

func LoadConfig() *Config {
	return &Config{
		RecordFiles: true,
	}
}

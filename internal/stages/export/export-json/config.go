// internal/stages/export/export-json/config.go
package exportjson

type Config struct {
	Indent         bool
	ValidateSchema bool
	// PeriodsDir is the subdirectory of the output directory that holds one
	// file per forecast period. It is cleared before every export.
	PeriodsDir string
}

func LoadConfig() *Config {
	return &Config{
		Indent:         true,
		ValidateSchema: true,
		PeriodsDir:     "periods",
	}
}

// internal/stages/processing/validate-data/config.go
package validatedata

type Config struct {
	// MaxListed caps how many offending values a single warning names.
	MaxListed int
}

func LoadConfig() *Config {
	return &Config{
		MaxListed: 10,
	}
}

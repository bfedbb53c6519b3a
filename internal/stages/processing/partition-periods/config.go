// internal/stages/processing/partition-periods/config.go
package partitionperiods

type Config struct {
	// IncludeHistory copies older as_of snapshots into each partition.
	IncludeHistory bool
}

func LoadConfig() *Config {
	return &Config{
		IncludeHistory: true,
	}
}

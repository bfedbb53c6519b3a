// internal/common/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Config holds the builder's own settings. The hub's config.yaml is parsed
// separately by internal/hubconfig.
type Config struct {
	App           AppConfig              `mapstructure:"app"`
	Project       ProjectConfig          `mapstructure:"project"`
	Workflow      WorkflowConfig         `mapstructure:"workflow"`
	State         StateConfig            `mapstructure:"state"`
	Database      DatabaseConfig         `mapstructure:"database"`
	Stages        map[string]StageConfig `mapstructure:"stages"`
	Loader        LoaderConfig           `mapstructure:"loader"`
	HTTP          HTTPConfig             `mapstructure:"http"`
	Locations     LocationsConfig        `mapstructure:"locations"`
	Metrics       MetricsConfig          `mapstructure:"metrics"`
	Notifications NotificationConfig     `mapstructure:"notifications"`
	Logging       LoggingConfig          `mapstructure:"logging"`
}

// --- Core App/Project Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type ProjectConfig struct {
	Root       string `mapstructure:"root"`
	ConfigFile string `mapstructure:"config_file"`
	DevMode    bool   `mapstructure:"dev_mode"`
	OutputDir  string `mapstructure:"output_dir"`
	CacheDir   string `mapstructure:"cache_dir"`
}

// ConfigPath returns the hub config path resolved against the project root.
func (p ProjectConfig) ConfigPath() string {
	return p.resolve(p.ConfigFile)
}

// OutputPath returns the export directory resolved against the project root.
func (p ProjectConfig) OutputPath() string {
	return p.resolve(p.OutputDir)
}

// CachePath returns the download cache directory resolved against the project root.
func (p ProjectConfig) CachePath() string {
	return p.resolve(p.CacheDir)
}

// DataRoot is the directory holding target-data/ and model-output/. Dev mode
// reads from test-data-input/ instead of the project root.
func (p ProjectConfig) DataRoot() string {
	if p.DevMode {
		return filepath.Join(p.Root, "test-data-input")
	}
	return p.Root
}

// TargetDataDir returns the local target-data directory.
func (p ProjectConfig) TargetDataDir() string {
	return filepath.Join(p.DataRoot(), "target-data")
}

// ModelOutputDir returns the local model-output directory.
func (p ProjectConfig) ModelOutputDir() string {
	return filepath.Join(p.DataRoot(), "model-output")
}

func (p ProjectConfig) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}

// WorkflowConfig selects how menu option 1 builds the dashboard.
type WorkflowConfig struct {
	Mode           string `mapstructure:"mode"` // builtin | external
	Interpreter    string `mapstructure:"interpreter"`
	Script         string `mapstructure:"script"`
	ConfirmSamples bool   `mapstructure:"confirm_samples"`
}

type StateConfig struct {
	Backend   string `mapstructure:"backend"` // file | redis | postgres | none
	FilePath  string `mapstructure:"file_path"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type DatabaseConfig struct {
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	Table          string `mapstructure:"table"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// StageConfig holds the settings applicable to every pipeline stage.
type StageConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Timeout int  `mapstructure:"timeout"` // milliseconds
}

type LoaderConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type HTTPConfig struct {
	Timeout int `mapstructure:"timeout"` // milliseconds
}

// LocationsConfig points at an optional location mapping file that
// overrides the embedded FIPS state table.
type LocationsConfig struct {
	MappingFile string `mapstructure:"mapping_file"`
}

type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile_path"`
}

// NotificationConfig holds settings for the send-notification stage.
type NotificationConfig struct {
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	Email struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		To        []string `mapstructure:"to"`
	} `mapstructure:"email"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetStageConfig retrieves stage-specific configuration with fallback to defaults
func GetStageConfig(cfg *Config, stageName string) StageConfig {
	if stage, exists := cfg.Stages[stageName]; exists {
		return stage
	}
	return StageConfig{
		Enabled: true,
		Timeout: defaultStageTimeout,
	}
}

// IsStageEnabled checks if a specific stage is enabled
func IsStageEnabled(cfg *Config, stageName string) bool {
	if stage, exists := cfg.Stages[stageName]; exists {
		return stage.Enabled
	}
	return true
}

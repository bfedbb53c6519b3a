// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// SettingsFileName is looked up in the project root, without extension.
	SettingsFileName = "dashboard-builder"
	// EnvPrefix prefixes every environment override, e.g. DASHBOARD_LOGGING_LEVEL.
	EnvPrefix = "DASHBOARD"

	defaultStageTimeout = 300000
)

// Overrides carries command-line flags. Empty fields leave settings untouched.
type Overrides struct {
	ProjectRoot string
	ConfigFile  string
	DevMode     *bool
	LogLevel    string
	LogFormat   string
}

// Load reads settings for the project at overrides.ProjectRoot (default ".").
// Precedence, lowest first: defaults, dashboard-builder.yaml, .env and the
// process environment, flags.
func Load(overrides Overrides) (*Config, error) {
	root := overrides.ProjectRoot
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root %q: %w", root, err)
	}

	loadEnvFile(absRoot)

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(SettingsFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(absRoot)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading settings file: %w", err)
		}
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	cfg.Project.Root = absRoot
	applyOverrides(&cfg, overrides)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads <root>/.env when present. Variables already set in the
// environment win.
func loadEnvFile(root string) {
	path := filepath.Join(root, ".env")
	if _, err := os.Stat(path); err == nil {
		_ = godotenv.Load(path)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "dashboard-builder")
	v.SetDefault("app.environment", "development")

	v.SetDefault("project.root", ".")
	v.SetDefault("project.config_file", "config.yaml")
	v.SetDefault("project.dev_mode", false)
	v.SetDefault("project.output_dir", "dashboard-data")
	v.SetDefault("project.cache_dir", ".dashboard-builder/cache")

	v.SetDefault("workflow.mode", "builtin")
	v.SetDefault("workflow.interpreter", "python3")
	v.SetDefault("workflow.script", "scripts/dashboard_builder_workflow.py")
	v.SetDefault("workflow.confirm_samples", true)

	v.SetDefault("state.backend", "file")
	v.SetDefault("state.file_path", ".dashboard-builder/state.json")
	v.SetDefault("state.key_prefix", "dashboard-builder:state:")

	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "")
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.max_connections", 4)
	v.SetDefault("database.postgres.max_idle", 2)
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.postgres.table", "dashboard_build_state")

	v.SetDefault("loader.concurrency", 4)
	v.SetDefault("http.timeout", 30000)
	v.SetDefault("locations.mapping_file", "")
	v.SetDefault("metrics.textfile_path", "")

	v.SetDefault("notifications.sns.enabled", false)
	v.SetDefault("notifications.sns.topic_arn", "")
	v.SetDefault("notifications.email.enabled", false)
	v.SetDefault("notifications.email.from_email", "")
	v.SetDefault("notifications.email.to", []string{})
	v.SetDefault("notifications.aws.region", "us-east-1")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Improved environment variable expansion
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.ConfigFile != "" {
		cfg.Project.ConfigFile = o.ConfigFile
	}
	if o.DevMode != nil {
		cfg.Project.DevMode = *o.DevMode
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Logging.Format = o.LogFormat
	}
}

// applyDefaults sets default values for optional fields that survive an
// explicit empty value in the settings file.
func applyDefaults(cfg *Config) {
	if cfg.Project.ConfigFile == "" {
		cfg.Project.ConfigFile = "config.yaml"
	}
	if cfg.Project.OutputDir == "" {
		cfg.Project.OutputDir = "dashboard-data"
	}
	if cfg.Loader.Concurrency == 0 {
		cfg.Loader.Concurrency = 4
	}
	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = 30000
	}
	for key, stage := range cfg.Stages {
		if stage.Timeout == 0 {
			stage.Timeout = defaultStageTimeout
		}
		cfg.Stages[key] = stage
	}
}

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"console": true, "json": true}
	validModes      = map[string]bool{"builtin": true, "external": true}
	validTableName  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	validBackends   = map[string]bool{"file": true, "redis": true, "postgres": true, "none": true}
)

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", cfg.Logging.Level)
	}
	if !validLogFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be console or json (got %q)", cfg.Logging.Format)
	}
	if !validModes[cfg.Workflow.Mode] {
		return fmt.Errorf("workflow.mode must be builtin or external (got %q)", cfg.Workflow.Mode)
	}
	if cfg.Workflow.Mode == "external" {
		if cfg.Workflow.Interpreter == "" || cfg.Workflow.Script == "" {
			return fmt.Errorf("workflow.interpreter and workflow.script are required in external mode")
		}
	}
	if !validBackends[cfg.State.Backend] {
		return fmt.Errorf("state.backend must be file, redis, postgres or none (got %q)", cfg.State.Backend)
	}
	if cfg.State.Backend == "redis" && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required for the redis state backend")
	}
	if cfg.State.Backend == "postgres" {
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required for the postgres state backend")
		}
		if !validTableName.MatchString(cfg.Database.Postgres.Table) {
			return fmt.Errorf("database.postgres.table must be a plain SQL identifier (got %q)", cfg.Database.Postgres.Table)
		}
	}
	if cfg.State.Backend == "file" && cfg.State.FilePath == "" {
		return fmt.Errorf("state.file_path is required for the file state backend")
	}
	if cfg.Loader.Concurrency < 1 {
		return fmt.Errorf("loader.concurrency must be at least 1")
	}
	if cfg.Notifications.SNS.Enabled && cfg.Notifications.SNS.TopicARN == "" {
		return fmt.Errorf("notifications.sns.topic_arn is required when sns is enabled")
	}
	if cfg.Notifications.Email.Enabled {
		if cfg.Notifications.Email.FromEmail == "" || len(cfg.Notifications.Email.To) == 0 {
			return fmt.Errorf("notifications.email.from_email and notifications.email.to are required when email is enabled")
		}
	}
	return nil
}

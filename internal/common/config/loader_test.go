// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(Overrides{ProjectRoot: root})
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Project.Root)
	assert.Equal(t, filepath.Join(root, "config.yaml"), cfg.Project.ConfigPath())
	assert.Equal(t, filepath.Join(root, "dashboard-data"), cfg.Project.OutputPath())
	assert.Equal(t, filepath.Join(root, "target-data"), cfg.Project.TargetDataDir())
	assert.Equal(t, "builtin", cfg.Workflow.Mode)
	assert.Equal(t, "python3", cfg.Workflow.Interpreter)
	assert.Equal(t, "scripts/dashboard_builder_workflow.py", cfg.Workflow.Script)
	assert.True(t, cfg.Workflow.ConfirmSamples)
	assert.Equal(t, "file", cfg.State.Backend)
	assert.Equal(t, 4, cfg.Loader.Concurrency)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "dashboard_build_state", cfg.Database.Postgres.Table)
	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname= sslmode=disable", cfg.Database.Postgres.GetDSN())
}

func TestLoad_SettingsFileAndEnvPrecedence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "dashboard-builder.yaml", `
workflow:
  mode: external
logging:
  level: warn
project:
  output_dir: ${DASH_TEST_OUT}
stages:
  export-json:
    enabled: true
`)
	t.Setenv("DASH_TEST_OUT", "public/data")
	t.Setenv("DASHBOARD_LOGGING_LEVEL", "error")

	cfg, err := Load(Overrides{ProjectRoot: root})
	require.NoError(t, err)

	assert.Equal(t, "external", cfg.Workflow.Mode)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(root, "public/data"), cfg.Project.OutputPath())
	assert.Equal(t, defaultStageTimeout, GetStageConfig(cfg, "export-json").Timeout)
	assert.True(t, IsStageEnabled(cfg, "send-notification"))
}

func TestLoad_DotEnvFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".env", "DASHBOARD_LOGGING_FORMAT=json\n")
	t.Cleanup(func() { os.Unsetenv("DASHBOARD_LOGGING_FORMAT") })

	cfg, err := Load(Overrides{ProjectRoot: root})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FlagOverrides(t *testing.T) {
	root := t.TempDir()
	dev := true

	cfg, err := Load(Overrides{
		ProjectRoot: root,
		ConfigFile:  "hub.yaml",
		DevMode:     &dev,
		LogLevel:    "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "hub.yaml"), cfg.Project.ConfigPath())
	assert.Equal(t, filepath.Join(root, "test-data-input", "model-output"), cfg.Project.ModelOutputDir())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name     string
		settings string
		wantErr  string
	}{
		{"bad log level", "logging:\n  level: loud\n", "logging.level"},
		{"bad mode", "workflow:\n  mode: remote\n", "workflow.mode"},
		{"redis without address", "state:\n  backend: redis\n", "database.redis.address"},
		{"postgres without database", "state:\n  backend: postgres\n", "database.postgres.database"},
		{"postgres bad table", "state:\n  backend: postgres\ndatabase:\n  postgres:\n    database: hub\n    table: \"state; drop\"\n", "database.postgres.table"},
		{"sns without topic", "notifications:\n  sns:\n    enabled: true\n", "topic_arn"},
		{"email without recipients", "notifications:\n  email:\n    enabled: true\n    from_email: a@b.org\n", "notifications.email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, "dashboard-builder.yaml", tt.settings)

			_, err := Load(Overrides{ProjectRoot: root})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

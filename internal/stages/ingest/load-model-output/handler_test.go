// internal/stages/ingest/load-model-output/handler_test.go
package loadmodeloutput

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/config"
	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/metrics"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ==========================
// Test Helper Functions
// ==========================

const header = "reference_date,target_end_date,target,horizon,location,output_type,output_type_id,value\n"

func createTestDashboardConfig(modelNames ...string) *models.DashboardConfig {
	cfg := &models.DashboardConfig{
		Columns:  models.DefaultColumnMapping(),
		TimeUnit: 7,
	}
	for _, name := range modelNames {
		cfg.Models = append(cfg.Models, models.ModelConfig{Name: name})
	}
	return cfg
}

// createTestState writes files relative to the model-output directory.
func createTestState(t *testing.T, cfg *models.DashboardConfig, files map[string]string) *pipeline.State {
	settings := &config.Config{}
	settings.Project.Root = t.TempDir()
	require.NoError(t, os.MkdirAll(settings.Project.ModelOutputDir(), 0o755))
	for name, content := range files {
		path := filepath.Join(settings.Project.ModelOutputDir(), name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return pipeline.NewState(settings, cfg)
}

func createTestHandler(t *testing.T, concurrency int) (*Handler, *metrics.Metrics) {
	m := metrics.New()
	settings := &config.Config{}
	settings.Loader.Concurrency = concurrency
	return NewHandler(LoadConfig(settings), logger.NewTestLogger(t), m), m
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

// ==========================
// Core Functionality Tests
// ==========================

func TestLoadConfig_Defaults(t *testing.T) {
	c := LoadConfig(nil)
	assert.Equal(t, 4, c.Concurrency)
	assert.Equal(t, "model-output", c.Source)
}

func TestHandler_Execute_PivotsQuantiles(t *testing.T) {
	st := createTestState(t, createTestDashboardConfig("team-b", "team-a"), map[string]string{
		"team-a/2024-01-06-team-a.csv": header +
			"2024-01-06,2024-01-13,flu,1,1,quantile,0.5,10\n" +
			"2024-01-06,2024-01-13,flu,1,1,quantile,0.50,20\n" +
			"2024-01-06,2024-01-13,flu,1,1,quantile,0.025,5\n" +
			"2024-01-06,2024-01-13,flu,1,1,pmf,large,0.3\n",
		"team-b/2024-01-06-team-b.csv": header +
			"2024-01-06,2024-01-20,flu,2,01,quantile,0.5,30\n" +
			"2024-01-06,2024-01-13,flu,1,01,quantile,0.5,25\n" +
			"2024-01-06,2024-01-13,flu,1,01,quantile,0.975,\n",
	})
	h, m := createTestHandler(t, 2)

	output, err := h.execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, []string{"team-b", "team-a"}, output.Models)
	assert.Equal(t, 2, output.Files)
	assert.Equal(t, 6, output.RawRows)
	assert.Equal(t, 1, output.DroppedRows)
	assert.Equal(t, 3, output.QuantileRows)
	assert.Equal(t, 1, output.OtherRows)

	mo := st.ModelOutput
	require.NotNil(t, mo)
	assert.True(t, mo.HasTarget)
	assert.True(t, mo.HasLocation)
	require.Len(t, mo.Quantiles, 3)

	// team-b comes first because it is listed first, then by target end date.
	assert.Equal(t, "team-b", mo.Quantiles[0].Model)
	assert.Equal(t, day("2024-01-13"), mo.Quantiles[0].TargetEndDate)
	assert.Equal(t, "team-b", mo.Quantiles[1].Model)
	assert.Equal(t, 2, mo.Quantiles[1].Horizon)

	teamA := mo.Quantiles[2]
	assert.Equal(t, "01", teamA.Location)
	assert.Equal(t, map[string]float64{"q0_5": 15, "q0_025": 5}, teamA.Quantiles, "duplicate cells are averaged")

	require.Len(t, mo.Other, 1)
	assert.Equal(t, "pmf", mo.Other[0].OutputType)
	assert.Len(t, mo.Files["team-a"], 1)

	assert.Equal(t, 6.0, testutil.ToFloat64(m.RowsLoaded.WithLabelValues("model-output")))
	require.Len(t, st.Warnings(), 1)
	assert.Contains(t, st.Warnings()[0], "have no value")
}

func TestHandler_Execute_DerivesHorizon(t *testing.T) {
	st := createTestState(t, createTestDashboardConfig("m"), map[string]string{
		"m/f.csv": "reference_date,target_end_date,location,value\n" +
			"2024-01-06,2024-01-20,US,100\n",
	})
	h, _ := createTestHandler(t, 1)

	output, err := h.execute(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, output.HorizonFromDates)
	require.Len(t, st.ModelOutput.Other, 1)
	assert.Equal(t, 2, st.ModelOutput.Other[0].Horizon)
	assert.False(t, st.ModelOutput.HasTarget)
	assert.Contains(t, st.Warnings()[0], "skipping quantile pivot")
}

func TestHandler_Execute_SkipsMissingModels(t *testing.T) {
	st := createTestState(t, createTestDashboardConfig("absent", "empty", "ok"), map[string]string{
		"empty/readme.md": "no data",
		"ok/f.csv":        header + "2024-01-06,2024-01-13,flu,1,US,quantile,0.5,1\n",
	})
	h, _ := createTestHandler(t, 4)

	output, err := h.execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, []string{"absent", "empty"}, output.SkippedModels)

	messages := st.Warnings()
	assert.Contains(t, messages, "Directory not found for model 'absent', skipping")
	assert.Contains(t, messages, "No CSV files found for model 'empty', skipping")
}

func TestHandler_Execute_SingleLocationFill(t *testing.T) {
	cfg := createTestDashboardConfig("m")
	cfg.IsSingleLocation = true
	cfg.SingleLocationMapping = "US"
	st := createTestState(t, cfg, map[string]string{
		"m/f.csv": "reference_date,target_end_date,horizon,output_type,output_type_id,value\n" +
			"2024-01-06,2024-01-13,1,quantile,0.5,4\n",
	})
	h, _ := createTestHandler(t, 1)

	_, err := h.execute(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, st.ModelOutput.HasLocation)
	assert.Equal(t, "US", st.ModelOutput.Quantiles[0].Location)
}

func TestDeriveHorizon(t *testing.T) {
	assert.Equal(t, 1, DeriveHorizon(day("2024-01-06"), day("2024-01-13"), 7))
	assert.Equal(t, 1, DeriveHorizon(day("2024-01-06"), day("2024-01-19"), 7))
	assert.Equal(t, -1, DeriveHorizon(day("2024-01-06"), day("2024-01-01"), 7))
	assert.Equal(t, -1, DeriveHorizon(day("2024-01-06"), day("2024-01-05"), 7))
	assert.Equal(t, 5, DeriveHorizon(day("2024-01-06"), day("2024-01-11"), 1))
	assert.Equal(t, 0, DeriveHorizon(day("2024-01-06"), day("2024-01-06"), 7))

	noon := day("2024-01-06").Add(12 * time.Hour)
	assert.Equal(t, -1, DeriveHorizon(noon, day("2024-01-06"), 1), "half a day before rounds down")
	assert.Equal(t, 0, DeriveHorizon(day("2024-01-06"), noon, 1))
}

func TestParseHorizon(t *testing.T) {
	for in, want := range map[string]int{"1": 1, "2.0": 2, "-1": -1} {
		got, err := parseHorizon(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"1.5", "soon"} {
		_, err := parseHorizon(in)
		assert.Error(t, err, in)
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *models.DashboardConfig)
		files  map[string]string
		code   apperrors.ErrorCode
	}{
		{
			name:  "every model skipped",
			files: map[string]string{},
			code:  apperrors.ErrCodeDataNotFound,
		},
		{
			name:  "missing reference date",
			files: map[string]string{"m/f.csv": "target_end_date,value\n2024-01-13,1\n"},
			code:  apperrors.ErrCodeColumnMissing,
		},
		{
			name:  "missing target end date",
			files: map[string]string{"m/f.csv": "reference_date,value\n2024-01-06,1\n"},
			code:  apperrors.ErrCodeColumnMissing,
		},
		{
			name:  "bad value",
			files: map[string]string{"m/f.csv": header + "2024-01-06,2024-01-13,flu,1,US,quantile,0.5,lots\n"},
			code:  apperrors.ErrCodeInvalidData,
		},
		{
			name:  "bad reference date",
			files: map[string]string{"m/f.csv": header + "last week,2024-01-13,flu,1,US,quantile,0.5,1\n"},
			code:  apperrors.ErrCodeInvalidData,
		},
		{
			name:  "non-numeric horizon",
			files: map[string]string{"m/f.csv": header + "2024-01-06,2024-01-13,flu,soon,US,quantile,0.5,1\n"},
			code:  apperrors.ErrCodeInvalidData,
		},
		{
			name:  "fractional horizon",
			files: map[string]string{"m/f.csv": header + "2024-01-06,2024-01-13,flu,1.5,US,quantile,0.5,1\n"},
			code:  apperrors.ErrCodeInvalidData,
		},
		{
			name:   "no time unit to derive horizon",
			mutate: func(cfg *models.DashboardConfig) { cfg.TimeUnit = 0 },
			files:  map[string]string{"m/f.csv": "reference_date,target_end_date,value\n2024-01-06,2024-01-13,1\n"},
			code:   apperrors.ErrCodeInvalidData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestDashboardConfig("m")
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			h, _ := createTestHandler(t, 2)
			err := h.Execute(context.Background(), createTestState(t, cfg, tt.files))
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestHandler_Execute_Cancelled(t *testing.T) {
	st := createTestState(t, createTestDashboardConfig("m"), map[string]string{
		"m/f.csv": header + "2024-01-06,2024-01-13,flu,1,US,quantile,0.5,1\n",
	})
	h, _ := createTestHandler(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.Execute(ctx, st)
	assert.ErrorIs(t, err, context.Canceled)
}

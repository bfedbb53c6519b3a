// internal/stages/ingest/load-target-data/handler_test.go
package loadtargetdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/config"
	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/metrics"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestDashboardConfig() *models.DashboardConfig {
	cols := models.DefaultColumnMapping()
	cols.ObservationCol = "obs"
	cols.LocationCol = "loc"
	cols.LocationNameCol = "loc_name"
	cols.TargetCol = "target"
	return &models.DashboardConfig{
		Columns:              cols,
		ObservationFormat:    FormatFloat,
		TargetDataFileFormat: FileFormatCSV,
		LocationNames:        map[string]string{"01": "Alabama", "02": "Alaska"},
	}
}

func createTestState(t *testing.T, cfg *models.DashboardConfig, files map[string]string) *pipeline.State {
	settings := &config.Config{}
	settings.Project.Root = t.TempDir()
	for name, content := range files {
		path := filepath.Join(settings.Project.TargetDataDir(), name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return pipeline.NewState(settings, cfg)
}

func createTestHandler(t *testing.T) (*Handler, *metrics.Metrics) {
	m := metrics.New()
	return NewHandler(LoadConfig(), logger.NewTestLogger(t), m), m
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	st := createTestState(t, createTestDashboardConfig(), map[string]string{
		"b.csv": "date,obs\n2024-01-01,1\n",
		"a.csv": "date,obs,loc,loc_name,target\n" +
			"2024-01-06,10,1,Alabama,wk inc flu hosp\n" +
			"2024-01-06,,2,Alaska,wk inc flu hosp\n" +
			"2024-01-13,12.5,01,Alabama,wk inc flu hosp\n",
	})
	h, m := createTestHandler(t)

	output, err := h.execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, "a.csv", filepath.Base(output.File))
	assert.Equal(t, 2, output.Rows)
	assert.Equal(t, 1, output.DroppedRows)

	data := st.TargetData
	require.NotNil(t, data)
	assert.True(t, data.HasLocation)
	assert.True(t, data.HasTarget)
	assert.Equal(t, models.TargetRow{
		Date: day("2024-01-06"), Observation: 10, Location: "01", LocationName: "Alabama", Target: "wk inc flu hosp",
	}, data.Rows[0])
	assert.Equal(t, 12.5, data.Rows[1].Observation)

	require.Len(t, st.Issues, 1)
	assert.Contains(t, st.Issues[0].Message, "have no observation")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsLoaded.WithLabelValues("target-data")))
}

func TestHandler_Execute_AsOfSnapshots(t *testing.T) {
	cfg := createTestDashboardConfig()
	cfg.Columns.AsOfCol = "as_of"
	st := createTestState(t, cfg, map[string]string{
		"ts.csv": "date,obs,loc,as_of\n" +
			"2024-01-13,9,01,2024-01-15\n" +
			"2024-01-06,8,01,2024-01-08\n" +
			"2024-01-06,10,01,2024-01-15\n" +
			"2023-12-30,7,01,2024-01-08\n",
	})
	h, _ := createTestHandler(t)

	output, err := h.execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, 2, output.Snapshots)
	assert.Equal(t, "2024-01-15T00:00:00", output.LatestAsOf)

	data := st.TargetData
	require.Len(t, data.Rows, 2)
	for _, r := range data.Rows {
		assert.Equal(t, day("2024-01-15"), *r.AsOf)
	}
	history := data.History["2024-01-08T00:00:00"]
	require.Len(t, history, 2)
	assert.Equal(t, day("2023-12-30"), history[0].Date, "history is sorted by date")
}

func TestHandler_Execute_CanonicalHeadersWithoutMapping(t *testing.T) {
	cfg := createTestDashboardConfig()
	cfg.Columns = models.DefaultColumnMapping()
	st := createTestState(t, cfg, map[string]string{
		"ts.csv": "date,location,location_name,target,value,as_of\n" +
			"2024-01-06,01,Alabama,wk inc flu hosp,8,2024-01-08\n" +
			"2024-01-06,01,Alabama,wk inc flu hosp,10,2024-01-15\n",
	})
	h, _ := createTestHandler(t)

	output, err := h.execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15T00:00:00", output.LatestAsOf)

	data := st.TargetData
	assert.True(t, data.HasLocation)
	assert.True(t, data.HasLocationName)
	assert.True(t, data.HasTarget)
	require.Len(t, data.Rows, 1, "older as_of rows are history, not ground truth")
	row := data.Rows[0]
	assert.Equal(t, 10.0, row.Observation)
	assert.Equal(t, "01", row.Location)
	assert.Equal(t, "Alabama", row.LocationName)
	assert.Equal(t, "wk inc flu hosp", row.Target)
	assert.Len(t, data.History["2024-01-08T00:00:00"], 1)
}

func TestHandler_Execute_SingleLocationFill(t *testing.T) {
	cfg := createTestDashboardConfig()
	cfg.IsSingleLocation = true
	cfg.SingleLocationMapping = "02"
	st := createTestState(t, cfg, map[string]string{"ts.csv": "date,obs\n2024-01-06,3\n"})
	h, _ := createTestHandler(t)

	_, err := h.execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, "02", st.TargetData.Rows[0].Location)
	assert.Equal(t, "Alaska", st.TargetData.Rows[0].LocationName)
	assert.True(t, st.TargetData.HasLocationName)
}

func TestHandler_Execute_IntFormatRounds(t *testing.T) {
	cfg := createTestDashboardConfig()
	cfg.ObservationFormat = FormatInt
	st := createTestState(t, cfg, map[string]string{"ts.csv": "date,obs\n2024-01-06,3.6\n"})
	h, _ := createTestHandler(t)

	_, err := h.execute(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, 4.0, st.TargetData.Rows[0].Observation)
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
			name:  "no csv file",
			files: map[string]string{"readme.txt": "x"},
			code:  apperrors.ErrCodeDataNotFound,
		},
		{
			name:   "parquet unsupported",
			mutate: func(cfg *models.DashboardConfig) { cfg.TargetDataFileFormat = FileFormatParquet },
			files:  map[string]string{"ts.csv": "date,obs\n"},
			code:   apperrors.ErrCodeUnsupportedFormat,
		},
		{
			name:  "missing date column",
			files: map[string]string{"ts.csv": "day,obs\n2024-01-06,1\n"},
			code:  apperrors.ErrCodeColumnMissing,
		},
		{
			name:  "missing observation column",
			files: map[string]string{"ts.csv": "date,count\n2024-01-06,1\n"},
			code:  apperrors.ErrCodeColumnMissing,
		},
		{
			name:  "bad date",
			files: map[string]string{"ts.csv": "date,obs\nJan 6,1\n"},
			code:  apperrors.ErrCodeInvalidData,
		},
		{
			name:  "non numeric observation",
			files: map[string]string{"ts.csv": "date,obs\n2024-01-06,many\n"},
			code:  apperrors.ErrCodeInvalidData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestDashboardConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			h, _ := createTestHandler(t)
			err := h.Execute(context.Background(), createTestState(t, cfg, tt.files))
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

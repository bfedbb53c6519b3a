// internal/stages/processing/build-metadata/handler_test.go
package buildmetadata

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/config"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
)

// ==========================
// Test Helper Functions
// ==========================

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func createTestState() *pipeline.State {
	cfg := &models.DashboardConfig{
		TimeUnit: 7,
		Horizons: []int{0, 1},
		ForecastPeriods: []models.ForecastPeriod{
			{ID: "s1", DisplayString: "Season 1", Start: day("2023-10-01"), End: day("2024-05-31")},
			{ID: "s2", DisplayString: "Season 2", Start: day("2024-10-01"), End: day("2025-05-31")},
		},
		Models: []models.ModelConfig{
			{Name: "team-a", DisplayName: "Team A", ColorHex: "#4CAF50"},
			{Name: "team-b", DisplayName: "team-b", ColorHex: "#2196F3"},
		},
		Targets: []models.TargetConfig{
			{TargetDataKey: "flu", ModelOutputKey: "wk inc flu", DisplayName: "Flu", ForecastPeriods: []string{"s1", "s2"}},
		},
		PredictionIntervals: []models.PredictionInterval{{Level: 50, OutputTypeIDs: []string{"0.25", "0.75"}}},
	}
	st := pipeline.NewState(&config.Config{}, cfg)
	st.Locations = []models.Location{{Location: "01", LocationName: "Alabama"}}
	st.ModelOutput = &models.ModelOutput{
		Quantiles: []models.QuantileForecast{{ReferenceDate: day("2025-01-04")}},
		Other:     []models.ModelOutputRow{{ReferenceDate: day("2025-01-11")}},
	}
	st.Partitions = []*models.Partition{
		{Period: cfg.ForecastPeriods[0]},
		{Period: models.ForecastPeriod{ID: "last-4", DisplayString: "Last 4 weeks", IsSpecial: true, Start: day("2024-12-14"), End: day("2025-01-11")}},
	}
	return st
}

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_BuildsMetadata(t *testing.T) {
	st := createTestState()

	output := createTestHandler(t).execute(context.Background(), st)
	assert.Equal(t, 1, output.Locations)
	assert.Equal(t, 2, output.Seasons)
	assert.Equal(t, 1, output.DynamicPeriods)
	require.NotNil(t, output.DefaultSelectedDate)
	assert.Equal(t, "2025-01-11T00:00:00", *output.DefaultSelectedDate)

	md := st.Metadata
	require.NotNil(t, md)
	assert.Equal(t, models.Season{SeasonID: "s1", DisplayString: "Season 1", StartDate: "2023-10-01T00:00:00", EndDate: "2024-05-31T00:00:00"}, md.FullRangeSeasons[0])
	assert.Equal(t, models.DynamicPeriod{
		Label: "last-4", DisplayString: "Last 4 weeks", IsDynamic: true,
		StartDate: "2024-12-14T00:00:00", EndDate: "2025-01-11T00:00:00",
	}, md.DynamicTimePeriod[0])
	assert.Equal(t, []string{"team-a", "team-b"}, md.ModelNames)
	assert.Equal(t, "Team A", md.Models[0].DisplayName)
	assert.Equal(t, "#2196F3", md.Models[1].Color)
	assert.Equal(t, "wk inc flu", md.Targets[0].ModelOutputKey)
	assert.Equal(t, []string{"0.25", "0.75"}, md.PredictionIntervals[0].Quantiles)
	assert.Equal(t, "s2", md.DefaultSeasonID, "falls back to the last season")
}

func TestHandler_Execute_DefaultPeriodWins(t *testing.T) {
	st := createTestState()
	st.Config.ForecastPeriods[0].IsDefaultSelected = true

	output := createTestHandler(t).execute(context.Background(), st)
	assert.Equal(t, "s1", output.DefaultSeasonID)
}

func TestHandler_Execute_NoModelOutput(t *testing.T) {
	st := createTestState()
	st.ModelOutput = nil
	st.Locations = nil
	st.Partitions = nil

	require.NoError(t, createTestHandler(t).Execute(context.Background(), st))
	assert.Nil(t, st.Metadata.DefaultSelectedDate)

	// Empty collections still encode as arrays and the date as null.
	body, err := json.Marshal(st.Metadata)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"locations":[]`)
	assert.Contains(t, string(body), `"dynamicTimePeriod":[]`)
	assert.Contains(t, string(body), `"defaultSelectedDate":null`)
}

func TestHandler_Execute_NoFallback(t *testing.T) {
	st := createTestState()
	h := NewHandler(&Config{}, logger.NewNoOpLogger())

	output := h.execute(context.Background(), st)
	assert.Empty(t, output.DefaultSeasonID)
}

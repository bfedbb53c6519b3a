// internal/stages/processing/detect-locations/handler_test.go
package detectlocations

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
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

func createTestState() *pipeline.State {
	cfg := &models.DashboardConfig{
		LocationNames: map[string]string{"US": "United States", "01": "Alabama", "02": "Alaska", "06": "California"},
	}
	return pipeline.NewState(&config.Config{}, cfg)
}

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_MergesSources(t *testing.T) {
	st := createTestState()
	st.TargetData = &models.TargetData{
		HasLocation:     true,
		HasLocationName: true,
		Rows: []models.TargetRow{
			{Location: "02", LocationName: "Alaska (custom)"},
			{Location: "01", LocationName: "Alabama"},
			{Location: "02", LocationName: "Alaska"},
		},
	}
	st.ModelOutput = &models.ModelOutput{
		HasLocation: true,
		Quantiles: []models.QuantileForecast{
			{Location: "US"},
			{Location: "02"},
		},
		Other: []models.ModelOutputRow{{Location: "72"}, {Location: "06"}},
	}

	output := createTestHandler(t).execute(context.Background(), st)
	assert.Equal(t, 5, output.Locations)
	assert.Equal(t, 2, output.FromTargetData)
	assert.Equal(t, 3, output.FromModelOutput)
	assert.Equal(t, []string{"72"}, output.Unknown)

	want := []models.Location{
		{Location: "01", LocationName: "Alabama"},
		{Location: "02", LocationName: "Alaska (custom)"},
		{Location: "06", LocationName: "California"},
		{Location: "72", LocationName: "Unknown"},
		{Location: "US", LocationName: "United States"},
	}
	if diff := cmp.Diff(want, st.Locations); diff != "" {
		t.Errorf("locations mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, st.Warnings(), 1)
	assert.Contains(t, st.Warnings()[0], "72")
}

func TestHandler_Execute_TargetPairsNeedNameColumn(t *testing.T) {
	st := createTestState()
	st.TargetData = &models.TargetData{
		HasLocation: true,
		Rows:        []models.TargetRow{{Location: "01"}},
	}
	st.ModelOutput = &models.ModelOutput{}

	output := createTestHandler(t).execute(context.Background(), st)
	assert.Zero(t, output.Locations)
	assert.Empty(t, st.Locations)
}

func TestHandler_Execute_SingleLocationFallback(t *testing.T) {
	st := createTestState()
	st.Config.IsSingleLocation = true
	st.Config.SingleLocationMapping = "06"
	st.TargetData = &models.TargetData{}
	st.ModelOutput = &models.ModelOutput{}

	require.NoError(t, createTestHandler(t).Execute(context.Background(), st))
	assert.Equal(t, []models.Location{{Location: "06", LocationName: "California"}}, st.Locations)
}

func TestHandler_Execute_NilData(t *testing.T) {
	st := createTestState()
	output := createTestHandler(t).execute(context.Background(), st)
	assert.Zero(t, output.Locations)
}

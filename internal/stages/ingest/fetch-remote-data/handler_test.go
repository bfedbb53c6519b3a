// internal/stages/ingest/fetch-remote-data/handler_test.go
package fetchremotedata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/config"
	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	httpclient "github.com/mobs-lab/hubverse-dashboards/internal/common/http"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/hub/target-data/time-series.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("date,value\n2024-01-06,1\n"))
	})
	mux.HandleFunc("/hub/model-output/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/hub/model-output/team-a.csv":
			w.Write([]byte("reference_date,target_end_date,value\n2024-01-06,2024-01-13,5\n"))
		case "/hub/model-output/team b.csv":
			w.Write([]byte("reference_date,target_end_date,value\n"))
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func createTestState(t *testing.T, cfg *models.DashboardConfig) *pipeline.State {
	settings := &config.Config{}
	settings.Project.Root = t.TempDir()
	settings.Project.CacheDir = "cache"
	return pipeline.NewState(settings, cfg)
}

func createTestHandler(t *testing.T, st *pipeline.State) *Handler {
	cfg := LoadConfig(st.Settings)
	cfg.Timeout = 5 * time.Second
	return NewHandler(cfg, logger.NewTestLogger(t), httpclient.NewClient(cfg.Timeout))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestLoadConfig(t *testing.T) {
	settings := &config.Config{}
	settings.Project.Root = "/hub"
	settings.Project.CacheDir = "cache"
	settings.HTTP.Timeout = 1500
	settings.Loader.Concurrency = 2

	c := LoadConfig(settings)
	assert.Equal(t, filepath.Join("/hub", "cache"), c.CacheDir)
	assert.Equal(t, 1500*time.Millisecond, c.Timeout)
	assert.Equal(t, 2, c.Concurrency)
}

func TestHandler_Execute_NoLinks(t *testing.T) {
	st := createTestState(t, &models.DashboardConfig{})
	localTarget := st.TargetDataDir

	output, err := createTestHandler(t, st).execute(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, output.Skipped)
	assert.Equal(t, localTarget, st.TargetDataDir)
}

func TestHandler_Execute_DownloadsIntoCache(t *testing.T) {
	srv := createTestServer(t)
	st := createTestState(t, &models.DashboardConfig{
		TargetDataLink:  srv.URL + "/hub/target-data/time-series.csv",
		ModelOutputLink: srv.URL + "/hub/model-output/{model}.csv",
		Models:          []models.ModelConfig{{Name: "team-a"}, {Name: "team b"}, {Name: "team-c"}},
	})

	output, err := createTestHandler(t, st).execute(context.Background(), st)
	require.NoError(t, err)
	cache := filepath.Join(st.Settings.Project.Root, "cache")
	assert.Equal(t, filepath.Join(cache, "target-data"), st.TargetDataDir)
	assert.Equal(t, filepath.Join(cache, "model-output"), st.ModelOutputDir)
	assert.Equal(t, filepath.Join(cache, "target-data", "time-series.csv"), output.TargetDataFile)
	assert.Equal(t, 2, output.ModelFiles)
	assert.Equal(t, []string{"team-c"}, output.FailedModels)
	assert.Equal(t, []string{"Could not download model output for 'team-c'"}, st.Warnings())

	body, err := os.ReadFile(filepath.Join(st.ModelOutputDir, "team-a", "team-a.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "2024-01-13,5")

	// The downloaded layout is what the loaders expect.
	files, ok := pipeline.ModelFiles(st.ModelOutputDir, "team b")
	assert.True(t, ok)
	assert.Len(t, files, 1)
	target, err := pipeline.TargetDataFile(st.TargetDataDir)
	require.NoError(t, err)
	assert.Equal(t, output.TargetDataFile, target)
}

func TestModelURL(t *testing.T) {
	assert.Equal(t, "https://x/a%20b/a%20b.csv", ModelURL("https://x/{model}/{model}.csv", "a b"))
	assert.Equal(t, "https://x/all.csv", ModelURL("https://x/all.csv", "a"))
}

func TestTargetFileName(t *testing.T) {
	assert.Equal(t, "ts.csv", TargetFileName("https://raw.example.org/hub/ts.csv?token=1"))
	assert.Equal(t, "target-data.csv", TargetFileName("https://example.org/download"))
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_TargetFailure(t *testing.T) {
	srv := createTestServer(t)
	st := createTestState(t, &models.DashboardConfig{TargetDataLink: srv.URL + "/missing.csv"})

	err := createTestHandler(t, st).Execute(context.Background(), st)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeFetchFailed))
	stdErr, _ := apperrors.AsStandardError(err)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Execute_Cancelled(t *testing.T) {
	srv := createTestServer(t)
	st := createTestState(t, &models.DashboardConfig{
		ModelOutputLink: srv.URL + "/hub/model-output/{model}.csv",
		Models:          []models.ModelConfig{{Name: "team-a"}},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := createTestHandler(t, st).Execute(ctx, st)
	assert.ErrorIs(t, err, context.Canceled)
}

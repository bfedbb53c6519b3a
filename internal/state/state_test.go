// internal/state/state_test.go
package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/config"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/database"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestState(key string) *models.BuildState {
	return &models.BuildState{
		ProjectKey:  key,
		Fingerprint: "abc123",
		RunID:       "run-1",
		BuiltAt:     time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
		Files:       []string{"config.yaml", "target-data/time-series.csv"},
	}
}

func writeFile(t *testing.T, path, content string) string {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ==========================
// File store
// ==========================

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "state.json"))

	_, err := store.Get(ctx, "hub")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, createTestState("hub")))
	require.NoError(t, store.Put(ctx, createTestState("other")))

	got, err := store.Get(ctx, "hub")
	require.NoError(t, err)
	assert.Equal(t, createTestState("hub"), got)

	reopened := NewFileStore(store.Path())
	got, err = reopened.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.Fingerprint)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "state.json"), "{not json")
	_, err := NewFileStore(path).Get(context.Background(), "hub")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

// ==========================
// Redis store
// ==========================

func TestRedisStore_RoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	store := NewRedisStore(client, "dashboard-builder:state:")
	defer store.Close()

	ctx := context.Background()
	_, err = store.Get(ctx, "hub")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, createTestState("hub")))
	assert.True(t, mr.Exists("dashboard-builder:state:hub"))

	got, err := store.Get(ctx, "hub")
	require.NoError(t, err)
	assert.Equal(t, createTestState("hub"), got)
}

func TestRedisStore_Errors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(database.NewRedisFromClient(db), "p:")
	ctx := context.Background()

	mock.ExpectGet("p:hub").SetErr(errors.New("connection reset"))
	_, err := store.Get(ctx, "hub")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	mock.ExpectGet("p:hub").SetVal("{broken")
	_, err = store.Get(ctx, "hub")
	assert.ErrorContains(t, err, "decode state")

	mock.Regexp().ExpectSet("p:hub", `.*`, 0).SetErr(errors.New("READONLY"))
	err = store.Put(ctx, createTestState("hub"))
	assert.ErrorContains(t, err, "READONLY")

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Backend selection
// ==========================

func TestOpen(t *testing.T) {
	cfg := &config.Config{}
	cfg.Project.Root = t.TempDir()
	cfg.State.FilePath = ".dashboard-builder/state.json"

	cfg.State.Backend = BackendFile
	store, err := Open(cfg)
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, store)
	assert.Equal(t, filepath.Join(cfg.Project.Root, ".dashboard-builder", "state.json"), store.(*FileStore).Path())

	cfg.State.Backend = BackendNone
	store, err = Open(cfg)
	require.NoError(t, err)
	_, err = store.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotFound)

	cfg.State.Backend = BackendRedis
	_, err = Open(cfg)
	assert.Error(t, err)

	cfg.State.Backend = "etcd"
	_, err = Open(cfg)
	assert.Error(t, err)
}

// ==========================
// Fingerprint
// ==========================

func TestFingerprint(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, filepath.Join(root, "config.yaml"), "time_unit: 7")
	b := writeFile(t, filepath.Join(root, "target-data", "ts.csv"), "date,value\n")

	first, err := Fingerprint(root, []string{a, b})
	require.NoError(t, err)
	assert.Len(t, first, 64)

	again, err := Fingerprint(root, []string{b, a, a})
	require.NoError(t, err)
	assert.Equal(t, first, again, "order and duplicates must not matter")

	writeFile(t, b, "date,value\n2024-01-06,1\n")
	changed, err := Fingerprint(root, []string{a, b})
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)

	_, err = Fingerprint(root, []string{filepath.Join(root, "missing.csv")})
	assert.Error(t, err)
}

func TestProjectKey(t *testing.T) {
	root := filepath.Join(t.TempDir(), "flu-hub")
	key := ProjectKey(root)
	assert.Regexp(t, `^flu-hub-[0-9a-f]{12}$`, key)
	assert.Equal(t, key, ProjectKey(root))
}

func TestProjectKey_MovedProjectKeepsFingerprintButNotKey(t *testing.T) {
	base := t.TempDir()
	var keys, prints []string
	for _, dir := range []string{"a", "b"} {
		root := filepath.Join(base, dir, "flu-hub")
		cfg := writeFile(t, filepath.Join(root, "config.yaml"), "time_unit: 7")
		fp, err := Fingerprint(root, []string{cfg})
		require.NoError(t, err)
		prints = append(prints, fp)
		keys = append(keys, ProjectKey(root))
	}
	assert.Equal(t, prints[0], prints[1])
	assert.NotEqual(t, keys[0], keys[1])
}

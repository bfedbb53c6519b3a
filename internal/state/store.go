// internal/state/store.go
package state

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/config"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/database"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
)

// ErrNotFound is returned by Get when no build has been recorded for the project.
var ErrNotFound = errors.New("build state not found")

// Store persists the fingerprint of the last successful build per project.
type Store interface {
	Get(ctx context.Context, projectKey string) (*models.BuildState, error)
	Put(ctx context.Context, st *models.BuildState) error
	Close() error
}

const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendNone     = "none"
)

// Open returns the store selected by settings.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.State.Backend {
	case BackendFile, "":
		path := cfg.State.FilePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Project.Root, path)
		}
		return NewFileStore(path), nil
	case BackendRedis:
		client, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.State.KeyPrefix), nil
	case BackendPostgres:
		client, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(client, cfg.Database.Postgres.Table), nil
	case BackendNone:
		return NoopStore{}, nil
	}
	return nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
}

// NoopStore never remembers anything, so every build is an initial build.
type NoopStore struct{}

func (NoopStore) Get(context.Context, string) (*models.BuildState, error) {
	return nil, ErrNotFound
}

func (NoopStore) Put(context.Context, *models.BuildState) error { return nil }

func (NoopStore) Close() error { return nil }

// internal/state/redis.go
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/database"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
)

// RedisStore keeps one JSON value per project under prefix+projectKey.
type RedisStore struct {
	client *database.RedisClient
	prefix string
}

func NewRedisStore(client *database.RedisClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(projectKey string) string {
	return s.prefix + projectKey
}

func (s *RedisStore) Get(ctx context.Context, projectKey string) (*models.BuildState, error) {
	raw, err := s.client.Get(ctx, s.key(projectKey))
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get state: %w", err)
	}
	var st models.BuildState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &st, nil
}

func (s *RedisStore) Put(ctx context.Context, st *models.BuildState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.client.Set(ctx, s.key(st.ProjectKey), data, 0); err != nil {
		return fmt.Errorf("redis set state: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the connection before a build relies on it.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

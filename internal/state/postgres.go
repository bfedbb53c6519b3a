// internal/state/postgres.go
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mobs-lab/hubverse-dashboards/internal/common/database"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
)

// PostgresStore keeps one JSON row per project in table. The table name must
// already be a validated identifier.
type PostgresStore struct {
	client *database.PostgresClient
	table  string
}

func NewPostgresStore(client *database.PostgresClient, table string) *PostgresStore {
	return &PostgresStore{client: client, table: table}
}

// Ping checks the connection and creates the state table when missing.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx); err != nil {
		return err
	}
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		project_key TEXT PRIMARY KEY,
		payload     JSONB NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, s.table)
	if _, err := s.client.Exec(ctx, query); err != nil {
		return fmt.Errorf("create state table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, projectKey string) (*models.BuildState, error) {
	var raw []byte
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE project_key = $1`, s.table)
	err := s.client.QueryRow(ctx, query, projectKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres get state: %w", err)
	}
	var st models.BuildState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &st, nil
}

func (s *PostgresStore) Put(ctx context.Context, st *models.BuildState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (project_key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (project_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`, s.table)
	if _, err := s.client.Exec(ctx, query, st.ProjectKey, data); err != nil {
		return fmt.Errorf("postgres put state: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.client.Close()
}

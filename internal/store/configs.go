package store

import (
	"context"
	"encoding/json"
)

// ---- System Config (generic key-value) ----

func (s *Store) GetSystemConfig(ctx context.Context, key string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := s.db.QueryRow(ctx,
		`SELECT config FROM system_configs WHERE config_key = $1`, key,
	).Scan(&raw)
	return raw, err
}

func (s *Store) UpsertSystemConfig(ctx context.Context, key string, config json.RawMessage) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO system_configs (config_key, config, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (config_key) DO UPDATE
		SET config = EXCLUDED.config, updated_at = now()
	`, key, config)
	return err
}

// InsertSystemConfigIfAbsent writes config only when key has no row yet.
// It reports whether a row was inserted.
func (s *Store) InsertSystemConfigIfAbsent(ctx context.Context, key string, config json.RawMessage) (bool, error) {
	ct, err := s.db.Exec(ctx, `
		INSERT INTO system_configs (config_key, config, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (config_key) DO NOTHING
	`, key, config)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

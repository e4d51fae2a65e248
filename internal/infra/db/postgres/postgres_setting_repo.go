package postgres

import (
	"context"
	"strconv"
)

func (s *PostgresStore) GetSetting(ctx context.Context, key, def string) (string, error) {
	var v *string
	found, err := s.queryRow(ctx, `SELECT value FROM settings WHERE key = $1`, []any{key}, &v)
	if err != nil || !found || v == nil {
		return def, err
	}
	return *v, nil
}

func (s *PostgresStore) SetSetting(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value;`
	_, err := s.exec(ctx, q, key, value)
	return err
}

func (s *PostgresStore) ClearSetting(ctx context.Context, key string) error {
	_, err := s.exec(ctx, `UPDATE settings SET value = NULL WHERE key = $1`, key)
	return err
}

// IncrementCounter is a single atomic upsert.
func (s *PostgresStore) IncrementCounter(ctx context.Context, key string) error {
	const q = `
INSERT INTO settings (key, value) VALUES ($1, '1')
ON CONFLICT (key) DO UPDATE SET
  value = (COALESCE(NULLIF(settings.value, ''), '0')::bigint + 1)::text;`
	_, err := s.exec(ctx, q, key)
	return err
}

func (s *PostgresStore) Counter(ctx context.Context, key string) (int64, error) {
	v, err := s.GetSetting(ctx, key, "0")
	if err != nil {
		return 0, err
	}
	n, perr := strconv.ParseInt(v, 10, 64)
	if perr != nil {
		return 0, nil
	}
	return n, nil
}

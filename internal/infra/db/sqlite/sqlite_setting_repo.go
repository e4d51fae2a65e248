package sqlite

import (
	"context"
	"database/sql"
	"strconv"
)

func (s *SQLiteStore) GetSetting(ctx context.Context, key, def string) (string, error) {
	var v sql.NullString
	found, err := s.queryRow(ctx, `SELECT value FROM settings WHERE key = ?`, []any{key}, &v)
	if err != nil || !found || !v.Valid {
		return def, err
	}
	return v.String, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.exec(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

func (s *SQLiteStore) ClearSetting(ctx context.Context, key string) error {
	_, err := s.exec(ctx, `UPDATE settings SET value = NULL WHERE key = ?`, key)
	return err
}

// IncrementCounter reads the current value in a correlated sub-query.
func (s *SQLiteStore) IncrementCounter(ctx context.Context, key string) error {
	const q = `
INSERT OR REPLACE INTO settings (key, value)
VALUES (?, COALESCE((SELECT CAST(value AS INTEGER) FROM settings WHERE key = ?), 0) + 1);`
	_, err := s.exec(ctx, q, key, key)
	return err
}

func (s *SQLiteStore) Counter(ctx context.Context, key string) (int64, error) {
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

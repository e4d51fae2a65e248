package sqlite

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS chats (
    chat_id    INTEGER PRIMARY KEY,
    title      TEXT,
    username   TEXT,
    chat_type  TEXT,
    adder_id   INTEGER,
    adder_name TEXT
)`,
	`CREATE TABLE IF NOT EXISTS files (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id    TEXT,
    file_name  TEXT,
    file_size  TEXT,
    file_type  TEXT,
    chat_id    INTEGER,
    message_id INTEGER,
    UNIQUE (chat_id, message_id)
)`,
	`CREATE TABLE IF NOT EXISTS users (
    user_id   INTEGER PRIMARY KEY,
    name      TEXT,
    username  TEXT,
    last_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    is_banned INTEGER DEFAULT 0
)`,
	`CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT
)`,
}

type columnMigration struct {
	table, column, ddl string
}

// SQLite has no ADD COLUMN IF NOT EXISTS; existing columns are looked up first.
var migrations = []columnMigration{
	{"chats", "adder_id", `ALTER TABLE chats ADD COLUMN adder_id INTEGER`},
	{"chats", "adder_name", `ALTER TABLE chats ADD COLUMN adder_name TEXT`},
	{"users", "username", `ALTER TABLE users ADD COLUMN username TEXT`},
	{"users", "is_banned", `ALTER TABLE users ADD COLUMN is_banned INTEGER DEFAULT 0`},
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	for _, m := range migrations {
		ok, err := s.hasColumn(ctx, m.table, m.column)
		if err != nil {
			s.log.Warn().Err(err).Str("table", m.table).Msg("migration skipped")
			continue
		}
		if ok {
			continue
		}
		if _, err := s.db.ExecContext(ctx, m.ddl); err != nil {
			s.log.Warn().Err(err).Str("stmt", m.ddl).Msg("migration skipped")
		}
	}
	return nil
}

func (s *SQLiteStore) hasColumn(ctx context.Context, table, column string) (bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

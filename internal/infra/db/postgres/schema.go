package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS chats (
    chat_id    BIGINT PRIMARY KEY,
    title      TEXT,
    username   TEXT,
    chat_type  TEXT,
    adder_id   BIGINT,
    adder_name TEXT
)`,
	`CREATE TABLE IF NOT EXISTS files (
    id         SERIAL PRIMARY KEY,
    file_id    TEXT,
    file_name  TEXT,
    file_size  TEXT,
    file_type  TEXT,
    chat_id    BIGINT,
    message_id BIGINT,
    UNIQUE (chat_id, message_id)
)`,
	`CREATE TABLE IF NOT EXISTS users (
    user_id   BIGINT PRIMARY KEY,
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

// Columns added after the first release.
var migrations = []string{
	`ALTER TABLE chats ADD COLUMN IF NOT EXISTS adder_id BIGINT`,
	`ALTER TABLE chats ADD COLUMN IF NOT EXISTS adder_name TEXT`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS username TEXT`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS is_banned INTEGER DEFAULT 0`,
	`CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username))`,
}

// Migrate creates missing tables. Column migrations that fail are logged and skipped.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	pool := s.db.Pool()
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			s.log.Warn().Err(err).Str("stmt", stmt).Msg("migration skipped")
		}
	}
	return nil
}

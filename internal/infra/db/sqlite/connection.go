package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/infra/metrics"
)

// Open opens the database file, creating parent directories as needed.
// A single connection is shared by every caller.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create dir: %v", domain.ErrConnection, err)
		}
	}
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	dsn := "file:" + path + "?" + q.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping: %v", domain.ErrConnection, err)
	}
	return db, nil
}

// run retries fn once after a dropped connection; database/sql reopens it
// on the next use. A failed ping is reported as domain.ErrConnection.
func (s *SQLiteStore) run(ctx context.Context, fn func(db *sql.DB) error) error {
	err := fn(s.db)
	if !isConnError(err) {
		return err
	}
	s.log.Warn().Err(err).Msg("connection lost, reopening")
	perr := s.db.PingContext(ctx)
	metrics.IncReconnect(perr)
	if perr != nil {
		return fmt.Errorf("%w: %v", domain.ErrConnection, perr)
	}
	return fn(s.db)
}

func isConnError(err error) bool {
	return errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn)
}

// Package db selects the persistence backend at startup.
package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"drive-search-bot/internal/config"
	"drive-search-bot/internal/domain/ports/repository"
	"drive-search-bot/internal/infra/db/postgres"
	"drive-search-bot/internal/infra/db/sqlite"
)

// Open connects to PostgreSQL when a URL is configured and to the SQLite
// file otherwise, then migrates the schema. Errors are fatal for startup.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zerolog.Logger) (repository.Store, error) {
	var store repository.Store
	if cfg.URL != "" {
		dsn := cfg.URL
		if cfg.RequireSSL {
			dsn = withSSLMode(dsn)
		}
		conn, err := postgres.Connect(ctx, dsn, cfg.MaxConns, logger)
		if err != nil {
			return nil, err
		}
		store = postgres.NewPostgresStore(conn, logger)
	} else {
		conn, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		store = sqlite.NewSQLiteStore(conn, logger)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate %s: %w", store.Backend(), err)
	}
	logger.Info().Str("backend", store.Backend()).Msg("store ready")
	return store, nil
}

// withSSLMode adds sslmode=require unless the DSN already sets it.
func withSSLMode(dsn string) string {
	if strings.Contains(dsn, "sslmode=") {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return dsn + " sslmode=require"
	}
	q := u.Query()
	q.Set("sslmode", "require")
	u.RawQuery = q.Encode()
	return u.String()
}

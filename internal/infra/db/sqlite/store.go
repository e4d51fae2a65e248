package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/ports/repository"
	"drive-search-bot/internal/infra/logging"
	"drive-search-bot/internal/infra/metrics"
)

const backendName = "sqlite"

var _ repository.Store = (*SQLiteStore)(nil)

type SQLiteStore struct {
	db  *sql.DB
	log *zerolog.Logger
}

func NewSQLiteStore(db *sql.DB, logger *zerolog.Logger) *SQLiteStore {
	l := logger.With().Str("store", backendName).Logger()
	return &SQLiteStore{db: db, log: &l}
}

func (s *SQLiteStore) Backend() string { return backendName }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) exec(ctx context.Context, q string, args ...any) (int64, error) {
	var affected int64
	err := s.run(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, q, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, s.failed(err, q, args)
	}
	return affected, nil
}

func (s *SQLiteStore) queryRow(ctx context.Context, q string, args []any, dest ...any) (bool, error) {
	err := s.run(ctx, func(db *sql.DB) error {
		return db.QueryRowContext(ctx, q, args...).Scan(dest...)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, s.failed(err, q, args)
	}
	return true, nil
}

func queryAll[T any](ctx context.Context, s *SQLiteStore, q string, args []any, scan func(*sql.Rows) (T, error)) ([]T, error) {
	var out []T
	err := s.run(ctx, func(db *sql.DB) error {
		out = out[:0]
		rows, err := db.QueryContext(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			v, err := scan(rows)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, s.failed(err, q, args)
	}
	return out, nil
}

func (s *SQLiteStore) failed(err error, q string, args []any) error {
	if errors.Is(err, domain.ErrConnection) {
		return err
	}
	metrics.IncStatementError(backendName)
	s.log.Error().Err(err).
		Str("stmt", strings.Join(strings.Fields(q), " ")).
		Interface("params", logging.Params(args)).
		Msg("statement failed")
	return nil
}

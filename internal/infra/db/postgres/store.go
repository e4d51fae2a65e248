package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/ports/repository"
	"drive-search-bot/internal/infra/logging"
	"drive-search-bot/internal/infra/metrics"
)

const backendName = "postgres"

var _ repository.Store = (*PostgresStore)(nil)

// PostgresStore auto-commits every statement; there are no multi-statement transactions.
type PostgresStore struct {
	db  *DB
	log *zerolog.Logger
}

func NewPostgresStore(db *DB, logger *zerolog.Logger) *PostgresStore {
	l := logger.With().Str("store", backendName).Logger()
	return &PostgresStore{db: db, log: &l}
}

func (s *PostgresStore) Backend() string { return backendName }

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

// exec returns rows affected. Statement errors are logged and swallowed.
func (s *PostgresStore) exec(ctx context.Context, q string, args ...any) (int64, error) {
	var affected int64
	err := s.db.run(ctx, func(pool *pgxpool.Pool) error {
		tag, err := pool.Exec(ctx, q, args...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, s.failed(err, q, args)
	}
	return affected, nil
}

// queryRow reports whether a row was found.
func (s *PostgresStore) queryRow(ctx context.Context, q string, args []any, dest ...any) (bool, error) {
	err := s.db.run(ctx, func(pool *pgxpool.Pool) error {
		return pool.QueryRow(ctx, q, args...).Scan(dest...)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, s.failed(err, q, args)
	}
	return true, nil
}

func queryAll[T any](ctx context.Context, s *PostgresStore, q string, args []any, scan func(pgx.Row) (T, error)) ([]T, error) {
	var out []T
	err := s.db.run(ctx, func(pool *pgxpool.Pool) error {
		out = out[:0]
		rows, err := pool.Query(ctx, q, args...)
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

// failed logs a statement error. Only connection loss is returned.
func (s *PostgresStore) failed(err error, q string, args []any) error {
	if errors.Is(err, domain.ErrConnection) {
		return err
	}
	metrics.IncStatementError(backendName)
	s.log.Error().Err(err).
		Str("stmt", compact(q)).
		Interface("params", logging.Params(args)).
		Msg("statement failed")
	return nil
}

func compact(q string) string { return strings.Join(strings.Fields(q), " ") }

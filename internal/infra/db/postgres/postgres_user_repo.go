package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/model"
)

func (s *PostgresStore) TouchUser(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (user_id, name, username, last_seen, is_banned)
VALUES ($1, $2, NULLIF($3, ''), CURRENT_TIMESTAMP, 0)
ON CONFLICT (user_id) DO UPDATE SET
  name = EXCLUDED.name,
  username = EXCLUDED.username,
  last_seen = CURRENT_TIMESTAMP;`
	_, err := s.exec(ctx, q, u.ID, u.Name, u.Username)
	return err
}

const selectUser = `
SELECT user_id, COALESCE(name, ''), COALESCE(username, ''),
       COALESCE(last_seen, CURRENT_TIMESTAMP), COALESCE(is_banned, 0)
  FROM users`

// FindUser returns domain.ErrNotFound when no user matches.
func (s *PostgresStore) FindUser(ctx context.Context, t model.Target) (*model.User, error) {
	q, arg := selectUser+` WHERE user_id = $1`, any(nil)
	if id, ok := t.ID(); ok {
		arg = id
	} else if h, ok := t.Handle(); ok {
		q, arg = selectUser+` WHERE LOWER(username) = LOWER($1) LIMIT 1`, h
	} else {
		return nil, domain.ErrInvalidArgument
	}

	var (
		u      model.User
		seen   time.Time
		banned int
	)
	found, err := s.queryRow(ctx, q, []any{arg}, &u.ID, &u.Name, &u.Username, &seen, &banned)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	u.LastSeen = seen
	u.IsBanned = banned != 0
	return &u, nil
}

func (s *PostgresStore) SetBanned(ctx context.Context, t model.Target, banned bool) (bool, error) {
	flag := 0
	if banned {
		flag = 1
	}
	var (
		n   int64
		err error
	)
	if id, ok := t.ID(); ok {
		n, err = s.exec(ctx, `UPDATE users SET is_banned = $1 WHERE user_id = $2`, flag, id)
	} else if h, ok := t.Handle(); ok {
		n, err = s.exec(ctx, `UPDATE users SET is_banned = $1 WHERE LOWER(username) = LOWER($2)`, flag, h)
	} else {
		return false, domain.ErrInvalidArgument
	}
	return n > 0, err
}

func (s *PostgresStore) IsBanned(ctx context.Context, userID int64) (bool, error) {
	var banned int
	_, err := s.queryRow(ctx, `SELECT COALESCE(is_banned, 0) FROM users WHERE user_id = $1`, []any{userID}, &banned)
	return banned != 0, err
}

func (s *PostgresStore) ListUserIDs(ctx context.Context) ([]int64, error) {
	return queryAll(ctx, s, `SELECT user_id FROM users ORDER BY user_id`, nil, func(row pgx.Row) (int64, error) {
		var id int64
		err := row.Scan(&id)
		return id, err
	})
}

func (s *PostgresStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	_, err := s.queryRow(ctx, `SELECT COUNT(*) FROM users`, nil, &n)
	return n, err
}

func (s *PostgresStore) CountActiveUsers(ctx context.Context, days int) (int, error) {
	var n int
	_, err := s.queryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE last_seen >= NOW() - make_interval(days => $1)`,
		[]any{int32(days)}, &n)
	return n, err
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/model"
)

func (s *SQLiteStore) TouchUser(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (user_id, name, username, last_seen, is_banned)
VALUES (?, ?, NULLIF(?, ''), CURRENT_TIMESTAMP, 0)
ON CONFLICT (user_id) DO UPDATE SET
  name = excluded.name,
  username = excluded.username,
  last_seen = CURRENT_TIMESTAMP;`
	_, err := s.exec(ctx, q, u.ID, u.Name, u.Username)
	return err
}

// last_seen is stored as text; it is read back as unix seconds.
const selectUser = `
SELECT user_id, COALESCE(name, ''), COALESCE(username, ''),
       CAST(strftime('%s', COALESCE(last_seen, CURRENT_TIMESTAMP)) AS INTEGER),
       COALESCE(is_banned, 0)
  FROM users`

func (s *SQLiteStore) FindUser(ctx context.Context, t model.Target) (*model.User, error) {
	var (
		q   string
		arg any
	)
	if id, ok := t.ID(); ok {
		q, arg = selectUser+` WHERE user_id = ?`, id
	} else if h, ok := t.Handle(); ok {
		q, arg = selectUser+` WHERE LOWER(username) = LOWER(?) LIMIT 1`, h
	} else {
		return nil, domain.ErrInvalidArgument
	}

	var (
		u      model.User
		seen   int64
		banned int
	)
	found, err := s.queryRow(ctx, q, []any{arg}, &u.ID, &u.Name, &u.Username, &seen, &banned)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	u.LastSeen = time.Unix(seen, 0).UTC()
	u.IsBanned = banned != 0
	return &u, nil
}

func (s *SQLiteStore) SetBanned(ctx context.Context, t model.Target, banned bool) (bool, error) {
	flag := 0
	if banned {
		flag = 1
	}
	var (
		n   int64
		err error
	)
	if id, ok := t.ID(); ok {
		n, err = s.exec(ctx, `UPDATE users SET is_banned = ? WHERE user_id = ?`, flag, id)
	} else if h, ok := t.Handle(); ok {
		n, err = s.exec(ctx, `UPDATE users SET is_banned = ? WHERE LOWER(username) = LOWER(?)`, flag, h)
	} else {
		return false, domain.ErrInvalidArgument
	}
	return n > 0, err
}

func (s *SQLiteStore) IsBanned(ctx context.Context, userID int64) (bool, error) {
	var banned int
	_, err := s.queryRow(ctx, `SELECT COALESCE(is_banned, 0) FROM users WHERE user_id = ?`, []any{userID}, &banned)
	return banned != 0, err
}

func (s *SQLiteStore) ListUserIDs(ctx context.Context) ([]int64, error) {
	return queryAll(ctx, s, `SELECT user_id FROM users ORDER BY user_id`, nil, func(rows *sql.Rows) (int64, error) {
		var id int64
		err := rows.Scan(&id)
		return id, err
	})
}

func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	_, err := s.queryRow(ctx, `SELECT COUNT(*) FROM users`, nil, &n)
	return n, err
}

func (s *SQLiteStore) CountActiveUsers(ctx context.Context, days int) (int, error) {
	var n int
	_, err := s.queryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE last_seen >= datetime('now', ?)`,
		[]any{fmt.Sprintf("-%d days", days)}, &n)
	return n, err
}

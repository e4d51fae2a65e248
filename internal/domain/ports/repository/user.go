package repository

import (
	"context"

	"drive-search-bot/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	// TouchUser inserts the user or refreshes name, username and last_seen.
	// The ban flag of an existing row is preserved.
	TouchUser(ctx context.Context, u *model.User) error
	FindUser(ctx context.Context, t model.Target) (*model.User, error)
	// SetBanned reports whether a user matched the target.
	SetBanned(ctx context.Context, t model.Target, banned bool) (bool, error)
	IsBanned(ctx context.Context, userID int64) (bool, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
	CountUsers(ctx context.Context) (int, error)
	CountActiveUsers(ctx context.Context, days int) (int, error)
}

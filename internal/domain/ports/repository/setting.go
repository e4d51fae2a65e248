package repository

import "context"

// Well-known setting keys.
const (
	SettingDriveToken    = "gdrive_token"
	SettingTotalSearches = "total_searches"
)

type SettingRepository interface {
	GetSetting(ctx context.Context, key, def string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ClearSetting(ctx context.Context, key string) error
	IncrementCounter(ctx context.Context, key string) error
	Counter(ctx context.Context, key string) (int64, error)
}

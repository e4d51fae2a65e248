package repository

import "context"

// Store is the persistence surface shared by every backend. Statement
// failures are logged by the implementation and surface as empty results;
// only domain.ErrConnection is returned to callers.
type Store interface {
	ChatRepository
	FileRepository
	UserRepository
	SettingRepository

	Migrate(ctx context.Context) error
	Backend() string
	Close() error
}

package adapter

import (
	"context"

	"drive-search-bot/internal/domain/model"
)

// ProgressFunc receives the completed fraction in [0, 1].
type ProgressFunc func(fraction float64)

// DriveService is the file surface of Google Drive. Errors wrap
// domain.ErrUnauthenticated, ErrTransient, ErrForbidden, ErrNotFound or ErrDrive.
type DriveService interface {
	Search(ctx context.Context, query string) ([]model.DriveItem, error)
	ListAll(ctx context.Context) ([]model.DriveItem, error)
	RecursiveCount(ctx context.Context, rootID string) (int, error)
	Metadata(ctx context.Context, fileID string) (model.DriveItem, error)
	Delete(ctx context.Context, fileID string) error
	// Download writes the file into a directory of its own and returns its path.
	Download(ctx context.Context, fileID, name string, progress ProgressFunc) (string, error)
}

// DriveAuth drives the OAuth installed-app flow.
type DriveAuth interface {
	IsAuthenticated(ctx context.Context) bool
	AuthURL() (string, error)
	Exchange(ctx context.Context, code string) error
}

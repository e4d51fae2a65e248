package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
	"drive-search-bot/internal/domain/ports/repository"
	"drive-search-bot/internal/infra/logging"
)

// ActiveWindowDays bounds "monthly active users".
const ActiveWindowDays = 30

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	// Collect gathers the dashboard. When deep is false the recursive Drive
	// count is skipped.
	Collect(ctx context.Context, deep bool) (model.Stats, error)
}

type statsUC struct {
	store    repository.Store
	drive    adapter.DriveService
	folderID string

	log *zerolog.Logger
}

func NewStatsUseCase(store repository.Store, drive adapter.DriveService, folderID string, logger *zerolog.Logger) *statsUC {
	return &statsUC{store: store, drive: drive, folderID: folderID, log: logger}
}

func (s *statsUC) Collect(ctx context.Context, deep bool) (model.Stats, error) {
	defer logging.TraceDuration(s.log, "StatsUC.Collect")()

	var st model.Stats
	var err error
	if st.Users, err = s.store.CountUsers(ctx); err != nil {
		return st, err
	}
	if st.ActiveUsers, err = s.store.CountActiveUsers(ctx, ActiveWindowDays); err != nil {
		return st, err
	}
	if st.Chats, err = s.store.ChatStats(ctx); err != nil {
		return st, err
	}
	if st.IndexedFiles, err = s.store.CountFiles(ctx); err != nil {
		return st, err
	}
	if st.TotalSearches, err = s.store.Counter(ctx, repository.SettingTotalSearches); err != nil {
		return st, err
	}

	if deep && s.drive != nil {
		n, err := s.drive.RecursiveCount(ctx, s.folderID)
		if err != nil {
			s.log.Warn().Err(err).Msg("drive file count unavailable")
		} else {
			st.DriveFiles, st.DriveCounted = n, true
		}
	}
	return st, nil
}

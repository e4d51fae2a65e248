package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
	"drive-search-bot/internal/domain/ports/repository"
	"drive-search-bot/internal/infra/metrics"
)

// Search sources. Inline queries fire on every keystroke and are not
// counted towards the total_searches statistic.
const (
	SourcePrivate = "private"
	SourceGroup   = "group"
	SourceInline  = "inline"
	SourceDelete  = "delete"
)

var _ SearchUseCase = (*searchUC)(nil)

type SearchUseCase interface {
	Search(ctx context.Context, query, source string) ([]model.DriveItem, error)
	TotalSearches(ctx context.Context) (int64, error)
}

type searchUC struct {
	drive    adapter.DriveService
	settings repository.SettingRepository
	log      *zerolog.Logger
}

func NewSearchUseCase(drive adapter.DriveService, settings repository.SettingRepository, logger *zerolog.Logger) *searchUC {
	return &searchUC{drive: drive, settings: settings, log: logger}
}

func (s *searchUC) Search(ctx context.Context, query, source string) ([]model.DriveItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidArgument
	}
	items, err := s.drive.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	metrics.IncSearch(source)
	if source != SourceInline {
		if err := s.settings.IncrementCounter(ctx, repository.SettingTotalSearches); err != nil {
			s.log.Warn().Err(err).Msg("increment search counter")
		}
	}
	return items, nil
}

func (s *searchUC) TotalSearches(ctx context.Context) (int64, error) {
	return s.settings.Counter(ctx, repository.SettingTotalSearches)
}

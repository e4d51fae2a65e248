package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
	"drive-search-bot/internal/domain/ports/repository"
	"drive-search-bot/internal/infra/metrics"
)

var _ BroadcastUseCase = (*broadcastUC)(nil)

type BroadcastUseCase interface {
	// Send copies every queued message, in order, to every known user.
	Send(ctx context.Context, queue []model.QueuedMessage) (model.BroadcastReport, error)
}

type broadcastUC struct {
	users repository.UserRepository
	bot   adapter.Messenger
	pace  time.Duration
	log   *zerolog.Logger
}

// NewBroadcastUseCase paces individual copies pace apart. A zero pace disables pacing.
func NewBroadcastUseCase(users repository.UserRepository, bot adapter.Messenger, pace time.Duration, logger *zerolog.Logger) *broadcastUC {
	return &broadcastUC{users: users, bot: bot, pace: pace, log: logger}
}

func (uc *broadcastUC) Send(ctx context.Context, queue []model.QueuedMessage) (model.BroadcastReport, error) {
	var report model.BroadcastReport
	if len(queue) == 0 {
		return report, domain.ErrEmptyQueue
	}
	ids, err := uc.users.ListUserIDs(ctx)
	if err != nil {
		return report, err
	}
	report.Recipients = len(ids)
	limiter := newPacer(uc.pace)

	uc.log.Info().Int("recipients", len(ids)).Int("messages", len(queue)).Msg("broadcast started")
	for _, id := range ids {
		ok := true
		for _, msg := range queue {
			if err := limiter.Wait(ctx); err != nil {
				return report, err
			}
			report.Attempts++
			err := uc.bot.CopyMessage(ctx, model.ChatRef{ID: id}, msg.ChatID, msg.MessageID)
			metrics.IncBroadcastDelivery(err)
			if err != nil {
				ok = false
				uc.log.Debug().Err(err).Int64("tg_id", id).Msg("broadcast copy failed")
			}
		}
		if ok {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	uc.log.Info().Int("succeeded", report.Succeeded).Int("failed", report.Failed).Msg("broadcast finished")
	return report, nil
}

func newPacer(every time.Duration) *rate.Limiter {
	if every <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(every), 1)
}

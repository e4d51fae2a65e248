package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"drive-search-bot/internal/application"
	"drive-search-bot/internal/config"
	"drive-search-bot/internal/infra/logging"
	"drive-search-bot/internal/infra/metrics"
	red "drive-search-bot/internal/infra/redis"
	"drive-search-bot/internal/infra/worker"
)

var allowedUpdates = []string{"message", "channel_post", "callback_query", "inline_query", "my_chat_member"}

// RealTelegramBotAdapter long-polls Telegram and dispatches every update to
// the worker pool, which runs it through BotFacade.
type RealTelegramBotAdapter struct {
	api         botClient
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	pool        *worker.Pool
	bulk        *worker.Pool
	newID       func() string
	log         *zerolog.Logger

	cancelPolling context.CancelFunc
}

// NewRealTelegramBotAdapter wires the router. rateLimiter may be nil.
func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	bot *tgbotapi.BotAPI,
	facade *application.BotFacade,
	rateLimiter *red.RateLimiter,
	pool *worker.Pool,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if bot == nil {
		return nil, errors.New("bot api is nil")
	}
	return newAdapter(cfg, bot, facade, rateLimiter, pool, logger)
}

func newAdapter(cfg *config.BotConfig, api botClient, facade *application.BotFacade, rateLimiter *red.RateLimiter, pool *worker.Pool, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if pool == nil {
		pool = worker.NewPool(cfg.Workers, logger)
	}
	return &RealTelegramBotAdapter{
		api:         api,
		cfg:         cfg,
		facade:      facade,
		rateLimiter: rateLimiter,
		pool:        pool,
		bulk:        worker.NewPool(cfg.BulkWorkers, logger),
		newID:       uuid.NewString,
		log:         logger,
	}, nil
}

// StartPolling blocks until ctx is cancelled or StopPolling is called.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = allowedUpdates
	updates := r.api.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel
	defer cancel()

	r.pool.Start(ctx)
	defer r.pool.Stop()
	r.bulk.Start(ctx)
	defer r.bulk.Stop()
	r.log.Info().Int("workers", r.pool.Size()).Int("bulk_workers", r.bulk.Size()).Msg("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			r.api.StopReceivingUpdates()
			r.log.Info().Msg("telegram polling stopped")
			return nil
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			if err := r.pool.Submit(ctx, func(ctx context.Context) error { return r.handleUpdate(ctx, up) }); err != nil {
				r.log.Warn().Err(err).Int("update_id", up.UpdateID).Msg("update dropped")
			}
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, up tgbotapi.Update) error {
	ctx = logging.WithTraceID(ctx, r.newID())
	switch {
	case up.CallbackQuery != nil:
		metrics.IncTelegramUpdate("callback")
		return r.handleQuery(ctx, up.CallbackQuery)
	case up.InlineQuery != nil:
		metrics.IncTelegramUpdate("inline")
		return r.handleInline(ctx, up.InlineQuery)
	case up.MyChatMember != nil:
		metrics.IncTelegramUpdate("member")
		return r.handleMyChatMember(ctx, up.MyChatMember)
	case up.ChannelPost != nil:
		metrics.IncTelegramUpdate("channel_post")
		return r.indexDocument(ctx, up.ChannelPost)
	case up.Message != nil:
		metrics.IncTelegramUpdate("message")
		return r.handleMessage(ctx, up.Message)
	}
	return nil
}

func (r *RealTelegramBotAdapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil || msg.From.IsBot || msg.Chat == nil {
		return nil
	}
	in := toInbound(msg)
	ctx = logging.WithChatID(logging.WithTgID(ctx, in.UserID), in.ChatID)

	if !msg.Chat.IsPrivate() {
		if err := r.indexDocument(ctx, msg); err != nil {
			logging.With(ctx, r.log).Warn().Err(err).Msg("index document")
		}
	}
	if in.IsCommand() {
		if addressedElsewhere(msg, r.cfg.Username) {
			return nil
		}
		return r.handleCommand(ctx, in)
	}
	switch {
	case msg.Chat.IsPrivate():
		return r.handlePrivate(ctx, in)
	case msg.Chat.IsGroup() || msg.Chat.IsSuperGroup():
		return r.handleGroupText(ctx, in)
	}
	return nil
}

// handlePrivate gates free text: non-members are prompted to join, banned
// users are ignored.
func (r *RealTelegramBotAdapter) handlePrivate(ctx context.Context, in application.Inbound) error {
	if !r.allow(ctx, in, "message") {
		return nil
	}
	switch r.facade.Gate().Check(ctx, in.UserID, in.Username) {
	case application.NotMember:
		return r.facade.JoinPrompt(ctx, in.ChatID)
	case application.Banned:
		return nil
	}
	return r.facade.PrivateMessage(ctx, in)
}

// handleGroupText searches group chatter silently: failed gating posts nothing.
func (r *RealTelegramBotAdapter) handleGroupText(ctx context.Context, in application.Inbound) error {
	if _, ok := application.GroupQuery(in.Text); !ok {
		return nil
	}
	if r.facade.Gate().Check(ctx, in.UserID, in.Username) != application.Allowed {
		return nil
	}
	return r.facade.GroupMessage(ctx, in)
}

func (r *RealTelegramBotAdapter) handleMyChatMember(ctx context.Context, upd *tgbotapi.ChatMemberUpdated) error {
	chat, ok := trackedChat(upd)
	if !ok {
		r.log.Debug().Int64("chat_id", upd.Chat.ID).Str("status", upd.NewChatMember.Status).Msg("membership change ignored")
		return nil
	}
	if err := r.facade.TrackChat(ctx, chat); err != nil {
		return err
	}
	r.log.Info().Int64("chat_id", chat.ID).Str("type", chat.Type).Str("title", chat.Title).
		Str("added_by", chat.AdderName).Msg("bot added to chat")
	return nil
}

func (r *RealTelegramBotAdapter) indexDocument(ctx context.Context, msg *tgbotapi.Message) error {
	file, ok := indexedFile(msg)
	if !ok {
		return nil
	}
	return r.facade.IndexDocument(ctx, file)
}

// allow applies the per-user rate limit. Admins are exempt and Redis
// failures let the update through.
func (r *RealTelegramBotAdapter) allow(ctx context.Context, in application.Inbound, key string) bool {
	if r.rateLimiter == nil || in.UserID == 0 {
		return true
	}
	if r.facade.Gate().IsAdmin(in.UserID, in.Username) {
		return true
	}
	ok, err := r.rateLimiter.AllowCommand(ctx, in.UserID, key)
	if err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Msg("rate limiter unavailable")
		return true
	}
	if !ok {
		metrics.IncRateLimitTriggered()
		if in.IsPrivate() {
			_ = r.facade.Notify(ctx, in.ChatID, "gate.rate_limited")
		}
	}
	return ok
}

// offload runs a long task on the bulk pool so polling workers stay free.
// When every bulk slot is taken the user is told to retry instead.
func (r *RealTelegramBotAdapter) offload(ctx context.Context, chatID int64, name string, task func(ctx context.Context) error) error {
	err := r.bulk.TrySubmit(func(context.Context) error { return task(ctx) })
	if errors.Is(err, worker.ErrQueueFull) {
		logging.With(ctx, r.log).Warn().Str("task", name).Msg("bulk queue full")
		return r.facade.Notify(ctx, chatID, "gate.busy")
	}
	return err
}

func (r *RealTelegramBotAdapter) answerCallback(id, text string, alert bool) {
	cb := tgbotapi.NewCallback(id, text)
	if alert {
		cb = tgbotapi.NewCallbackWithAlert(id, text)
	}
	if _, err := r.api.Request(cb); err != nil {
		r.log.Debug().Err(err).Msg("answer callback")
	}
}

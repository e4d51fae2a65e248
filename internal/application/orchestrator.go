package application

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
	"drive-search-bot/internal/domain/ports/repository"
	"drive-search-bot/internal/infra/logging"
	"drive-search-bot/internal/infra/metrics"
	"drive-search-bot/internal/usecase"
)

var modeIntro = map[model.Mode]string{
	model.ModeBroadcasting:        "broadcast.enter",
	model.ModeRequesting:          "request.enter",
	model.ModeAwaitingDeleteQuery: "delete.enter",
	model.ModeAwaitingBanTarget:   "ban.enter",
	model.ModeAwaitingUnbanTarget: "unban.enter",
}

// Orchestrator owns the per-user interaction modes. Commands are always
// dispatched; only free messages are captured by an active mode.
type Orchestrator struct {
	sessions    repository.SessionStore
	bot         adapter.Messenger
	tr          Translator
	users       usecase.UserUseCase
	broadcast   usecase.BroadcastUseCase
	search      *SearchFlow
	requestChat model.ChatRef
	log         *zerolog.Logger
}

func NewOrchestrator(
	sessions repository.SessionStore,
	bot adapter.Messenger,
	tr Translator,
	users usecase.UserUseCase,
	broadcast usecase.BroadcastUseCase,
	search *SearchFlow,
	requestChat model.ChatRef,
	logger *zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		sessions:    sessions,
		bot:         bot,
		tr:          tr,
		users:       users,
		broadcast:   broadcast,
		search:      search,
		requestChat: requestChat,
		log:         logger,
	}
}

func (o *Orchestrator) Mode(userID int64) model.Mode { return o.sessions.Mode(userID) }

// EnterMode replaces whatever mode the user was in and sends the instructions.
func (o *Orchestrator) EnterMode(ctx context.Context, in Inbound, mode model.Mode) error {
	o.sessions.SetMode(in.UserID, mode)
	metrics.IncModeEntered(mode.String())
	logging.With(ctx, o.log).Debug().Str("mode", mode.String()).Msg("mode entered")
	return o.reply(ctx, in.ChatID, o.tr.T(modeIntro[mode]))
}

// Interrupt cancels a target-awaiting mode when a command arrives instead.
func (o *Orchestrator) Interrupt(in Inbound) bool {
	if !in.IsCommand() {
		return false
	}
	mode := o.sessions.Mode(in.UserID)
	if !mode.CancelledByCommand() {
		return false
	}
	o.sessions.ClearMode(in.UserID)
	return true
}

// HandleMessage routes a non-command private message to the active mode.
// It reports false when the user is idle.
func (o *Orchestrator) HandleMessage(ctx context.Context, in Inbound) (bool, error) {
	if in.IsCommand() {
		return false, nil
	}
	switch mode := o.sessions.Mode(in.UserID); mode {
	case model.ModeBroadcasting:
		n := o.sessions.Enqueue(in.UserID, model.QueuedMessage{ChatID: in.ChatID, MessageID: in.MessageID})
		return true, o.reply(ctx, in.ChatID, o.tr.T("broadcast.queued", n))

	case model.ModeRequesting:
		o.sessions.ClearMode(in.UserID)
		if err := o.forwardRequest(ctx, in); err != nil {
			logging.With(ctx, o.log).Error().Err(err).Str("request_chat", o.requestChat.String()).Msg("forward request")
			return true, o.reply(ctx, in.ChatID, o.tr.T("request.failed"))
		}
		return true, o.reply(ctx, in.ChatID, o.tr.T("request.sent"))

	case model.ModeAwaitingDeleteQuery:
		o.sessions.ClearMode(in.UserID)
		query := strings.TrimSpace(in.Text)
		if query == "" {
			return true, o.reply(ctx, in.ChatID, o.tr.T("search.usage"))
		}
		return true, o.search.Reply(ctx, in, query, StyleDelete)

	case model.ModeAwaitingBanTarget, model.ModeAwaitingUnbanTarget:
		o.sessions.ClearMode(in.UserID)
		return true, o.applyBan(ctx, in, mode == model.ModeAwaitingBanTarget)
	}
	return false, nil
}

func (o *Orchestrator) forwardRequest(ctx context.Context, in Inbound) error {
	if o.requestChat.IsZero() {
		return errors.New("request chat not configured")
	}
	if err := o.bot.CopyMessage(ctx, o.requestChat, in.ChatID, in.MessageID); err != nil {
		return err
	}
	handle := o.tr.T("common.no_username")
	if in.Username != "" {
		handle = "@" + in.Username
	}
	_, err := o.bot.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:          o.requestChat.ID,
		ChannelUsername: o.requestChat.Username,
		Text:            o.tr.T("request.info", in.Name, handle, in.UserID),
	})
	return err
}

func (o *Orchestrator) applyBan(ctx context.Context, in Inbound, ban bool) error {
	raw := strings.TrimSpace(in.Text)
	target, err := model.ParseTarget(raw)
	if err != nil {
		return o.reply(ctx, in.ChatID, o.tr.T("ban.not_found", raw))
	}
	found, err := o.users.SetBan(ctx, target, ban)
	if err != nil {
		logging.With(ctx, o.log).Error().Err(err).Str("target", target.String()).Msg("set ban")
		return o.reply(ctx, in.ChatID, o.tr.T("error.generic"))
	}
	if !found {
		return o.reply(ctx, in.ChatID, o.tr.T("ban.not_found", target.String()))
	}
	if ban {
		return o.reply(ctx, in.ChatID, o.tr.T("ban.done", target.String()))
	}
	return o.reply(ctx, in.ChatID, o.tr.T("unban.done", target.String()))
}

// SendNow drains the admin's queue to every known user. The mode and queue
// are reset whatever the outcome; an empty queue keeps the mode.
func (o *Orchestrator) SendNow(ctx context.Context, in Inbound) error {
	queue := o.sessions.Queue(in.UserID)
	if len(queue) == 0 {
		return o.reply(ctx, in.ChatID, o.tr.T("broadcast.empty"))
	}
	defer o.sessions.ClearMode(in.UserID)
	defer o.sessions.ClearQueue(in.UserID)

	statusID, _ := o.bot.SendMessage(ctx, adapter.SendMessageParams{
		ChatID: in.ChatID,
		Text:   o.tr.T("broadcast.started", len(queue)),
	})
	report, err := o.broadcast.Send(ctx, queue)
	text := o.tr.T("broadcast.done", report.Succeeded, report.Failed)
	if err != nil && !errors.Is(err, domain.ErrEmptyQueue) {
		logging.With(ctx, o.log).Error().Err(err).Msg("broadcast aborted")
		text = o.tr.T("broadcast.aborted", report.Succeeded, report.Failed)
	}
	return o.editOrReply(ctx, in.ChatID, statusID, text)
}

// ClearBroadcast drops the queue and leaves broadcast mode without sending.
func (o *Orchestrator) ClearBroadcast(ctx context.Context, in Inbound) error {
	o.sessions.ClearQueue(in.UserID)
	o.sessions.ClearMode(in.UserID)
	return o.reply(ctx, in.ChatID, o.tr.T("broadcast.cleared"))
}

func (o *Orchestrator) reply(ctx context.Context, chatID int64, text string) error {
	_, err := o.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: text})
	return err
}

func (o *Orchestrator) editOrReply(ctx context.Context, chatID int64, msgID int, text string) error {
	if msgID != 0 {
		if err := o.bot.EditMessage(ctx, chatID, msgID, text, nil); err == nil {
			return nil
		}
	}
	return o.reply(ctx, chatID, text)
}

package application

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"drive-search-bot/internal/config"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
	"drive-search-bot/internal/infra/logging"
	"drive-search-bot/internal/usecase"
)

// authCodeMinLen separates pasted OAuth codes from ordinary searches.
const authCodeMinLen = 20

// Services groups the collaborators of BotFacade.
type Services struct {
	Users      usecase.UserUseCase
	Search     usecase.SearchUseCase
	Duplicates usecase.DuplicateUseCase
	Stats      usecase.StatsUseCase
	Chats      usecase.ChatUseCase
	Drive      adapter.DriveService
	Auth       adapter.DriveAuth
}

// BotFacade composes usecases into the bot's conversations. Every method
// replies through the Messenger itself so long flows can edit progress.
type BotFacade struct {
	cfg     config.BotConfig
	bot     adapter.Messenger
	tr      Translator
	gate    *Gatekeeper
	orch    *Orchestrator
	search  *SearchFlow
	svc     Services
	backend string
	log     *zerolog.Logger
}

func NewBotFacade(
	cfg config.BotConfig,
	bot adapter.Messenger,
	tr Translator,
	gate *Gatekeeper,
	orch *Orchestrator,
	search *SearchFlow,
	svc Services,
	backend string,
	logger *zerolog.Logger,
) *BotFacade {
	return &BotFacade{
		cfg:     cfg,
		bot:     bot,
		tr:      tr,
		gate:    gate,
		orch:    orch,
		search:  search,
		svc:     svc,
		backend: backend,
		log:     logger,
	}
}

func (b *BotFacade) Gate() *Gatekeeper { return b.gate }

func (b *BotFacade) Orchestrator() *Orchestrator { return b.orch }

// Touch registers the sender or refreshes last_seen.
func (b *BotFacade) Touch(ctx context.Context, in Inbound) {
	if in.UserID <= 0 {
		return
	}
	if err := b.svc.Users.Touch(ctx, in.UserID, in.Name, in.Username); err != nil {
		logging.With(ctx, b.log).Warn().Err(err).Msg("touch user")
	}
}

// Notify sends a translated message.
func (b *BotFacade) Notify(ctx context.Context, chatID int64, key string, args ...any) error {
	return b.reply(ctx, chatID, b.tr.T(key, args...))
}

func (b *BotFacade) T(key string, args ...any) string { return b.tr.T(key, args...) }

// JoinPrompt asks the user to join the required channel first.
func (b *BotFacade) JoinPrompt(ctx context.Context, chatID int64) error {
	link := b.channelLink()
	var rows [][]adapter.InlineButton
	if link != "" {
		rows = [][]adapter.InlineButton{{{Text: b.tr.T("gate.join_button"), URL: link}}}
	}
	_, err := b.bot.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:  chatID,
		Text:    b.tr.T("gate.join_required", link),
		Buttons: rows,
	})
	return err
}

func (b *BotFacade) channelLink() string {
	if b.cfg.ChannelLink != "" {
		return b.cfg.ChannelLink
	}
	ref := model.ParseChatRef(b.cfg.RequiredChannel)
	if ref.Username != "" {
		return "https://t.me/" + strings.TrimPrefix(ref.Username, "@")
	}
	return ""
}

func (b *BotFacade) reply(ctx context.Context, chatID int64, text string) error {
	_, err := b.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: text})
	return err
}

func (b *BotFacade) replyButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	_, err := b.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: text, Buttons: rows})
	return err
}

// status posts a placeholder that later steps edit in place.
func (b *BotFacade) status(ctx context.Context, chatID int64, text string) int {
	id, err := b.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		logging.With(ctx, b.log).Warn().Err(err).Msg("send status message")
	}
	return id
}

func (b *BotFacade) editOrReply(ctx context.Context, chatID int64, msgID int, text string) error {
	if msgID != 0 {
		if err := b.bot.EditMessage(ctx, chatID, msgID, text, nil); err == nil {
			return nil
		}
	}
	return b.reply(ctx, chatID, text)
}

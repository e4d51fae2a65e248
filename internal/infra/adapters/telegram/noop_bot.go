package telegram

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
)

var _ adapter.Messenger = (*NoopMessenger)(nil)

// NoopMessenger logs outgoing messages instead of sending them. It backs the
// diagnostics CLI, where replies are rendered without a Telegram connection.
type NoopMessenger struct {
	nextID atomic.Int64
	log    *zerolog.Logger
}

func NewNoopMessenger(logger *zerolog.Logger) *NoopMessenger {
	return &NoopMessenger{log: logger}
}

func (b *NoopMessenger) SendMessage(ctx context.Context, p adapter.SendMessageParams) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	id := int(b.nextID.Add(1))
	ev := b.log.Info().Int64("chat_id", p.ChatID).Int("message_id", id)
	if p.ChannelUsername != "" {
		ev = ev.Str("channel", p.ChannelUsername)
	}
	ev.Interface("buttons", p.Buttons).Msg(p.Text)
	return id, nil
}

func (b *NoopMessenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	b.log.Info().Int64("chat_id", chatID).Int("message_id", messageID).Interface("buttons", rows).Msg("(edit) " + text)
	return ctx.Err()
}

func (b *NoopMessenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	b.log.Debug().Int64("chat_id", chatID).Int("message_id", messageID).Msg("(delete)")
	return ctx.Err()
}

func (b *NoopMessenger) CopyMessage(ctx context.Context, to model.ChatRef, fromChatID int64, messageID int) error {
	b.log.Info().Str("to", to.String()).Int64("from_chat", fromChatID).Int("message_id", messageID).Msg("(copy)")
	return ctx.Err()
}

// MemberStatus treats everyone as a member.
func (b *NoopMessenger) MemberStatus(ctx context.Context, _ model.ChatRef, _ int64) (adapter.MemberStatus, error) {
	return adapter.MemberMember, ctx.Err()
}

func (b *NoopMessenger) SendDocument(ctx context.Context, chatID int64, path, caption string) error {
	b.log.Info().Int64("chat_id", chatID).Str("path", path).Msg("(document) " + caption)
	return ctx.Err()
}

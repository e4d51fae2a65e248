package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
)

// botClient is the part of *tgbotapi.BotAPI the adapter uses.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

var _ adapter.Messenger = (*Messenger)(nil)

// Messenger implements adapter.Messenger with the Telegram Bot API.
type Messenger struct {
	api botClient
	log *zerolog.Logger
}

func NewMessenger(bot *tgbotapi.BotAPI, logger *zerolog.Logger) *Messenger {
	return &Messenger{api: bot, log: logger}
}

func (m *Messenger) SendMessage(ctx context.Context, p adapter.SendMessageParams) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var msg tgbotapi.MessageConfig
	if p.ChannelUsername != "" {
		msg = tgbotapi.NewMessageToChannel(p.ChannelUsername, p.Text)
	} else {
		msg = tgbotapi.NewMessage(p.ChatID, p.Text)
	}
	msg.ParseMode = p.ParseMode
	msg.ReplyToMessageID = p.ReplyTo
	msg.DisableWebPagePreview = true
	if kb, ok := keyboard(p.Buttons); ok {
		msg.ReplyMarkup = kb
	}
	sent, err := m.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// EditMessage replaces the text of a message. Re-sending identical text is
// not an error.
func (m *Messenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.DisableWebPagePreview = true
	if kb, ok := keyboard(rows); ok {
		edit.ReplyMarkup = &kb
	}
	_, err := m.api.Send(edit)
	if isNotModified(err) {
		return nil
	}
	return err
}

func (m *Messenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (m *Messenger) CopyMessage(ctx context.Context, to model.ChatRef, fromChatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := tgbotapi.NewCopyMessage(to.ID, fromChatID, messageID)
	if to.Username != "" {
		cfg.ChatID = 0
		cfg.ChannelUsername = to.Username
	}
	_, err := m.api.Request(cfg)
	return err
}

// MemberStatus maps "user not found" to MemberLeft: Telegram answers that way
// for users who never joined.
func (m *Messenger) MemberStatus(ctx context.Context, chat model.ChatRef, userID int64) (adapter.MemberStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	member, err := m.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID:             chat.ID,
			SuperGroupUsername: chat.Username,
			UserID:             userID,
		},
	})
	if err != nil {
		if isUserNotFound(err) {
			return adapter.MemberLeft, nil
		}
		return "", err
	}
	return adapter.MemberStatus(member.Status), nil
}

func (m *Messenger) SendDocument(ctx context.Context, chatID int64, path, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	_, err := m.api.Send(doc)
	return err
}

// keyboard builds inline markup. A button with a URL opens a link, one with
// Data sends a callback; a bare button falls back to its label as data.
func keyboard(rows [][]adapter.InlineButton) (tgbotapi.InlineKeyboardMarkup, bool) {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, r)
	}
	if len(kbRows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...), true
}

func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

func isUserNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "user not found") || strings.Contains(msg, "participant_id_invalid")
}

// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"drive-search-bot/internal/domain/model"
)

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// SendMessageParams addresses either ChatID or a public ChannelUsername.
type SendMessageParams struct {
	ChatID          int64
	ChannelUsername string
	Text            string
	ParseMode       string
	ReplyTo         int
	Buttons         [][]InlineButton
}

// MemberStatus values mirror Telegram's chat member statuses.
type MemberStatus string

const (
	MemberCreator       MemberStatus = "creator"
	MemberAdministrator MemberStatus = "administrator"
	MemberMember        MemberStatus = "member"
	MemberRestricted    MemberStatus = "restricted"
	MemberLeft          MemberStatus = "left"
	MemberKicked        MemberStatus = "kicked"
)

func (s MemberStatus) Joined() bool {
	return s == MemberCreator || s == MemberAdministrator || s == MemberMember
}

// Messenger is the subset of the Telegram Bot API the application needs.
type Messenger interface {
	SendMessage(ctx context.Context, p SendMessageParams) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]InlineButton) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	CopyMessage(ctx context.Context, to model.ChatRef, fromChatID int64, messageID int) error
	MemberStatus(ctx context.Context, chat model.ChatRef, userID int64) (MemberStatus, error)
	SendDocument(ctx context.Context, chatID int64, path, caption string) error
}

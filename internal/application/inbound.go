package application

import "drive-search-bot/internal/domain/model"

// Inbound is the platform-neutral view of an incoming message or button press.
type Inbound struct {
	ChatID    int64
	ChatType  string
	MessageID int
	UserID    int64
	Name      string
	Username  string
	Text      string
	// Command is the lower-cased command without slash or bot suffix.
	Command  string
	Args     string
	HasMedia bool
}

func (in Inbound) IsPrivate() bool { return in.ChatType == model.ChatTypePrivate }

func (in Inbound) IsCommand() bool { return in.Command != "" }

// Translator renders user-facing text.
type Translator interface {
	T(key string, args ...any) string
}

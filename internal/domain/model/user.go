package model

import (
	"strings"
	"time"

	"drive-search-bot/internal/domain"
)

// User is a Telegram user that has interacted with the bot.
type User struct {
	ID       int64
	Name     string
	Username string
	LastSeen time.Time
	IsBanned bool
}

func NewUser(id int64, name, username string) (*User, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Username: strings.TrimPrefix(username, "@"),
		LastSeen: time.Now(),
	}, nil
}

// Mention renders the user for operator-facing messages.
func (u *User) Mention() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.Name != "" {
		return u.Name
	}
	return "unknown"
}

func (u *User) Touch() { u.LastSeen = time.Now() }

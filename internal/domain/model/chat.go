package model

import "strings"

// Chat types as reported by Telegram.
const (
	ChatTypePrivate    = "private"
	ChatTypeGroup      = "group"
	ChatTypeSupergroup = "supergroup"
	ChatTypeChannel    = "channel"
)

// Chat is a group or channel the bot has been added to.
type Chat struct {
	ID        int64
	Title     string
	Username  string
	Type      string
	AdderID   int64
	AdderName string
}

func (c *Chat) IsGroup() bool {
	return c.Type == ChatTypeGroup || c.Type == ChatTypeSupergroup
}

func (c *Chat) IsChannel() bool { return c.Type == ChatTypeChannel }

// ChatStats aggregates tracked chats by kind.
type ChatStats struct {
	Total    int
	Groups   int
	Channels int
}

// ChatRef addresses a chat either by numeric id or by public @username.
type ChatRef struct {
	ID       int64
	Username string
}

func (r ChatRef) IsZero() bool { return r.ID == 0 && r.Username == "" }

func (r ChatRef) String() string {
	if r.Username != "" {
		return r.Username
	}
	return formatInt(r.ID)
}

// ParseChatRef accepts "@name", "name", "https://t.me/name" or a numeric id
// such as "-1001234567890". An empty input yields the zero ChatRef.
func ParseChatRef(s string) ChatRef {
	s = strings.TrimSpace(s)
	if s == "" {
		return ChatRef{}
	}
	if i := strings.Index(s, "t.me/"); i >= 0 {
		s = s[i+len("t.me/"):]
		s = strings.TrimSuffix(s, "/")
	}
	if id, ok := parseInt(s); ok {
		return ChatRef{ID: id}
	}
	if !strings.HasPrefix(s, "@") {
		s = "@" + s
	}
	return ChatRef{Username: s}
}

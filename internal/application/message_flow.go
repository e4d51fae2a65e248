package application

import (
	"context"
	"strings"

	"drive-search-bot/internal/domain/model"
)

// groupQueryMinLen keeps short chatter in groups from triggering searches.
const groupQueryMinLen = 3

// PrivateMessage handles a non-command message in a private chat: the active
// mode first, then a pasted Drive code, then a search.
func (b *BotFacade) PrivateMessage(ctx context.Context, in Inbound) error {
	b.Touch(ctx, in)

	if handled, err := b.orch.HandleMessage(ctx, in); handled {
		return err
	}
	if handled, err := b.captureAuthCode(ctx, in); handled {
		return err
	}
	query := strings.TrimSpace(in.Text)
	if query == "" {
		return nil
	}
	return b.search.Reply(ctx, in, query, StyleDownload)
}

// SearchCommand serves /tv, /search and /filter in any chat.
func (b *BotFacade) SearchCommand(ctx context.Context, in Inbound) error {
	b.Touch(ctx, in)
	query := strings.TrimSpace(in.Args)
	if query == "" {
		return b.reply(ctx, in.ChatID, b.tr.T("search.usage"))
	}
	style := StyleDownload
	if !in.IsPrivate() {
		style = StyleDeepLink
	}
	return b.search.Reply(ctx, in, query, style)
}

// GroupQuery reports whether group chatter is worth a search.
func GroupQuery(text string) (string, bool) {
	query := strings.TrimSpace(text)
	if len([]rune(query)) < groupQueryMinLen || strings.HasPrefix(query, "/") {
		return "", false
	}
	return query, true
}

// GroupMessage auto-searches group chatter. Nothing is posted on a miss.
func (b *BotFacade) GroupMessage(ctx context.Context, in Inbound) error {
	query, ok := GroupQuery(in.Text)
	if !ok {
		return nil
	}
	b.Touch(ctx, in)
	return b.search.Reply(ctx, in, query, StyleQuiet)
}

// Inline answers an inline query. joined is false when the user still has
// to join the required channel.
func (b *BotFacade) Inline(ctx context.Context, userID int64, name, username, query string) (results []InlineResult, joined bool, err error) {
	b.Touch(ctx, Inbound{UserID: userID, Name: name, Username: username})
	if !b.gate.IsMember(ctx, userID, username) {
		return nil, false, nil
	}
	if strings.TrimSpace(query) == "" {
		return nil, true, nil
	}
	results, err = b.search.Inline(ctx, query)
	return results, true, err
}

// TrackChat records a chat the bot was added to.
func (b *BotFacade) TrackChat(ctx context.Context, chat *model.Chat) error {
	return b.svc.Chats.Track(ctx, chat)
}

// IndexDocument stores a document posted in a tracked chat.
func (b *BotFacade) IndexDocument(ctx context.Context, file *model.IndexedFile) error {
	_, err := b.svc.Chats.IndexDocument(ctx, file)
	return err
}

package repository

import (
	"context"

	"drive-search-bot/internal/domain/model"
)

// -----------------------------
// Chats & indexed files
// -----------------------------

type ChatRepository interface {
	UpsertChat(ctx context.Context, c *model.Chat) error
	IsChatTracked(ctx context.Context, chatID int64) (bool, error)
	ListChats(ctx context.Context) ([]*model.Chat, error)
	ListChatIDs(ctx context.Context) ([]int64, error)
	ChatStats(ctx context.Context) (model.ChatStats, error)
}

type FileRepository interface {
	// AddFile ignores a file whose (chat_id, message_id) is already stored.
	AddFile(ctx context.Context, f *model.IndexedFile) error
	CountFiles(ctx context.Context) (int, error)
}

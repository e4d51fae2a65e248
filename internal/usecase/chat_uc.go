package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/repository"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

type ChatUseCase interface {
	// Track records the chat the bot was just added to.
	Track(ctx context.Context, chat *model.Chat) error
	List(ctx context.Context) ([]*model.Chat, error)
	// IndexDocument stores a document posted in a tracked chat. It reports
	// false when the chat is not tracked.
	IndexDocument(ctx context.Context, file *model.IndexedFile) (bool, error)
}

type chatUC struct {
	chats repository.ChatRepository
	files repository.FileRepository
	log   *zerolog.Logger
}

func NewChatUseCase(chats repository.ChatRepository, files repository.FileRepository, logger *zerolog.Logger) *chatUC {
	return &chatUC{chats: chats, files: files, log: logger}
}

func (c *chatUC) Track(ctx context.Context, chat *model.Chat) error {
	if chat == nil || chat.ID == 0 || !(chat.IsGroup() || chat.IsChannel()) {
		return domain.ErrInvalidArgument
	}
	if err := c.chats.UpsertChat(ctx, chat); err != nil {
		return err
	}
	c.log.Info().Int64("chat_id", chat.ID).Str("type", chat.Type).Str("title", chat.Title).
		Str("added_by", chat.AdderName).Msg("chat tracked")
	return nil
}

func (c *chatUC) List(ctx context.Context) ([]*model.Chat, error) {
	return c.chats.ListChats(ctx)
}

func (c *chatUC) IndexDocument(ctx context.Context, file *model.IndexedFile) (bool, error) {
	if file == nil || file.FileID == "" {
		return false, domain.ErrInvalidArgument
	}
	tracked, err := c.chats.IsChatTracked(ctx, file.ChatID)
	if err != nil || !tracked {
		return false, err
	}
	if err := c.files.AddFile(ctx, file); err != nil {
		return false, err
	}
	return true, nil
}

//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/usecase"
)

func TestChatUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("track upserts", func(t *testing.T) {
		store := NewMockStore()
		uc := usecase.NewChatUseCase(store, store, newTestLogger())

		if err := uc.Track(ctx, &model.Chat{ID: -100, Title: "Old", Type: model.ChatTypeSupergroup}); err != nil {
			t.Fatal(err)
		}
		if err := uc.Track(ctx, &model.Chat{ID: -100, Title: "New", Type: model.ChatTypeSupergroup}); err != nil {
			t.Fatal(err)
		}
		chats, _ := uc.List(ctx)
		if len(chats) != 1 || chats[0].Title != "New" {
			t.Fatalf("unexpected chats %+v", chats)
		}
		if err := uc.Track(ctx, &model.Chat{ID: 5, Type: model.ChatTypePrivate}); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("private chats must not be tracked, got %v", err)
		}
		if err := uc.Track(ctx, &model.Chat{}); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("documents are indexed only in tracked chats", func(t *testing.T) {
		store := NewMockStore()
		uc := usecase.NewChatUseCase(store, store, newTestLogger())
		_ = uc.Track(ctx, &model.Chat{ID: -200, Title: "Subs", Type: model.ChatTypeChannel})

		ok, err := uc.IndexDocument(ctx, &model.IndexedFile{FileID: "A", ChatID: -300, MessageID: 1})
		if err != nil || ok {
			t.Fatalf("untracked chat indexed: ok=%v err=%v", ok, err)
		}
		ok, err = uc.IndexDocument(ctx, &model.IndexedFile{FileID: "A", ChatID: -200, MessageID: 1})
		if err != nil || !ok {
			t.Fatalf("tracked chat not indexed: ok=%v err=%v", ok, err)
		}
		_, _ = uc.IndexDocument(ctx, &model.IndexedFile{FileID: "B", ChatID: -200, MessageID: 1})
		if len(store.Files) != 1 || store.Files[0].FileID != "A" {
			t.Fatalf("duplicate (chat, message) not ignored: %+v", store.Files)
		}
	})
}

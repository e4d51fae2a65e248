//go:build !integration

package usecase_test

import (
	"context"
	"testing"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/repository"
	"drive-search-bot/internal/usecase"
)

func TestStatsUseCase(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	_ = store.TouchUser(ctx, &model.User{ID: 1})
	_ = store.TouchUser(ctx, &model.User{ID: 2})
	_ = store.UpsertChat(ctx, &model.Chat{ID: -1, Type: model.ChatTypeGroup})
	_ = store.UpsertChat(ctx, &model.Chat{ID: -2, Type: model.ChatTypeChannel})
	_ = store.AddFile(ctx, &model.IndexedFile{FileID: "f", ChatID: -2, MessageID: 5})
	store.Counters[repository.SettingTotalSearches] = 17

	t.Run("deep count", func(t *testing.T) {
		var root string
		drive := &MockDrive{RecursiveCountFunc: func(_ context.Context, id string) (int, error) {
			root = id
			return 321, nil
		}}
		uc := usecase.NewStatsUseCase(store, drive, "folder", newTestLogger())

		st, err := uc.Collect(ctx, true)
		if err != nil {
			t.Fatal(err)
		}
		if root != "folder" {
			t.Fatalf("counted from %q", root)
		}
		want := model.Stats{
			Users: 2, ActiveUsers: 2,
			Chats:      model.ChatStats{Total: 2, Groups: 1, Channels: 1},
			DriveFiles: 321, DriveCounted: true, IndexedFiles: 1, TotalSearches: 17,
		}
		if st != want {
			t.Fatalf("got %+v\nwant %+v", st, want)
		}
	})

	t.Run("drive unavailable", func(t *testing.T) {
		drive := &MockDrive{RecursiveCountFunc: func(context.Context, string) (int, error) { return 0, domain.ErrUnauthenticated }}
		uc := usecase.NewStatsUseCase(store, drive, "", newTestLogger())
		st, err := uc.Collect(ctx, true)
		if err != nil {
			t.Fatal(err)
		}
		if st.DriveCounted || st.Users != 2 {
			t.Fatalf("unexpected stats %+v", st)
		}
	})

	t.Run("shallow skips drive", func(t *testing.T) {
		called := false
		drive := &MockDrive{RecursiveCountFunc: func(context.Context, string) (int, error) { called = true; return 1, nil }}
		uc := usecase.NewStatsUseCase(store, drive, "", newTestLogger())
		if _, err := uc.Collect(ctx, false); err != nil {
			t.Fatal(err)
		}
		if called {
			t.Fatal("drive was queried")
		}
	})
}

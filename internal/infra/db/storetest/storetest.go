// Package storetest holds behaviour checks every repository.Store backend must pass.
package storetest

import (
	"context"
	"errors"
	"testing"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/repository"
)

// Factory returns an empty, migrated store.
type Factory func(t *testing.T) repository.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("chat upsert keeps one row with latest fields", func(t *testing.T) { testChatUpsert(t, newStore(t)) })
	t.Run("chat stats", func(t *testing.T) { testChatStats(t, newStore(t)) })
	t.Run("duplicate file is ignored", func(t *testing.T) { testFileConflict(t, newStore(t)) })
	t.Run("ban by id and handle", func(t *testing.T) { testBan(t, newStore(t)) })
	t.Run("touch preserves ban flag", func(t *testing.T) { testTouchPreservesBan(t, newStore(t)) })
	t.Run("unknown user", func(t *testing.T) { testUnknownUser(t, newStore(t)) })
	t.Run("settings lifecycle", func(t *testing.T) { testSettings(t, newStore(t)) })
	t.Run("counter increments", func(t *testing.T) { testCounter(t, newStore(t)) })
	t.Run("user aggregates", func(t *testing.T) { testUserAggregates(t, newStore(t)) })
}

func mustNil(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func testChatUpsert(t *testing.T, s repository.Store) {
	ctx := context.Background()
	mustNil(t, s.UpsertChat(ctx, &model.Chat{ID: -1001, Title: "Old", Type: model.ChatTypeGroup, AdderID: 1, AdderName: "a"}))
	mustNil(t, s.UpsertChat(ctx, &model.Chat{ID: -1001, Title: "New", Username: "newname", Type: model.ChatTypeSupergroup, AdderID: 2, AdderName: "b"}))

	chats, err := s.ListChats(ctx)
	mustNil(t, err)
	if len(chats) != 1 {
		t.Fatalf("expected exactly one chat row, got %d", len(chats))
	}
	c := chats[0]
	if c.Title != "New" || c.Username != "newname" || c.Type != model.ChatTypeSupergroup || c.AdderID != 2 || c.AdderName != "b" {
		t.Errorf("expected all fields replaced, got %+v", c)
	}

	tracked, err := s.IsChatTracked(ctx, -1001)
	mustNil(t, err)
	if !tracked {
		t.Error("expected chat to be tracked")
	}
	tracked, err = s.IsChatTracked(ctx, -2002)
	mustNil(t, err)
	if tracked {
		t.Error("expected unknown chat not to be tracked")
	}
}

func testChatStats(t *testing.T, s repository.Store) {
	ctx := context.Background()
	for i, typ := range []string{model.ChatTypeGroup, model.ChatTypeSupergroup, model.ChatTypeChannel} {
		mustNil(t, s.UpsertChat(ctx, &model.Chat{ID: int64(-100 - i), Title: typ, Type: typ}))
	}
	st, err := s.ChatStats(ctx)
	mustNil(t, err)
	if st != (model.ChatStats{Total: 3, Groups: 2, Channels: 1}) {
		t.Errorf("unexpected stats %+v", st)
	}
	ids, err := s.ListChatIDs(ctx)
	mustNil(t, err)
	if len(ids) != 3 {
		t.Errorf("expected 3 chat ids, got %v", ids)
	}
}

func testFileConflict(t *testing.T, s repository.Store) {
	ctx := context.Background()
	mustNil(t, s.AddFile(ctx, &model.IndexedFile{FileID: "first", FileName: "a.mkv", ChatID: -1, MessageID: 10}))
	mustNil(t, s.AddFile(ctx, &model.IndexedFile{FileID: "second", FileName: "a.mkv", ChatID: -1, MessageID: 10}))
	mustNil(t, s.AddFile(ctx, &model.IndexedFile{FileID: "first", FileName: "a.mkv", ChatID: -1, MessageID: 11}))

	n, err := s.CountFiles(ctx)
	mustNil(t, err)
	if n != 2 {
		t.Errorf("expected 2 rows (same file_id allowed, same message ignored), got %d", n)
	}
}

func testBan(t *testing.T, s repository.Store) {
	ctx := context.Background()
	mustNil(t, s.TouchUser(ctx, &model.User{ID: 100, Name: "Some", Username: "SomeUser"}))

	found, err := s.SetBanned(ctx, model.TargetByID(100), true)
	mustNil(t, err)
	if !found {
		t.Fatal("expected ban by id to find the user")
	}
	banned, err := s.IsBanned(ctx, 100)
	mustNil(t, err)
	if !banned {
		t.Fatal("expected user to be banned")
	}

	for _, h := range []string{"@someuser", "SOMEUSER", "SomeUser"} {
		u, err := s.FindUser(ctx, model.TargetByHandle(h))
		mustNil(t, err)
		if u.ID != 100 || !u.IsBanned {
			t.Errorf("handle %q resolved to %+v", h, u)
		}
	}
	byID, err := s.FindUser(ctx, model.TargetByID(100))
	mustNil(t, err)
	if byID.Username != "SomeUser" {
		t.Errorf("expected stored username casing to be kept, got %q", byID.Username)
	}

	found, err = s.SetBanned(ctx, model.TargetByHandle("@SOMEUSER"), false)
	mustNil(t, err)
	if !found {
		t.Fatal("expected unban by handle to find the user")
	}
	banned, err = s.IsBanned(ctx, 100)
	mustNil(t, err)
	if banned {
		t.Error("expected user to be unbanned")
	}

	found, err = s.SetBanned(ctx, model.TargetByHandle("ghost"), true)
	mustNil(t, err)
	if found {
		t.Error("expected unknown handle not to be found")
	}
}

func testTouchPreservesBan(t *testing.T, s repository.Store) {
	ctx := context.Background()
	mustNil(t, s.TouchUser(ctx, &model.User{ID: 7, Name: "Before"}))
	_, err := s.SetBanned(ctx, model.TargetByID(7), true)
	mustNil(t, err)
	mustNil(t, s.TouchUser(ctx, &model.User{ID: 7, Name: "After", Username: "late"}))

	u, err := s.FindUser(ctx, model.TargetByID(7))
	mustNil(t, err)
	if !u.IsBanned {
		t.Error("expected ban flag to survive a touch")
	}
	if u.Name != "After" || u.Username != "late" {
		t.Errorf("expected name and username refreshed, got %+v", u)
	}
	if u.LastSeen.IsZero() {
		t.Error("expected last_seen to be set")
	}
}

func testUnknownUser(t *testing.T, s repository.Store) {
	ctx := context.Background()
	_, err := s.FindUser(ctx, model.TargetByID(999))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	banned, err := s.IsBanned(ctx, 999)
	mustNil(t, err)
	if banned {
		t.Error("unknown users are not banned")
	}
}

func testSettings(t *testing.T, s repository.Store) {
	ctx := context.Background()
	v, err := s.GetSetting(ctx, "k", "def")
	mustNil(t, err)
	if v != "def" {
		t.Errorf("expected default, got %q", v)
	}
	mustNil(t, s.SetSetting(ctx, "k", "one"))
	mustNil(t, s.SetSetting(ctx, "k", "two"))
	v, err = s.GetSetting(ctx, "k", "def")
	mustNil(t, err)
	if v != "two" {
		t.Errorf("expected latest value, got %q", v)
	}
	mustNil(t, s.ClearSetting(ctx, "k"))
	v, err = s.GetSetting(ctx, "k", "def")
	mustNil(t, err)
	if v != "def" {
		t.Errorf("expected cleared setting to fall back to default, got %q", v)
	}
}

func testCounter(t *testing.T, s repository.Store) {
	ctx := context.Background()
	n, err := s.Counter(ctx, repository.SettingTotalSearches)
	mustNil(t, err)
	if n != 0 {
		t.Errorf("expected 0 for a missing counter, got %d", n)
	}
	for i := 0; i < 3; i++ {
		mustNil(t, s.IncrementCounter(ctx, repository.SettingTotalSearches))
	}
	n, err = s.Counter(ctx, repository.SettingTotalSearches)
	mustNil(t, err)
	if n != 3 {
		t.Errorf("expected 3, got %d", n)
	}
}

func testUserAggregates(t *testing.T, s repository.Store) {
	ctx := context.Background()
	for _, id := range []int64{30, 10, 20} {
		mustNil(t, s.TouchUser(ctx, &model.User{ID: id, Name: "u"}))
	}
	ids, err := s.ListUserIDs(ctx)
	mustNil(t, err)
	if len(ids) != 3 || ids[0] != 10 || ids[2] != 30 {
		t.Errorf("expected ordered ids, got %v", ids)
	}
	n, err := s.CountUsers(ctx)
	mustNil(t, err)
	if n != 3 {
		t.Errorf("expected 3 users, got %d", n)
	}
	active, err := s.CountActiveUsers(ctx, 30)
	mustNil(t, err)
	if active != 3 {
		t.Errorf("expected 3 active users, got %d", active)
	}
}

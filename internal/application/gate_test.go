//go:build !integration

package application

import (
	"context"
	"errors"
	"testing"

	"drive-search-bot/internal/config"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
)

func TestGatekeeper_IsAdmin(t *testing.T) {
	g := NewGatekeeper(config.BotConfig{
		AdminIDs:       []int64{7},
		AdminUsernames: []string{"@BossUser", " ", "other"},
	}, &MockMessenger{}, &MockUserUC{}, newTestLogger())

	cases := []struct {
		name     string
		id       int64
		username string
		want     bool
	}{
		{"by id", 7, "", true},
		{"by handle", 99, "bossuser", true},
		{"handle is case-insensitive", 99, "BOSSUSER", true},
		{"handle with at sign", 99, "@other", true},
		{"unknown", 99, "someone", false},
		{"no handle", 99, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := g.IsAdmin(tc.id, tc.username); got != tc.want {
				t.Fatalf("IsAdmin(%d, %q) = %v, want %v", tc.id, tc.username, got, tc.want)
			}
		})
	}
}

func TestGatekeeper_Check(t *testing.T) {
	ctx := context.Background()
	cfg := config.BotConfig{AdminIDs: []int64{testAdminID}, RequiredChannel: "@updates"}

	t.Run("admin bypasses membership and ban", func(t *testing.T) {
		bot := &MockMessenger{MemberStatusFunc: func(model.ChatRef, int64) (adapter.MemberStatus, error) {
			t.Fatal("membership must not be checked for admins")
			return "", nil
		}}
		users := &MockUserUC{IsBannedFunc: func(int64) (bool, error) { return true, nil }}
		g := NewGatekeeper(cfg, bot, users, newTestLogger())
		if v := g.Check(ctx, testAdminID, ""); v != Allowed {
			t.Fatalf("verdict = %s, want allowed", v)
		}
	})

	t.Run("no channel configured", func(t *testing.T) {
		g := NewGatekeeper(config.BotConfig{}, &MockMessenger{MemberStatusFunc: func(model.ChatRef, int64) (adapter.MemberStatus, error) {
			return adapter.MemberLeft, nil
		}}, &MockUserUC{}, newTestLogger())
		if v := g.Check(ctx, testUserID, ""); v != Allowed {
			t.Fatalf("verdict = %s, want allowed", v)
		}
	})

	statuses := []struct {
		status adapter.MemberStatus
		err    error
		want   Verdict
	}{
		{adapter.MemberMember, nil, Allowed},
		{adapter.MemberAdministrator, nil, Allowed},
		{adapter.MemberCreator, nil, Allowed},
		{adapter.MemberLeft, nil, NotMember},
		{adapter.MemberKicked, nil, NotMember},
		{adapter.MemberRestricted, nil, NotMember},
		{"", errors.New("chat not found"), NotMember},
	}
	for _, tc := range statuses {
		t.Run("status "+string(tc.status), func(t *testing.T) {
			var gotChat model.ChatRef
			bot := &MockMessenger{MemberStatusFunc: func(c model.ChatRef, _ int64) (adapter.MemberStatus, error) {
				gotChat = c
				return tc.status, tc.err
			}}
			g := NewGatekeeper(cfg, bot, &MockUserUC{}, newTestLogger())
			if v := g.Check(ctx, testUserID, "user"); v != tc.want {
				t.Fatalf("verdict = %s, want %s", v, tc.want)
			}
			if gotChat.Username != "@updates" {
				t.Fatalf("membership checked against %v", gotChat)
			}
		})
	}

	t.Run("banned member", func(t *testing.T) {
		users := &MockUserUC{IsBannedFunc: func(id int64) (bool, error) { return id == testUserID, nil }}
		g := NewGatekeeper(cfg, &MockMessenger{}, users, newTestLogger())
		if v := g.Check(ctx, testUserID, ""); v != Banned {
			t.Fatalf("verdict = %s, want banned", v)
		}
		if v := g.Check(ctx, testUserID+1, ""); v != Allowed {
			t.Fatalf("verdict = %s, want allowed", v)
		}
	})

	t.Run("ban lookup failure allows", func(t *testing.T) {
		users := &MockUserUC{IsBannedFunc: func(int64) (bool, error) { return false, errors.New("db down") }}
		g := NewGatekeeper(cfg, &MockMessenger{}, users, newTestLogger())
		if v := g.Check(ctx, testUserID, ""); v != Allowed {
			t.Fatalf("verdict = %s, want allowed", v)
		}
	})
}

type MockMembershipCache struct {
	joined    map[int64]bool
	JoinedErr error
}

func (m *MockMembershipCache) Joined(_ context.Context, userID int64) (bool, error) {
	if m.JoinedErr != nil {
		return false, m.JoinedErr
	}
	return m.joined[userID], nil
}

func (m *MockMembershipCache) RememberJoined(_ context.Context, userID int64) error {
	if m.joined == nil {
		m.joined = map[int64]bool{}
	}
	m.joined[userID] = true
	return nil
}

func TestGatekeeper_MembershipCache(t *testing.T) {
	ctx := context.Background()
	cfg := config.BotConfig{RequiredChannel: "@updates"}

	t.Run("a positive answer is served from the cache", func(t *testing.T) {
		calls := 0
		bot := &MockMessenger{MemberStatusFunc: func(model.ChatRef, int64) (adapter.MemberStatus, error) {
			calls++
			return adapter.MemberMember, nil
		}}
		g := NewGatekeeper(cfg, bot, &MockUserUC{}, newTestLogger())
		g.UseMembershipCache(&MockMembershipCache{})

		for i := 0; i < 3; i++ {
			if !g.IsMember(ctx, testUserID, "") {
				t.Fatalf("call %d: expected member", i+1)
			}
		}
		if calls != 1 {
			t.Fatalf("MemberStatus calls = %d, want 1", calls)
		}
	})

	t.Run("a negative answer is not cached", func(t *testing.T) {
		status := adapter.MemberLeft
		calls := 0
		bot := &MockMessenger{MemberStatusFunc: func(model.ChatRef, int64) (adapter.MemberStatus, error) {
			calls++
			return status, nil
		}}
		g := NewGatekeeper(cfg, bot, &MockUserUC{}, newTestLogger())
		g.UseMembershipCache(&MockMembershipCache{})

		if g.IsMember(ctx, testUserID, "") {
			t.Fatal("expected not a member")
		}
		status = adapter.MemberMember
		if !g.IsMember(ctx, testUserID, "") {
			t.Fatal("joining must take effect immediately")
		}
		if calls != 2 {
			t.Fatalf("MemberStatus calls = %d, want 2", calls)
		}
	})

	t.Run("cache failure falls back to the lookup", func(t *testing.T) {
		bot := &MockMessenger{MemberStatusFunc: func(model.ChatRef, int64) (adapter.MemberStatus, error) {
			return adapter.MemberMember, nil
		}}
		g := NewGatekeeper(cfg, bot, &MockUserUC{}, newTestLogger())
		g.UseMembershipCache(&MockMembershipCache{JoinedErr: errors.New("redis down")})
		if !g.IsMember(ctx, testUserID, "") {
			t.Fatal("expected member")
		}
	})
}

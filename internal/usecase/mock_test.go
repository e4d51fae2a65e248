//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
	"drive-search-bot/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// =============================
// Adapters
// =============================

// ---- Mock Messenger ----

type copyCall struct {
	To        model.ChatRef
	FromChat  int64
	MessageID int
}

type MockMessenger struct {
	mu     sync.Mutex
	Copies []copyCall
	Sent   []adapter.SendMessageParams

	CopyMessageFunc func(ctx context.Context, to model.ChatRef, fromChatID int64, messageID int) error
}

var _ adapter.Messenger = (*MockMessenger)(nil)

func (m *MockMessenger) SendMessage(ctx context.Context, p adapter.SendMessageParams) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, p)
	return len(m.Sent), nil
}

func (m *MockMessenger) EditMessage(context.Context, int64, int, string, [][]adapter.InlineButton) error {
	return nil
}

func (m *MockMessenger) DeleteMessage(context.Context, int64, int) error { return nil }

func (m *MockMessenger) CopyMessage(ctx context.Context, to model.ChatRef, fromChatID int64, messageID int) error {
	m.mu.Lock()
	m.Copies = append(m.Copies, copyCall{To: to, FromChat: fromChatID, MessageID: messageID})
	m.mu.Unlock()
	if m.CopyMessageFunc != nil {
		return m.CopyMessageFunc(ctx, to, fromChatID, messageID)
	}
	return nil
}

func (m *MockMessenger) MemberStatus(context.Context, model.ChatRef, int64) (adapter.MemberStatus, error) {
	return adapter.MemberMember, nil
}

func (m *MockMessenger) SendDocument(context.Context, int64, string, string) error { return nil }

// ---- Mock DriveService ----

type MockDrive struct {
	mu      sync.Mutex
	Deleted []string

	SearchFunc         func(ctx context.Context, query string) ([]model.DriveItem, error)
	ListAllFunc        func(ctx context.Context) ([]model.DriveItem, error)
	RecursiveCountFunc func(ctx context.Context, rootID string) (int, error)
	DeleteFunc         func(ctx context.Context, fileID string) error
}

var _ adapter.DriveService = (*MockDrive)(nil)

func (m *MockDrive) Search(ctx context.Context, query string) ([]model.DriveItem, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	return nil, nil
}

func (m *MockDrive) ListAll(ctx context.Context) ([]model.DriveItem, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockDrive) RecursiveCount(ctx context.Context, rootID string) (int, error) {
	if m.RecursiveCountFunc != nil {
		return m.RecursiveCountFunc(ctx, rootID)
	}
	return 0, nil
}

func (m *MockDrive) Metadata(_ context.Context, fileID string) (model.DriveItem, error) {
	return model.DriveItem{ID: fileID}, nil
}

func (m *MockDrive) Delete(ctx context.Context, fileID string) error {
	m.mu.Lock()
	m.Deleted = append(m.Deleted, fileID)
	m.mu.Unlock()
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, fileID)
	}
	return nil
}

func (m *MockDrive) Download(context.Context, string, string, adapter.ProgressFunc) (string, error) {
	return "", nil
}

// =============================
// Repositories
// =============================

// MockStore implements repository.Store with in-memory maps plus optional overrides.
type MockStore struct {
	mu       sync.Mutex
	Users    map[int64]*model.User
	Chats    map[int64]*model.Chat
	Files    []*model.IndexedFile
	Settings map[string]string
	Counters map[string]int64

	SetBannedFunc   func(ctx context.Context, t model.Target, banned bool) (bool, error)
	ListUserIDsFunc func(ctx context.Context) ([]int64, error)
}

var _ repository.Store = (*MockStore)(nil)

func NewMockStore() *MockStore {
	return &MockStore{
		Users:    map[int64]*model.User{},
		Chats:    map[int64]*model.Chat{},
		Settings: map[string]string{},
		Counters: map[string]int64{},
	}
}

func (m *MockStore) UpsertChat(_ context.Context, c *model.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.Chats[c.ID] = &cp
	return nil
}

func (m *MockStore) IsChatTracked(_ context.Context, chatID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Chats[chatID]
	return ok, nil
}

func (m *MockStore) ListChats(context.Context) ([]*model.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Chat, 0, len(m.Chats))
	for _, c := range m.Chats {
		out = append(out, c)
	}
	return out, nil
}

func (m *MockStore) ListChatIDs(context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, 0, len(m.Chats))
	for id := range m.Chats {
		out = append(out, id)
	}
	return out, nil
}

func (m *MockStore) ChatStats(context.Context) (model.ChatStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st model.ChatStats
	for _, c := range m.Chats {
		st.Total++
		if c.IsGroup() {
			st.Groups++
		}
		if c.IsChannel() {
			st.Channels++
		}
	}
	return st, nil
}

func (m *MockStore) AddFile(_ context.Context, f *model.IndexedFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.Files {
		if ex.ChatID == f.ChatID && ex.MessageID == f.MessageID {
			return nil
		}
	}
	cp := *f
	m.Files = append(m.Files, &cp)
	return nil
}

func (m *MockStore) CountFiles(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Files), nil
}

func (m *MockStore) TouchUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	if ex, ok := m.Users[u.ID]; ok {
		cp.IsBanned = ex.IsBanned
	}
	m.Users[u.ID] = &cp
	return nil
}

func (m *MockStore) find(t model.Target) *model.User {
	if id, ok := t.ID(); ok {
		return m.Users[id]
	}
	if h, ok := t.Handle(); ok {
		for _, u := range m.Users {
			if strings.EqualFold(u.Username, h) {
				return u
			}
		}
	}
	return nil
}

func (m *MockStore) FindUser(_ context.Context, t model.Target) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.find(t); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MockStore) SetBanned(ctx context.Context, t model.Target, banned bool) (bool, error) {
	if m.SetBannedFunc != nil {
		return m.SetBannedFunc(ctx, t, banned)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.find(t)
	if u == nil {
		return false, nil
	}
	u.IsBanned = banned
	return true, nil
}

func (m *MockStore) IsBanned(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	return ok && u.IsBanned, nil
}

func (m *MockStore) ListUserIDs(ctx context.Context) ([]int64, error) {
	if m.ListUserIDsFunc != nil {
		return m.ListUserIDsFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, 0, len(m.Users))
	for id := range m.Users {
		out = append(out, id)
	}
	return out, nil
}

func (m *MockStore) CountUsers(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Users), nil
}

func (m *MockStore) CountActiveUsers(context.Context, int) (int, error) {
	return m.CountUsers(context.Background())
}

func (m *MockStore) GetSetting(_ context.Context, key, def string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.Settings[key]; ok {
		return v, nil
	}
	return def, nil
}

func (m *MockStore) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Settings[key] = value
	return nil
}

func (m *MockStore) ClearSetting(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Settings, key)
	return nil
}

func (m *MockStore) IncrementCounter(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counters[key]++
	return nil
}

func (m *MockStore) Counter(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Counters[key], nil
}

func (m *MockStore) Migrate(context.Context) error { return nil }
func (m *MockStore) Backend() string               { return "mock" }
func (m *MockStore) Close() error                  { return nil }

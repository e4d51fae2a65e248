//go:build !integration

package application

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"drive-search-bot/internal/config"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
	"drive-search-bot/internal/infra/memory"
	"drive-search-bot/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// keyTranslator renders "key" or "key|arg1|arg2" so tests can assert on
// which message was chosen without depending on locale text.
type keyTranslator struct{}

func (keyTranslator) T(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, key)
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, "|")
}

// ---- Mock Messenger ----

type editCall struct {
	ChatID    int64
	MessageID int
	Text      string
}

type copyCall struct {
	To        model.ChatRef
	FromChat  int64
	MessageID int
}

type MockMessenger struct {
	mu      sync.Mutex
	nextID  int
	Sent    []adapter.SendMessageParams
	Edits   []editCall
	Deleted []int
	Copies  []copyCall
	Docs    []string

	SendMessageFunc  func(p adapter.SendMessageParams) (int, error)
	EditMessageFunc  func(chatID int64, msgID int, text string) error
	CopyMessageFunc  func(to model.ChatRef, from int64, msgID int) error
	MemberStatusFunc func(chat model.ChatRef, userID int64) (adapter.MemberStatus, error)
	SendDocumentFunc func(chatID int64, path, caption string) error
}

func (m *MockMessenger) SendMessage(_ context.Context, p adapter.SendMessageParams) (int, error) {
	m.mu.Lock()
	m.Sent = append(m.Sent, p)
	m.nextID++
	id := m.nextID
	m.mu.Unlock()
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(p)
	}
	return id, nil
}

func (m *MockMessenger) EditMessage(_ context.Context, chatID int64, msgID int, text string, _ [][]adapter.InlineButton) error {
	m.mu.Lock()
	m.Edits = append(m.Edits, editCall{ChatID: chatID, MessageID: msgID, Text: text})
	m.mu.Unlock()
	if m.EditMessageFunc != nil {
		return m.EditMessageFunc(chatID, msgID, text)
	}
	return nil
}

func (m *MockMessenger) DeleteMessage(_ context.Context, _ int64, msgID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, msgID)
	return nil
}

func (m *MockMessenger) CopyMessage(_ context.Context, to model.ChatRef, from int64, msgID int) error {
	m.mu.Lock()
	m.Copies = append(m.Copies, copyCall{To: to, FromChat: from, MessageID: msgID})
	m.mu.Unlock()
	if m.CopyMessageFunc != nil {
		return m.CopyMessageFunc(to, from, msgID)
	}
	return nil
}

func (m *MockMessenger) MemberStatus(_ context.Context, chat model.ChatRef, userID int64) (adapter.MemberStatus, error) {
	if m.MemberStatusFunc != nil {
		return m.MemberStatusFunc(chat, userID)
	}
	return adapter.MemberMember, nil
}

func (m *MockMessenger) SendDocument(_ context.Context, chatID int64, path, caption string) error {
	m.mu.Lock()
	m.Docs = append(m.Docs, path)
	m.mu.Unlock()
	if m.SendDocumentFunc != nil {
		return m.SendDocumentFunc(chatID, path, caption)
	}
	return nil
}

// texts returns every sent and edited text in order of kind.
func (m *MockMessenger) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, p := range m.Sent {
		out = append(out, p.Text)
	}
	for _, e := range m.Edits {
		out = append(out, e.Text)
	}
	return out
}

func (m *MockMessenger) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Edits) > 0 {
		return m.Edits[len(m.Edits)-1].Text
	}
	if len(m.Sent) > 0 {
		return m.Sent[len(m.Sent)-1].Text
	}
	return ""
}

func (m *MockMessenger) sawText(prefix string) bool {
	for _, t := range m.texts() {
		if strings.HasPrefix(t, prefix) {
			return true
		}
	}
	return false
}

// ---- Mock usecases ----

type MockUserUC struct {
	TouchFunc    func(id int64, name, username string) error
	IsBannedFunc func(id int64) (bool, error)
	SetBanFunc   func(t model.Target, banned bool) (bool, error)
}

func (m *MockUserUC) Touch(_ context.Context, id int64, name, username string) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(id, name, username)
	}
	return nil
}

func (m *MockUserUC) IsBanned(_ context.Context, id int64) (bool, error) {
	if m.IsBannedFunc != nil {
		return m.IsBannedFunc(id)
	}
	return false, nil
}

func (m *MockUserUC) SetBan(_ context.Context, t model.Target, banned bool) (bool, error) {
	if m.SetBanFunc != nil {
		return m.SetBanFunc(t, banned)
	}
	return true, nil
}

func (m *MockUserUC) Find(context.Context, model.Target) (*model.User, error) {
	return nil, nil
}

type MockSearchUC struct {
	mu       sync.Mutex
	Sources  []string
	Queries  []string
	SearchFn func(query string) ([]model.DriveItem, error)
}

func (m *MockSearchUC) Search(_ context.Context, query, source string) ([]model.DriveItem, error) {
	m.mu.Lock()
	m.Sources = append(m.Sources, source)
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()
	if m.SearchFn != nil {
		return m.SearchFn(query)
	}
	return nil, nil
}

func (m *MockSearchUC) TotalSearches(context.Context) (int64, error) { return 0, nil }

type MockBroadcastUC struct {
	SendFunc func(queue []model.QueuedMessage) (model.BroadcastReport, error)
}

func (m *MockBroadcastUC) Send(_ context.Context, queue []model.QueuedMessage) (model.BroadcastReport, error) {
	if m.SendFunc != nil {
		return m.SendFunc(queue)
	}
	return model.BroadcastReport{}, nil
}

type MockDuplicateUC struct {
	ScanFunc    func(adminID int64) (model.ScanReport, error)
	RemoveFunc  func(adminID int64, progress usecase.RemovalProgress) (model.RemovalReport, error)
	PendingFunc func(adminID int64) int
}

func (m *MockDuplicateUC) Scan(_ context.Context, adminID int64) (model.ScanReport, error) {
	if m.ScanFunc != nil {
		return m.ScanFunc(adminID)
	}
	return model.ScanReport{}, nil
}

func (m *MockDuplicateUC) Remove(_ context.Context, adminID int64, progress usecase.RemovalProgress) (model.RemovalReport, error) {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(adminID, progress)
	}
	return model.RemovalReport{}, nil
}

func (m *MockDuplicateUC) Pending(adminID int64) int {
	if m.PendingFunc != nil {
		return m.PendingFunc(adminID)
	}
	return 0
}

type MockStatsUC struct {
	CollectFunc func(deep bool) (model.Stats, error)
}

func (m *MockStatsUC) Collect(_ context.Context, deep bool) (model.Stats, error) {
	if m.CollectFunc != nil {
		return m.CollectFunc(deep)
	}
	return model.Stats{}, nil
}

type MockChatUC struct {
	Tracked  []*model.Chat
	Indexed  []*model.IndexedFile
	ListFunc func() ([]*model.Chat, error)
}

func (m *MockChatUC) Track(_ context.Context, c *model.Chat) error {
	m.Tracked = append(m.Tracked, c)
	return nil
}

func (m *MockChatUC) List(context.Context) ([]*model.Chat, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return nil, nil
}

func (m *MockChatUC) IndexDocument(_ context.Context, f *model.IndexedFile) (bool, error) {
	m.Indexed = append(m.Indexed, f)
	return true, nil
}

// ---- Mock Drive ----

type MockDrive struct {
	MetadataFunc func(fileID string) (model.DriveItem, error)
	DownloadFunc func(fileID, name string, progress adapter.ProgressFunc) (string, error)
	DeleteFunc   func(fileID string) error
}

func (m *MockDrive) Search(context.Context, string) ([]model.DriveItem, error) { return nil, nil }

func (m *MockDrive) ListAll(context.Context) ([]model.DriveItem, error) { return nil, nil }

func (m *MockDrive) RecursiveCount(context.Context, string) (int, error) { return 0, nil }

func (m *MockDrive) Metadata(_ context.Context, fileID string) (model.DriveItem, error) {
	if m.MetadataFunc != nil {
		return m.MetadataFunc(fileID)
	}
	return model.DriveItem{ID: fileID, Name: fileID + ".srt"}, nil
}

func (m *MockDrive) Delete(_ context.Context, fileID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(fileID)
	}
	return nil
}

func (m *MockDrive) Download(_ context.Context, fileID, name string, progress adapter.ProgressFunc) (string, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(fileID, name, progress)
	}
	return "", nil
}

type MockAuth struct {
	Authenticated bool
	URL           string
	URLErr        error
	ExchangeFunc  func(code string) error
	Codes         []string
}

func (m *MockAuth) IsAuthenticated(context.Context) bool { return m.Authenticated }

func (m *MockAuth) AuthURL() (string, error) { return m.URL, m.URLErr }

func (m *MockAuth) Exchange(_ context.Context, code string) error {
	m.Codes = append(m.Codes, code)
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(code)
	}
	m.Authenticated = true
	return nil
}

// ---- fixture ----

const (
	testAdminID = 1
	testUserID  = 42
)

type fixture struct {
	bot       *MockMessenger
	sessions  *memory.SessionStore
	users     *MockUserUC
	search    *MockSearchUC
	broadcast *MockBroadcastUC
	dups      *MockDuplicateUC
	stats     *MockStatsUC
	chats     *MockChatUC
	drive     *MockDrive
	auth      *MockAuth
	facade    *BotFacade
}

func newFixture(cfg config.BotConfig) *fixture {
	if cfg.AdminIDs == nil {
		cfg.AdminIDs = []int64{testAdminID}
	}
	if cfg.Username == "" {
		cfg.Username = "drive_bot"
	}
	f := &fixture{
		bot:       &MockMessenger{},
		sessions:  memory.NewSessionStore(0),
		users:     &MockUserUC{},
		search:    &MockSearchUC{},
		broadcast: &MockBroadcastUC{},
		dups:      &MockDuplicateUC{},
		stats:     &MockStatsUC{},
		chats:     &MockChatUC{},
		drive:     &MockDrive{},
		auth:      &MockAuth{Authenticated: true, URL: "https://accounts.example/auth"},
	}
	log := newTestLogger()
	tr := keyTranslator{}
	gate := NewGatekeeper(cfg, f.bot, f.users, log)
	sf := NewSearchFlow(f.search, f.bot, tr, cfg.Username, log)
	orch := NewOrchestrator(f.sessions, f.bot, tr, f.users, f.broadcast, sf, model.ParseChatRef(cfg.RequestChat), log)
	f.facade = NewBotFacade(cfg, f.bot, tr, gate, orch, sf, Services{
		Users:      f.users,
		Search:     f.search,
		Duplicates: f.dups,
		Stats:      f.stats,
		Chats:      f.chats,
		Drive:      f.drive,
		Auth:       f.auth,
	}, "sqlite", log)
	return f
}

func privateIn(userID int64, text string) Inbound {
	return Inbound{
		ChatID:    userID,
		ChatType:  model.ChatTypePrivate,
		MessageID: 100,
		UserID:    userID,
		Name:      "Tester",
		Text:      text,
	}
}

func commandIn(userID int64, cmd, args string) Inbound {
	in := privateIn(userID, "/"+cmd)
	in.Command = cmd
	in.Args = args
	return in
}

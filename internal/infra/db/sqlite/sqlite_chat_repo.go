package sqlite

import (
	"context"
	"database/sql"

	"drive-search-bot/internal/domain/model"
)

func (s *SQLiteStore) UpsertChat(ctx context.Context, c *model.Chat) error {
	const q = `
INSERT OR REPLACE INTO chats (chat_id, title, username, chat_type, adder_id, adder_name)
VALUES (?, ?, NULLIF(?, ''), ?, ?, ?);`
	_, err := s.exec(ctx, q, c.ID, c.Title, c.Username, c.Type, c.AdderID, c.AdderName)
	return err
}

func (s *SQLiteStore) IsChatTracked(ctx context.Context, chatID int64) (bool, error) {
	var one int
	return s.queryRow(ctx, `SELECT 1 FROM chats WHERE chat_id = ?`, []any{chatID}, &one)
}

func (s *SQLiteStore) ListChats(ctx context.Context) ([]*model.Chat, error) {
	const q = `
SELECT chat_id, COALESCE(title, ''), COALESCE(username, ''), COALESCE(chat_type, ''),
       COALESCE(adder_id, 0), COALESCE(adder_name, '')
  FROM chats ORDER BY chat_id;`
	return queryAll(ctx, s, q, nil, func(rows *sql.Rows) (*model.Chat, error) {
		var c model.Chat
		err := rows.Scan(&c.ID, &c.Title, &c.Username, &c.Type, &c.AdderID, &c.AdderName)
		return &c, err
	})
}

func (s *SQLiteStore) ListChatIDs(ctx context.Context) ([]int64, error) {
	return queryAll(ctx, s, `SELECT chat_id FROM chats ORDER BY chat_id`, nil, func(rows *sql.Rows) (int64, error) {
		var id int64
		err := rows.Scan(&id)
		return id, err
	})
}

func (s *SQLiteStore) ChatStats(ctx context.Context) (model.ChatStats, error) {
	const q = `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN chat_type IN ('group', 'supergroup') THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN chat_type = 'channel' THEN 1 ELSE 0 END), 0)
  FROM chats;`
	var st model.ChatStats
	_, err := s.queryRow(ctx, q, nil, &st.Total, &st.Groups, &st.Channels)
	return st, err
}

func (s *SQLiteStore) AddFile(ctx context.Context, f *model.IndexedFile) error {
	const q = `
INSERT OR IGNORE INTO files (file_id, file_name, file_size, file_type, chat_id, message_id)
VALUES (?, ?, ?, ?, ?, ?);`
	_, err := s.exec(ctx, q, f.FileID, f.FileName, f.FileSize, f.FileType, f.ChatID, f.MessageID)
	return err
}

func (s *SQLiteStore) CountFiles(ctx context.Context) (int, error) {
	var n int
	_, err := s.queryRow(ctx, `SELECT COUNT(*) FROM files`, nil, &n)
	return n, err
}

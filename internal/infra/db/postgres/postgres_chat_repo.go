package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"

	"drive-search-bot/internal/domain/model"
)

func (s *PostgresStore) UpsertChat(ctx context.Context, c *model.Chat) error {
	const q = `
INSERT INTO chats (chat_id, title, username, chat_type, adder_id, adder_name)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
ON CONFLICT (chat_id) DO UPDATE SET
  title = EXCLUDED.title,
  username = EXCLUDED.username,
  chat_type = EXCLUDED.chat_type,
  adder_id = EXCLUDED.adder_id,
  adder_name = EXCLUDED.adder_name;`
	_, err := s.exec(ctx, q, c.ID, c.Title, c.Username, c.Type, c.AdderID, c.AdderName)
	return err
}

func (s *PostgresStore) IsChatTracked(ctx context.Context, chatID int64) (bool, error) {
	var one int
	return s.queryRow(ctx, `SELECT 1 FROM chats WHERE chat_id = $1`, []any{chatID}, &one)
}

func (s *PostgresStore) ListChats(ctx context.Context) ([]*model.Chat, error) {
	const q = `
SELECT chat_id, COALESCE(title, ''), COALESCE(username, ''), COALESCE(chat_type, ''),
       COALESCE(adder_id, 0), COALESCE(adder_name, '')
  FROM chats ORDER BY chat_id;`
	return queryAll(ctx, s, q, nil, func(row pgx.Row) (*model.Chat, error) {
		var c model.Chat
		err := row.Scan(&c.ID, &c.Title, &c.Username, &c.Type, &c.AdderID, &c.AdderName)
		return &c, err
	})
}

func (s *PostgresStore) ListChatIDs(ctx context.Context) ([]int64, error) {
	return queryAll(ctx, s, `SELECT chat_id FROM chats ORDER BY chat_id`, nil, func(row pgx.Row) (int64, error) {
		var id int64
		err := row.Scan(&id)
		return id, err
	})
}

func (s *PostgresStore) ChatStats(ctx context.Context) (model.ChatStats, error) {
	const q = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE chat_type IN ('group', 'supergroup')),
       COUNT(*) FILTER (WHERE chat_type = 'channel')
  FROM chats;`
	var st model.ChatStats
	_, err := s.queryRow(ctx, q, nil, &st.Total, &st.Groups, &st.Channels)
	return st, err
}

func (s *PostgresStore) AddFile(ctx context.Context, f *model.IndexedFile) error {
	const q = `
INSERT INTO files (file_id, file_name, file_size, file_type, chat_id, message_id)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (chat_id, message_id) DO NOTHING;`
	_, err := s.exec(ctx, q, f.FileID, f.FileName, f.FileSize, f.FileType, f.ChatID, f.MessageID)
	return err
}

func (s *PostgresStore) CountFiles(ctx context.Context) (int, error) {
	var n int
	_, err := s.queryRow(ctx, `SELECT COUNT(*) FROM files`, nil, &n)
	return n, err
}

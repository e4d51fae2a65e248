package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"drive-search-bot/internal/application"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
)

func toInbound(msg *tgbotapi.Message) application.Inbound {
	in := application.Inbound{
		MessageID: msg.MessageID,
		Text:      msg.Text,
		HasMedia:  hasMedia(msg),
	}
	if msg.Chat != nil {
		in.ChatID = msg.Chat.ID
		in.ChatType = msg.Chat.Type
	}
	if msg.From != nil {
		in.UserID = msg.From.ID
		in.Name = displayName(msg.From)
		in.Username = msg.From.UserName
	}
	if msg.IsCommand() {
		in.Command = strings.ToLower(msg.Command())
		in.Args = strings.TrimSpace(msg.CommandArguments())
	}
	return in
}

func fromUser(u *tgbotapi.User, chatID int64, chatType string) application.Inbound {
	return application.Inbound{
		ChatID:   chatID,
		ChatType: chatType,
		UserID:   u.ID,
		Name:     displayName(u),
		Username: u.UserName,
	}
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// adderName renders "First (@handle)".
func adderName(u *tgbotapi.User) string {
	name := u.FirstName
	if u.UserName != "" {
		name += " (@" + u.UserName + ")"
	}
	return strings.TrimSpace(name)
}

func hasMedia(msg *tgbotapi.Message) bool {
	return msg.Document != nil || len(msg.Photo) > 0 || msg.Video != nil || msg.Audio != nil ||
		msg.Voice != nil || msg.Animation != nil || msg.Sticker != nil || msg.VideoNote != nil
}

// addressedElsewhere reports a /cmd@other_bot command meant for another bot.
func addressedElsewhere(msg *tgbotapi.Message, botUsername string) bool {
	withAt := msg.CommandWithAt()
	i := strings.IndexByte(withAt, '@')
	if i < 0 || botUsername == "" {
		return false
	}
	return !strings.EqualFold(withAt[i+1:], strings.TrimPrefix(botUsername, "@"))
}

// trackedChat extracts the chat the bot just joined. Leaving, being kicked
// and private chats yield false.
func trackedChat(upd *tgbotapi.ChatMemberUpdated) (*model.Chat, bool) {
	if upd == nil || upd.Chat.Type == model.ChatTypePrivate {
		return nil, false
	}
	if !adapter.MemberStatus(upd.NewChatMember.Status).Joined() {
		return nil, false
	}
	c := &model.Chat{
		ID:       upd.Chat.ID,
		Title:    upd.Chat.Title,
		Username: upd.Chat.UserName,
		Type:     upd.Chat.Type,
	}
	if upd.From.ID != 0 {
		c.AdderID = upd.From.ID
		c.AdderName = adderName(&upd.From)
	}
	return c, true
}

// indexedFile extracts a document, video or audio attachment.
func indexedFile(msg *tgbotapi.Message) (*model.IndexedFile, bool) {
	if msg == nil || msg.Chat == nil {
		return nil, false
	}
	f := &model.IndexedFile{ChatID: msg.Chat.ID, MessageID: msg.MessageID}
	switch {
	case msg.Document != nil:
		f.FileID, f.FileName, f.FileType = msg.Document.FileID, msg.Document.FileName, "document"
		f.FileSize = model.HumanSize(int64(msg.Document.FileSize))
	case msg.Video != nil:
		f.FileID, f.FileName, f.FileType = msg.Video.FileID, msg.Video.FileName, "video"
		f.FileSize = model.HumanSize(int64(msg.Video.FileSize))
	case msg.Audio != nil:
		f.FileID, f.FileName, f.FileType = msg.Audio.FileID, msg.Audio.FileName, "audio"
		f.FileSize = model.HumanSize(int64(msg.Audio.FileSize))
	default:
		return nil, false
	}
	if f.FileName == "" {
		f.FileName = msg.Caption
	}
	return f, true
}

func inlineArticles(results []application.InlineResult, newID func() string) []interface{} {
	out := make([]interface{}, 0, len(results))
	for _, res := range results {
		article := tgbotapi.NewInlineQueryResultArticle(newID(), res.Title, res.Text)
		article.Description = res.Description
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(res.ButtonText, res.ButtonURL)),
		)
		article.ReplyMarkup = &kb
		out = append(out, article)
	}
	return out
}

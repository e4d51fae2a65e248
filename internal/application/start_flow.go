package application

import (
	"context"
	"strings"

	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
	"drive-search-bot/internal/infra/logging"
)

// Start greets the user, serves dl_<fileId> deep links and, while Drive is
// not connected, hands admins the authorization link.
func (b *BotFacade) Start(ctx context.Context, in Inbound) error {
	b.Touch(ctx, in)

	if arg := strings.TrimSpace(in.Args); strings.HasPrefix(arg, DeepLinkDownload) {
		if fileID := strings.TrimPrefix(arg, DeepLinkDownload); fileID != "" {
			return b.Download(ctx, in.ChatID, fileID)
		}
	}

	if b.svc.Auth.IsAuthenticated(ctx) {
		return b.reply(ctx, in.ChatID, b.tr.T("start.welcome"))
	}
	if b.gate.IsAdmin(in.UserID, in.Username) {
		return b.sendAuthLink(ctx, in.ChatID, "start.admin_auth")
	}
	return b.reply(ctx, in.ChatID, b.tr.T("start.not_connected"))
}

// Auth re-issues the Drive authorization link.
func (b *BotFacade) Auth(ctx context.Context, in Inbound) error {
	return b.sendAuthLink(ctx, in.ChatID, "auth.link")
}

func (b *BotFacade) sendAuthLink(ctx context.Context, chatID int64, key string) error {
	u, err := b.svc.Auth.AuthURL()
	if err != nil {
		logging.With(ctx, b.log).Error().Err(err).Msg("build auth url")
		return b.reply(ctx, chatID, b.tr.T("start.no_credentials"))
	}
	return b.replyButtons(ctx, chatID, b.tr.T(key, u), [][]adapter.InlineButton{
		{{Text: b.tr.T("auth.button"), URL: u}},
	})
}

// captureAuthCode handles free text from a private chat while Drive is not
// connected. It reports false when Drive is connected.
func (b *BotFacade) captureAuthCode(ctx context.Context, in Inbound) (bool, error) {
	if b.svc.Auth.IsAuthenticated(ctx) {
		return false, nil
	}
	if !b.gate.IsAdmin(in.UserID, in.Username) {
		return true, b.reply(ctx, in.ChatID, b.tr.T("auth.user_notice"))
	}
	code := strings.TrimSpace(in.Text)
	if len(code) <= authCodeMinLen {
		return true, b.reply(ctx, in.ChatID, b.tr.T("auth.send_code"))
	}
	if err := b.svc.Auth.Exchange(ctx, code); err != nil {
		logging.With(ctx, b.log).Warn().Err(err).Msg("drive code exchange failed")
		return true, b.reply(ctx, in.ChatID, b.tr.T("auth.failed"))
	}
	logging.With(ctx, b.log).Info().Msg("drive connected by admin")
	return true, b.reply(ctx, in.ChatID, b.tr.T("auth.success"))
}

func (b *BotFacade) Status(ctx context.Context, in Inbound) error {
	yesNo := func(v bool) string {
		if v {
			return b.tr.T("common.yes")
		}
		return b.tr.T("common.no")
	}
	return b.reply(ctx, in.ChatID, b.tr.T("status.text",
		in.UserID,
		yesNo(b.gate.IsAdmin(in.UserID, in.Username)),
		b.backend,
		yesNo(b.svc.Auth.IsAuthenticated(ctx)),
	))
}

func (b *BotFacade) Menu(ctx context.Context, in Inbound) error {
	text := b.tr.T("menu.text", b.channelLink())
	if !b.gate.IsAdmin(in.UserID, in.Username) {
		return b.reply(ctx, in.ChatID, text)
	}
	rows := [][]adapter.InlineButton{
		{
			{Text: b.tr.T("menu.btn_broadcast"), Data: CallbackAdmin + "broadcast"},
			{Text: b.tr.T("menu.btn_scan"), Data: CallbackAdmin + "scan"},
		},
		{
			{Text: b.tr.T("menu.btn_ban"), Data: CallbackAdmin + "ban"},
			{Text: b.tr.T("menu.btn_unban"), Data: CallbackAdmin + "unban"},
		},
		{
			{Text: b.tr.T("menu.btn_delete"), Data: CallbackAdmin + "del"},
			{Text: b.tr.T("menu.btn_stats"), Data: CallbackAdmin + "stats"},
		},
	}
	return b.replyButtons(ctx, in.ChatID, text+b.tr.T("menu.admin"), rows)
}

func (b *BotFacade) Contact(ctx context.Context, in Inbound) error {
	var rows [][]adapter.InlineButton
	for i, l := range b.cfg.ContactLinks {
		btn := adapter.InlineButton{Text: l.Text, URL: l.URL}
		if i%2 == 0 {
			rows = append(rows, []adapter.InlineButton{btn})
		} else {
			rows[len(rows)-1] = append(rows[len(rows)-1], btn)
		}
	}
	return b.replyButtons(ctx, in.ChatID, b.tr.T("contact.text"), rows)
}

// AdminAction runs an admin:<action> menu button.
func (b *BotFacade) AdminAction(ctx context.Context, in Inbound, action string) error {
	switch action {
	case "broadcast":
		return b.orch.EnterMode(ctx, in, model.ModeBroadcasting)
	case "ban":
		return b.orch.EnterMode(ctx, in, model.ModeAwaitingBanTarget)
	case "unban":
		return b.orch.EnterMode(ctx, in, model.ModeAwaitingUnbanTarget)
	case "del":
		return b.orch.EnterMode(ctx, in, model.ModeAwaitingDeleteQuery)
	case "scan":
		return b.Scan(ctx, in)
	case "stats":
		return b.Stats(ctx, in)
	}
	return nil
}

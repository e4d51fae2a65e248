package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"drive-search-bot/internal/application"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/infra/logging"
	"drive-search-bot/internal/infra/metrics"
)

// joinParameter is the /start payload of the inline switch-to-PM button.
const joinParameter = "join_required"

type cbHandler func(ctx context.Context, q *tgbotapi.CallbackQuery, in application.Inbound, arg string) error

type prefixCB struct {
	Prefix string
	Fn     cbHandler
}

// Prefix-match callbacks
func (r *RealTelegramBotAdapter) cbPrefixRoutes() []prefixCB {
	return []prefixCB{
		{Prefix: application.CallbackAdmin, Fn: r.adminCBRoute},
		{Prefix: application.CallbackDownload, Fn: r.downloadCBRoute},
		{Prefix: application.CallbackRemove, Fn: r.removeCBRoute},
	}
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q.From == nil {
		return nil
	}
	in := fromUser(q.From, q.From.ID, model.ChatTypePrivate)
	if q.Message != nil && q.Message.Chat != nil {
		in.ChatID = q.Message.Chat.ID
		in.ChatType = q.Message.Chat.Type
		in.MessageID = q.Message.MessageID
	}
	ctx = logging.WithChatID(logging.WithTgID(ctx, in.UserID), in.ChatID)

	data := strings.TrimSpace(q.Data)
	if !r.allow(ctx, in, "cb") {
		r.answerCallback(q.ID, "", false)
		return nil
	}
	for _, pr := range r.cbPrefixRoutes() {
		if strings.HasPrefix(data, pr.Prefix) {
			return pr.Fn(ctx, q, in, strings.TrimPrefix(data, pr.Prefix))
		}
	}
	r.answerCallback(q.ID, "", false)
	logging.With(ctx, r.log).Debug().Str("data", data).Msg("unknown callback data")
	return nil
}

func (r *RealTelegramBotAdapter) adminCBRoute(ctx context.Context, q *tgbotapi.CallbackQuery, in application.Inbound, action string) error {
	if !r.facade.Gate().IsAdmin(in.UserID, in.Username) {
		metrics.IncAdminCommand("cb:"+action, "unauthorized")
		r.answerCallback(q.ID, r.facade.T("gate.admin_only_alert"), true)
		return nil
	}
	metrics.IncAdminCommand("cb:"+action, "authorized")
	r.answerCallback(q.ID, "", false)
	// a menu button counts as a command for pending modes
	cmd := in
	cmd.Command = action
	r.facade.Orchestrator().Interrupt(cmd)
	return r.facade.AdminAction(ctx, in, action)
}

// downloadCBRoute answers the callback first; the transfer can outlive the
// callback's answer window.
func (r *RealTelegramBotAdapter) downloadCBRoute(ctx context.Context, q *tgbotapi.CallbackQuery, in application.Inbound, fileID string) error {
	switch r.facade.Gate().Check(ctx, in.UserID, in.Username) {
	case application.NotMember:
		r.answerCallback(q.ID, "", false)
		return r.facade.JoinPrompt(ctx, in.UserID)
	case application.Banned:
		r.answerCallback(q.ID, r.facade.T("gate.banned"), true)
		return nil
	}
	r.answerCallback(q.ID, "", false)
	if fileID == "" {
		return nil
	}
	return r.offload(ctx, in.ChatID, "download", func(ctx context.Context) error {
		return r.facade.Download(ctx, in.ChatID, fileID)
	})
}

func (r *RealTelegramBotAdapter) removeCBRoute(ctx context.Context, q *tgbotapi.CallbackQuery, in application.Inbound, fileID string) error {
	if !r.facade.Gate().IsAdmin(in.UserID, in.Username) {
		r.answerCallback(q.ID, r.facade.T("gate.admin_only_alert"), true)
		return nil
	}
	r.answerCallback(q.ID, "", false)
	if fileID == "" {
		return nil
	}
	return r.facade.RemoveFile(ctx, in.ChatID, in.MessageID, fileID)
}

// handleInline answers with deep-link articles. Non-members get a
// switch-to-PM prompt and banned users an empty answer.
func (r *RealTelegramBotAdapter) handleInline(ctx context.Context, q *tgbotapi.InlineQuery) error {
	if q.From == nil {
		return nil
	}
	ctx = logging.WithTgID(ctx, q.From.ID)
	cfg := tgbotapi.InlineConfig{
		InlineQueryID: q.ID,
		Results:       []interface{}{},
		CacheTime:     5,
		IsPersonal:    true,
	}
	if r.facade.Gate().IsBanned(ctx, q.From.ID, q.From.UserName) {
		return r.answerInline(cfg)
	}

	results, joined, err := r.facade.Inline(ctx, q.From.ID, displayName(q.From), q.From.UserName, q.Query)
	switch {
	case err != nil:
		logging.With(ctx, r.log).Warn().Err(err).Str("query", q.Query).Msg("inline search failed")
	case !joined:
		cfg.SwitchPMText = r.facade.T("inline.join")
		cfg.SwitchPMParameter = joinParameter
	default:
		cfg.Results = inlineArticles(results, r.newID)
	}
	return r.answerInline(cfg)
}

func (r *RealTelegramBotAdapter) answerInline(cfg tgbotapi.InlineConfig) error {
	_, err := r.api.Request(cfg)
	return err
}

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

type commandHandler func(ctx context.Context, in application.Inbound) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	f := r.facade
	orch := f.Orchestrator()
	search := r.gated(f.SearchCommand)

	return map[string]commandHandler{
		"start":   r.privateOnly(r.gated(r.startRoute)),
		"status":  f.Status,
		"menu":    r.privateOnly(r.gated(f.Menu)),
		"help":    r.privateOnly(r.gated(f.Menu)),
		"request": r.privateOnly(r.gated(r.enter(model.ModeRequesting))),
		"contact": r.gated(f.Contact),
		"tv":      search,
		"search":  search,
		"filter":  search,

		// These handlers are wrapped in our adminOnly middleware.
		"stats":        r.adminOnly(f.Stats),
		"groups":       r.adminOnly(f.Groups),
		"broadcast":    r.privateOnly(r.adminOnly(r.enter(model.ModeBroadcasting))),
		"broadcastnow": r.privateOnly(r.adminOnly(r.background(orch.SendNow))),
		"clear":        r.privateOnly(r.adminOnly(orch.ClearBroadcast)),
		"del":          r.privateOnly(r.adminOnly(r.enter(model.ModeAwaitingDeleteQuery))),
		"ban":          r.privateOnly(r.adminOnly(r.enter(model.ModeAwaitingBanTarget))),
		"unban":        r.privateOnly(r.adminOnly(r.enter(model.ModeAwaitingUnbanTarget))),
		"scan":         r.privateOnly(r.adminOnly(r.background(f.Scan))),
		"removeall":    r.privateOnly(r.adminOnly(r.background(f.RemoveAll))),
		"auth":         r.privateOnly(r.adminOnly(f.Auth)),
	}
}

// handleCommand cancels a target-awaiting mode before dispatching, so a
// command never reaches the mode as input.
func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, in application.Inbound) error {
	metrics.IncTelegramCommand("/" + in.Command)
	if r.facade.Orchestrator().Interrupt(in) {
		logging.With(ctx, r.log).Debug().Str("command", in.Command).Msg("pending mode cancelled by command")
	}
	h, ok := r.commandRoutes()[in.Command]
	if !ok {
		return nil
	}
	if !r.allow(ctx, in, in.Command) {
		return nil
	}
	return h(ctx, in)
}

// background moves a long-running handler to the bulk pool.
func (r *RealTelegramBotAdapter) background(next commandHandler) commandHandler {
	return func(ctx context.Context, in application.Inbound) error {
		return r.offload(ctx, in.ChatID, in.Command, func(ctx context.Context) error { return next(ctx, in) })
	}
}

// startRoute sends dl_ deep links, which download a file, to the bulk pool.
func (r *RealTelegramBotAdapter) startRoute(ctx context.Context, in application.Inbound) error {
	if strings.HasPrefix(in.Args, application.DeepLinkDownload) {
		return r.background(r.facade.Start)(ctx, in)
	}
	return r.facade.Start(ctx, in)
}

func (r *RealTelegramBotAdapter) enter(mode model.Mode) commandHandler {
	return func(ctx context.Context, in application.Inbound) error {
		return r.facade.Orchestrator().EnterMode(ctx, in, mode)
	}
}

// gated runs the membership and ban checks. Banned users get an explicit
// denial in private chats only.
func (r *RealTelegramBotAdapter) gated(next commandHandler) commandHandler {
	return func(ctx context.Context, in application.Inbound) error {
		switch r.facade.Gate().Check(ctx, in.UserID, in.Username) {
		case application.NotMember:
			return r.facade.JoinPrompt(ctx, in.ChatID)
		case application.Banned:
			if in.IsPrivate() {
				return r.facade.Notify(ctx, in.ChatID, "gate.banned")
			}
			return nil
		}
		return next(ctx, in)
	}
}

func (r *RealTelegramBotAdapter) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, in application.Inbound) error {
		if !r.facade.Gate().IsAdmin(in.UserID, in.Username) {
			metrics.IncAdminCommand("/"+in.Command, "unauthorized")
			return r.facade.Notify(ctx, in.ChatID, "gate.admin_only")
		}
		metrics.IncAdminCommand("/"+in.Command, "authorized")
		return next(ctx, in)
	}
}

func (r *RealTelegramBotAdapter) privateOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, in application.Inbound) error {
		if !in.IsPrivate() {
			return nil
		}
		return next(ctx, in)
	}
}

var (
	userCommands  = []string{"start", "menu", "tv", "request", "contact", "status"}
	adminCommands = []string{
		"start", "menu", "tv", "request", "contact", "status",
		"broadcast", "del", "scan", "removeall", "ban", "unban", "groups", "stats", "auth",
	}
)

// PublishCommands sets the command list shown by Telegram clients: the user
// list by default and the full list in each admin's private chat.
func (r *RealTelegramBotAdapter) PublishCommands(ctx context.Context) error {
	if _, err := r.api.Request(tgbotapi.NewSetMyCommands(r.botCommands(userCommands)...)); err != nil {
		return err
	}
	for _, id := range r.cfg.AdminIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		scope := tgbotapi.NewBotCommandScopeChat(id)
		if _, err := r.api.Request(tgbotapi.NewSetMyCommandsWithScope(scope, r.botCommands(adminCommands)...)); err != nil {
			r.log.Warn().Err(err).Int64("tg_id", id).Msg("failed to set admin menu commands")
		}
	}
	return nil
}

func (r *RealTelegramBotAdapter) botCommands(names []string) []tgbotapi.BotCommand {
	out := make([]tgbotapi.BotCommand, 0, len(names))
	for _, name := range names {
		out = append(out, tgbotapi.BotCommand{Command: name, Description: r.facade.T("commands." + name)})
	}
	return out
}

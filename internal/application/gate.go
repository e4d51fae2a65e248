package application

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"drive-search-bot/internal/config"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
	"drive-search-bot/internal/infra/metrics"
	"drive-search-bot/internal/usecase"
)

// Verdict is the outcome of gating an update.
type Verdict uint8

const (
	Allowed Verdict = iota
	NotMember
	Banned
)

func (v Verdict) String() string {
	switch v {
	case NotMember:
		return "not_member"
	case Banned:
		return "banned"
	default:
		return "allowed"
	}
}

// Gatekeeper decides who may use the bot: admins always, everyone else
// only after joining the required channel and while not banned.
type Gatekeeper struct {
	adminIDs     map[int64]struct{}
	adminHandles map[string]struct{}
	channel      model.ChatRef
	bot          adapter.Messenger
	users        usecase.UserUseCase
	cache        MembershipCache
	log          *zerolog.Logger
}

// MembershipCache remembers positive membership answers between updates.
type MembershipCache interface {
	Joined(ctx context.Context, userID int64) (bool, error)
	RememberJoined(ctx context.Context, userID int64) error
}

func NewGatekeeper(cfg config.BotConfig, bot adapter.Messenger, users usecase.UserUseCase, logger *zerolog.Logger) *Gatekeeper {
	g := &Gatekeeper{
		adminIDs:     make(map[int64]struct{}, len(cfg.AdminIDs)),
		adminHandles: make(map[string]struct{}, len(cfg.AdminUsernames)),
		channel:      model.ParseChatRef(cfg.RequiredChannel),
		bot:          bot,
		users:        users,
		log:          logger,
	}
	for _, id := range cfg.AdminIDs {
		g.adminIDs[id] = struct{}{}
	}
	for _, h := range cfg.AdminUsernames {
		h = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "@"))
		if h != "" {
			g.adminHandles[h] = struct{}{}
		}
	}
	return g
}

// UseMembershipCache puts c in front of the membership lookups.
func (g *Gatekeeper) UseMembershipCache(c MembershipCache) { g.cache = c }

// IsAdmin matches by id first, then by case-insensitive handle.
func (g *Gatekeeper) IsAdmin(userID int64, username string) bool {
	if _, ok := g.adminIDs[userID]; ok {
		return true
	}
	if username == "" {
		return false
	}
	_, ok := g.adminHandles[strings.ToLower(strings.TrimPrefix(username, "@"))]
	return ok
}

// IsMember reports required-channel membership. A failed lookup counts as
// not joined.
func (g *Gatekeeper) IsMember(ctx context.Context, userID int64, username string) bool {
	if g.channel.IsZero() || g.IsAdmin(userID, username) {
		return true
	}
	if g.cache != nil {
		if joined, err := g.cache.Joined(ctx, userID); err == nil && joined {
			return true
		} else if err != nil {
			g.log.Debug().Err(err).Msg("membership cache unavailable")
		}
	}
	status, err := g.bot.MemberStatus(ctx, g.channel, userID)
	if err != nil {
		g.log.Error().Err(err).Str("channel", g.channel.String()).Int64("tg_id", userID).
			Msg("membership check failed; the bot must be an administrator of the channel")
		return false
	}
	if !status.Joined() {
		return false
	}
	if g.cache != nil {
		if err := g.cache.RememberJoined(ctx, userID); err != nil {
			g.log.Debug().Err(err).Msg("membership cache write failed")
		}
	}
	return true
}

// Check runs the membership check, then the ban check.
func (g *Gatekeeper) Check(ctx context.Context, userID int64, username string) Verdict {
	if g.IsAdmin(userID, username) {
		return Allowed
	}
	if !g.IsMember(ctx, userID, username) {
		metrics.IncGateRejection(NotMember.String())
		return NotMember
	}
	if g.IsBanned(ctx, userID, username) {
		metrics.IncGateRejection(Banned.String())
		return Banned
	}
	return Allowed
}

// IsBanned never reports admins. A failed lookup counts as not banned.
func (g *Gatekeeper) IsBanned(ctx context.Context, userID int64, username string) bool {
	if g.IsAdmin(userID, username) {
		return false
	}
	banned, err := g.users.IsBanned(ctx, userID)
	if err != nil {
		g.log.Warn().Err(err).Int64("tg_id", userID).Msg("ban lookup failed")
	}
	return banned
}

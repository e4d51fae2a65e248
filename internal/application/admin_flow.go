package application

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/infra/logging"
)

// Telegram rejects longer messages; reports are cut a little earlier so the
// truncation note still fits.
const (
	messageLimit = 4096
	reportCut    = 4000
)

func (b *BotFacade) Stats(ctx context.Context, in Inbound) error {
	msgID := b.status(ctx, in.ChatID, b.tr.T("stats.generating"))
	st, err := b.svc.Stats.Collect(ctx, true)
	if err != nil {
		logging.With(ctx, b.log).Error().Err(err).Msg("collect stats")
		return b.editOrReply(ctx, in.ChatID, msgID, b.tr.T("stats.failed", describe(b.tr, err)))
	}
	return b.editOrReply(ctx, in.ChatID, msgID, b.renderStats(st))
}

func (b *BotFacade) renderStats(st model.Stats) string {
	drive := b.tr.T("stats.unavailable")
	if st.DriveCounted {
		drive = strconv.Itoa(st.DriveFiles)
	}
	return b.tr.T("stats.text",
		st.Users, st.ActiveUsers,
		st.Chats.Channels, st.Chats.Groups, st.Chats.Total,
		drive, st.IndexedFiles, st.TotalSearches,
	)
}

func (b *BotFacade) Groups(ctx context.Context, in Inbound) error {
	msgID := b.status(ctx, in.ChatID, b.tr.T("groups.fetching"))
	chats, err := b.svc.Chats.List(ctx)
	if err != nil {
		logging.With(ctx, b.log).Error().Err(err).Msg("list chats")
		return b.editOrReply(ctx, in.ChatID, msgID, b.tr.T("groups.failed"))
	}
	if len(chats) == 0 {
		return b.editOrReply(ctx, in.ChatID, msgID, b.tr.T("groups.empty"))
	}
	return b.editOrReply(ctx, in.ChatID, msgID, b.renderGroups(chats))
}

func (b *BotFacade) renderGroups(chats []*model.Chat) string {
	var sb strings.Builder
	sb.WriteString(b.tr.T("groups.header"))
	for _, c := range chats {
		username := b.tr.T("common.no_username")
		if c.Username != "" {
			username = "@" + strings.TrimPrefix(c.Username, "@")
		}
		adder := b.tr.T("groups.unknown_adder")
		if c.AdderID != 0 {
			adder = b.tr.T("groups.adder", c.AdderName, c.AdderID)
		}
		sb.WriteString(b.tr.T("groups.entry", c.Title, c.ID, username, c.Type, adder))
	}
	return truncateReport(sb.String(), b.tr.T("groups.truncated"))
}

// truncateReport cuts text that would not fit one Telegram message.
func truncateReport(text, note string) string {
	r := []rune(text)
	if len(r) <= messageLimit {
		return text
	}
	return string(r[:reportCut]) + note
}

func (b *BotFacade) Scan(ctx context.Context, in Inbound) error {
	msgID := b.status(ctx, in.ChatID, b.tr.T("scan.running"))
	report, err := b.svc.Duplicates.Scan(ctx, in.UserID)
	if err != nil {
		logging.With(ctx, b.log).Error().Err(err).Msg("duplicate scan")
		return b.editOrReply(ctx, in.ChatID, msgID, b.tr.T("scan.error", describe(b.tr, err)))
	}
	switch {
	case report.Scanned == 0:
		return b.editOrReply(ctx, in.ChatID, msgID, b.tr.T("scan.no_files"))
	case report.Groups == 0:
		return b.editOrReply(ctx, in.ChatID, msgID, b.tr.T("scan.none"))
	}
	return b.editOrReply(ctx, in.ChatID, msgID, b.renderScan(report))
}

func (b *BotFacade) renderScan(r model.ScanReport) string {
	var sb strings.Builder
	sb.WriteString(b.tr.T("scan.report", r.Groups, r.Removable))
	for _, g := range r.Sample {
		sb.WriteString(b.tr.T("scan.entry", g.Name, len(g.Remove)+1))
	}
	if more := r.Groups - len(r.Sample); more > 0 {
		sb.WriteString(b.tr.T("scan.more", more))
	}
	sb.WriteString(b.tr.T("scan.hint"))
	return truncateReport(sb.String(), "")
}

func (b *BotFacade) RemoveAll(ctx context.Context, in Inbound) error {
	pending := b.svc.Duplicates.Pending(in.UserID)
	if pending == 0 {
		return b.reply(ctx, in.ChatID, b.tr.T("removeall.none"))
	}
	msgID := b.status(ctx, in.ChatID, b.tr.T("removeall.started", pending))
	report, err := b.svc.Duplicates.Remove(ctx, in.UserID, func(done, total int) {
		if msgID != 0 {
			_ = b.bot.EditMessage(ctx, in.ChatID, msgID, b.tr.T("removeall.progress", done, total), nil)
		}
	})
	if errors.Is(err, domain.ErrNothingStaged) {
		return b.editOrReply(ctx, in.ChatID, msgID, b.tr.T("removeall.none"))
	}
	if err != nil {
		logging.With(ctx, b.log).Error().Err(err).Msg("duplicate removal")
		return b.editOrReply(ctx, in.ChatID, msgID, b.tr.T("error.generic"))
	}
	return b.editOrReply(ctx, in.ChatID, msgID, b.renderRemoval(report))
}

func (b *BotFacade) renderRemoval(r model.RemovalReport) string {
	text := b.tr.T("removeall.done", r.Succeeded, r.Failed)
	if r.FirstError != "" {
		text += b.tr.T("removeall.first_error", r.FirstError)
	}
	if r.PermissionHint {
		text += b.tr.T("removeall.permission_hint")
	}
	return text
}

package application

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"drive-search-bot/internal/infra/logging"
)

const progressSteps = 10

// Download fetches a Drive file and uploads it to chatID, editing a status
// message as it goes. The local copy is removed afterwards.
func (b *BotFacade) Download(ctx context.Context, chatID int64, fileID string) error {
	log := logging.With(ctx, b.log)
	msgID := b.status(ctx, chatID, b.tr.T("download.fetching"))

	item, err := b.svc.Drive.Metadata(ctx, fileID)
	if err != nil {
		log.Warn().Err(err).Str("file_id", fileID).Msg("file metadata")
		return b.editOrReply(ctx, chatID, msgID, b.tr.T("download.failed", describe(b.tr, err)))
	}
	name := item.Name
	if name == "" {
		name = "file"
	}
	_ = b.editOrReply(ctx, chatID, msgID, b.tr.T("download.downloading", name, progressBar(0)))

	lastStep := 0
	path, err := b.svc.Drive.Download(ctx, fileID, name, func(fraction float64) {
		step := int(fraction * progressSteps)
		if step <= lastStep || msgID == 0 {
			return
		}
		lastStep = step
		_ = b.bot.EditMessage(ctx, chatID, msgID, b.tr.T("download.downloading", name, progressBar(fraction)), nil)
	})
	if err != nil {
		log.Warn().Err(err).Str("file_id", fileID).Msg("download")
		return b.editOrReply(ctx, chatID, msgID, b.tr.T("download.failed", describe(b.tr, err)))
	}
	defer removeDownload(path)

	_ = b.editOrReply(ctx, chatID, msgID, b.tr.T("download.uploading", name))
	if err := b.bot.SendDocument(ctx, chatID, path, b.tr.T("download.caption", name)); err != nil {
		log.Error().Err(err).Str("file_id", fileID).Msg("upload document")
		return b.editOrReply(ctx, chatID, msgID, b.tr.T("download.failed", b.tr.T("error.upload")))
	}
	if msgID != 0 {
		_ = b.bot.DeleteMessage(ctx, chatID, msgID)
	}
	log.Info().Str("file_id", fileID).Str("name", name).Msg("file delivered")
	return nil
}

// RemoveFile trashes one Drive file from an rm:<id> button, editing the
// results message in place.
func (b *BotFacade) RemoveFile(ctx context.Context, chatID int64, msgID int, fileID string) error {
	name := fileID
	if item, err := b.svc.Drive.Metadata(ctx, fileID); err == nil && item.Name != "" {
		name = item.Name
	}
	_ = b.editOrReply(ctx, chatID, msgID, b.tr.T("remove.deleting", name))
	if err := b.svc.Drive.Delete(ctx, fileID); err != nil {
		logging.With(ctx, b.log).Warn().Err(err).Str("file_id", fileID).Msg("remove file")
		return b.editOrReply(ctx, chatID, msgID, b.tr.T("remove.failed", name, describe(b.tr, err)))
	}
	return b.editOrReply(ctx, chatID, msgID, b.tr.T("remove.done", name))
}

func progressBar(fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * progressSteps)
	return strings.Repeat("▰", filled) + strings.Repeat("▱", progressSteps-filled) + " " +
		formatPercent(fraction)
}

func formatPercent(fraction float64) string {
	pct := int(fraction*100 + 0.5)
	return strconv.Itoa(pct) + "%"
}

func removeDownload(path string) {
	if path == "" {
		return
	}
	_ = os.RemoveAll(filepath.Dir(path))
}

package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
	"drive-search-bot/internal/domain/ports/repository"
	"drive-search-bot/internal/infra/logging"
	"drive-search-bot/internal/infra/metrics"
)

const (
	scanSampleSize = 10
	progressEvery  = 10
	maxReasonLen   = 120
)

var _ DuplicateUseCase = (*duplicateUC)(nil)

// RemovalProgress is called after every progressEvery processed items.
type RemovalProgress func(done, total int)

type DuplicateUseCase interface {
	// Scan stages every file sharing a name with an older file for removal by admin.
	Scan(ctx context.Context, adminID int64) (model.ScanReport, error)
	// Remove trashes the staged files one by one. The staged set is cleared
	// whatever the outcome.
	Remove(ctx context.Context, adminID int64, progress RemovalProgress) (model.RemovalReport, error)
	Pending(adminID int64) int
}

type duplicateUC struct {
	drive    adapter.DriveService
	sessions repository.SessionStore
	pace     time.Duration
	log      *zerolog.Logger
}

func NewDuplicateUseCase(drive adapter.DriveService, sessions repository.SessionStore, pace time.Duration, logger *zerolog.Logger) *duplicateUC {
	return &duplicateUC{drive: drive, sessions: sessions, pace: pace, log: logger}
}

func (d *duplicateUC) Scan(ctx context.Context, adminID int64) (model.ScanReport, error) {
	defer logging.TraceDuration(d.log, "DuplicateUC.Scan")()

	items, err := d.drive.ListAll(ctx)
	if err != nil {
		return model.ScanReport{}, err
	}
	groups := GroupDuplicates(items)

	report := model.ScanReport{Scanned: len(items), Groups: len(groups)}
	var staged []string
	for _, g := range groups {
		for _, it := range g.Remove {
			staged = append(staged, it.ID)
		}
	}
	report.Removable = len(staged)
	if len(groups) > scanSampleSize {
		report.Sample = groups[:scanSampleSize]
	} else {
		report.Sample = groups
	}

	if len(staged) == 0 {
		d.sessions.ClearDeletions(adminID)
	} else {
		d.sessions.StageDeletions(adminID, staged)
	}
	d.log.Info().Int64("admin_id", adminID).Int("scanned", report.Scanned).Int("groups", report.Groups).
		Int("removable", report.Removable).Msg("duplicate scan finished")
	return report, nil
}

// GroupDuplicates groups items by exact name in first-seen order. Within a
// group the oldest item is kept; ties keep listing order.
func GroupDuplicates(items []model.DriveItem) []model.DuplicateGroup {
	byName := make(map[string][]model.DriveItem)
	var order []string
	for _, it := range items {
		if it.IsFolder() {
			continue
		}
		if _, seen := byName[it.Name]; !seen {
			order = append(order, it.Name)
		}
		byName[it.Name] = append(byName[it.Name], it)
	}

	var groups []model.DuplicateGroup
	for _, name := range order {
		list := byName[name]
		if len(list) < 2 {
			continue
		}
		sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedTime.Before(list[j].CreatedTime) })
		groups = append(groups, model.DuplicateGroup{Name: name, Keep: list[0], Remove: list[1:]})
	}
	return groups
}

func (d *duplicateUC) Pending(adminID int64) int {
	return len(d.sessions.PendingDeletions(adminID))
}

func (d *duplicateUC) Remove(ctx context.Context, adminID int64, progress RemovalProgress) (model.RemovalReport, error) {
	ids := d.sessions.PendingDeletions(adminID)
	if len(ids) == 0 {
		return model.RemovalReport{}, domain.ErrNothingStaged
	}
	defer d.sessions.ClearDeletions(adminID)
	defer logging.TraceDuration(d.log, "DuplicateUC.Remove")()

	report := model.RemovalReport{Total: len(ids)}
	limiter := newPacer(d.pace)
	for i, id := range ids {
		if err := limiter.Wait(ctx); err != nil {
			report.Failed += len(ids) - i
			if report.FirstError == "" {
				report.FirstError = reasonOf(err)
			}
			return report, nil
		}
		err := d.drive.Delete(ctx, id)
		metrics.IncDuplicateRemoval(err)
		if err != nil {
			report.Failed++
			if report.FirstError == "" {
				report.FirstError = reasonOf(err)
				report.PermissionHint = errors.Is(err, domain.ErrForbidden)
			}
			d.log.Debug().Err(err).Str("file_id", id).Msg("duplicate removal failed")
		} else {
			report.Succeeded++
		}
		if progress != nil && (i+1)%progressEvery == 0 {
			progress(i+1, len(ids))
		}
	}
	d.log.Info().Int64("admin_id", adminID).Int("succeeded", report.Succeeded).Int("failed", report.Failed).
		Msg("duplicate removal finished")
	return report, nil
}

// reasonOf turns a failure into the short text shown to the admin.
func reasonOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return "403 Forbidden (owner or manager permission required)"
	case errors.Is(err, domain.ErrNotFound):
		return "404 Not Found"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "401 Drive authorization expired"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	msg := err.Error()
	if r := []rune(msg); len(r) > maxReasonLen {
		msg = string(r[:maxReasonLen]) + "…"
	}
	return msg
}

package sched

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"drive-search-bot/internal/infra/metrics"
)

// CleanupWorker periodically removes download directories left behind by
// interrupted transfers.
type CleanupWorker struct {
	dir      string
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
	log      *zerolog.Logger
}

func NewCleanupWorker(dir string, interval, maxAge time.Duration, logger *zerolog.Logger) *CleanupWorker {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	l := logger.With().Str("component", "CleanupWorker").Logger()
	return &CleanupWorker{
		dir:      dir,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
		log:      &l,
	}
}

// Run sweeps once at startup and then on every tick until ctx is done.
func (w *CleanupWorker) Run(ctx context.Context) error {
	w.log.Info().Str("dir", w.dir).Dur("interval", w.interval).Msg("Starting cleanup worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweepAndLog()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping cleanup worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweepAndLog()
		}
	}
}

func (w *CleanupWorker) sweepAndLog() {
	n, err := w.Sweep()
	if err != nil {
		w.log.Error().Err(err).Msg("cleanup worker error")
	}
	if n > 0 {
		metrics.AddDownloadsCleaned(n)
		w.log.Info().Int("count", n).Msg("stale downloads removed")
	}
}

// Sweep removes entries of the download directory older than maxAge and
// reports how many were removed. A missing directory is not an error.
func (w *CleanupWorker) Sweep() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	cutoff := w.now().Add(-w.maxAge)
	removed := 0
	var firstErr error
	for _, e := range entries {
		created, ok := w.createdAt(e)
		if !ok || !created.Before(cutoff) {
			continue
		}
		// a transfer still writing into the directory keeps it fresh
		if w.touchedSince(filepath.Join(w.dir, e.Name()), cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(w.dir, e.Name())); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}

// touchedSince reports whether path or anything directly inside it was
// modified after cutoff.
func (w *CleanupWorker) touchedSince(path string, cutoff time.Time) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.ModTime().After(cutoff) {
		return true
	}
	if !info.IsDir() {
		return false
	}
	children, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	for _, c := range children {
		if ci, err := c.Info(); err == nil && ci.ModTime().After(cutoff) {
			return true
		}
	}
	return false
}

// createdAt reads the timestamp embedded in ULID-named directories and falls
// back to the modification time for anything else.
func (w *CleanupWorker) createdAt(e fs.DirEntry) (time.Time, bool) {
	if e.IsDir() {
		if id, err := ulid.ParseStrict(e.Name()); err == nil {
			return ulid.Time(id.Time()), true
		}
	}
	info, err := e.Info()
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

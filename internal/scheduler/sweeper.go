package scheduler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically removes stale per-job render work directories. Render
// jobs leave their scripts and media behind for post-mortem inspection; the
// sweeper reclaims the disk once they are old enough. It never touches the
// job store, so completed jobs stay pollable for the process lifetime.
type Sweeper struct {
	workRoot string
	schedule string
	maxAge   time.Duration
	cron     *cron.Cron
}

// NewSweeper creates a sweeper for the given work root
func NewSweeper(workRoot, schedule string, maxAge time.Duration) *Sweeper {
	return &Sweeper{
		workRoot: workRoot,
		schedule: schedule,
		maxAge:   maxAge,
	}
}

// Start begins the sweep schedule
func (s *Sweeper) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, s.Sweep); err != nil {
		return err
	}
	s.cron.Start()

	slog.Info("Work directory sweeper started",
		"work_root", s.workRoot,
		"schedule", s.schedule,
		"max_age", s.maxAge.String(),
	)
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish
func (s *Sweeper) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}

	done := s.cron.Stop()
	select {
	case <-done.Done():
		slog.Info("Work directory sweeper stopped")
	case <-ctx.Done():
		slog.Warn("Timeout waiting for sweeper to stop")
	}
}

// Sweep removes job work directories older than the configured age
func (s *Sweeper) Sweep() {
	entries, err := os.ReadDir(s.workRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("Failed to read work root", "work_root", s.workRoot, "error", err.Error())
		}
		return
	}

	cutoff := time.Now().Add(-s.maxAge)
	removed := 0

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "job_") {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.workRoot, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			slog.Error("Failed to remove stale work directory", "path", path, "error", err.Error())
			continue
		}
		removed++
	}

	if removed > 0 {
		slog.Info("Swept stale render work directories", "removed", removed)
	}
}

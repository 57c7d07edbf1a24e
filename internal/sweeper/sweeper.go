package sweeper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"photoflow/internal/database"
	"photoflow/internal/logging"
	"photoflow/internal/metrics"
	"photoflow/internal/storage"

	"github.com/karrick/godirwalk"
)

const (
	// DefaultInterval between sweeps.
	DefaultInterval = 6 * time.Hour
	// DefaultGrace is the minimum age before an unreferenced file is
	// considered orphaned.
	DefaultGrace = 24 * time.Hour
)

// Sweeper periodically deletes unreferenced files from the storage root.
type Sweeper struct {
	db       *database.Database
	store    *storage.Store
	interval time.Duration
	grace    time.Duration
}

// New creates a Sweeper. Non-positive interval or grace fall back to
// the defaults.
func New(db *database.Database, store *storage.Store, interval, grace time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Sweeper{db: db, store: store, interval: interval, grace: grace}
}

// Run sweeps on a fixed interval until ctx is cancelled. The first
// sweep happens after one full interval, not at startup, so a restart
// never races in-flight ingestion.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logging.Info("Sweeper running every %v (grace %v)", s.interval, s.grace)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.SweepOnce(ctx)
			if err != nil {
				logging.Error("Sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				logging.Info("Sweep removed %d orphaned files", removed)
			}
		}
	}
}

// SweepOnce performs a single sweep and returns how many files it
// removed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	known, err := s.db.StoredPaths(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-s.grace)

	var removed int
	err = godirwalk.Walk(s.store.Root(), &godirwalk.Options{
		Unsorted: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsDir() || !de.IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(s.store.Root(), osPathname)
			if err != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)
			if _, ok := known[rel]; ok {
				return nil
			}

			info, err := os.Stat(osPathname)
			if err != nil {
				return nil
			}
			if info.ModTime().After(cutoff) {
				return nil
			}

			if err := s.store.Delete(rel); err != nil {
				logging.Warn("Failed to remove orphan %s: %v", rel, err)
				return nil
			}
			logging.Debug("Removed orphan %s", rel)
			metrics.SweeperFilesRemoved.Inc()
			removed++
			return nil
		},
		ErrorCallback: func(osPathname string, err error) godirwalk.ErrorAction {
			logging.Warn("Sweep error at %s: %v", osPathname, err)
			return godirwalk.SkipNode
		},
	})
	metrics.SweeperRunsTotal.Inc()
	if err != nil {
		return removed, fmt.Errorf("sweep walk failed: %w", err)
	}
	return removed, nil
}

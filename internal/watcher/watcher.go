package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"photoflow/internal/database"
	"photoflow/internal/jobs"
	"photoflow/internal/logging"
	"photoflow/internal/media"
	"photoflow/internal/storage"

	"github.com/fsnotify/fsnotify"
	"github.com/karrick/godirwalk"
)

// settleDelay gives a just-created file time to finish being written
// before it is ingested.
const settleDelay = 500 * time.Millisecond

// Dispatcher hands a newly ingested asset to the job runner.
type Dispatcher interface {
	Dispatch(ctx context.Context, kind jobs.Kind, assetID int64) error
}

// Watcher ingests new image files appearing under the storage root.
type Watcher struct {
	db       *database.Database
	store    *storage.Store
	dispatch Dispatcher
	owner    string
}

// New creates a Watcher. Ingested assets are owned by owner.
func New(db *database.Database, store *storage.Store, dispatch Dispatcher, owner string) *Watcher {
	return &Watcher{db: db, store: store, dispatch: dispatch, owner: owner}
}

// Scan walks the storage root once and ingests every image file the
// database does not know. Used at startup to catch files that arrived
// while the process was down.
func (w *Watcher) Scan(ctx context.Context) error {
	known, err := w.db.StoredPaths(ctx)
	if err != nil {
		return err
	}

	var found int
	err = godirwalk.Walk(w.store.Root(), &godirwalk.Options{
		Unsorted: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsDir() || !de.IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(w.store.Root(), osPathname)
			if err != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)
			if !ingestable(rel) {
				return nil
			}
			if _, ok := known[rel]; ok {
				return nil
			}
			if err := w.ingest(ctx, rel); err != nil {
				logging.Warn("Scan failed to ingest %s: %v", rel, err)
				return nil
			}
			found++
			return nil
		},
		ErrorCallback: func(osPathname string, err error) godirwalk.ErrorAction {
			logging.Warn("Scan error at %s: %v", osPathname, err)
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return fmt.Errorf("storage scan failed: %w", err)
	}
	if found > 0 {
		logging.Info("Startup scan ingested %d new files", found)
	}
	return nil
}

// Run watches the storage root until ctx is cancelled. Subdirectories
// created while running are added to the watch.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addWatches(fw, w.store.Root()); err != nil {
		return err
	}
	logging.Info("Watching %s for new photos", w.store.Root())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fw, event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logging.Warn("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) addWatches(fw *fsnotify.Watcher, root string) error {
	return godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if !de.IsDir() {
				return nil
			}
			if err := fw.Add(osPathname); err != nil {
				return fmt.Errorf("failed to watch %s: %w", osPathname, err)
			}
			return nil
		},
	})
}

func (w *Watcher) handleEvent(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if err := fw.Add(event.Name); err != nil {
			logging.Warn("Failed to watch new directory %s: %v", event.Name, err)
		}
		return
	}

	rel, err := filepath.Rel(w.store.Root(), event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if !ingestable(rel) {
		return
	}

	// Let writers finish before reading the file.
	time.Sleep(settleDelay)

	known, err := w.db.StoredPaths(ctx)
	if err != nil {
		logging.Error("Failed to check known paths: %v", err)
		return
	}
	if _, ok := known[rel]; ok {
		return
	}

	if err := w.ingest(ctx, rel); err != nil {
		logging.Error("Failed to ingest %s: %v", rel, err)
	}
}

func (w *Watcher) ingest(ctx context.Context, rel string) error {
	size, err := w.store.Size(rel)
	if err != nil {
		return err
	}

	asset := &database.Asset{
		Owner:      w.owner,
		Filename:   filepath.Base(rel),
		StoredPath: rel,
		Size:       size,
		Status:     database.StatusPending,
	}
	if err := w.db.CreateAsset(ctx, asset); err != nil {
		return err
	}
	logging.Info("Ingested %s as asset %d", rel, asset.ID)

	if err := w.dispatch.Dispatch(ctx, jobs.KindProcess, asset.ID); err != nil {
		logging.Warn("Processing for asset %d not scheduled: %v", asset.ID, err)
	}
	return nil
}

// ingestable filters out non-images, derived thumbnails, hidden files,
// and in-flight temp writes.
func ingestable(rel string) bool {
	base := filepath.Base(rel)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if !media.IsImagePath(rel) {
		return false
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return !strings.HasSuffix(stem, "_thumb")
}

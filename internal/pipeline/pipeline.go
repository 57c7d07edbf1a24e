package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"photoflow/internal/database"
	"photoflow/internal/exif"
	"photoflow/internal/jobs"
	"photoflow/internal/logging"
	"photoflow/internal/media"
	"photoflow/internal/metrics"
	"photoflow/internal/storage"
	"photoflow/internal/tagging"
)

// Thumbnailer renders a thumbnail from original image bytes.
type Thumbnailer interface {
	Generate(r io.ReadSeeker) ([]byte, error)
}

// Pipeline runs the ingestion sequence for individual assets.
type Pipeline struct {
	db    *database.Database
	store *storage.Store
	thumb Thumbnailer
}

// New creates a Pipeline.
func New(db *database.Database, store *storage.Store, thumb Thumbnailer) *Pipeline {
	return &Pipeline{db: db, store: store, thumb: thumb}
}

// Process runs the full ingestion sequence for one asset. A missing
// asset aborts with a permanent error and no state change; any other
// failure marks the asset failed and returns a retryable error.
func (p *Pipeline) Process(ctx context.Context, assetID int64) error {
	start := time.Now()
	err := p.process(ctx, assetID)
	metrics.PipelineRunDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.PipelineRunsTotal.WithLabelValues("success").Inc()
	case jobs.IsPermanent(err):
		metrics.PipelineRunsTotal.WithLabelValues("aborted").Inc()
	default:
		metrics.PipelineRunsTotal.WithLabelValues("failure").Inc()
	}
	return err
}

func (p *Pipeline) process(ctx context.Context, assetID int64) error {
	asset, err := p.db.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, database.ErrAssetNotFound) {
			// Deleted between trigger and run; nothing to mark.
			return jobs.Permanent(err)
		}
		return err
	}

	logging.Info("Processing asset %d (%s)", asset.ID, asset.Filename)
	if err := p.db.UpdateStatus(ctx, asset.ID, database.StatusProcessing); err != nil {
		return err
	}

	if err := p.generateThumbnail(ctx, asset); err != nil {
		p.markFailed(ctx, asset.ID)
		return fmt.Errorf("thumbnail for asset %d: %w", asset.ID, err)
	}

	if err := p.extractAndTag(ctx, asset); err != nil {
		p.markFailed(ctx, asset.ID)
		return fmt.Errorf("metadata for asset %d: %w", asset.ID, err)
	}

	if err := p.db.UpdateStatus(ctx, asset.ID, database.StatusCompleted); err != nil {
		return err
	}
	logging.Info("Asset %d completed", asset.ID)
	return nil
}

// GenerateThumbnail regenerates only the thumbnail, used after an edit
// overwrote the original. Asset state is not touched.
func (p *Pipeline) GenerateThumbnail(ctx context.Context, assetID int64) error {
	asset, err := p.db.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, database.ErrAssetNotFound) {
			return jobs.Permanent(err)
		}
		return err
	}
	return p.generateThumbnail(ctx, asset)
}

// ExtractMetadata re-runs only metadata extraction and tag inference,
// used for a manual re-parse of an existing asset. Asset state is not
// touched.
func (p *Pipeline) ExtractMetadata(ctx context.Context, assetID int64) error {
	asset, err := p.db.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, database.ErrAssetNotFound) {
			return jobs.Permanent(err)
		}
		return err
	}
	return p.extractAndTag(ctx, asset)
}

func (p *Pipeline) generateThumbnail(ctx context.Context, asset *database.Asset) error {
	f, err := p.store.Open(asset.StoredPath)
	if err != nil {
		return err
	}
	data, err := p.thumb.Generate(f)
	f.Close()
	if err != nil {
		return err
	}

	thumbPath := path.Join(path.Dir(asset.StoredPath), media.ThumbnailName(asset.StoredPath))
	if err := p.store.Write(thumbPath, data); err != nil {
		return err
	}
	return p.db.SetThumbnail(ctx, asset.ID, thumbPath)
}

// extractAndTag persists best-effort metadata and folds inferred tags
// into the tag store. Only storage and database failures surface;
// unreadable metadata yields an empty record, not an error.
func (p *Pipeline) extractAndTag(ctx context.Context, asset *database.Asset) error {
	f, err := p.store.Open(asset.StoredPath)
	if err != nil {
		return err
	}
	meta := exif.Extract(f)
	f.Close()

	if err := p.db.ApplyMetadata(ctx, asset.ID, meta); err != nil {
		return err
	}

	for _, name := range tagging.Infer(meta, asset.Width, asset.Height) {
		tag, err := p.db.GetOrCreateTag(ctx, name, database.TagTypeAuto)
		if err != nil {
			return err
		}
		linked, err := p.db.LinkExists(ctx, asset.ID, tag.ID)
		if err != nil {
			return err
		}
		if linked {
			continue
		}
		if err := p.db.CreateLink(ctx, asset.ID, tag.ID); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) markFailed(ctx context.Context, assetID int64) {
	if err := p.db.UpdateStatus(ctx, assetID, database.StatusFailed); err != nil {
		logging.Error("Failed to mark asset %d failed: %v", assetID, err)
	}
}

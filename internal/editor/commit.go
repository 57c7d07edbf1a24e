package editor

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"path"
	"path/filepath"
	"strings"

	"photoflow/internal/database"
	"photoflow/internal/jobs"
	"photoflow/internal/logging"
	"photoflow/internal/media"
	"photoflow/internal/metrics"

	"github.com/disintegration/imaging"
	"github.com/oklog/ulid/v2"
)

const (
	// DefaultPreviewSize bounds the longer dimension of rendered previews.
	DefaultPreviewSize = 800

	previewQuality = 85
)

// CommitOverwrite re-encodes the edited buffer into the asset's stored
// file, updates the recorded dimensions and size, and asks the job
// runner to regenerate the now-stale thumbnail.
func (s *Session) CommitOverwrite(ctx context.Context) error {
	if err := s.finish(); err != nil {
		return err
	}

	format := media.FormatForFilename(s.asset.StoredPath)
	data, err := media.Encode(s.img, format)
	if err != nil {
		return fmt.Errorf("failed to encode edited image: %w", err)
	}

	if err := s.editor.store.Write(s.asset.StoredPath, data); err != nil {
		return err
	}

	b := s.img.Bounds()
	if err := s.editor.db.UpdateContent(ctx, s.asset.ID, b.Dx(), b.Dy(), int64(len(data))); err != nil {
		return err
	}

	metrics.EditCommitsTotal.WithLabelValues("overwrite").Inc()
	logging.Info("Asset %d overwritten: %dx%d %s, %d bytes",
		s.asset.ID, b.Dx(), b.Dy(), format, len(data))

	if err := s.editor.dispatch.Dispatch(ctx, jobs.KindThumbnail, s.asset.ID); err != nil {
		logging.Warn("Thumbnail regeneration for asset %d not scheduled: %v", s.asset.ID, err)
	}
	return nil
}

// CommitAsNew writes the edited buffer as a brand-new private asset
// owned by owner and schedules full reprocessing for it. The source
// asset is untouched.
func (s *Session) CommitAsNew(ctx context.Context, owner string) (*database.Asset, error) {
	if err := s.finish(); err != nil {
		return nil, err
	}
	if owner == "" {
		owner = s.asset.Owner
	}

	newName := derivedFilename(s.asset.Filename)
	newStored := path.Join(path.Dir(s.asset.StoredPath), newName)

	data, err := media.Encode(s.img, media.FormatForFilename(newName))
	if err != nil {
		return nil, fmt.Errorf("failed to encode edited image: %w", err)
	}

	if err := s.editor.store.Write(newStored, data); err != nil {
		return nil, err
	}

	b := s.img.Bounds()
	asset := &database.Asset{
		Owner:       owner,
		Filename:    newName,
		StoredPath:  newStored,
		Size:        int64(len(data)),
		Width:       b.Dx(),
		Height:      b.Dy(),
		IsPublic:    false,
		Description: "Edited from: " + s.asset.Filename,
		Status:      database.StatusPending,
	}
	if err := s.editor.db.CreateAsset(ctx, asset); err != nil {
		// Don't leave the blob behind without a record.
		if derr := s.editor.store.Delete(newStored); derr != nil {
			logging.Warn("Failed to remove orphaned edit output %s: %v", newStored, derr)
		}
		return nil, err
	}

	metrics.EditCommitsTotal.WithLabelValues("as_new").Inc()
	logging.Info("Asset %d saved as new asset %d (%s)", s.asset.ID, asset.ID, newName)

	if err := s.editor.dispatch.Dispatch(ctx, jobs.KindProcess, asset.ID); err != nil {
		logging.Warn("Processing for new asset %d not scheduled: %v", asset.ID, err)
	}
	return asset, nil
}

// Preview renders the current buffer as a base64 JPEG bounded by
// maxSize on the longer dimension, never upscaling. It persists
// nothing but still finishes the session.
func (s *Session) Preview(maxSize int) (string, error) {
	if err := s.finish(); err != nil {
		return "", err
	}
	if maxSize <= 0 {
		maxSize = DefaultPreviewSize
	}

	img := s.img
	b := img.Bounds()
	if b.Dx() > maxSize || b.Dy() > maxSize {
		img = imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, media.FlattenWhite(img), &jpeg.Options{Quality: previewQuality}); err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// finish validates the session for a terminal call and seals it.
func (s *Session) finish() error {
	if s.err != nil {
		return s.err
	}
	if s.finished {
		return ErrSessionFinished
	}
	s.finished = true
	return nil
}

// derivedFilename names the output of CommitAsNew after its source:
// "<base>_edited_<suffix><ext>" with a fresh random suffix.
func derivedFilename(source string) string {
	base := filepath.Base(source)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	suffix := strings.ToLower(ulid.Make().String()[16:])
	return fmt.Sprintf("%s_edited_%s%s", name, suffix, ext)
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"photoflow/internal/exif"
)

// ErrAssetNotFound is returned when an asset id has no matching record.
var ErrAssetNotFound = errors.New("asset not found")

// CreateAsset inserts a new asset record and fills in its ID.
func (d *Database) CreateAsset(ctx context.Context, a *Asset) error {
	done := observeQuery("create_asset")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if a.Status == "" {
		a.Status = StatusPending
	}

	result, err := d.db.ExecContext(ctx, `
		INSERT INTO assets (owner, filename, stored_path, thumbnail_path, size,
			width, height, is_public, description, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.Owner, a.Filename, a.StoredPath, a.ThumbnailPath, a.Size,
		a.Width, a.Height, boolToInt(a.IsPublic), a.Description, string(a.Status))
	if err != nil {
		err = fmt.Errorf("failed to create asset: %w", err)
		done(err)
		return err
	}

	a.ID, _ = result.LastInsertId()
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	done(nil)
	return nil
}

// GetAsset returns the asset with the given id, or ErrAssetNotFound.
func (d *Database) GetAsset(ctx context.Context, id int64) (*Asset, error) {
	done := observeQuery("get_asset")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		a          Asset
		isPublic   int
		status     string
		takenAt    sql.NullInt64
		gpsLat     sql.NullFloat64
		gpsLon     sql.NullFloat64
		exifParsed int
		thumbGen   int
		createdAt  int64
		updatedAt  int64
	)

	err := d.db.QueryRowContext(ctx, `
		SELECT id, owner, filename, stored_path, thumbnail_path, size,
			width, height, is_public, description, status,
			camera_make, camera_model, taken_at, exposure_time, f_number,
			iso, focal_length, gps_latitude, gps_longitude, exif_parsed,
			thumbnail_generated, created_at, updated_at
		FROM assets WHERE id = ?
	`, id).Scan(&a.ID, &a.Owner, &a.Filename, &a.StoredPath, &a.ThumbnailPath,
		&a.Size, &a.Width, &a.Height, &isPublic, &a.Description, &status,
		&a.CameraMake, &a.CameraModel, &takenAt, &a.ExposureTime, &a.FNumber,
		&a.ISO, &a.FocalLength, &gpsLat, &gpsLon, &exifParsed,
		&thumbGen, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		done(nil)
		return nil, ErrAssetNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed to get asset %d: %w", id, err)
		done(err)
		return nil, err
	}

	a.IsPublic = isPublic != 0
	a.Status = Status(status)
	a.ExifParsed = exifParsed != 0
	a.ThumbnailGenerated = thumbGen != 0
	a.CreatedAt = time.Unix(createdAt, 0)
	a.UpdatedAt = time.Unix(updatedAt, 0)
	if takenAt.Valid {
		t := time.Unix(takenAt.Int64, 0)
		a.TakenAt = &t
	}
	if gpsLat.Valid {
		v := gpsLat.Float64
		a.GPSLatitude = &v
	}
	if gpsLon.Valid {
		v := gpsLon.Float64
		a.GPSLongitude = &v
	}

	done(nil)
	return &a, nil
}

// UpdateStatus sets the processing status of an asset.
func (d *Database) UpdateStatus(ctx context.Context, id int64, status Status) error {
	done := observeQuery("update_status")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, `
		UPDATE assets SET status = ?, updated_at = strftime('%s', 'now') WHERE id = ?
	`, string(status), id)
	if err != nil {
		err = fmt.Errorf("failed to update status: %w", err)
		done(err)
		return err
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		done(nil)
		return ErrAssetNotFound
	}

	done(nil)
	return nil
}

// ApplyMetadata persists extracted EXIF fields on an asset. String fields
// are truncated to their column limits rather than rejected. Width and
// height are only filled in when the asset does not have them yet; the
// extractor's decoded dimensions are the usual source of truth and arrive
// through this path on first processing.
func (d *Database) ApplyMetadata(ctx context.Context, id int64, meta exif.Metadata) error {
	done := observeQuery("apply_metadata")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var takenAt interface{}
	if meta.TakenAt != nil {
		takenAt = meta.TakenAt.Unix()
	}
	var iso int
	if meta.ISO != nil {
		iso = *meta.ISO
	}
	var gpsLat, gpsLon interface{}
	if meta.GPSLatitude != nil {
		gpsLat = *meta.GPSLatitude
	}
	if meta.GPSLongitude != nil {
		gpsLon = *meta.GPSLongitude
	}

	result, err := d.db.ExecContext(ctx, `
		UPDATE assets SET
			camera_make = ?,
			camera_model = ?,
			taken_at = ?,
			exposure_time = ?,
			f_number = ?,
			iso = ?,
			focal_length = ?,
			gps_latitude = ?,
			gps_longitude = ?,
			exif_parsed = 1,
			width = CASE WHEN width = 0 THEN ? ELSE width END,
			height = CASE WHEN height = 0 THEN ? ELSE height END,
			updated_at = strftime('%s', 'now')
		WHERE id = ?
	`, truncate(meta.CameraMake, maxCameraMakeLen),
		truncate(meta.CameraModel, maxCameraModelLen),
		takenAt,
		truncate(meta.ExposureTime, maxExposureTimeLen),
		truncate(meta.FNumber, maxFNumberLen),
		iso,
		truncate(meta.FocalLength, maxFocalLengthLen),
		gpsLat, gpsLon,
		meta.Width, meta.Height,
		id)
	if err != nil {
		err = fmt.Errorf("failed to apply metadata: %w", err)
		done(err)
		return err
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		done(nil)
		return ErrAssetNotFound
	}

	done(nil)
	return nil
}

// UpdateContent records new file content after an edit commit: dimensions
// and byte size change, and the derived thumbnail becomes stale.
func (d *Database) UpdateContent(ctx context.Context, id int64, width, height int, size int64) error {
	done := observeQuery("update_content")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, `
		UPDATE assets SET width = ?, height = ?, size = ?,
			thumbnail_generated = 0, updated_at = strftime('%s', 'now')
		WHERE id = ?
	`, width, height, size, id)
	if err != nil {
		err = fmt.Errorf("failed to update content: %w", err)
		done(err)
		return err
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		done(nil)
		return ErrAssetNotFound
	}

	done(nil)
	return nil
}

// SetThumbnail records a freshly generated thumbnail for an asset.
func (d *Database) SetThumbnail(ctx context.Context, id int64, thumbnailPath string) error {
	done := observeQuery("set_thumbnail")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, `
		UPDATE assets SET thumbnail_path = ?, thumbnail_generated = 1,
			updated_at = strftime('%s', 'now')
		WHERE id = ?
	`, thumbnailPath, id)
	if err != nil {
		err = fmt.Errorf("failed to set thumbnail: %w", err)
		done(err)
		return err
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		done(nil)
		return ErrAssetNotFound
	}

	done(nil)
	return nil
}

// CountAssetsByStatus returns asset counts keyed by status string.
func (d *Database) CountAssetsByStatus(ctx context.Context) (map[string]int, error) {
	done := observeQuery("count_assets_by_status")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM assets GROUP BY status")
	if err != nil {
		done(err)
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			done(err)
			return nil, err
		}
		counts[status] = count
	}
	done(rows.Err())
	return counts, rows.Err()
}

// ListByStatus returns the ids of all assets in the given status, oldest
// first. Used at startup to requeue work interrupted by a shutdown.
func (d *Database) ListByStatus(ctx context.Context, status Status) ([]int64, error) {
	done := observeQuery("list_by_status")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		"SELECT id FROM assets WHERE status = ? ORDER BY id", string(status))
	if err != nil {
		done(err)
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			done(err)
			return nil, err
		}
		ids = append(ids, id)
	}
	done(rows.Err())
	return ids, rows.Err()
}

// StoredPaths returns the set of all file paths known to the database,
// original content and thumbnails alike. Used by the orphaned-file sweeper.
func (d *Database) StoredPaths(ctx context.Context) (map[string]struct{}, error) {
	done := observeQuery("stored_paths")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT stored_path, thumbnail_path FROM assets
	`)
	if err != nil {
		done(err)
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	paths := make(map[string]struct{})
	for rows.Next() {
		var stored, thumb string
		if err := rows.Scan(&stored, &thumb); err != nil {
			done(err)
			return nil, err
		}
		paths[stored] = struct{}{}
		if thumb != "" {
			paths[thumb] = struct{}{}
		}
	}

	err = rows.Err()
	done(err)
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// truncate limits s to max runes. Metadata strings come from untrusted
// files and may be arbitrarily long.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"photoflow/internal/exif"
)

// Integration tests for database operations with real SQLite database

func setupTestDB(t testing.TB) *Database {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func seedTestAsset(t testing.TB, db *Database) *Asset {
	t.Helper()

	a := &Asset{
		Owner:      "tester",
		Filename:   "photo.jpg",
		StoredPath: "tester/photo.jpg",
		Size:       1024,
	}
	if err := db.CreateAsset(context.Background(), a); err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}
	return a
}

func TestNewDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestNewDatabaseMissingParentDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "does", "not", "exist", "test.db")

	db, err := New(context.Background(), dbPath)
	if err == nil {
		db.Close()
		t.Fatal("Expected error for missing parent directory")
	}
}

func TestCreateAndGetAsset(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := &Asset{
		Owner:       "alice",
		Filename:    "beach.jpg",
		StoredPath:  "alice/beach.jpg",
		Size:        2048,
		Width:       640,
		Height:      480,
		IsPublic:    true,
		Description: "holiday",
	}
	if err := db.CreateAsset(ctx, a); err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}
	if a.ID == 0 {
		t.Fatal("Expected non-zero asset ID")
	}

	got, err := db.GetAsset(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}

	if got.Owner != "alice" || got.Filename != "beach.jpg" || got.StoredPath != "alice/beach.jpg" {
		t.Errorf("Unexpected asset fields: %+v", got)
	}
	if got.Size != 2048 || got.Width != 640 || got.Height != 480 {
		t.Errorf("Unexpected dimensions/size: %+v", got)
	}
	if !got.IsPublic {
		t.Error("Expected public asset")
	}
	if got.Status != StatusPending {
		t.Errorf("Expected default status pending, got %s", got.Status)
	}
	if got.ExifParsed || got.ThumbnailGenerated {
		t.Error("Expected exif_parsed and thumbnail_generated to start false")
	}
	if got.TakenAt != nil || got.GPSLatitude != nil || got.GPSLongitude != nil {
		t.Error("Expected nullable EXIF fields to start nil")
	}
}

func TestGetAssetNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetAsset(context.Background(), 9999)
	if !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("Expected ErrAssetNotFound, got %v", err)
	}
}

func TestCreateAssetDuplicatePath(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedTestAsset(t, db)

	dup := &Asset{Filename: "photo.jpg", StoredPath: "tester/photo.jpg"}
	if err := db.CreateAsset(ctx, dup); err == nil {
		t.Error("Expected unique constraint error for duplicate stored_path")
	}
}

func TestUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := seedTestAsset(t, db)

	for _, status := range []Status{StatusProcessing, StatusCompleted, StatusFailed} {
		if err := db.UpdateStatus(ctx, a.ID, status); err != nil {
			t.Fatalf("UpdateStatus(%s) failed: %v", status, err)
		}
		got, err := db.GetAsset(ctx, a.ID)
		if err != nil {
			t.Fatalf("GetAsset failed: %v", err)
		}
		if got.Status != status {
			t.Errorf("Expected status %s, got %s", status, got.Status)
		}
	}

	if err := db.UpdateStatus(ctx, 9999, StatusCompleted); !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("Expected ErrAssetNotFound for unknown asset, got %v", err)
	}
}

func TestApplyMetadata(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := seedTestAsset(t, db)

	taken := time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC)
	iso := 200
	lat, lon := 35.6586, 139.7454
	meta := exif.Metadata{
		CameraMake:   "Canon",
		CameraModel:  "EOS R5",
		TakenAt:      &taken,
		ExposureTime: "1/250",
		FNumber:      "f/2.8",
		ISO:          &iso,
		FocalLength:  "50mm",
		GPSLatitude:  &lat,
		GPSLongitude: &lon,
		Width:        800,
		Height:       600,
	}

	if err := db.ApplyMetadata(ctx, a.ID, meta); err != nil {
		t.Fatalf("ApplyMetadata failed: %v", err)
	}

	got, err := db.GetAsset(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}

	if got.CameraMake != "Canon" || got.CameraModel != "EOS R5" {
		t.Errorf("Unexpected camera fields: %s / %s", got.CameraMake, got.CameraModel)
	}
	if got.TakenAt == nil || !got.TakenAt.Equal(taken) {
		t.Errorf("Expected taken_at %v, got %v", taken, got.TakenAt)
	}
	if got.ExposureTime != "1/250" || got.FNumber != "f/2.8" || got.ISO != 200 || got.FocalLength != "50mm" {
		t.Errorf("Unexpected exposure fields: %+v", got)
	}
	if got.GPSLatitude == nil || *got.GPSLatitude != lat {
		t.Errorf("Expected latitude %v, got %v", lat, got.GPSLatitude)
	}
	if got.GPSLongitude == nil || *got.GPSLongitude != lon {
		t.Errorf("Expected longitude %v, got %v", lon, got.GPSLongitude)
	}
	if !got.ExifParsed {
		t.Error("Expected exif_parsed true")
	}

	// Seeded asset had no dimensions; the decoded ones fill them in.
	if got.Width != 800 || got.Height != 600 {
		t.Errorf("Expected dimensions 800x600, got %dx%d", got.Width, got.Height)
	}
}

func TestApplyMetadataKeepsExistingDimensions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := &Asset{Filename: "sized.jpg", StoredPath: "sized.jpg", Width: 1000, Height: 750}
	if err := db.CreateAsset(ctx, a); err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}

	if err := db.ApplyMetadata(ctx, a.ID, exif.Metadata{Width: 10, Height: 10}); err != nil {
		t.Fatalf("ApplyMetadata failed: %v", err)
	}

	got, err := db.GetAsset(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if got.Width != 1000 || got.Height != 750 {
		t.Errorf("Existing dimensions should be preserved, got %dx%d", got.Width, got.Height)
	}
}

func TestApplyMetadataTruncatesLongStrings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := seedTestAsset(t, db)

	meta := exif.Metadata{CameraMake: strings.Repeat("x", 500)}
	if err := db.ApplyMetadata(ctx, a.ID, meta); err != nil {
		t.Fatalf("ApplyMetadata failed: %v", err)
	}

	got, err := db.GetAsset(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if len(got.CameraMake) != maxCameraMakeLen {
		t.Errorf("Expected camera_make truncated to %d, got %d", maxCameraMakeLen, len(got.CameraMake))
	}
}

func TestUpdateContent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := seedTestAsset(t, db)

	if err := db.SetThumbnail(ctx, a.ID, "tester/photo_thumb.jpg"); err != nil {
		t.Fatalf("SetThumbnail failed: %v", err)
	}

	if err := db.UpdateContent(ctx, a.ID, 320, 240, 555); err != nil {
		t.Fatalf("UpdateContent failed: %v", err)
	}

	got, err := db.GetAsset(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if got.Width != 320 || got.Height != 240 || got.Size != 555 {
		t.Errorf("Unexpected content fields: %dx%d %d bytes", got.Width, got.Height, got.Size)
	}
	if got.ThumbnailGenerated {
		t.Error("Expected thumbnail_generated reset after content update")
	}

	if err := db.UpdateContent(ctx, 9999, 1, 1, 1); !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("Expected ErrAssetNotFound, got %v", err)
	}
}

func TestSetThumbnail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := seedTestAsset(t, db)

	if err := db.SetThumbnail(ctx, a.ID, "tester/photo_thumb.jpg"); err != nil {
		t.Fatalf("SetThumbnail failed: %v", err)
	}

	got, err := db.GetAsset(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if got.ThumbnailPath != "tester/photo_thumb.jpg" {
		t.Errorf("Unexpected thumbnail path: %s", got.ThumbnailPath)
	}
	if !got.ThumbnailGenerated {
		t.Error("Expected thumbnail_generated true")
	}
}

func TestStoredPaths(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := seedTestAsset(t, db)
	if err := db.SetThumbnail(ctx, a.ID, "tester/photo_thumb.jpg"); err != nil {
		t.Fatalf("SetThumbnail failed: %v", err)
	}
	b := &Asset{Filename: "raw.png", StoredPath: "tester/raw.png"}
	if err := db.CreateAsset(ctx, b); err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}

	paths, err := db.StoredPaths(ctx)
	if err != nil {
		t.Fatalf("StoredPaths failed: %v", err)
	}

	for _, want := range []string{"tester/photo.jpg", "tester/photo_thumb.jpg", "tester/raw.png"} {
		if _, ok := paths[want]; !ok {
			t.Errorf("Expected %s in stored paths", want)
		}
	}
	if len(paths) != 3 {
		t.Errorf("Expected 3 paths, got %d", len(paths))
	}
}

func TestCountAssetsByStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := seedTestAsset(t, db)
	b := &Asset{Filename: "two.jpg", StoredPath: "two.jpg"}
	if err := db.CreateAsset(ctx, b); err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}
	if err := db.UpdateStatus(ctx, a.ID, StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	counts, err := db.CountAssetsByStatus(ctx)
	if err != nil {
		t.Fatalf("CountAssetsByStatus failed: %v", err)
	}
	if counts["completed"] != 1 || counts["pending"] != 1 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}

func TestListByStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := seedTestAsset(t, db)
	b := &Asset{Filename: "two.jpg", StoredPath: "two.jpg"}
	if err := db.CreateAsset(ctx, b); err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}
	if err := db.UpdateStatus(ctx, b.ID, StatusProcessing); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	pending, err := db.ListByStatus(ctx, StatusPending)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(pending) != 1 || pending[0] != a.ID {
		t.Errorf("Expected pending [%d], got %v", a.ID, pending)
	}

	processing, err := db.ListByStatus(ctx, StatusProcessing)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(processing) != 1 || processing[0] != b.ID {
		t.Errorf("Expected processing [%d], got %v", b.ID, processing)
	}

	completed, err := db.ListByStatus(ctx, StatusCompleted)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(completed) != 0 {
		t.Errorf("Expected no completed assets, got %v", completed)
	}
}

func TestGetOrCreateTag(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tag, err := db.GetOrCreateTag(ctx, "  Sunset  ", TagTypeAuto)
	if err != nil {
		t.Fatalf("GetOrCreateTag failed: %v", err)
	}
	if tag.Name != "sunset" {
		t.Errorf("Expected normalized name 'sunset', got %q", tag.Name)
	}
	if tag.ID == 0 {
		t.Error("Expected non-zero tag ID")
	}
	if tag.Type != TagTypeAuto {
		t.Errorf("Expected auto tag, got %s", tag.Type)
	}

	// Same normalized name returns the existing tag, type untouched.
	again, err := db.GetOrCreateTag(ctx, "SUNSET", TagTypeUser)
	if err != nil {
		t.Fatalf("GetOrCreateTag failed on second call: %v", err)
	}
	if again.ID != tag.ID {
		t.Errorf("Expected same tag ID %d, got %d", tag.ID, again.ID)
	}
	if again.Type != TagTypeAuto {
		t.Errorf("Existing tag type should be preserved, got %s", again.Type)
	}
}

func TestGetOrCreateTagEmptyName(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.GetOrCreateTag(context.Background(), "   ", TagTypeUser); err == nil {
		t.Error("Expected error for empty tag name")
	}
}

func TestTagLinks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := seedTestAsset(t, db)

	first, err := db.GetOrCreateTag(ctx, "风景", TagTypeAuto)
	if err != nil {
		t.Fatalf("GetOrCreateTag failed: %v", err)
	}
	second, err := db.GetOrCreateTag(ctx, "横向", TagTypeAuto)
	if err != nil {
		t.Fatalf("GetOrCreateTag failed: %v", err)
	}

	exists, err := db.LinkExists(ctx, a.ID, first.ID)
	if err != nil {
		t.Fatalf("LinkExists failed: %v", err)
	}
	if exists {
		t.Error("Expected no link before CreateLink")
	}

	if err := db.CreateLink(ctx, a.ID, first.ID); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	if err := db.CreateLink(ctx, a.ID, second.ID); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	exists, err = db.LinkExists(ctx, a.ID, first.ID)
	if err != nil {
		t.Fatalf("LinkExists failed: %v", err)
	}
	if !exists {
		t.Error("Expected link after CreateLink")
	}

	if err := db.CreateLink(ctx, a.ID, first.ID); err == nil {
		t.Error("Expected unique constraint error for duplicate link")
	}

	names, err := db.TagsForAsset(ctx, a.ID)
	if err != nil {
		t.Fatalf("TagsForAsset failed: %v", err)
	}
	if len(names) != 2 || names[0] != "风景" || names[1] != "横向" {
		t.Errorf("Unexpected tag names: %v", names)
	}

	count, err := db.CountTags(ctx)
	if err != nil {
		t.Fatalf("CountTags failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 tags, got %d", count)
	}
}

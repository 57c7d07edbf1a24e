package database

import "time"

// Status is the processing state of an asset. Exactly one status holds at
// any time; transitions within a single pipeline run are monotonic
// (pending -> processing -> completed/failed), and a retried run re-enters
// processing from failed.
type Status string

const (
	// StatusPending means the asset is uploaded but not yet processed.
	StatusPending Status = "pending"
	// StatusProcessing means a pipeline run is underway.
	StatusProcessing Status = "processing"
	// StatusCompleted means the last pipeline run finished successfully.
	StatusCompleted Status = "completed"
	// StatusFailed means the last pipeline run failed.
	StatusFailed Status = "failed"
)

// TagType describes how a tag came to exist.
type TagType string

const (
	// TagTypeUser marks tags added manually.
	TagTypeUser TagType = "user"
	// TagTypeAuto marks tags derived from EXIF metadata.
	TagTypeAuto TagType = "auto"
)

// Asset represents a stored image and its persisted metadata.
type Asset struct {
	ID            int64
	Owner         string
	Filename      string
	StoredPath    string
	ThumbnailPath string
	Size          int64
	Width         int // 0 = unknown
	Height        int // 0 = unknown
	IsPublic      bool
	Description   string
	Status        Status

	CameraMake   string
	CameraModel  string
	TakenAt      *time.Time
	ExposureTime string
	FNumber      string
	ISO          int // 0 = unknown
	FocalLength  string
	GPSLatitude  *float64
	GPSLongitude *float64
	ExifParsed   bool

	ThumbnailGenerated bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tag is a named label attached to assets.
type Tag struct {
	ID        int64
	Name      string
	Type      TagType
	CreatedAt time.Time
}

// Column length limits enforced on metadata writes, matching the asset
// schema. Values longer than the limit are truncated, not rejected.
const (
	maxCameraMakeLen   = 100
	maxCameraModelLen  = 100
	maxExposureTimeLen = 50
	maxFNumberLen      = 20
	maxFocalLengthLen  = 50
)

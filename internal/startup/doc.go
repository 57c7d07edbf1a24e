// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all application configuration and provides consistent
// logging throughout the application lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - STORAGE_DIR: Path to the photo storage root (default: /photos)
//   - DATABASE_DIR: Path to database directory (default: /database)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - WATCH_ENABLED: Watch the storage root for new photos (default: true)
//   - SWEEP_ENABLED: Periodically remove orphaned files (default: true)
//   - LIBRARY_OWNER: Owner recorded on watcher-ingested assets (default: library)
//   - THUMBNAIL_SIZE: Thumbnail bounding box in pixels (default: 300)
//   - THUMBNAIL_QUALITY: Thumbnail JPEG quality (default: 85)
//   - RETRY_MAX: Job retry budget (default: 3)
//   - RETRY_DELAY: Fixed delay between retries as Go duration (default: 60s)
//   - SWEEP_INTERVAL: Time between orphan sweeps (default: 6h)
//   - SWEEP_GRACE: Minimum unreferenced-file age before removal (default: 24h)
//   - PIPELINE_WORKERS: Override the pipeline worker count
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//
// # Directory Setup
//
// The package validates and creates required directories. Both the storage
// root and the database directory must exist and be writable.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
// The package provides structured logging functions for consistent output:
//   - [LogDatabaseInit]: Database initialization timing
//   - [LogVipsInit]: libvips availability for WEBP output
//   - [LogQueueInit]: Job queue workers and retry budget
//   - [LogWatcherInit]: Ingest watcher configuration
//   - [LogServerStarted]: Endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup

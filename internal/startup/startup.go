package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"photoflow/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	StorageDir  string
	DatabaseDir string
	MetricsPort string

	ThumbnailSize    int
	ThumbnailQuality int

	RetryMax   int
	RetryDelay time.Duration

	SweepInterval time.Duration
	SweepGrace    time.Duration

	LibraryOwner string

	MetricsEnabled bool
	WatchEnabled   bool
	SweepEnabled   bool

	// Derived paths
	DatabasePath string
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	storageDir := getEnv("STORAGE_DIR", "/photos")
	databaseDir := getEnv("DATABASE_DIR", "/database")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	watchEnabled := getEnvBool("WATCH_ENABLED", true)
	sweepEnabled := getEnvBool("SWEEP_ENABLED", true)
	libraryOwner := getEnv("LIBRARY_OWNER", "library")
	thumbnailSize := getEnvInt("THUMBNAIL_SIZE", 300)
	thumbnailQuality := getEnvInt("THUMBNAIL_QUALITY", 85)
	retryMax := getEnvInt("RETRY_MAX", 3)
	retryDelay := getEnvDuration("RETRY_DELAY", 60*time.Second)
	sweepInterval := getEnvDuration("SWEEP_INTERVAL", 6*time.Hour)
	sweepGrace := getEnvDuration("SWEEP_GRACE", 24*time.Hour)

	logging.Info("  STORAGE_DIR:        %s", storageDir)
	logging.Info("  DATABASE_DIR:       %s", databaseDir)
	logging.Info("  METRICS_PORT:       %s", metricsPort)
	logging.Info("  METRICS_ENABLED:    %v", metricsEnabled)
	logging.Info("  WATCH_ENABLED:      %v", watchEnabled)
	logging.Info("  SWEEP_ENABLED:      %v", sweepEnabled)
	logging.Info("  LIBRARY_OWNER:      %s", libraryOwner)
	logging.Info("  THUMBNAIL_SIZE:     %d", thumbnailSize)
	logging.Info("  THUMBNAIL_QUALITY:  %d", thumbnailQuality)
	logging.Info("  RETRY_MAX:          %d", retryMax)
	logging.Info("  RETRY_DELAY:        %v", retryDelay)
	logging.Info("  SWEEP_INTERVAL:     %v", sweepInterval)
	logging.Info("  SWEEP_GRACE:        %v", sweepGrace)
	logging.Info("  LOG_LEVEL:          %s", logging.GetLevel())

	if thumbnailSize <= 0 {
		logging.Warn("  Invalid THUMBNAIL_SIZE, using default: 300")
		thumbnailSize = 300
	}
	if thumbnailQuality <= 0 || thumbnailQuality > 100 {
		logging.Warn("  Invalid THUMBNAIL_QUALITY, using default: 85")
		thumbnailQuality = 85
	}
	if retryMax < 0 {
		logging.Warn("  Invalid RETRY_MAX, using default: 3")
		retryMax = 3
	}

	// Resolve paths
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	storageDir, err := filepath.Abs(storageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory path: %w", err)
	}
	logging.Info("  Storage directory (absolute): %s", storageDir)

	databaseDir, err = filepath.Abs(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", databaseDir)

	config := &Config{
		StorageDir:       storageDir,
		DatabaseDir:      databaseDir,
		MetricsPort:      metricsPort,
		ThumbnailSize:    thumbnailSize,
		ThumbnailQuality: thumbnailQuality,
		RetryMax:         retryMax,
		RetryDelay:       retryDelay,
		SweepInterval:    sweepInterval,
		SweepGrace:       sweepGrace,
		LibraryOwner:     libraryOwner,
		MetricsEnabled:   metricsEnabled,
		WatchEnabled:     watchEnabled,
		SweepEnabled:     sweepEnabled,
		DatabasePath:     filepath.Join(databaseDir, "photoflow.db"),
	}

	// Both directories are required and must be writable.
	if err := ensureDirectory(storageDir, "storage"); err != nil {
		return nil, fmt.Errorf("storage directory error: %w", err)
	}
	logging.Debug("  Testing storage directory write access...")
	if err := testWriteAccess(storageDir); err != nil {
		return nil, fmt.Errorf("storage directory is not writable: %w", err)
	}
	logging.Info("  [OK] Storage directory is writable")

	if err := ensureDirectory(databaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}
	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for database): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Database:    ENABLED (required)")
	logging.Info("    Watcher:     %s", enabledString(config.WatchEnabled))
	logging.Info("    Sweeper:     %s", enabledString(config.SweepEnabled))
	logging.Info("    Metrics:     %s", enabledString(config.MetricsEnabled))

	return config, nil
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogVipsInit logs libvips availability for WEBP output
func LogVipsInit(available bool, err error) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("IMAGE CODEC INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	if available {
		logging.Info("  [OK] libvips available (WEBP output enabled)")
		return
	}
	logging.Warn("  libvips unavailable: %v", err)
	logging.Warn("  WEBP-targeted edits will fail; JPEG/PNG/GIF unaffected")
}

// LogQueueInit logs job queue startup
func LogQueueInit(workers, retryMax int, retryDelay time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("JOB QUEUE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Workers:      %d", workers)
	logging.Info("  Retry budget: %d attempts, %v apart", retryMax, retryDelay)
}

// LogWatcherInit logs ingest watcher startup
func LogWatcherInit(dir string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("INGEST WATCHER")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Watching: %s", dir)
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful startup with endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PHOTOFLOW STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	if config.MetricsEnabled {
		logging.Info("  Metrics:  http://localhost:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("  Metrics:  DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    ____  __          __        ______
   / __ \/ /_  ____  / /_____  / ____/ /___ _      __
  / /_/ / __ \/ __ \/ __/ __ \/ /_  / / __ \ | /| / /
 / ____/ / / / /_/ / /_/ /_/ / __/ / / /_/ / |/ |/ /
/_/   /_/ /_/\____/\__/\____/_/   /_/\____/|__/|__/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photoflow/internal/database"
	"photoflow/internal/jobs"
	"photoflow/internal/logging"
	"photoflow/internal/media"
	"photoflow/internal/memory"
	"photoflow/internal/metrics"
	"photoflow/internal/pipeline"
	"photoflow/internal/startup"
	"photoflow/internal/storage"
	"photoflow/internal/sweeper"
	"photoflow/internal/watcher"
	"photoflow/internal/workers"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Optional .env for local development; absence is fine.
	if err := godotenv.Load(); err == nil {
		logging.Debug("Loaded environment from .env")
	}

	// Configure GOMEMLIMIT before image buffers start allocating
	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize metrics registry
	metrics.InitializeMetrics()

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Initialize blob store
	store, err := storage.New(config.StorageDir)
	if err != nil {
		startup.LogFatal("Failed to initialize storage: %v", err)
	}

	// libvips is only needed for WEBP output; start without it if missing
	vipsErr := media.InitVips()
	startup.LogVipsInit(media.IsVipsAvailable(), vipsErr)

	// Pipeline and job queue
	thumbnailer := media.NewThumbnailer(config.ThumbnailSize, config.ThumbnailQuality)
	pipe := pipeline.New(db, store, thumbnailer)

	queue := jobs.New(jobs.Config{
		MaxRetries: config.RetryMax,
		RetryDelay: config.RetryDelay,
	})
	queue.Register(jobs.KindProcess, func(ctx context.Context, job jobs.Job) error {
		return pipe.Process(ctx, job.AssetID)
	})
	queue.Register(jobs.KindThumbnail, func(ctx context.Context, job jobs.Job) error {
		return pipe.GenerateThumbnail(ctx, job.AssetID)
	})
	queue.Register(jobs.KindMetadata, func(ctx context.Context, job jobs.Job) error {
		return pipe.ExtractMetadata(ctx, job.AssetID)
	})

	workerCount := workers.ForCPU(0)
	startup.LogQueueInit(workerCount, config.RetryMax, config.RetryDelay)
	queue.Start(ctx, workerCount)

	disp := &dispatcher{queue: queue, pipe: pipe}

	// Requeue work interrupted by the last shutdown. Assets stuck in
	// processing re-enter the pipeline from the top.
	for _, status := range []database.Status{database.StatusPending, database.StatusProcessing} {
		ids, err := db.ListByStatus(ctx, status)
		if err != nil {
			logging.Error("Failed to list %s assets for requeue: %v", status, err)
			continue
		}
		for _, id := range ids {
			if err := queue.Enqueue(jobs.KindProcess, id); err != nil {
				logging.Warn("Failed to requeue asset %d: %v", id, err)
			}
		}
		if len(ids) > 0 {
			logging.Info("Requeued %d %s asset(s)", len(ids), status)
		}
	}

	// Ingest watcher: startup scan plus live filesystem events
	var watcherDone chan struct{}
	if config.WatchEnabled {
		startup.LogWatcherInit(store.Root())
		w := watcher.New(db, store, disp, config.LibraryOwner)
		if err := w.Scan(ctx); err != nil {
			logging.Error("Startup scan failed: %v", err)
		}
		watcherDone = make(chan struct{})
		go func() {
			defer close(watcherDone)
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				logging.Error("Watcher stopped: %v", err)
			}
		}()
	}

	// Orphaned-file sweeper
	if config.SweepEnabled {
		sw := sweeper.New(db, store, config.SweepInterval, config.SweepGrace)
		go sw.Run(ctx)
	}

	// Asset status gauge collector
	collector := metrics.NewCollector(db, 30*time.Second)
	collector.Start()

	// Metrics endpoint
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     mux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	startup.LogServerStarted(startup.ServerConfig{
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	// Block until a shutdown signal arrives
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())
	cancel()

	startup.LogShutdownStep("Stopping collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Collector stopped")

	if watcherDone != nil {
		startup.LogShutdownStep("Stopping watcher")
		<-watcherDone
		startup.LogShutdownStepComplete("Watcher stopped")
	}

	startup.LogShutdownStep("Stopping job queue")
	queue.Stop()
	startup.LogShutdownStepComplete("Job queue stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
		shutdownCancel()
	}

	startup.LogShutdownStep("Shutting down libvips")
	media.ShutdownVips()
	startup.LogShutdownStepComplete("libvips stopped")

	startup.LogShutdownComplete()
}

// dispatcher routes follow-up work to the queue, running it inline when
// the queue cannot take it so callers never lose the work.
type dispatcher struct {
	queue *jobs.Queue
	pipe  *pipeline.Pipeline
}

func (d *dispatcher) Dispatch(ctx context.Context, kind jobs.Kind, assetID int64) error {
	err := d.queue.Enqueue(kind, assetID)
	if err == nil {
		return nil
	}
	logging.Warn("Queue rejected %s job for asset %d, running inline: %v", kind, assetID, err)

	switch kind {
	case jobs.KindProcess:
		return d.pipe.Process(ctx, assetID)
	case jobs.KindThumbnail:
		return d.pipe.GenerateThumbnail(ctx, assetID)
	case jobs.KindMetadata:
		return d.pipe.ExtractMetadata(ctx, assetID)
	default:
		return fmt.Errorf("unknown job kind %q", kind)
	}
}

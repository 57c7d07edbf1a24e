package metrics

import (
	"context"
	"time"

	"photoflow/internal/logging"
)

// StatsProvider supplies library counts for the periodic collector.
type StatsProvider interface {
	CountAssetsByStatus(ctx context.Context) (map[string]int, error)
	CountTags(ctx context.Context) (int, error)
}

// Collector periodically refreshes gauge metrics from the database.
type Collector struct {
	provider StatsProvider
	interval time.Duration
	stopChan chan struct{}
}

// NewCollector creates a new metrics collector. A non-positive interval
// defaults to one minute.
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Collector{
		provider: provider,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the collection loop in a background goroutine.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the collection loop.
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	counts, err := c.provider.CountAssetsByStatus(ctx)
	if err != nil {
		logging.Debug("metrics collector: failed to count assets: %v", err)
		return
	}

	for _, status := range []string{"pending", "processing", "completed", "failed"} {
		PipelineAssetsByStatus.WithLabelValues(status).Set(float64(counts[status]))
	}

	tags, err := c.provider.CountTags(ctx)
	if err != nil {
		logging.Debug("metrics collector: failed to count tags: %v", err)
		return
	}
	TagsTotal.Set(float64(tags))
}

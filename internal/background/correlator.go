package background

import (
	"context"
	"log/slog"
	"sync"

	"github.com/BradenHooton/vigil/internal/services"
)

// Correlator runs multi-account detection off the login hot path. Jobs
// arrive on a bounded channel; when the channel is full Enqueue drops the
// job rather than block the recorder, and the recorder logs the drop.
type Correlator struct {
	correlation *services.CorrelationService
	logger      *slog.Logger
	jobs        chan services.CorrelationJob
	workers     int
	wg          sync.WaitGroup
}

func NewCorrelator(correlation *services.CorrelationService, logger *slog.Logger, queueSize, workers int) *Correlator {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 1
	}

	return &Correlator{
		correlation: correlation,
		logger:      logger,
		jobs:        make(chan services.CorrelationJob, queueSize),
		workers:     workers,
	}
}

// Enqueue offers a job without blocking. Reports whether it was accepted.
func (c *Correlator) Enqueue(job services.CorrelationJob) bool {
	select {
	case c.jobs <- job:
		return true
	default:
		return false
	}
}

// Start launches the worker pool. Workers drain until the context is
// cancelled; Wait blocks until they exit.
func (c *Correlator) Start(ctx context.Context) {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.run(ctx)
	}
	c.logger.Info("correlation workers started", slog.Int("workers", c.workers))
}

func (c *Correlator) run(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case job := <-c.jobs:
			c.correlation.Correlate(ctx, job)
		case <-ctx.Done():
			return
		}
	}
}

// Wait blocks until all workers have exited.
func (c *Correlator) Wait() {
	c.wg.Wait()
}

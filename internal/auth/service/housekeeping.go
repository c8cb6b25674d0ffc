package service

import (
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tollgate/internal/auth/limiter"
)

// HousekeepingService periodically drops elapsed attempt windows so the
// in-memory limiter does not grow with every client it has ever seen.
type HousekeepingService struct {
	Pruners  []limiter.Pruner
	Logger   *slog.Logger
	Interval time.Duration

	now func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(logger *slog.Logger, interval time.Duration, pruners ...limiter.Pruner) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Pruners:  pruners,
		Logger:   logger,
		Interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "pruners", len(s.Pruners))
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup prunes every registered limiter and returns the number of windows
// removed.
func (s *HousekeepingService) cleanup() int {
	now := s.now()

	var removed int
	for _, p := range s.Pruners {
		removed += p.Prune(now)
	}

	s.Logger.Debug("housekeeping cleanup completed", "windows_removed", removed)
	return removed
}

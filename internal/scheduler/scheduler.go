package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/windmap/internal/gfs"
)

// Acquirer runs one acquisition of the latest forecast cycle.
type Acquirer interface {
	Acquire(ctx context.Context) (*gfs.RunResult, error)
}

// Scheduler triggers an acquisition immediately on start and then on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	acquirer  Acquirer
	interval  time.Duration
	logger    *slog.Logger

	// ctx is the parent of every run; cancel aborts a run in progress.
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler.
func New(interval time.Duration, acquirer Acquirer, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		acquirer:  acquirer,
		interval:  interval,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens right away.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// runOnce performs one bounded acquisition. Failures are logged and the next
// tick starts fresh.
func (s *Scheduler) runOnce() {
	s.logger.Debug("running scheduled task to fetch grib data")

	ctx, cancel := context.WithTimeout(s.ctx, s.interval)
	defer cancel()

	res, err := s.acquirer.Acquire(ctx)
	if err != nil {
		s.logger.Error("scheduled acquisition failed", "error", err)
		return
	}
	s.logger.Info("scheduled acquisition finished", "run_id", res.RunID, "files", len(res.Files))
}

// Stop cancels a run in progress and stops future ones.
func (s *Scheduler) Stop() {
	s.cancel()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

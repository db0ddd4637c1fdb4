package gfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// staleAfter is how far behind now a reference moment may be before the
	// day-level fallback kicks in.
	staleAfter = 24 * time.Hour

	maxDayAttempts   = 1
	maxCycleAttempts = 1
)

// Fetcher downloads and converts one offset of a cycle.
type Fetcher interface {
	Fetch(ctx context.Context, c Cycle, offset int) (string, error)
}

// RunResult describes one acquisition run.
type RunResult struct {
	RunID string   `json:"run_id"`
	Cycle Cycle    `json:"-"`
	Files []string `json:"files"`
}

// Orchestrator acquires every forecast offset of the applicable cycle and
// applies the cycle-level and day-level fallbacks.
type Orchestrator struct {
	fetcher Fetcher
	logger  *slog.Logger
	now     func() time.Time
	flight  singleflight.Group
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(fetcher Fetcher, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		fetcher: fetcher,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the wall clock, for tests.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Acquire runs an acquisition for the current moment. Overlapping calls for
// the same cycle share the in-flight run instead of starting a second one.
func (o *Orchestrator) Acquire(ctx context.Context) (*RunResult, error) {
	ref := o.now()
	key := QuantizeCycle(ref).Stamp()

	v, err, shared := o.flight.Do(key, func() (interface{}, error) {
		return o.Run(ctx, ref)
	})
	if shared {
		runsTotal.WithLabelValues("shared").Inc()
		o.logger.Info("acquisition shared with an overlapping trigger", "cycle", key)
	}
	if err != nil {
		return nil, err
	}
	return v.(*RunResult), nil
}

// Run fetches all offsets of the cycle containing ref. When nothing is
// published for that cycle it retries the previous cycle once; when ref is
// more than a day old it retries one day earlier once. Any download error
// other than ErrNotFound fails the whole run.
func (o *Orchestrator) Run(ctx context.Context, ref time.Time) (*RunResult, error) {
	start := time.Now()
	defer func() { runDuration.Observe(time.Since(start).Seconds()) }()

	result := &RunResult{RunID: uuid.NewString(), Files: []string{}}
	logger := o.logger.With("run_id", result.RunID)
	logger.Info("fetching data", "reference", ref.UTC().Format(time.RFC3339))

	dayAttempt, cycleAttempt := 0, 0
	for {
		if o.now().Sub(ref) > staleAfter {
			if dayAttempt >= maxDayAttempts {
				logger.Info("data not available for the specified date and previous day")
				runsTotal.WithLabelValues("empty").Inc()
				return result, nil
			}
			logger.Info("fetching data for the previous day")
			ref = ref.AddDate(0, 0, -1)
			dayAttempt++
			continue
		}

		cycle := QuantizeCycle(ref)
		result.Cycle = cycle

		files, err := o.fetchCycle(ctx, cycle)
		if err != nil {
			logger.Error("error fetching and processing grib data", "cycle", cycle.String(), "error", err)
			runsTotal.WithLabelValues("error").Inc()
			return nil, err
		}

		if len(files) == 0 && cycleAttempt < maxCycleAttempts {
			logger.Info("no files published, retrying previous cycle", "cycle", cycle.String())
			// Step the reference moment itself; staleness is measured from it.
			ref = ref.Add(-CycleStep)
			cycleAttempt++
			continue
		}

		result.Files = files
		if len(files) == 0 {
			logger.Warn("no data fetched", "cycle", cycle.String())
			runsTotal.WithLabelValues("empty").Inc()
		} else {
			logger.Info("fetched and processed grib data", "cycle", cycle.String(), "files", len(files))
			runsTotal.WithLabelValues("ok").Inc()
		}
		return result, nil
	}
}

// fetchCycle downloads every offset concurrently and waits for all of them.
// Unpublished offsets are skipped; any other error fails the batch.
func (o *Orchestrator) fetchCycle(ctx context.Context, cycle Cycle) ([]string, error) {
	offsets := Offsets()
	names := make([]string, len(offsets))

	g, gctx := errgroup.WithContext(ctx)
	for i, offset := range offsets {
		i, offset := i, offset
		g.Go(func() error {
			name, err := o.fetcher.Fetch(gctx, cycle, offset)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("offset %s: %w", OffsetSuffix(offset), err)
			}
			names[i] = name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch cycle %s: %w", cycle, err)
	}

	files := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			files = append(files, n)
		}
	}
	return files, nil
}

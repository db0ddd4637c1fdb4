package gfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/i474232898/windmap/internal/store"
)

// ErrNoData is returned when no converted document exists within the search window.
var ErrNoData = errors.New("no data available")

// maxQueryAttempts bounds the backward search to 24 hours of cycles.
const maxQueryAttempts = 5

// Document is a converted grid snapshot read from the store.
type Document struct {
	Name    string
	Cycle   Cycle
	Offset  int
	Content any
}

// Resolver answers point-in-time lookups against the converted documents. It
// never triggers a fetch.
type Resolver struct {
	store  *store.FileStore
	logger *slog.Logger
	now    func() time.Time
}

// NewResolver creates a Resolver.
func NewResolver(st *store.FileStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:  st,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the wall clock, for tests.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Resolve returns the document valid now, shifted forecastHour hours ahead
// (0 for none). It walks back one cycle at a time until a document exists.
func (r *Resolver) Resolve(ctx context.Context, forecastHour int) (*Document, error) {
	now := r.now().UTC()
	cycle := QuantizeCycle(now)

	for attempt := 1; attempt <= maxQueryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		offset := QueryOffset(cycle, now, forecastHour)
		name := cycle.DocumentName(offset)

		ok, err := r.store.DocumentExists(name)
		if err != nil {
			queriesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("check %s: %w", name, err)
		}
		if !ok {
			r.logger.Debug("document not found, trying previous cycle", "document", name)
			cycle = cycle.Previous()
			continue
		}

		doc, err := r.read(name)
		if err != nil {
			queriesTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		doc.Cycle = cycle
		doc.Offset = offset

		queryAttempts.Observe(float64(attempt))
		queriesTotal.WithLabelValues("hit").Inc()
		return doc, nil
	}

	queryAttempts.Observe(maxQueryAttempts)
	queriesTotal.WithLabelValues("no_data").Inc()
	r.logger.Info("no data files found", "forecast_hour", forecastHour)
	return nil, ErrNoData
}

func (r *Resolver) read(name string) (*Document, error) {
	data, err := r.store.ReadDocument(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var content any
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return &Document{Name: name, Content: content}, nil
}

// Documents lists every converted document currently published.
func (r *Resolver) Documents() ([]string, error) {
	return r.store.ListDocuments()
}

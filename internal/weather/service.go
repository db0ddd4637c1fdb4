package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
)

// ErrNoProviders is returned when no provider is configured.
var ErrNoProviders = errors.New("no weather providers configured")

// Service looks up current wind through its providers in priority order.
type Service struct {
	providers []Provider
	logger    *slog.Logger
}

// NewService creates a new Service.
func NewService(providers []Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		providers: providers,
		logger:    logger,
	}
}

// CurrentWind returns the first successful provider reading for the point.
func (s *Service) CurrentWind(ctx context.Context, at Coordinates) (WindData, error) {
	if len(s.providers) == 0 {
		return WindData{}, ErrNoProviders
	}

	var errs *multierror.Error
	for _, p := range s.providers {
		r, err := p.FetchWind(ctx, at)
		if err != nil {
			s.logger.Warn("provider wind fetch failed", "provider", p.Name(), "lat", at.Lat, "lon", at.Lon, "error", err)
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}

		s.logger.Debug("current wind", "provider", r.ProviderName, "speed", r.SpeedMS, "deg", r.DirectionD)
		return WindData{
			WindSpeed: r.SpeedMS,
			WindDeg:   r.DirectionD,
			Provider:  r.ProviderName,
			Timestamp: r.Timestamp,
		}, nil
	}

	return WindData{}, errs.ErrorOrNil()
}

package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name    string
	reading WindReading
	err     error
	calls   int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) FetchWind(context.Context, Coordinates) (WindReading, error) {
	p.calls++
	return p.reading, p.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCurrentWindFallsThroughProviders(t *testing.T) {
	ts := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	first := &stubProvider{name: "openweathermap", err: errors.New("api key is not configured")}
	second := &stubProvider{name: "openmeteo", reading: WindReading{ProviderName: "openmeteo", Timestamp: ts, SpeedMS: 4.2, DirectionD: 270}}
	third := &stubProvider{name: "unused"}

	svc := NewService([]Provider{first, second, third}, quietLogger())
	got, err := svc.CurrentWind(context.Background(), Coordinates{Lat: 52.1, Lon: 4.3})
	require.NoError(t, err)

	assert.Equal(t, WindData{WindSpeed: 4.2, WindDeg: 270, Provider: "openmeteo", Timestamp: ts}, got)
	assert.Equal(t, 0, third.calls)
}

func TestCurrentWindAllProvidersFail(t *testing.T) {
	svc := NewService([]Provider{
		&stubProvider{name: "a", err: errors.New("timeout")},
		&stubProvider{name: "b", err: errors.New("rate limited")},
	}, quietLogger())

	_, err := svc.CurrentWind(context.Background(), Coordinates{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a: timeout")
	assert.Contains(t, err.Error(), "b: rate limited")
}

func TestCurrentWindWithoutProviders(t *testing.T) {
	_, err := NewService(nil, quietLogger()).CurrentWind(context.Background(), Coordinates{})
	assert.ErrorIs(t, err, ErrNoProviders)
}

package weather

import (
	"context"
)

// Provider abstracts a current-weather source (e.g. OpenWeatherMap, Open-Meteo).
type Provider interface {
	Name() string
	FetchWind(ctx context.Context, at Coordinates) (WindReading, error)
}

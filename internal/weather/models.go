package weather

import (
	"time"
)

// Coordinates is a point on the globe in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WindReading is a single provider's normalized current wind observation.
type WindReading struct {
	ProviderName string
	Timestamp    time.Time // always UTC

	SpeedMS    float64
	DirectionD float64
}

// WindData is the current wind returned to API consumers.
type WindData struct {
	WindSpeed float64   `json:"wind_speed"` // m/s
	WindDeg   float64   `json:"wind_deg"`
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`
}

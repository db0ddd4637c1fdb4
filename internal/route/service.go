package route

import (
	"errors"
	"log/slog"
)

// ErrNoDeliveries is returned when a midpoint is requested for an empty route.
var ErrNoDeliveries = errors.New("no deliveries to average")

// AddressData groups every delivery made to one address.
type AddressData struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Order   []int   `json:"order"`
}

// GroupByAddress merges deliveries sharing an address, keeping the
// coordinates of the first occurrence and first-seen ordering.
func GroupByAddress(deliveries []Delivery) []AddressData {
	index := make(map[string]int)
	grouped := make([]AddressData, 0, len(deliveries))

	for _, d := range deliveries {
		i, ok := index[d.Address]
		if !ok {
			i = len(grouped)
			index[d.Address] = i
			grouped = append(grouped, AddressData{
				Address: d.Address,
				Lat:     d.Lat,
				Lng:     d.Lng,
				Order:   []int{},
			})
		}
		grouped[i].Order = append(grouped[i].Order, d.Order)
	}
	return grouped
}

// Midpoint averages the coordinates of the grouped addresses.
func Midpoint(addresses []AddressData) ([2]float64, error) {
	if len(addresses) == 0 {
		return [2]float64{}, ErrNoDeliveries
	}

	var sumLat, sumLng float64
	for _, a := range addresses {
		sumLat += a.Lat
		sumLng += a.Lng
	}

	n := float64(len(addresses))
	return [2]float64{sumLat / n, sumLng / n}, nil
}

// Service serves grouped deliveries and their midpoint from the routing file.
type Service struct {
	path   string
	logger *slog.Logger
}

// NewService creates a Service reading the CSV at path on every call.
func NewService(path string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{path: path, logger: logger}
}

// RoutingData returns deliveries grouped by address.
func (s *Service) RoutingData() ([]AddressData, error) {
	deliveries, err := LoadDeliveries(s.path)
	if err != nil {
		s.logger.Error("failed to get routing data", "error", err)
		return nil, err
	}
	grouped := GroupByAddress(deliveries)
	s.logger.Debug("grouped deliveries retrieved", "addresses", len(grouped))
	return grouped, nil
}

// MidPoint returns the [lat, lng] midpoint of the delivery addresses.
func (s *Service) MidPoint() ([2]float64, error) {
	grouped, err := s.RoutingData()
	if err != nil {
		return [2]float64{}, err
	}

	mid, err := Midpoint(grouped)
	if err != nil {
		s.logger.Error("failed to get midpoint", "error", err)
		return [2]float64{}, err
	}
	s.logger.Info("midpoint calculated", "lat", mid[0], "lng", mid[1])
	return mid, nil
}

package route

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/i474232898/windmap/internal/common"
)

// Delivery is one stop read from the routing export.
type Delivery struct {
	Address string
	Lat     float64
	Lng     float64
	Order   int
}

var requiredColumns = []string{"address", "lat", "lng", "order"}

// LoadDeliveries reads the routing CSV at path.
func LoadDeliveries(path string) ([]Delivery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open routing data: %w", err)
	}
	defer f.Close()

	return ParseDeliveries(f)
}

// ParseDeliveries reads deliveries from CSV with a header row. Columns are
// matched by name; extra columns are ignored.
func ParseDeliveries(r io.Reader) ([]Delivery, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("routing data is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("routing data is missing column %q", col)
		}
	}

	var deliveries []Delivery
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		d, err := parseRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

func parseRecord(rec []string, idx map[string]int) (Delivery, error) {
	field := func(name string) string {
		if i := idx[name]; i < len(rec) {
			return rec[i]
		}
		return ""
	}

	lat, err := common.ParseDecimal(field("lat"))
	if err != nil {
		return Delivery{}, fmt.Errorf("invalid lat: %w", err)
	}
	lng, err := common.ParseDecimal(field("lng"))
	if err != nil {
		return Delivery{}, fmt.Errorf("invalid lng: %w", err)
	}
	order, err := strconv.Atoi(strings.TrimSpace(field("order")))
	if err != nil {
		return Delivery{}, fmt.Errorf("invalid order: %w", err)
	}

	return Delivery{
		Address: field("address"),
		Lat:     lat,
		Lng:     lng,
		Order:   order,
	}, nil
}

package route

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `driverName,orderRef,address,lat,lng,status,type,order
Ana,1001,Main St 1,"52,10","4,30",done,delivery,1
Ana,1002,Harbour 7,52.30,4.50,done,delivery,2
Ana,1003,Main St 1,"52,10","4,30",done,pickup,3
`

func TestParseDeliveries(t *testing.T) {
	deliveries, err := ParseDeliveries(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, deliveries, 3)

	assert.Equal(t, Delivery{Address: "Main St 1", Lat: 52.10, Lng: 4.30, Order: 1}, deliveries[0])
	assert.Equal(t, 3, deliveries[2].Order)
}

func TestParseDeliveriesMissingColumn(t *testing.T) {
	_, err := ParseDeliveries(strings.NewReader("address,lat,order\nA,1,1\n"))
	assert.ErrorContains(t, err, `"lng"`)
}

func TestParseDeliveriesBadValue(t *testing.T) {
	_, err := ParseDeliveries(strings.NewReader("address,lat,lng,order\nA,north,1,1\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestGroupAndMidpoint(t *testing.T) {
	deliveries, err := ParseDeliveries(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	grouped := GroupByAddress(deliveries)
	require.Len(t, grouped, 2)
	assert.Equal(t, "Main St 1", grouped[0].Address)
	assert.Equal(t, []int{1, 3}, grouped[0].Order)
	assert.Equal(t, []int{2}, grouped[1].Order)

	mid, err := Midpoint(grouped)
	require.NoError(t, err)
	assert.InDelta(t, 52.20, mid[0], 1e-9)
	assert.InDelta(t, 4.40, mid[1], 1e-9)
}

func TestMidpointEmpty(t *testing.T) {
	_, err := Midpoint(nil)
	assert.ErrorIs(t, err, ErrNoDeliveries)
}

func TestServiceReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	svc := NewService(path, nil)
	mid, err := svc.MidPoint()
	require.NoError(t, err)
	assert.InDelta(t, 52.20, mid[0], 1e-9)

	_, err = NewService(filepath.Join(t.TempDir(), "missing.csv"), nil).RoutingData()
	assert.Error(t, err)
}

package gfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantizeCycleStaysOnCadence(t *testing.T) {
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	valid := map[int]bool{0: true, 6: true, 12: true, 18: true}

	for m := 0; m < 24*60; m += 17 {
		ts := base.Add(time.Duration(m) * time.Minute)
		c := QuantizeCycle(ts)

		assert.True(t, valid[c.Hour], "hour %d not on cadence", c.Hour)
		assert.LessOrEqual(t, c.Hour, ts.Hour())
		assert.Equal(t, base, c.Date)
	}
}

func TestQuantizeCycleBelowFirstStepKeepsDate(t *testing.T) {
	c := QuantizeCycle(time.Date(2024, 1, 2, 5, 59, 59, 0, time.UTC))

	assert.Equal(t, 0, c.Hour)
	assert.Equal(t, "20240102", c.DateStamp())
	assert.Equal(t, "2024010200", c.Stamp())
}

func TestQuantizeCycleConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	c := QuantizeCycle(time.Date(2024, 1, 1, 1, 0, 0, 0, loc))

	assert.Equal(t, "2023123118", c.Stamp())
}

func TestPreviousCrossesMidnight(t *testing.T) {
	c := QuantizeCycle(time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC))

	assert.Equal(t, "2023123118", c.Previous().Stamp())
}

func TestOffsets(t *testing.T) {
	assert.Equal(t, []int{0, 3, 6, 9, 12, 15, 18, 21, 24}, Offsets())
}

func TestFileNames(t *testing.T) {
	c := QuantizeCycle(time.Date(2024, 1, 1, 7, 40, 0, 0, time.UTC))

	assert.Equal(t, "gfs.t06z.pgrb2.1p00.f003", c.RemoteName(3))
	assert.Equal(t, "/gfs.20240101/06/atmos", c.RemoteDir())
	assert.Equal(t, "2024010106.f003", c.RawName(3))
	assert.Equal(t, "2024010106.f003.json", c.DocumentName(3))
	assert.Equal(t, "2024010106.f024.json", c.DocumentName(24))
}

func TestQueryOffsetMatchesDownloadNames(t *testing.T) {
	now := time.Date(2024, 1, 1, 7, 40, 0, 0, time.UTC)
	c := QuantizeCycle(now)

	require.Equal(t, 3, QueryOffset(c, now, 0))
	assert.Equal(t, c.DocumentName(3), c.DocumentName(QueryOffset(c, now, 0)))
	assert.Equal(t, "2024010106.f004.json", c.DocumentName(QueryOffset(c, now, 1)))
}

func TestQueryOffsetForOlderCycle(t *testing.T) {
	now := time.Date(2024, 1, 1, 7, 40, 0, 0, time.UTC)
	older := QuantizeCycle(now.Add(-3 * CycleStep))

	assert.Equal(t, "2023123112", older.Stamp())
	assert.Equal(t, 21, QueryOffset(older, now, 0))
}

func TestQueryOffsetCapsAtHorizon(t *testing.T) {
	dayOld := Cycle{Date: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), Hour: 6}

	for _, now := range []time.Time{
		time.Date(2024, 1, 1, 6, 10, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 7, 40, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 11, 59, 0, 0, time.UTC),
	} {
		assert.Equal(t, OffsetHorizon, QueryOffset(dayOld, now, 0), now.Format(time.Kitchen))
	}
	assert.Equal(t, 28, QueryOffset(dayOld, time.Date(2024, 1, 1, 7, 40, 0, 0, time.UTC), 1))
}

func TestPreviousMatchesSteppedReference(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for m := 0; m < 24*60; m += 35 {
		ref := start.Add(time.Duration(m) * time.Minute)
		assert.Equal(t, QuantizeCycle(ref.Add(-CycleStep)), QuantizeCycle(ref).Previous(), ref.Format(time.RFC3339))
	}
}

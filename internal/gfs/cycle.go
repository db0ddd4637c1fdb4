package gfs

import (
	"fmt"
	"math"
	"time"
)

const (
	// CycleStep is the spacing between GFS publication runs (00/06/12/18 UTC).
	CycleStep = 6 * time.Hour

	// OffsetStep is the spacing between published forecast offsets within a cycle.
	OffsetStep = 3

	// OffsetHorizon is the last forecast offset (in hours) fetched for each cycle.
	OffsetHorizon = 24
)

// Cycle identifies one GFS publication run by calendar date and cycle hour.
type Cycle struct {
	Date time.Time // midnight UTC of the cycle's calendar date
	Hour int       // one of 0, 6, 12, 18
}

// QuantizeCycle floors the hour of t (in UTC) to the cycle cadence while keeping
// its calendar date. Hours below the first step map to 00 of the same date.
func QuantizeCycle(t time.Time) Cycle {
	t = t.UTC()
	step := int(CycleStep / time.Hour)
	return Cycle{
		Date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
		Hour: (t.Hour() / step) * step,
	}
}

// Start returns the instant at which the cycle begins.
func (c Cycle) Start() time.Time {
	return c.Date.Add(time.Duration(c.Hour) * time.Hour)
}

// Previous returns the cycle one step earlier.
func (c Cycle) Previous() Cycle {
	return QuantizeCycle(c.Start().Add(-CycleStep))
}

// DateStamp renders the cycle date as YYYYMMDD.
func (c Cycle) DateStamp() string {
	return c.Date.Format("20060102")
}

// HourStamp renders the cycle hour as a two-digit string.
func (c Cycle) HourStamp() string {
	return fmt.Sprintf("%02d", c.Hour)
}

// Stamp is the cycle key used in local file names, e.g. 2024010106.
func (c Cycle) Stamp() string {
	return c.DateStamp() + c.HourStamp()
}

func (c Cycle) String() string {
	return c.Start().Format("2006-01-02T15Z")
}

// Offsets returns the forecast offsets published for every cycle, in hours.
func Offsets() []int {
	offsets := make([]int, 0, OffsetHorizon/OffsetStep+1)
	for h := 0; h <= OffsetHorizon; h += OffsetStep {
		offsets = append(offsets, h)
	}
	return offsets
}

// OffsetSuffix renders a forecast offset as f000, f003, ...
func OffsetSuffix(offset int) string {
	return fmt.Sprintf("f%03d", offset)
}

// RemoteName is the provider's file name for one offset of the cycle.
func (c Cycle) RemoteName(offset int) string {
	return fmt.Sprintf("gfs.t%sz.pgrb2.1p00.%s", c.HourStamp(), OffsetSuffix(offset))
}

// RemoteDir is the provider's directory for the cycle.
func (c Cycle) RemoteDir() string {
	return fmt.Sprintf("/gfs.%s/%s/atmos", c.DateStamp(), c.HourStamp())
}

// RawName is the local raw grid file name for one offset of the cycle.
func (c Cycle) RawName(offset int) string {
	return c.Stamp() + "." + OffsetSuffix(offset)
}

// DocumentName is the converted document name for one offset of the cycle.
func (c Cycle) DocumentName(offset int) string {
	return DocumentNameFor(c.RawName(offset))
}

// DocumentNameFor maps a raw file name to its converted document name.
func DocumentNameFor(rawName string) string {
	return rawName + ".json"
}

// QueryOffset is the offset of cycle c that is valid at now, rounded to the
// nearest published step, plus forecastHour whole hours. Without a forecast
// hour the offset is capped at OffsetHorizon, the newest snapshot a cycle
// older than a day can still provide.
func QueryOffset(c Cycle, now time.Time, forecastHour int) int {
	elapsed := now.Sub(c.Start()).Hours()
	offset := int(math.Round(elapsed/OffsetStep)) * OffsetStep
	if offset < 0 {
		offset = 0
	}
	if forecastHour > 0 {
		return offset + forecastHour
	}
	return min(offset, OffsetHorizon)
}

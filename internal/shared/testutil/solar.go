package testutil

import (
	"math"
	"time"

	"github.com/AsobaCloud/platform/internal/timeseries"
)

// SolarStart is the first timestamp of every synthetic dataset.
var SolarStart = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

// SolarValue returns the idealized generation of one inverter at an hourly
// offset from SolarStart: a cosine bell peaking at noon between 06:00 and
// 18:00, zero at night.
func SolarValue(hourOffset int, peak float64) float64 {
	hour := hourOffset % 24
	if hour < 6 || hour > 18 {
		return 0
	}
	return peak * math.Max(0, math.Cos(float64(hour-12)*math.Pi/12))
}

// SolarFrame builds an hourly frame with the named inverter columns, each
// following the clear-sky bell with a slightly different peak so columns
// stay distinguishable.
func SolarFrame(rows int, columns ...string) *timeseries.Frame {
	frame := timeseries.NewFrame("datetime")
	for i := 0; i < rows; i++ {
		frame.Times = append(frame.Times, SolarStart.Add(time.Duration(i)*time.Hour))
	}
	for ci, col := range columns {
		peak := 5000.0 * (1 + 0.1*float64(ci))
		vals := make([]float64, rows)
		for i := range vals {
			vals[i] = SolarValue(i, peak)
		}
		// Length always matches rows, so SetColumn cannot fail here.
		_ = frame.SetColumn(col, vals)
	}
	return frame
}

// Mask sets the given rows of a column to NaN and returns the frame for
// chaining.
func Mask(frame *timeseries.Frame, column string, rows ...int) *timeseries.Frame {
	for _, r := range rows {
		frame.SetValue(r, column, math.NaN())
	}
	return frame
}

// MaskRange masks the half-open row range [from, to) of a column.
func MaskRange(frame *timeseries.Frame, column string, from, to int) *timeseries.Frame {
	for r := from; r < to; r++ {
		frame.SetValue(r, column, math.NaN())
	}
	return frame
}

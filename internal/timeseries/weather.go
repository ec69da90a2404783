package timeseries

import (
	"fmt"
	"math"
	"time"
)

// WeatherColumns are the weather variables the feature builder understands.
// Files may carry any subset.
var WeatherColumns = []string{
	"temperature",
	"humidity",
	"wind_speed",
	"cloud_cover",
	"solar_radiation",
	"solar_energy",
	"uv_index",
}

// WeatherFrame holds weather observations keyed by timestamp.
type WeatherFrame struct {
	Times   []time.Time
	Columns []string
	values  map[string][]float64
}

// LoadWeatherCSV reads a weather CSV with a "datetime" column plus any of
// the known weather variables.
func LoadWeatherCSV(path string) (*WeatherFrame, error) {
	table, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}

	const timeCol = "datetime"
	raw := table.Strings(timeCol)
	if raw == nil {
		return nil, fmt.Errorf("weather file %s: missing %q column", path, timeCol)
	}

	wf := &WeatherFrame{values: make(map[string][]float64)}
	for i, s := range raw {
		ts, err := ParseTimestamp(s)
		if err != nil {
			return nil, fmt.Errorf("weather row %d: %w", i, err)
		}
		wf.Times = append(wf.Times, ts)
	}

	for _, col := range WeatherColumns {
		vals := table.Floats(col)
		if vals == nil {
			continue
		}
		wf.Columns = append(wf.Columns, col)
		wf.values[col] = vals
	}
	if len(wf.Columns) == 0 {
		return nil, fmt.Errorf("weather file %s: no known weather columns", path)
	}
	return wf, nil
}

// Column returns a weather variable, or nil if absent.
func (w *WeatherFrame) Column(name string) []float64 {
	return w.values[name]
}

// HasColumn reports whether a weather variable is present.
func (w *WeatherFrame) HasColumn(name string) bool {
	_, ok := w.values[name]
	return ok
}

// AlignTo joins the weather data onto the target timestamps: exact timestamp
// matches first, then forward fill, then backward fill, mirroring a left
// merge with ffill/bfill. The result has one row per target timestamp.
func (w *WeatherFrame) AlignTo(times []time.Time) map[string][]float64 {
	byUnix := make(map[int64]int, len(w.Times))
	for i, t := range w.Times {
		byUnix[t.Unix()] = i
	}

	aligned := make(map[string][]float64, len(w.Columns))
	for _, col := range w.Columns {
		src := w.values[col]
		out := make([]float64, len(times))
		for i, t := range times {
			if j, ok := byUnix[t.Unix()]; ok {
				out[i] = src[j]
			} else {
				out[i] = math.NaN()
			}
		}
		forwardFill(out)
		backwardFill(out)
		aligned[col] = out
	}
	return aligned
}

func forwardFill(vals []float64) {
	last := math.NaN()
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = last
		} else {
			last = v
		}
	}
}

func backwardFill(vals []float64) {
	next := math.NaN()
	for i := len(vals) - 1; i >= 0; i-- {
		if math.IsNaN(vals[i]) {
			vals[i] = next
		} else {
			next = vals[i]
		}
	}
}

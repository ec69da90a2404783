package interpolate

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/AsobaCloud/platform/internal/timeseries"
)

// FeatureSet is an ordered, named feature matrix aligned to frame rows.
type FeatureSet struct {
	Names []string
	cols  [][]float64
	rows  int
}

// NewFeatureSet creates an empty feature set for the given row count.
func NewFeatureSet(rows int) *FeatureSet {
	return &FeatureSet{rows: rows}
}

// Add appends a feature column. Short slices are ignored to keep the matrix
// rectangular.
func (fs *FeatureSet) Add(name string, vals []float64) {
	if len(vals) != fs.rows {
		return
	}
	fs.Names = append(fs.Names, name)
	fs.cols = append(fs.cols, vals)
}

// Len returns the number of rows.
func (fs *FeatureSet) Len() int { return fs.rows }

// NumFeatures returns the number of feature columns.
func (fs *FeatureSet) NumFeatures() int { return len(fs.cols) }

// Row materializes one feature vector.
func (fs *FeatureSet) Row(i int) []float64 {
	row := make([]float64, len(fs.cols))
	for j, col := range fs.cols {
		row[j] = col[i]
	}
	return row
}

// Column returns a feature column by position.
func (fs *FeatureSet) Column(j int) []float64 { return fs.cols[j] }

// dayOfWeek converts Go weekday numbering to Monday=0 .. Sunday=6, the
// convention the rest of the pipeline (and its serialized documents) uses.
func dayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// TimeFeatures builds the six cyclic time features used by the Gaussian
// process: hour, day of year, and the sin/cos encodings of both.
func TimeFeatures(times []time.Time) *FeatureSet {
	n := len(times)
	hour := make([]float64, n)
	doy := make([]float64, n)
	hourSin := make([]float64, n)
	hourCos := make([]float64, n)
	doySin := make([]float64, n)
	doyCos := make([]float64, n)

	for i, t := range times {
		h := float64(t.Hour())
		d := float64(t.YearDay())
		hour[i] = h
		doy[i] = d
		hourSin[i] = math.Sin(2 * math.Pi * h / 24)
		hourCos[i] = math.Cos(2 * math.Pi * h / 24)
		doySin[i] = math.Sin(2 * math.Pi * d / 365)
		doyCos[i] = math.Cos(2 * math.Pi * d / 365)
	}

	fs := NewFeatureSet(n)
	fs.Add("hour", hour)
	fs.Add("day_of_year", doy)
	fs.Add("hour_sin", hourSin)
	fs.Add("hour_cos", hourCos)
	fs.Add("day_sin", doySin)
	fs.Add("day_cos", doyCos)
	return fs
}

// ExtendedTimeFeatures adds calendar features on top of the cyclic set for
// the tree-based strategy.
func ExtendedTimeFeatures(times []time.Time) *FeatureSet {
	fs := TimeFeatures(times)
	n := len(times)

	dow := make([]float64, n)
	weekend := make([]float64, n)
	month := make([]float64, n)
	for i, t := range times {
		d := dayOfWeek(t)
		dow[i] = float64(d)
		if d >= 5 {
			weekend[i] = 1
		}
		month[i] = float64(t.Month())
	}
	fs.Add("day_of_week", dow)
	fs.Add("is_weekend", weekend)
	fs.Add("month", month)
	return fs
}

// WeatherFeatures derives the physical weather features from a weather frame
// aligned to the target timestamps. Missing base variables simply skip their
// derived features; any remaining NaN cells are zeroed so tree training
// never sees non-finite inputs.
func WeatherFeatures(times []time.Time, weather *timeseries.WeatherFrame) *FeatureSet {
	n := len(times)
	fs := NewFeatureSet(n)
	if weather == nil {
		return fs
	}
	aligned := weather.AlignTo(times)

	for _, col := range timeseries.WeatherColumns {
		if vals, ok := aligned[col]; ok {
			fs.Add(col, vals)
		}
	}

	temp := aligned["temperature"]
	hum := aligned["humidity"]
	wind := aligned["wind_speed"]
	cloud := aligned["cloud_cover"]
	rad := aligned["solar_radiation"]

	var tempEffect, cloudEffect, windCooling, panelTemp, tempEfficiency []float64

	if temp != nil {
		tempEffect = mapf(temp, func(t float64) float64 {
			return math.Max(0, 1-(t-25)*0.004)
		})
		fs.Add("temp_effect", tempEffect)
	}
	if cloud != nil {
		cloudEffect = mapf(cloud, func(c float64) float64 {
			return math.Max(0, 1-c/100)
		})
		fs.Add("cloud_effect", cloudEffect)
	}
	if wind != nil {
		windCooling = mapf(wind, func(w float64) float64 {
			return math.Min(1, w/10)
		})
		fs.Add("wind_cooling", windCooling)
	}

	if temp != nil && rad != nil && wind != nil {
		panelTemp = make([]float64, n)
		for i := range panelTemp {
			// Irradiance heats the panel, wind cools it, but the panel does
			// not drop below ambient.
			pt := temp[i] + rad[i]*0.03 - wind[i]*0.15
			panelTemp[i] = math.Max(pt, temp[i])
		}
		fs.Add("panel_temp", panelTemp)

		tempEfficiency = mapf(panelTemp, func(pt float64) float64 {
			return math.Max(0.7, 1-(pt-25)*0.0045)
		})
		fs.Add("temp_efficiency", tempEfficiency)
	}

	if rad != nil && cloudEffect != nil && hum != nil {
		eff := make([]float64, n)
		for i := range eff {
			eff[i] = rad[i] * cloudEffect[i] * (1 - hum[i]/1000)
		}
		fs.Add("effective_irradiance", eff)
	}

	if rad != nil {
		mean, std, max, min := rolling3h(rad)
		fs.Add("rad_3h_mean", mean)
		fs.Add("rad_3h_std", std)
		fs.Add("rad_3h_max", max)
		fs.Add("rad_3h_min", min)
	}

	if cloud != nil && temp != nil {
		change := make([]float64, n)
		for i := 1; i < n; i++ {
			if math.Abs(cloud[i]-cloud[i-1]) > 20 {
				change[i]++
			}
			if math.Abs(temp[i]-temp[i-1]) > 2 {
				change[i]++
			}
		}
		fs.Add("weather_change", change)
	}

	if cloud != nil {
		fs.Add("cloud_lag_1h", lag(cloud, 1))
		fs.Add("cloud_lag_2h", lag(cloud, 2))
	}

	if rad != nil && tempEfficiency != nil && cloudEffect != nil {
		potential := make([]float64, n)
		for i := range potential {
			potential[i] = rad[i] * tempEfficiency[i] * cloudEffect[i]
		}
		fs.Add("solar_potential", potential)
	}
	if rad != nil && cloud != nil {
		ratio := make([]float64, n)
		for i := range ratio {
			ratio[i] = rad[i] / (cloud[i] + 1)
		}
		fs.Add("weather_solar_ratio", ratio)
	}

	season := make([]float64, n)
	isSummer := make([]float64, n)
	isWinter := make([]float64, n)
	for i, t := range times {
		s := float64((int(t.Month())%12 + 3) / 3)
		season[i] = s
		if s == 3 {
			isSummer[i] = 1
		}
		if s == 1 {
			isWinter[i] = 1
		}
	}
	fs.Add("season", season)
	fs.Add("is_summer", isSummer)
	fs.Add("is_winter", isWinter)

	if temp != nil {
		tSeasonal := make([]float64, n)
		tWinter := make([]float64, n)
		for i := range temp {
			tSeasonal[i] = temp[i] * isSummer[i]
			tWinter[i] = temp[i] * isWinter[i]
		}
		fs.Add("temp_seasonal", tSeasonal)
		fs.Add("temp_winter", tWinter)
	}

	for _, col := range fs.cols {
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				col[i] = 0
			}
		}
	}
	return fs
}

func mapf(vals []float64, fn func(float64) float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = fn(v)
	}
	return out
}

// lag shifts a series forward by k rows, repeating the first value at the
// edge.
func lag(vals []float64, k int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		j := i - k
		if j < 0 {
			j = 0
		}
		out[i] = vals[j]
	}
	return out
}

// rolling3h computes centered 3-row rolling mean, population std, max and
// min, shrinking the window at the edges.
func rolling3h(vals []float64) (mean, std, max, min []float64) {
	n := len(vals)
	mean = make([]float64, n)
	std = make([]float64, n)
	max = make([]float64, n)
	min = make([]float64, n)
	for i := 0; i < n; i++ {
		lo, hi := i-1, i+1
		if lo < 0 {
			lo = 0
		}
		if hi >= n {
			hi = n - 1
		}
		window := vals[lo : hi+1]
		mean[i] = stat.Mean(window, nil)
		std[i] = stat.PopStdDev(window, nil)
		mx, mn := window[0], window[0]
		for _, v := range window[1:] {
			if v > mx {
				mx = v
			}
			if v < mn {
				mn = v
			}
		}
		max[i] = mx
		min[i] = mn
	}
	return mean, std, max, min
}

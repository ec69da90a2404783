package interpolate

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsobaCloud/platform/internal/timeseries"
)

func TestTimeFeatures(t *testing.T) {
	noon := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fs := TimeFeatures([]time.Time{noon})

	require.Equal(t, []string{"hour", "day_of_year", "hour_sin", "hour_cos", "day_sin", "day_cos"}, fs.Names)
	row := fs.Row(0)
	assert.Equal(t, 12.0, row[0])
	assert.Equal(t, float64(noon.YearDay()), row[1])
	assert.InDelta(t, 0, row[2], 1e-9)  // sin(pi)
	assert.InDelta(t, -1, row[3], 1e-9) // cos(pi)
}

func TestDayOfWeekMondayZero(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), 0},  // Monday
		{time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC), 4},  // Friday
		{time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), 5},  // Saturday
		{time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC), 6},  // Sunday
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, dayOfWeek(tt.date), tt.date.Weekday().String())
	}
}

func TestExtendedTimeFeaturesWeekend(t *testing.T) {
	saturday := time.Date(2024, 6, 8, 10, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

	fs := ExtendedTimeFeatures([]time.Time{saturday, monday})
	weekend := featureByName(t, fs, "is_weekend")
	assert.Equal(t, []float64{1, 0}, weekend)
}

func TestWeatherFeaturesDerived(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Hour)}

	weather := weatherFixture(t, times, map[string][]float64{
		"temperature":     {30, 30},
		"humidity":        {50, 50},
		"wind_speed":      {5, 5},
		"cloud_cover":     {20, 80},
		"solar_radiation": {800, 400},
	})

	fs := WeatherFeatures(times, weather)

	tempEffect := featureByName(t, fs, "temp_effect")
	assert.InDelta(t, 1-(30-25)*0.004, tempEffect[0], 1e-9)

	cloudEffect := featureByName(t, fs, "cloud_effect")
	assert.InDelta(t, 0.8, cloudEffect[0], 1e-9)
	assert.InDelta(t, 0.2, cloudEffect[1], 1e-9)

	windCooling := featureByName(t, fs, "wind_cooling")
	assert.InDelta(t, 0.5, windCooling[0], 1e-9)

	// Panel temperature is floored at ambient.
	panelTemp := featureByName(t, fs, "panel_temp")
	assert.GreaterOrEqual(t, panelTemp[0], 30.0)

	change := featureByName(t, fs, "weather_change")
	assert.Equal(t, 0.0, change[0])
	assert.Equal(t, 1.0, change[1], "cloud cover jumped by more than 20")

	// June is meteorological summer in this encoding.
	season := featureByName(t, fs, "season")
	assert.Equal(t, 3.0, season[0])

	for j := range fs.Names {
		for _, v := range fs.Column(j) {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "feature %s must be finite", fs.Names[j])
		}
	}
}

func TestWeatherFeaturesNilWeather(t *testing.T) {
	fs := WeatherFeatures([]time.Time{time.Now()}, nil)
	assert.Zero(t, fs.NumFeatures())
}

func weatherFixture(t *testing.T, times []time.Time, cols map[string][]float64) *timeseries.WeatherFrame {
	t.Helper()

	names := []string{"temperature", "humidity", "wind_speed", "cloud_cover", "solar_radiation"}
	var b strings.Builder
	b.WriteString("datetime")
	for _, n := range names {
		if _, ok := cols[n]; ok {
			b.WriteString("," + n)
		}
	}
	b.WriteByte('\n')
	for i, ts := range times {
		b.WriteString(ts.Format("2006-01-02 15:04:05"))
		for _, n := range names {
			if vals, ok := cols[n]; ok {
				b.WriteString("," + strconv.FormatFloat(vals[i], 'f', -1, 64))
			}
		}
		b.WriteByte('\n')
	}

	path := filepath.Join(t.TempDir(), "weather.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	w, err := timeseries.LoadWeatherCSV(path)
	require.NoError(t, err)
	return w
}

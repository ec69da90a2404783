package gaps

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/AsobaCloud/platform/internal/timeseries"
)

// ImpactAssessment grades how much the detected gaps hurt the common
// downstream analyses of a solar dataset.
type ImpactAssessment struct {
	DailyEnergyCalculation      string `json:"daily_energy_calculation"`
	PeakPowerAnalysis           string `json:"peak_power_analysis"`
	PerformanceRatioCalculation string `json:"performance_ratio_calculation"`
	FaultDetection              string `json:"fault_detection"`
	OverallImpact               string `json:"overall_impact"`
}

// AssessImpact classifies gap impact on daily-energy, peak-power,
// performance-ratio and fault-detection analyses as low/medium/high.
func AssessImpact(allGaps []GapRecord) ImpactAssessment {
	impact := ImpactAssessment{
		DailyEnergyCalculation:      "low",
		PeakPowerAnalysis:           "low",
		PerformanceRatioCalculation: "low",
		FaultDetection:              "low",
		OverallImpact:               "low",
	}
	if len(allGaps) == 0 {
		return impact
	}

	peakHourGaps, fullDayGaps, shortGaps := 0, 0, 0
	for _, g := range allGaps {
		if g.StartTime.IsZero() {
			continue
		}
		startHour := g.StartTime.Hour()

		// Peak sun hours are 10:00-14:00; count gaps that start inside the
		// window or run into it.
		if (startHour >= 10 && startHour <= 14) || (startHour < 10 && startHour+g.Length > 10) {
			peakHourGaps++
		}
		if g.Length >= 24 {
			fullDayGaps++
		}
		if g.Length <= 2 {
			shortGaps++
		}
	}

	total := float64(len(allGaps))
	if float64(peakHourGaps) > total*0.3 {
		impact.PeakPowerAnalysis = "high"
		impact.DailyEnergyCalculation = "high"
	}
	if float64(fullDayGaps) > total*0.1 {
		impact.PerformanceRatioCalculation = "high"
	}
	if float64(shortGaps) > total*0.5 {
		impact.FaultDetection = "high"
	}

	high := 0
	for _, level := range []string{
		impact.DailyEnergyCalculation,
		impact.PeakPowerAnalysis,
		impact.PerformanceRatioCalculation,
		impact.FaultDetection,
	} {
		if level == "high" {
			high++
		}
	}
	switch {
	case high >= 2:
		impact.OverallImpact = "high"
	case high == 1:
		impact.OverallImpact = "medium"
	}
	return impact
}

// WeatherCorrelation counts gaps whose onset coincides with notable weather.
type WeatherCorrelation struct {
	StormRelated           int    `json:"storm_related"`
	MaintenanceWeather     int    `json:"maintenance_weather"`
	EquipmentWeather       int    `json:"equipment_weather"`
	ClearWeatherGaps       int    `json:"clear_weather_gaps"`
	TotalWeatherCorrelated int    `json:"total_weather_correlated"`
	Note                   string `json:"note,omitempty"`
}

// CorrelateWeather inspects a +/-2h weather window around each gap start.
// Storm conditions (wind > 50 or cloud cover > 80) suggest weather-driven
// outages; calm clear conditions (cloud < 20 and wind < 20) suggest
// planned maintenance.
func CorrelateWeather(allGaps []GapRecord, weather *timeseries.WeatherFrame) WeatherCorrelation {
	var wc WeatherCorrelation
	if weather == nil || len(allGaps) == 0 {
		wc.Note = "No weather data available"
		return wc
	}

	for _, g := range allGaps {
		if g.StartTime.IsZero() {
			continue
		}
		from := g.StartTime.Add(-2 * time.Hour)
		to := g.StartTime.Add(2 * time.Hour)

		avgWind := windowMean(weather, "wind_speed", from, to)
		avgCloud := windowMean(weather, "cloud_cover", from, to)

		switch {
		case avgWind > 50 || avgCloud > 80:
			wc.StormRelated++
			wc.EquipmentWeather++
		case !math.IsNaN(avgCloud) && avgCloud < 20 && !math.IsNaN(avgWind) && avgWind < 20:
			wc.ClearWeatherGaps++
			wc.MaintenanceWeather++
		}
	}

	wc.TotalWeatherCorrelated = wc.StormRelated + wc.MaintenanceWeather + wc.ClearWeatherGaps
	return wc
}

func windowMean(weather *timeseries.WeatherFrame, column string, from, to time.Time) float64 {
	vals := weather.Column(column)
	if vals == nil {
		return math.NaN()
	}
	var window []float64
	for i, t := range weather.Times {
		if !t.Before(from) && !t.After(to) && !math.IsNaN(vals[i]) {
			window = append(window, vals[i])
		}
	}
	if len(window) == 0 {
		return math.NaN()
	}
	return stat.Mean(window, nil)
}

// ValidationStrategy recommends how interpolation output should be
// validated given the observed gap patterns.
type ValidationStrategy struct {
	PrimaryStrategy       string   `json:"primary_strategy"`
	Metrics               []string `json:"metrics"`
	SpecialConsiderations []string `json:"special_considerations"`
	ValidationBlocks      string   `json:"validation_blocks"`
}

// RecommendValidation picks a validation strategy: block-wise for clustered
// gaps, system-level when failures are simultaneous across equipment, and a
// plain time-series split otherwise.
func RecommendValidation(clustered, simultaneous bool) ValidationStrategy {
	vs := ValidationStrategy{
		PrimaryStrategy:  "time_series_split_validation",
		ValidationBlocks: "temporal_split",
		Metrics: []string{
			"mae_during_peak_hours",
			"daily_energy_error",
			"power_curve_shape_preservation",
			"physical_constraint_violations",
			"weather_correlation_accuracy",
		},
	}
	switch {
	case clustered:
		vs.PrimaryStrategy = "block_wise_validation"
		vs.ValidationBlocks = "clustered_gaps"
		vs.SpecialConsiderations = append(vs.SpecialConsiderations,
			"Test on similar clustered missing periods")
	case simultaneous:
		vs.PrimaryStrategy = "system_level_validation"
		vs.ValidationBlocks = "system_failures"
		vs.SpecialConsiderations = append(vs.SpecialConsiderations,
			"Validate system-wide power conservation")
	}
	return vs
}

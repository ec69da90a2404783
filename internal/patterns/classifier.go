// Package patterns derives failure-pattern descriptors from detected gaps:
// per-equipment randomness/degradation/maintenance labels, cross-equipment
// failure correlation and temporal clustering. The labels feed the
// interpolation method recommender.
package patterns

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/sajari/regression"
	"gonum.org/v1/gonum/stat"

	"github.com/AsobaCloud/platform/internal/gaps"
)

// Label values used across the profile. "unknown" means the statistical
// test had too few gaps to run.
const (
	LabelUnknown  = "unknown"
	LabelLow      = "low"
	LabelModerate = "moderate"
	LabelHigh     = "high"
	LabelDetected = "detected"
)

// ColumnPattern labels the failure behavior of a single power column.
type ColumnPattern struct {
	Randomness        string  `json:"randomness"`
	Systematic        string  `json:"systematic"`
	Degradation       string  `json:"degradation"`
	MaintenanceLike   string  `json:"maintenance_like"`
	WeatherCorrelated string  `json:"weather_correlated"`
	DegradationSlope  float64 `json:"degradation_slope,omitempty"`
}

// CrossEquipment labels how failures relate across columns.
type CrossEquipment struct {
	SimultaneousFailures string `json:"simultaneous_failures"`
	IndependentFailures  string `json:"independent_failures"`
	CascadingFailures    string `json:"cascading_failures"`
}

// TemporalClustering labels how gap starts distribute over time.
type TemporalClustering struct {
	Clustered   string `json:"clustered"`
	Distributed string `json:"distributed"`
	Seasonal    string `json:"seasonal"`
}

// Summary condenses the profile into a primary pattern plus secondary
// signals.
type Summary struct {
	PrimaryPattern          string   `json:"primary_pattern"`
	SecondaryPatterns       []string `json:"secondary_patterns"`
	InterpolationComplexity string   `json:"interpolation_complexity"`
}

// Profile is the full failure-pattern classification for one dataset.
type Profile struct {
	FailureTypes              map[string]ColumnPattern `json:"failure_types"`
	CrossEquipmentCorrelation CrossEquipment           `json:"cross_equipment_correlation"`
	TemporalClustering        TemporalClustering       `json:"temporal_clustering"`
	PatternSummary            Summary                  `json:"pattern_summary"`
}

// Classifier runs the failure-pattern statistics.
type Classifier struct {
	logger *slog.Logger
}

// NewClassifier creates a classifier. A nil logger falls back to the
// default slog logger.
func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger}
}

// Classify derives the failure-pattern profile from per-column gap
// summaries. Columns without stored sample gaps are skipped.
func (c *Classifier) Classify(columns map[string]gaps.ColumnGapSummary) Profile {
	profile := Profile{
		FailureTypes: make(map[string]ColumnPattern),
	}

	names := sortedKeys(columns)
	for _, name := range names {
		summary := columns[name]
		times, lengths := gapTimings(summary.SampleGaps)
		if len(times) == 0 {
			continue
		}
		profile.FailureTypes[name] = c.classifyColumn(name, times, lengths)
	}

	profile.CrossEquipmentCorrelation = c.crossEquipment(columns, names)
	profile.TemporalClustering = c.temporalClustering(columns)
	profile.PatternSummary = summarize(profile)

	c.logger.Debug("failure patterns classified",
		"columns", len(profile.FailureTypes),
		"primary_pattern", profile.PatternSummary.PrimaryPattern,
	)
	return profile
}

// classifyColumn applies the per-column statistical tests. All labels stay
// "unknown" below 3 gaps.
func (c *Classifier) classifyColumn(name string, times []time.Time, lengths []float64) ColumnPattern {
	pattern := ColumnPattern{
		Randomness:        LabelUnknown,
		Systematic:        LabelUnknown,
		Degradation:       LabelUnknown,
		MaintenanceLike:   LabelUnknown,
		WeatherCorrelated: LabelUnknown,
	}
	if len(times) < 3 {
		return pattern
	}

	intervals := intervalHours(times)
	if len(intervals) > 1 {
		mean := stat.Mean(intervals, nil)
		cv := 0.0
		if mean > 0 {
			cv = stat.PopStdDev(intervals, nil) / mean
		}
		switch {
		case cv > 1.5:
			pattern.Randomness = LabelHigh
		case cv < 0.5:
			pattern.Systematic = LabelHigh
		default:
			pattern.Randomness = LabelModerate
		}
	}

	if len(lengths) >= 5 {
		numeric := make([]float64, len(times))
		for i, t := range times {
			numeric[i] = float64(t.Unix())
		}
		corr := stat.Correlation(numeric, lengths, nil)
		switch {
		case corr > 0.3:
			pattern.Degradation = LabelDetected
		case corr < -0.3:
			pattern.Degradation = "improving"
		default:
			pattern.Degradation = "stable"
		}
		pattern.DegradationSlope = degradationSlope(times, lengths)
	}

	if len(times) >= 4 && len(intervals) > 2 {
		mean := stat.Mean(intervals, nil)
		if mean > 0 && stat.PopStdDev(intervals, nil)/mean < 0.3 {
			switch {
			case mean > 160 && mean < 200:
				pattern.MaintenanceLike = "weekly"
			case mean > 700 && mean < 800:
				pattern.MaintenanceLike = "monthly"
			default:
				pattern.MaintenanceLike = "regular"
			}
		}
	}

	return pattern
}

// degradationSlope fits gap length against hours since the first gap and
// returns the trend in hours of outage per thousand hours of operation.
func degradationSlope(times []time.Time, lengths []float64) float64 {
	r := new(regression.Regression)
	r.SetObserved("gap_length_hours")
	r.SetVar(0, "hours_since_first_gap")

	t0 := times[0]
	for i, t := range times {
		r.Train(regression.DataPoint(lengths[i], []float64{t.Sub(t0).Hours()}))
	}
	if err := r.Run(); err != nil {
		return 0
	}
	coeffs := r.GetCoeffs()
	if len(coeffs) < 2 || math.IsNaN(coeffs[1]) {
		return 0
	}
	return coeffs[1] * 1000
}

// crossEquipment measures pairwise gap-start overlap within a 1-hour
// window across all column pairs.
func (c *Classifier) crossEquipment(columns map[string]gaps.ColumnGapSummary, names []string) CrossEquipment {
	ce := CrossEquipment{
		SimultaneousFailures: LabelUnknown,
		IndependentFailures:  LabelUnknown,
		CascadingFailures:    LabelUnknown,
	}
	if len(names) < 2 {
		return ce
	}

	startTimes := make(map[string][]time.Time, len(names))
	for _, name := range names {
		times, _ := gapTimings(columns[name].SampleGaps)
		startTimes[name] = times
	}

	simultaneous, totalPairs := 0, 0
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			for _, t1 := range startTimes[names[i]] {
				for _, t2 := range startTimes[names[j]] {
					d := t1.Sub(t2)
					if d < 0 {
						d = -d
					}
					if d < time.Hour {
						simultaneous++
					}
					totalPairs++
				}
			}
		}
	}

	if totalPairs == 0 {
		return ce
	}
	ratio := float64(simultaneous) / float64(totalPairs)
	switch {
	case ratio > 0.3:
		ce.SimultaneousFailures = LabelHigh
	case ratio > 0.1:
		ce.SimultaneousFailures = LabelModerate
	default:
		ce.IndependentFailures = LabelHigh
	}
	return ce
}

// temporalClustering pools gap starts across columns and measures how
// bunched they are in time and over the calendar year.
func (c *Classifier) temporalClustering(columns map[string]gaps.ColumnGapSummary) TemporalClustering {
	tc := TemporalClustering{
		Clustered:   LabelUnknown,
		Distributed: LabelUnknown,
		Seasonal:    LabelUnknown,
	}

	var pooled []time.Time
	for _, name := range sortedKeys(columns) {
		times, _ := gapTimings(columns[name].SampleGaps)
		pooled = append(pooled, times...)
	}
	if len(pooled) < 5 {
		return tc
	}
	sort.Slice(pooled, func(i, j int) bool { return pooled[i].Before(pooled[j]) })

	intervals := intervalHours(pooled)
	if len(intervals) > 1 {
		short := 0
		for _, h := range intervals {
			if h < 24 {
				short++
			}
		}
		ratio := float64(short) / float64(len(intervals))
		switch {
		case ratio > 0.5:
			tc.Clustered = LabelHigh
		case ratio < 0.2:
			tc.Distributed = LabelHigh
		default:
			tc.Clustered = LabelModerate
		}
	}

	if len(pooled) > 10 {
		monthCounts := make(map[time.Month]int)
		for _, t := range pooled {
			monthCounts[t.Month()]++
		}
		if len(monthCounts) > 1 {
			maxCount := 0
			for _, n := range monthCounts {
				if n > maxCount {
					maxCount = n
				}
			}
			share := float64(maxCount) / float64(len(pooled))
			switch {
			case share > 0.4:
				tc.Seasonal = LabelHigh
			case share > 0.25:
				tc.Seasonal = LabelModerate
			}
		}
	}
	return tc
}

// summarize folds the component classifications into the primary and
// secondary pattern labels consumed by the recommender.
func summarize(profile Profile) Summary {
	summary := Summary{
		PrimaryPattern:          LabelUnknown,
		InterpolationComplexity: LabelUnknown,
	}

	switch {
	case profile.CrossEquipmentCorrelation.SimultaneousFailures == LabelHigh:
		summary.PrimaryPattern = "system_wide_failures"
		summary.InterpolationComplexity = LabelHigh
	case profile.CrossEquipmentCorrelation.IndependentFailures == LabelHigh:
		summary.PrimaryPattern = "individual_equipment_failures"
		summary.InterpolationComplexity = "medium"
	}

	add := func(p string) {
		for _, existing := range summary.SecondaryPatterns {
			if existing == p {
				return
			}
		}
		summary.SecondaryPatterns = append(summary.SecondaryPatterns, p)
	}

	if profile.TemporalClustering.Clustered == LabelHigh {
		add("temporal_clustering")
	}
	if profile.TemporalClustering.Seasonal == LabelHigh {
		add("seasonal_patterns")
	}
	for _, name := range sortedPatternKeys(profile.FailureTypes) {
		col := profile.FailureTypes[name]
		if col.Degradation == LabelDetected {
			add("equipment_degradation")
		}
		if col.MaintenanceLike != LabelUnknown {
			add("maintenance_patterns")
		}
		if col.Randomness == LabelHigh {
			add("random_failures")
		}
	}
	return summary
}

func gapTimings(sampleGaps []gaps.GapRecord) ([]time.Time, []float64) {
	var times []time.Time
	var lengths []float64
	for _, g := range sampleGaps {
		if g.StartTime.IsZero() {
			continue
		}
		times = append(times, g.StartTime)
		lengths = append(lengths, float64(g.Length))
	}
	return times, lengths
}

func intervalHours(times []time.Time) []float64 {
	if len(times) < 2 {
		return nil
	}
	intervals := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		intervals = append(intervals, times[i].Sub(times[i-1]).Hours())
	}
	return intervals
}

func sortedKeys(m map[string]gaps.ColumnGapSummary) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedPatternKeys(m map[string]ColumnPattern) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package recommend maps a failure-pattern profile and gap-length
// distribution to an interpolation method recommendation with fully typed
// per-method configuration blocks.
package recommend

import (
	"fmt"
	"log/slog"

	"github.com/AsobaCloud/platform/internal/patterns"
)

// MethodParameters are the boolean modeling hints attached to the chosen
// method. Only the hints relevant to the decided branch are set.
type MethodParameters struct {
	UseSystemCorrelation         bool `json:"use_system_correlation,omitempty"`
	ModelBackupPower             bool `json:"model_backup_power,omitempty"`
	IncludeGridStatus            bool `json:"include_grid_status,omitempty"`
	UseDegradationCurves         bool `json:"use_degradation_curves,omitempty"`
	ModelEquipmentAge            bool `json:"model_equipment_age,omitempty"`
	IncludePerformanceTrends     bool `json:"include_performance_trends,omitempty"`
	UseMaintenanceSchedules      bool `json:"use_maintenance_schedules,omitempty"`
	ModelPlannedOutages          bool `json:"model_planned_outages,omitempty"`
	IncludePreventiveMaintenance bool `json:"include_preventive_maintenance,omitempty"`
	ModelIndividualEquipment     bool `json:"model_individual_equipment,omitempty"`
	UseEquipmentCorrelation      bool `json:"use_equipment_correlation,omitempty"`
	IncludeEquipmentSpecs        bool `json:"include_equipment_specs,omitempty"`
	ModelEquipmentIndependently  bool `json:"model_equipment_independently,omitempty"`
	ApplySolarConstraints        bool `json:"apply_solar_constraints"`
}

// GapSpecific names a method per gap-length class.
type GapSpecific struct {
	ShortGaps  string `json:"short_gaps"`
	MediumGaps string `json:"medium_gaps"`
	LongGaps   string `json:"long_gaps"`
}

// PatternBased echoes the classifier profile inside the recommendation
// document so downstream consumers see the evidence behind the choice.
type PatternBased struct {
	FailurePatterns           map[string]patterns.ColumnPattern `json:"failure_patterns"`
	CrossEquipmentCorrelation patterns.CrossEquipment           `json:"cross_equipment_correlation"`
	TemporalClustering        patterns.TemporalClustering       `json:"temporal_clustering"`
	PatternSummary            patterns.Summary                  `json:"pattern_summary"`
}

// Recommendations is the full recommendation document.
type Recommendations struct {
	PrimaryMethod               string           `json:"primary_method"`
	LegacyPrimaryMethods        []string         `json:"primary_methods,omitempty"`
	MethodParameters            MethodParameters `json:"method_parameters"`
	Reasoning                   []string         `json:"reasoning"`
	GapSpecificRecommendations  *GapSpecific     `json:"gap_specific_recommendations,omitempty"`
	Configuration               Configuration    `json:"configuration"`
	PatternBasedRecommendations *PatternBased    `json:"pattern_based_recommendations,omitempty"`
}

// ResolvePrimaryMethod returns the effective primary method. Documents
// written by older analyzers carry a primary_methods list instead of the
// singular key; the first entry wins.
func (r *Recommendations) ResolvePrimaryMethod() string {
	if r.PrimaryMethod != "" {
		return r.PrimaryMethod
	}
	if len(r.LegacyPrimaryMethods) > 0 {
		return r.LegacyPrimaryMethods[0]
	}
	return ""
}

// Recommender chooses interpolation methods from failure-pattern evidence.
type Recommender struct {
	logger *slog.Logger
}

// NewRecommender creates a recommender. A nil logger falls back to the
// default slog logger.
func NewRecommender(logger *slog.Logger) *Recommender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recommender{logger: logger}
}

// Recommend derives the method recommendation from the classifier profile
// and the pooled gap-length distribution. The output is deterministic for
// identical inputs.
func (r *Recommender) Recommend(profile patterns.Profile, distribution map[string]int, powerColumns []string) Recommendations {
	rec := Recommendations{
		Configuration: DefaultConfiguration(powerColumns),
		MethodParameters: MethodParameters{
			ApplySolarConstraints: true,
		},
	}

	summary := profile.PatternSummary
	switch summary.PrimaryPattern {
	case "system_wide_failures":
		rec.PrimaryMethod = MethodSystemLevel
		rec.MethodParameters.UseSystemCorrelation = true
		rec.MethodParameters.ModelBackupPower = true
		rec.MethodParameters.IncludeGridStatus = true
		rec.Reasoning = append(rec.Reasoning,
			"System-wide failures detected: interpolate at system level using cross-equipment correlation")
	case "individual_equipment_failures":
		r.recommendIndividual(&rec, summary.SecondaryPatterns)
	default:
		r.recommendByDistribution(&rec, distribution)
	}

	if rec.PrimaryMethod == "" {
		rec.PrimaryMethod = MethodSpline
		rec.Reasoning = append(rec.Reasoning,
			"No dominant failure pattern: default to cubic spline interpolation")
	}

	rec.PatternBasedRecommendations = &PatternBased{
		FailurePatterns:           profile.FailureTypes,
		CrossEquipmentCorrelation: profile.CrossEquipmentCorrelation,
		TemporalClustering:        profile.TemporalClustering,
		PatternSummary:            summary,
	}

	r.logger.Debug("interpolation method recommended",
		"primary_method", rec.PrimaryMethod,
		"primary_pattern", summary.PrimaryPattern,
	)
	return rec
}

// recommendIndividual decides the method for individual-equipment failures
// from the secondary patterns, checked in fixed priority order.
func (r *Recommender) recommendIndividual(rec *Recommendations, secondary []string) {
	has := func(p string) bool {
		for _, s := range secondary {
			if s == p {
				return true
			}
		}
		return false
	}

	switch {
	case has("equipment_degradation"):
		rec.PrimaryMethod = MethodDegradationAware
		rec.MethodParameters.UseDegradationCurves = true
		rec.MethodParameters.ModelEquipmentAge = true
		rec.MethodParameters.IncludePerformanceTrends = true
		rec.Reasoning = append(rec.Reasoning,
			"Equipment degradation detected: model performance trends per inverter")
	case has("maintenance_patterns"):
		rec.PrimaryMethod = MethodMaintenanceAware
		rec.MethodParameters.UseMaintenanceSchedules = true
		rec.MethodParameters.ModelPlannedOutages = true
		rec.MethodParameters.IncludePreventiveMaintenance = true
		rec.Reasoning = append(rec.Reasoning,
			"Regular maintenance pattern detected: model planned outage windows")
	case has("random_failures"):
		rec.PrimaryMethod = MethodEquipmentSpecific
		rec.MethodParameters.ModelIndividualEquipment = true
		rec.MethodParameters.UseEquipmentCorrelation = true
		rec.MethodParameters.IncludeEquipmentSpecs = true
		rec.Reasoning = append(rec.Reasoning,
			"Random per-equipment failures: interpolate each inverter with its own model")
	default:
		rec.PrimaryMethod = MethodMultiOutput
		rec.MethodParameters.ModelEquipmentIndependently = true
		rec.MethodParameters.UseEquipmentCorrelation = true
		rec.Reasoning = append(rec.Reasoning,
			"Independent equipment failures: multi-output regression across inverters")
	}
}

// recommendByDistribution falls back to the pooled gap-length histogram
// when no failure pattern dominates. Short gaps favor splines, medium gaps
// the Gaussian process, long gaps the physics model.
func (r *Recommender) recommendByDistribution(rec *Recommendations, distribution map[string]int) {
	total := 0
	for _, n := range distribution {
		total += n
	}
	if total == 0 {
		return
	}

	short := distribution["1h"] + distribution["2h"] + distribution["3h"]
	medium := distribution["6h"] + distribution["12h"]
	long := distribution["1d"] + distribution["2d"] + distribution["1w"]

	shortRatio := float64(short) / float64(total)
	mediumRatio := float64(medium) / float64(total)
	longRatio := float64(long) / float64(total)

	switch {
	case shortRatio > 0.7:
		rec.PrimaryMethod = MethodSpline
		rec.Reasoning = append(rec.Reasoning, fmt.Sprintf(
			"%.0f%% of gaps are 3 hours or shorter: cubic splines reconstruct short gaps accurately", shortRatio*100))
	case mediumRatio > 0.3:
		rec.PrimaryMethod = MethodGaussianProcess
		rec.Reasoning = append(rec.Reasoning, fmt.Sprintf(
			"%.0f%% of gaps span 6-12 hours: Gaussian process handles medium gaps with daily structure", mediumRatio*100))
	case longRatio > 0.2:
		rec.PrimaryMethod = MethodPhysicsBased
		rec.Reasoning = append(rec.Reasoning, fmt.Sprintf(
			"%.0f%% of gaps span a day or more: physics-based model reconstructs long outages", longRatio*100))
	}

	rec.GapSpecificRecommendations = &GapSpecific{
		ShortGaps:  MethodSpline,
		MediumGaps: MethodGaussianProcess,
		LongGaps:   MethodPhysicsBased,
	}
}

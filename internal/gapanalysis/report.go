// Package gapanalysis orchestrates the gap-analysis pipeline over a solar
// power CSV and defines the report document shared with the interpolation
// engine.
package gapanalysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AsobaCloud/platform/internal/gaps"
	"github.com/AsobaCloud/platform/internal/patterns"
	"github.com/AsobaCloud/platform/internal/recommend"
)

// Structure describes the detected shape of the analyzed dataset.
type Structure struct {
	TimeColumn    string   `json:"time_column"`
	PowerColumns  []string `json:"power_columns"`
	TimeFrequency string   `json:"time_frequency"`
	TotalRows     int      `json:"total_rows"`
}

// Analysis aggregates the gap statistics of one dataset.
type Analysis struct {
	Columns            map[string]gaps.ColumnGapSummary `json:"columns"`
	Overall            gaps.OverallStats                `json:"overall"`
	PhysicsViolations  gaps.PhysicsViolations           `json:"physics_violations"`
	ImpactAssessment   gaps.ImpactAssessment            `json:"impact_assessment"`
	WeatherCorrelation *gaps.WeatherCorrelation         `json:"weather_correlation,omitempty"`
	ValidationStrategy gaps.ValidationStrategy          `json:"validation_strategy"`
}

// Report is the full gap-analysis document. It is what the analyzer writes
// and the interpolation engine reads.
type Report struct {
	GeneratedAt     time.Time                 `json:"generated_at"`
	SourceFile      string                    `json:"source_file"`
	Structure       Structure                 `json:"structure"`
	Analysis        Analysis                  `json:"analysis"`
	FailurePatterns patterns.Profile          `json:"failure_patterns"`
	Recommendations recommend.Recommendations `json:"recommendations"`
}

// Save writes the report as indented JSON.
func Save(r *Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode gap analysis report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write gap analysis report: %w", err)
	}
	return nil
}

// Load reads a report written by Save. Documents from older analyzers that
// carry primary_methods instead of primary_method still resolve through
// Recommendations.ResolvePrimaryMethod. Per-method configuration blocks the
// document omits are filled with the defaults, and the resulting
// configuration is validated once here so the engine never runs on a bad
// document.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gap analysis report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse gap analysis report %s: %w", path, err)
	}
	r.Recommendations.Configuration.Normalize(r.Structure.PowerColumns)
	if err := r.Recommendations.Configuration.Validate(); err != nil {
		return nil, fmt.Errorf("gap analysis report %s: %w", path, err)
	}
	return &r, nil
}

package gapanalysis

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/AsobaCloud/platform/internal/gaps"
	"github.com/AsobaCloud/platform/internal/patterns"
	"github.com/AsobaCloud/platform/internal/recommend"
	"github.com/AsobaCloud/platform/internal/timeseries"
)

// Analyzer runs the full gap-analysis pipeline: structure detection, gap
// detection, physics checks, failure-pattern classification and method
// recommendation.
type Analyzer struct {
	logger      *slog.Logger
	classifier  *patterns.Classifier
	recommender *recommend.Recommender
}

// NewAnalyzer creates an analyzer. A nil logger falls back to the default
// slog logger.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		logger:      logger,
		classifier:  patterns.NewClassifier(logger),
		recommender: recommend.NewRecommender(logger),
	}
}

// timeColumnNames are the recognized time column headers, tried before
// falling back to the first column.
var timeColumnNames = []string{"datetime", "timestamp", "time", "date"}

// Analyze loads a power CSV, detects its structure and produces the full
// gap-analysis report. The parsed frame is returned alongside so callers
// can reuse it without re-reading the file. Weather is optional.
func (a *Analyzer) Analyze(ctx context.Context, path string, weather *timeseries.WeatherFrame) (*Report, *timeseries.Frame, error) {
	table, err := timeseries.LoadCSV(path)
	if err != nil {
		return nil, nil, err
	}

	timeColumn := detectTimeColumn(table.Headers())
	frame, err := table.ToFrame(timeColumn)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	powerColumns := detectPowerColumns(frame)
	if len(powerColumns) == 0 {
		return nil, nil, fmt.Errorf("no numeric power columns found in %s", path)
	}

	report := &Report{
		GeneratedAt: time.Now().UTC(),
		SourceFile:  path,
		Structure: Structure{
			TimeColumn:    timeColumn,
			PowerColumns:  powerColumns,
			TimeFrequency: detectFrequency(frame.Times),
			TotalRows:     frame.Len(),
		},
	}

	a.logger.Info("dataset structure detected",
		"file", path,
		"rows", frame.Len(),
		"power_columns", len(powerColumns),
		"frequency", report.Structure.TimeFrequency,
	)

	columns := make(map[string]gaps.ColumnGapSummary, len(powerColumns))
	var allGaps []gaps.GapRecord
	for _, col := range powerColumns {
		colGaps := gaps.FindGaps(frame.Column(col), frame.Times)
		columns[col] = gaps.Summarize(colGaps, frame.Len())
		allGaps = append(allGaps, colGaps...)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	report.Analysis = Analysis{
		Columns:            columns,
		Overall:            gaps.Pool(allGaps, frame.Len()*len(powerColumns)),
		PhysicsViolations:  gaps.ScanPhysicsViolations(frame, powerColumns),
		ImpactAssessment:   gaps.AssessImpact(allGaps),
		ValidationStrategy: gaps.ValidationStrategy{},
	}
	if weather != nil {
		wc := gaps.CorrelateWeather(allGaps, weather)
		report.Analysis.WeatherCorrelation = &wc
	}

	report.FailurePatterns = a.classifier.Classify(columns)
	clustered := report.FailurePatterns.TemporalClustering.Clustered == patterns.LabelHigh
	simultaneous := report.FailurePatterns.CrossEquipmentCorrelation.SimultaneousFailures == patterns.LabelHigh
	report.Analysis.ValidationStrategy = gaps.RecommendValidation(clustered, simultaneous)

	report.Recommendations = a.recommender.Recommend(
		report.FailurePatterns,
		report.Analysis.Overall.GapLengthDistribution,
		powerColumns,
	)

	a.logger.Info("gap analysis complete",
		"total_gaps", report.Analysis.Overall.TotalGaps,
		"missing_percentage", report.Analysis.Overall.OverallMissingPercentage,
		"recommended_method", report.Recommendations.PrimaryMethod,
	)
	return report, frame, nil
}

// detectTimeColumn picks the time column by recognized header name, falling
// back to the first column.
func detectTimeColumn(headers []string) string {
	for _, candidate := range timeColumnNames {
		for _, h := range headers {
			if strings.EqualFold(h, candidate) {
				return h
			}
		}
	}
	if len(headers) > 0 {
		return headers[0]
	}
	return ""
}

// detectPowerColumns returns every value column of the frame that holds at
// least one numeric reading, sorted in frame order.
func detectPowerColumns(frame *timeseries.Frame) []string {
	var cols []string
	for _, c := range frame.Columns {
		vals := frame.Column(c)
		if frame.MissingCount(c) < len(vals) {
			cols = append(cols, c)
		}
	}
	return cols
}

// detectFrequency reports the median sampling interval. An empty or
// single-row series has no frequency.
func detectFrequency(times []time.Time) string {
	if len(times) < 2 {
		return "unknown"
	}
	diffs := make([]time.Duration, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		diffs = append(diffs, times[i].Sub(times[i-1]))
	}
	sort.Slice(diffs, func(a, b int) bool { return diffs[a] < diffs[b] })
	return diffs[len(diffs)/2].Round(time.Minute).String()
}

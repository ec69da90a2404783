package interpolate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AsobaCloud/platform/internal/gapanalysis"
	"github.com/AsobaCloud/platform/internal/recommend"
	"github.com/AsobaCloud/platform/internal/timeseries"
)

// Options control one engine run.
type Options struct {
	// Method overrides the recommended method. An unknown override is a
	// configuration error; an unknown recommended method only degrades to
	// splines.
	Method string
	// OutputDir receives the interpolated CSV, the JSON summary and the
	// Excel report.
	OutputDir string
	// SkipValidation disables the masked-row validation pass.
	SkipValidation bool
	// ExcelReport additionally writes an xlsx workbook with the run
	// summary and validation metrics.
	ExcelReport bool
}

// RunResult summarizes one engine run. It is also what the JSON summary
// file contains.
type RunResult struct {
	RunID             string            `json:"run_id"`
	GeneratedAt       time.Time         `json:"generated_at"`
	SourceFile        string            `json:"source_file"`
	RequestedMethod   string            `json:"requested_method"`
	ExecutedMethod    string            `json:"executed_method"`
	Metadata          RunMetadata       `json:"metadata"`
	Validation        *ValidationResult `json:"validation,omitempty"`
	ValidationSkipped string            `json:"validation_skipped,omitempty"`
	MissingBefore     map[string]int    `json:"missing_before"`
	MissingAfter      map[string]int    `json:"missing_after"`
	FilledValues      map[string]int    `json:"filled_values"`
	OutputDataFile    string            `json:"output_data_file"`
	SummaryFile       string            `json:"summary_file"`
	ReportFile        string            `json:"report_file,omitempty"`
}

// RunMetadata describes the dataset shape and the fitted strategy's state
// for one run.
type RunMetadata struct {
	Rows          int      `json:"rows"`
	PowerColumns  []string `json:"power_columns"`
	WeatherUsed   bool     `json:"weather_used"`
	StrategyNotes []string `json:"strategy_notes,omitempty"`
}

// noter is implemented by strategies that report fit-time notes, such as
// skipped columns or a fallback to another method.
type noter interface {
	Notes() []string
}

// Engine drives strategy selection, validation, interpolation and output
// persistence for one dataset.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger falls back to the default slog
// logger.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Run interpolates the gaps of every power column named by the gap-analysis
// report and writes the filled dataset plus a summary to the output
// directory.
func (e *Engine) Run(ctx context.Context, data *timeseries.Frame, weather *timeseries.WeatherFrame, report *gapanalysis.Report, opts Options) (*RunResult, error) {
	columns := report.Structure.PowerColumns
	if len(columns) == 0 {
		return nil, &ConfigurationError{Reason: "gap analysis document names no power columns"}
	}

	requested, canonical, err := e.resolveMethod(opts.Method, report)
	if err != nil {
		return nil, err
	}
	conf := report.Recommendations.Configuration
	conf.Normalize(columns)
	if err := conf.Validate(); err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}
	cfg := conf.For(requested)

	result := &RunResult{
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		SourceFile:      report.SourceFile,
		RequestedMethod: requested,
		ExecutedMethod:  canonical,
		Metadata: RunMetadata{
			Rows:         data.Len(),
			PowerColumns: columns,
			WeatherUsed:  weather != nil,
		},
		MissingBefore: missingCounts(data, columns),
	}

	e.logger.Info("interpolation run started",
		"run_id", result.RunID,
		"requested_method", requested,
		"executed_method", canonical,
		"columns", len(columns),
	)

	if opts.SkipValidation {
		result.ValidationSkipped = "disabled by caller"
	} else {
		validation, skipReason, err := e.validate(ctx, data, columns, weather, canonical, cfg)
		if err != nil {
			return nil, fmt.Errorf("validation pass: %w", err)
		}
		result.Validation = validation
		result.ValidationSkipped = skipReason
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	strategy, err := newStrategy(canonical, cfg, e.logger)
	if err != nil {
		return nil, err
	}
	if err := strategy.Fit(data, columns, weather); err != nil {
		return nil, fmt.Errorf("fit %s: %w", canonical, err)
	}
	if n, ok := strategy.(noter); ok {
		result.Metadata.StrategyNotes = n.Notes()
	}
	filled, err := strategy.Interpolate(data)
	if err != nil {
		return nil, fmt.Errorf("interpolate with %s: %w", canonical, err)
	}

	result.MissingAfter = missingCounts(filled, columns)
	result.FilledValues = make(map[string]int, len(columns))
	for _, col := range columns {
		result.FilledValues[col] = result.MissingBefore[col] - result.MissingAfter[col]
	}

	if err := e.persist(filled, report, result, opts); err != nil {
		return nil, err
	}

	e.logger.Info("interpolation run complete",
		"run_id", result.RunID,
		"output", result.OutputDataFile,
	)
	return result, nil
}

// resolveMethod decides which method to execute. Priority: explicit
// override, then the document's primary method (including the legacy list
// form), then the spline default. Only an explicit unknown override is an
// error; a document naming an unknown method degrades to splines with a
// warning, so old documents stay usable.
func (e *Engine) resolveMethod(override string, report *gapanalysis.Report) (requested, canonical string, err error) {
	if override != "" {
		c, ok := canonicalMethod(override)
		if !ok {
			return "", "", &ConfigurationError{Reason: fmt.Sprintf("unknown interpolation method %q", override)}
		}
		return override, c, nil
	}

	requested = report.Recommendations.ResolvePrimaryMethod()
	if requested == "" {
		return recommend.MethodSpline, recommend.MethodSpline, nil
	}
	c, ok := canonicalMethod(requested)
	if !ok {
		e.logger.Warn("document recommends unknown method, using splines", "method", requested)
		return recommend.MethodSpline, recommend.MethodSpline, nil
	}
	return requested, c, nil
}

func (e *Engine) persist(filled *timeseries.Frame, report *gapanalysis.Report, result *RunResult, opts Options) error {
	outDir := opts.OutputDir
	if outDir == "" {
		outDir = "output"
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(report.SourceFile), filepath.Ext(report.SourceFile))
	if base == "" {
		base = "dataset"
	}

	result.OutputDataFile = filepath.Join(outDir, base+"_interpolated.csv")
	if err := timeseries.SaveCSV(filled, result.OutputDataFile); err != nil {
		return err
	}

	if opts.ExcelReport {
		result.ReportFile = filepath.Join(outDir, base+"_report.xlsx")
		if err := WriteWorkbook(result, report, result.ReportFile); err != nil {
			return err
		}
	}

	result.SummaryFile = filepath.Join(outDir, base+"_summary.json")
	summary, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}
	if err := os.WriteFile(result.SummaryFile, summary, 0644); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return nil
}

func missingCounts(frame *timeseries.Frame, columns []string) map[string]int {
	counts := make(map[string]int, len(columns))
	for _, col := range columns {
		counts[col] = frame.MissingCount(col)
	}
	return counts
}

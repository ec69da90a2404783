// Command interpolate fills the gaps of a solar power CSV using the method
// recommended by a gap-analysis report.
//
// Usage:
//
//	interpolate [flags] <data.csv> <gap_analysis.json>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/AsobaCloud/platform/internal/config"
	"github.com/AsobaCloud/platform/internal/gapanalysis"
	"github.com/AsobaCloud/platform/internal/interpolate"
	"github.com/AsobaCloud/platform/internal/timeseries"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "interpolate:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		method       = flag.String("method", "", "override the recommended interpolation method")
		outputDir    = flag.String("output-dir", "", "directory for interpolated data and reports")
		noValidation = flag.Bool("no-validation", false, "skip the masked-row validation pass")
		listMethods  = flag.Bool("list-methods", false, "list available interpolation methods and exit")
		city         = flag.String("city", "", "city whose weather file should feed the models")
		excel        = flag.Bool("excel-report", false, "additionally write an xlsx report")
	)
	flag.Parse()

	if *listMethods {
		for _, m := range interpolate.Methods() {
			fmt.Println(m)
		}
		return nil
	}

	if flag.NArg() != 2 {
		flag.Usage()
		return fmt.Errorf("expected <data.csv> <gap_analysis.json>, got %d arguments", flag.NArg())
	}
	dataPath, reportPath := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.Logger()
	if *outputDir == "" {
		*outputDir = cfg.OutputDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := gapanalysis.Load(reportPath)
	if err != nil {
		return err
	}

	// Data and weather load independently.
	var (
		frame   *timeseries.Frame
		weather *timeseries.WeatherFrame
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		table, err := timeseries.LoadCSV(dataPath)
		if err != nil {
			return err
		}
		frame, err = table.ToFrame(report.Structure.TimeColumn)
		if err != nil {
			return fmt.Errorf("parse %s: %w", dataPath, err)
		}
		return gctx.Err()
	})
	if *city != "" {
		path := cfg.WeatherPath(*city)
		g.Go(func() error {
			w, err := timeseries.LoadWeatherCSV(path)
			if err != nil {
				logger.Warn("weather data unavailable", "city", *city, "path", path, "error", err)
				return nil
			}
			weather = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	engine := interpolate.NewEngine(logger)
	result, err := engine.Run(ctx, frame, weather, report, interpolate.Options{
		Method:         *method,
		OutputDir:      *outputDir,
		SkipValidation: *noValidation,
		ExcelReport:    *excel,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Method: %s", result.ExecutedMethod)
	if result.RequestedMethod != result.ExecutedMethod {
		fmt.Printf(" (requested %s)", result.RequestedMethod)
	}
	fmt.Println()
	if result.Validation != nil {
		fmt.Printf("Validation (%d masked rows): MAE %.3f  RMSE %.3f  R2 %.3f\n",
			result.Validation.MaskedRows,
			result.Validation.Average.MAE,
			result.Validation.Average.RMSE,
			result.Validation.Average.R2)
	} else if result.ValidationSkipped != "" {
		fmt.Printf("Validation skipped: %s\n", result.ValidationSkipped)
	}
	totalFilled := 0
	for _, n := range result.FilledValues {
		totalFilled += n
	}
	fmt.Printf("Filled %d missing values across %d columns\n", totalFilled, len(result.FilledValues))
	fmt.Printf("Interpolated data: %s\n", result.OutputDataFile)
	fmt.Printf("Summary: %s\n", result.SummaryFile)
	if result.ReportFile != "" {
		fmt.Printf("Report: %s\n", result.ReportFile)
	}
	return nil
}

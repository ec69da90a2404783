// Command gapanalyze analyzes the gaps in a solar power CSV and writes a
// gap-analysis report.
//
// Usage:
//
//	gapanalyze [flags] <input.csv>
//
// The JSON report is the input expected by the interpolate command.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AsobaCloud/platform/internal/config"
	"github.com/AsobaCloud/platform/internal/gapanalysis"
	"github.com/AsobaCloud/platform/internal/timeseries"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "gapanalyze:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		output = flag.String("o", "", "output file (default: stdout)")
		format = flag.String("f", gapanalysis.FormatText, "output format: json, csv or text")
		city   = flag.String("city", "", "city whose weather file should be correlated with gaps")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return fmt.Errorf("expected exactly one input file, got %d arguments", flag.NArg())
	}
	input := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var weather *timeseries.WeatherFrame
	if *city != "" {
		path := cfg.WeatherPath(*city)
		weather, err = timeseries.LoadWeatherCSV(path)
		if err != nil {
			// Weather correlation is supplementary; the analysis still runs
			// without it.
			logger.Warn("weather data unavailable", "city", *city, "path", path, "error", err)
			weather = nil
		}
	}

	analyzer := gapanalysis.NewAnalyzer(logger)
	report, _, err := analyzer.Analyze(ctx, input, weather)
	if err != nil {
		return err
	}

	rendered, err := gapanalysis.Format(report, *format)
	if err != nil {
		return err
	}

	if *output == "" {
		_, err = os.Stdout.Write(rendered)
		return err
	}
	if err := os.WriteFile(*output, rendered, 0644); err != nil {
		return fmt.Errorf("write %s: %w", *output, err)
	}
	logger.Info("report written", "file", *output, "format", *format)
	return nil
}

package gapanalysis

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Output formats accepted by Format.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatText = "text"
)

// Format renders the report in the requested output format.
func Format(r *Report, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(r, "", "  ")
	case FormatCSV:
		return formatCSV(r)
	case FormatText:
		return formatText(r), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// formatCSV renders one row per power column with the headline gap numbers.
func formatCSV(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"column", "total_gaps", "total_missing_values", "missing_percentage",
		"min_gap_hours", "max_gap_hours", "mean_gap_hours", "median_gap_hours",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, col := range sortedColumns(r) {
		s := r.Analysis.Columns[col]
		row := []string{
			col,
			strconv.Itoa(s.TotalGaps),
			strconv.Itoa(s.TotalMissingValues),
			strconv.FormatFloat(s.MissingPercentage, 'f', 2, 64),
			strconv.Itoa(s.GapLengthStats.Min),
			strconv.Itoa(s.GapLengthStats.Max),
			strconv.FormatFloat(s.GapLengthStats.Mean, 'f', 2, 64),
			strconv.FormatFloat(s.GapLengthStats.Median, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// formatText renders the human-readable summary printed by the CLI.
func formatText(r *Report) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Gap Analysis: %s\n", r.SourceFile)
	fmt.Fprintf(&buf, "Rows: %d  Frequency: %s  Power columns: %d\n\n",
		r.Structure.TotalRows, r.Structure.TimeFrequency, len(r.Structure.PowerColumns))

	for _, col := range sortedColumns(r) {
		s := r.Analysis.Columns[col]
		fmt.Fprintf(&buf, "%s: %d gaps, %d missing values (%.2f%%)\n",
			col, s.TotalGaps, s.TotalMissingValues, s.MissingPercentage)
	}

	o := r.Analysis.Overall
	fmt.Fprintf(&buf, "\nOverall: %d gaps, %d missing values (%.2f%%)\n",
		o.TotalGaps, o.TotalMissingValues, o.OverallMissingPercentage)

	if v := r.Analysis.PhysicsViolations; v.TotalViolations > 0 {
		fmt.Fprintf(&buf, "Physics violations: %d (nighttime %d, daytime-zero %d, over-capacity %d, negative %d)\n",
			v.TotalViolations, v.NighttimeDataPresent, v.DaytimeZeroUnexpected,
			v.PowerExceedsCapacity, v.NegativePower)
	}

	fmt.Fprintf(&buf, "\nRecommended method: %s\n", r.Recommendations.PrimaryMethod)
	for _, reason := range r.Recommendations.Reasoning {
		fmt.Fprintf(&buf, "  - %s\n", reason)
	}
	return buf.Bytes()
}

func sortedColumns(r *Report) []string {
	cols := make([]string, 0, len(r.Analysis.Columns))
	for c := range r.Analysis.Columns {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

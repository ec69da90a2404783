package interpolate

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/AsobaCloud/platform/internal/gapanalysis"
)

// WriteWorkbook renders an xlsx report for one interpolation run: a summary
// sheet, the per-column validation metrics and the gap statistics the run
// was based on.
func WriteWorkbook(result *RunResult, report *gapanalysis.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	f.SetSheetName("Sheet1", summarySheet)

	rows := [][]interface{}{
		{"Run ID", result.RunID},
		{"Generated", result.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Source file", result.SourceFile},
		{"Requested method", result.RequestedMethod},
		{"Executed method", result.ExecutedMethod},
		{},
		{"Column", "Missing before", "Missing after", "Filled"},
	}
	for _, col := range sortedKeys(result.MissingBefore) {
		rows = append(rows, []interface{}{
			col, result.MissingBefore[col], result.MissingAfter[col], result.FilledValues[col],
		})
	}
	if err := writeRows(f, summarySheet, rows); err != nil {
		return err
	}

	if result.Validation != nil {
		const sheet = "Validation"
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("excel report: %w", err)
		}
		vRows := [][]interface{}{
			{"Masked rows", result.Validation.MaskedRows},
			{},
			{"Column", "MAE", "RMSE", "R2", "SMAPE", "MAPE", "Correlation", "Valid points"},
		}
		cols := make([]string, 0, len(result.Validation.PerColumn))
		for c := range result.Validation.PerColumn {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		for _, c := range cols {
			m := result.Validation.PerColumn[c]
			vRows = append(vRows, []interface{}{
				c, m.MAE, m.RMSE, m.R2, m.SMAPE, m.MAPE, m.Correlation, m.ValidPoints,
			})
		}
		avg := result.Validation.Average
		vRows = append(vRows, []interface{}{
			"average", avg.MAE, avg.RMSE, avg.R2, avg.SMAPE, avg.MAPE, avg.Correlation, "",
		})
		if err := writeRows(f, sheet, vRows); err != nil {
			return err
		}
	}

	const gapSheet = "Gap Analysis"
	if _, err := f.NewSheet(gapSheet); err != nil {
		return fmt.Errorf("excel report: %w", err)
	}
	gRows := [][]interface{}{
		{"Column", "Total gaps", "Missing values", "Missing %", "Mean gap (h)", "Max gap (h)"},
	}
	gCols := make([]string, 0, len(report.Analysis.Columns))
	for c := range report.Analysis.Columns {
		gCols = append(gCols, c)
	}
	sort.Strings(gCols)
	for _, c := range gCols {
		s := report.Analysis.Columns[c]
		gRows = append(gRows, []interface{}{
			c, s.TotalGaps, s.TotalMissingValues, s.MissingPercentage,
			s.GapLengthStats.Mean, s.GapLengthStats.Max,
		})
	}
	if err := writeRows(f, gapSheet, gRows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write excel report: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("excel report: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("excel report: %w", err)
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

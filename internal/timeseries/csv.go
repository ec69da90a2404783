package timeseries

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table is a thin wrapper over a loaded CSV before the time column is known.
// Gap analysis auto-detects structure from it; the interpolation engine
// builds a Frame from it once the gap-analysis document names the columns.
type Table struct {
	df dataframe.DataFrame
}

// LoadCSV reads a CSV file into a Table. Cells that do not parse as numbers
// (including empty cells) become NaN when a column is read as floats, which
// is exactly the missing sentinel the rest of the pipeline expects.
func LoadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	df := dataframe.ReadCSV(file,
		dataframe.DefaultType(series.String),
		dataframe.DetectTypes(false),
		dataframe.HasHeader(true),
	)
	if df.Error() != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, df.Error())
	}
	return &Table{df: df}, nil
}

// Headers returns the column names in file order.
func (t *Table) Headers() []string {
	return t.df.Names()
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return t.df.Nrow()
}

// Strings returns a column as raw strings.
func (t *Table) Strings(column string) []string {
	col := t.df.Col(column)
	if col.Err != nil {
		return nil
	}
	return col.Records()
}

// Floats returns a column parsed as float64 with NaN for unparseable cells,
// or nil if the column does not exist.
func (t *Table) Floats(column string) []float64 {
	raw := t.Strings(column)
	if raw == nil {
		return nil
	}
	vals := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			vals[i] = math.NaN()
			continue
		}
		vals[i] = v
	}
	return vals
}

// ToFrame converts the table into a Frame using the named time column.
// Every other column is parsed as a float value column. The frame is
// normalized so timestamps are strictly increasing.
func (t *Table) ToFrame(timeColumn string) (*Frame, error) {
	headers := t.Headers()
	found := false
	for _, h := range headers {
		if h == timeColumn {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("time column %q not present in CSV", timeColumn)
	}

	frame := NewFrame(timeColumn)
	for i, raw := range t.Strings(timeColumn) {
		ts, err := ParseTimestamp(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		frame.Times = append(frame.Times, ts)
	}

	for _, h := range headers {
		if h == timeColumn {
			continue
		}
		if err := frame.SetColumn(h, t.Floats(h)); err != nil {
			return nil, err
		}
	}
	frame.Normalize()
	return frame, nil
}

// SaveCSV writes the frame back out with the original schema: the time
// column first, then every value column. Missing values are written as
// empty cells so they stay distinguishable from zero.
func SaveCSV(f *Frame, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := append([]string{f.TimeColumn}, f.Columns...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	record := make([]string, len(header))
	for i := range f.Times {
		record[0] = f.Times[i].Format("2006-01-02 15:04:05")
		for j, col := range f.Columns {
			v := f.Value(i, col)
			if math.IsNaN(v) {
				record[j+1] = ""
			} else {
				record[j+1] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write CSV row %d: %w", i, err)
		}
	}
	return nil
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"

	"ChartAlign/internal/model"
)

// DefaultTimeFormat is the strftime pattern used when none is configured.
const DefaultTimeFormat = "%Y-%m-%d %H:%M:%S"

// WriteCSV writes the table as CSV: a time column followed by one column
// per aligned series. The index is formatted with the given strftime
// pattern; missing cells are written empty.
func WriteCSV(w io.Writer, t *model.Table, timeFormat string) error {
	if timeFormat == "" {
		timeFormat = DefaultTimeFormat
	}
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, "time")
	for _, col := range t.Columns {
		header = append(header, col.Name)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(header))
	for i, ts := range t.Index {
		row[0] = strftime.Format(timeFormat, ts)
		for j, col := range t.Columns {
			row[j+1] = ""
			if i < len(col.Values) && !math.IsNaN(col.Values[i]) {
				row[j+1] = strconv.FormatFloat(col.Values[i], 'g', -1, 64)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the table to a fresh file at path.
func WriteCSVFile(path string, t *model.Table, timeFormat string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, t, timeFormat); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Summary returns a one-line description of the table for log output.
func Summary(t *model.Table) string {
	if t.Empty() {
		return "empty table"
	}
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return fmt.Sprintf("%s rows x %d columns (%s), %s to %s",
		humanize.Comma(int64(t.Rows())), len(t.Columns), strings.Join(names, ", "),
		strftime.Format(DefaultTimeFormat, t.Index[0]),
		strftime.Format(DefaultTimeFormat, t.Index[len(t.Index)-1]))
}

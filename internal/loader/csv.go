package loader

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"ChartAlign/internal/model"
)

// Spec describes one CSV-backed feed to load.
type Spec struct {
	Name     string
	Path     string
	Timezone string
	Primary  bool
}

// line order of an OHLCV export.
var lineNames = []string{"open", "high", "low", "close", "volume"}

// FromCSV reads an OHLCV CSV file (timestamp,open,high,low,close,volume)
// into a Feed. A header row is tolerated, as are UTF-16 exports with a BOM,
// quoted numbers and blank cells (loaded as NaN). Rows are sorted by
// timestamp; timestamps at or above 1e12 are taken as milliseconds.
func FromCSV(name, path string, loc *time.Location) (*model.Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed %s: %w", name, err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		return nil, fmt.Errorf("read feed %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("feed %s: no data rows in %s", name, path)
	}

	type record struct {
		stamp  float64
		values [5]float64
	}
	records := make([]record, 0, len(rows))
	for i, rec := range rows {
		if i == 0 && isHeader(rec) {
			continue
		}
		ts, err := strconv.ParseInt(cleanCell(rec[0]), 10, 64)
		if err != nil {
			continue
		}
		stamp := float64(ts)
		if stamp >= 1e12 {
			stamp /= 1000
		}
		r := record{stamp: stamp}
		for j := range r.values {
			r.values[j] = math.NaN()
			if j+1 < len(rec) {
				if v, err := strconv.ParseFloat(cleanCell(rec[j+1]), 64); err == nil {
					r.values[j] = v
				}
			}
		}
		records = append(records, r)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("feed %s: no parsable rows in %s", name, path)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].stamp < records[j].stamp })

	feed := &model.Feed{Name: name, Loc: loc, Stamps: make([]float64, len(records))}
	buffers := make([][]float64, len(lineNames))
	for i := range buffers {
		buffers[i] = make([]float64, len(records))
	}
	for i, r := range records {
		feed.Stamps[i] = r.stamp
		for j := range buffers {
			buffers[j][i] = r.values[j]
		}
	}
	for j, ln := range lineNames {
		feed.Lines = append(feed.Lines, model.Line{Name: ln, Values: buffers[j]})
	}
	return feed, nil
}

// LoadBundle loads every spec'd feed and assembles the bundle. The first
// spec becomes the primary feed unless another one is flagged.
func LoadBundle(specs []Spec) (*model.Bundle, error) {
	if len(specs) == 0 {
		return nil, errors.New("no feeds configured")
	}
	b := &model.Bundle{}
	for _, s := range specs {
		loc := time.UTC
		if s.Timezone != "" {
			var err error
			loc, err = time.LoadLocation(s.Timezone)
			if err != nil {
				return nil, fmt.Errorf("feed %s: %w", s.Name, err)
			}
		}
		feed, err := FromCSV(s.Name, s.Path, loc)
		if err != nil {
			return nil, err
		}
		b.Add(feed)
		if s.Primary {
			b.MarkPrimary()
		}
	}
	return b, nil
}

// readRows decodes the CSV, switching to a UTF-16 decoder when the file
// starts with a BOM (common for spreadsheet exports of exchange data).
func readRows(f *os.File) ([][]string, error) {
	br := bufio.NewReader(f)
	if b, _ := br.Peek(2); len(b) >= 2 && ((b[0] == 0xFF && b[1] == 0xFE) || (b[0] == 0xFE && b[1] == 0xFF)) {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		br = bufio.NewReader(transform.NewReader(f, dec))
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 2 {
			continue
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func isHeader(rec []string) bool {
	first := cleanCell(rec[0])
	return strings.EqualFold(first, "timestamp") || strings.EqualFold(first, "timestamp_ms") || strings.EqualFold(first, "time")
}

func cleanCell(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimPrefix(s, "\uFEFF"), `"`))
}

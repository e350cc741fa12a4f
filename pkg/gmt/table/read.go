package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the timestamp format Write uses.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// timeLayouts are tried in order when parsing time columns.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ErrParse reports text that is not the expected delimited table.
var ErrParse = errors.New("table: parse error")

// ParseError locates a parse failure. Line is 1-based.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("table: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("table: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ReadOptions describes the text layout.
type ReadOptions struct {
	// Sep separates fields. Zero means tab.
	Sep rune
	// SkipRows leading rows are dropped before anything else.
	SkipRows int
	// Header reads column names from the first row after SkipRows.
	// Otherwise columns are named "0", "1", ...
	Header bool
	// StripPrefix characters are removed from the first column name.
	StripPrefix int
	// Comment marks rows to ignore. Zero means none.
	Comment rune
	// TimeColumns are parsed as timestamps, by zero-based index. A column
	// with any cell that is not a timestamp is inferred like the others.
	TimeColumns []int
}

// GMTOutput is the layout of a table GMT writes through "->file": two
// metadata rows, then a "# "-prefixed header row, with ">" segment rows.
func GMTOutput(timeColumns ...int) ReadOptions {
	return ReadOptions{
		Sep:         '\t',
		SkipRows:    2,
		Header:      true,
		StripPrefix: 2,
		Comment:     '>',
		TimeColumns: timeColumns,
	}
}

// Read parses delimited text into a Table.
func Read(r io.Reader, opts ReadOptions) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = opts.Sep
	if cr.Comma == 0 {
		cr.Comma = '\t'
	}
	cr.Comment = opts.Comment
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	var (
		names []string
		cells [][]string
		row   int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &ParseError{Line: pe.Line, Err: pe.Err}
			}
			return nil, &ParseError{Err: err}
		}
		line, _ := cr.FieldPos(0)
		row++
		if row <= opts.SkipRows {
			continue
		}
		if opts.Header && names == nil {
			names = slices.Clone(rec)
			if opts.StripPrefix > 0 && len(names) > 0 {
				if len(names[0]) < opts.StripPrefix {
					return nil, &ParseError{Line: line, Err: fmt.Errorf("header %q shorter than its %d character prefix", names[0], opts.StripPrefix)}
				}
				names[0] = names[0][opts.StripPrefix:]
			}
			continue
		}
		if names == nil {
			names = make([]string, len(rec))
			for i := range names {
				names[i] = strconv.Itoa(i)
			}
		}
		if len(rec) != len(names) {
			return nil, &ParseError{Line: line, Err: fmt.Errorf("expected %d fields, got %d", len(names), len(rec))}
		}
		cells = append(cells, rec)
	}
	if names == nil {
		return nil, &ParseError{Err: errors.New("no header or data rows")}
	}
	for _, c := range opts.TimeColumns {
		if c < 0 || c >= len(names) {
			return nil, &ParseError{Err: fmt.Errorf("time column %d out of range for %d columns", c, len(names))}
		}
	}

	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = parseColumn(name, i, cells, slices.Contains(opts.TimeColumns, i))
	}
	return &Table{Columns: cols}, nil
}

func parseColumn(name string, idx int, cells [][]string, isTime bool) Column {
	if isTime {
		if times, ok := parseTimes(cells, idx); ok {
			return TimeColumn(name, times)
		}
	}

	floats := make([]float64, len(cells))
	for r, rec := range cells {
		s := strings.TrimSpace(rec[idx])
		if s == "" {
			floats[r] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			texts := make([]string, len(cells))
			for j, rec := range cells {
				texts[j] = rec[idx]
			}
			return TextColumn(name, texts)
		}
		floats[r] = v
	}
	return FloatColumn(name, floats)
}

// parseTimes converts column idx when every cell is a timestamp.
func parseTimes(cells [][]string, idx int) ([]time.Time, bool) {
	times := make([]time.Time, len(cells))
	for r, rec := range cells {
		ts, err := parseTime(strings.TrimSpace(rec[idx]))
		if err != nil {
			return nil, false
		}
		times[r] = ts
	}
	return times, true
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a timestamp", s)
}

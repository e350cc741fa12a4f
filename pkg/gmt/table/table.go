package table

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"
)

// Type is the element type of a Column.
type Type int

const (
	Float Type = iota
	Text
	Time
)

func (t Type) String() string {
	switch t {
	case Float:
		return "float"
	case Text:
		return "text"
	case Time:
		return "time"
	default:
		return "unknown"
	}
}

// ErrShape reports columns of unequal length.
var ErrShape = errors.New("table: columns have different lengths")

// Column is one named column. Exactly one of Floats, Texts or Times is used,
// selected by Type.
type Column struct {
	Name   string
	Type   Type
	Floats []float64
	Texts  []string
	Times  []time.Time
}

// FloatColumn returns a Float column.
func FloatColumn(name string, v []float64) Column { return Column{Name: name, Type: Float, Floats: v} }

// TextColumn returns a Text column.
func TextColumn(name string, v []string) Column { return Column{Name: name, Type: Text, Texts: v} }

// TimeColumn returns a Time column.
func TimeColumn(name string, v []time.Time) Column { return Column{Name: name, Type: Time, Times: v} }

// Len returns the number of values in the column.
func (c Column) Len() int {
	switch c.Type {
	case Text:
		return len(c.Texts)
	case Time:
		return len(c.Times)
	default:
		return len(c.Floats)
	}
}

// Format renders row i the way Write does.
func (c Column) Format(i int) string {
	switch c.Type {
	case Text:
		return c.Texts[i]
	case Time:
		return c.Times[i].UTC().Format(TimeLayout)
	default:
		v := c.Floats[i]
		if math.IsNaN(v) {
			return "NaN"
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// Table is an ordered set of columns with the same number of rows.
type Table struct {
	Columns []Column
}

// New returns a table over cols, which must all have the same length.
func New(cols ...Column) (*Table, error) {
	for i := 1; i < len(cols); i++ {
		if cols[i].Len() != cols[0].Len() {
			return nil, fmt.Errorf("%w: %q has %d rows, %q has %d",
				ErrShape, cols[0].Name, cols[0].Len(), cols[i].Name, cols[i].Len())
		}
	}
	return &Table{Columns: cols}, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, t.NumCols())
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column called name.
func (t *Table) Column(name string) (Column, bool) {
	i := slices.IndexFunc(t.Columns, func(c Column) bool { return c.Name == name })
	if i < 0 {
		return Column{}, false
	}
	return t.Columns[i], true
}

// Value renders the cell at row, col the way Write does.
func (t *Table) Value(row, col int) string {
	return t.Columns[col].Format(row)
}

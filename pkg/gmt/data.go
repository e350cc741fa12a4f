package gmt

import (
	"fmt"
	"runtime"
	"strings"
	"time"
	"unsafe"

	"github.com/geobind/gmt-go/pkg/gmt/table"
)

// Kind classifies data passed to Bind.
type Kind int

const (
	KindFile Kind = iota + 1
	KindMatrix
	KindVectors
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindMatrix:
		return "matrix"
	case KindVectors:
		return "vectors"
	case KindTable:
		return "table"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// DataKind classifies data:
//
//	string                           file name, passed through unchanged
//	Matrix, *Matrix, [][]float64     2-D numeric block
//	Vectors                          columns of equal length
//	*table.Table                     columns of equal length
func DataKind(data any) (Kind, error) {
	switch v := data.(type) {
	case string:
		return KindFile, nil
	case Matrix, [][]float64:
		return KindMatrix, nil
	case *Matrix:
		if v != nil {
			return KindMatrix, nil
		}
	case Vectors:
		return KindVectors, nil
	case *table.Table:
		if v != nil {
			return KindTable, nil
		}
	}
	return 0, fmt.Errorf("%w: %T", ErrUnrecognizedInputKind, data)
}

// Matrix is a row-major block of float64 values.
type Matrix struct {
	Rows, Cols int
	Data       []float64
}

// NewMatrix copies rows into a Matrix. Every row must have the same length.
func NewMatrix(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrInvalidInput)
	}
	m := &Matrix{Rows: len(rows), Cols: len(rows[0])}
	m.Data = make([]float64, 0, m.Rows*m.Cols)
	for i, row := range rows {
		if len(row) != m.Cols {
			return nil, fmt.Errorf("%w: row %d has %d values, row 0 has %d", ErrShapeMismatch, i, len(row), m.Cols)
		}
		m.Data = append(m.Data, row...)
	}
	return m, nil
}

func (m *Matrix) validate() error {
	if m.Rows <= 0 || m.Cols <= 0 {
		return fmt.Errorf("%w: matrix is %dx%d", ErrInvalidInput, m.Rows, m.Cols)
	}
	if len(m.Data) != m.Rows*m.Cols {
		return fmt.Errorf("%w: %dx%d matrix holds %d values", ErrShapeMismatch, m.Rows, m.Cols, len(m.Data))
	}
	return nil
}

func asMatrix(data any) (*Matrix, error) {
	var m *Matrix
	switch v := data.(type) {
	case Matrix:
		m = &v
	case *Matrix:
		m = v
	case [][]float64:
		var err error
		if m, err = NewMatrix(v); err != nil {
			return nil, err
		}
	}
	return m, m.validate()
}

// Vectors are the columns of a dataset. Each element is one of []float64,
// []float32, []int64, []int32, []int, []time.Time or []string. String columns
// become the trailing text of each record, joined by a space, in the order
// they appear.
type Vectors []any

// DatetimeLayout is how time columns are handed to GMT.
const DatetimeLayout = "2006-01-02T15:04:05.000000"

// columnLen returns the length of a supported column type.
func columnLen(v any) (int, bool) {
	switch v := v.(type) {
	case []float64:
		return len(v), true
	case []float32:
		return len(v), true
	case []int64:
		return len(v), true
	case []int32:
		return len(v), true
	case []int:
		return len(v), true
	case []time.Time:
		return len(v), true
	case []string:
		return len(v), true
	}
	return 0, false
}

// checkColumns validates cols without touching GMT and returns the shared
// row count.
func checkColumns(cols []any) (int, error) {
	if len(cols) == 0 {
		return 0, fmt.Errorf("%w: no columns", ErrInvalidInput)
	}
	rows := -1
	numeric := 0
	for i, c := range cols {
		n, ok := columnLen(c)
		if !ok {
			return 0, fmt.Errorf("%w: column %d is %T", ErrUnrecognizedInputKind, i, c)
		}
		if rows >= 0 && n != rows {
			return 0, fmt.Errorf("%w: column %d has %d rows, column 0 has %d", ErrShapeMismatch, i, n, rows)
		}
		rows = n
		if _, text := c.([]string); !text {
			numeric++
		}
	}
	if rows == 0 {
		return 0, fmt.Errorf("%w: columns are empty", ErrInvalidInput)
	}
	if numeric == 0 {
		return 0, fmt.Errorf("%w: at least one numeric or time column is required", ErrInvalidInput)
	}
	return rows, nil
}

// pinColumn pins v for GMT and returns the GMT type name and address of its
// first element. []int is copied to int64 first.
func pinColumn(p *runtime.Pinner, v any) (string, unsafe.Pointer) {
	switch v := v.(type) {
	case []float64:
		p.Pin(&v[0])
		return "GMT_DOUBLE", unsafe.Pointer(&v[0])
	case []float32:
		p.Pin(&v[0])
		return "GMT_FLOAT", unsafe.Pointer(&v[0])
	case []int64:
		p.Pin(&v[0])
		return "GMT_LONG", unsafe.Pointer(&v[0])
	case []int32:
		p.Pin(&v[0])
		return "GMT_INT", unsafe.Pointer(&v[0])
	case []int:
		c := make([]int64, len(v))
		for i, x := range v {
			c[i] = int64(x)
		}
		p.Pin(&c[0])
		return "GMT_LONG", unsafe.Pointer(&c[0])
	case []time.Time:
		strs := make([]string, len(v))
		for i, t := range v {
			strs[i] = t.UTC().Format(DatetimeLayout)
		}
		return "GMT_DATETIME", cStrings(p, strs)
	}
	panic(fmt.Sprintf("gmt: unchecked column type %T", v))
}

// cStrings builds a pinned char** over strs.
func cStrings(p *runtime.Pinner, strs []string) unsafe.Pointer {
	ptrs := make([]*byte, len(strs))
	for i, s := range strs {
		b := make([]byte, len(s)+1)
		copy(b, s)
		p.Pin(&b[0])
		ptrs[i] = &b[0]
	}
	p.Pin(&ptrs[0])
	return unsafe.Pointer(&ptrs[0])
}

// trailingText joins the string columns of each row.
func trailingText(cols [][]string, rows int) []string {
	out := make([]string, rows)
	parts := make([]string, len(cols))
	for r := range rows {
		for i, c := range cols {
			parts[i] = c[r]
		}
		out[r] = strings.Join(parts, " ")
	}
	return out
}

// tableVectors converts t to Vectors.
func tableVectors(t *table.Table) Vectors {
	cols := make(Vectors, len(t.Columns))
	for i, c := range t.Columns {
		switch c.Type {
		case table.Text:
			cols[i] = c.Texts
		case table.Time:
			cols[i] = c.Times
		default:
			cols[i] = c.Floats
		}
	}
	return cols
}

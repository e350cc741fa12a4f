package table

import (
	"encoding/csv"
	"io"
)

// Write renders t as tab-separated text with a header row.
func Write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(t.Names()); err != nil {
		return err
	}
	rec := make([]string, t.NumCols())
	for r := 0; r < t.NumRows(); r++ {
		for c, col := range t.Columns {
			rec[c] = col.Format(r)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

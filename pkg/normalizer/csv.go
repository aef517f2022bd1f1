package normalizer

import (
	"encoding/csv"
	"io"
)

// WriteCSV renders the table with its declared columns as the header.
// Missing numerics render as empty cells.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	columns := t.Columns()
	if err := cw.Write(columns); err != nil {
		return err
	}

	row := make([]string, len(columns))
	for i := range t.Rows {
		for j, col := range columns {
			row[j] = t.Rows[i].Field(col)
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

package sdmx

import (
	"encoding/csv"
	"fmt"
	"io"
)

// parseTable decodes an SDMX-CSV response body into a RawTable, preserving
// header order. A body with only a header row (or nothing at all) parses to
// an empty table.
func parseTable(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // upstream occasionally pads trailing columns

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return &RawTable{}, nil
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	table := &RawTable{Columns: header}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		row := make(RawRecord, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}

		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

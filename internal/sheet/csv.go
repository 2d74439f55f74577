package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

const csvSheetName = "Sheet1"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads comma-separated text as a single sheet. Rows may have
// differing field counts.
func ParseCSV(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidFormat)
	}

	var g grid
	for r, record := range records {
		for c, field := range record {
			g.set(r, c, inferValue(field))
		}
	}

	return g.build(csvSheetName, 1, nil)
}

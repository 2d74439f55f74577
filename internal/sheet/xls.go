package sheet

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

// parseXLS reads a legacy binary workbook. The decoder only exposes
// formatted text, so cell types are inferred from that text.
func parseXLS(data []byte) (doc *Document, err error) {
	// The BIFF decoder panics on some truncated records.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: %v", ErrInvalidFormat, r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidFormat)
	}

	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, fmt.Errorf("%w: first sheet is unreadable", ErrInvalidFormat)
	}

	var g grid
	for r := 0; r <= int(ws.MaxRow); r++ {
		row := rowAt(ws, r)
		if row == nil {
			continue
		}
		for c := row.FirstCol(); c <= row.LastCol(); c++ {
			g.set(r, c, inferValue(row.Col(c)))
		}
	}

	doc, err = g.build(ws.Name, wb.NumSheets(), nil)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", ws.Name, err)
	}
	return doc, nil
}

// rowAt returns nil for rows the sheet does not store. The decoder
// dereferences the missing row and panics on those.
func rowAt(ws *xls.WorkSheet, r int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(r)
}

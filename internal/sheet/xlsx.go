package sheet

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nconklindev/dupecheck/internal/types"

	"github.com/xuri/excelize/v2"
)

// Layouts excelize may hand back for cells stored with t="d".
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseXLSX(data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: %v", ErrInvalidFormat, r)
		}
	}()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidFormat)
	}
	sheetName := sheets[0]

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	declared := declaredRange(f, sheetName)
	height, width := len(rows), 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if declared != nil {
		height = max(height, declared.LastRow+1)
		width = max(width, declared.LastCol+1)
	}

	r := &xlsxReader{f: f, sheet: sheetName, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}
	if merges, err := f.GetMergeCells(sheetName, true); err == nil {
		r.merged = mergedRanges(merges)
	}

	var g grid
	for rowIdx := 0; rowIdx < height; rowIdx++ {
		var row []string
		if rowIdx < len(rows) {
			row = rows[rowIdx]
		}
		for colIdx := 0; colIdx < width; colIdx++ {
			raw := ""
			if colIdx < len(row) {
				raw = row[colIdx]
			}
			v, ok, err := r.cell(rowIdx, colIdx, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
			}
			if ok {
				g.set(rowIdx, colIdx, v)
			}
		}
	}

	doc, err = g.build(sheetName, len(sheets), declared)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
	}
	return doc, nil
}

// declaredRange reads the <dimension> reference of the sheet. Files
// written by some tools omit it or leave it at "A1".
func declaredRange(f *excelize.File, sheetName string) *Range {
	dim, err := f.GetSheetDimension(sheetName)
	if err != nil || dim == "" {
		return nil
	}

	parts := strings.Split(dim, ":")
	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return nil
	}
	endCol, endRow := startCol, startRow
	if len(parts) == 2 {
		if endCol, endRow, err = excelize.CellNameToCoordinates(parts[1]); err != nil {
			return nil
		}
	}

	return &Range{
		FirstRow: startRow - 1,
		LastRow:  endRow - 1,
		FirstCol: startCol - 1,
		LastCol:  endCol - 1,
	}
}

type xlsxReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	merged     []Range
	dateStyles map[int]bool
}

// date1904Offset is the number of days between the 1900 and 1904 epochs.
const date1904Offset = 1462

// cell types the cell at the zero-based row and column. GetRows reports a
// stored empty string the same way as a missing cell, so blanks are told
// apart by their type. The hidden cells of a merged range are never present.
func (r *xlsxReader) cell(row, col int, raw string) (types.Value, bool, error) {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return types.Value{}, false, err
	}
	if raw != "" {
		return r.value(name, raw), true, nil
	}
	if r.hiddenByMerge(row, col) {
		return types.Value{}, false, nil
	}

	typ, err := r.f.GetCellType(r.sheet, name)
	if err != nil {
		return types.Value{}, false, nil
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return types.String(""), true, nil
	}
	return types.Value{}, false, nil
}

func (r *xlsxReader) hiddenByMerge(row, col int) bool {
	for _, m := range r.merged {
		if row < m.FirstRow || row > m.LastRow || col < m.FirstCol || col > m.LastCol {
			continue
		}
		return row != m.FirstRow || col != m.FirstCol
	}
	return false
}

func mergedRanges(merges []excelize.MergeCell) []Range {
	var out []Range
	for _, m := range merges {
		startCol, startRow, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			continue
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			continue
		}
		out = append(out, Range{
			FirstRow: startRow - 1,
			LastRow:  endRow - 1,
			FirstCol: startCol - 1,
			LastCol:  endCol - 1,
		})
	}
	return out
}

// value types a raw cell string using the cell's type attribute and, for
// numbers, its number format.
func (r *xlsxReader) value(cell, raw string) types.Value {
	typ, err := r.f.GetCellType(r.sheet, cell)
	if err != nil {
		return types.String(raw)
	}

	switch typ {
	case excelize.CellTypeBool:
		return types.Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return types.Date(t)
			}
		}
		return types.String(raw)
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.String(raw)
		}
		if r.isDateCell(cell) {
			if r.date1904 {
				n += date1904Offset
			}
			return types.DateSerial(n)
		}
		return types.Number(n)
	default:
		return types.String(raw)
	}
}

func (r *xlsxReader) isDateCell(cell string) bool {
	styleID, err := r.f.GetCellStyle(r.sheet, cell)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := r.dateStyles[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := r.f.GetStyle(styleID); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormat(*style.CustomNumFmt)
		} else {
			isDate = isBuiltInDateFormat(style.NumFmt)
		}
	}
	r.dateStyles[styleID] = isDate
	return isDate
}

func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormat reports whether a custom number format renders a date or
// time. Quoted literals, escaped characters and bracketed sections such as
// locale or colour tags are ignored.
func isDateFormat(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			inBracket = ch != ']'
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		default:
			b.WriteByte(ch)
		}
	}

	stripped := strings.ToLower(b.String())
	if stripped == "general" {
		return false
	}
	return strings.ContainsAny(stripped, "ymdhs")
}

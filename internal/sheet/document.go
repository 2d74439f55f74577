// Package sheet turns spreadsheet bytes into an immutable grid of typed
// cells with a header row.
//
// Only the first sheet of a workbook is read. Supported containers are the
// zipped-XML workbook (.xlsx, .xlsm) and the legacy binary workbook (.xls);
// CSV text can be read through ParseCSV or ParseFile.
package sheet

import (
	"errors"

	"github.com/nconklindev/dupecheck/internal/types"
)

var (
	// ErrInvalidFormat is returned when the bytes do not decode into a
	// sheet with at least one cell.
	ErrInvalidFormat = errors.New("invalid spreadsheet format")

	// ErrNoHeaders is returned when the first row has no usable labels.
	ErrNoHeaders = errors.New("no headers found in the first row")

	// ErrUnsupportedType is returned by ParseFile for unknown extensions.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Range is the inclusive, zero-based cell range a sheet declares.
type Range struct {
	FirstRow int
	LastRow  int
	FirstCol int
	LastCol  int
}

// DataRows is the number of rows below the header row.
func (r Range) DataRows() int {
	return r.LastRow - r.FirstRow
}

func (r Range) union(o Range) Range {
	return Range{
		FirstRow: min(r.FirstRow, o.FirstRow),
		LastRow:  max(r.LastRow, o.LastRow),
		FirstCol: min(r.FirstCol, o.FirstCol),
		LastCol:  max(r.LastCol, o.LastCol),
	}
}

// Document is a parsed sheet. It is never modified after Parse returns;
// loading another file produces a new Document.
type Document struct {
	sheet      string
	sheetCount int
	rng        Range
	headers    []string
	headerCols []int
	rows       [][]types.Value
}

// SheetName is the name of the sheet the document was read from.
func (d *Document) SheetName() string { return d.sheet }

// SheetCount is the number of sheets in the source workbook. Only the
// first one is read.
func (d *Document) SheetCount() int { return d.sheetCount }

func (d *Document) Range() Range { return d.rng }

// Headers returns the labels of the header row, skipping cells that are
// blank, zero or false.
func (d *Document) Headers() []string {
	out := make([]string, len(d.headers))
	copy(out, d.headers)
	return out
}

// HeaderColumns returns the absolute column of each label in Headers.
func (d *Document) HeaderColumns() []int {
	out := make([]int, len(d.headerCols))
	copy(out, d.headerCols)
	return out
}

// Cell returns the value at the absolute zero-based row and column, and
// false when the cell is absent.
func (d *Document) Cell(row, col int) (types.Value, bool) {
	if row < 0 || row >= len(d.rows) || col < 0 {
		return types.Value{}, false
	}
	cells := d.rows[row]
	if col >= len(cells) || cells[col].IsEmpty() {
		return types.Value{}, false
	}
	return cells[col], true
}

// grid collects decoded cells before a Document is assembled.
type grid struct {
	rows     [][]types.Value
	observed Range
	seen     bool
}

func (g *grid) set(row, col int, v types.Value) {
	if v.IsEmpty() || row < 0 || col < 0 {
		return
	}
	for len(g.rows) <= row {
		g.rows = append(g.rows, nil)
	}
	cells := g.rows[row]
	for len(cells) <= col {
		cells = append(cells, types.Value{})
	}
	cells[col] = v
	g.rows[row] = cells

	cell := Range{FirstRow: row, LastRow: row, FirstCol: col, LastCol: col}
	if !g.seen {
		g.observed = cell
		g.seen = true
		return
	}
	g.observed = g.observed.union(cell)
}

// build assembles the Document. declared is the range stored in the file,
// if any; the final range covers both it and every decoded cell.
func (g *grid) build(sheetName string, sheetCount int, declared *Range) (*Document, error) {
	if !g.seen {
		return nil, ErrInvalidFormat
	}
	rng := g.observed
	if declared != nil {
		rng = rng.union(*declared)
	}

	doc := &Document{
		sheet:      sheetName,
		sheetCount: sheetCount,
		rng:        rng,
		rows:       g.rows,
	}

	for c := rng.FirstCol; c <= rng.LastCol; c++ {
		v, ok := doc.Cell(rng.FirstRow, c)
		if ok && v.Truthy() {
			doc.headers = append(doc.headers, v.String())
			doc.headerCols = append(doc.headerCols, c)
		}
	}
	if len(doc.headers) == 0 {
		return nil, ErrNoHeaders
	}

	return doc, nil
}

package sheet

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nconklindev/dupecheck/internal/types"
)

var (
	zipMagic = []byte("PK\x03\x04")
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Parse decodes an in-memory workbook. The container is detected from the
// leading bytes, not from a file name.
func Parse(data []byte) (*Document, error) {
	var (
		doc *Document
		err error
	)

	switch {
	case bytes.HasPrefix(data, zipMagic):
		doc, err = parseXLSX(data)
	case bytes.HasPrefix(data, cfbMagic):
		doc, err = parseXLS(data)
	default:
		return nil, fmt.Errorf("%w: unrecognised container", ErrInvalidFormat)
	}
	if err != nil {
		return nil, err
	}

	if doc.sheetCount > 1 {
		slog.Debug("ignoring additional sheets", "sheet", doc.sheet, "sheets", doc.sheetCount)
	}
	return doc, nil
}

// ParseFile reads a file from disk and parses it according to its
// extension.
func ParseFile(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".xlsx", ".xlsm", ".xls":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return Parse(data)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ParseCSV(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
}

// inferValue types a cell that is only available as text.
func inferValue(s string) types.Value {
	if s == "" {
		return types.Value{}
	}

	trimmed := strings.TrimSpace(s)
	switch strings.ToUpper(trimmed) {
	case "TRUE":
		return types.Bool(true)
	case "FALSE":
		return types.Bool(false)
	}

	if n, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return types.Number(n)
	}
	return types.String(s)
}

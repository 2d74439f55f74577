package dupes

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Export writes the duplicate entries to path as a two-column table headed
// by column and "Count". The format follows the extension: .xlsx or .csv.
func Export(path string, res Result, column string) error {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".xlsx":
		return exportXLSX(path, res, column)
	case ".csv":
		return exportCSV(path, res, column)
	default:
		return fmt.Errorf("unsupported export type: %s", ext)
	}
}

// ExportPath derives the export file name for an input file, for example
// "people.xlsx" -> "people_duplicates.csv" with format "csv".
func ExportPath(inputFile, format string) string {
	ext := filepath.Ext(inputFile)
	base := strings.TrimSuffix(inputFile, ext)
	return base + "_duplicates." + strings.TrimPrefix(strings.ToLower(format), ".")
}

func exportXLSX(path string, res Result, column string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if err := f.SetSheetRow(sheetName, "A1", &[]any{column, "Count"}); err != nil {
		return err
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return err
	}

	for i, e := range res.Entries {
		valueCell, _ := excelize.CoordinatesToCellName(1, i+2)
		countCell, _ := excelize.CoordinatesToCellName(2, i+2)

		if err := f.SetCellValue(sheetName, valueCell, e.Value.Interface()); err != nil {
			return err
		}
		if _, isDate := e.Value.Time(); isDate {
			if err := f.SetCellStyle(sheetName, valueCell, valueCell, dateStyle); err != nil {
				return err
			}
		}
		if err := f.SetCellValue(sheetName, countCell, e.Count); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func exportCSV(path string, res Result, column string) error {
	outFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer outFile.Close()

	writer := csv.NewWriter(outFile)

	records := [][]string{{column, "Count"}}
	for _, e := range res.Entries {
		records = append(records, []string{e.Value.String(), strconv.Itoa(e.Count)})
	}

	// WriteAll flushes and reports any write error.
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return outFile.Close()
}

// Package dupes finds values that occur more than once in one column of a
// sheet.
//
// A check is two steps: Extract walks the column and reports progress,
// then Count ranks the repeated values. Start runs both on a goroutine and
// delivers progress and the result over channels.
package dupes

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/nconklindev/dupecheck/internal/sheet"
	"github.com/nconklindev/dupecheck/internal/types"
)

// ReportEvery is the number of rows processed between progress reports.
const ReportEvery = 100

// ErrInvalidColumn is matched by every *ColumnError.
var ErrInvalidColumn = errors.New("invalid column")

// ColumnError reports a column index outside the header range.
type ColumnError struct {
	Column  int
	Headers int
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("invalid column %d: document has %d headers", e.Column, e.Headers)
}

func (e *ColumnError) Is(target error) bool { return target == ErrInvalidColumn }

// Extract returns the present cell values of column below the header row,
// in row order. column is an absolute zero-based column index and must be
// less than the number of headers.
//
// Progress is reported once before the first row, after every ReportEvery
// rows and after the last row. At each report the goroutine yields and ctx
// is checked; a cancelled context stops extraction with ctx.Err().
func Extract(ctx context.Context, doc *sheet.Document, column int, r Reporter) ([]types.Value, error) {
	headers := len(doc.Headers())
	if column < 0 || column >= headers {
		return nil, &ColumnError{Column: column, Headers: headers}
	}
	if r == nil {
		r = Discard
	}

	rng := doc.Range()
	total := rng.DataRows()
	values := make([]types.Value, 0, total)

	r.Report(Progress{Processed: 0, Total: total})

	processed := 0
	for row := rng.FirstRow + 1; row <= rng.LastRow; row++ {
		if v, ok := doc.Cell(row, column); ok {
			values = append(values, v)
		}

		processed++
		if processed%ReportEvery == 0 || processed == total {
			r.Report(Progress{Processed: processed, Total: total})
			runtime.Gosched()
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}

	return values, nil
}

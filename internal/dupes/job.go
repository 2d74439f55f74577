package dupes

import (
	"context"
	"log/slog"
	"time"

	"github.com/nconklindev/dupecheck/internal/sheet"
)

// progressBuffer bounds how many reports can queue up before new ones are
// dropped.
const progressBuffer = 100

// Check extracts column from doc and counts its duplicates.
func Check(ctx context.Context, doc *sheet.Document, column int, r Reporter) (Result, error) {
	values, err := Extract(ctx, doc, column, r)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Entries: Count(values),
		Values:  len(values),
		Rows:    doc.Range().DataRows(),
	}, nil
}

// Outcome is what a Job delivers when it stops.
type Outcome struct {
	Result Result
	Err    error
}

// Job is a check running on its own goroutine.
type Job struct {
	progress chan Progress
	done     chan Outcome
	cancel   context.CancelFunc
}

// Start runs Check in the background. The progress channel is closed
// before the single outcome is sent on Done.
func Start(ctx context.Context, doc *sheet.Document, column int) *Job {
	ctx, cancel := context.WithCancel(ctx)
	j := &Job{
		progress: make(chan Progress, progressBuffer),
		done:     make(chan Outcome, 1),
		cancel:   cancel,
	}

	go func() {
		defer cancel()

		start := time.Now()
		res, err := Check(ctx, doc, column, ChannelReporter(j.progress))
		close(j.progress)

		if err != nil {
			slog.Debug("duplicate check stopped", "column", column, "error", err)
		} else {
			slog.Info("duplicate check finished",
				"column", column,
				"rows", res.Rows,
				"values", res.Values,
				"duplicates", len(res.Entries),
				"elapsed", time.Since(start))
		}

		j.done <- Outcome{Result: res, Err: err}
		close(j.done)
	}()

	return j
}

// Progress delivers reports while the job runs.
func (j *Job) Progress() <-chan Progress { return j.progress }

// Done delivers exactly one Outcome.
func (j *Job) Done() <-chan Outcome { return j.done }

// Cancel stops the job at its next progress checkpoint.
func (j *Job) Cancel() { j.cancel() }

// Wait blocks until the job finishes, discarding any unread progress.
func (j *Job) Wait() Outcome {
	for range j.progress {
	}
	return <-j.done
}

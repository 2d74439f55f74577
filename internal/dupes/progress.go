package dupes

import "math"

// Progress is a (processed, total) row count emitted during extraction.
type Progress struct {
	Processed int
	Total     int
}

// Percent rounds Processed/Total to a whole percentage. An empty column is
// reported as complete.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 100
	}
	return int(math.Round(float64(p.Processed) / float64(p.Total) * 100))
}

// Fraction is the completed share in [0, 1], for progress bars.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 1
	}
	return min(float64(p.Processed)/float64(p.Total), 1)
}

// Reporter receives progress during extraction. Report must not block for
// long; the extractor ignores what happens to the event.
type Reporter interface {
	Report(Progress)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Progress)

func (f ReporterFunc) Report(p Progress) { f(p) }

type discard struct{}

func (discard) Report(Progress) {}

// Discard drops every report.
var Discard Reporter = discard{}

// ChannelReporter forwards reports to a channel without blocking. Reports
// are dropped while the channel is full.
type ChannelReporter chan<- Progress

func (c ChannelReporter) Report(p Progress) {
	select {
	case c <- p:
	default:
	}
}

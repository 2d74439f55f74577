package dupes

import (
	"sort"

	"github.com/nconklindev/dupecheck/internal/types"
)

// Entry is a value and the number of times it occurs. Count is at least 2.
type Entry struct {
	Value types.Value
	Count int
}

// Count returns the values that occur more than once, most frequent first.
// Values with equal counts keep the order in which they were first seen.
func Count(values []types.Value) []Entry {
	counts := make(map[types.Value]int, len(values))
	var order []types.Value

	for _, v := range values {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	entries := []Entry{}
	for _, v := range order {
		if n := counts[v]; n > 1 {
			entries = append(entries, Entry{Value: v, Count: n})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	return entries
}

// Result is the outcome of a successful check.
type Result struct {
	Entries []Entry
	// Values is the number of non-empty cells examined.
	Values int
	// Rows is the number of data rows walked.
	Rows int
}

// Empty reports whether no value occurred more than once.
func (r Result) Empty() bool { return len(r.Entries) == 0 }

// Occurrences is the sum of counts over all duplicate entries.
func (r Result) Occurrences() int {
	total := 0
	for _, e := range r.Entries {
		total += e.Count
	}
	return total
}

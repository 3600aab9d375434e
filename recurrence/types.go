package recurrence

import (
	"github.com/cyp0633/libcaldate/date"
)

// Occurrence is a single date produced by expanding a schedule
type Occurrence struct {
	Date  date.SimpleDate // The date this occurrence falls on
	Index int             // 0 for the schedule start, then 1, 2, ... per tick
}

// ExpansionResult is the outcome of one expansion, as stored in the cache
type ExpansionResult struct {
	Occurrences []Occurrence
	Truncated   bool // True if MaxExpansionOccurrences or MaxIterations cut the expansion short
}

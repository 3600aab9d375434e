package storage

import (
	"slices"
	"strings"

	"github.com/cyp0633/libcaldate/date"
	"github.com/cyp0633/libcaldate/recurrence"
	"github.com/samber/mo"
)

// EndDate is the last day the schedule covers: the final occurrence plus
// the spread. None when the schedule repeats forever.
func (s *Schedule) EndDate() mo.Option[date.SimpleDate] {
	end := s.Start

	if rep, ok := s.Repetition.Get(); ok {
		if rep.End.Kind == recurrence.EndNever {
			return mo.None[date.SimpleDate]()
		}
		end = rep.Last(s.Start)
	}

	if spread, ok := s.Spread.Get(); ok {
		end = end.Add(spread)
	}
	return mo.Some(end)
}

// CompareByEnd orders schedules by EndDate, open-ended ones last, with
// Start breaking ties.
func CompareByEnd(a, b *Schedule) int {
	aEnd, aOK := a.EndDate().Get()
	bEnd, bOK := b.EndDate().Get()

	switch {
	case !aOK && !bOK:
	case !aOK:
		return 1
	case !bOK:
		return -1
	default:
		if c := aEnd.Compare(bEnd); c != 0 {
			return c
		}
	}
	return a.Start.Compare(b.Start)
}

// Validate checks the fields a backend relies on
func (s *Schedule) Validate() error {
	if !s.Start.IsValid() {
		return &Error{Type: ErrInvalidInput, Message: "start " + s.Start.String() + " is not a date"}
	}
	if spread, ok := s.Spread.Get(); ok && spread.N < 0 {
		return &Error{Type: ErrInvalidInput, Message: "spread must not be negative"}
	}
	if rep, ok := s.Repetition.Get(); ok {
		if err := rep.Validate(); err != nil {
			return &Error{Type: ErrInvalidInput, Message: "invalid repetition", Err: err}
		}
	}
	return nil
}

// HasTag reports whether the schedule carries tag
func (s *Schedule) HasTag(tag string) bool {
	return slices.Contains(s.Tags, tag)
}

// Matches applies filter to the schedule. Time ranges are checked with
// engine, counting an occurrence as present from its date through its spread.
func (s *Schedule) Matches(engine *recurrence.Engine, filter *Filter) (bool, error) {
	if filter == nil {
		return true, nil
	}
	if filter.SummaryContains != "" &&
		!strings.Contains(strings.ToLower(s.Summary), strings.ToLower(filter.SummaryContains)) {
		return false, nil
	}
	if filter.Tag != "" && !s.HasTag(filter.Tag) {
		return false, nil
	}
	if filter.TimeRange == nil {
		return true, nil
	}

	rangeStart := filter.TimeRange.Start
	if spread, ok := s.Spread.Get(); ok {
		rangeStart = rangeStart.Sub(spread)
	}
	return engine.HasOccurrenceInRange(s.Repetition, s.Start, rangeStart, filter.TimeRange.End)
}

// Clone returns a copy that shares no slices with s
func (s *Schedule) Clone() *Schedule {
	c := *s
	c.Tags = slices.Clone(s.Tags)
	if rep, ok := s.Repetition.Get(); ok {
		c.Repetition = mo.Some(rep.Clone())
	}
	return &c
}

package recurrence

import (
	"fmt"
	"iter"
	"slices"

	"github.com/cyp0633/libcaldate/date"
	"github.com/samber/mo"
)

// EndKind selects how a Repetition terminates.
type EndKind int

const (
	EndNever EndKind = iota
	EndDate
	EndCount
)

// End is the termination policy of a Repetition. Date is only meaningful for
// EndDate and Count only for EndCount.
type End struct {
	Kind  EndKind
	Date  date.SimpleDate
	Count int
}

// Never returns an End that never terminates.
func Never() End { return End{Kind: EndNever} }

// Until returns an End that allows occurrences up to and including d.
func Until(d date.SimpleDate) End { return End{Kind: EndDate, Date: d} }

// After returns an End that allows c applications of the delta.
func After(c int) End { return End{Kind: EndCount, Count: c} }

// UntilDate returns the end date for EndDate policies.
func (e End) UntilDate() mo.Option[date.SimpleDate] {
	if e.Kind != EndDate {
		return mo.None[date.SimpleDate]()
	}
	return mo.Some(e.Date)
}

// Occurrences returns the repeat count for EndCount policies.
func (e End) Occurrences() mo.Option[int] {
	if e.Kind != EndCount {
		return mo.None[int]()
	}
	return mo.Some(e.Count)
}

func (e End) Validate() error {
	switch e.Kind {
	case EndNever:
		return nil
	case EndDate:
		if !e.Date.IsValid() {
			return fmt.Errorf("%w: end date %s does not exist", ErrInvalidDelta, e.Date)
		}
		return nil
	case EndCount:
		if e.Count < 0 {
			return fmt.Errorf("%w: negative occurrence count %d", ErrInvalidDelta, e.Count)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown end kind %d", ErrInvalidDelta, int(e.Kind))
	}
}

func (e End) String() string {
	switch e.Kind {
	case EndDate:
		return fmt.Sprintf("ending on %s", e.Date)
	case EndCount:
		if e.Count == 1 {
			return "ending after 1 occurrence"
		}
		return fmt.Sprintf("ending after %d occurrences", e.Count)
	default:
		return "never ending"
	}
}

// Repetition is a recurring schedule: how it advances and when it stops.
type Repetition struct {
	Delta Delta
	End   End
}

// Next advances from by a single tick, ignoring the end policy.
func (r Repetition) Next(from date.SimpleDate) date.SimpleDate {
	return r.Delta.Next(from)
}

// Last returns the final occurrence of the schedule that begins at start.
// A schedule that never ends reports date.Forever. A count applies the delta
// that many times. An end date keeps applying the delta while the result
// does not pass it, so an occurrence on the end date itself is included.
func (r Repetition) Last(start date.SimpleDate) date.SimpleDate {
	switch r.End.Kind {
	case EndNever:
		return date.Forever

	case EndCount:
		cur := start
		for range r.End.Count {
			next := r.Delta.Next(cur)
			if !next.After(cur) {
				break
			}
			cur = next
		}
		return cur

	case EndDate:
		cur := start
		for cur.Before(r.End.Date) {
			next := r.Delta.Next(cur)
			if next.After(r.End.Date) || !next.After(cur) {
				break
			}
			cur = next
		}
		return cur

	default:
		return start
	}
}

// All yields start followed by every later occurrence the end policy
// allows. For EndNever the sequence is unbounded and the consumer must stop.
// Iteration also stops if the delta fails to move forward.
func (r Repetition) All(start date.SimpleDate) iter.Seq[date.SimpleDate] {
	return func(yield func(date.SimpleDate) bool) {
		if !yield(start) {
			return
		}

		cur := start
		for n := 0; r.End.Kind != EndCount || n < r.End.Count; n++ {
			next := r.Delta.Next(cur)
			if !next.After(cur) {
				return
			}
			if r.End.Kind == EndDate && next.After(r.End.Date) {
				return
			}
			if !yield(next) {
				return
			}
			cur = next
		}
	}
}

// Clone returns a copy whose delta shares no slices with r
func (r Repetition) Clone() Repetition {
	switch d := r.Delta.(type) {
	case WeekDelta:
		d.On = slices.Clone(d.On)
		r.Delta = d
	case MonthDateDelta:
		d.Days = slices.Clone(d.Days)
		r.Delta = d
	}
	return r
}

func (r Repetition) Validate() error {
	if r.Delta == nil {
		return fmt.Errorf("%w: missing delta", ErrInvalidDelta)
	}
	if err := r.Delta.Validate(); err != nil {
		return err
	}
	return r.End.Validate()
}

func (r Repetition) String() string {
	if r.Delta == nil {
		return r.End.String()
	}
	if r.End.Kind == EndNever {
		return r.Delta.String()
	}
	return r.Delta.String() + " " + r.End.String()
}

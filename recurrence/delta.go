package recurrence

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cyp0633/libcaldate/date"
)

// Delta describes one tick of a recurring schedule. The set of
// implementations is closed: DayDelta, WeekDelta, MonthDateDelta,
// MonthWeekDelta and YearDelta.
type Delta interface {
	// Next returns the occurrence that follows from.
	Next(from date.SimpleDate) date.SimpleDate
	Validate() error
	String() string

	isDelta()
}

// DayDelta repeats every Nth day.
type DayDelta struct {
	Nth int
}

// WeekDelta repeats every Nth week. Only the last weekday in On anchors the
// schedule: Next moves forward to that weekday and then adds Nth weeks.
type WeekDelta struct {
	Nth int
	On  []date.Weekday
}

// MonthDateDelta repeats every Nth month on a day of the month. Days may
// hold several values; the smallest decides whether the current month still
// counts and the largest is the day landed on, clamped to the month length.
type MonthDateDelta struct {
	Nth  int
	Days []int
}

// MonthWeekDelta repeats every Nth month on the WeekID-th (0 = first,
// 4 = fifth) occurrence of Day.
type MonthWeekDelta struct {
	Nth    int
	WeekID int
	Day    date.Weekday
}

// YearDelta repeats every Nth year. Feb 29 clamps to Feb 28.
type YearDelta struct {
	Nth int
}

func (DayDelta) isDelta()       {}
func (WeekDelta) isDelta()      {}
func (MonthDateDelta) isDelta() {}
func (MonthWeekDelta) isDelta() {}
func (YearDelta) isDelta()      {}

func (d DayDelta) Next(from date.SimpleDate) date.SimpleDate {
	return from.Add(date.Days(d.Nth))
}

func (d DayDelta) Validate() error {
	return validateNth("day", d.Nth)
}

func (d DayDelta) String() string {
	if d.Nth == 1 {
		return "day"
	}
	return fmt.Sprintf("%d days", d.Nth)
}

// Anchor is the weekday Next moves to. An empty On anchors to the weekday of
// whatever date is being advanced.
func (d WeekDelta) Anchor(from date.SimpleDate) date.Weekday {
	if len(d.On) == 0 {
		return from.Weekday()
	}
	return d.On[len(d.On)-1]
}

func (d WeekDelta) Next(from date.SimpleDate) date.SimpleDate {
	ahead := mod7(int(d.Anchor(from)) - int(from.Weekday()))
	return from.Add(date.Days(ahead)).Add(date.Weeks(d.Nth))
}

func (d WeekDelta) Validate() error {
	if err := validateNth("week", d.Nth); err != nil {
		return err
	}
	if len(d.On) == 0 {
		return fmt.Errorf("%w: weekly repetition needs at least one weekday", ErrInvalidDelta)
	}
	for _, w := range d.On {
		if !w.Valid() {
			return fmt.Errorf("%w: weekday %d out of range", ErrInvalidDelta, int(w))
		}
	}
	return nil
}

func (d WeekDelta) String() string {
	var b strings.Builder
	if d.Nth == 1 {
		b.WriteString("week on ")
	} else {
		fmt.Fprintf(&b, "%d weeks on ", d.Nth)
	}
	for i, w := range d.On {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(w.String())
	}
	return b.String()
}

func (d MonthDateDelta) bounds(from date.SimpleDate) (lo, hi int) {
	if len(d.Days) == 0 {
		return from.Day, from.Day
	}
	return slices.Min(d.Days), slices.Max(d.Days)
}

func (d MonthDateDelta) Next(from date.SimpleDate) date.SimpleDate {
	lo, hi := d.bounds(from)

	step := d.Nth
	if from.Day < lo {
		step--
	}
	next := landOn(from.Add(date.Months(step)), hi)

	// Staying in the current month can land on from itself when the month
	// is too short to reach lo, e.g. Feb 29 with Days [31].
	if step < d.Nth && !next.After(from) {
		next = landOn(from.Add(date.Months(d.Nth)), hi)
	}
	return next
}

func landOn(month date.SimpleDate, day int) date.SimpleDate {
	return date.FromYMD(month.Year, month.Month, min(day, date.DaysInMonth(month.Year, month.Month)))
}

func (d MonthDateDelta) Validate() error {
	if err := validateNth("month", d.Nth); err != nil {
		return err
	}
	if len(d.Days) == 0 {
		return fmt.Errorf("%w: monthly repetition needs at least one day", ErrInvalidDelta)
	}
	for _, day := range d.Days {
		if day < 1 || day > 31 {
			return fmt.Errorf("%w: day of month %d out of range", ErrInvalidDelta, day)
		}
	}
	return nil
}

func (d MonthDateDelta) String() string {
	var b strings.Builder
	if d.Nth == 1 {
		b.WriteString("month on the ")
	} else {
		fmt.Fprintf(&b, "%d months on the ", d.Nth)
	}
	for i, day := range d.Days {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d%s", day, daySuffix(day))
	}
	return b.String()
}

func (d MonthWeekDelta) Next(from date.SimpleDate) date.SimpleDate {
	current := nthWeekday(from.Year, from.Month, d.Day, d.WeekID)

	step := d.Nth
	if from.Day < current.Day {
		step--
	}
	target := date.FromYMD(from.Year, from.Month, 1).Add(date.Months(step))
	return nthWeekday(target.Year, target.Month, d.Day, d.WeekID)
}

// nthWeekday finds the weekID-th occurrence of day counting from the first of
// the month. A fifth occurrence that the month does not have spills into the
// following month.
func nthWeekday(year, month int, day date.Weekday, weekID int) date.SimpleDate {
	first := date.FromYMD(year, month, 1)
	offset := mod7(int(day) - int(first.Weekday()))
	return first.Add(date.Days(offset + 7*weekID))
}

func (d MonthWeekDelta) Validate() error {
	if err := validateNth("month", d.Nth); err != nil {
		return err
	}
	if d.WeekID < 0 || d.WeekID >= len(weekOrdinals) {
		return fmt.Errorf("%w: week of month %d out of range", ErrInvalidDelta, d.WeekID)
	}
	if !d.Day.Valid() {
		return fmt.Errorf("%w: weekday %d out of range", ErrInvalidDelta, int(d.Day))
	}
	return nil
}

// String always spells out the count, "1 month on the first Monday"
// included.
func (d MonthWeekDelta) String() string {
	unit := "months"
	if d.Nth == 1 {
		unit = "month"
	}
	return fmt.Sprintf("%d %s on the %s %s", d.Nth, unit, weekOrdinal(d.WeekID), d.Day)
}

func (d YearDelta) Next(from date.SimpleDate) date.SimpleDate {
	return from.Add(date.Years(d.Nth))
}

func (d YearDelta) Validate() error {
	return validateNth("year", d.Nth)
}

func (d YearDelta) String() string {
	if d.Nth == 1 {
		return "year"
	}
	return fmt.Sprintf("%d years", d.Nth)
}

var weekOrdinals = [...]string{"first", "second", "third", "fourth", "fifth"}

func weekOrdinal(id int) string {
	if id < 0 || id >= len(weekOrdinals) {
		return fmt.Sprintf("#%d", id+1)
	}
	return weekOrdinals[id]
}

func daySuffix(day int) string {
	switch day {
	case 1, 21, 31:
		return "st"
	case 2, 22:
		return "nd"
	case 3, 23:
		return "rd"
	default:
		return "th"
	}
}

func validateNth(unit string, nth int) error {
	if nth < 1 {
		return fmt.Errorf("%w: %s interval must be at least 1, got %d", ErrInvalidDelta, unit, nth)
	}
	return nil
}

func mod7(n int) int {
	return ((n % 7) + 7) % 7
}

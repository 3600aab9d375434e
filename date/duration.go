package date

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Unit is the calendar unit a Duration counts.
type Unit int

const (
	Day Unit = iota
	Week
	Month
	Year
)

func (u Unit) String() string {
	switch u {
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	case Year:
		return "year"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Duration is a calendar-relative offset. One month is not a fixed number of
// days: adding it keeps the day of month and clamps to the target month's
// length.
type Duration struct {
	Unit Unit
	N    int
}

func Days(n int) Duration   { return Duration{Unit: Day, N: n} }
func Weeks(n int) Duration  { return Duration{Unit: Week, N: n} }
func Months(n int) Duration { return Duration{Unit: Month, N: n} }
func Years(n int) Duration  { return Duration{Unit: Year, N: n} }

func (dur Duration) String() string {
	if dur.N == 1 || dur.N == -1 {
		return fmt.Sprintf("%d %s", dur.N, dur.Unit)
	}
	return fmt.Sprintf("%d %ss", dur.N, dur.Unit)
}

var durationPattern = regexp.MustCompile(`^(-?\d+)\s*(day|week|month|year)s?$`)

// ParseDuration reads the form produced by Duration.String, e.g. "3 weeks".
func ParseDuration(s string) (Duration, error) {
	m := durationPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return Duration{}, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Duration{}, fmt.Errorf("%w: %q: %v", ErrInvalidDuration, s, err)
	}

	var unit Unit
	switch m[2] {
	case "day":
		unit = Day
	case "week":
		unit = Week
	case "month":
		unit = Month
	case "year":
		unit = Year
	}
	return Duration{Unit: unit, N: n}, nil
}

// Add returns d shifted forward by dur. The result is always a valid date:
// month and year shifts clamp the day to the target month's length.
func (d SimpleDate) Add(dur Duration) SimpleDate {
	if dur.N < 0 {
		return d.Sub(Duration{Unit: dur.Unit, N: -dur.N})
	}

	switch dur.Unit {
	case Day:
		return fromOrdinal(toOrdinal(d) + dur.N)
	case Week:
		return fromOrdinal(toOrdinal(d) + 7*dur.N)
	case Month:
		return d.addMonths(dur.N)
	case Year:
		return clamp(d.Year+dur.N, d.Month, d.Day)
	default:
		return d
	}
}

// Sub returns d shifted back by dur, with the same clamping as Add.
func (d SimpleDate) Sub(dur Duration) SimpleDate {
	if dur.N < 0 {
		return d.Add(Duration{Unit: dur.Unit, N: -dur.N})
	}

	switch dur.Unit {
	case Day:
		return fromOrdinal(toOrdinal(d) - dur.N)
	case Week:
		return fromOrdinal(toOrdinal(d) - 7*dur.N)
	case Month:
		total := d.Year*12 + d.Month - 1 - dur.N
		return clamp(floorDiv(total, 12), floorMod(total, 12)+1, d.Day)
	case Year:
		return clamp(d.Year-dur.N, d.Month, d.Day)
	default:
		return d
	}
}

// addMonths works on 1-based months: a remainder of zero means December of
// the previous year.
func (d SimpleDate) addMonths(n int) SimpleDate {
	monthAbs := d.Month + n
	extraYears := monthAbs / 12
	rel := monthAbs % 12
	if rel == 0 {
		rel = 12
		extraYears--
	}
	return clamp(d.Year+extraYears, rel, d.Day)
}

func clamp(year, month, day int) SimpleDate {
	return FromYMD(year, month, min(day, DaysInMonth(year, month)))
}

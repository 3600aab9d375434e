// Package date implements naive calendar dates and calendar-relative
// arithmetic on them. There is no clock and no timezone: a SimpleDate is a
// year/month/day triple on the proleptic Gregorian calendar.
package date

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SimpleDate is a calendar date. Values are immutable; every operation
// returns a new SimpleDate.
type SimpleDate struct {
	Year  int
	Month int // 1-12
	Day   int // 1-31
}

// Forever is the sentinel used for schedules that never end.
var Forever = SimpleDate{Year: 9999, Month: 12, Day: 31}

var isoPattern = regexp.MustCompile(`^(\d+)-(\d+)-(\d+)$`)

// FromYMD builds a SimpleDate without validation. Callers must check the
// triple against DaysInMonth first, or use New.
func FromYMD(year, month, day int) SimpleDate {
	return SimpleDate{
		Year:  year,
		Month: month,
		Day:   day,
	}
}

// New builds a validated SimpleDate.
func New(year, month, day int) (SimpleDate, error) {
	if month < 1 || month > 12 {
		return SimpleDate{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	if day < 1 || day > DaysInMonth(year, month) {
		return SimpleDate{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	return FromYMD(year, month, day), nil
}

// Parse reads a date in yyyy-mm-dd form and validates it.
func Parse(s string) (SimpleDate, error) {
	m := isoPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return SimpleDate{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	var parts [3]int
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return SimpleDate{}, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, s, err)
		}
		parts[i] = n
	}

	return New(parts[0], parts[1], parts[2])
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level values.
func MustParse(s string) SimpleDate {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime returns the calendar date of t in t's own location.
func FromTime(t time.Time) SimpleDate {
	y, m, d := t.Date()
	return FromYMD(y, int(m), d)
}

// Time returns midnight UTC on d.
func (d SimpleDate) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// IsValid reports whether the month is in range and the day exists in it.
func (d SimpleDate) IsValid() bool {
	return d.Month >= 1 && d.Month <= 12 && d.Day >= 1 && d.Day <= DaysInMonth(d.Year, d.Month)
}

// Compare orders dates by year, then month, then day. It returns -1, 0 or +1.
func (d SimpleDate) Compare(other SimpleDate) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(d.Month, other.Month)
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func (d SimpleDate) Before(other SimpleDate) bool { return d.Compare(other) < 0 }

func (d SimpleDate) After(other SimpleDate) bool { return d.Compare(other) > 0 }

// Weekday is shorthand for WeekdayOf(d).
func (d SimpleDate) Weekday() Weekday {
	return WeekdayOf(d)
}

func (d SimpleDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d SimpleDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The date is validated.
func (d *SimpleDate) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysInMonth returns the length of month in year. It panics when month is
// outside [1,12].
func DaysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	default:
		panic(fmt.Sprintf("date: month %d out of range", month))
	}
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	switch {
	case year%400 == 0:
		return true
	case year%100 == 0:
		return false
	default:
		return year%4 == 0
	}
}

// DaysBetween returns the signed number of days from a to b.
func DaysBetween(a, b SimpleDate) int {
	return toOrdinal(b) - toOrdinal(a)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

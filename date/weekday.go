package date

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a day of the week. The order is Monday first, unlike
// time.Weekday.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// cumulative days before each month in a common year
var monthOffset = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// Valid reports whether w is one of the seven named days.
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// TimeWeekday converts w to the standard library's Sunday-first weekday.
func (w Weekday) TimeWeekday() time.Weekday {
	return time.Weekday((int(w) + 1) % 7)
}

// FromTimeWeekday converts a standard library weekday.
func FromTimeWeekday(w time.Weekday) Weekday {
	return Weekday((int(w) + 6) % 7)
}

// ParseWeekday accepts a full English day name or any prefix of at least
// three letters, case-insensitively.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) >= 3 {
		for i, name := range weekdayNames {
			if strings.HasPrefix(strings.ToLower(name), s) {
				return Weekday(i), nil
			}
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// WeekdayOf computes the day of the week without stepping through the
// calendar. The count starts from 1700-01-01, a Friday, and adds whole years,
// leap days and the month/day offset within the year. Floor division keeps
// the result right for years before 1700.
func WeekdayOf(d SimpleDate) Weekday {
	beforeMarch := 0
	if d.Month <= 2 {
		beforeMarch = 1
	}
	aux := d.Year - 1700 - beforeMarch

	days := int(Friday) +
		(aux+beforeMarch)*365 +
		floorDiv(aux, 4) - floorDiv(aux, 100) + floorDiv(aux+100, 400) +
		monthOffset[d.Month-1] + d.Day - 1

	return Weekday(floorMod(days, 7))
}

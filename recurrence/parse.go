package recurrence

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cyp0633/libcaldate/date"
	"github.com/samber/mo"
)

type deltaResolver func(s string, start date.SimpleDate) mo.Result[Delta]

// deltaFamilies is checked in order; the first family whose keyword appears
// in the schedule owns it. Anything else is read as a daily schedule.
var deltaFamilies = []struct {
	keywords []string
	resolve  deltaResolver
}{
	{keywords: []string{"year", "annual"}, resolve: resolveYear},
	{keywords: []string{"month", "quarter"}, resolve: resolveMonth},
	{keywords: []string{"week", "fortnight"}, resolve: resolveWeek},
}

var (
	dayCountPattern   = regexp.MustCompile(`^(?:every\s+)?(\d+)\s+days?$`)
	weekCountPattern  = regexp.MustCompile(`^(?:every\s+)?(\d+)\s+weeks?$`)
	monthCountPattern = regexp.MustCompile(`^(?:every\s+)?(\d+)\s+months?$`)
	yearCountPattern  = regexp.MustCompile(`^(?:every\s+)?(\d+)\s+years?$`)

	numberPattern  = regexp.MustCompile(`\d+`)
	endDatePattern = regexp.MustCompile(`(\d+)-(\d+)-(\d+)`)
)

// Words that stand for a fixed interval, per family.
var (
	dayWords   = map[string]int{"day": 1, "daily": 1, "every day": 1}
	weekWords  = map[string]int{"week": 1, "weekly": 1, "every week": 1, "fortnightly": 2, "every fortnight": 2}
	monthWords = map[string]int{"month": 1, "monthly": 1, "every month": 1, "quarterly": 3, "every quarter": 3}
	yearWords  = map[string]int{"year": 1, "yearly": 1, "annually": 1, "every year": 1}
)

var weekdayStems = [...]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

var weekIDWords = [...][2]string{
	{"first", "1st"},
	{"second", "2nd"},
	{"third", "3rd"},
	{"fourth", "4th"},
	{"fifth", "5th"},
}

// ParseDelta reads an English schedule phrase such as "every 3 weeks on mon,
// wed", "monthly", "every 2 months on the second tuesday" or "annually".
// Parsing is case-insensitive. When a weekly or monthly phrase names no day,
// the schedule falls on start's weekday or day of month.
func ParseDelta(schedule string, start date.SimpleDate) (Delta, error) {
	s := strings.ToLower(strings.TrimSpace(schedule))

	resolve := deltaResolver(resolveDay)
	for _, family := range deltaFamilies {
		if containsAny(s, family.keywords...) {
			resolve = family.resolve
			break
		}
	}

	delta, err := resolve(s, start).Get()
	if err != nil {
		return nil, err
	}
	if err := delta.Validate(); err != nil {
		return nil, err
	}
	return delta, nil
}

// ParseEnd reads an ending phrase: blank or "never" for no end, "after 5
// occurrences" (also "times" or "reps") for a count, or a yyyy-mm-dd date.
func ParseEnd(s string) (End, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch {
	case s == "" || strings.Contains(s, "never"):
		return Never(), nil

	case containsAny(s, "after", "times", "occurrence", "reps"):
		m := numberPattern.FindString(s)
		if m == "" {
			return End{}, fmt.Errorf("%w: %q", ErrInvalidEnd, s)
		}
		count, err := strconv.Atoi(m)
		if err != nil {
			return End{}, fmt.Errorf("%w: %q: %v", ErrInvalidEnd, s, err)
		}
		return After(count), nil

	default:
		m := endDatePattern.FindString(s)
		if m == "" {
			return End{}, fmt.Errorf("%w: invalid end date %q", ErrInvalidEnd, s)
		}
		d, err := date.Parse(m)
		if err != nil {
			return End{}, fmt.Errorf("%w: %w", ErrInvalidEnd, err)
		}
		return Until(d), nil
	}
}

// ParseRepetition combines ParseDelta and ParseEnd. A blank schedule means
// the event does not repeat and yields None.
func ParseRepetition(schedule, ending string, start date.SimpleDate) (mo.Option[Repetition], error) {
	if strings.TrimSpace(schedule) == "" {
		return mo.None[Repetition](), nil
	}

	delta, err := ParseDelta(schedule, start)
	if err != nil {
		return mo.None[Repetition](), err
	}
	end, err := ParseEnd(ending)
	if err != nil {
		return mo.None[Repetition](), err
	}
	return mo.Some(Repetition{Delta: delta, End: end}), nil
}

func resolveDay(s string, _ date.SimpleDate) mo.Result[Delta] {
	nth, ok := interval(s, dayCountPattern, dayWords)
	if !ok {
		return unparseable(s)
	}
	return mo.Ok[Delta](DayDelta{Nth: nth})
}

func resolveWeek(s string, start date.SimpleDate) mo.Result[Delta] {
	head, tail, hasDays := strings.Cut(s, " on ")

	nth, ok := interval(head, weekCountPattern, weekWords)
	if !ok {
		return unparseable(s)
	}

	on := []date.Weekday{start.Weekday()}
	if hasDays {
		on = nil
		for i, stem := range weekdayStems {
			if strings.Contains(tail, stem) {
				on = append(on, date.Weekday(i))
			}
		}
		if len(on) == 0 {
			return unparseable(s)
		}
		// Order matters: the last weekday named anchors the schedule.
		slices.SortFunc(on, func(a, b date.Weekday) int {
			return strings.Index(tail, weekdayStems[a]) - strings.Index(tail, weekdayStems[b])
		})
	}
	return mo.Ok[Delta](WeekDelta{Nth: nth, On: on})
}

func resolveMonth(s string, start date.SimpleDate) mo.Result[Delta] {
	head, tail, hasDays := strings.Cut(s, " on ")

	nth, ok := interval(head, monthCountPattern, monthWords)
	if !ok {
		return unparseable(s)
	}
	if !hasDays {
		return mo.Ok[Delta](MonthDateDelta{Nth: nth, Days: []int{start.Day}})
	}

	if day, found := firstWeekday(tail); found {
		for id, words := range weekIDWords {
			if containsAny(tail, words[:]...) {
				return mo.Ok[Delta](MonthWeekDelta{Nth: nth, WeekID: id, Day: day})
			}
		}
		return unparseable(s)
	}

	var days []int
	for _, m := range numberPattern.FindAllString(tail, -1) {
		day, err := strconv.Atoi(m)
		if err != nil || day < 1 || day > 31 {
			return unparseable(s)
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return unparseable(s)
	}
	return mo.Ok[Delta](MonthDateDelta{Nth: nth, Days: days})
}

func resolveYear(s string, _ date.SimpleDate) mo.Result[Delta] {
	nth, ok := interval(s, yearCountPattern, yearWords)
	if !ok {
		return unparseable(s)
	}
	return mo.Ok[Delta](YearDelta{Nth: nth})
}

// interval reads "every N units" or "N units", falling back to the fixed
// words of the family.
func interval(s string, pattern *regexp.Regexp, words map[string]int) (int, bool) {
	s = strings.TrimSpace(s)
	if m := pattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	n, ok := words[s]
	return n, ok
}

func firstWeekday(s string) (date.Weekday, bool) {
	for i, stem := range weekdayStems {
		if strings.Contains(s, stem) {
			return date.Weekday(i), true
		}
	}
	return 0, false
}

func unparseable(s string) mo.Result[Delta] {
	return mo.Err[Delta](fmt.Errorf("%w: %q", ErrUnparseableSchedule, s))
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

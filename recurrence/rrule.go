package recurrence

import (
	"fmt"
	"slices"

	"github.com/cyp0633/libcaldate/date"
	"github.com/teambition/rrule-go"
)

var rruleWeekdays = [...]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

// ToROption translates a schedule beginning at start into an RFC 5545 rule
// with the same occurrences, start included. Only schedules whose start is
// itself on the rule translate: a weekly schedule must start on its anchor
// weekday, a monthly one on the day it lands on. Fifth-weekday months and
// Feb 29 yearly schedules have no equivalent. Those cases return
// ErrUnsupportedRule.
func ToROption(rep Repetition, start date.SimpleDate) (rrule.ROption, error) {
	if err := rep.Validate(); err != nil {
		return rrule.ROption{}, err
	}

	opt := rrule.ROption{
		Dtstart:  start.Time(),
		Wkst:     rrule.MO,
		Interval: 1,
	}

	switch d := rep.Delta.(type) {
	case DayDelta:
		opt.Freq = rrule.DAILY
		opt.Interval = d.Nth

	case WeekDelta:
		anchor := d.Anchor(start)
		if start.Weekday() != anchor {
			return rrule.ROption{}, unsupported("weekly schedule starting on %s is anchored to %s", start.Weekday(), anchor)
		}
		opt.Freq = rrule.WEEKLY
		opt.Interval = d.Nth
		opt.Byweekday = []rrule.Weekday{rruleWeekdays[anchor]}

	case MonthDateDelta:
		lo, hi := d.bounds(start)
		if start != landOn(start, hi) {
			return rrule.ROption{}, unsupported("monthly schedule starting on %s is not on day %d", start, hi)
		}
		if lo > 28 && d.Nth > 1 {
			return rrule.ROption{}, unsupported("every %d months on day %d skips differently in short months", d.Nth, lo)
		}
		opt.Freq = rrule.MONTHLY
		opt.Interval = d.Nth
		if hi <= 28 {
			opt.Bymonthday = []int{hi}
		} else {
			// the largest day up to hi that the month has
			for day := 28; day <= hi; day++ {
				opt.Bymonthday = append(opt.Bymonthday, day)
			}
			opt.Bysetpos = []int{-1}
		}

	case MonthWeekDelta:
		if d.WeekID >= 4 {
			return rrule.ROption{}, unsupported("fifth %s rolls into the next month", d.Day)
		}
		if start != nthWeekday(start.Year, start.Month, d.Day, d.WeekID) {
			return rrule.ROption{}, unsupported("monthly schedule starting on %s is not on the %s %s", start, weekOrdinal(d.WeekID), d.Day)
		}
		opt.Freq = rrule.MONTHLY
		opt.Interval = d.Nth
		opt.Byweekday = []rrule.Weekday{rruleWeekdays[d.Day].Nth(d.WeekID + 1)}

	case YearDelta:
		if start.Month == 2 && start.Day == 29 {
			return rrule.ROption{}, unsupported("yearly schedule from Feb 29 settles on Feb 28")
		}
		opt.Freq = rrule.YEARLY
		opt.Interval = d.Nth

	default:
		return rrule.ROption{}, unsupported("delta %T", rep.Delta)
	}

	switch rep.End.Kind {
	case EndCount:
		// COUNT includes DTSTART, the count here does not
		opt.Count = rep.End.Count + 1
	case EndDate:
		opt.Until = rep.End.Date.Time()
	}

	return opt, nil
}

// RRule builds a ready-to-iterate rule for the schedule.
func RRule(rep Repetition, start date.SimpleDate) (*rrule.RRule, error) {
	opt, err := ToROption(rep, start)
	if err != nil {
		return nil, err
	}
	return rrule.NewRRule(opt)
}

// FromROption reads a rule produced by ToROption, or any rule of the same
// shape, back into a schedule and its start date.
func FromROption(opt rrule.ROption) (Repetition, date.SimpleDate, error) {
	start := date.FromTime(opt.Dtstart)
	if opt.Dtstart.IsZero() {
		return Repetition{}, start, unsupported("rule has no DTSTART")
	}
	if len(opt.Bymonth) > 0 || len(opt.Byyearday) > 0 || len(opt.Byweekno) > 0 {
		return Repetition{}, start, unsupported("BYMONTH, BYYEARDAY and BYWEEKNO are not supported")
	}

	nth := opt.Interval
	if nth <= 0 {
		nth = 1
	}

	var delta Delta
	switch opt.Freq {
	case rrule.DAILY:
		if len(opt.Byweekday) > 0 || len(opt.Bymonthday) > 0 {
			return Repetition{}, start, unsupported("daily rule with BY parts")
		}
		delta = DayDelta{Nth: nth}

	case rrule.WEEKLY:
		switch len(opt.Byweekday) {
		case 0:
			delta = WeekDelta{Nth: nth, On: []date.Weekday{start.Weekday()}}
		case 1:
			delta = WeekDelta{Nth: nth, On: []date.Weekday{date.Weekday(opt.Byweekday[0].Day())}}
		default:
			return Repetition{}, start, unsupported("weekly rule on several weekdays")
		}

	case rrule.MONTHLY:
		var err error
		delta, err = monthlyFromROption(opt, nth, start)
		if err != nil {
			return Repetition{}, start, err
		}

	case rrule.YEARLY:
		if len(opt.Byweekday) > 0 || len(opt.Bymonthday) > 0 {
			return Repetition{}, start, unsupported("yearly rule with BY parts")
		}
		delta = YearDelta{Nth: nth}

	default:
		return Repetition{}, start, unsupported("frequency %v", opt.Freq)
	}

	end := Never()
	switch {
	case opt.Count > 0:
		end = After(opt.Count - 1)
	case !opt.Until.IsZero():
		end = Until(date.FromTime(opt.Until))
	}

	rep := Repetition{Delta: delta, End: end}
	return rep, start, rep.Validate()
}

func monthlyFromROption(opt rrule.ROption, nth int, start date.SimpleDate) (Delta, error) {
	switch {
	case len(opt.Byweekday) == 1 && len(opt.Bymonthday) == 0:
		wd := opt.Byweekday[0]
		if wd.N() < 1 || wd.N() > 4 {
			return nil, unsupported("monthly weekday position %d", wd.N())
		}
		return MonthWeekDelta{Nth: nth, WeekID: wd.N() - 1, Day: date.Weekday(wd.Day())}, nil

	case len(opt.Byweekday) > 0:
		return nil, unsupported("monthly rule mixing weekdays")

	case len(opt.Bymonthday) == 0:
		if start.Day > 28 {
			return nil, unsupported("monthly rule from day %d skips short months", start.Day)
		}
		return MonthDateDelta{Nth: nth, Days: []int{start.Day}}, nil

	case len(opt.Bymonthday) == 1 && len(opt.Bysetpos) == 0:
		if day := opt.Bymonthday[0]; day >= 1 && day <= 28 {
			return MonthDateDelta{Nth: nth, Days: []int{day}}, nil
		}
		return nil, unsupported("BYMONTHDAY=%d alone skips short months", opt.Bymonthday[0])

	case slices.Equal(opt.Bysetpos, []int{-1}) && opt.Bymonthday[0] == 28:
		last := opt.Bymonthday[len(opt.Bymonthday)-1]
		for i, day := range opt.Bymonthday {
			if day != 28+i {
				return nil, unsupported("BYMONTHDAY list %v", opt.Bymonthday)
			}
		}
		return MonthDateDelta{Nth: nth, Days: []int{last}}, nil

	default:
		return nil, unsupported("BYMONTHDAY=%v BYSETPOS=%v", opt.Bymonthday, opt.Bysetpos)
	}
}

func unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedRule, fmt.Sprintf(format, args...))
}

package storage

import "github.com/cyp0633/libcaldate/date"

// OverlapDays counts the days a charge running from start to end shares
// with the period from periodStart to periodEnd. Ranges that miss each
// other give 0. The count is the distance between the two dates bounding
// the overlap, so a charge entirely inside the period counts end minus
// start.
func OverlapDays(periodStart, periodEnd, start, end date.SimpleDate) int {
	if end.Before(periodStart) || start.After(periodEnd) {
		return 0
	}

	switch {
	case !start.Before(periodStart) && end.Before(periodEnd):
		// period contains the charge
		return date.DaysBetween(start, end)
	case !periodStart.Before(start) && periodEnd.Before(end):
		// charge contains the period
		return date.DaysBetween(periodStart, periodEnd)
	case end.Before(periodEnd):
		return date.DaysBetween(periodStart, end)
	default:
		return date.DaysBetween(start, periodEnd)
	}
}

// SpreadTotal sums the amounts of schedules that fall in the period of
// length period beginning at start, in whole currency units. Each
// occurrence spreads its Amount evenly over its Spread (one day when unset)
// and contributes the share overlapping the period. Occurrences are taken
// from Start onwards while they begin before the period ends and the
// repetition's end allows them.
func SpreadTotal(schedules []*Schedule, start date.SimpleDate, period date.Duration) float64 {
	end := start.Add(period)

	var cents float64
	for _, s := range schedules {
		spread := s.Spread.OrElse(date.Days(1))

		charge := func(from date.SimpleDate) {
			until := from.Add(spread)
			days := max(date.DaysBetween(from, until), 1)
			perDay := float64(s.Amount) / float64(days)
			cents += perDay * float64(OverlapDays(start, end, from, until))
		}

		rep, ok := s.Repetition.Get()
		if !ok {
			charge(s.Start)
			continue
		}
		for d := range rep.All(s.Start) {
			if !d.Before(end) {
				break
			}
			charge(d)
		}
	}
	return cents / 100
}

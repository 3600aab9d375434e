package recurrence

import (
	"testing"

	"github.com/cyp0633/libcaldate/date"
	"github.com/cyp0633/libcaldate/internal/xml"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXCalRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		start date.SimpleDate
		rep   mo.Option[Repetition]
	}{
		{"one-off", date.FromYMD(2021, 3, 4), mo.None[Repetition]()},
		{"second Tuesday", date.FromYMD(2020, 9, 8), mo.Some(Repetition{MonthWeekDelta{Nth: 1, WeekID: 1, Day: date.Tuesday}, After(5)})},
		{"off-anchor weekly", date.FromYMD(2020, 9, 20), mo.Some(Repetition{WeekDelta{Nth: 2, On: []date.Weekday{date.Monday}}, Never()})},
		{"weekdays out of order", date.FromYMD(2020, 9, 20), mo.Some(Repetition{WeekDelta{Nth: 1, On: []date.Weekday{date.Wednesday, date.Monday}}, After(3)})},
		{"last day of month", date.FromYMD(2020, 1, 31), mo.Some(Repetition{MonthDateDelta{Nth: 1, Days: []int{31}}, Until(date.FromYMD(2021, 1, 31))})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := MarshalXCal("uid", "Test", tt.start, tt.rep)
			require.NoError(t, err)

			start, rep, err := UnmarshalXCal(s)
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.rep, rep)
		})
	}
}

func TestToXCalEventRecur(t *testing.T) {
	rep := Repetition{MonthWeekDelta{Nth: 1, WeekID: 1, Day: date.Tuesday}, After(5)}
	event, err := ToXCalEvent("uid", "", date.FromYMD(2020, 9, 8), mo.Some(rep))
	require.NoError(t, err)

	assert.Equal(t, "2020-09-08", event.DTStart)
	assert.Equal(t, "1 month on the second Tuesday", event.XProps["x-caldate-delta"])
	require.NotNil(t, event.RRule)
	assert.Equal(t, &xml.Recur{Freq: "MONTHLY", Count: 6, Interval: 1, ByDay: []string{"+2TU"}}, event.RRule)

	monthEnd := Repetition{MonthDateDelta{Nth: 1, Days: []int{31}}, Until(date.FromYMD(2021, 1, 31))}
	event, err = ToXCalEvent("uid", "", date.FromYMD(2020, 1, 31), mo.Some(monthEnd))
	require.NoError(t, err)
	require.NotNil(t, event.RRule)
	assert.Equal(t, "2021-01-31", event.RRule.Until)
	assert.Equal(t, []int{28, 29, 30, 31}, event.RRule.ByMonthDay)
	assert.Equal(t, []int{-1}, event.RRule.BySetPos)

	offAnchor := Repetition{WeekDelta{Nth: 1, On: []date.Weekday{date.Monday}}, Never()}
	event, err = ToXCalEvent("uid", "", date.FromYMD(2020, 9, 20), mo.Some(offAnchor))
	require.NoError(t, err)
	assert.Nil(t, event.RRule)
}

func TestFromXCalEventRecurOnly(t *testing.T) {
	event := xml.Event{
		DTStart: "2020-09-08",
		RRule:   &xml.Recur{Freq: "MONTHLY", Count: 4, ByDay: []string{"+2TU"}},
	}

	start, rep, err := FromXCalEvent(event)
	require.NoError(t, err)
	assert.Equal(t, date.FromYMD(2020, 9, 8), start)
	assert.Equal(t, Repetition{MonthWeekDelta{Nth: 1, WeekID: 1, Day: date.Tuesday}, After(3)}, rep.MustGet())
}

func TestFromXCalEventErrors(t *testing.T) {
	_, _, err := FromXCalEvent(xml.Event{DTStart: "not a date"})
	assert.ErrorIs(t, err, date.ErrInvalidFormat)

	_, _, err = FromXCalEvent(xml.Event{DTStart: "2020-01-01", RRule: &xml.Recur{Freq: "SECONDLY"}})
	assert.ErrorIs(t, err, ErrUnsupportedRule)

	_, _, err = UnmarshalXCal(`<icalendar><vcalendar/></icalendar>`)
	assert.Error(t, err)
}

package storage

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/cyp0633/libcaldate/date"
	"github.com/cyp0633/libcaldate/recurrence"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeat(delta recurrence.Delta, end recurrence.End) mo.Option[recurrence.Repetition] {
	return mo.Some(recurrence.Repetition{Delta: delta, End: end})
}

func TestScheduleEndDate(t *testing.T) {
	start := date.FromYMD(2020, 9, 20)

	tests := []struct {
		name     string
		schedule Schedule
		want     mo.Option[date.SimpleDate]
	}{
		{
			name:     "single day",
			schedule: Schedule{Start: start},
			want:     mo.Some(start),
		},
		{
			name:     "spread only",
			schedule: Schedule{Start: start, Spread: mo.Some(date.Days(3))},
			want:     mo.Some(date.FromYMD(2020, 9, 23)),
		},
		{
			name:     "never ending",
			schedule: Schedule{Start: start, Repetition: repeat(recurrence.DayDelta{Nth: 1}, recurrence.Never())},
			want:     mo.None[date.SimpleDate](),
		},
		{
			name: "count plus spread",
			schedule: Schedule{
				Start:      start,
				Spread:     mo.Some(date.Weeks(1)),
				Repetition: repeat(recurrence.DayDelta{Nth: 1}, recurrence.After(5)),
			},
			want: mo.Some(date.FromYMD(2020, 10, 2)),
		},
		{
			name: "until",
			schedule: Schedule{
				Start:      start,
				Repetition: repeat(recurrence.MonthDateDelta{Nth: 3, Days: []int{15}}, recurrence.Until(date.FromYMD(2021, 12, 31))),
			},
			want: mo.Some(date.FromYMD(2021, 12, 15)),
		},
		{
			name: "month spread clamps",
			schedule: Schedule{
				Start:  date.FromYMD(2020, 1, 31),
				Spread: mo.Some(date.Months(1)),
			},
			want: mo.Some(date.FromYMD(2020, 2, 29)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.schedule.EndDate())
		})
	}
}

func TestCompareByEnd(t *testing.T) {
	forever := &Schedule{ID: "forever", Start: date.FromYMD(2020, 1, 1), Repetition: repeat(recurrence.YearDelta{Nth: 1}, recurrence.Never())}
	foreverLater := &Schedule{ID: "forever-later", Start: date.FromYMD(2021, 1, 1), Repetition: repeat(recurrence.YearDelta{Nth: 1}, recurrence.Never())}
	short := &Schedule{ID: "short", Start: date.FromYMD(2020, 6, 1)}
	long := &Schedule{ID: "long", Start: date.FromYMD(2020, 1, 1), Spread: mo.Some(date.Months(6))}
	longLater := &Schedule{ID: "long-later", Start: date.FromYMD(2020, 5, 1), Spread: mo.Some(date.Months(2))}

	list := []*Schedule{foreverLater, long, forever, longLater, short}
	slices.SortFunc(list, CompareByEnd)

	var ids []string
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"short", "long", "long-later", "forever", "forever-later"}, ids)
}

func TestScheduleValidate(t *testing.T) {
	valid := Schedule{Start: date.FromYMD(2020, 1, 1)}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name     string
		schedule Schedule
	}{
		{"bad start", Schedule{Start: date.FromYMD(2021, 2, 29)}},
		{"negative spread", Schedule{Start: date.FromYMD(2020, 1, 1), Spread: mo.Some(date.Days(-1))}},
		{"bad repetition", Schedule{Start: date.FromYMD(2020, 1, 1), Repetition: repeat(recurrence.DayDelta{}, recurrence.Never())}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schedule.Validate()
			assert.True(t, IsType(err, ErrInvalidInput), "got %v", err)
		})
	}
}

func TestScheduleMatches(t *testing.T) {
	engine := recurrence.NewEngine()
	defer engine.Close()

	weekly := &Schedule{
		Summary:    "Bins out",
		Start:      date.FromYMD(2020, 9, 21),
		Repetition: repeat(recurrence.WeekDelta{Nth: 1, On: []date.Weekday{date.Monday}}, recurrence.Never()),
		Tags:       []string{"home"},
	}
	spread := weekly.Clone()
	spread.Spread = mo.Some(date.Days(2))

	midweek := &TimeRange{Start: date.FromYMD(2020, 9, 23), End: date.FromYMD(2020, 9, 24)}

	tests := []struct {
		name     string
		schedule *Schedule
		filter   *Filter
		want     bool
	}{
		{"nil filter", weekly, nil, true},
		{"empty filter", weekly, &Filter{}, true},
		{"summary case-insensitive", weekly, &Filter{SummaryContains: "BINS"}, true},
		{"summary mismatch", weekly, &Filter{SummaryContains: "rent"}, false},
		{"tag", weekly, &Filter{Tag: "home"}, true},
		{"tag mismatch", weekly, &Filter{Tag: "work"}, false},
		{"range between occurrences", weekly, &Filter{TimeRange: midweek}, false},
		{"range inside spread", spread, &Filter{TimeRange: midweek}, true},
		{"range on occurrence", weekly, &Filter{TimeRange: &TimeRange{Start: date.FromYMD(2020, 9, 28), End: date.FromYMD(2020, 9, 28)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.schedule.Matches(engine, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := weekly.Matches(engine, &Filter{TimeRange: &TimeRange{Start: date.FromYMD(2021, 1, 1), End: date.FromYMD(2020, 1, 1)}})
	assert.ErrorIs(t, err, recurrence.ErrInvalidRange)
}

func TestScheduleClone(t *testing.T) {
	s := &Schedule{ID: "a", Tags: []string{"x"}}
	c := s.Clone()
	c.Tags[0] = "y"
	c.ID = "b"

	assert.Equal(t, "x", s.Tags[0])
	assert.Equal(t, "a", s.ID)
}

func TestScheduleCloneRepetition(t *testing.T) {
	tests := []struct {
		name   string
		delta  recurrence.Delta
		mutate func(recurrence.Delta)
	}{
		{
			name:   "weekdays",
			delta:  recurrence.WeekDelta{Nth: 1, On: []date.Weekday{date.Monday, date.Friday}},
			mutate: func(d recurrence.Delta) { d.(recurrence.WeekDelta).On[0] = date.Sunday },
		},
		{
			name:   "days of month",
			delta:  recurrence.MonthDateDelta{Nth: 1, Days: []int{1, 15}},
			mutate: func(d recurrence.Delta) { d.(recurrence.MonthDateDelta).Days[0] = 31 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Schedule{ID: "a", Start: date.FromYMD(2020, 9, 21), Repetition: repeat(tt.delta, recurrence.Never())}
			want := s.Repetition.MustGet().String()

			c := s.Clone()
			tt.mutate(c.Repetition.MustGet().Delta)

			assert.Equal(t, want, s.Repetition.MustGet().String())
			assert.NotEqual(t, want, c.Repetition.MustGet().String())
		})
	}
}

func TestError(t *testing.T) {
	inner := errors.New("disk on fire")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"without cause", &Error{Type: ErrNotFound, Message: "schedule abc"}, "not_found: schedule abc"},
		{"with cause", &Error{Type: ErrInvalidInput, Message: "bad", Err: inner}, "invalid_input: bad: disk on fire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	wrapped := fmt.Errorf("lookup: %w", &Error{Type: ErrNotFound, Message: "x", Err: inner})
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsType(wrapped, ErrAlreadyExists))
	assert.ErrorIs(t, wrapped, inner)
	assert.False(t, IsNotFound(inner))
	assert.False(t, IsNotFound(nil))
}

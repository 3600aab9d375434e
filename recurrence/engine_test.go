package recurrence

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/cyp0633/libcaldate/date"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weeklyOnMonday() mo.Option[Repetition] {
	return mo.Some(Repetition{Delta: WeekDelta{Nth: 1, On: []date.Weekday{date.Monday}}, End: Never()})
}

func daily(end End) mo.Option[Repetition] {
	return mo.Some(Repetition{Delta: DayDelta{Nth: 1}, End: end})
}

func TestEngineExpand(t *testing.T) {
	engine := NewEngine()
	defer engine.Close()

	tests := []struct {
		name       string
		rep        mo.Option[Repetition]
		start      date.SimpleDate
		rangeStart date.SimpleDate
		rangeEnd   date.SimpleDate
		want       []Occurrence
	}{
		{
			name:       "one-off inside range",
			rep:        mo.None[Repetition](),
			start:      date.FromYMD(2020, 9, 20),
			rangeStart: date.FromYMD(2020, 9, 1),
			rangeEnd:   date.FromYMD(2020, 9, 30),
			want:       []Occurrence{{Date: date.FromYMD(2020, 9, 20)}},
		},
		{
			name:       "one-off outside range",
			rep:        mo.None[Repetition](),
			start:      date.FromYMD(2020, 9, 20),
			rangeStart: date.FromYMD(2020, 10, 1),
			rangeEnd:   date.FromYMD(2020, 10, 31),
			want:       nil,
		},
		{
			name:       "weekly over a month",
			rep:        weeklyOnMonday(),
			start:      date.FromYMD(2020, 9, 21),
			rangeStart: date.FromYMD(2020, 10, 1),
			rangeEnd:   date.FromYMD(2020, 10, 31),
			want: []Occurrence{
				{Date: date.FromYMD(2020, 10, 5), Index: 2},
				{Date: date.FromYMD(2020, 10, 12), Index: 3},
				{Date: date.FromYMD(2020, 10, 19), Index: 4},
				{Date: date.FromYMD(2020, 10, 26), Index: 5},
			},
		},
		{
			name:       "range bounds are inclusive",
			rep:        daily(Never()),
			start:      date.FromYMD(2020, 1, 1),
			rangeStart: date.FromYMD(2020, 1, 5),
			rangeEnd:   date.FromYMD(2020, 1, 7),
			want: []Occurrence{
				{Date: date.FromYMD(2020, 1, 5), Index: 4},
				{Date: date.FromYMD(2020, 1, 6), Index: 5},
				{Date: date.FromYMD(2020, 1, 7), Index: 6},
			},
		},
		{
			name:       "single day range",
			rep:        daily(Never()),
			start:      date.FromYMD(2020, 1, 1),
			rangeStart: date.FromYMD(2020, 1, 1),
			rangeEnd:   date.FromYMD(2020, 1, 1),
			want:       []Occurrence{{Date: date.FromYMD(2020, 1, 1)}},
		},
		{
			name:       "count ends inside range",
			rep:        daily(After(2)),
			start:      date.FromYMD(2020, 1, 1),
			rangeStart: date.FromYMD(2019, 12, 1),
			rangeEnd:   date.FromYMD(2020, 1, 31),
			want: []Occurrence{
				{Date: date.FromYMD(2020, 1, 1)},
				{Date: date.FromYMD(2020, 1, 2), Index: 1},
				{Date: date.FromYMD(2020, 1, 3), Index: 2},
			},
		},
		{
			name:       "range before start",
			rep:        weeklyOnMonday(),
			start:      date.FromYMD(2020, 9, 21),
			rangeStart: date.FromYMD(2020, 1, 1),
			rangeEnd:   date.FromYMD(2020, 9, 20),
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Expand(tt.rep, tt.start, tt.rangeStart, tt.rangeEnd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngineExpandErrors(t *testing.T) {
	engine := NewEngine()
	defer engine.Close()

	start := date.FromYMD(2020, 1, 1)

	_, err := engine.Expand(daily(Never()), start, date.FromYMD(2020, 2, 1), date.FromYMD(2020, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = engine.Expand(mo.Some(Repetition{Delta: DayDelta{Nth: 0}}), start, start, start)
	assert.ErrorIs(t, err, ErrInvalidDelta)

	_, err = engine.HasOccurrenceInRange(daily(Never()), start, date.FromYMD(2020, 2, 1), date.FromYMD(2020, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestEngineExpandTruncates(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	config := DisabledCacheConfig
	config.MaxExpansionOccurrences = 3
	engine := NewEngineWithConfig(config, WithLogger(logger))
	defer engine.Close()

	got, err := engine.Expand(daily(Never()), date.FromYMD(2020, 1, 1), date.FromYMD(2020, 1, 1), date.FromYMD(2020, 1, 31))
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, date.FromYMD(2020, 1, 3), got[2].Date)
	assert.Contains(t, logs.String(), "expansion truncated")
}

func TestEngineMaxIterations(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	config := DisabledCacheConfig
	config.MaxIterations = 10
	engine := NewEngineWithConfig(config, WithLogger(logger))

	monthly := mo.Some(Repetition{Delta: MonthDateDelta{Nth: 1, Days: []int{1}}, End: Never()})
	start := date.FromYMD(2020, 1, 1)
	got, err := engine.Expand(monthly, start, date.FromYMD(2021, 6, 1), date.FromYMD(2021, 6, 2))
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.True(t, engine.NextAfter(monthly, start, date.FromYMD(2021, 6, 1)).IsAbsent())

	_, err = engine.HasOccurrenceInRange(monthly, start, date.FromYMD(2021, 6, 1), date.FromYMD(2021, 6, 2))
	assert.ErrorIs(t, err, ErrIterationLimit)
	assert.Contains(t, logs.String(), "occurrence search gave up")
}

func TestEngineSkipsAheadToFarRanges(t *testing.T) {
	engine := NewEngine()
	defer engine.Close()

	start := date.FromYMD(2000, 1, 1)
	from, to := date.FromYMD(2300, 1, 1), date.FromYMD(2300, 1, 31)

	has, err := engine.HasOccurrenceInRange(daily(Never()), start, from, to)
	require.NoError(t, err)
	assert.True(t, has)

	got, err := engine.Expand(daily(Never()), start, from, date.FromYMD(2300, 1, 2))
	require.NoError(t, err)
	index := date.DaysBetween(start, from)
	assert.Equal(t, []Occurrence{
		{Date: from, Index: index},
		{Date: date.FromYMD(2300, 1, 2), Index: index + 1},
	}, got)

	// 2000-01-01 is a Saturday: the first tick moves to Monday the 3rd and
	// adds two weeks
	fortnightly := mo.Some(Repetition{Delta: WeekDelta{Nth: 2, On: []date.Weekday{date.Monday}}, End: Never()})
	got, err = engine.Expand(fortnightly, start, from, to)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, occ := range got {
		assert.Equal(t, date.Monday, occ.Date.Weekday())
		assert.Equal(t, 0, date.DaysBetween(date.FromYMD(2000, 1, 17), occ.Date)%14)
		assert.Equal(t, 1+date.DaysBetween(date.FromYMD(2000, 1, 17), occ.Date)/14, occ.Index)
	}

	next := engine.NextAfter(daily(Never()), start, from)
	assert.Equal(t, mo.Some(Occurrence{Date: date.FromYMD(2300, 1, 2), Index: index + 1}), next)
}

func TestEngineSkipAheadHonoursEnd(t *testing.T) {
	engine := NewEngineWithConfig(DisabledCacheConfig)
	defer engine.Close()

	start := date.FromYMD(2000, 1, 1)
	from, to := date.FromYMD(2300, 1, 1), date.FromYMD(2300, 1, 31)

	has, err := engine.HasOccurrenceInRange(daily(After(200_000)), start, from, to)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = engine.HasOccurrenceInRange(daily(After(5)), start, from, to)
	require.NoError(t, err)
	assert.False(t, has)

	has, err = engine.HasOccurrenceInRange(daily(Until(date.FromYMD(2300, 1, 10))), start, from, to)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = engine.HasOccurrenceInRange(daily(Until(date.FromYMD(2299, 12, 31))), start, from, to)
	require.NoError(t, err)
	assert.False(t, has)

	// the count runs out a few days into the range
	got, err := engine.Expand(daily(After(date.DaysBetween(start, from)+2)), start, from, to)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestEngineCache(t *testing.T) {
	engine := NewEngine()
	defer engine.Close()

	rep := weeklyOnMonday()
	start := date.FromYMD(2020, 9, 21)
	from, to := date.FromYMD(2020, 10, 1), date.FromYMD(2020, 10, 31)

	first, err := engine.Expand(rep, start, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, engine.CacheStats().TotalEntries)

	// callers own the returned slice
	first[0].Date = date.Forever

	second, err := engine.Expand(rep, start, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, engine.CacheStats().TotalEntries)
	assert.Equal(t, date.FromYMD(2020, 10, 5), second[0].Date)

	_, err = engine.HasOccurrenceInRange(rep, start, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, engine.CacheStats().TotalEntries)
}

func TestEngineDisabledCache(t *testing.T) {
	engine := NewEngineWithConfig(DisabledCacheConfig)
	defer engine.Close()

	_, err := engine.Expand(weeklyOnMonday(), date.FromYMD(2020, 9, 21), date.FromYMD(2020, 10, 1), date.FromYMD(2020, 10, 31))
	require.NoError(t, err)
	assert.Equal(t, CacheStats{}, engine.CacheStats())
}

func TestEngineHasOccurrenceInRange(t *testing.T) {
	engine := NewEngine()
	defer engine.Close()

	start := date.FromYMD(2020, 9, 21)

	tests := []struct {
		name       string
		rep        mo.Option[Repetition]
		rangeStart date.SimpleDate
		rangeEnd   date.SimpleDate
		want       bool
	}{
		{"gap between weeks", weeklyOnMonday(), date.FromYMD(2020, 9, 22), date.FromYMD(2020, 9, 27), false},
		{"range ends on occurrence", weeklyOnMonday(), date.FromYMD(2020, 9, 22), date.FromYMD(2020, 9, 28), true},
		{"range before start", weeklyOnMonday(), date.FromYMD(2020, 9, 1), date.FromYMD(2020, 9, 20), false},
		{"far future", weeklyOnMonday(), date.FromYMD(2030, 1, 1), date.FromYMD(2030, 1, 7), true},
		{"after count ends", daily(After(3)), date.FromYMD(2020, 9, 25), date.FromYMD(2020, 9, 30), false},
		{"one-off", mo.None[Repetition](), start, start, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.HasOccurrenceInRange(tt.rep, start, tt.rangeStart, tt.rangeEnd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngineNextAfter(t *testing.T) {
	engine := NewEngine()
	defer engine.Close()

	start := date.FromYMD(2020, 1, 1)
	rep := daily(After(2))

	assert.Equal(t, mo.Some(Occurrence{Date: start}), engine.NextAfter(rep, start, date.FromYMD(2019, 12, 31)))
	assert.Equal(t, mo.Some(Occurrence{Date: date.FromYMD(2020, 1, 2), Index: 1}), engine.NextAfter(rep, start, start))
	assert.True(t, engine.NextAfter(rep, start, date.FromYMD(2020, 1, 3)).IsAbsent())

	once := mo.None[Repetition]()
	assert.Equal(t, mo.Some(Occurrence{Date: start}), engine.NextAfter(once, start, date.FromYMD(2019, 1, 1)))
	assert.True(t, engine.NextAfter(once, start, start).IsAbsent())
}

func TestEngineLast(t *testing.T) {
	engine := NewEngine()
	defer engine.Close()

	start := date.FromYMD(2020, 9, 20)
	assert.Equal(t, start, engine.Last(mo.None[Repetition](), start))
	assert.Equal(t, date.Forever, engine.Last(weeklyOnMonday(), start))
	assert.Equal(t, date.FromYMD(2020, 9, 25), engine.Last(daily(After(5)), start))
}

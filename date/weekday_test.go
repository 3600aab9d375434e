package date

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdayOf(t *testing.T) {
	tests := []struct {
		date SimpleDate
		want Weekday
	}{
		{FromYMD(1700, 1, 1), Friday},
		{FromYMD(1789, 7, 14), Tuesday},
		{FromYMD(1900, 1, 1), Monday},
		{FromYMD(1945, 4, 30), Monday},
		{FromYMD(1969, 7, 20), Sunday},
		{FromYMD(2000, 2, 29), Tuesday},
		{FromYMD(2000, 3, 1), Wednesday},
		{FromYMD(2013, 6, 15), Saturday},
		{FromYMD(2020, 9, 20), Sunday},
		{FromYMD(2020, 12, 31), Thursday},
		{FromYMD(1600, 1, 1), Saturday},
	}

	for _, tt := range tests {
		t.Run(tt.date.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, WeekdayOf(tt.date))
			assert.Equal(t, tt.want, tt.date.Weekday())
		})
	}
}

func TestWeekdayOfMatchesTime(t *testing.T) {
	for tm := time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC); tm.Year() < 3000; tm = tm.AddDate(0, 0, 13) {
		d := FromTime(tm)
		require.Equal(t, FromTimeWeekday(tm.Weekday()), WeekdayOf(d), d.String())
	}
}

func TestWeekdayConversions(t *testing.T) {
	assert.Equal(t, time.Monday, Monday.TimeWeekday())
	assert.Equal(t, time.Sunday, Sunday.TimeWeekday())
	for w := Monday; w <= Sunday; w++ {
		assert.Equal(t, w, FromTimeWeekday(w.TimeWeekday()))
		assert.Equal(t, w.TimeWeekday().String(), w.String())
	}

	assert.False(t, Weekday(7).Valid())
	assert.Equal(t, "Weekday(7)", Weekday(7).String())
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		input string
		want  Weekday
	}{
		{"monday", Monday},
		{"Tue", Tuesday},
		{" WEDNES ", Wednesday},
		{"thu", Thursday},
		{"fri", Friday},
		{"Saturday", Saturday},
		{"sun", Sunday},
	}
	for _, tt := range tests {
		got, err := ParseWeekday(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "t", "mo", "funday", "mondays"} {
		_, err := ParseWeekday(bad)
		assert.Error(t, err, bad)
	}
}

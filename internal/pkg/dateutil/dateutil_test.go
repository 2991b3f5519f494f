package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocalDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "2025-03-10", want: "2025-03-10"},
		{in: " 2025-03-10 ", want: "2025-03-10"},
		{in: "2025-03-10T23:30:00Z", want: "2025-03-10"},
		{in: "2025-03-10T00:30:00+14:00", want: "2025-03-10"},
		{in: "2025-03-10 08:00", want: "2025-03-10"},
	}

	for _, tc := range cases {
		got, err := ParseLocalDate(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got.Format(Layout), tc.in)
		assert.Equal(t, time.Local, got.Location())
		assert.Equal(t, 0, got.Hour())
	}
}

func TestParseLocalDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "2025-3-10", "2025-02-30", "10/03/2025", "2025-03-10X", "tomorrow"} {
		_, err := ParseLocalDate(in)
		assert.Error(t, err, in)
	}
}

func TestNightsBetween(t *testing.T) {
	in, _ := ParseLocalDate("2025-03-10")
	out, _ := ParseLocalDate("2025-03-13")
	assert.Equal(t, 3, NightsBetween(in, out))
	assert.Equal(t, 0, NightsBetween(in, in))
	assert.Equal(t, -3, NightsBetween(out, in))
}

func TestNightsBetween_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	in := time.Date(2025, 3, 8, 0, 0, 0, 0, loc)
	out := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	assert.Equal(t, 47.0, out.Sub(in).Hours())
	assert.Equal(t, 2, NightsBetween(in, out))
}

func TestNormalize_KeepsCalendarFields(t *testing.T) {
	utcMidnight := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	got := Normalize(utcMidnight)
	assert.Equal(t, "2025-03-10", got.Format(Layout))
	assert.Equal(t, time.Local, got.Location())
	assert.True(t, Normalize(time.Time{}).IsZero())
}

func TestOverlaps(t *testing.T) {
	d := func(s string) time.Time {
		v, err := ParseLocalDate(s)
		require.NoError(t, err)
		return v
	}

	assert.True(t, Overlaps(d("2025-03-10"), d("2025-03-13"), d("2025-03-12"), d("2025-03-14")))
	assert.True(t, Overlaps(d("2025-03-10"), d("2025-03-13"), d("2025-03-11"), d("2025-03-12")))
	assert.False(t, Overlaps(d("2025-03-10"), d("2025-03-13"), d("2025-03-13"), d("2025-03-15")))
	assert.False(t, Overlaps(d("2025-03-13"), d("2025-03-15"), d("2025-03-10"), d("2025-03-13")))
}

func TestContains(t *testing.T) {
	start, _ := ParseLocalDate("2025-03-10")
	end, _ := ParseLocalDate("2025-03-13")

	assert.True(t, Contains(start, end, start))
	assert.True(t, Contains(start, end, AddDays(start, 2)))
	assert.False(t, Contains(start, end, end))
	assert.False(t, Contains(start, end, AddDays(start, -1)))
}

func TestClock(t *testing.T) {
	m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)
	assert.Equal(t, "09:30", FormatClock(m))
	assert.Equal(t, "00:15", FormatClock(24*60+15))

	for _, bad := range []string{"9:30", "24:00", "12:60", "ab:cd", "1230", "+1:00", "-1:30", "12:+5", "1 :00", "１２:00"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestWeekdayNameAndDaysInRange(t *testing.T) {
	start, _ := ParseLocalDate("2025-03-10")
	end, _ := ParseLocalDate("2025-03-16")

	days := DaysInRange(start, end)
	require.Len(t, days, 7)
	assert.Equal(t, "monday", WeekdayName(days[0]))
	assert.Equal(t, "sunday", WeekdayName(days[6]))
	assert.Nil(t, DaysInRange(end, start))
}

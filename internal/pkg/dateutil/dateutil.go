// Package dateutil keeps every calendar-day computation in one representation:
// midnight in the server's local timezone.
package dateutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// Layout is the wire format for calendar days.
	Layout = "2006-01-02"

	// ClockLayout is the wire format for times of day.
	ClockLayout = "15:04"

	minutesPerDay = 24 * 60
)

// ParseLocalDate reads "YYYY-MM-DD" (optionally followed by a time part, as in
// an ISO timestamp) as a calendar day in the server's local timezone. Any
// time-of-day or offset is ignored.
func ParseLocalDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(Layout) {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	if len(s) > len(Layout) {
		if sep := s[len(Layout)]; sep != 'T' && sep != ' ' {
			return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
		}
		s = s[:len(Layout)]
	}

	t, err := time.ParseInLocation(Layout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// NightsBetween returns the number of nights between two days. Rounding absorbs
// the 23h/25h days around DST changes. Callers reject values below one.
func NightsBetween(checkIn, checkOut time.Time) int {
	return int(math.Round(checkOut.Sub(checkIn).Hours() / 24))
}

// Normalize returns local midnight of the calendar day carried by t's own
// year/month/day fields. Drivers return DATE columns at UTC midnight, so the
// fields are read as-is instead of converting t to local time first.
func Normalize(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// DayOf returns local midnight of the instant t.
func DayOf(t time.Time) time.Time {
	return Normalize(t.In(time.Local))
}

// Today returns local midnight of the current day.
func Today() time.Time {
	return DayOf(time.Now())
}

// AddDays moves a day by n calendar days.
func AddDays(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, n)
}

// Format renders a day in Layout.
func Format(day time.Time) string {
	return day.Format(Layout)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share at least
// one instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Contains reports whether day falls within [start, end).
func Contains(start, end, day time.Time) bool {
	return !day.Before(start) && day.Before(end)
}

// WeekdayName returns the lowercase English weekday name used in service schedules.
func WeekdayName(day time.Time) string {
	return strings.ToLower(day.Weekday().String())
}

// ParseClock parses "HH:MM" into minutes since midnight. Only ASCII digits
// are accepted in either field.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != ':' || !digits(s[:2]) || !digits(s[3:]) {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:])
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return h*60 + m, nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatClock renders minutes since midnight as "HH:MM". Values past midnight wrap.
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DaysInRange returns every day from start to end inclusive.
func DaysInRange(start, end time.Time) []time.Time {
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = AddDays(d, 1) {
		days = append(days, d)
	}
	return days
}

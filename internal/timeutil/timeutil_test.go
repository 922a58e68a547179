package timeutil

import (
	"testing"
	"time"
)

func TestPeriodKey(t *testing.T) {
	// 2024-03-04 is a Monday in ISO week 10.
	instant := time.Date(2024, time.March, 4, 15, 30, 0, 0, time.Local)

	cases := []struct {
		interval Interval
		want     string
	}{
		{IntervalDay, "2024-03-04"},
		{IntervalWeek, "2024-W10"},
		{IntervalMonth, "2024-03"},
	}

	for _, tc := range cases {
		got := PeriodKey(instant, tc.interval)
		if got != tc.want {
			t.Errorf("PeriodKey(%s): got %q, want %q", tc.interval, got, tc.want)
		}
	}
}

func TestPeriodKeyISOWeekYearBoundary(t *testing.T) {
	// 2024-12-30 belongs to ISO week 1 of 2025.
	instant := time.Date(2024, time.December, 30, 9, 0, 0, 0, time.Local)

	got := PeriodKey(instant, IntervalWeek)
	if got != "2025-W01" {
		t.Errorf("got %q, want 2025-W01", got)
	}
}

func TestFormatClock(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{61 * time.Second, "00:01:01"},
		{2*time.Hour + 5*time.Minute + 9*time.Second, "02:05:09"},
		{-time.Second, "00:00:00"},
	}

	for _, tc := range cases {
		if got := FormatClock(tc.d); got != tc.want {
			t.Errorf("FormatClock(%v): got %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestMinsToHoursAndMins(t *testing.T) {
	hrs, mins := MinsToHoursAndMins(135)
	if hrs != 2 || mins != 15 {
		t.Errorf("got %d:%d, want 2:15", hrs, mins)
	}
}

package timecalc_test

import (
	"testing"
	"time"

	"github.com/rananjaysingh20/work-tracker-cli/internal/timecalc"
)

func TestDurationHours(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  float64
	}{
		{"full workday", "2024-01-01T09:00:00Z", "2024-01-01T17:30:00Z", 8.5},
		{"quarter hour", "2024-01-01T09:00:00Z", "2024-01-01T09:15:00Z", 0.25},
		{"zero length", "2024-01-01T09:00:00Z", "2024-01-01T09:00:00Z", 0},
		{"end before start clamps to zero", "2024-01-01T17:00:00Z", "2024-01-01T09:00:00Z", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := time.Parse(time.RFC3339, tt.start)
			if err != nil {
				t.Fatal(err)
			}
			end, err := time.Parse(time.RFC3339, tt.end)
			if err != nil {
				t.Fatal(err)
			}
			if got := timecalc.DurationHours(start, end); got != tt.want {
				t.Errorf("DurationHours(%s, %s) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "0h"},
		{0.25, "0.25h"},
		{1.5, "1.5h"},
		{8, "8h"},
		{8.5, "8.5h"},
	}
	for _, tt := range tests {
		if got := timecalc.FormatHours(tt.hours); got != tt.want {
			t.Errorf("FormatHours(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := timecalc.ParseClock(date, "17:30")
	if err != nil {
		t.Fatalf("ParseClock: %v", err)
	}
	want := time.Date(2024, 1, 1, 17, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseClock = %v, want %v", got, want)
	}

	if _, err := timecalc.ParseClock(date, "25:99"); err == nil {
		t.Error("expected error for invalid clock value")
	}
}

func TestWeekRange(t *testing.T) {
	// 2024-01-05 is a Friday.
	fri := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	mon, sun := timecalc.WeekRange(fri)
	if mon.Format("2006-01-02") != "2024-01-01" {
		t.Errorf("week start = %s, want 2024-01-01", mon.Format("2006-01-02"))
	}
	if sun.Format("2006-01-02") != "2024-01-07" {
		t.Errorf("week end = %s, want 2024-01-07", sun.Format("2006-01-02"))
	}

	// Sunday belongs to the same ISO week.
	sunday := time.Date(2024, 1, 7, 23, 0, 0, 0, time.UTC)
	mon2, _ := timecalc.WeekRange(sunday)
	if !mon2.Equal(mon) {
		t.Errorf("Sunday week start = %v, want %v", mon2, mon)
	}
}

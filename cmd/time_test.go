package cmd

import (
	"testing"
	"time"

	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
)

func TestWeekTotal(t *testing.T) {
	// 2026-08-28 is a Friday; its week runs 2026-08-24 (Mon) to 2026-08-30 (Sun).
	ref := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	entries := []model.TimeEntry{
		{Date: "2026-08-24", Duration: 2},    // Monday, in week
		{Date: "2026-08-28", Duration: 8.5},  // Friday, in week
		{Date: "2026-08-30", Duration: 1.25}, // Sunday, in week
		{Date: "2026-08-23", Duration: 4},    // previous Sunday, out
		{Date: "2026-08-31", Duration: 3},    // next Monday, out
		{Date: "garbage", Duration: 99},      // unparseable, skipped
	}

	if got, want := weekTotal(entries, ref), 11.75; got != want {
		t.Errorf("weekTotal = %v, want %v", got, want)
	}
}

func TestWeekTotalEmpty(t *testing.T) {
	ref := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	if got := weekTotal(nil, ref); got != 0 {
		t.Errorf("weekTotal(nil) = %v, want 0", got)
	}
}

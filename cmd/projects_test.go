package cmd

import (
	"testing"
	"time"
)

func TestParseDateFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantNil bool
		wantErr bool
	}{
		{"", "", true, false},
		{"2026-08-28", "2026-08-28", false, false},
		{"28-08-2026", "", false, true},
		{"2026-13-01", "", false, true},
		{"not a date", "", false, true},
	}
	for _, tt := range tests {
		got, err := parseDateFlag(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseDateFlag(%q) err = nil, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDateFlag(%q): %v", tt.in, err)
			continue
		}
		if tt.wantNil {
			if got != nil {
				t.Errorf("parseDateFlag(%q) = %v, want nil", tt.in, got)
			}
			continue
		}
		if got == nil || got.Format("2006-01-02") != tt.want {
			t.Errorf("parseDateFlag(%q) = %v, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate(nil); got != "-" {
		t.Errorf("formatDate(nil) = %q, want %q", got, "-")
	}
	d := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	if got := formatDate(&d); got != "2026-08-28" {
		t.Errorf("formatDate = %q, want %q", got, "2026-08-28")
	}
}

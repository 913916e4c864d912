package utils

import (
	"testing"
)

func TestParseDateRoundTrip(t *testing.T) {
	d, err := ParseDate(" 2026-03-05 ")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if got := FormatDate(d); got != "2026-03-05" {
		t.Errorf("FormatDate = %q, want 2026-03-05", got)
	}
}

func TestParseDateTime(t *testing.T) {
	dt, err := ParseDateTime("2026-03-05 14:30:00")
	if err != nil {
		t.Fatalf("ParseDateTime: %v", err)
	}
	if dt.Hour() != 14 || dt.Minute() != 30 {
		t.Errorf("unexpected time: %v", dt)
	}
	if _, err := ParseDateTime("2026-03-05"); err == nil {
		t.Error("ParseDateTime should reject date-only input")
	}
}

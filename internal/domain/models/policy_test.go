package models

import (
	"testing"
	"time"
)

func TestDaysBefore(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		departure time.Time
		want      int
	}{
		{now.Add(5*24*time.Hour + time.Hour), 5},
		{now.Add(24 * time.Hour), 1},
		{now.Add(12 * time.Hour), 0},
		{now.Add(-30 * time.Hour), -1},
	}
	for _, tc := range cases {
		d := Departure{DepartureDate: tc.departure}
		if got := d.DaysBefore(now); got != tc.want {
			t.Errorf("DaysBefore(%v) = %d, want %d", tc.departure, got, tc.want)
		}
	}
}

func TestRangeOverlaps(t *testing.T) {
	max6 := 6
	max2 := 2
	a := RefundPolicy{MinDaysBefore: 3, MaxDaysBefore: &max6}
	b := RefundPolicy{MinDaysBefore: 0, MaxDaysBefore: &max2}
	open := RefundPolicy{MinDaysBefore: 7}

	if a.RangeOverlaps(b) || b.RangeOverlaps(a) {
		t.Error("disjoint bands [0,2] and [3,6] should not overlap")
	}
	if a.RangeOverlaps(open) || open.RangeOverlaps(a) {
		t.Error("[3,6] and [7,∞) should not overlap")
	}
	c := RefundPolicy{MinDaysBefore: 5}
	if !a.RangeOverlaps(c) || !c.RangeOverlaps(a) {
		t.Error("[3,6] and [5,∞) should overlap")
	}
}

func TestEffectiveWindow(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 6, 0)
	p := RefundPolicy{EffectiveFrom: from, EffectiveTo: &to}

	if p.EffectiveAt(from.Add(-time.Second)) {
		t.Error("before EffectiveFrom should be outside the window")
	}
	if !p.EffectiveAt(from) {
		t.Error("EffectiveFrom itself should be inside the window")
	}
	if p.EffectiveAt(to) {
		t.Error("EffectiveTo boundary is exclusive")
	}
}

package models

import "time"

// RefundPolicy is one tiered refund rule for a cancellation category.
// MaxDaysBefore == nil means the tier is open-ended upward. Percent fields are
// whole percentages (0-100); FlatFee is integer rupiah.
//
// Superseded policies are soft-expired via EffectiveTo, never deleted while a
// refund request still references them.
type RefundPolicy struct {
	ID            int64
	Category      CancellationCategory
	MinDaysBefore int
	MaxDaysBefore *int
	RefundPercent int
	FlatFee       int64
	FeePercent    int
	Priority      int
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	Active        bool
}

// EffectiveAt reports whether asOf falls inside the policy's effective window.
func (p RefundPolicy) EffectiveAt(asOf time.Time) bool {
	if asOf.Before(p.EffectiveFrom) {
		return false
	}
	if p.EffectiveTo != nil && !asOf.Before(*p.EffectiveTo) {
		return false
	}
	return true
}

// ContainsDays reports whether daysBefore falls inside [MinDaysBefore, MaxDaysBefore].
func (p RefundPolicy) ContainsDays(daysBefore int) bool {
	if daysBefore < p.MinDaysBefore {
		return false
	}
	if p.MaxDaysBefore != nil && daysBefore > *p.MaxDaysBefore {
		return false
	}
	return true
}

// RangeOverlaps reports whether the day-ranges of two policies intersect.
func (p RefundPolicy) RangeOverlaps(other RefundPolicy) bool {
	if p.MaxDaysBefore != nil && other.MinDaysBefore > *p.MaxDaysBefore {
		return false
	}
	if other.MaxDaysBefore != nil && p.MinDaysBefore > *other.MaxDaysBefore {
		return false
	}
	return true
}

// WindowOverlaps reports whether the effective windows of two policies intersect.
func (p RefundPolicy) WindowOverlaps(other RefundPolicy) bool {
	if p.EffectiveTo != nil && !other.EffectiveFrom.Before(*p.EffectiveTo) {
		return false
	}
	if other.EffectiveTo != nil && !p.EffectiveFrom.Before(*other.EffectiveTo) {
		return false
	}
	return true
}

// RefundBreakdown is the computed outcome of applying a policy to a charged
// amount. All values are integer rupiah rounded down.
type RefundBreakdown struct {
	RefundAmount int64
	Fee          int64
	NetPayable   int64
}

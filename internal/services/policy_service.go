package services

import (
	"context"
	"time"

	"tourops/internal/domain"
	"tourops/internal/domain/models"
)

// PolicyStore is the persistence contract for refund policies.
type PolicyStore interface {
	GetByID(ctx context.Context, id int64) (models.RefundPolicy, error)
	ListActive(ctx context.Context, category models.CancellationCategory) ([]models.RefundPolicy, error)
	Create(ctx context.Context, p models.RefundPolicy) (int64, error)
	Expire(ctx context.Context, id int64, effectiveTo time.Time) error
}

// PolicyService resolves which refund tier applies to a cancellation and
// guards the non-overlap invariant when operators author new tiers.
type PolicyService struct {
	Policies PolicyStore
}

// Resolve picks the single active policy of the category whose effective
// window contains asOf and whose day-range contains daysBefore. Lowest
// priority wins; a tie at the winning priority is a configuration error and
// surfaces as AmbiguousPolicyError, never a silent pick.
func (s PolicyService) Resolve(ctx context.Context, category models.CancellationCategory, daysBefore int, asOf time.Time) (models.RefundPolicy, error) {
	if daysBefore < 0 {
		daysBefore = 0
	}

	active, err := s.Policies.ListActive(ctx, category)
	if err != nil {
		return models.RefundPolicy{}, err
	}

	var matches []models.RefundPolicy
	for _, p := range active {
		if p.EffectiveAt(asOf) && p.ContainsDays(daysBefore) {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return models.RefundPolicy{}, domain.NotFoundError{Resource: "refund policy"}
	}

	// ListActive orders by priority ascending.
	best := matches[0]
	if len(matches) > 1 && matches[1].Priority == best.Priority {
		ids := []int64{}
		for _, m := range matches {
			if m.Priority == best.Priority {
				ids = append(ids, m.ID)
			}
		}
		return models.RefundPolicy{}, domain.AmbiguousPolicyError{
			Category:   string(category),
			DaysBefore: daysBefore,
			PolicyIDs:  ids,
		}
	}
	return best, nil
}

// ComputeRefund applies a policy to the charged amount. All arithmetic is
// integer rupiah rounded down; the net payable never goes negative.
func ComputeRefund(p models.RefundPolicy, originalAmount int64) models.RefundBreakdown {
	if originalAmount <= 0 {
		return models.RefundBreakdown{}
	}
	refund := originalAmount * int64(p.RefundPercent) / 100
	fee := p.FlatFee + refund*int64(p.FeePercent)/100
	net := refund - fee
	if net < 0 {
		net = 0
	}
	return models.RefundBreakdown{
		RefundAmount: refund,
		Fee:          fee,
		NetPayable:   net,
	}
}

// CreatePolicy validates and stores a refund tier. An active tier whose
// day-range and effective window both overlap an existing active tier of the
// same category is rejected, as is a duplicate priority.
func (s PolicyService) CreatePolicy(ctx context.Context, p models.RefundPolicy) (int64, error) {
	if err := validatePolicy(p); err != nil {
		return 0, err
	}
	if p.Active {
		if err := s.checkConflicts(ctx, p); err != nil {
			return 0, err
		}
	}
	return s.Policies.Create(ctx, p)
}

// ExpirePolicy soft-retires a policy effective asOf.
func (s PolicyService) ExpirePolicy(ctx context.Context, id int64, asOf time.Time) error {
	return s.Policies.Expire(ctx, id, asOf)
}

func validatePolicy(p models.RefundPolicy) error {
	switch p.Category {
	case models.CustomerCancel, models.OperatorCancel, models.AutoCancel:
	default:
		return domain.ValidationError{Field: "category", Msg: "unknown cancellation category"}
	}
	if p.MinDaysBefore < 0 {
		return domain.ValidationError{Field: "min_days_before", Msg: "must be >= 0"}
	}
	if p.MaxDaysBefore != nil && *p.MaxDaysBefore < p.MinDaysBefore {
		return domain.ValidationError{Field: "max_days_before", Msg: "must be >= min_days_before"}
	}
	if p.RefundPercent < 0 || p.RefundPercent > 100 {
		return domain.ValidationError{Field: "refund_percent", Msg: "must be between 0 and 100"}
	}
	if p.FeePercent < 0 || p.FeePercent > 100 {
		return domain.ValidationError{Field: "fee_percent", Msg: "must be between 0 and 100"}
	}
	if p.FlatFee < 0 {
		return domain.ValidationError{Field: "flat_fee", Msg: "must be >= 0"}
	}
	if p.Priority <= 0 {
		return domain.ValidationError{Field: "priority", Msg: "must be >= 1"}
	}
	if p.EffectiveFrom.IsZero() {
		return domain.ValidationError{Field: "effective_from", Msg: "required"}
	}
	if p.EffectiveTo != nil && !p.EffectiveTo.After(p.EffectiveFrom) {
		return domain.ValidationError{Field: "effective_to", Msg: "must be after effective_from"}
	}
	return nil
}

func (s PolicyService) checkConflicts(ctx context.Context, p models.RefundPolicy) error {
	active, err := s.Policies.ListActive(ctx, p.Category)
	if err != nil {
		return err
	}
	for _, other := range active {
		if other.ID == p.ID {
			continue
		}
		if !p.WindowOverlaps(other) {
			continue
		}
		if p.RangeOverlaps(other) {
			return domain.PolicyConflictError{
				Category: string(p.Category),
				Msg:      "day range overlaps active policy",
			}
		}
		if p.Priority == other.Priority {
			return domain.PolicyConflictError{
				Category: string(p.Category),
				Msg:      "priority already used by active policy",
			}
		}
	}
	return nil
}

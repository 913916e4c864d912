package services

import (
	"context"

	"tourops/internal/db"
	"tourops/internal/domain"
	"tourops/internal/domain/models"
)

// AccountStore is the persistence contract for operator money state.
// ApplyEntry pairs the balance write with the (booking, op) idempotency claim
// in one transaction.
type AccountStore interface {
	GetByID(ctx context.Context, id int64) (models.OperatorAccount, error)
	ApplyEntry(ctx context.Context, bookingID int64, kind models.OpKind, accountID int64, held, withdrawable int64, expectedRevision int64) error
}

// RevenueService is the revenue ledger: held balance in, matured money out.
// Every mutation is keyed by (booking, op kind) and applied at most once, so
// crashed orchestrations can re-drive safely.
type RevenueService struct {
	Accounts    AccountStore
	MaxAttempts int
}

// Hold parks newly earned revenue in the held balance. Called once when a
// booking becomes Confirmed.
func (s RevenueService) Hold(ctx context.Context, operatorID, bookingID, amount int64) error {
	if amount <= 0 {
		return domain.ValidationError{Field: "amount", Msg: "must be positive"}
	}
	return db.WithRetry(ctx, s.MaxAttempts, func() error {
		a, err := s.Accounts.GetByID(ctx, operatorID)
		if err != nil {
			return err
		}
		return s.Accounts.ApplyEntry(ctx, bookingID, models.OpRevenueHold, operatorID,
			a.HeldBalance+amount, a.WithdrawableBalance, a.Revision)
	})
}

// Settle moves matured revenue from held to withdrawable. Settling more than
// is held is refused outright.
func (s RevenueService) Settle(ctx context.Context, operatorID, bookingID, amount int64) error {
	if amount <= 0 {
		return domain.ValidationError{Field: "amount", Msg: "must be positive"}
	}
	return db.WithRetry(ctx, s.MaxAttempts, func() error {
		a, err := s.Accounts.GetByID(ctx, operatorID)
		if err != nil {
			return err
		}
		if amount > a.HeldBalance {
			return domain.InsufficientHeldError{
				OperatorID: operatorID,
				Requested:  amount,
				Held:       a.HeldBalance,
			}
		}
		return s.Accounts.ApplyEntry(ctx, bookingID, models.OpRevenueSettle, operatorID,
			a.HeldBalance-amount, a.WithdrawableBalance+amount, a.Revision)
	})
}

// Adjust removes refunded revenue from the held balance before it matures.
// The decrement clamps at zero: the clamped portion is applied and the
// shortfall reported as PartialAdjustmentError so an operator can reconcile.
func (s RevenueService) Adjust(ctx context.Context, operatorID, bookingID, amount int64) error {
	if amount <= 0 {
		return domain.ValidationError{Field: "amount", Msg: "must be positive"}
	}
	return db.WithRetry(ctx, s.MaxAttempts, func() error {
		a, err := s.Accounts.GetByID(ctx, operatorID)
		if err != nil {
			return err
		}
		applied := amount
		if applied > a.HeldBalance {
			applied = a.HeldBalance
		}
		err = s.Accounts.ApplyEntry(ctx, bookingID, models.OpRevenueAdjust, operatorID,
			a.HeldBalance-applied, a.WithdrawableBalance, a.Revision)
		if err != nil {
			return err
		}
		if applied < amount {
			return domain.PartialAdjustmentError{
				OperatorID: operatorID,
				Requested:  amount,
				Adjusted:   applied,
			}
		}
		return nil
	})
}

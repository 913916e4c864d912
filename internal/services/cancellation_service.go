package services

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"tourops/internal/domain"
	"tourops/internal/domain/models"
	"tourops/internal/notify"
	"tourops/internal/utils"
)

// RefundStore is the persistence contract for refund requests.
type RefundStore interface {
	Create(ctx context.Context, rr models.RefundRequest) (int64, error)
	GetByBookingID(ctx context.Context, bookingID int64) (models.RefundRequest, error)
}

// CancellationService drives the cancellation workflow: resolve the refund
// policy, release capacity, pull the refunded portion out of the operator's
// held balance, and record the refund request for payout.
//
// The workflow is resumable. The booking first moves to Cancelling carrying
// the computed refund figures; every side effect is claimed per (booking, op)
// so a crashed or timed-out run can be re-driven without double-charging or
// double-releasing, and the terminal status is written last.
type CancellationService struct {
	Bookings   BookingStore
	Departures DepartureStore
	Capacity   CapacityService
	Policy     PolicyService
	Revenue    RevenueService
	Refunds    RefundStore
	Notifier   notify.Notifier
	RequestID  string

	// Clock is injectable for tests; defaults to time.Now.
	Clock func() time.Time
}

// AutoCancelSummary reports a partial-success batch outcome.
type AutoCancelSummary struct {
	DepartureID int64   `json:"departure_id"`
	Processed   int     `json:"processed"`
	Failed      []int64 `json:"failed,omitempty"`
}

func (s CancellationService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// CancelByCustomer cancels at the customer's request; the refund follows the
// tiered customer-cancel policy for the days remaining before departure.
func (s CancellationService) CancelByCustomer(ctx context.Context, bookingID int64, reason string) (models.Booking, error) {
	return s.cancel(ctx, bookingID, models.CustomerCancel, reason)
}

// CancelByOperator cancels on the operator's initiative; the customer is made
// whole, so the policy family mandates a full refund.
func (s CancellationService) CancelByOperator(ctx context.Context, bookingID int64, reason string) (models.Booking, error) {
	return s.cancel(ctx, bookingID, models.OperatorCancel, reason)
}

// AutoCancel applies operator-cancel treatment to every remaining booking on
// a departure. A failing booking does not abort the batch; it lands in the
// summary and a later re-run picks it up where it stopped.
func (s CancellationService) AutoCancel(ctx context.Context, departureID int64, reason string) (AutoCancelSummary, error) {
	return s.cancelDeparture(ctx, departureID, models.AutoCancel, reason)
}

// CancelDeparture is the operator pulling an entire departure. Every booking
// still standing gets the operator-cancel refund treatment.
func (s CancellationService) CancelDeparture(ctx context.Context, departureID int64, reason string) (AutoCancelSummary, error) {
	return s.cancelDeparture(ctx, departureID, models.OperatorCancel, reason)
}

func (s CancellationService) cancelDeparture(ctx context.Context, departureID int64, category models.CancellationCategory, reason string) (AutoCancelSummary, error) {
	dep, err := s.Departures.GetByID(ctx, departureID)
	if err != nil {
		return AutoCancelSummary{DepartureID: departureID}, err
	}

	bookings, err := s.Bookings.ListCancellable(ctx, departureID)
	if err != nil {
		return AutoCancelSummary{DepartureID: departureID}, err
	}

	summary := AutoCancelSummary{DepartureID: departureID}
	for _, b := range bookings {
		if _, err := s.cancel(ctx, b.ID, category, reason); err != nil {
			utils.LogEvent(s.RequestID, "cancellation", "batch_booking_failed",
				"booking_id="+strconv.FormatInt(b.ID, 10)+" err="+err.Error())
			summary.Failed = append(summary.Failed, b.ID)
			continue
		}
		summary.Processed++
	}

	if len(summary.Failed) == 0 && dep.Status == models.DepartureScheduled {
		// A lost race here just means another run retired the departure.
		if err := s.markDepartureCancelled(ctx, departureID); err != nil && !domain.IsConflict(err) {
			return summary, err
		}
	}
	return summary, nil
}

func (s CancellationService) markDepartureCancelled(ctx context.Context, departureID int64) error {
	dep, err := s.Departures.GetByID(ctx, departureID)
	if err != nil {
		return err
	}
	if dep.Status == models.DepartureCancelled {
		return nil
	}
	return s.Departures.MarkCancelled(ctx, dep.ID, dep.Revision)
}

func (s CancellationService) cancel(ctx context.Context, bookingID int64, category models.CancellationCategory, reason string) (models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}

	now := s.now()

	switch b.Status {
	case models.BookingConfirmed:
		b, err = s.checkpoint(ctx, b, category, reason, now)
		if err != nil {
			return b, err
		}
	case models.BookingCancelling:
		// Re-drive: keep the figures and category the first run computed.
		category = b.CancelCategory
	case models.BookingPending:
		return b, domain.StateError{BookingID: b.ID, From: string(b.Status), To: string(category.TerminalStatus())}
	default:
		// Terminal already. The second call is an idempotent no-op.
		return b, domain.AlreadyProcessedError{BookingID: b.ID, Op: "cancel"}
	}

	// Give the seats back. A claim hit means an earlier run already did.
	err = s.Capacity.Release(ctx, b.ID, b.DepartureID, b.GuestCount)
	if err != nil && !domain.IsAlreadyProcessed(err) {
		return b, err
	}

	// Pull the refunded portion back out of the operator's held balance.
	if b.NetPayable > 0 {
		err = s.Revenue.Adjust(ctx, b.OperatorID, b.ID, b.NetPayable)
		switch {
		case err == nil, domain.IsAlreadyProcessed(err):
		case domain.IsPartialAdjustment(err):
			// The clamped portion was applied; flag it and keep going so the
			// customer's refund is still recorded.
			utils.LogEvent(s.RequestID, "cancel", "partial_adjustment", err.Error())
		default:
			return b, err
		}
	}

	// Record the refund for the payout pipeline. One active request per
	// booking; a duplicate insert is a completed earlier step.
	rr := models.RefundRequest{
		BookingID:       b.ID,
		ReferenceNo:     uuid.NewString(),
		RequestedAmount: b.NetPayable,
		AppliedPolicyID: b.AppliedPolicyID,
		Reason:          reason,
	}
	if _, err = s.Refunds.Create(ctx, rr); err != nil {
		if !domain.IsAlreadyProcessed(err) {
			return b, err
		}
		// The first run recorded the request; carry its reference forward so
		// the re-driven run emits the same number.
		if existing, gerr := s.Refunds.GetByBookingID(ctx, b.ID); gerr == nil {
			rr = existing
		}
	}

	// Terminal state last, so any crash above re-drives through the guards.
	fresh, err := s.Bookings.GetByID(ctx, b.ID)
	if err != nil {
		return b, err
	}
	if !fresh.Status.Terminal() {
		fresh.Status = category.TerminalStatus()
		fresh.CancelledAt = &now
		if err := s.Bookings.SaveCancelState(ctx, fresh, fresh.Revision); err != nil {
			return fresh, err
		}
	}

	if s.Notifier != nil {
		s.Notifier.BookingCancelled(notify.BookingCancelledEvent{
			BookingID:    fresh.ID,
			Category:     string(category),
			RefundAmount: fresh.NetPayable,
			Reason:       reason,
		})
		s.Notifier.RefundComputed(notify.RefundComputedEvent{
			BookingID:   fresh.ID,
			ReferenceNo: rr.ReferenceNo,
			NetPayable:  fresh.NetPayable,
		})
	}
	utils.LogEvent(s.RequestID, "cancel", "done",
		"booking_id="+strconv.FormatInt(fresh.ID, 10)+" category="+string(category))
	return fresh, nil
}

// checkpoint resolves the policy, computes the refund and writes the booking
// into Cancelling with the figures attached. Everything after this point
// reuses the stored numbers, so a re-drive cannot recompute differently.
func (s CancellationService) checkpoint(ctx context.Context, b models.Booking, category models.CancellationCategory, reason string, now time.Time) (models.Booking, error) {
	dep, err := s.Departures.GetByID(ctx, b.DepartureID)
	if err != nil {
		return b, err
	}

	days := dep.DaysBefore(now)
	if days < 0 {
		days = 0
	}

	var breakdown models.RefundBreakdown
	policy, err := s.Policy.Resolve(ctx, category, days, now)
	switch {
	case err == nil:
		breakdown = ComputeRefund(policy, b.AmountCharged)
	case domain.IsNotFound(err) && category != models.CustomerCancel:
		// Operator- and auto-cancel mandate making the customer whole even
		// when no tier is configured.
		breakdown = models.RefundBreakdown{
			RefundAmount: b.AmountCharged,
			NetPayable:   b.AmountCharged,
		}
	default:
		return b, err
	}

	b.Status = models.BookingCancelling
	b.CancelCategory = category
	b.CancelReason = reason
	b.AppliedPolicyID = policy.ID
	b.RefundAmount = breakdown.RefundAmount
	b.RefundFee = breakdown.Fee
	b.NetPayable = breakdown.NetPayable

	if err := s.Bookings.SaveCancelState(ctx, b, b.Revision); err != nil {
		return b, err
	}
	b.Revision++
	return b, nil
}

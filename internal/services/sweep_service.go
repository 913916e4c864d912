package services

import (
	"context"
	"strconv"
	"time"

	"tourops/internal/domain"
	"tourops/internal/notify"
	"tourops/internal/utils"
)

// SweepService hosts the scheduled entry points: the settlement sweep that
// matures held revenue into wallets and the auto-cancel scan that retires
// under-booked departures. Both are idempotent and safe to re-invoke for the
// same asOf; the per-booking op claims make repeats no-ops.
type SweepService struct {
	Bookings   BookingStore
	Departures DepartureStore
	Revenue    RevenueService
	Cancel     CancellationService
	Notifier   notify.Notifier
	RequestID  string

	MaturityWindow time.Duration
	MinRatio       float64
	Cutoff         time.Duration
}

// SettlementSummary reports one settlement sweep run.
type SettlementSummary struct {
	AsOf    time.Time `json:"as_of"`
	Settled int       `json:"settled"`
	Failed  []int64   `json:"failed,omitempty"`
}

// RunSettlementSweep promotes held amounts to withdrawable for every booking
// whose tour completed at least the maturity window before asOf, exactly once
// per booking. Confirmed bookings settle the full charge; cancelled ones
// settle the retained remainder the refund adjustment left in the held
// balance.
func (s SweepService) RunSettlementSweep(ctx context.Context, asOf time.Time) (SettlementSummary, error) {
	summary := SettlementSummary{AsOf: asOf}

	maturedBefore := asOf.Add(-s.MaturityWindow)
	bookings, err := s.Bookings.ListSettleable(ctx, maturedBefore)
	if err != nil {
		return summary, err
	}

	for _, b := range bookings {
		amount := b.SettleableAmount()
		if amount <= 0 {
			continue
		}
		err := s.Revenue.Settle(ctx, b.OperatorID, b.ID, amount)
		switch {
		case err == nil:
			summary.Settled++
			if s.Notifier != nil {
				s.Notifier.RevenueSettled(notify.RevenueSettledEvent{
					BookingID:  b.ID,
					OperatorID: b.OperatorID,
					Amount:     amount,
				})
			}
		case domain.IsAlreadyProcessed(err):
			// A concurrent sweep got there first.
		default:
			utils.LogEvent(s.RequestID, "settlement", "settle_failed",
				"booking_id="+strconv.FormatInt(b.ID, 10)+" err="+err.Error())
			summary.Failed = append(summary.Failed, b.ID)
		}
	}

	utils.LogEvent(s.RequestID, "settlement", "sweep_done",
		"settled="+strconv.Itoa(summary.Settled)+" failed="+strconv.Itoa(len(summary.Failed)))
	return summary, nil
}

// RunAutoCancelScan cancels departures that stayed under the minimum booked
// ratio past the lead-time cutoff. Each departure's batch reports partial
// success independently.
func (s SweepService) RunAutoCancelScan(ctx context.Context, asOf time.Time) ([]AutoCancelSummary, error) {
	cutoff := asOf.Add(s.Cutoff)
	departures, err := s.Departures.ListScheduledBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	var out []AutoCancelSummary
	for _, dep := range departures {
		if dep.MaxSeats <= 0 {
			continue
		}
		ratio := float64(dep.BookedSeats) / float64(dep.MaxSeats)
		if ratio >= s.MinRatio {
			continue
		}
		summary, err := s.Cancel.AutoCancel(ctx, dep.ID, "departure under minimum bookings")
		if err != nil {
			utils.LogEvent(s.RequestID, "autocancel", "departure_failed",
				"departure_id="+strconv.FormatInt(dep.ID, 10)+" err="+err.Error())
		}
		out = append(out, summary)
	}
	return out, nil
}

package models

import "time"

// BookingStatus enumerates the booking lifecycle. Transitions are monotonic:
// a booking never leaves a terminal Cancelled* state, and Cancelling is the
// checkpoint state the cancellation workflow can resume from.
type BookingStatus string

const (
	BookingPending             BookingStatus = "pending"
	BookingConfirmed           BookingStatus = "confirmed"
	BookingCancelling          BookingStatus = "cancelling"
	BookingCancelledByCustomer BookingStatus = "cancelled_by_customer"
	BookingCancelledByOperator BookingStatus = "cancelled_by_operator"
	BookingAutoCancelled       BookingStatus = "auto_cancelled"
)

// Terminal reports whether the status is final.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingCancelledByCustomer, BookingCancelledByOperator, BookingAutoCancelled:
		return true
	}
	return false
}

// CancellationCategory selects which refund policy family applies.
type CancellationCategory string

const (
	CustomerCancel CancellationCategory = "customer_cancel"
	OperatorCancel CancellationCategory = "operator_cancel"
	AutoCancel     CancellationCategory = "auto_cancel"
)

// TerminalStatus maps a cancellation category to the terminal booking status
// it produces.
func (c CancellationCategory) TerminalStatus() BookingStatus {
	switch c {
	case OperatorCancel:
		return BookingCancelledByOperator
	case AutoCancel:
		return BookingAutoCancelled
	default:
		return BookingCancelledByCustomer
	}
}

// Booking is a customer's reservation on a departure. Amounts are integer
// rupiah. The Refund* fields are written when the booking enters Cancelling so
// a re-driven workflow reuses the originally computed figures.
type Booking struct {
	ID              int64
	DepartureID     int64
	OperatorID      int64
	CustomerName    string
	CustomerPhone   string
	GuestCount      int
	AmountCharged   int64
	Status          BookingStatus
	CancelCategory  CancellationCategory
	CancelReason    string
	AppliedPolicyID int64
	RefundAmount    int64
	RefundFee       int64
	NetPayable      int64
	Revision        int64
	BookedAt        time.Time
	CancelledAt     *time.Time
}

// SettleableAmount is the portion of the charged amount the operator keeps:
// the full charge for a completed booking, the retained remainder (fee plus
// non-refunded share) after a cancellation refund.
func (b Booking) SettleableAmount() int64 {
	return b.AmountCharged - b.NetPayable
}

// OpKind identifies one idempotent side effect of the booking lifecycle.
// Each (booking id, op kind) pair is claimed at most once.
type OpKind string

const (
	OpCapacityRelease OpKind = "capacity_release"
	OpRevenueHold     OpKind = "revenue_hold"
	OpRevenueAdjust   OpKind = "revenue_adjust"
	OpRevenueSettle   OpKind = "revenue_settle"
)

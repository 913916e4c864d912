package models

import "time"

// RefundRequestStatus tracks the payout lifecycle of a refund. Approval and
// payout happen outside the engine; the orchestrator only creates Pending rows.
type RefundRequestStatus string

const (
	RefundPending   RefundRequestStatus = "pending"
	RefundApproved  RefundRequestStatus = "approved"
	RefundRejected  RefundRequestStatus = "rejected"
	RefundCompleted RefundRequestStatus = "completed"
)

// RefundRequest records a computed refund awaiting payout. At most one active
// request exists per booking.
type RefundRequest struct {
	ID              int64
	BookingID       int64
	ReferenceNo     string
	RequestedAmount int64
	ApprovedAmount  int64
	Status          RefundRequestStatus
	AppliedPolicyID int64
	Reason          string
	CreatedAt       time.Time
}

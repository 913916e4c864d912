package services

import (
	"context"
	"strconv"
	"time"

	"tourops/internal/domain"
	"tourops/internal/domain/models"
	"tourops/internal/notify"
	"tourops/internal/utils"
)

// BookingStore is the persistence contract for bookings.
type BookingStore interface {
	GetByID(ctx context.Context, id int64) (models.Booking, error)
	Create(ctx context.Context, b models.Booking) (int64, error)
	ListByDeparture(ctx context.Context, departureID int64) ([]models.Booking, error)
	ListCancellable(ctx context.Context, departureID int64) ([]models.Booking, error)
	ListSettleable(ctx context.Context, maturedBefore time.Time) ([]models.Booking, error)
	Confirm(ctx context.Context, id, expectedRevision int64) error
	SaveCancelState(ctx context.Context, b models.Booking, expectedRevision int64) error
}

// CreateBookingRequest carries the booking intake payload.
type CreateBookingRequest struct {
	DepartureID   int64  `json:"departure_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	GuestCount    int    `json:"guest_count"`
}

// BookingService creates bookings. The row is persisted Pending before any
// seats move, flipped to Confirmed once the reservation sticks, and the
// revenue hold follows. A crash mid-flow always leaves a pending row behind
// to reconcile against rather than orphaned seat counts.
type BookingService struct {
	Bookings   BookingStore
	Departures DepartureStore
	Capacity   CapacityService
	Revenue    RevenueService
	Notifier   notify.Notifier
	RequestID  string
}

func (s BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (models.Booking, error) {
	req.CustomerName = utils.NormalizeSpace(req.CustomerName)
	req.CustomerPhone = utils.TrimOrEmpty(req.CustomerPhone)
	if req.CustomerName == "" {
		return models.Booking{}, domain.ValidationError{Field: "customer_name", Msg: "required"}
	}
	if req.GuestCount <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "guest_count", Msg: "must be positive"}
	}
	if req.DepartureID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "departure_id", Msg: "invalid id"}
	}

	dep, err := s.Departures.GetByID(ctx, req.DepartureID)
	if err != nil {
		return models.Booking{}, err
	}

	b := models.Booking{
		DepartureID:   dep.ID,
		OperatorID:    dep.OperatorID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		GuestCount:    req.GuestCount,
		AmountCharged: dep.PricePerSeat * int64(req.GuestCount),
		Status:        models.BookingPending,
	}
	id, err := s.Bookings.Create(ctx, b)
	if err != nil {
		return models.Booking{}, err
	}
	b.ID = id
	b.Revision = 1

	// The pending row stays behind on a failed reservation; no seats moved.
	if err := s.Capacity.Reserve(ctx, req.DepartureID, req.GuestCount); err != nil {
		utils.LogEvent(s.RequestID, "booking", "reserve_failed",
			"booking_id="+strconv.FormatInt(b.ID, 10)+" err="+err.Error())
		return models.Booking{}, err
	}

	if err := s.Bookings.Confirm(ctx, b.ID, b.Revision); err != nil {
		utils.LogEvent(s.RequestID, "booking", "confirm_failed_after_reserve",
			"booking_id="+strconv.FormatInt(b.ID, 10)+" err="+err.Error())
		if rerr := s.Capacity.Release(ctx, b.ID, b.DepartureID, req.GuestCount); rerr != nil && !domain.IsAlreadyProcessed(rerr) {
			utils.LogEvent(s.RequestID, "booking", "release_failed",
				"booking_id="+strconv.FormatInt(b.ID, 10)+" err="+rerr.Error())
		}
		return models.Booking{}, err
	}
	b.Status = models.BookingConfirmed

	if err := s.Revenue.Hold(ctx, b.OperatorID, b.ID, b.AmountCharged); err != nil && !domain.IsAlreadyProcessed(err) {
		utils.LogEvent(s.RequestID, "booking", "hold_failed",
			"booking_id="+strconv.FormatInt(b.ID, 10)+" err="+err.Error())
		return b, err
	}

	if s.Notifier != nil {
		s.Notifier.BookingConfirmed(notify.BookingConfirmedEvent{
			BookingID:   b.ID,
			DepartureID: b.DepartureID,
			OperatorID:  b.OperatorID,
			Amount:      b.AmountCharged,
		})
	}
	return s.Bookings.GetByID(ctx, b.ID)
}

func (s BookingService) GetBooking(ctx context.Context, id int64) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	return s.Bookings.GetByID(ctx, id)
}

func (s BookingService) ListByDeparture(ctx context.Context, departureID int64) ([]models.Booking, error) {
	if departureID <= 0 {
		return nil, domain.ValidationError{Field: "departure_id", Msg: "invalid id"}
	}
	return s.Bookings.ListByDeparture(ctx, departureID)
}

package services

import (
	"context"
	"time"

	"tourops/internal/db"
	"tourops/internal/domain"
	"tourops/internal/domain/models"
)

// DepartureStore is the persistence contract the capacity ledger needs. All
// saves are conditional on the revision read and fail with a ConflictError on
// mismatch instead of throwing.
type DepartureStore interface {
	GetByID(ctx context.Context, id int64) (models.Departure, error)
	ListScheduledBefore(ctx context.Context, cutoff time.Time) ([]models.Departure, error)
	SaveSeats(ctx context.Context, id int64, bookedSeats int, expectedRevision int64) error
	ReleaseSeats(ctx context.Context, bookingID, departureID int64, bookedSeats int, expectedRevision int64) error
	MarkCancelled(ctx context.Context, id int64, expectedRevision int64) error
}

// CapacityService is the capacity ledger: it owns every mutation of a
// departure's booked-seat counter. The unit of atomicity is one read plus one
// revision-guarded write; no lock is held across the pair.
type CapacityService struct {
	Departures  DepartureStore
	MaxAttempts int
}

// Reserve checks bookedSeats+seats <= maxSeats and increments the counter.
// A stale revision is retried with a fresh read up to MaxAttempts before the
// conflict surfaces to the caller.
func (s CapacityService) Reserve(ctx context.Context, departureID int64, seats int) error {
	if seats <= 0 {
		return domain.ValidationError{Field: "seats", Msg: "must be positive"}
	}
	return db.WithRetry(ctx, s.MaxAttempts, func() error {
		dep, err := s.Departures.GetByID(ctx, departureID)
		if err != nil {
			return err
		}
		if dep.Status != models.DepartureScheduled {
			return domain.ValidationError{Field: "departure", Msg: "no longer bookable"}
		}
		if dep.BookedSeats+seats > dep.MaxSeats {
			return domain.CapacityError{
				DepartureID: departureID,
				Requested:   seats,
				Available:   dep.SeatsLeft(),
			}
		}
		return s.Departures.SaveSeats(ctx, departureID, dep.BookedSeats+seats, dep.Revision)
	})
}

// Release gives seats back on cancellation, floored at zero. The store claims
// the per-booking release op in the same transaction as the decrement, so a
// re-driven workflow gets AlreadyProcessedError instead of releasing twice.
func (s CapacityService) Release(ctx context.Context, bookingID, departureID int64, seats int) error {
	if seats <= 0 {
		return domain.ValidationError{Field: "seats", Msg: "must be positive"}
	}
	return db.WithRetry(ctx, s.MaxAttempts, func() error {
		dep, err := s.Departures.GetByID(ctx, departureID)
		if err != nil {
			return err
		}
		next := dep.BookedSeats - seats
		if next < 0 {
			next = 0
		}
		return s.Departures.ReleaseSeats(ctx, bookingID, departureID, next, dep.Revision)
	})
}

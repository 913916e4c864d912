package models

import "time"

// DepartureStatus tracks whether a departure is still bookable.
type DepartureStatus string

const (
	DepartureScheduled DepartureStatus = "scheduled"
	DepartureCancelled DepartureStatus = "cancelled"
)

// Departure is one dated, bookable occurrence of a tour. BookedSeats only
// mutates through the capacity ledger, guarded by Revision.
type Departure struct {
	ID             int64
	OperatorID     int64
	TourName       string
	DepartureDate  time.Time
	CompletionDate time.Time
	MaxSeats       int
	PricePerSeat   int64
	BookedSeats    int
	Status         DepartureStatus
	Revision       int64
	CreatedAt      time.Time
}

// SeatsLeft returns the remaining bookable seats.
func (d Departure) SeatsLeft() int {
	return d.MaxSeats - d.BookedSeats
}

// DaysBefore returns how many whole days remain between now and the departure
// date. Negative when the departure is in the past.
func (d Departure) DaysBefore(now time.Time) int {
	return int(d.DepartureDate.Sub(now).Hours() / 24)
}

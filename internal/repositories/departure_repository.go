package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tourops/internal/domain"
	"tourops/internal/domain/models"
)

// DepartureRepository persists departures. Seat counters are only written
// through the revision-guarded conditional updates below.
type DepartureRepository struct {
	DB *sql.DB
}

const departureColumns = `id, operator_id, tour_name, departure_date, completion_date,
	max_seats, price_per_seat, booked_seats, status, revision, created_at`

func scanDeparture(row interface{ Scan(...any) error }) (models.Departure, error) {
	var d models.Departure
	err := row.Scan(
		&d.ID,
		&d.OperatorID,
		&d.TourName,
		&d.DepartureDate,
		&d.CompletionDate,
		&d.MaxSeats,
		&d.PricePerSeat,
		&d.BookedSeats,
		&d.Status,
		&d.Revision,
		&d.CreatedAt,
	)
	return d, err
}

func (r DepartureRepository) GetByID(ctx context.Context, id int64) (models.Departure, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+departureColumns+`
		FROM departures
		WHERE id = ?
		LIMIT 1`, id)

	d, err := scanDeparture(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Departure{}, domain.NotFoundError{Resource: "departure", Err: err}
		}
		return models.Departure{}, domain.InternalError{Msg: "get departure", Err: err}
	}
	return d, nil
}

func (r DepartureRepository) Create(ctx context.Context, d models.Departure) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO departures
			(operator_id, tour_name, departure_date, completion_date, max_seats, price_per_seat, booked_seats, status, revision, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, 1, ?)`,
		d.OperatorID, d.TourName, d.DepartureDate, d.CompletionDate, d.MaxSeats, d.PricePerSeat,
		models.DepartureScheduled, time.Now(),
	)
	if err != nil {
		return 0, domain.InternalError{Msg: "insert departure", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.InternalError{Msg: "departure insert id", Err: err}
	}
	return id, nil
}

func (r DepartureRepository) ListByOperator(ctx context.Context, operatorID int64) ([]models.Departure, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+departureColumns+`
		FROM departures
		WHERE operator_id = ?
		ORDER BY departure_date ASC`, operatorID)
	if err != nil {
		return nil, domain.InternalError{Msg: "list departures", Err: err}
	}
	defer rows.Close()

	var out []models.Departure
	for rows.Next() {
		d, err := scanDeparture(rows)
		if err != nil {
			return nil, domain.InternalError{Msg: "scan departure", Err: err}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListScheduledBefore returns scheduled departures whose departure date falls
// before cutoff. Used by the auto-cancel scan.
func (r DepartureRepository) ListScheduledBefore(ctx context.Context, cutoff time.Time) ([]models.Departure, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+departureColumns+`
		FROM departures
		WHERE status = ? AND departure_date <= ?
		ORDER BY departure_date ASC`, models.DepartureScheduled, cutoff)
	if err != nil {
		return nil, domain.InternalError{Msg: "list scheduled departures", Err: err}
	}
	defer rows.Close()

	var out []models.Departure
	for rows.Next() {
		d, err := scanDeparture(rows)
		if err != nil {
			return nil, domain.InternalError{Msg: "scan departure", Err: err}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SaveSeats conditionally writes the booked-seat counter. A zero-row result
// means the revision moved underneath us and the caller must re-read.
func (r DepartureRepository) SaveSeats(ctx context.Context, id int64, bookedSeats int, expectedRevision int64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE departures
		SET booked_seats = ?, revision = revision + 1
		WHERE id = ? AND revision = ?`,
		bookedSeats, id, expectedRevision,
	)
	if err != nil {
		return domain.InternalError{Msg: "save departure seats", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "save departure seats", Err: err}
	}
	if n == 0 {
		return domain.ConflictError{Resource: "departure", Msg: "stale revision"}
	}
	return nil
}

// ReleaseSeats claims the per-booking release op and decrements the seat
// counter in one transaction, so a crashed workflow cannot release twice.
func (r DepartureRepository) ReleaseSeats(ctx context.Context, bookingID, departureID int64, bookedSeats int, expectedRevision int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.InternalError{Msg: "begin release", Err: err}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = claimOp(ctx, tx, bookingID, models.OpCapacityRelease); err != nil {
		return err
	}

	var res sql.Result
	res, err = tx.ExecContext(ctx, `
		UPDATE departures
		SET booked_seats = ?, revision = revision + 1
		WHERE id = ? AND revision = ?`,
		bookedSeats, departureID, expectedRevision,
	)
	if err != nil {
		return domain.InternalError{Msg: "release departure seats", Err: err}
	}
	var n int64
	n, err = res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "release departure seats", Err: err}
	}
	if n == 0 {
		err = domain.ConflictError{Resource: "departure", Msg: "stale revision"}
		return err
	}

	if err = tx.Commit(); err != nil {
		return domain.InternalError{Msg: "commit release", Err: err}
	}
	return nil
}

// MarkCancelled flips a departure out of the bookable pool so the auto-cancel
// scan does not pick it up again.
func (r DepartureRepository) MarkCancelled(ctx context.Context, id int64, expectedRevision int64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE departures
		SET status = ?, revision = revision + 1
		WHERE id = ? AND revision = ?`,
		models.DepartureCancelled, id, expectedRevision,
	)
	if err != nil {
		return domain.InternalError{Msg: "mark departure cancelled", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "mark departure cancelled", Err: err}
	}
	if n == 0 {
		return domain.ConflictError{Resource: "departure", Msg: "stale revision"}
	}
	return nil
}

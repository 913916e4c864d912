package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tourops/internal/db"
	"tourops/internal/domain"
	"tourops/internal/domain/models"
)

// BookingRepository persists bookings. Status transitions go through SaveCancelState,
// which is revision-guarded so two workflows cannot both advance the same booking.
type BookingRepository struct {
	DB *sql.DB
}

const bookingColumns = `id, departure_id, operator_id, customer_name, customer_phone,
	guest_count, amount_charged, status, cancel_category, cancel_reason,
	applied_policy_id, refund_amount, refund_fee, net_payable, revision,
	booked_at, cancelled_at`

func scanBooking(row interface{ Scan(...any) error }) (models.Booking, error) {
	var (
		b           models.Booking
		category    sql.NullString
		reason      sql.NullString
		policyID    sql.NullInt64
		cancelledAt sql.NullTime
	)
	err := row.Scan(
		&b.ID,
		&b.DepartureID,
		&b.OperatorID,
		&b.CustomerName,
		&b.CustomerPhone,
		&b.GuestCount,
		&b.AmountCharged,
		&b.Status,
		&category,
		&reason,
		&policyID,
		&b.RefundAmount,
		&b.RefundFee,
		&b.NetPayable,
		&b.Revision,
		&b.BookedAt,
		&cancelledAt,
	)
	if err != nil {
		return models.Booking{}, err
	}
	b.CancelCategory = models.CancellationCategory(category.String)
	b.CancelReason = reason.String
	b.AppliedPolicyID = policyID.Int64
	b.CancelledAt = db.TimePtr(cancelledAt)
	return b, nil
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = ?
		LIMIT 1`, id)

	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.Booking{}, domain.InternalError{Msg: "get booking", Err: err}
	}
	return b, nil
}

// Create inserts a booking in the caller's status, revision 1. The intake
// flow inserts Pending and flips to Confirmed via Confirm once the seats are
// reserved, so every reservation attempt leaves a row to reconcile against.
func (r BookingRepository) Create(ctx context.Context, b models.Booking) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO bookings
			(departure_id, operator_id, customer_name, customer_phone, guest_count,
			 amount_charged, status, refund_amount, refund_fee, net_payable, revision, booked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, 0, 1, ?)`,
		b.DepartureID, b.OperatorID, b.CustomerName, b.CustomerPhone, b.GuestCount,
		b.AmountCharged, b.Status, time.Now(),
	)
	if err != nil {
		return 0, domain.InternalError{Msg: "insert booking", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.InternalError{Msg: "booking insert id", Err: err}
	}
	return id, nil
}

// Confirm moves a pending booking to Confirmed. The status predicate doubles
// as the guard: a row that is no longer pending (or was concurrently touched)
// reports a conflict instead of silently overwriting.
func (r BookingRepository) Confirm(ctx context.Context, id, expectedRevision int64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, revision = revision + 1
		WHERE id = ? AND revision = ? AND status = ?`,
		models.BookingConfirmed, id, expectedRevision, models.BookingPending,
	)
	if err != nil {
		return domain.InternalError{Msg: "confirm booking", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "confirm booking", Err: err}
	}
	if n == 0 {
		return domain.ConflictError{Resource: "booking", Msg: "not pending or stale revision"}
	}
	return nil
}

func (r BookingRepository) ListByDeparture(ctx context.Context, departureID int64) ([]models.Booking, error) {
	return r.list(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE departure_id = ?
		ORDER BY booked_at ASC`, departureID)
}

// ListCancellable returns bookings on a departure that still need cancellation
// treatment: Confirmed ones plus Cancelling ones left behind by a crashed run.
func (r BookingRepository) ListCancellable(ctx context.Context, departureID int64) ([]models.Booking, error) {
	return r.list(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE departure_id = ? AND status IN (?, ?)
		ORDER BY booked_at ASC`,
		departureID, models.BookingConfirmed, models.BookingCancelling)
}

// ListSettleable returns bookings with money still to mature: confirmed ones
// settle the full charge, terminal-cancelled ones settle the retained
// remainder (amount_charged - net_payable) left in the held balance after the
// refund. Eligible once the departure completed at least the maturity window
// before asOf and the settle op has not run yet.
func (r BookingRepository) ListSettleable(ctx context.Context, maturedBefore time.Time) ([]models.Booking, error) {
	return r.list(ctx, `
		SELECT `+prefixedBookingColumns("b")+`
		FROM bookings b
		JOIN departures d ON d.id = b.departure_id
		LEFT JOIN booking_ops o ON o.booking_id = b.id AND o.kind = ?
		WHERE d.completion_date <= ? AND o.booking_id IS NULL
			AND (b.status = ?
				OR (b.status IN (?, ?, ?) AND b.amount_charged > b.net_payable))
		ORDER BY d.completion_date ASC`,
		models.OpRevenueSettle, maturedBefore, models.BookingConfirmed,
		models.BookingCancelledByCustomer, models.BookingCancelledByOperator, models.BookingAutoCancelled)
}

func (r BookingRepository) list(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.InternalError{Msg: "list bookings", Err: err}
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, domain.InternalError{Msg: "scan booking", Err: err}
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SaveCancelState conditionally writes the cancellation checkpoint fields and
// status. The revision guard makes a concurrent second workflow lose cleanly.
func (r BookingRepository) SaveCancelState(ctx context.Context, b models.Booking, expectedRevision int64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, cancel_category = ?, cancel_reason = ?, applied_policy_id = ?,
			refund_amount = ?, refund_fee = ?, net_payable = ?, cancelled_at = ?,
			revision = revision + 1
		WHERE id = ? AND revision = ?`,
		b.Status, db.NullIfEmpty(string(b.CancelCategory)), db.NullIfEmpty(b.CancelReason),
		nullID(b.AppliedPolicyID), b.RefundAmount, b.RefundFee, b.NetPayable,
		db.NullableTime(b.CancelledAt),
		b.ID, expectedRevision,
	)
	if err != nil {
		return domain.InternalError{Msg: "save booking cancel state", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "save booking cancel state", Err: err}
	}
	if n == 0 {
		return domain.ConflictError{Resource: "booking", Msg: "stale revision"}
	}
	return nil
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func prefixedBookingColumns(alias string) string {
	return alias + `.id, ` + alias + `.departure_id, ` + alias + `.operator_id, ` +
		alias + `.customer_name, ` + alias + `.customer_phone, ` + alias + `.guest_count, ` +
		alias + `.amount_charged, ` + alias + `.status, ` + alias + `.cancel_category, ` +
		alias + `.cancel_reason, ` + alias + `.applied_policy_id, ` + alias + `.refund_amount, ` +
		alias + `.refund_fee, ` + alias + `.net_payable, ` + alias + `.revision, ` +
		alias + `.booked_at, ` + alias + `.cancelled_at`
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tourops/internal/domain"
	"tourops/internal/domain/models"
)

// RefundRepository persists refund requests. The unique key on booking_id
// enforces at most one request per booking; a duplicate insert on re-drive is
// an idempotent no-op.
type RefundRepository struct {
	DB *sql.DB
}

const refundColumns = `id, booking_id, reference_no, requested_amount, approved_amount,
	status, applied_policy_id, reason, created_at`

func scanRefund(row interface{ Scan(...any) error }) (models.RefundRequest, error) {
	var rr models.RefundRequest
	err := row.Scan(
		&rr.ID,
		&rr.BookingID,
		&rr.ReferenceNo,
		&rr.RequestedAmount,
		&rr.ApprovedAmount,
		&rr.Status,
		&rr.AppliedPolicyID,
		&rr.Reason,
		&rr.CreatedAt,
	)
	return rr, err
}

func (r RefundRepository) Create(ctx context.Context, rr models.RefundRequest) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO refund_requests
			(booking_id, reference_no, requested_amount, approved_amount, status,
			 applied_policy_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rr.BookingID, rr.ReferenceNo, rr.RequestedAmount, rr.ApprovedAmount,
		models.RefundPending, rr.AppliedPolicyID, rr.Reason, time.Now(),
	)
	if err != nil {
		if isDuplicate(err) {
			return 0, domain.AlreadyProcessedError{BookingID: rr.BookingID, Op: "refund_request"}
		}
		return 0, domain.InternalError{Msg: "insert refund request", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.InternalError{Msg: "refund request insert id", Err: err}
	}
	return id, nil
}

func (r RefundRepository) GetByBookingID(ctx context.Context, bookingID int64) (models.RefundRequest, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+refundColumns+`
		FROM refund_requests
		WHERE booking_id = ?
		LIMIT 1`, bookingID)

	rr, err := scanRefund(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RefundRequest{}, domain.NotFoundError{Resource: "refund request", Err: err}
		}
		return models.RefundRequest{}, domain.InternalError{Msg: "get refund request", Err: err}
	}
	return rr, nil
}

func (r RefundRepository) GetByID(ctx context.Context, id int64) (models.RefundRequest, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+refundColumns+`
		FROM refund_requests
		WHERE id = ?
		LIMIT 1`, id)

	rr, err := scanRefund(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RefundRequest{}, domain.NotFoundError{Resource: "refund request", Err: err}
		}
		return models.RefundRequest{}, domain.InternalError{Msg: "get refund request", Err: err}
	}
	return rr, nil
}

func (r RefundRepository) ListByStatus(ctx context.Context, status models.RefundRequestStatus) ([]models.RefundRequest, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+refundColumns+`
		FROM refund_requests
		WHERE status = ?
		ORDER BY created_at ASC`, status)
	if err != nil {
		return nil, domain.InternalError{Msg: "list refund requests", Err: err}
	}
	defer rows.Close()

	var out []models.RefundRequest
	for rows.Next() {
		rr, err := scanRefund(rows)
		if err != nil {
			return nil, domain.InternalError{Msg: "scan refund request", Err: err}
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// UpdateStatus closes a refund request from the approval/payout flow. Only
// pending requests move; anything else reports the illegal transition.
func (r RefundRepository) UpdateStatus(ctx context.Context, id int64, approvedAmount int64, status models.RefundRequestStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE refund_requests
		SET status = ?, approved_amount = ?
		WHERE id = ? AND status = ?`,
		status, approvedAmount, id, models.RefundPending,
	)
	if err != nil {
		return domain.InternalError{Msg: "update refund request", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "update refund request", Err: err}
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "pending refund request"}
	}
	return nil
}

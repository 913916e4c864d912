package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"tourops/internal/domain"
	"tourops/internal/domain/models"
)

const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// claimOp inserts the idempotency row for (booking, op kind). The unique key
// on (booking_id, kind) turns a re-drive into AlreadyProcessedError.
func claimOp(ctx context.Context, ex execer, bookingID int64, kind models.OpKind) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO booking_ops (booking_id, kind, created_at)
		VALUES (?, ?, ?)`,
		bookingID, kind, time.Now(),
	)
	if err != nil {
		if isDuplicate(err) {
			return domain.AlreadyProcessedError{BookingID: bookingID, Op: string(kind)}
		}
		return domain.InternalError{Msg: "claim booking op", Err: err}
	}
	return nil
}

// OpClaimRepository exposes claim lookups to the sweep services so they can
// skip bookings whose ops already ran.
type OpClaimRepository struct {
	DB *sql.DB
}

func (r OpClaimRepository) Claimed(ctx context.Context, bookingID int64, kind models.OpKind) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `
		SELECT 1 FROM booking_ops
		WHERE booking_id = ? AND kind = ?
		LIMIT 1`, bookingID, kind).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, domain.InternalError{Msg: "check booking op", Err: err}
	}
	return true, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"tourops/internal/domain"
	"tourops/internal/domain/models"
)

// AccountRepository persists operator money state. Balance writes are
// revision-guarded, and ledger mutations tied to a booking pair the balance
// write with the op claim in one transaction.
type AccountRepository struct {
	DB *sql.DB
}

func (r AccountRepository) GetByID(ctx context.Context, id int64) (models.OperatorAccount, error) {
	var a models.OperatorAccount
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, operator_name, held_balance, withdrawable_balance, revision
		FROM operator_accounts
		WHERE id = ?
		LIMIT 1`, id).Scan(&a.ID, &a.OperatorName, &a.HeldBalance, &a.WithdrawableBalance, &a.Revision)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.OperatorAccount{}, domain.NotFoundError{Resource: "operator account", Err: err}
		}
		return models.OperatorAccount{}, domain.InternalError{Msg: "get operator account", Err: err}
	}
	return a, nil
}

// ApplyEntry writes new balances for the account and claims (bookingID, kind)
// in the same transaction. A re-driven workflow hits the claim's unique key
// and gets AlreadyProcessedError before any balance change; a concurrent
// writer trips the revision guard and gets a retryable conflict.
func (r AccountRepository) ApplyEntry(ctx context.Context, bookingID int64, kind models.OpKind, accountID int64, held, withdrawable int64, expectedRevision int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.InternalError{Msg: "begin ledger entry", Err: err}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = claimOp(ctx, tx, bookingID, kind); err != nil {
		return err
	}

	var res sql.Result
	res, err = tx.ExecContext(ctx, `
		UPDATE operator_accounts
		SET held_balance = ?, withdrawable_balance = ?, revision = revision + 1
		WHERE id = ? AND revision = ?`,
		held, withdrawable, accountID, expectedRevision,
	)
	if err != nil {
		return domain.InternalError{Msg: "update operator balances", Err: err}
	}
	var n int64
	n, err = res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "update operator balances", Err: err}
	}
	if n == 0 {
		err = domain.ConflictError{Resource: "operator account", Msg: "stale revision"}
		return err
	}

	if err = tx.Commit(); err != nil {
		return domain.InternalError{Msg: "commit ledger entry", Err: err}
	}
	return nil
}

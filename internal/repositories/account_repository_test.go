package repositories

import (
	"context"
	"testing"

	"tourops/internal/domain"
	"tourops/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestAccountGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM operator_accounts").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "operator_name", "held_balance", "withdrawable_balance", "revision",
		}).AddRow(1, "Java Tours", 500000, 100000, 4))

	a, err := AccountRepository{DB: db}.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if a.HeldBalance != 500000 || a.WithdrawableBalance != 100000 || a.Revision != 4 {
		t.Errorf("unexpected account: %+v", a)
	}
}

func TestApplyEntryCommitsClaimAndBalances(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO booking_ops").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE operator_accounts").
		WithArgs(int64(400000), int64(100000), int64(1), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = AccountRepository{DB: db}.ApplyEntry(context.Background(),
		77, models.OpRevenueAdjust, 1, 400000, 100000, 4)
	if err != nil {
		t.Fatalf("ApplyEntry: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestApplyEntryReplayRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO booking_ops").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err = AccountRepository{DB: db}.ApplyEntry(context.Background(),
		77, models.OpRevenueAdjust, 1, 400000, 100000, 4)
	if !domain.IsAlreadyProcessed(err) {
		t.Fatalf("expected AlreadyProcessedError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestApplyEntryStaleRevisionRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO booking_ops").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE operator_accounts").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = AccountRepository{DB: db}.ApplyEntry(context.Background(),
		77, models.OpRevenueSettle, 1, 0, 500000, 4)
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

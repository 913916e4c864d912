package repositories

import (
	"context"
	"testing"
	"time"

	"tourops/internal/domain"
	"tourops/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestRefundCreateDuplicateIsAlreadyProcessed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO refund_requests").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err = RefundRepository{DB: db}.Create(context.Background(), models.RefundRequest{
		BookingID:       10,
		ReferenceNo:     "RF-abc",
		RequestedAmount: 250000,
	})
	if !domain.IsAlreadyProcessed(err) {
		t.Fatalf("expected AlreadyProcessedError, got %v", err)
	}
}

func TestRefundCreateReturnsInsertID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO refund_requests").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := RefundRepository{DB: db}.Create(context.Background(), models.RefundRequest{
		BookingID:       10,
		ReferenceNo:     "RF-abc",
		RequestedAmount: 250000,
		AppliedPolicyID: 2,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 7 {
		t.Errorf("id = %d, want 7", id)
	}
}

func TestRefundUpdateStatusOnlyMovesPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE refund_requests").
		WithArgs(string(models.RefundApproved), int64(250000), int64(7), string(models.RefundPending)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = RefundRepository{DB: db}.UpdateStatus(context.Background(), 7, 250000, models.RefundApproved)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError for non-pending request, got %v", err)
	}
}

func TestRefundGetByBookingID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM refund_requests").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_id", "reference_no", "requested_amount", "approved_amount",
			"status", "applied_policy_id", "reason", "created_at",
		}).AddRow(7, 10, "RF-abc", 250000, 0, "pending", 2, "plans changed", time.Now()))

	rr, err := RefundRepository{DB: db}.GetByBookingID(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetByBookingID: %v", err)
	}
	if rr.ReferenceNo != "RF-abc" || rr.Status != models.RefundPending {
		t.Errorf("unexpected refund request: %+v", rr)
	}
}

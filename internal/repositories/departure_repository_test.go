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

func departureRows(t *testing.T, d models.Departure) *sqlmock.Rows {
	t.Helper()
	return sqlmock.NewRows([]string{
		"id", "operator_id", "tour_name", "departure_date", "completion_date",
		"max_seats", "price_per_seat", "booked_seats", "status", "revision", "created_at",
	}).AddRow(
		d.ID, d.OperatorID, d.TourName, d.DepartureDate, d.CompletionDate,
		d.MaxSeats, d.PricePerSeat, d.BookedSeats, string(d.Status), d.Revision, time.Now(),
	)
}

func TestDepartureGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	want := models.Departure{
		ID: 7, OperatorID: 3, TourName: "Bromo Sunrise",
		DepartureDate:  time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC),
		CompletionDate: time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC),
		MaxSeats:       12, PricePerSeat: 350000, BookedSeats: 4,
		Status: models.DepartureScheduled, Revision: 9,
	}
	mock.ExpectQuery("SELECT (.+) FROM departures").
		WithArgs(int64(7)).
		WillReturnRows(departureRows(t, want))

	got, err := DepartureRepository{DB: db}.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != want.ID || got.MaxSeats != want.MaxSeats || got.Revision != want.Revision {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDepartureGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM departures").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = DepartureRepository{DB: db}.GetByID(context.Background(), 404)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestSaveSeatsStaleRevisionIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE departures").
		WithArgs(5, int64(1), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = DepartureRepository{DB: db}.SaveSeats(context.Background(), 1, 5, 3)
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError on zero rows, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReleaseSeatsClaimsAndDecrements(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO booking_ops").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE departures").
		WithArgs(4, int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = DepartureRepository{DB: db}.ReleaseSeats(context.Background(), 99, 1, 4, 2)
	if err != nil {
		t.Fatalf("ReleaseSeats: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReleaseSeatsReplayHitsClaim(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO booking_ops").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err = DepartureRepository{DB: db}.ReleaseSeats(context.Background(), 99, 1, 4, 2)
	if !domain.IsAlreadyProcessed(err) {
		t.Fatalf("expected AlreadyProcessedError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMarkCancelledStaleRevision(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE departures").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = DepartureRepository{DB: db}.MarkCancelled(context.Background(), 1, 5)
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

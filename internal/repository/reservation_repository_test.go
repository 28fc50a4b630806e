package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/repository"
)

var reservationCols = []string{
	"id", "user_id", "facility_id", "starts_at", "ends_at", "status", "payment_status",
	"spot_label", "amount_cents", "vehicle_type", "license_plate", "created_at", "updated_at",
}

func reservationRow(id uint64, status, payment string) *sqlmock.Rows {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(reservationCols).AddRow(
		id, 7, 1, now.Add(time.Hour), now.Add(3*time.Hour), status, payment,
		"Central Garage-042", 2000, "car", "AB-123", now, now)
}

func newRepo(t *testing.T) (*repository.ReservationRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return repository.NewReservationRepo(db), mock, func() { db.Close() }
}

func TestReservationCreate(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	res := &model.Reservation{
		UserID:        7,
		FacilityID:    1,
		StartsAt:      now.Add(time.Hour),
		EndsAt:        now.Add(3 * time.Hour),
		Status:        model.ReservationPending,
		PaymentStatus: model.PaymentPending,
		SpotLabel:     "Central Garage-042",
		AmountCents:   2000,
		VehicleType:   model.VehicleCar,
		LicensePlate:  "AB-123",
	}

	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(res.UserID, res.FacilityID, res.StartsAt, res.EndsAt,
			res.Status, res.PaymentStatus, res.SpotLabel, res.AmountCents,
			res.VehicleType, res.LicensePlate).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id = ?").
		WithArgs(uint64(42)).
		WillReturnRows(reservationRow(42, "pending", "pending"))

	err := repo.Create(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), res.ID)
	assert.False(t, res.CreatedAt.IsZero(), "re-select fills timestamps")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationGetByIDNotFound(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()

	mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id = ?").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationFetchUnknownIsNil(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()

	mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id = ?").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	res, err := repo.Fetch(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationUpdateStatus(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()

	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs(model.ReservationConfirmed, uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), 42, model.ReservationConfirmed)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationUpdateStatusMissingRow(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()

	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs(model.ReservationCancelled, uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 99, model.ReservationCancelled)
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationListActive(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()

	rows := reservationRow(1, "pending", "pending").
		AddRow(2, 8, 1,
			time.Date(2025, 5, 1, 14, 0, 0, 0, time.UTC),
			time.Date(2025, 5, 1, 16, 0, 0, 0, time.UTC),
			"confirmed", "paid", "Central Garage-017", 2000, "bike", "CD-456",
			time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
			time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC))

	mock.ExpectQuery("SELECT (.+) FROM reservations").
		WillReturnRows(rows)

	out, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, model.ReservationPending, out[0].Status)
	assert.Equal(t, model.ReservationConfirmed, out[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationListByUser(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()

	mock.ExpectQuery("SELECT COUNT(.+) FROM reservations WHERE user_id").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM reservations").
		WithArgs(uint64(7), 20, 0).
		WillReturnRows(reservationRow(1, "pending", "pending"))

	out, total, err := repo.ListByUser(context.Background(), 7, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, out, 1)
	assert.Equal(t, uint64(7), out[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationCountByStatus(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow("pending", 3).
		AddRow("confirmed", 5).
		AddRow("cancelled", 2)

	mock.ExpectQuery("SELECT status, COUNT(.+) FROM reservations GROUP BY status").
		WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Pending)
	assert.Equal(t, int64(5), counts.Confirmed)
	assert.Equal(t, int64(2), counts.Cancelled)
	assert.Zero(t, counts.Completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRevenueCents(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()

	mock.ExpectQuery("SELECT COALESCE(.+) FROM reservations WHERE payment_status").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(12500))

	total, err := repo.RevenueCents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12500), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations. It implements
// the store interface the capacity engine writes through, plus the
// listing and aggregate queries handlers need. All timestamp fields
// are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, user_id, facility_id, starts_at, ends_at, status, payment_status,
	spot_label, amount_cents, vehicle_type, license_plate, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }, res *model.Reservation) error {
	return row.Scan(&res.ID, &res.UserID, &res.FacilityID, &res.StartsAt, &res.EndsAt,
		&res.Status, &res.PaymentStatus, &res.SpotLabel, &res.AmountCents,
		&res.VehicleType, &res.LicensePlate, &res.CreatedAt, &res.UpdatedAt)
}

// Create inserts a new reservation. On success the ID is populated and
// a follow-up SELECT fills the timestamp fields so the engine returns a
// fully populated record to the caller.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	           (user_id, facility_id, starts_at, ends_at, status, payment_status,
	            spot_label, amount_cents, vehicle_type, license_plate)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		res.UserID, res.FacilityID, res.StartsAt.UTC(), res.EndsAt.UTC(),
		res.Status, res.PaymentStatus, res.SpotLabel, res.AmountCents,
		res.VehicleType, res.LicensePlate)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)

	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	return scanReservation(r.db.QueryRowContext(ctx, sel, res.ID), res)
}

// GetByID fetches a reservation by its ID. It returns
// ErrReservationNotFound if no row is found.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	var res model.Reservation
	if err := scanReservation(r.db.QueryRowContext(ctx, q, id), &res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// Fetch resolves a reservation for the engine. Unlike GetByID it
// reports an unknown id as (nil, nil), the contract the engine's
// ReservationStore expects.
func (r *ReservationRepo) Fetch(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := r.GetByID(ctx, id)
	if errors.Is(err, ErrReservationNotFound) {
		return nil, nil
	}
	return res, err
}

// UpdateStatus persists a lifecycle transition. The engine has already
// validated the transition under the reservation's lock.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, status model.ReservationStatus) error {
	const q = `UPDATE reservations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// UpdatePaymentStatus persists a payment-side transition independently
// of the lifecycle status.
func (r *ReservationRepo) UpdatePaymentStatus(ctx context.Context, id uint64, status model.PaymentStatus) error {
	const q = `UPDATE reservations SET payment_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// ListActive returns every pending or confirmed reservation. The engine
// replays these into its interval index at startup.
func (r *ReservationRepo) ListActive(ctx context.Context) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE status IN ('pending','confirmed') ORDER BY id`
	return r.listValues(ctx, q)
}

// ListPendingCreatedBefore returns pending reservations created at or
// before the cutoff. The expiry worker cancels the unpaid ones.
func (r *ReservationRepo) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE status = 'pending' AND created_at <= ? ORDER BY id`
	return r.listValues(ctx, q, cutoff.UTC())
}

// ListByUser returns a page of the user's reservations, newest first,
// along with the total count for pagination. An empty status means no
// filter.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64, status model.ReservationStatus, page, pageSize int) ([]model.Reservation, int64, error) {
	where := `user_id = ?`
	args := []any{userID}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE ` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)
	out, err := r.listValues(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListByFacility returns a page of a facility's reservations, newest
// first, optionally filtered by lifecycle status. An empty status means
// no filter.
func (r *ReservationRepo) ListByFacility(ctx context.Context, facilityID uint64, status model.ReservationStatus, page, pageSize int) ([]model.Reservation, int64, error) {
	where := `facility_id = ?`
	args := []any{facilityID}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE ` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)
	out, err := r.listValues(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ReservationRepo) listValues(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// StatusCounts holds per-status reservation totals for the dashboard.
type StatusCounts struct {
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	Cancelled int64 `json:"cancelled"`
	Completed int64 `json:"completed"`
}

// CountByStatus aggregates reservation totals per lifecycle status.
func (r *ReservationRepo) CountByStatus(ctx context.Context) (*StatusCounts, error) {
	const q = `SELECT status, COUNT(*) FROM reservations GROUP BY status`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var c StatusCounts
	for rows.Next() {
		var status model.ReservationStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		switch status {
		case model.ReservationPending:
			c.Pending = n
		case model.ReservationConfirmed:
			c.Confirmed = n
		case model.ReservationCancelled:
			c.Cancelled = n
		case model.ReservationCompleted:
			c.Completed = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

// UserStats holds one customer's reservation totals and lifetime spend
// for their dashboard.
type UserStats struct {
	Counts          StatusCounts `json:"counts"`
	TotalSpentCents int64        `json:"total_spent_cents"`
}

// StatsForUser aggregates the user's per-status reservation counts and
// the sum they have paid, refunds excluded.
func (r *ReservationRepo) StatsForUser(ctx context.Context, userID uint64) (*UserStats, error) {
	const q = `SELECT status, COUNT(*) FROM reservations WHERE user_id = ? GROUP BY status`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var s UserStats
	for rows.Next() {
		var status model.ReservationStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		switch status {
		case model.ReservationPending:
			s.Counts.Pending = n
		case model.ReservationConfirmed:
			s.Counts.Confirmed = n
		case model.ReservationCancelled:
			s.Counts.Cancelled = n
		case model.ReservationCompleted:
			s.Counts.Completed = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const spent = `SELECT COALESCE(SUM(amount_cents), 0) FROM reservations
	               WHERE user_id = ? AND payment_status = 'paid'`
	if err := r.db.QueryRowContext(ctx, spent, userID).Scan(&s.TotalSpentCents); err != nil {
		return nil, err
	}
	return &s, nil
}

// RevenueCents sums the amounts of reservations whose payment has been
// captured and not refunded.
func (r *ReservationRepo) RevenueCents(ctx context.Context) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount_cents), 0) FROM reservations WHERE payment_status = 'paid'`
	var total int64
	if err := r.db.QueryRowContext(ctx, q).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// PaymentRepo persists the audit trail of payment-gateway interactions.
// Every capture attempt and every refund gets its own row; the
// reservation's payment_status column holds only the latest outcome.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Create inserts a payment record and populates its generated ID.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (reservation_id, user_id, amount_cents, status, method, provider_ref)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.ReservationID, p.UserID, p.AmountCents, p.Status, p.Method, p.ProviderRef)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	const sel = `SELECT created_at FROM payments WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, p.ID).Scan(&p.CreatedAt)
}

// ListByReservation returns all payment records for a reservation,
// oldest first.
func (r *PaymentRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.Payment, error) {
	const q = `SELECT id, reservation_id, user_id, amount_cents, status, method, provider_ref, created_at
	           FROM payments WHERE reservation_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.ReservationID, &p.UserID, &p.AmountCents,
			&p.Status, &p.Method, &p.ProviderRef, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

package model

import "time"

// Payment records one payment-gateway interaction for a reservation.
// The engine never talks to the gateway itself; rows are written when
// the gateway reports capture or refund outcomes.
//
// Fields:
//  ID           – primary key identifier.
//  ReservationID – reservation the payment belongs to.
//  UserID       – paying user.
//  AmountCents  – amount charged or refunded, in cents.
//  Status       – pending, completed, failed or refunded.
//  Method       – payment method reported by the gateway.
//  ProviderRef  – opaque reference issued for the gateway transaction.
//  CreatedAt    – creation timestamp.
type Payment struct {
	ID            uint64    `json:"id"`             // payments.id
	ReservationID uint64    `json:"reservation_id"` // payments.reservation_id
	UserID        uint64    `json:"user_id"`        // payments.user_id
	AmountCents   uint32    `json:"amount_cents"`   // payments.amount_cents
	Status        string    `json:"status"`         // payments.status
	Method        string    `json:"method"`         // payments.method
	ProviderRef   string    `json:"provider_ref"`   // payments.provider_ref
	CreatedAt     time.Time `json:"created_at"`     // payments.created_at
}

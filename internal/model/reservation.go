package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.  Only
// pending and confirmed reservations occupy capacity; cancelled and
// completed are terminal markers kept for reporting, never deleted.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// Active reports whether the reservation counts against facility
// capacity in this status.
func (s ReservationStatus) Active() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

// PaymentStatus tracks the payment side of a reservation independently
// of its lifecycle status.  A failed payment does not free capacity by
// itself; the reservation stays pending until cancelled or expired.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// VehicleType enumerates the vehicle categories accepted at a facility.
type VehicleType string

const (
	VehicleCar   VehicleType = "car"
	VehicleBike  VehicleType = "bike"
	VehicleTruck VehicleType = "truck"
)

// Valid reports whether t is one of the known vehicle types.
func (t VehicleType) Valid() bool {
	switch t {
	case VehicleCar, VehicleBike, VehicleTruck:
		return true
	}
	return false
}

// Reservation is a time-bounded claim on one unit of a facility's
// capacity over the half-open window [StartsAt, EndsAt).  The amount is
// computed exactly once at admission and never changes afterwards.  The
// spot label is display-only and plays no part in conflict detection.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – requester who owns the reservation.
//  FacilityID    – facility whose capacity is claimed.
//  StartsAt      – inclusive window start (UTC).
//  EndsAt        – exclusive window end (UTC).
//  Status        – lifecycle status (pending, confirmed, cancelled, completed).
//  PaymentStatus – payment status (pending, paid, failed, refunded).
//  SpotLabel     – cosmetic spot identifier shown to the customer.
//  AmountCents   – total price in cents, immutable after admission.
//  VehicleType   – vehicle category (car, bike, truck).
//  LicensePlate  – vehicle registration supplied by the requester.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Reservation struct {
	ID            uint64            `json:"id"`             // reservations.id
	UserID        uint64            `json:"user_id"`        // reservations.user_id
	FacilityID    uint64            `json:"facility_id"`    // reservations.facility_id
	StartsAt      time.Time         `json:"starts_at"`      // reservations.starts_at
	EndsAt        time.Time         `json:"ends_at"`        // reservations.ends_at
	Status        ReservationStatus `json:"status"`         // reservations.status
	PaymentStatus PaymentStatus     `json:"payment_status"` // reservations.payment_status
	SpotLabel     string            `json:"spot_label"`     // reservations.spot_label
	AmountCents   uint32            `json:"amount_cents"`   // reservations.amount_cents
	VehicleType   VehicleType       `json:"vehicle_type"`   // reservations.vehicle_type
	LicensePlate  string            `json:"license_plate"`  // reservations.license_plate
	CreatedAt     time.Time         `json:"created_at"`     // reservations.created_at
	UpdatedAt     time.Time         `json:"updated_at"`     // reservations.updated_at
}

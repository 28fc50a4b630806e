// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a reservation is successfully
// confirmed after payment capture. It contains enough information for
// downstream consumers to log, notify, or trigger analytics without querying
// the primary database.
type ReservationConfirmedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	FacilityID    uint64 `json:"facility_id"`
	FacilityName  string `json:"facility_name"`
	LocationName  string `json:"location_name"`
	SpotLabel     string `json:"spot_label"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	AmountCents   uint32 `json:"amount_cents"`
	ConfirmedAt   string `json:"confirmed_at"`
}

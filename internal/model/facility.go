package model

import "time"

// FacilityStatus enumerates the operating states of a parking facility.
// Only facilities in StatusActive accept new reservations; the other
// two states make admission fail without touching capacity.
type FacilityStatus string

const (
	FacilityActive      FacilityStatus = "active"
	FacilityInactive    FacilityStatus = "inactive"
	FacilityMaintenance FacilityStatus = "maintenance"
)

// Valid reports whether s is one of the known facility statuses.
func (s FacilityStatus) Valid() bool {
	switch s {
	case FacilityActive, FacilityInactive, FacilityMaintenance:
		return true
	}
	return false
}

// Facility represents a parking lot with a fixed number of spots and an
// hourly rate.  Capacity is count-based: the engine never assigns
// physical spots, it only guarantees that at no instant more than
// TotalSpots active reservations overlap.
//
// Fields:
//  ID               – primary key identifier.
//  LocationID       – location the facility belongs to.
//  Name             – human-friendly name of the lot.
//  TotalSpots       – fixed spot count (>= 1).
//  RateCentsPerHour – hourly rate in cents (>= 0).
//  Status           – operating status (active, inactive, maintenance).
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Facility struct {
	ID               uint64         `json:"id"`                  // facilities.id
	LocationID       uint64         `json:"location_id"`         // facilities.location_id
	Name             string         `json:"name"`                // facilities.name
	TotalSpots       int            `json:"total_spots"`         // facilities.total_spots
	RateCentsPerHour uint32         `json:"rate_cents_per_hour"` // facilities.rate_cents_per_hour
	Status           FacilityStatus `json:"status"`              // facilities.status
	CreatedAt        time.Time      `json:"created_at"`          // facilities.created_at
	UpdatedAt        time.Time      `json:"updated_at"`          // facilities.updated_at
}

package model

import "time"

// Location groups facilities under a physical site with an address and
// coordinates.  Locations are administrative records; capacity and
// pricing live on the Facility.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – site name shown in search results.
//  Street    – street portion of the address (optional).
//  City      – city, required, used by search filtering.
//  State     – state or region, required.
//  ZipCode   – postal code (optional).
//  Country   – country name.
//  Latitude  – WGS84 latitude.
//  Longitude – WGS84 longitude.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Location struct {
	ID        uint64    `json:"id"`         // locations.id
	Name      string    `json:"name"`       // locations.name
	Street    string    `json:"street"`     // locations.street
	City      string    `json:"city"`       // locations.city
	State     string    `json:"state"`      // locations.state
	ZipCode   string    `json:"zip_code"`   // locations.zip_code
	Country   string    `json:"country"`    // locations.country
	Latitude  float64   `json:"latitude"`   // locations.latitude
	Longitude float64   `json:"longitude"`  // locations.longitude
	CreatedAt time.Time `json:"created_at"` // locations.created_at
	UpdatedAt time.Time `json:"updated_at"` // locations.updated_at
}

// Package engine implements the reservation and capacity engine: the
// admission control, the lifecycle state machine, pricing and the
// interval index that together guarantee a facility is never
// oversubscribed at any instant.
package engine

import "errors"

// Sentinel errors returned by admission and lifecycle operations.
// They represent business-rule violations reported synchronously to
// the caller and are never retried internally.  Transient
// infrastructure failures (store unavailable) surface as distinct
// wrapped errors and may be retried by the caller.
var (
	// ErrInvalidWindow is returned when a window has start >= end or a
	// start strictly in the past at evaluation time.
	ErrInvalidWindow = errors.New("invalid reservation window")

	// ErrInvalidVehicle is returned when the request carries an unknown
	// vehicle type or an empty license plate.
	ErrInvalidVehicle = errors.New("invalid vehicle details")

	// ErrFacilityUnavailable is returned when the facility exists but
	// its operating status is not active.
	ErrFacilityUnavailable = errors.New("facility not available")

	// ErrCapacityExceeded is returned when no spot is free for the
	// requested window.
	ErrCapacityExceeded = errors.New("no spots available for the requested window")

	// ErrInvalidTransition is returned for illegal lifecycle changes,
	// e.g. cancelling an already cancelled or completed reservation.
	ErrInvalidTransition = errors.New("invalid reservation status transition")

	// ErrNotFound is returned when a facility or reservation id is
	// unknown.
	ErrNotFound = errors.New("not found")
)

package engine

import (
	"fmt"
	"sync"
)

// IntervalIndex tracks the windows of capacity-holding reservations per
// facility and answers overlap-count queries against them.  Entries are
// stored as a flat per-facility map and counting is a linear scan; with
// per-facility active sets in the hundreds this beats tree structures
// that would need rebalancing under the admission lock.
type IntervalIndex struct {
	mu     sync.RWMutex
	active map[uint64]map[uint64]Window // facility id -> reservation id -> window
}

// NewIntervalIndex returns an empty index.
func NewIntervalIndex() *IntervalIndex {
	return &IntervalIndex{active: make(map[uint64]map[uint64]Window)}
}

// Insert adds a reservation window to the facility's active set.  A
// reservation id may be present at most once; once removed it never
// re-enters, a re-booking gets a fresh id.
func (ix *IntervalIndex) Insert(facilityID, reservationID uint64, w Window) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	set, ok := ix.active[facilityID]
	if !ok {
		set = make(map[uint64]Window)
		ix.active[facilityID] = set
	}
	if _, exists := set[reservationID]; exists {
		return fmt.Errorf("interval index: reservation %d already indexed for facility %d", reservationID, facilityID)
	}
	set[reservationID] = w
	return nil
}

// Remove drops a reservation from the facility's active set.  Removing
// an id that is not present is a no-op.
func (ix *IntervalIndex) Remove(facilityID, reservationID uint64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	set, ok := ix.active[facilityID]
	if !ok {
		return
	}
	delete(set, reservationID)
	if len(set) == 0 {
		delete(ix.active, facilityID)
	}
}

// CountOverlapping returns how many indexed reservations of the
// facility overlap the query window.  Read-only; never mutates state.
func (ix *IntervalIndex) CountOverlapping(facilityID uint64, q Window) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	n := 0
	for _, w := range ix.active[facilityID] {
		if w.Overlaps(q) {
			n++
		}
	}
	return n
}

// Len returns the total number of indexed reservations across all
// facilities.
func (ix *IntervalIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	n := 0
	for _, set := range ix.active {
		n += len(set)
	}
	return n
}

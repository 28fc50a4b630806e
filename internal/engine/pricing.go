package engine

import "time"

// PriceCents computes the amount due for a window at the given hourly
// rate.  Duration is billed in whole hours with partial hours rounded
// up, so a 1h15m window costs the same as a 2h window.  The result is
// computed once at admission and stored on the reservation; it is never
// recomputed, even if the facility's rate changes later.
func PriceCents(w Window, rateCentsPerHour uint32) uint32 {
	d := w.Duration()
	if d <= 0 {
		return 0
	}
	hours := uint32((d + time.Hour - 1) / time.Hour)
	return hours * rateCentsPerHour
}

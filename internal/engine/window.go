package engine

import "time"

// Window is a half-open time interval [Start, End).  All windows are
// normalised to UTC on construction.  The half-open convention makes
// back-to-back reservations (one ending exactly when the next starts)
// conflict-free.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a Window from raw timestamps, normalising both to UTC.
func NewWindow(start, end time.Time) Window {
	return Window{Start: start.UTC(), End: end.UTC()}
}

// Overlaps reports whether w and o intersect.  Two half-open windows
// overlap iff start1 < end2 && start2 < end1; windows that merely touch
// at a boundary do not.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Contains reports whether the instant t falls inside [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration returns End minus Start.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Validate checks the rules a new reservation window must satisfy:
// Start must precede End, and Start must not lie in the past relative
// to now.  Windows starting exactly at now are accepted.
func (w Window) Validate(now time.Time) error {
	if !w.Start.Before(w.End) {
		return ErrInvalidWindow
	}
	if w.Start.Before(now) {
		return ErrInvalidWindow
	}
	return nil
}

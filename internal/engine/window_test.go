package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func win(startHour, endHour int) Window {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: base.Add(time.Duration(startHour) * time.Hour), End: base.Add(time.Duration(endHour) * time.Hour)}
}

func TestWindowOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Window
		want bool
	}{
		{"disjoint", win(0, 2), win(3, 5), false},
		{"contained", win(0, 10), win(2, 4), true},
		{"partial", win(0, 3), win(2, 5), true},
		{"identical", win(1, 2), win(1, 2), true},
		{"back to back", win(0, 2), win(2, 4), false},
		{"back to back reversed", win(2, 4), win(0, 2), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
}

func TestWindowContains(t *testing.T) {
	w := win(1, 3)
	assert.True(t, w.Contains(w.Start), "start is inclusive")
	assert.True(t, w.Contains(w.Start.Add(time.Hour)))
	assert.False(t, w.Contains(w.End), "end is exclusive")
	assert.False(t, w.Contains(w.Start.Add(-time.Second)))
}

func TestWindowValidate(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, Window{Start: now, End: now.Add(time.Hour)}.Validate(now), "window starting exactly at now is accepted")
	assert.NoError(t, Window{Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)}.Validate(now))

	assert.ErrorIs(t, Window{Start: now, End: now}.Validate(now), ErrInvalidWindow, "empty window")
	assert.ErrorIs(t, Window{Start: now.Add(time.Hour), End: now}.Validate(now), ErrInvalidWindow, "inverted window")
	assert.ErrorIs(t, Window{Start: now.Add(-time.Minute), End: now.Add(time.Hour)}.Validate(now), ErrInvalidWindow, "start in the past")
}

func TestNewWindowNormalisesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2025, 5, 1, 14, 0, 0, 0, loc)
	w := NewWindow(start, start.Add(time.Hour))
	assert.Equal(t, time.UTC, w.Start.Location())
	assert.Equal(t, 12, w.Start.Hour())
}

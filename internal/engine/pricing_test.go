package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPriceCents(t *testing.T) {
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) Window { return Window{Start: base, End: base.Add(d)} }

	cases := []struct {
		name string
		w    Window
		rate uint32
		want uint32
	}{
		{"exact hour", at(time.Hour), 1000, 1000},
		{"two exact hours", at(2 * time.Hour), 1000, 2000},
		{"partial hour rounds up", at(time.Hour + 15*time.Minute), 1000, 2000},
		{"one minute bills a full hour", at(time.Minute), 500, 500},
		{"thirty minutes", at(30 * time.Minute), 250, 250},
		{"zero rate", at(3 * time.Hour), 0, 0},
		{"empty window", at(0), 1000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PriceCents(tc.w, tc.rate))
		})
	}
}

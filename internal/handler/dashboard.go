package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Dashboard handles GET /v1/admin/dashboard. It aggregates reservation
// counts per lifecycle status, captured revenue and per-facility
// occupancy at the current instant.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	counts, err := h.ReservationRepo.CountByStatus(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to aggregate reservations"})
	}
	revenue, err := h.ReservationRepo.RevenueCents(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to aggregate revenue"})
	}

	facilities, err := h.FacilityRepo.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load facilities"})
	}
	type occupancy struct {
		FacilityID     uint64 `json:"facility_id"`
		Name           string `json:"name"`
		TotalSpots     int    `json:"total_spots"`
		AvailableSpots int    `json:"available_spots"`
	}
	occ := make([]occupancy, 0, len(facilities))
	for _, f := range facilities {
		available, err := h.Engine.AvailableNow(ctx, f.ID)
		if err != nil {
			return engineError(c, err)
		}
		occ = append(occ, occupancy{
			FacilityID:     f.ID,
			Name:           f.Name,
			TotalSpots:     f.TotalSpots,
			AvailableSpots: available,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"reservations":  counts,
		"revenue_cents": revenue,
		"occupancy":     occ,
	})
}

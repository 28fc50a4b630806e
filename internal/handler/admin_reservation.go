package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// ListFacilityReservations handles GET /v1/admin/facilities/:id/reservations.
// It returns a page of the facility's reservations, newest first,
// optionally filtered by lifecycle status via the status query
// parameter.
func (h *AdminHandler) ListFacilityReservations(c echo.Context) error {
	facilityID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
	}
	status := model.ReservationStatus(strings.ToLower(strings.TrimSpace(c.QueryParam("status"))))
	switch status {
	case "", model.ReservationPending, model.ReservationConfirmed, model.ReservationCancelled, model.ReservationCompleted:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
	}
	page, ps := parsePage(c)

	items, total, err := h.ReservationRepo.ListByFacility(c.Request().Context(), facilityID, status, page, ps)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}

// CompleteReservation handles POST /v1/admin/reservations/:id/complete.
// Operators mark the parking session finished when the vehicle leaves,
// freeing the reservation's capacity. Completing a cancelled or already
// completed reservation returns 409.
func (h *AdminHandler) CompleteReservation(c echo.Context) error {
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Engine.Complete(c.Request().Context(), resID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": res})
}

// CancelReservation handles POST /v1/admin/reservations/:id/cancel.
// Admin cancellation follows the same state machine as the customer
// path: only pending and confirmed reservations can be cancelled.
func (h *AdminHandler) CancelReservation(c echo.Context) error {
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Engine.Cancel(c.Request().Context(), resID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": res})
}

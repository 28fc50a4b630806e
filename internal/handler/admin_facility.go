package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/repository"
)

type facilityReq struct {
	LocationID       uint64 `json:"location_id"`
	Name             string `json:"name"`
	TotalSpots       int    `json:"total_spots"`
	RateCentsPerHour uint32 `json:"rate_cents_per_hour"`
	Status           string `json:"status"`
}

func (r *facilityReq) validate() (model.FacilityStatus, string) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return "", "name is required"
	}
	if r.TotalSpots < 1 {
		return "", "total_spots must be at least 1"
	}
	status := model.FacilityStatus(strings.ToLower(strings.TrimSpace(r.Status)))
	if status == "" {
		status = model.FacilityActive
	}
	if !status.Valid() {
		return "", "status must be one of active, inactive, maintenance"
	}
	return status, ""
}

// CreateFacility handles POST /v1/admin/facilities. The referenced
// location must exist.
func (h *AdminHandler) CreateFacility(c echo.Context) error {
	var req facilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if req.LocationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location_id is required"})
	}
	ctx := c.Request().Context()
	if _, err := h.LocationRepo.GetByID(ctx, req.LocationID); err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	fac := &model.Facility{
		LocationID:       req.LocationID,
		Name:             req.Name,
		TotalSpots:       req.TotalSpots,
		RateCentsPerHour: req.RateCentsPerHour,
		Status:           status,
	}
	if err := h.FacilityRepo.Create(ctx, fac); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create facility"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": fac})
}

// ListFacilities handles GET /v1/admin/facilities. An optional
// location_id query parameter narrows the listing.
func (h *AdminHandler) ListFacilities(c echo.Context) error {
	ctx := c.Request().Context()
	if raw := strings.TrimSpace(c.QueryParam("location_id")); raw != "" {
		locID, ok := parseUintParam(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location_id"})
		}
		items, err := h.FacilityRepo.ListByLocation(ctx, locID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load facilities"})
		}
		return c.JSON(http.StatusOK, echo.Map{"items": items})
	}
	items, err := h.FacilityRepo.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load facilities"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetFacility handles GET /v1/admin/facilities/:id, returning the
// facility with its current availability.
func (h *AdminHandler) GetFacility(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
	}
	ctx := c.Request().Context()
	fac, err := h.FacilityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrFacilityNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	available, err := h.Engine.AvailableNow(ctx, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"item":            fac,
		"available_spots": available,
	})
}

// UpdateFacility handles PUT /v1/admin/facilities/:id. Changing the
// rate affects only future admissions; existing reservations keep the
// amount fixed when they were admitted.
func (h *AdminHandler) UpdateFacility(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
	}
	var req facilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	fac := &model.Facility{
		ID:               id,
		Name:             req.Name,
		TotalSpots:       req.TotalSpots,
		RateCentsPerHour: req.RateCentsPerHour,
		Status:           status,
	}
	if err := h.FacilityRepo.Update(c.Request().Context(), fac); err != nil {
		if errors.Is(err, repository.ErrFacilityNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update facility"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": fac})
}

// UpdateFacilityStatus handles PATCH /v1/admin/facilities/:id/status,
// taking a facility in or out of service without touching its other
// fields. New admissions are rejected while the facility is not active;
// already-admitted reservations are unaffected.
func (h *AdminHandler) UpdateFacilityStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status := model.FacilityStatus(strings.ToLower(strings.TrimSpace(body.Status)))
	if !status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be one of active, inactive, maintenance"})
	}
	if err := h.FacilityRepo.UpdateStatus(c.Request().Context(), id, status); err != nil {
		if errors.Is(err, repository.ErrFacilityNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update status"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}

// DeleteFacility handles DELETE /v1/admin/facilities/:id. A facility
// with pending or confirmed reservations cannot be deleted and returns
// 409.
func (h *AdminHandler) DeleteFacility(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
	}
	if err := h.FacilityRepo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrFacilityNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "facility still has active reservations"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete facility"})
	}
	return c.NoContent(http.StatusNoContent)
}

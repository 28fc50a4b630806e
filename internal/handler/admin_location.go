package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/engine"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/repository"
)

// AdminHandler bundles the dependencies admins use to manage locations,
// facilities and reservations. Role middleware guarantees only ADMIN
// tokens reach these methods.
type AdminHandler struct {
	Engine          *engine.Engine
	LocationRepo    *repository.LocationRepo
	FacilityRepo    *repository.FacilityRepo
	ReservationRepo *repository.ReservationRepo
}

// NewAdminHandler constructs a new AdminHandler and panics if any dependency is nil.
func NewAdminHandler(eng *engine.Engine, locationRepo *repository.LocationRepo, facilityRepo *repository.FacilityRepo, reservationRepo *repository.ReservationRepo) *AdminHandler {
	if eng == nil || locationRepo == nil || facilityRepo == nil || reservationRepo == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{
		Engine:          eng,
		LocationRepo:    locationRepo,
		FacilityRepo:    facilityRepo,
		ReservationRepo: reservationRepo,
	}
}

type locationReq struct {
	Name      string  `json:"name"`
	Street    string  `json:"street"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zip_code"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r *locationReq) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)
	if r.Name == "" {
		return "name is required"
	}
	if r.City == "" {
		return "city is required"
	}
	if r.State == "" {
		return "state is required"
	}
	return ""
}

// CreateLocation handles POST /v1/admin/locations.
func (h *AdminHandler) CreateLocation(c echo.Context) error {
	var req locationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	loc := &model.Location{
		Name:      req.Name,
		Street:    strings.TrimSpace(req.Street),
		City:      req.City,
		State:     req.State,
		ZipCode:   strings.TrimSpace(req.ZipCode),
		Country:   strings.TrimSpace(req.Country),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.LocationRepo.Create(c.Request().Context(), loc); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create location"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": loc})
}

// ListLocations handles GET /v1/admin/locations.
func (h *AdminHandler) ListLocations(c echo.Context) error {
	items, err := h.LocationRepo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load locations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetLocation handles GET /v1/admin/locations/:id.
func (h *AdminHandler) GetLocation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	loc, err := h.LocationRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": loc})
}

// UpdateLocation handles PUT /v1/admin/locations/:id.
func (h *AdminHandler) UpdateLocation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	var req locationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	loc := &model.Location{
		ID:        id,
		Name:      req.Name,
		Street:    strings.TrimSpace(req.Street),
		City:      req.City,
		State:     req.State,
		ZipCode:   strings.TrimSpace(req.ZipCode),
		Country:   strings.TrimSpace(req.Country),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.LocationRepo.Update(c.Request().Context(), loc); err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update location"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": loc})
}

// DeleteLocation handles DELETE /v1/admin/locations/:id. A location that
// still has facilities cannot be deleted and returns 409.
func (h *AdminHandler) DeleteLocation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	if err := h.LocationRepo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "location still has facilities"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete location"})
	}
	return c.NoContent(http.StatusNoContent)
}

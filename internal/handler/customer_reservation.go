package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/engine"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/queue"
	"github.com/iliyamo/parking-spot-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/parking-spot-reservation/internal/service"
)

// CustomerHandler groups the dependencies customers need to search
// facilities and manage their own reservations. All methods assume that
// JWT authentication and role validation has already been performed by
// middleware. Methods may return 401 Unauthorized if the user ID cannot
// be extracted from the context. Admission and lifecycle changes go
// through the capacity engine, never straight to the repository.
type CustomerHandler struct {
	Engine          *engine.Engine
	FacilityRepo    *repository.FacilityRepo
	LocationRepo    *repository.LocationRepo
	ReservationRepo *repository.ReservationRepo
}

// NewCustomerHandler constructs a new CustomerHandler with the provided
// dependencies. All dependencies must be non-nil.
func NewCustomerHandler(eng *engine.Engine, facilityRepo *repository.FacilityRepo, locationRepo *repository.LocationRepo, reservationRepo *repository.ReservationRepo) *CustomerHandler {
	if eng == nil || facilityRepo == nil || locationRepo == nil || reservationRepo == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{
		Engine:          eng,
		FacilityRepo:    facilityRepo,
		LocationRepo:    locationRepo,
		ReservationRepo: reservationRepo,
	}
}

// SearchFacilities handles GET /v1/search/facilities. It returns active
// facilities matching the optional city and name filters, cheapest
// first, each annotated with the number of spots available for the
// requested window and, when a full from/to window is given, the
// estimated cost of booking it. Facilities with nothing free for the
// window are dropped from the results. When no window is given
// availability is computed for the current instant.
func (h *CustomerHandler) SearchFacilities(c echo.Context) error {
	city := strings.TrimSpace(c.QueryParam("city"))
	name := strings.TrimSpace(c.QueryParam("name"))
	page, ps := parsePage(c)

	w, priced, err := windowFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from/to, expected RFC3339 timestamps"})
	}

	q := repository.FacilitySearchQuery{
		City:     city,
		Name:     name,
		Page:     page,
		PageSize: ps,
	}
	items, total, err := h.FacilityRepo.SearchActive(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}

	out := make([]repository.FacilityRow, 0, len(items))
	for _, item := range items {
		fac := &model.Facility{ID: item.ID, TotalSpots: item.TotalSpots}
		item.AvailableSpots = h.Engine.AvailableFor(fac, w)
		if item.AvailableSpots == 0 {
			continue
		}
		if priced {
			item.EstimatedCostCents = engine.PriceCents(w, item.RateCentsPerHour)
		}
		out = append(out, item)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":      out,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}

// windowFromQuery builds the availability query window from the from/to
// query parameters. Both absent means a point query at now; a lone
// "from" means the point at that instant. The second return reports
// whether a full booking window was given, which is what makes a cost
// estimate meaningful.
func windowFromQuery(c echo.Context) (engine.Window, bool, error) {
	fromStr := strings.TrimSpace(c.QueryParam("from"))
	toStr := strings.TrimSpace(c.QueryParam("to"))
	if fromStr == "" && toStr == "" {
		now := time.Now().UTC()
		return engine.Window{Start: now, End: now.Add(time.Nanosecond)}, false, nil
	}
	from := time.Now().UTC()
	if fromStr != "" {
		t, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return engine.Window{}, false, err
		}
		from = t.UTC()
	}
	if toStr == "" {
		return engine.Window{Start: from, End: from.Add(time.Nanosecond)}, false, nil
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		return engine.Window{}, false, err
	}
	if !from.Before(to.UTC()) {
		return engine.Window{}, false, errors.New("from must precede to")
	}
	return engine.NewWindow(from, to), true, nil
}

// createReservationReq is the body of POST /v1/reservations.
type createReservationReq struct {
	FacilityID   uint64 `json:"facility_id"`
	StartsAt     string `json:"starts_at"` // RFC3339
	EndsAt       string `json:"ends_at"`   // RFC3339
	VehicleType  string `json:"vehicle_type"`
	LicensePlate string `json:"license_plate"`
}

// CreateReservation handles POST /v1/reservations. It runs admission
// control through the engine: the facility must be active and have a
// free spot for every instant of the requested window. On success it
// returns 201 with the pending reservation and its fixed price; payment
// capture happens in a separate call.
func (h *CustomerHandler) CreateReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.FacilityID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "facility_id is required"})
	}
	startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartsAt))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid starts_at, expected RFC3339"})
	}
	endsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndsAt))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ends_at, expected RFC3339"})
	}

	res, err := h.Engine.Admit(c.Request().Context(), engine.AdmissionRequest{
		UserID:       userID,
		FacilityID:   req.FacilityID,
		Window:       engine.NewWindow(startsAt, endsAt),
		VehicleType:  model.VehicleType(strings.ToLower(strings.TrimSpace(req.VehicleType))),
		LicensePlate: req.LicensePlate,
	})
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"reservation": res})
}

// ListReservations handles GET /v1/my-reservations. It returns a page
// of the current user's reservations, newest first, optionally filtered
// by lifecycle status.
func (h *CustomerHandler) ListReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, ps := parsePage(c)

	status := model.ReservationStatus(strings.ToLower(strings.TrimSpace(c.QueryParam("status"))))
	switch status {
	case "", model.ReservationPending, model.ReservationConfirmed, model.ReservationCancelled, model.ReservationCompleted:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
	}

	items, total, err := h.ReservationRepo.ListByUser(c.Request().Context(), userID, status, page, ps)
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

// Stats handles GET /v1/dashboard/stats. It returns the current user's
// reservation counts per status and their total paid amount.
func (h *CustomerHandler) Stats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	stats, err := h.ReservationRepo.StatsForUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load stats"})
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats})
}

// GetReservation handles GET /v1/reservations/:id. It returns a single
// reservation owned by the current user; 404 when it does not exist and
// 403 when it belongs to someone else.
func (h *CustomerHandler) GetReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.ReservationRepo.GetByID(c.Request().Context(), resID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
	}
	if res.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": res})
}

// CancelReservation handles DELETE /v1/reservations/:id. It cancels a
// reservation belonging to the current user, freeing its capacity for
// every instant of the window. Cancelling twice, or cancelling a
// completed reservation, returns 409.
func (h *CustomerHandler) CancelReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx := c.Request().Context()

	res, err := h.ReservationRepo.GetByID(ctx, resID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
	}
	if res.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	cancelled, err := h.Engine.Cancel(ctx, resID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": cancelled})
}

// JoinWaitingList handles POST /v1/facilities/:id/waiting-list. Waiting
// lists are not implemented yet; the endpoint exists so clients can
// integrate against a stable contract and currently reports an empty
// list without persisting anything.
func (h *CustomerHandler) JoinWaitingList(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	facilityID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
	}
	if _, err := h.FacilityRepo.GetByID(c.Request().Context(), facilityID); err != nil {
		if errors.Is(err, repository.ErrFacilityNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"facility_id": facilityID,
		"entries":     []struct{}{},
	})
}

// publishConfirmed emits the reservation.confirmed event. Shared by the
// payment handler; failures are logged inside the publisher and ignored
// so the request flow is never interrupted by the broker.
func publishConfirmed(c echo.Context, res *model.Reservation, facilityName, locationName string) {
	_ = queue_publisher.PublishReservationConfirmed(c.Request().Context(), queue.ReservationConfirmedEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		FacilityID:    res.FacilityID,
		FacilityName:  facilityName,
		LocationName:  locationName,
		SpotLabel:     res.SpotLabel,
		StartsAt:      res.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:        res.EndsAt.UTC().Format(time.RFC3339),
		AmountCents:   res.AmountCents,
		ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
	})
}

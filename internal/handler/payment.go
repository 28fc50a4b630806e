package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/engine"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/repository"
)

// PaymentHandler exposes the payment side of a reservation: capturing
// the amount fixed at admission and refunding after cancellation. There
// is no real gateway behind it; captures succeed unless the client
// simulates a decline, and every interaction is recorded in the
// payments audit table with a generated provider reference.
type PaymentHandler struct {
	Engine          *engine.Engine
	ReservationRepo *repository.ReservationRepo
	PaymentRepo     *repository.PaymentRepo
	FacilityRepo    *repository.FacilityRepo
	LocationRepo    *repository.LocationRepo
}

// NewPaymentHandler constructs a PaymentHandler. All dependencies must
// be non-nil.
func NewPaymentHandler(eng *engine.Engine, reservationRepo *repository.ReservationRepo, paymentRepo *repository.PaymentRepo, facilityRepo *repository.FacilityRepo, locationRepo *repository.LocationRepo) *PaymentHandler {
	if eng == nil || reservationRepo == nil || paymentRepo == nil || facilityRepo == nil || locationRepo == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{
		Engine:          eng,
		ReservationRepo: reservationRepo,
		PaymentRepo:     paymentRepo,
		FacilityRepo:    facilityRepo,
		LocationRepo:    locationRepo,
	}
}

type captureReq struct {
	Method string `json:"method"` // card, wallet, ...
	// Simulate lets integration clients exercise the failure path.
	// "decline" records a failed capture; anything else succeeds.
	Simulate string `json:"simulate,omitempty"`
}

// Capture handles POST /v1/reservations/:id/payments. On a successful
// capture the reservation transitions pending -> confirmed with its
// payment marked paid, and a reservation.confirmed event is published.
// On a declined capture the payment is marked failed while the
// reservation stays pending and keeps holding its spot until cancelled
// or expired.
func (h *PaymentHandler) Capture(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req captureReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	method := strings.ToLower(strings.TrimSpace(req.Method))
	if method == "" {
		method = "card"
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

	providerRef := uuid.NewString()

	if strings.EqualFold(req.Simulate, "decline") {
		updated, err := h.Engine.RecordPaymentFailure(ctx, resID)
		if err != nil {
			return engineError(c, err)
		}
		_ = h.PaymentRepo.Create(ctx, &model.Payment{
			ReservationID: resID,
			UserID:        userID,
			AmountCents:   res.AmountCents,
			Status:        "failed",
			Method:        method,
			ProviderRef:   providerRef,
		})
		return c.JSON(http.StatusPaymentRequired, echo.Map{
			"error":        "payment declined",
			"provider_ref": providerRef,
			"item":         updated,
		})
	}

	confirmed, err := h.Engine.Confirm(ctx, resID)
	if err != nil {
		return engineError(c, err)
	}
	if err := h.PaymentRepo.Create(ctx, &model.Payment{
		ReservationID: resID,
		UserID:        userID,
		AmountCents:   res.AmountCents,
		Status:        "completed",
		Method:        method,
		ProviderRef:   providerRef,
	}); err != nil {
		// The capture already happened; surface the reservation anyway.
		return c.JSON(http.StatusOK, echo.Map{"item": confirmed, "provider_ref": providerRef})
	}

	facilityName, locationName := h.names(c, res.FacilityID)
	publishConfirmed(c, confirmed, facilityName, locationName)

	return c.JSON(http.StatusOK, echo.Map{
		"item":         confirmed,
		"provider_ref": providerRef,
	})
}

// Refund handles POST /v1/reservations/:id/refund. Only a cancelled
// reservation whose payment was captured can be refunded; anything else
// returns 409.
func (h *PaymentHandler) Refund(c echo.Context) error {
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
	role, _ := c.Get("role").(string)
	if res.UserID != userID && role != "ADMIN" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	refunded, err := h.Engine.Refund(ctx, resID)
	if err != nil {
		return engineError(c, err)
	}
	providerRef := uuid.NewString()
	_ = h.PaymentRepo.Create(ctx, &model.Payment{
		ReservationID: resID,
		UserID:        res.UserID,
		AmountCents:   res.AmountCents,
		Status:        "refunded",
		Method:        "refund",
		ProviderRef:   providerRef,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"item":         refunded,
		"provider_ref": providerRef,
	})
}

// ListPayments handles GET /v1/reservations/:id/payments, returning the
// audit trail of capture and refund attempts for a reservation.
func (h *PaymentHandler) ListPayments(c echo.Context) error {
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
	role, _ := c.Get("role").(string)
	if res.UserID != userID && role != "ADMIN" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	items, err := h.PaymentRepo.ListByReservation(ctx, resID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load payments"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// names resolves facility and location names for event payloads; blanks
// on lookup failure, events are best-effort.
func (h *PaymentHandler) names(c echo.Context, facilityID uint64) (string, string) {
	ctx := c.Request().Context()
	fac, err := h.FacilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		return "", ""
	}
	loc, err := h.LocationRepo.GetByID(ctx, fac.LocationID)
	if err != nil {
		return fac.Name, ""
	}
	return fac.Name, loc.Name
}

package router

import (
	"github.com/iliyamo/parking-spot-reservation/internal/handler"
	"github.com/iliyamo/parking-spot-reservation/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All routes
// require a valid JWT and the CUSTOMER role.  Customers can create
// reservations, pay for them, cancel them and view their own bookings.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, p *handler.PaymentHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	// Note: GET /v1/search/facilities is registered on the public router so
	// that guests can browse availability.  Customer-specific endpoints
	// begin here.
	g.POST("/reservations", h.CreateReservation)
	g.GET("/my-reservations", h.ListReservations)
	g.GET("/reservations/:id", h.GetReservation)
	g.DELETE("/reservations/:id", h.CancelReservation)
	g.POST("/facilities/:id/waiting-list", h.JoinWaitingList)
	g.GET("/dashboard/stats", h.Stats)

	// Payment endpoints.  Capture confirms the pending reservation, refund
	// requires a prior cancellation.
	g.POST("/reservations/:id/payments", p.Capture)
	g.POST("/reservations/:id/refund", p.Refund)
	g.GET("/reservations/:id/payments", p.ListPayments)
}

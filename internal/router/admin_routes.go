package router // router defines how HTTP routes are registered for the API

import (
	"github.com/iliyamo/parking-spot-reservation/internal/handler"    // admin handlers
	"github.com/iliyamo/parking-spot-reservation/internal/middleware" // JWT + role middlewares
	"github.com/labstack/echo/v4"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// All routes require a valid JWT and ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Locations ----
	g.POST("/locations", a.CreateLocation)
	g.GET("/locations", a.ListLocations)
	g.GET("/locations/:id", a.GetLocation)
	g.PUT("/locations/:id", a.UpdateLocation)
	g.PATCH("/locations/:id", a.UpdateLocation) // allow partial/semantic updates via PATCH as well
	g.DELETE("/locations/:id", a.DeleteLocation)

	// ---- Facilities ----
	g.POST("/facilities", a.CreateFacility)
	g.GET("/facilities", a.ListFacilities)
	g.GET("/facilities/:id", a.GetFacility)
	g.PUT("/facilities/:id", a.UpdateFacility)
	g.PATCH("/facilities/:id/status", a.UpdateFacilityStatus)
	g.DELETE("/facilities/:id", a.DeleteFacility)

	// ---- Reservations ----
	g.GET("/facilities/:id/reservations", a.ListFacilityReservations)
	g.POST("/reservations/:id/complete", a.CompleteReservation)
	g.POST("/reservations/:id/cancel", a.CancelReservation)

	// ---- Dashboard ----
	g.GET("/dashboard", a.Dashboard)
}

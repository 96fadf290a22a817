package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fitlink/class-booking/internal/handler"
	"github.com/fitlink/class-booking/internal/middleware"
	"github.com/fitlink/class-booking/internal/model"
)

// RegisterStudent registers STUDENT-scoped booking endpoints under /v1.
// All routes require a valid JWT and the STUDENT role.
func RegisterStudent(e *echo.Echo, s *handler.StudentHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStudent),
	)

	g.POST("/bookings", s.CreateBooking)
	g.POST("/bookings/:id/cancel", s.CancelBooking)
	g.GET("/my-bookings", s.ListMyBookings)
}

package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/fitlink/class-booking/internal/handler"    // trainer handlers
	"github.com/fitlink/class-booking/internal/middleware" // JWT + role middlewares
	"github.com/fitlink/class-booking/internal/model"      // role constants
)

// RegisterTrainer registers TRAINER-scoped endpoints under /v1/trainer.
// All routes require a valid JWT and the TRAINER role.
func RegisterTrainer(e *echo.Echo, t *handler.TrainerHandler, jwtSecret string) {
	g := e.Group(
		"/v1/trainer",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleTrainer),
	)

	// ---- Classes ----
	g.POST("/classes", t.CreateClass)
	g.GET("/classes", t.ListClasses)
	g.PUT("/classes/:id", t.UpdateClass)
	g.PATCH("/classes/:id", t.UpdateClass) // alias for clients that use PATCH
	g.DELETE("/classes/:id", t.DeleteClass)

	// ---- Bookings against the trainer's classes ----
	g.GET("/classes/:id/bookings", t.ListClassBookings) // ?date=YYYY-MM-DD narrows to one session
	g.POST("/bookings/:id/confirm", t.ConfirmBooking)
	g.POST("/bookings/:id/attended", t.ConfirmAttendance)
	g.POST("/bookings/:id/cancel", t.CancelBooking)
}

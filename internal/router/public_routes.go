package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fitlink/class-booking/internal/handler"
)

// RegisterPublic registers unauthenticated browse endpoints.  The
// optional middlewares (typically the Redis response cache) are applied
// only to these read-only routes.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mw ...echo.MiddlewareFunc) {
	// List of all active classes
	e.GET("/v1/classes", p.ListClasses, mw...)
	// Class detail with resolved upcoming dates and remaining capacity
	e.GET("/v1/classes/:id", p.GetClass, mw...)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fitlink/class-booking/internal/handler"
	"github.com/fitlink/class-booking/internal/middleware"
	"github.com/fitlink/class-booking/internal/model"
)

// RegisterMessaging registers the conversation endpoints under /v1.
// Both roles use the same surface; participation is checked per thread
// in the handler.
func RegisterMessaging(e *echo.Echo, m *handler.ConversationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStudent, model.RoleTrainer),
	)

	g.GET("/conversations", m.ListConversations)
	g.GET("/conversations/:id/messages", m.ListMessages) // loading marks them read
	g.POST("/conversations/:id/messages", m.SendMessage)
	g.GET("/messages/unread-count", m.UnreadCount)
}

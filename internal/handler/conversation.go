package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fitlink/class-booking/internal/model"
	"github.com/fitlink/class-booking/internal/repository"
	"github.com/fitlink/class-booking/internal/service"
)

// ConversationHandler serves the messaging surface.  Threads are created
// by the booking flow; this handler only lists them, reads their history
// and appends new messages.
type ConversationHandler struct {
	Conversations *repository.ConversationRepo
	Messages      *repository.MessageRepo
	Linker        *service.ThreadLinker
}

// NewConversationHandler constructs a ConversationHandler.  Dependencies
// must be non-nil.
func NewConversationHandler(conversations *repository.ConversationRepo, messages *repository.MessageRepo, linker *service.ThreadLinker) *ConversationHandler {
	if conversations == nil || messages == nil || linker == nil {
		panic("nil dependency passed to NewConversationHandler")
	}
	return &ConversationHandler{Conversations: conversations, Messages: messages, Linker: linker}
}

type messageResp struct {
	ID             uint64 `json:"id"`
	ConversationID uint64 `json:"conversation_id"`
	SenderID       uint64 `json:"sender_id"`
	RecipientID    uint64 `json:"recipient_id"`
	Content        string `json:"content"`
	IsRead         bool   `json:"is_read"`
	CreatedAt      string `json:"created_at"`
}

func toMessageResp(m model.Message) messageResp {
	return messageResp{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type conversationResp struct {
	ID             uint64       `json:"id"`
	StudentID      uint64       `json:"student_id"`
	TrainerID      uint64       `json:"trainer_id"`
	BookingID      *uint64      `json:"booking_id,omitempty"`
	PartnerName    string       `json:"partner_name"`
	LastMessage    *messageResp `json:"last_message,omitempty"`
	UnreadCount    int          `json:"unread_count"`
	LastActivityAt string       `json:"last_activity_at"`
}

// ListConversations handles GET /v1/conversations.  Threads come back
// most recently active first with the partner's display name, the latest
// message and the caller's unread count.
func (h *ConversationHandler) ListConversations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Conversations.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]conversationResp, 0, len(items))
	for _, it := range items {
		resp := conversationResp{
			ID:             it.ID,
			StudentID:      it.StudentID,
			TrainerID:      it.TrainerID,
			BookingID:      it.BookingID,
			PartnerName:    it.PartnerName,
			UnreadCount:    it.UnreadCount,
			LastActivityAt: it.LastActivityAt.UTC().Format(time.RFC3339),
		}
		if it.LastMessage != nil {
			m := toMessageResp(*it.LastMessage)
			resp.LastMessage = &m
		}
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// loadForParticipant fetches a conversation and verifies the caller is
// one of its two parties.
func (h *ConversationHandler) loadForParticipant(c echo.Context, userID uint64) (model.Conversation, error) {
	convID, err := pathID(c, "id")
	if err != nil {
		return model.Conversation{}, echo.NewHTTPError(http.StatusBadRequest, "invalid conversation id")
	}
	conv, err := h.Conversations.GetByID(c.Request().Context(), convID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Conversation{}, echo.NewHTTPError(http.StatusNotFound, "conversation not found")
		}
		return model.Conversation{}, echo.NewHTTPError(http.StatusInternalServerError, "database error")
	}
	if userID != conv.StudentID && userID != conv.TrainerID {
		return model.Conversation{}, echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return conv, nil
}

// ListMessages handles GET /v1/conversations/:id/messages.  Loading the
// history marks the caller's pending messages as read.
func (h *ConversationHandler) ListMessages(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	conv, err := h.loadForParticipant(c, userID)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	msgs, err := h.Messages.ListByConversation(ctx, conv.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := h.Messages.MarkRead(ctx, conv.ID, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]messageResp, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResp(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

type sendMessageReq struct {
	Content string `json:"content"`
}

// SendMessage handles POST /v1/conversations/:id/messages.  The recipient
// is always the other party of the thread.
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	conv, err := h.loadForParticipant(c, userID)
	if err != nil {
		return err
	}
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
	}
	recipient := conv.StudentID
	if userID == conv.StudentID {
		recipient = conv.TrainerID
	}
	m, err := h.Linker.PostMessage(c.Request().Context(), conv.ID, userID, recipient, req.Content)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send message failed"})
	}
	return c.JSON(http.StatusCreated, toMessageResp(m))
}

// UnreadCount handles GET /v1/messages/unread-count.  Clients poll it for
// the badge across all threads.
func (h *ConversationHandler) UnreadCount(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	total, err := h.Messages.UnreadTotal(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": total})
}

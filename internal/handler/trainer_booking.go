package handler

import (
	"errors"   // errors.Is against repository sentinels
	"net/http" // HTTP status codes
	"time"     // formatting session dates

	"github.com/labstack/echo/v4"

	"github.com/fitlink/class-booking/internal/model"
	"github.com/fitlink/class-booking/internal/repository"
)

// bookingResp is the wire shape of a booking shared by the trainer and
// student endpoints.  The verification code is included for both parties:
// the student presents it at the session, the trainer checks it against
// this value.
type bookingResp struct {
	ID               uint64 `json:"id"`
	ClassID          uint64 `json:"class_id"`
	ClassName        string `json:"class_name,omitempty"`
	StudentID        uint64 `json:"student_id"`
	TrainerID        uint64 `json:"trainer_id"`
	SessionDate      string `json:"session_date"`
	SessionTime      string `json:"session_time"`
	Status           string `json:"status"`
	Period           string `json:"period"`
	PriceCents       uint32 `json:"price_cents"`
	VerificationCode string `json:"verification_code"`
	StatusChangedAt  string `json:"status_changed_at"`
	CreatedAt        string `json:"created_at"`
}

func toBookingResp(b model.Booking, className string) bookingResp {
	return bookingResp{
		ID:               b.ID,
		ClassID:          b.ClassID,
		ClassName:        className,
		StudentID:        b.StudentID,
		TrainerID:        b.TrainerID,
		SessionDate:      b.SessionDate.Format("2006-01-02"),
		SessionTime:      b.SessionTime,
		Status:           b.Status,
		Period:           b.Period,
		PriceCents:       b.PriceCents,
		VerificationCode: b.VerificationCode,
		StatusChangedAt:  b.StatusChangedAt.UTC().Format(time.RFC3339),
		CreatedAt:        b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// bookingError maps lifecycle errors onto HTTP responses shared by all
// booking endpoints.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking update failed"})
}

// ListClassBookings handles GET /v1/trainer/classes/:id/bookings.  It
// returns the roster for one class, newest first, optionally narrowed to
// a single session date via ?date=YYYY-MM-DD.  Ownership is enforced in
// the repository.
func (h *TrainerHandler) ListClassBookings(c echo.Context) error {
	trainerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	classID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid class id"})
	}
	var date *time.Time
	if raw := c.QueryParam("date"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		date = &d
	}
	items, err := h.Bookings.ListByClassForTrainer(c.Request().Context(), classID, trainerID, date)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "class not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]bookingResp, 0, len(items))
	for _, it := range items {
		out = append(out, toBookingResp(it.Booking, it.ClassName))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ConfirmBooking handles POST /v1/trainer/bookings/:id/confirm.  It moves
// a REQUESTED booking to CONFIRMED on behalf of the owning trainer.
func (h *TrainerHandler) ConfirmBooking(c echo.Context) error {
	trainerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Svc.Confirm(c.Request().Context(), trainerID, bookingID)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b, ""))
}

// ConfirmAttendance handles POST /v1/trainer/bookings/:id/attended.  The
// trainer calls it after checking the student's verification code at the
// session.
func (h *TrainerHandler) ConfirmAttendance(c echo.Context) error {
	trainerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Svc.ConfirmAttendance(c.Request().Context(), trainerID, bookingID)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b, ""))
}

// CancelBooking handles POST /v1/trainer/bookings/:id/cancel.
func (h *TrainerHandler) CancelBooking(c echo.Context) error {
	trainerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Svc.Cancel(c.Request().Context(), trainerID, bookingID)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b, ""))
}

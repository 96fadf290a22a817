package handler

import (
	"errors"   // errors.Is against repository and service sentinels
	"net/http" // HTTP status codes

	"github.com/labstack/echo/v4"

	"github.com/fitlink/class-booking/internal/repository"
	"github.com/fitlink/class-booking/internal/service"
)

// StudentHandler exposes the booking operations available to students.
// The heavy lifting lives in the booking orchestrator; the handler's job
// is parsing, auth extraction and error translation.
type StudentHandler struct {
	Svc      *service.Bookings
	Bookings *repository.BookingRepo
}

// NewStudentHandler constructs a StudentHandler.  Dependencies must be
// non-nil.
func NewStudentHandler(svc *service.Bookings, bookings *repository.BookingRepo) *StudentHandler {
	if svc == nil || bookings == nil {
		panic("nil dependency passed to NewStudentHandler")
	}
	return &StudentHandler{Svc: svc, Bookings: bookings}
}

type createBookingReq struct {
	ClassID uint64 `json:"class_id"`
	Date    string `json:"date"`   // YYYY-MM-DD, must fall on the class schedule
	Period  string `json:"period"` // "single" (default) or "4weeks"
}

// CreateBooking handles POST /v1/bookings.  On success the response
// carries the booking with its verification code; the matching summary
// message has already landed in the student/trainer conversation.
func (h *StudentHandler) CreateBooking(c echo.Context) error {
	studentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ClassID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "class_id is required"})
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	b, err := h.Svc.ConfirmBooking(c.Request().Context(), studentID, req.ClassID, date, req.Period)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "class not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "trainers cannot book classes"})
		case errors.Is(err, repository.ErrClassFull):
			return c.JSON(http.StatusConflict, echo.Map{"error": "class is full on that date"})
		case errors.Is(err, repository.ErrDuplicateBooking):
			return c.JSON(http.StatusConflict, echo.Map{"error": "already booked for that date"})
		case errors.Is(err, service.ErrDateNotBookable):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is not on the class schedule"})
		case errors.Is(err, service.ErrDateOutOfWindow):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is outside the booking window"})
		case errors.Is(err, service.ErrInvalidPeriod):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "period must be single or 4weeks"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}
	return c.JSON(http.StatusCreated, toBookingResp(b, ""))
}

// ListMyBookings handles GET /v1/my-bookings.  It returns every booking
// the student has made, newest first, with the class name joined in.
func (h *StudentHandler) ListMyBookings(c echo.Context) error {
	studentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByStudent(c.Request().Context(), studentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]bookingResp, 0, len(items))
	for _, it := range items {
		out = append(out, toBookingResp(it.Booking, it.ClassName))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// CancelBooking handles POST /v1/bookings/:id/cancel.  The orchestrator
// checks that the caller is a party to the booking and that the booking
// is not already terminal.
func (h *StudentHandler) CancelBooking(c echo.Context) error {
	studentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Svc.Cancel(c.Request().Context(), studentID, bookingID)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b, ""))
}

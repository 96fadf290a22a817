// Package handler exposes HTTP handlers for both authenticated and public
// endpoints.  This file defines the public browsing API: unauthenticated
// users can list active classes and inspect a single class together with
// its upcoming bookable dates and per-date availability.

package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fitlink/class-booking/internal/model"
	"github.com/fitlink/class-booking/internal/repository"
	"github.com/fitlink/class-booking/internal/schedule"
	"github.com/fitlink/class-booking/internal/service"
)

// PublicHandler aggregates what unauthenticated browsing needs.  It
// produces sanitized responses; trainer-only fields stay out.
type PublicHandler struct {
	Classes    *repository.ClassRepo
	Avail      *service.Availability
	WindowDays int
}

// NewPublicHandler constructs a PublicHandler.  windowDays bounds how far
// ahead dates are resolved; values below one fall back to the default.
func NewPublicHandler(classes *repository.ClassRepo, avail *service.Availability, windowDays int) *PublicHandler {
	if classes == nil || avail == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	if windowDays < 1 {
		windowDays = schedule.DefaultWindowDays
	}
	return &PublicHandler{Classes: classes, Avail: avail, WindowDays: windowDays}
}

// PublicClass represents a class in list responses.
type PublicClass struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Capacity    uint32   `json:"capacity"`
	DurationMin uint32   `json:"duration_min"`
	PriceCents  uint32   `json:"price_cents"`
	Days        []string `json:"days"`
	TimeOfDay   string   `json:"time_of_day"`
}

// PublicDate is one concrete upcoming session of a class with its
// remaining capacity.
type PublicDate struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Remaining int    `json:"remaining"`
}

// PublicClassDetail is the single-class response: the class plus its
// resolved upcoming dates inside the booking window.
type PublicClassDetail struct {
	PublicClass
	UpcomingDates []PublicDate `json:"upcoming_dates"`
}

func toPublicClass(cl model.Class) PublicClass {
	return PublicClass{
		ID:          cl.ID,
		Name:        cl.Name,
		Description: cl.Description,
		Capacity:    cl.Capacity,
		DurationMin: cl.DurationMin,
		PriceCents:  cl.PriceCents,
		Days:        cl.DayList(),
		TimeOfDay:   cl.TimeOfDay,
	}
}

// ListClasses handles GET /v1/classes.  Only active classes are listed.
func (h *PublicHandler) ListClasses(c echo.Context) error {
	classes, err := h.Classes.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicClass, 0, len(classes))
	for _, cl := range classes {
		out = append(out, toPublicClass(cl))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetClass handles GET /v1/classes/:id.  The weekly pattern is resolved
// into the concrete dates of the booking window, and each date carries
// the remaining capacity so clients can grey out full sessions.
func (h *PublicHandler) GetClass(c echo.Context) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid class id"})
	}
	ctx := c.Request().Context()
	cl, err := h.Classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "class not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !cl.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "class not found"})
	}

	days, err := schedule.ParseDays(cl.DayList())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "malformed class schedule"})
	}
	dates := schedule.ResolveDates(days, time.Now().UTC(), h.WindowDays)
	upcoming := make([]PublicDate, 0, len(dates))
	for _, d := range dates {
		remaining, err := h.Avail.RemainingCapacity(ctx, cl.ID, d)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		upcoming = append(upcoming, PublicDate{Date: d.Format("2006-01-02"), Remaining: remaining})
	}
	return c.JSON(http.StatusOK, PublicClassDetail{PublicClass: toPublicClass(cl), UpcomingDates: upcoming})
}

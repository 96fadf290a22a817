package handler

import (
	"errors"   // errors.Is comparisons against repository sentinels
	"net/http" // HTTP status codes
	"strings"  // input normalization

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/fitlink/class-booking/internal/model"      // class model
	"github.com/fitlink/class-booking/internal/repository" // repository layer
	"github.com/fitlink/class-booking/internal/schedule"   // weekly pattern validation
	"github.com/fitlink/class-booking/internal/service"    // booking lifecycle
)

// TrainerHandler groups what trainers need to manage their classes and to
// work the bookings made against them.  JWT authentication and the
// TRAINER role check have already run in middleware.
type TrainerHandler struct {
	Classes  *repository.ClassRepo
	Bookings *repository.BookingRepo
	Svc      *service.Bookings
}

// NewTrainerHandler constructs a TrainerHandler.  All dependencies must be
// non-nil.
func NewTrainerHandler(classes *repository.ClassRepo, bookings *repository.BookingRepo, svc *service.Bookings) *TrainerHandler {
	if classes == nil || bookings == nil || svc == nil {
		panic("nil dependency passed to NewTrainerHandler")
	}
	return &TrainerHandler{Classes: classes, Bookings: bookings, Svc: svc}
}

// classReq is the request body for creating or updating a class.
type classReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Capacity    uint32   `json:"capacity"`
	DurationMin uint32   `json:"duration_min"`
	PriceCents  uint32   `json:"price_cents"`
	Days        []string `json:"days"`        // e.g. ["Mon","Wed","Fri"]
	TimeOfDay   string   `json:"time_of_day"` // "HH:MM" 24h
	IsActive    *bool    `json:"is_active"`   // omitted means active
}

// classResp mirrors a class row in responses.
type classResp struct {
	ID          uint64   `json:"id"`
	TrainerID   uint64   `json:"trainer_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Capacity    uint32   `json:"capacity"`
	DurationMin uint32   `json:"duration_min"`
	PriceCents  uint32   `json:"price_cents"`
	Days        []string `json:"days"`
	TimeOfDay   string   `json:"time_of_day"`
	IsActive    bool     `json:"is_active"`
}

func toClassResp(cl model.Class) classResp {
	return classResp{
		ID:          cl.ID,
		TrainerID:   cl.TrainerID,
		Name:        cl.Name,
		Description: cl.Description,
		Capacity:    cl.Capacity,
		DurationMin: cl.DurationMin,
		PriceCents:  cl.PriceCents,
		Days:        cl.DayList(),
		TimeOfDay:   cl.TimeOfDay,
		IsActive:    cl.IsActive,
	}
}

// validateClassReq normalizes and validates a class payload.  It returns
// the canonicalised day list ready for CSV storage.
func validateClassReq(req *classReq) ([]string, string) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, "name is required"
	}
	if req.Capacity == 0 {
		return nil, "capacity must be positive"
	}
	if req.DurationMin == 0 {
		return nil, "duration_min must be positive"
	}
	if len(req.Days) == 0 {
		return nil, "days is required"
	}
	days, err := schedule.ParseDays(req.Days)
	if err != nil {
		return nil, err.Error()
	}
	if !schedule.ValidTimeOfDay(req.TimeOfDay) {
		return nil, "time_of_day must be HH:MM"
	}
	return days.Labels(), ""
}

// CreateClass handles POST /v1/trainer/classes.  The class belongs to the
// authenticated trainer; the weekly pattern is stored canonicalised
// (Mon..Sun order, deduplicated).
func (h *TrainerHandler) CreateClass(c echo.Context) error {
	trainerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req classReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	labels, msg := validateClassReq(&req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	cl := model.Class{
		TrainerID:   trainerID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Capacity:    req.Capacity,
		DurationMin: req.DurationMin,
		PriceCents:  req.PriceCents,
		Days:        strings.Join(labels, ","),
		TimeOfDay:   req.TimeOfDay,
		IsActive:    active,
	}
	if err := h.Classes.Create(c.Request().Context(), &cl); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create class failed"})
	}
	return c.JSON(http.StatusCreated, toClassResp(cl))
}

// ListClasses handles GET /v1/trainer/classes.  It returns every class of
// the authenticated trainer, inactive ones included.
func (h *TrainerHandler) ListClasses(c echo.Context) error {
	trainerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	classes, err := h.Classes.ListByTrainer(c.Request().Context(), trainerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]classResp, 0, len(classes))
	for _, cl := range classes {
		out = append(out, toClassResp(cl))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// UpdateClass handles PUT /v1/trainer/classes/:id.  Ownership is enforced
// in the repository; updating another trainer's class yields 403.
func (h *TrainerHandler) UpdateClass(c echo.Context) error {
	trainerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	classID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid class id"})
	}
	var req classReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	labels, msg := validateClassReq(&req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	cl := model.Class{
		ID:          classID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Capacity:    req.Capacity,
		DurationMin: req.DurationMin,
		PriceCents:  req.PriceCents,
		Days:        strings.Join(labels, ","),
		TimeOfDay:   req.TimeOfDay,
		IsActive:    active,
	}
	if err := h.Classes.UpdateByIDAndTrainer(c.Request().Context(), &cl, trainerID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "class not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update class failed"})
	}
	return c.JSON(http.StatusOK, toClassResp(cl))
}

// DeleteClass handles DELETE /v1/trainer/classes/:id.  A class that any
// bookings reference cannot be deleted; the repository surfaces that as
// ErrConflict and we answer 409 so the trainer deactivates the class
// instead.
func (h *TrainerHandler) DeleteClass(c echo.Context) error {
	trainerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	classID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid class id"})
	}
	if err := h.Classes.DeleteByIDAndTrainer(c.Request().Context(), classID, trainerID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "class not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "class has bookings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete class failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

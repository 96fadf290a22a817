package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fitlink/class-booking/internal/model"
	"github.com/fitlink/class-booking/internal/queue"
	"github.com/fitlink/class-booking/internal/repository"
	"github.com/fitlink/class-booking/internal/schedule"
	"github.com/fitlink/class-booking/internal/verify"
)

// Bookings is the orchestrator behind the user-facing booking operations.
// ConfirmBooking composes the recurrence check, the ledger write, the
// verification code and the thread link into one operation with
// short-circuit failure; the lifecycle methods drive a booking through its
// state machine on behalf of the acting party.
type Bookings struct {
	users      UserStore
	classes    ClassStore
	ledger     Ledger
	linker     *ThreadLinker
	pub        EventPublisher
	windowDays int
	now        func() time.Time
}

// NewBookings constructs the orchestrator.  windowDays bounds how far
// ahead a session may be booked; values below one fall back to the
// default lookahead.
func NewBookings(users UserStore, classes ClassStore, ledger Ledger, linker *ThreadLinker, pub EventPublisher, windowDays int) *Bookings {
	if windowDays < 1 {
		windowDays = schedule.DefaultWindowDays
	}
	return &Bookings{
		users:      users,
		classes:    classes,
		ledger:     ledger,
		linker:     linker,
		pub:        pub,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// ConfirmBooking books one session of a class for a student and returns
// the created booking, verification code included.  Steps, each
// short-circuiting on failure:
//
//  1. the acting user must exist and must not hold the trainer role —
//     rejected with repository.ErrForbidden before any write;
//  2. the class must exist, be active, and the date must fall on a
//     scheduled weekday inside the booking window;
//  3. a verification code is issued and written together with the booking
//     row, so no booking ever exists without its code;
//  4. the ledger insert enforces capacity and the duplicate invariant
//     atomically (repository.ErrClassFull / ErrDuplicateBooking);
//  5. the thread linker creates or updates the conversation and posts the
//     summary message — if that fails the booking row is deleted again so
//     no conversation link can point at a half-made booking;
//  6. a booking-created event is published best-effort.
//
// period is "single" or "4weeks"; the latter multiplies the quoted price
// by four but still records a single booking row.
func (s *Bookings) ConfirmBooking(ctx context.Context, studentID, classID uint64, date time.Time, period string) (model.Booking, error) {
	var zero model.Booking

	actor, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return zero, err
	}
	if actor.Role == model.RoleTrainer {
		return zero, repository.ErrForbidden
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return zero, err
	}
	if !class.IsActive {
		return zero, repository.ErrNotFound
	}

	if period == "" {
		period = model.PeriodSingle
	}
	if period != model.PeriodSingle && period != model.PeriodFourWeeks {
		return zero, ErrInvalidPeriod
	}

	day := schedule.Midnight(date)
	today := schedule.Midnight(s.now())
	if day.Before(today) || !day.Before(today.AddDate(0, 0, s.windowDays)) {
		return zero, ErrDateOutOfWindow
	}
	days, err := schedule.ParseDays(class.DayList())
	if err != nil {
		return zero, fmt.Errorf("class %d has malformed schedule: %w", class.ID, err)
	}
	if !days.Contains(day) {
		return zero, ErrDateNotBookable
	}

	code, err := verify.NewCode(s.now())
	if err != nil {
		return zero, err
	}

	booking := model.Booking{
		ClassID:          class.ID,
		StudentID:        studentID,
		TrainerID:        class.TrainerID,
		SessionDate:      day,
		SessionTime:      class.TimeOfDay,
		Period:           period,
		PriceCents:       model.PriceForPeriod(class.PriceCents, period),
		VerificationCode: code,
	}
	if err := s.ledger.Create(ctx, &booking); err != nil {
		return zero, err
	}

	if _, err := s.linker.LinkBooking(ctx, &booking, class.Name); err != nil {
		// Compensating cleanup: the booking was never surfaced to either
		// party, so remove it rather than leave a row no thread points at.
		if delErr := s.ledger.Delete(ctx, booking.ID); delErr != nil {
			log.Printf("booking: cleanup of booking %d failed: %v", booking.ID, delErr)
		}
		return zero, err
	}

	ev := queue.BookingCreatedEvent{
		BookingID:        booking.ID,
		ClassID:          class.ID,
		ClassName:        class.Name,
		StudentID:        booking.StudentID,
		TrainerID:        booking.TrainerID,
		SessionDate:      booking.SessionDate.Format("2006-01-02"),
		SessionTime:      booking.SessionTime,
		Period:           booking.Period,
		PriceCents:       booking.PriceCents,
		VerificationCode: booking.VerificationCode,
		CreatedAt:        booking.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.pub.BookingCreated(ctx, ev); err != nil {
		log.Printf("booking: publish created event failed: %v", err)
	}
	return booking, nil
}

// Confirm moves a REQUESTED booking to CONFIRMED.  Only the class's
// owning trainer may call it.
func (s *Bookings) Confirm(ctx context.Context, trainerID, bookingID uint64) (model.Booking, error) {
	return s.transition(ctx, bookingID, model.StatusConfirmed, func(b model.Booking) error {
		if b.TrainerID != trainerID {
			return repository.ErrForbidden
		}
		return nil
	})
}

// ConfirmAttendance marks a booking ATTENDED after the student shows up
// and presents the verification code.  Only the owning trainer may call
// it; valid from REQUESTED or CONFIRMED.
func (s *Bookings) ConfirmAttendance(ctx context.Context, trainerID, bookingID uint64) (model.Booking, error) {
	return s.transition(ctx, bookingID, model.StatusAttended, func(b model.Booking) error {
		if b.TrainerID != trainerID {
			return repository.ErrForbidden
		}
		return nil
	})
}

// Cancel moves a booking to CANCELLED.  Either the booking's student or
// the class's trainer may cancel; cancelling a terminal booking fails
// with repository.ErrInvalidTransition rather than silently succeeding.
// The verification code stays issued (and moot) and the conversation's
// message history persists.
func (s *Bookings) Cancel(ctx context.Context, actorID, bookingID uint64) (model.Booking, error) {
	return s.transition(ctx, bookingID, model.StatusCancelled, func(b model.Booking) error {
		if actorID != b.StudentID && actorID != b.TrainerID {
			return repository.ErrForbidden
		}
		return nil
	})
}

// transition loads the booking, runs the caller's authorization check,
// validates the move against the state machine and applies it with a
// conditional update.  The conditional update re-checks the status, so a
// concurrent transition surfaces as ErrInvalidTransition instead of a
// lost update.
func (s *Bookings) transition(ctx context.Context, bookingID uint64, to string, authorize func(model.Booking) error) (model.Booking, error) {
	var zero model.Booking
	b, err := s.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return zero, err
	}
	if err := authorize(b); err != nil {
		return zero, err
	}
	if !model.CanTransition(b.Status, to) {
		return zero, repository.ErrInvalidTransition
	}
	if err := s.ledger.UpdateStatus(ctx, b.ID, b.Status, to); err != nil {
		return zero, err
	}
	return s.ledger.GetByID(ctx, bookingID)
}

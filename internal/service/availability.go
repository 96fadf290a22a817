package service

import (
	"context"
	"time"

	"github.com/fitlink/class-booking/internal/model"
	"github.com/fitlink/class-booking/internal/schedule"
)

// Availability answers "can this class still be booked on this date".
// Both methods are read-only and advisory: the authoritative capacity
// check happens inside the ledger's Create, so a true answer here can
// still lose the last slot to a concurrent booking.
type Availability struct {
	classes ClassStore
	ledger  Ledger
}

// NewAvailability constructs an Availability gate over the given stores.
func NewAvailability(classes ClassStore, ledger Ledger) *Availability {
	return &Availability{classes: classes, ledger: ledger}
}

// RemainingCapacity returns the class capacity minus the non-cancelled
// bookings on the date, floored at zero.
func (a *Availability) RemainingCapacity(ctx context.Context, classID uint64, date time.Time) (int, error) {
	class, err := a.classes.GetByID(ctx, classID)
	if err != nil {
		return 0, err
	}
	return a.remainingFor(ctx, class, date)
}

// IsBookable reports whether the date falls on one of the class's
// scheduled weekdays and at least one slot remains.  The weekday check is
// a set membership test, not a window re-expansion.
func (a *Availability) IsBookable(ctx context.Context, classID uint64, date time.Time) (bool, error) {
	class, err := a.classes.GetByID(ctx, classID)
	if err != nil {
		return false, err
	}
	days, err := schedule.ParseDays(class.DayList())
	if err != nil {
		return false, err
	}
	if !days.Contains(schedule.Midnight(date)) {
		return false, nil
	}
	remaining, err := a.remainingFor(ctx, class, date)
	if err != nil {
		return false, err
	}
	return remaining > 0, nil
}

func (a *Availability) remainingFor(ctx context.Context, class model.Class, date time.Time) (int, error) {
	taken, err := a.ledger.CountActive(ctx, class.ID, schedule.Midnight(date))
	if err != nil {
		return 0, err
	}
	remaining := int(class.Capacity) - taken
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

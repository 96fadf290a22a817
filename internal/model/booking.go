package model

import "time"

// Booking statuses.  A booking starts as REQUESTED and moves forward only:
//
//	REQUESTED -> CONFIRMED -> ATTENDED
//	REQUESTED/CONFIRMED   -> CANCELLED
//
// ATTENDED and CANCELLED are terminal; no transition leaves them.
const (
	StatusRequested = "REQUESTED"
	StatusConfirmed = "CONFIRMED"
	StatusAttended  = "ATTENDED"
	StatusCancelled = "CANCELLED"
)

// Booking periods accepted by the confirm-booking operation.  A 4-week
// enrollment multiplies the quoted price by four but still writes a single
// booking row; see PriceForPeriod.
const (
	PeriodSingle    = "single"
	PeriodFourWeeks = "4weeks"
)

// Booking records one student's reservation of one concrete date-instance
// of a class.  The session time is copied from the class schedule at
// creation so later schedule edits do not rewrite history.  The
// verification code is generated exactly once, at creation, and is never
// reissued.
//
// Fields:
//  ID               – primary key identifier.
//  ClassID          – class being booked.
//  StudentID        – student who booked.
//  TrainerID        – owning trainer, denormalized from the class.
//  SessionDate      – concrete calendar date of the session (midnight UTC).
//  SessionTime      – "HH:MM" copied from the class at creation.
//  Status           – lifecycle status, see constants above.
//  Period           – "single" or "4weeks" (pricing only).
//  PriceCents       – price quoted at creation, after the period multiplier.
//  VerificationCode – human-presentable code shown at the session.
//  StatusChangedAt  – when the status last changed.
//  CreatedAt        – creation timestamp.
type Booking struct {
	ID               uint64    // bookings.id
	ClassID          uint64    // bookings.class_id
	StudentID        uint64    // bookings.student_id
	TrainerID        uint64    // bookings.trainer_id
	SessionDate      time.Time // bookings.session_date
	SessionTime      string    // bookings.session_time
	Status           string    // bookings.status
	Period           string    // bookings.period
	PriceCents       uint32    // bookings.price_cents
	VerificationCode string    // bookings.verification_code
	StatusChangedAt  time.Time // bookings.status_changed_at
	CreatedAt        time.Time // bookings.created_at
}

// IsTerminal reports whether no further transition may leave the status.
func IsTerminal(status string) bool {
	return status == StatusAttended || status == StatusCancelled
}

// CanTransition reports whether a booking may move from one status to
// another.  The table is deliberately explicit rather than clever so that
// adding a status forces a review of every edge.
func CanTransition(from, to string) bool {
	switch from {
	case StatusRequested:
		return to == StatusConfirmed || to == StatusAttended || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusAttended || to == StatusCancelled
	}
	return false
}

// PriceForPeriod applies the period multiplier to a single-session price.
// Unknown periods are treated as single sessions.
func PriceForPeriod(singleCents uint32, period string) uint32 {
	if period == PeriodFourWeeks {
		return singleCents * 4
	}
	return singleCents
}

// Package service holds the booking engine's domain logic: the
// availability gate, the thread linker and the booking orchestrator.
// Services depend on narrow store interfaces rather than concrete
// repositories so the lifecycle rules can be exercised in tests without a
// database; the MySQL repositories in internal/repository satisfy them.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/fitlink/class-booking/internal/model"
	"github.com/fitlink/class-booking/internal/queue"
)

// Ledger is the authoritative booking store.  Create must enforce the
// capacity and duplicate invariants atomically at write time; UpdateStatus
// must be conditional on the expected current status.
type Ledger interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	UpdateStatus(ctx context.Context, id uint64, from, to string) error
	Delete(ctx context.Context, id uint64) error
	CountActive(ctx context.Context, classID uint64, date time.Time) (int, error)
}

// ClassStore supplies class records.
type ClassStore interface {
	GetByID(ctx context.Context, id uint64) (model.Class, error)
}

// UserStore supplies user records for role checks.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// ConversationStore manages threads between booking parties.
type ConversationStore interface {
	FindOrCreate(ctx context.Context, studentID, trainerID uint64) (model.Conversation, error)
	LinkBooking(ctx context.Context, conversationID, bookingID uint64) error
	Touch(ctx context.Context, conversationID uint64) error
}

// MessageStore persists messages.
type MessageStore interface {
	Insert(ctx context.Context, m *model.Message) error
}

// EventPublisher pushes domain events onto the message bus.  Publishing is
// best-effort; services log-and-ignore its errors.
type EventPublisher interface {
	BookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error
	MessagePosted(ctx context.Context, ev queue.MessagePostedEvent) error
}

// Validation errors raised before any store write.  Handlers translate
// them into HTTP 400 responses.
var (
	// ErrDateNotBookable means the requested date does not fall on one
	// of the class's scheduled weekdays.
	ErrDateNotBookable = errors.New("date is not on the class schedule")
	// ErrDateOutOfWindow means the requested date is in the past or
	// beyond the booking lookahead window.
	ErrDateOutOfWindow = errors.New("date is outside the booking window")
	// ErrInvalidPeriod means the booking period is neither "single" nor
	// "4weeks".
	ErrInvalidPeriod = errors.New("invalid booking period")
)

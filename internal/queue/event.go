// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into notifications.  The
// broker is the delivery channel for everything a connected client would
// receive in real time: new bookings and new chat messages both ride it.
package queue

// Queue names.  Both queues are declared durable by publisher and
// consumer alike, so either side may start first.
const (
	BookingCreatedQueue = "booking.created"
	MessagePostedQueue  = "message.posted"
)

// BookingCreatedEvent is published when a booking is successfully created.
// It carries enough information for downstream consumers to notify the
// trainer or feed analytics without querying the primary database.
type BookingCreatedEvent struct {
	BookingID        uint64 `json:"booking_id"`
	ClassID          uint64 `json:"class_id"`
	ClassName        string `json:"class_name"`
	StudentID        uint64 `json:"student_id"`
	TrainerID        uint64 `json:"trainer_id"`
	SessionDate      string `json:"session_date"`
	SessionTime      string `json:"session_time"`
	Period           string `json:"period"`
	PriceCents       uint32 `json:"price_cents"`
	VerificationCode string `json:"verification_code"`
	CreatedAt        string `json:"created_at"`
}

// MessagePostedEvent is published for every stored message, system
// generated or human authored, so connected recipients receive both the
// same way.
type MessagePostedEvent struct {
	MessageID      uint64 `json:"message_id"`
	ConversationID uint64 `json:"conversation_id"`
	SenderID       uint64 `json:"sender_id"`
	RecipientID    uint64 `json:"recipient_id"`
	Preview        string `json:"preview"`
	CreatedAt      string `json:"created_at"`
}

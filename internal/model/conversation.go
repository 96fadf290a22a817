package model

import "time"

// Conversation is the single messaging thread between a student and a
// trainer.  At most one row exists per pair; the unique key on
// (student_id, trainer_id) enforces that in the store.  BookingID points at
// the most recent booking that touched the thread and is overwritten, not
// appended, by each new booking between the same pair.
//
// Fields:
//  ID             – primary key identifier.
//  StudentID      – student participant.
//  TrainerID      – trainer participant.
//  BookingID      – most recent linked booking, nil before the first one.
//  LastActivityAt – refreshed on every new message or linked booking.
//  CreatedAt      – creation timestamp.
type Conversation struct {
	ID             uint64    // conversations.id
	StudentID      uint64    // conversations.student_id
	TrainerID      uint64    // conversations.trainer_id
	BookingID      *uint64   // conversations.booking_id (nullable)
	LastActivityAt time.Time // conversations.last_activity_at
	CreatedAt      time.Time // conversations.created_at
}

// Message belongs to exactly one conversation.  System-generated booking
// summaries are ordinary messages with synthesized content; nothing in the
// schema distinguishes them from human-authored ones.
//
// Fields:
//  ID             – primary key identifier.
//  ConversationID – owning conversation.
//  SenderID       – authoring user.
//  RecipientID    – the other participant.
//  Content        – free-text body.
//  IsRead         – set once the recipient has loaded the message.
//  CreatedAt      – creation timestamp.
type Message struct {
	ID             uint64    // messages.id
	ConversationID uint64    // messages.conversation_id
	SenderID       uint64    // messages.sender_id
	RecipientID    uint64    // messages.recipient_id
	Content        string    // messages.content
	IsRead         bool      // messages.is_read
	CreatedAt      time.Time // messages.created_at
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fitlink/class-booking/internal/model"
	"github.com/fitlink/class-booking/internal/queue"
)

// PaymentAdvisory is appended to every system-generated booking summary.
// Payment happens in person at the session; the advisory exists so the
// chat itself warns against prepaying anyone.
const PaymentAdvisory = "Payment is made in person at the session. Never send money in advance through this chat."

// ThreadLinker keeps the messaging thread between the two booking parties
// consistent with the booking lifecycle.  It lazily creates the
// conversation for a pair, overwrites its linked-booking reference on each
// new booking and posts the system-generated summary message.
type ThreadLinker struct {
	conversations ConversationStore
	messages      MessageStore
	pub           EventPublisher
}

// NewThreadLinker constructs a ThreadLinker over the given stores.
func NewThreadLinker(conversations ConversationStore, messages MessageStore, pub EventPublisher) *ThreadLinker {
	return &ThreadLinker{conversations: conversations, messages: messages, pub: pub}
}

// LinkBooking finds or creates the conversation between the booking's
// student and trainer, points it at the booking, and posts one summary
// message from student to trainer.  The message is an ordinary message
// row: it counts as unread for the trainer and is published to the bus
// like any human-authored one.  It returns the conversation ID.
func (l *ThreadLinker) LinkBooking(ctx context.Context, b *model.Booking, className string) (uint64, error) {
	conv, err := l.conversations.FindOrCreate(ctx, b.StudentID, b.TrainerID)
	if err != nil {
		return 0, fmt.Errorf("find or create conversation: %w", err)
	}
	if err := l.conversations.LinkBooking(ctx, conv.ID, b.ID); err != nil {
		return 0, fmt.Errorf("link booking to conversation: %w", err)
	}
	content := bookingSummary(b, className)
	if err := l.post(ctx, conv.ID, b.StudentID, b.TrainerID, content); err != nil {
		return 0, err
	}
	return conv.ID, nil
}

// PostMessage stores a human-authored message in the conversation and
// refreshes its activity timestamp.  sender must be one of the
// conversation's participants; the caller verifies that.
func (l *ThreadLinker) PostMessage(ctx context.Context, conversationID, senderID, recipientID uint64, content string) (model.Message, error) {
	m := model.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Content:        content,
	}
	if err := l.messages.Insert(ctx, &m); err != nil {
		return model.Message{}, fmt.Errorf("insert message: %w", err)
	}
	if err := l.conversations.Touch(ctx, conversationID); err != nil {
		return model.Message{}, fmt.Errorf("touch conversation: %w", err)
	}
	l.publish(ctx, m)
	return m, nil
}

func (l *ThreadLinker) post(ctx context.Context, conversationID, senderID, recipientID uint64, content string) error {
	m := model.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Content:        content,
	}
	if err := l.messages.Insert(ctx, &m); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	l.publish(ctx, m)
	return nil
}

func (l *ThreadLinker) publish(ctx context.Context, m model.Message) {
	preview := m.Content
	if len(preview) > 120 {
		preview = preview[:120]
	}
	ev := queue.MessagePostedEvent{
		MessageID:      m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Preview:        preview,
		CreatedAt:      m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := l.pub.MessagePosted(ctx, ev); err != nil {
		log.Printf("thread: publish message event failed: %v", err)
	}
}

// bookingSummary renders the system message posted on every booking.
func bookingSummary(b *model.Booking, className string) string {
	return fmt.Sprintf("Booked %s on %s at %s. Verification code: %s. %s",
		className, b.SessionDate.Format("2006-01-02"), b.SessionTime,
		b.VerificationCode, PaymentAdvisory)
}

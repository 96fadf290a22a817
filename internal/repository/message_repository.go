package repository

import (
	"context"
	"database/sql"

	"github.com/fitlink/class-booking/internal/model"
)

// MessageRepo provides access to the messages table.  System-generated
// booking summaries go through the same Insert as human messages; nothing
// at this layer privileges one over the other.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo returns a new MessageRepo bound to the given database.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Insert stores a message and populates its generated ID and creation
// timestamp.
func (r *MessageRepo) Insert(ctx context.Context, m *model.Message) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, sender_id, recipient_id, content) VALUES (?, ?, ?, ?)`,
		m.ConversationID, m.SenderID, m.RecipientID, m.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT is_read, created_at FROM messages WHERE id = ?`, m.ID).
		Scan(&m.IsRead, &m.CreatedAt)
}

// ListByConversation returns the messages of a conversation in
// chronological order.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID uint64) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, sender_id, recipient_id, content, is_read, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY created_at, id`,
		conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Message, 0)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.RecipientID,
			&m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkRead flags every message addressed to the user in the conversation
// as read.  Called when the user opens the thread.
func (r *MessageRepo) MarkRead(ctx context.Context, conversationID, recipientID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read = 1 WHERE conversation_id = ? AND recipient_id = ? AND is_read = 0`,
		conversationID, recipientID)
	return err
}

// UnreadTotal returns the user's unread message count across all
// conversations, for the navigation badge.
func (r *MessageRepo) UnreadTotal(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE recipient_id = ? AND is_read = 0`, userID).Scan(&n)
	return n, err
}

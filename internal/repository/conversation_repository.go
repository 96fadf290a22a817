package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fitlink/class-booking/internal/model"
)

// ConversationRepo provides access to the conversations table.  At most
// one conversation exists per (student, trainer) pair; the unique key on
// that pair makes the lazy find-or-create safe under concurrent bookings
// between the same two users.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo returns a new ConversationRepo bound to the given database.
func NewConversationRepo(db *sql.DB) *ConversationRepo { return &ConversationRepo{db: db} }

const conversationColumns = `id, student_id, trainer_id, booking_id, last_activity_at, created_at`

func scanConversation(row interface{ Scan(...any) error }) (model.Conversation, error) {
	var c model.Conversation
	var bookingID sql.NullInt64
	err := row.Scan(&c.ID, &c.StudentID, &c.TrainerID, &bookingID, &c.LastActivityAt, &c.CreatedAt)
	if bookingID.Valid {
		id := uint64(bookingID.Int64)
		c.BookingID = &id
	}
	return c, err
}

// FindOrCreate looks up the conversation for the pair and lazily creates
// it when none exists.  A concurrent create racing on the unique pair key
// loses with a duplicate-key error, in which case the winner's row is
// re-read and returned; both callers therefore end up with the same
// conversation.
func (r *ConversationRepo) FindOrCreate(ctx context.Context, studentID, trainerID uint64) (model.Conversation, error) {
	c, err := r.getByPair(ctx, studentID, trainerID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return c, err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO conversations (student_id, trainer_id) VALUES (?, ?)`, studentID, trainerID)
	if err != nil && !isDuplicateKey(err) {
		return model.Conversation{}, err
	}
	return r.getByPair(ctx, studentID, trainerID)
}

func (r *ConversationRepo) getByPair(ctx context.Context, studentID, trainerID uint64) (model.Conversation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE student_id = ? AND trainer_id = ?`,
		studentID, trainerID)
	return scanConversation(row)
}

// GetByID retrieves a conversation; ErrNotFound when it does not exist.
func (r *ConversationRepo) GetByID(ctx context.Context, id uint64) (model.Conversation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE id = ?`, id)
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	return c, err
}

// LinkBooking overwrites the conversation's linked booking reference and
// refreshes the last-activity timestamp.  The link always points at the
// most recent booking between the pair; history lives in the ledger, not
// here.
func (r *ConversationRepo) LinkBooking(ctx context.Context, conversationID, bookingID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET booking_id = ?, last_activity_at = NOW() WHERE id = ?`,
		bookingID, conversationID)
	return err
}

// Touch refreshes the last-activity timestamp, used when a plain message
// is posted.
func (r *ConversationRepo) Touch(ctx context.Context, conversationID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET last_activity_at = NOW() WHERE id = ?`, conversationID)
	return err
}

// ConversationSummary is a conversation plus the display data the inbox
// needs: the other participant's name, the latest message and the number
// of unread messages addressed to the viewing user.
type ConversationSummary struct {
	model.Conversation
	PartnerName string
	LastMessage *model.Message
	UnreadCount int
}

// ListForUser returns the conversations the user participates in, most
// recently active first, each with its latest message and the viewer's
// unread count.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID uint64) ([]ConversationSummary, error) {
	const q = `SELECT cv.id, cv.student_id, cv.trainer_id, cv.booking_id, cv.last_activity_at, cv.created_at,
	                  CASE WHEN cv.student_id = ? THEN t.display_name ELSE s.display_name END,
	                  (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = cv.id AND m.recipient_id = ? AND m.is_read = 0)
	           FROM conversations cv
	           JOIN users s ON s.id = cv.student_id
	           JOIN users t ON t.id = cv.trainer_id
	           WHERE cv.student_id = ? OR cv.trainer_id = ?
	           ORDER BY cv.last_activity_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ConversationSummary, 0)
	for rows.Next() {
		var s ConversationSummary
		var bookingID sql.NullInt64
		if err := rows.Scan(&s.ID, &s.StudentID, &s.TrainerID, &bookingID,
			&s.LastActivityAt, &s.CreatedAt, &s.PartnerName, &s.UnreadCount); err != nil {
			return nil, err
		}
		if bookingID.Valid {
			id := uint64(bookingID.Int64)
			s.BookingID = &id
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Attach the latest message of each conversation.  One query per row
	// keeps the SQL simple; inbox lists are short.
	for i := range out {
		msg, err := latestMessage(ctx, r.db, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].LastMessage = msg
	}
	return out, nil
}

func latestMessage(ctx context.Context, db *sql.DB, conversationID uint64) (*model.Message, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, conversation_id, sender_id, recipient_id, content, is_read, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		conversationID)
	var m model.Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.RecipientID, &m.Content, &m.IsRead, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

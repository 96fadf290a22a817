package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fitlink/class-booking/internal/model"
)

// BookingRepo is the authoritative ledger of booking attempts and their
// lifecycle state.  It is the single component in the system that requires
// transactional discipline: the capacity check and the insert happen inside
// one transaction with the class row locked, which closes the race between
// two students booking the last remaining slot.  All timestamp fields are
// stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const dateFormat = "2006-01-02"

const bookingColumns = `id, class_id, student_id, trainer_id, session_date, session_time, status, period, price_cents, verification_code, status_changed_at, created_at`

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.ClassID, &b.StudentID, &b.TrainerID,
		&b.SessionDate, &b.SessionTime, &b.Status, &b.Period, &b.PriceCents,
		&b.VerificationCode, &b.StatusChangedAt, &b.CreatedAt)
	return b, err
}

// Create inserts a new booking in REQUESTED status.  Within a single
// transaction it locks the class row, re-counts non-cancelled bookings for
// the class and date, and inserts only when a slot remains.  It returns
// ErrNotFound when the class does not exist, ErrClassFull when capacity is
// exhausted at write time, and ErrDuplicateBooking when a non-cancelled
// booking for the same (class, date, student) already exists — the unique
// key on the bookings table backs this up even against concurrent inserts
// the count could not see.  On success the generated ID and timestamps are
// populated on b.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var capacity uint32
	err = tx.QueryRowContext(ctx,
		`SELECT capacity FROM classes WHERE id = ? FOR UPDATE`, b.ClassID).Scan(&capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	date := b.SessionDate.Format(dateFormat)
	var taken uint32
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE class_id = ? AND session_date = ? AND status <> ?`,
		b.ClassID, date, model.StatusCancelled).Scan(&taken)
	if err != nil {
		return err
	}
	if taken >= capacity {
		return ErrClassFull
	}

	const ins = `INSERT INTO bookings
	             (class_id, student_id, trainer_id, session_date, session_time, status, period, price_cents, verification_code)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins, b.ClassID, b.StudentID, b.TrainerID,
		date, b.SessionTime, model.StatusRequested, b.Period, b.PriceCents, b.VerificationCode)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateBooking
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.StatusRequested

	row := tx.QueryRowContext(ctx,
		`SELECT status_changed_at, created_at FROM bookings WHERE id = ?`, b.ID)
	if err := row.Scan(&b.StatusChangedAt, &b.CreatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID retrieves a booking by its ID.  It returns ErrNotFound when no
// such booking exists.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, err
}

// UpdateStatus moves a booking from one status to another with a
// conditional update.  Zero affected rows means the booking was no longer
// in the expected status — typically a concurrent transition — and is
// reported as ErrInvalidTransition so the caller never silently overwrites
// a terminal state.  Callers are expected to have validated the transition
// against the model's state machine first.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, from, to string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, status_changed_at = NOW() WHERE id = ? AND status = ?`,
		to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// Delete removes a booking row outright.  It exists solely as the
// compensating cleanup for a failed confirm-booking operation, before the
// booking was ever surfaced to either party; lifecycle removal goes
// through CANCELLED instead.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	return err
}

// CountActive returns the number of non-cancelled bookings for a class on
// a concrete date.  The availability gate derives remaining capacity from
// it; the count is advisory at read time, with enforcement in Create.
func (r *BookingRepo) CountActive(ctx context.Context, classID uint64, date time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE class_id = ? AND session_date = ? AND status <> ?`,
		classID, date.Format(dateFormat), model.StatusCancelled).Scan(&n)
	return n, err
}

// BookingDetail pairs a booking with the class name for display in
// booking lists, sparing callers a second lookup per row.
type BookingDetail struct {
	model.Booking
	ClassName string
}

// ListByStudent returns all bookings made by the student, newest first,
// joined with the class name.
func (r *BookingRepo) ListByStudent(ctx context.Context, studentID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.class_id, b.student_id, b.trainer_id, b.session_date, b.session_time,
	                  b.status, b.period, b.price_cents, b.verification_code, b.status_changed_at, b.created_at,
	                  c.name
	           FROM bookings b
	           JOIN classes c ON c.id = b.class_id
	           WHERE b.student_id = ?
	           ORDER BY b.created_at DESC`
	return r.listDetails(ctx, q, studentID)
}

// ListByClassForTrainer returns the bookings of one class when accessed by
// its owning trainer, optionally restricted to a single session date.  It
// returns ErrNotFound when the class does not exist and ErrForbidden when
// the caller does not own it.
func (r *BookingRepo) ListByClassForTrainer(ctx context.Context, classID, trainerID uint64, date *time.Time) ([]BookingDetail, error) {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, `SELECT trainer_id FROM classes WHERE id = ?`, classID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if ownerID != trainerID {
		return nil, ErrForbidden
	}
	q := `SELECT b.id, b.class_id, b.student_id, b.trainer_id, b.session_date, b.session_time,
	             b.status, b.period, b.price_cents, b.verification_code, b.status_changed_at, b.created_at,
	             c.name
	      FROM bookings b
	      JOIN classes c ON c.id = b.class_id
	      WHERE b.class_id = ?`
	args := []any{classID}
	if date != nil {
		q += ` AND b.session_date = ?`
		args = append(args, date.Format(dateFormat))
	}
	q += ` ORDER BY b.session_date, b.created_at`
	return r.listDetails(ctx, q, args...)
}

func (r *BookingRepo) listDetails(ctx context.Context, query string, args ...any) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		if err := rows.Scan(&d.ID, &d.ClassID, &d.StudentID, &d.TrainerID,
			&d.SessionDate, &d.SessionTime, &d.Status, &d.Period, &d.PriceCents,
			&d.VerificationCode, &d.StatusChangedAt, &d.CreatedAt, &d.ClassName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

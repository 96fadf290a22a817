package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fitlink/class-booking/internal/model"
)

// ClassRepo provides CRUD operations for classes.  A class is owned by
// exactly one trainer; every mutating method takes the trainer ID and
// enforces ownership, returning ErrForbidden when the class belongs to
// someone else.  All timestamp fields are stored in UTC.
type ClassRepo struct {
	db *sql.DB
}

// NewClassRepo returns a new ClassRepo bound to the given database.
func NewClassRepo(db *sql.DB) *ClassRepo { return &ClassRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions that
// span multiple repositories.
func (r *ClassRepo) DB() *sql.DB { return r.db }

const classColumns = `id, trainer_id, name, description, capacity, duration_min, price_cents, days, time_of_day, is_active, created_at, updated_at`

func scanClass(row interface{ Scan(...any) error }) (model.Class, error) {
	var c model.Class
	err := row.Scan(&c.ID, &c.TrainerID, &c.Name, &c.Description, &c.Capacity,
		&c.DurationMin, &c.PriceCents, &c.Days, &c.TimeOfDay, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a new class and populates the generated ID and timestamps
// on the provided struct.
func (r *ClassRepo) Create(ctx context.Context, c *model.Class) error {
	const q = `INSERT INTO classes (trainer_id, name, description, capacity, duration_min, price_cents, days, time_of_day)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.TrainerID, c.Name, c.Description,
		c.Capacity, c.DurationMin, c.PriceCents, c.Days, c.TimeOfDay)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	fresh, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = fresh
	return nil
}

// GetByID retrieves a class by its ID.  It returns ErrNotFound when no
// such class exists.
func (r *ClassRepo) GetByID(ctx context.Context, id uint64) (model.Class, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+classColumns+` FROM classes WHERE id = ?`, id)
	c, err := scanClass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	return c, err
}

// ListActive returns every active class, newest first.  Used by the public
// browse endpoints; inactive classes are hidden.
func (r *ClassRepo) ListActive(ctx context.Context) ([]model.Class, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE is_active = 1 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectClasses(rows)
}

// ListByTrainer returns all classes owned by the trainer, newest first,
// including inactive ones so the trainer can reactivate them.
func (r *ClassRepo) ListByTrainer(ctx context.Context, trainerID uint64) ([]model.Class, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE trainer_id = ? ORDER BY created_at DESC`, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectClasses(rows)
}

func collectClasses(rows *sql.Rows) ([]model.Class, error) {
	out := make([]model.Class, 0)
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateByIDAndTrainer rewrites the mutable fields of a class.  It returns
// ErrNotFound when the class does not exist and ErrForbidden when it is
// owned by a different trainer.
func (r *ClassRepo) UpdateByIDAndTrainer(ctx context.Context, c *model.Class, trainerID uint64) error {
	cur, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if cur.TrainerID != trainerID {
		return ErrForbidden
	}
	const q = `UPDATE classes
	           SET name = ?, description = ?, capacity = ?, duration_min = ?, price_cents = ?, days = ?, time_of_day = ?, is_active = ?
	           WHERE id = ? AND trainer_id = ?`
	_, err = r.db.ExecContext(ctx, q, c.Name, c.Description, c.Capacity,
		c.DurationMin, c.PriceCents, c.Days, c.TimeOfDay, c.IsActive, c.ID, trainerID)
	return err
}

// DeleteByIDAndTrainer removes a class provided the caller owns it and no
// bookings reference it.  It returns ErrNotFound when the class does not
// exist, ErrForbidden when it is owned by another trainer, and ErrConflict
// when any booking rows still point at it: open bookings must not be
// orphaned, and terminal ones are attendance history we keep.  A class
// with booking history is retired by setting is_active to 0 instead.
func (r *ClassRepo) DeleteByIDAndTrainer(ctx context.Context, id, trainerID uint64) error {
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
	var ownerID uint64
	err = tx.QueryRowContext(ctx, `SELECT trainer_id FROM classes WHERE id = ? FOR UPDATE`, id).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != trainerID {
		return ErrForbidden
	}
	var referenced int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE class_id = ?`, id).Scan(&referenced)
	if err != nil {
		return err
	}
	if referenced > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM classes WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitlink/class-booking/internal/model"
	"github.com/fitlink/class-booking/internal/queue"
	"github.com/fitlink/class-booking/internal/repository"
)

// ----- in-memory fakes -----

type fakeUsers struct{ byID map[uint64]model.User }

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type fakeClasses struct{ byID map[uint64]model.Class }

func (f *fakeClasses) GetByID(_ context.Context, id uint64) (model.Class, error) {
	c, ok := f.byID[id]
	if !ok {
		return model.Class{}, repository.ErrNotFound
	}
	return c, nil
}

// fakeLedger mirrors the invariants the MySQL ledger enforces in its
// transaction: capacity per (class, date) and at most one non-cancelled
// booking per (class, date, student).
type fakeLedger struct {
	byID     map[uint64]model.Booking
	capacity map[uint64]uint32
	nextID   uint64
	now      time.Time

	createErr error // injected failure
	deleted   []uint64
}

func newFakeLedger(now time.Time, capacity map[uint64]uint32) *fakeLedger {
	return &fakeLedger{byID: map[uint64]model.Booking{}, capacity: capacity, now: now}
}

func (f *fakeLedger) Create(_ context.Context, b *model.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	limit, ok := f.capacity[b.ClassID]
	if !ok {
		return repository.ErrNotFound
	}
	// Same order as the SQL transaction: the capacity count runs before
	// the insert, so a full class reports ErrClassFull even for a student
	// who already holds one of the seats.
	taken := uint32(0)
	duplicate := false
	for _, ex := range f.byID {
		if ex.ClassID != b.ClassID || !ex.SessionDate.Equal(b.SessionDate) || ex.Status == model.StatusCancelled {
			continue
		}
		if ex.StudentID == b.StudentID {
			duplicate = true
		}
		taken++
	}
	if taken >= limit {
		return repository.ErrClassFull
	}
	if duplicate {
		return repository.ErrDuplicateBooking
	}
	f.nextID++
	b.ID = f.nextID
	b.Status = model.StatusRequested
	b.StatusChangedAt = f.now
	b.CreatedAt = f.now
	f.byID[b.ID] = *b
	return nil
}

func (f *fakeLedger) GetByID(_ context.Context, id uint64) (model.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}
	return b, nil
}

func (f *fakeLedger) UpdateStatus(_ context.Context, id uint64, from, to string) error {
	b, ok := f.byID[id]
	if !ok || b.Status != from {
		return repository.ErrInvalidTransition
	}
	b.Status = to
	b.StatusChangedAt = f.now
	f.byID[id] = b
	return nil
}

func (f *fakeLedger) Delete(_ context.Context, id uint64) error {
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeLedger) CountActive(_ context.Context, classID uint64, date time.Time) (int, error) {
	n := 0
	for _, b := range f.byID {
		if b.ClassID == classID && b.SessionDate.Equal(date) && b.Status != model.StatusCancelled {
			n++
		}
	}
	return n, nil
}

type fakeConversations struct {
	byPair map[[2]uint64]*model.Conversation
	nextID uint64

	linkErr error // injected failure
}

func newFakeConversations() *fakeConversations {
	return &fakeConversations{byPair: map[[2]uint64]*model.Conversation{}}
}

func (f *fakeConversations) FindOrCreate(_ context.Context, studentID, trainerID uint64) (model.Conversation, error) {
	key := [2]uint64{studentID, trainerID}
	if c, ok := f.byPair[key]; ok {
		return *c, nil
	}
	f.nextID++
	c := &model.Conversation{ID: f.nextID, StudentID: studentID, TrainerID: trainerID}
	f.byPair[key] = c
	return *c, nil
}

func (f *fakeConversations) LinkBooking(_ context.Context, conversationID, bookingID uint64) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	for _, c := range f.byPair {
		if c.ID == conversationID {
			id := bookingID
			c.BookingID = &id
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeConversations) Touch(_ context.Context, conversationID uint64) error { return nil }

type fakeMessages struct {
	items  []model.Message
	nextID uint64
}

func (f *fakeMessages) Insert(_ context.Context, m *model.Message) error {
	f.nextID++
	m.ID = f.nextID
	f.items = append(f.items, *m)
	return nil
}

type fakePublisher struct {
	bookings []queue.BookingCreatedEvent
	messages []queue.MessagePostedEvent
	err      error
}

func (f *fakePublisher) BookingCreated(_ context.Context, ev queue.BookingCreatedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.bookings = append(f.bookings, ev)
	return nil
}

func (f *fakePublisher) MessagePosted(_ context.Context, ev queue.MessagePostedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, ev)
	return nil
}

// ----- fixture -----

const (
	studentID      = uint64(1)
	otherStudentID = uint64(2)
	trainerID      = uint64(10)
	otherTrainerID = uint64(11)
	classID        = uint64(100)
)

// fixture wires an orchestrator around the fakes.  "Today" is Monday
// 2026-09-07 and the class runs Mon/Wed/Fri at 18:00 with capacity 2.
type fixture struct {
	svc    *Bookings
	ledger *fakeLedger
	convs  *fakeConversations
	msgs   *fakeMessages
	pub    *fakePublisher
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)

	users := &fakeUsers{byID: map[uint64]model.User{
		studentID:      {ID: studentID, Role: model.RoleStudent, DisplayName: "Ada"},
		otherStudentID: {ID: otherStudentID, Role: model.RoleStudent, DisplayName: "Ben"},
		trainerID:      {ID: trainerID, Role: model.RoleTrainer, DisplayName: "Coach"},
	}}
	classes := &fakeClasses{byID: map[uint64]model.Class{
		classID: {
			ID: classID, TrainerID: trainerID, Name: "HIIT Basics",
			Capacity: 2, DurationMin: 60, PriceCents: 2500,
			Days: "Mon,Wed,Fri", TimeOfDay: "18:00", IsActive: true,
		},
	}}
	ledger := newFakeLedger(now, map[uint64]uint32{classID: 2})
	convs := newFakeConversations()
	msgs := &fakeMessages{}
	pub := &fakePublisher{}

	linker := NewThreadLinker(convs, msgs, pub)
	svc := NewBookings(users, classes, ledger, linker, pub, 14)
	svc.now = func() time.Time { return now }

	return &fixture{svc: svc, ledger: ledger, convs: convs, msgs: msgs, pub: pub, now: now}
}

func (f *fixture) monday() time.Time { return time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC) }

// ----- ConfirmBooking -----

func TestConfirmBookingSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.ConfirmBooking(ctx, studentID, classID, f.monday(), model.PeriodSingle)
	require.NoError(t, err)

	assert.Equal(t, model.StatusRequested, b.Status)
	assert.Equal(t, uint32(2500), b.PriceCents)
	assert.Equal(t, "18:00", b.SessionTime)
	assert.Equal(t, trainerID, b.TrainerID)
	assert.Equal(t, f.monday(), b.SessionDate)
	assert.Regexp(t, `^260907-0900-[A-Z2-9]{4}-[A-Z2-9]{4}$`, b.VerificationCode)

	// conversation created, linked and holding the summary message
	require.Len(t, f.convs.byPair, 1)
	conv := f.convs.byPair[[2]uint64{studentID, trainerID}]
	require.NotNil(t, conv.BookingID)
	assert.Equal(t, b.ID, *conv.BookingID)

	require.Len(t, f.msgs.items, 1)
	msg := f.msgs.items[0]
	assert.Equal(t, studentID, msg.SenderID)
	assert.Equal(t, trainerID, msg.RecipientID)
	assert.Contains(t, msg.Content, "HIIT Basics")
	assert.Contains(t, msg.Content, "2026-09-07")
	assert.Contains(t, msg.Content, b.VerificationCode)
	assert.Contains(t, msg.Content, PaymentAdvisory)

	// booking-created event went out
	require.Len(t, f.pub.bookings, 1)
	assert.Equal(t, b.ID, f.pub.bookings[0].BookingID)
	assert.Equal(t, b.VerificationCode, f.pub.bookings[0].VerificationCode)
}

func TestConfirmBookingFourWeeksPricing(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.ConfirmBooking(context.Background(), studentID, classID, f.monday(), model.PeriodFourWeeks)
	require.NoError(t, err)

	assert.Equal(t, uint32(10000), b.PriceCents, "4weeks quadruples the single price")
	assert.Equal(t, model.PeriodFourWeeks, b.Period)
	assert.Len(t, f.ledger.byID, 1, "a 4weeks enrollment still records one row")
}

func TestConfirmBookingDefaultsPeriod(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.ConfirmBooking(context.Background(), studentID, classID, f.monday(), "")
	require.NoError(t, err)
	assert.Equal(t, model.PeriodSingle, b.Period)
	assert.Equal(t, uint32(2500), b.PriceCents)
}

func TestConfirmBookingValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		student uint64
		class   uint64
		date    time.Time
		period  string
		wantErr error
	}{
		{
			name:    "trainers cannot book",
			student: trainerID,
			class:   classID,
			date:    f.monday(),
			period:  model.PeriodSingle,
			wantErr: repository.ErrForbidden,
		},
		{
			name:    "unknown user",
			student: uint64(999),
			class:   classID,
			date:    f.monday(),
			period:  model.PeriodSingle,
			wantErr: repository.ErrNotFound,
		},
		{
			name:    "unknown class",
			student: studentID,
			class:   uint64(999),
			date:    f.monday(),
			period:  model.PeriodSingle,
			wantErr: repository.ErrNotFound,
		},
		{
			name:    "bad period",
			student: studentID,
			class:   classID,
			date:    f.monday(),
			period:  "monthly",
			wantErr: ErrInvalidPeriod,
		},
		{
			name:    "date in the past",
			student: studentID,
			class:   classID,
			date:    f.monday().AddDate(0, 0, -7),
			period:  model.PeriodSingle,
			wantErr: ErrDateOutOfWindow,
		},
		{
			name:    "date beyond the window",
			student: studentID,
			class:   classID,
			date:    f.monday().AddDate(0, 0, 14), // first day past a 14-day window
			period:  model.PeriodSingle,
			wantErr: ErrDateOutOfWindow,
		},
		{
			name:    "weekday off schedule",
			student: studentID,
			class:   classID,
			date:    f.monday().AddDate(0, 0, 1), // Tuesday
			period:  model.PeriodSingle,
			wantErr: ErrDateNotBookable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ConfirmBooking(ctx, tt.student, tt.class, tt.date, tt.period)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, f.ledger.byID, "no validation failure may write to the ledger")
	assert.Empty(t, f.msgs.items)
	assert.Empty(t, f.pub.bookings)
}

func TestConfirmBookingInactiveClass(t *testing.T) {
	f := newFixture(t)
	cl := f.svc.classes.(*fakeClasses).byID[classID]
	cl.IsActive = false
	f.svc.classes.(*fakeClasses).byID[classID] = cl

	_, err := f.svc.ConfirmBooking(context.Background(), studentID, classID, f.monday(), model.PeriodSingle)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConfirmBookingCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ConfirmBooking(ctx, studentID, classID, f.monday(), model.PeriodSingle)
	require.NoError(t, err)
	_, err = f.svc.ConfirmBooking(ctx, otherStudentID, classID, f.monday(), model.PeriodSingle)
	require.NoError(t, err)

	// capacity 2 exhausted; a third student bounces
	f.svc.users.(*fakeUsers).byID[3] = model.User{ID: 3, Role: model.RoleStudent}
	_, err = f.svc.ConfirmBooking(ctx, 3, classID, f.monday(), model.PeriodSingle)
	require.ErrorIs(t, err, repository.ErrClassFull)

	// the same class on another scheduled day is unaffected
	wednesday := f.monday().AddDate(0, 0, 2)
	_, err = f.svc.ConfirmBooking(ctx, 3, classID, wednesday, model.PeriodSingle)
	require.NoError(t, err)
}

func TestConfirmBookingDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.ConfirmBooking(ctx, studentID, classID, f.monday(), model.PeriodSingle)
	require.NoError(t, err)

	_, err = f.svc.ConfirmBooking(ctx, studentID, classID, f.monday(), model.PeriodSingle)
	require.ErrorIs(t, err, repository.ErrDuplicateBooking)

	// cancelling frees the slot for a fresh booking by the same student
	_, err = f.svc.Cancel(ctx, studentID, first.ID)
	require.NoError(t, err)
	_, err = f.svc.ConfirmBooking(ctx, studentID, classID, f.monday(), model.PeriodSingle)
	require.NoError(t, err)
}

func TestConfirmBookingFullClassReportsFullBeforeDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ledger.capacity[classID] = 1

	_, err := f.svc.ConfirmBooking(ctx, studentID, classID, f.monday(), model.PeriodSingle)
	require.NoError(t, err)

	// The store counts seats before it attempts the insert, so a student
	// who already holds the last seat sees the class as full rather than
	// as a duplicate booking.
	_, err = f.svc.ConfirmBooking(ctx, studentID, classID, f.monday(), model.PeriodSingle)
	require.ErrorIs(t, err, repository.ErrClassFull)
}

func TestConfirmBookingThreadLinkFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.convs.linkErr = fmt.Errorf("conversation store down")

	_, err := f.svc.ConfirmBooking(context.Background(), studentID, classID, f.monday(), model.PeriodSingle)
	require.Error(t, err)

	assert.Empty(t, f.ledger.byID, "the half-made booking must be deleted")
	assert.Len(t, f.ledger.deleted, 1)
	assert.Empty(t, f.pub.bookings, "no event for a rolled back booking")
}

func TestConfirmBookingPublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker unreachable")

	b, err := f.svc.ConfirmBooking(context.Background(), studentID, classID, f.monday(), model.PeriodSingle)
	require.NoError(t, err, "publishing is best-effort")
	assert.NotZero(t, b.ID)
	assert.Len(t, f.msgs.items, 1, "the summary message still lands")
}

func TestConfirmBookingReusesConversation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b1, err := f.svc.ConfirmBooking(ctx, studentID, classID, f.monday(), model.PeriodSingle)
	require.NoError(t, err)
	b2, err := f.svc.ConfirmBooking(ctx, studentID, classID, f.monday().AddDate(0, 0, 2), model.PeriodSingle)
	require.NoError(t, err)

	require.Len(t, f.convs.byPair, 1, "one thread per student/trainer pair")
	conv := f.convs.byPair[[2]uint64{studentID, trainerID}]
	require.NotNil(t, conv.BookingID)
	assert.Equal(t, b2.ID, *conv.BookingID, "booking reference is overwritten, not appended")
	assert.NotEqual(t, b1.ID, b2.ID)
	assert.Len(t, f.msgs.items, 2, "each booking posts its own summary")
}

// ----- lifecycle transitions -----

func TestBookingLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.ConfirmBooking(ctx, studentID, classID, f.monday(), model.PeriodSingle)
	require.NoError(t, err)

	t.Run("stranger cannot confirm", func(t *testing.T) {
		_, err := f.svc.Confirm(ctx, otherTrainerID, b.ID)
		require.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("trainer confirms", func(t *testing.T) {
		got, err := f.svc.Confirm(ctx, trainerID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, got.Status)
	})

	t.Run("confirm twice fails", func(t *testing.T) {
		_, err := f.svc.Confirm(ctx, trainerID, b.ID)
		require.ErrorIs(t, err, repository.ErrInvalidTransition)
	})

	t.Run("trainer marks attendance", func(t *testing.T) {
		got, err := f.svc.ConfirmAttendance(ctx, trainerID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAttended, got.Status)
	})

	t.Run("attended is terminal", func(t *testing.T) {
		_, err := f.svc.Cancel(ctx, studentID, b.ID)
		require.ErrorIs(t, err, repository.ErrInvalidTransition)
	})
}

func TestAttendanceStraightFromRequested(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.ConfirmBooking(ctx, studentID, classID, f.monday(), model.PeriodSingle)
	require.NoError(t, err)

	got, err := f.svc.ConfirmAttendance(ctx, trainerID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAttended, got.Status)
}

func TestCancelAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.ConfirmBooking(ctx, studentID, classID, f.monday(), model.PeriodSingle)
	require.NoError(t, err)

	t.Run("third party cannot cancel", func(t *testing.T) {
		_, err := f.svc.Cancel(ctx, otherStudentID, b.ID)
		require.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("trainer can cancel", func(t *testing.T) {
		got, err := f.svc.Cancel(ctx, trainerID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, got.Status)
		assert.Equal(t, b.VerificationCode, got.VerificationCode, "code stays issued")
	})

	t.Run("cancel twice fails", func(t *testing.T) {
		_, err := f.svc.Cancel(ctx, studentID, b.ID)
		require.ErrorIs(t, err, repository.ErrInvalidTransition)
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, err := f.svc.Cancel(ctx, studentID, 9999)
		require.ErrorIs(t, err, repository.ErrNotFound)
	})
}

// ----- availability gate -----

func TestAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	avail := NewAvailability(f.svc.classes, f.ledger)

	remaining, err := avail.RemainingCapacity(ctx, classID, f.monday())
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	ok, err := avail.IsBookable(ctx, classID, f.monday())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = avail.IsBookable(ctx, classID, f.monday().AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, ok, "Tuesday is off schedule")

	_, err = f.svc.ConfirmBooking(ctx, studentID, classID, f.monday(), model.PeriodSingle)
	require.NoError(t, err)
	b2, err := f.svc.ConfirmBooking(ctx, otherStudentID, classID, f.monday(), model.PeriodSingle)
	require.NoError(t, err)

	remaining, err = avail.RemainingCapacity(ctx, classID, f.monday())
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	ok, err = avail.IsBookable(ctx, classID, f.monday())
	require.NoError(t, err)
	assert.False(t, ok, "full session is not bookable")

	// cancelled bookings stop counting against capacity
	_, err = f.svc.Cancel(ctx, otherStudentID, b2.ID)
	require.NoError(t, err)
	remaining, err = avail.RemainingCapacity(ctx, classID, f.monday())
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

// ----- thread linker -----

func TestPostMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	conv, err := f.convs.FindOrCreate(ctx, studentID, trainerID)
	require.NoError(t, err)

	linker := NewThreadLinker(f.convs, f.msgs, f.pub)
	m, err := linker.PostMessage(ctx, conv.ID, trainerID, studentID, "see you Monday")
	require.NoError(t, err)

	assert.NotZero(t, m.ID)
	assert.Equal(t, trainerID, m.SenderID)
	assert.Equal(t, studentID, m.RecipientID)
	assert.False(t, m.IsRead)

	require.Len(t, f.pub.messages, 1)
	assert.Equal(t, "see you Monday", f.pub.messages[0].Preview)
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	repository "github.com/ds124wfegd/learnlink/internal/database/postgres"
	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	student   = entity.Principal{ID: 1, Role: entity.RoleStudent}
	professor = entity.Principal{ID: 2, Role: entity.RoleProfessor}
	stranger  = entity.Principal{ID: 3, Role: entity.RoleStudent}
	testNow   = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

func futureSlot() *entity.AvailabilitySlot {
	return &entity.AvailabilitySlot{
		ID:          10,
		ProfessorID: professor.ID,
		StartTime:   testNow.Add(24 * time.Hour),
		EndTime:     testNow.Add(25 * time.Hour),
		Timezone:    "UTC",
	}
}

func bookingWithSlot(status entity.BookingStatus) *entity.BookingWithSlot {
	slot := futureSlot()
	return &entity.BookingWithSlot{
		Booking: entity.Booking{
			ID:             100,
			StudentID:      student.ID,
			ProfessorID:    professor.ID,
			AvailabilityID: slot.ID,
			Status:         status,
		},
		Slot: *slot,
	}
}

type bookingFixture struct {
	bookings *mockBookingRepo
	slots    *mockSlotRepo
	courses  *mockCourseRepo
	events   *recordingPublisher
	svc      *bookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		bookings: &mockBookingRepo{},
		slots:    &mockSlotRepo{},
		courses:  &mockCourseRepo{},
		events:   &recordingPublisher{},
	}
	svc := NewBookingService(f.bookings, f.slots, f.courses, f.events).(*bookingService)
	svc.now = func() time.Time { return testNow }
	f.svc = svc
	return f
}

func TestCreateBooking_Success(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	f.slots.On("GetByID", ctx, int64(10)).Return(futureSlot(), nil)
	f.bookings.On("Create", ctx, mock.AnythingOfType("*entity.Booking"), testNow).
		Run(func(args mock.Arguments) {
			b := args.Get(1).(*entity.Booking)
			b.ID = 100
			b.ProfessorID = professor.ID
			b.Status = entity.BookingStatusPending
		}).Return(nil)

	booking, err := f.svc.CreateBooking(ctx, student, &CreateBookingRequest{AvailabilityID: 10, Notes: "algebra"})

	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusPending, booking.Status)
	assert.Equal(t, student.ID, booking.StudentID)
	assert.Equal(t, []entity.EventType{entity.EventBookingCreated}, f.events.types())
	assert.Equal(t, futureSlot().StartTime, f.events.events[0].StartTime)
	f.bookings.AssertExpectations(t)
}

func TestCreateBooking_Rejections(t *testing.T) {
	ctx := context.Background()
	courseID := int64(5)

	tests := []struct {
		name  string
		p     entity.Principal
		slot  *entity.AvailabilitySlot
		req   *CreateBookingRequest
		setup func(f *bookingFixture)
		want  error
	}{
		{
			name: "professor cannot book",
			p:    professor,
			req:  &CreateBookingRequest{AvailabilityID: 10},
			want: entity.ErrForbidden,
		},
		{
			name: "slot already booked",
			p:    student,
			slot: func() *entity.AvailabilitySlot { s := futureSlot(); s.IsBooked = true; return s }(),
			req:  &CreateBookingRequest{AvailabilityID: 10},
			want: entity.ErrSlotAlreadyBooked,
		},
		{
			name: "slot in the past",
			p:    student,
			slot: func() *entity.AvailabilitySlot { s := futureSlot(); s.StartTime = testNow.Add(-time.Hour); return s }(),
			req:  &CreateBookingRequest{AvailabilityID: 10},
			want: entity.ErrValidation,
		},
		{
			name: "course of another professor",
			p:    student,
			slot: futureSlot(),
			req:  &CreateBookingRequest{AvailabilityID: 10, CourseID: &courseID},
			setup: func(f *bookingFixture) {
				f.courses.On("GetByID", ctx, courseID).Return(&entity.Course{ID: courseID, ProfessorID: 99}, nil)
			},
			want: entity.ErrValidation,
		},
		{
			name: "unknown course",
			p:    student,
			slot: futureSlot(),
			req:  &CreateBookingRequest{AvailabilityID: 10, CourseID: &courseID},
			setup: func(f *bookingFixture) {
				f.courses.On("GetByID", ctx, courseID).Return(nil, entity.ErrCourseNotFound)
			},
			want: entity.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			if tt.slot != nil {
				f.slots.On("GetByID", ctx, int64(10)).Return(tt.slot, nil)
			}
			if tt.setup != nil {
				tt.setup(f)
			}

			_, err := f.svc.CreateBooking(ctx, tt.p, tt.req)

			assert.ErrorIs(t, err, tt.want)
			f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
			assert.Empty(t, f.events.events)
		})
	}
}

func TestBookingTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("professor confirms pending", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetWithSlot", ctx, int64(100)).Return(bookingWithSlot(entity.BookingStatusPending), nil)
		confirmed := bookingWithSlot(entity.BookingStatusConfirmed).Booking
		f.bookings.On("Transition", ctx, int64(100), []entity.BookingStatus{entity.BookingStatusPending}, entity.BookingStatusConfirmed).
			Return(&confirmed, nil)

		booking, err := f.svc.ConfirmBooking(ctx, professor, 100)

		require.NoError(t, err)
		assert.Equal(t, entity.BookingStatusConfirmed, booking.Status)
		assert.Equal(t, []entity.EventType{entity.EventBookingConfirmed}, f.events.types())
	})

	t.Run("complete requires confirmed", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetWithSlot", ctx, int64(100)).Return(bookingWithSlot(entity.BookingStatusPending), nil)

		_, err := f.svc.CompleteBooking(ctx, professor, 100)

		assert.ErrorIs(t, err, entity.ErrInvalidState)
		f.bookings.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("student cannot confirm", func(t *testing.T) {
		f := newBookingFixture()

		_, err := f.svc.ConfirmBooking(ctx, student, 100)

		assert.ErrorIs(t, err, entity.ErrRoleRequired)
	})

	t.Run("other professor cannot confirm", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetWithSlot", ctx, int64(100)).Return(bookingWithSlot(entity.BookingStatusPending), nil)

		_, err := f.svc.ConfirmBooking(ctx, entity.Principal{ID: 77, Role: entity.RoleProfessor}, 100)

		assert.ErrorIs(t, err, entity.ErrForbidden)
	})

	t.Run("terminal states stay terminal", func(t *testing.T) {
		for _, status := range []entity.BookingStatus{entity.BookingStatusCompleted, entity.BookingStatusCanceled} {
			f := newBookingFixture()
			f.bookings.On("GetWithSlot", ctx, int64(100)).Return(bookingWithSlot(status), nil)

			_, err := f.svc.CancelBooking(ctx, student, 100, "")
			assert.ErrorIs(t, err, entity.ErrInvalidBookingTransition, status)

			_, err = f.svc.ConfirmBooking(ctx, professor, 100)
			assert.ErrorIs(t, err, entity.ErrInvalidState, status)
		}
	})
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	for _, p := range []entity.Principal{student, professor} {
		f := newBookingFixture()
		f.bookings.On("GetWithSlot", ctx, int64(100)).Return(bookingWithSlot(entity.BookingStatusConfirmed), nil)
		canceled := bookingWithSlot(entity.BookingStatusCanceled).Booking
		canceled.CancelReason = "sick"
		f.bookings.On("Cancel", ctx, int64(100), "sick").Return(&canceled, nil)

		booking, err := f.svc.CancelBooking(ctx, p, 100, "sick")

		require.NoError(t, err)
		assert.Equal(t, entity.BookingStatusCanceled, booking.Status)
		require.Len(t, f.events.events, 1)
		assert.Equal(t, "sick", f.events.events[0].Reason)
	}

	f := newBookingFixture()
	f.bookings.On("GetWithSlot", ctx, int64(100)).Return(bookingWithSlot(entity.BookingStatusPending), nil)

	_, err := f.svc.CancelBooking(ctx, stranger, 100, "")
	assert.ErrorIs(t, err, entity.ErrNotOwner)

	_, err = f.svc.GetBooking(ctx, stranger, 100)
	assert.ErrorIs(t, err, entity.ErrForbidden)
}

func TestListMyBookings_RoutesByRole(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture()
	f.bookings.On("ListByStudent", ctx, student.ID, entity.BookingStatusPending).Return([]*entity.BookingWithSlot{}, nil)
	f.bookings.On("ListByProfessor", ctx, professor.ID, entity.BookingStatus("")).Return([]*entity.BookingWithSlot{}, nil)

	_, err := f.svc.ListMyBookings(ctx, student, entity.BookingStatusPending)
	require.NoError(t, err)
	_, err = f.svc.ListMyBookings(ctx, professor, "")
	require.NoError(t, err)
	_, err = f.svc.ListMyBookings(ctx, student, "LOST")
	assert.ErrorIs(t, err, entity.ErrValidation)

	f.bookings.AssertExpectations(t)
}

func TestCancelStaleBookings_SkipsRaces(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture()

	f.bookings.On("ListStalePending", ctx, testNow, staleBatchSize).Return([]*entity.StaleBooking{
		{BookingID: 1}, {BookingID: 2},
	}, nil)
	f.bookings.On("Cancel", ctx, int64(1), expiredCancelReason).
		Return(&entity.Booking{ID: 1, Status: entity.BookingStatusCanceled, CancelReason: expiredCancelReason}, nil)
	f.bookings.On("Cancel", ctx, int64(2), expiredCancelReason).Return(nil, entity.ErrInvalidBookingTransition)

	canceled, err := f.svc.CancelStaleBookings(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, canceled)
	assert.Equal(t, []entity.EventType{entity.EventBookingCanceled}, f.events.types())
}

// memBookingRepo claims slots under a lock like the unique index does.
type memBookingRepo struct {
	repository.BookingRepository
	mu     sync.Mutex
	booked map[int64]bool
	nextID int64
}

func (r *memBookingRepo) Create(ctx context.Context, booking *entity.Booking, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.booked[booking.AvailabilityID] {
		return entity.ErrSlotAlreadyBooked
	}
	r.booked[booking.AvailabilityID] = true
	r.nextID++
	booking.ID = r.nextID
	booking.Status = entity.BookingStatusPending
	return nil
}

func TestCreateBooking_ConcurrentRequestsClaimSlotOnce(t *testing.T) {
	ctx := context.Background()
	slots := &mockSlotRepo{}
	slots.On("GetByID", ctx, int64(10)).Return(futureSlot(), nil)
	repo := &memBookingRepo{booked: map[int64]bool{}}

	svc := NewBookingService(repo, slots, &mockCourseRepo{}, nil).(*bookingService)
	svc.now = func() time.Time { return testNow }

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := svc.CreateBooking(ctx, entity.Principal{ID: id, Role: entity.RoleStudent}, &CreateBookingRequest{AvailabilityID: 10})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, entity.ErrConflict):
				conflicts++
			}
		}(int64(100 + i))
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
}

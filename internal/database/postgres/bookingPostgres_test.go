package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ds124wfegd/learnlink/internal/entity"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingCols = []string{
	"id", "student_id", "professor_id", "availability_id", "course_id",
	"status", "notes", "cancel_reason", "created_at", "updated_at",
}

func newMock(t *testing.T) (sqlmock.Sqlmock, *bookingRepository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, &bookingRepository{db: db}
}

func TestBookingRepository_Create_ClaimsSlot(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE availability_slots SET is_booked = TRUE")).
		WithArgs(int64(5), now).
		WillReturnRows(sqlmock.NewRows([]string{"professor_id"}).AddRow(int64(2)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(int64(1), int64(2), int64(5), nil, entity.BookingStatusPending, "algebra").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(10), now, now))
	mock.ExpectCommit()

	booking := &entity.Booking{StudentID: 1, AvailabilityID: 5, Notes: "algebra"}
	err := repo.Create(context.Background(), booking, now)

	require.NoError(t, err)
	assert.Equal(t, int64(10), booking.ID)
	assert.Equal(t, int64(2), booking.ProfessorID)
	assert.Equal(t, entity.BookingStatusPending, booking.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Create_SlotUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		wantErr error
	}{
		{
			name:    "slot already booked",
			rows:    sqlmock.NewRows([]string{"is_booked"}).AddRow(true),
			wantErr: entity.ErrSlotAlreadyBooked,
		},
		{
			name:    "slot in the past",
			rows:    sqlmock.NewRows([]string{"is_booked"}).AddRow(false),
			wantErr: entity.ErrSlotInPast,
		},
		{
			name:    "slot missing",
			rows:    sqlmock.NewRows([]string{"is_booked"}),
			wantErr: entity.ErrSlotNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repo := newMock(t)
			now := time.Now()

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta("UPDATE availability_slots SET is_booked = TRUE")).
				WillReturnRows(sqlmock.NewRows([]string{"professor_id"}))
			mock.ExpectQuery(regexp.QuoteMeta("SELECT is_booked FROM availability_slots")).
				WithArgs(int64(5)).
				WillReturnRows(tt.rows)
			mock.ExpectRollback()

			err := repo.Create(context.Background(), &entity.Booking{StudentID: 1, AvailabilityID: 5}, now)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBookingRepository_Create_UniqueViolationIsConflict(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE availability_slots SET is_booked = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"professor_id"}).AddRow(int64(2)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "bookings_availability_active_uidx"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &entity.Booking{StudentID: 1, AvailabilityID: 5}, now)

	assert.ErrorIs(t, err, entity.ErrSlotAlreadyBooked)
	assert.ErrorIs(t, err, entity.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Cancel_ReleasesSlot(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET status = $2, cancel_reason = $3")).
		WithArgs(int64(10), entity.BookingStatusCanceled, "sick", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(int64(10), int64(1), int64(2), int64(5), nil, "CANCELED", "", "sick", now, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE availability_slots SET is_booked = FALSE")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	booking, err := repo.Cancel(context.Background(), 10, "sick")

	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCanceled, booking.Status)
	assert.Equal(t, int64(5), booking.AvailabilityID)
	assert.Nil(t, booking.CourseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Cancel_TerminalBooking(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET status = $2, cancel_reason = $3")).
		WillReturnRows(sqlmock.NewRows(bookingCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.Cancel(context.Background(), 10, "")

	assert.ErrorIs(t, err, entity.ErrInvalidBookingTransition)
	assert.ErrorIs(t, err, entity.ErrInvalidState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Transition_WrongState(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET status = $2, updated_at = NOW()")).
		WithArgs(int64(10), entity.BookingStatusCompleted, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(bookingCols))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(int64(10), int64(1), int64(2), int64(5), nil, "PENDING", "", "", now, now))

	_, err := repo.Transition(context.Background(), 10,
		[]entity.BookingStatus{entity.BookingStatusConfirmed}, entity.BookingStatusCompleted)

	assert.ErrorIs(t, err, entity.ErrInvalidBookingTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Transition_NotFound(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET status = $2, updated_at = NOW()")).
		WillReturnRows(sqlmock.NewRows(bookingCols))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows(bookingCols))

	_, err := repo.Transition(context.Background(), 99,
		[]entity.BookingStatus{entity.BookingStatusPending}, entity.BookingStatusConfirmed)

	assert.ErrorIs(t, err, entity.ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/lib/pq"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, student_id, professor_id, availability_id, course_id, status, notes, cancel_reason, created_at, updated_at`

const bookingWithSlotColumns = `
	b.id, b.student_id, b.professor_id, b.availability_id, b.course_id, b.status, b.notes, b.cancel_reason, b.created_at, b.updated_at,
	s.id, s.professor_id, s.start_time, s.end_time, s.timezone, s.is_booked, s.created_at, s.updated_at`

// Create claims the slot and inserts the booking atomically. The slot row lock
// serializes concurrent claims; the partial unique index on availability_id
// rejects anything that slips past it.
func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var professorID int64
	err = tx.QueryRowContext(ctx, `
		UPDATE availability_slots SET is_booked = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_booked = FALSE AND start_time > $2
		RETURNING professor_id`,
		booking.AvailabilityID, now,
	).Scan(&professorID)
	if errors.Is(err, sql.ErrNoRows) {
		return slotUnavailable(ctx, tx, booking.AvailabilityID)
	}
	if err != nil {
		return fmt.Errorf("failed to claim slot: %w", err)
	}

	booking.ProfessorID = professorID
	booking.Status = entity.BookingStatusPending

	err = tx.QueryRowContext(ctx, `
		INSERT INTO bookings (student_id, professor_id, availability_id, course_id, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		booking.StudentID,
		booking.ProfessorID,
		booking.AvailabilityID,
		nullInt64(booking.CourseID),
		booking.Status,
		booking.Notes,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if isUniqueViolation(err, "bookings_availability_active_uidx") {
		return entity.ErrSlotAlreadyBooked
	}
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// slotUnavailable explains why a slot could not be claimed.
func slotUnavailable(ctx context.Context, tx *sql.Tx, slotID int64) error {
	var booked bool
	err := tx.QueryRowContext(ctx,
		`SELECT is_booked FROM availability_slots WHERE id = $1`, slotID,
	).Scan(&booked)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return entity.ErrSlotNotFound
	case err != nil:
		return fmt.Errorf("failed to check slot: %w", err)
	case booked:
		return entity.ErrSlotAlreadyBooked
	default:
		return entity.ErrSlotInPast
	}
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (r *bookingRepository) GetWithSlot(ctx context.Context, id int64) (*entity.BookingWithSlot, error) {
	query := `SELECT ` + bookingWithSlotColumns + `
		FROM bookings b
		JOIN availability_slots s ON s.id = b.availability_id
		WHERE b.id = $1`

	booking, err := scanBookingWithSlot(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (r *bookingRepository) Transition(ctx context.Context, id int64, from []entity.BookingStatus, to entity.BookingStatus) (*entity.Booking, error) {
	query := `
		UPDATE bookings SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
		RETURNING ` + bookingColumns

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id, to, pq.Array(statusStrings(from))))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, entity.ErrInvalidBookingTransition
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return booking, nil
}

func (r *bookingRepository) Cancel(ctx context.Context, id int64, reason string) (*entity.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE bookings SET status = $2, cancel_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)
		RETURNING ` + bookingColumns

	booking, err := scanBooking(tx.QueryRowContext(ctx, query,
		id,
		entity.BookingStatusCanceled,
		reason,
		pq.Array(statusStrings(entity.SourcesOf(entity.BookingStatusCanceled))),
	))
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check booking: %w", err)
		}
		if !exists {
			return nil, entity.ErrBookingNotFound
		}
		return nil, entity.ErrInvalidBookingTransition
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE availability_slots SET is_booked = FALSE, updated_at = NOW() WHERE id = $1`,
		booking.AvailabilityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to release slot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return booking, nil
}

func (r *bookingRepository) ListByStudent(ctx context.Context, studentID int64, status entity.BookingStatus) ([]*entity.BookingWithSlot, error) {
	return r.listBy(ctx, "b.student_id", studentID, status)
}

func (r *bookingRepository) ListByProfessor(ctx context.Context, professorID int64, status entity.BookingStatus) ([]*entity.BookingWithSlot, error) {
	return r.listBy(ctx, "b.professor_id", professorID, status)
}

func (r *bookingRepository) listBy(ctx context.Context, column string, userID int64, status entity.BookingStatus) ([]*entity.BookingWithSlot, error) {
	query := `SELECT ` + bookingWithSlotColumns + `
		FROM bookings b
		JOIN availability_slots s ON s.id = b.availability_id
		WHERE ` + column + ` = $1 AND ($2 = '' OR b.status = $2)
		ORDER BY s.start_time DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*entity.BookingWithSlot, 0)
	for rows.Next() {
		booking, err := scanBookingWithSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) ListStalePending(ctx context.Context, startedBefore time.Time, limit int) ([]*entity.StaleBooking, error) {
	query := `
		SELECT b.id, b.student_id, b.professor_id, s.start_time
		FROM bookings b
		JOIN availability_slots s ON s.id = b.availability_id
		WHERE b.status = 'PENDING' AND s.start_time < $1
		ORDER BY s.start_time
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, startedBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale bookings: %w", err)
	}
	defer rows.Close()

	var stale []*entity.StaleBooking
	for rows.Next() {
		var b entity.StaleBooking
		if err := rows.Scan(&b.BookingID, &b.StudentID, &b.ProfessorID, &b.StartTime); err != nil {
			return nil, fmt.Errorf("failed to scan stale booking: %w", err)
		}
		stale = append(stale, &b)
	}
	return stale, rows.Err()
}

func (r *bookingRepository) HasCompletedWith(ctx context.Context, studentID, professorID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE student_id = $1 AND professor_id = $2 AND status = 'COMPLETED'
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, studentID, professorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check completed bookings: %w", err)
	}
	return exists, nil
}

func statusStrings(statuses []entity.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func scanBooking(row rowScanner) (*entity.Booking, error) {
	var (
		booking  entity.Booking
		courseID sql.NullInt64
	)
	err := row.Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.ProfessorID,
		&booking.AvailabilityID,
		&courseID,
		&booking.Status,
		&booking.Notes,
		&booking.CancelReason,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.CourseID = int64Ptr(courseID)
	return &booking, nil
}

func scanBookingWithSlot(row rowScanner) (*entity.BookingWithSlot, error) {
	var (
		b        entity.BookingWithSlot
		courseID sql.NullInt64
	)
	err := row.Scan(
		&b.ID,
		&b.StudentID,
		&b.ProfessorID,
		&b.AvailabilityID,
		&courseID,
		&b.Status,
		&b.Notes,
		&b.CancelReason,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.Slot.ID,
		&b.Slot.ProfessorID,
		&b.Slot.StartTime,
		&b.Slot.EndTime,
		&b.Slot.Timezone,
		&b.Slot.IsBooked,
		&b.Slot.CreatedAt,
		&b.Slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.CourseID = int64Ptr(courseID)
	return &b, nil
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

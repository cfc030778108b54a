package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ds124wfegd/learnlink/internal/entity"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, student_id, professor_id, booking_id, course_id, amount, currency, provider, status, external_ref, created_at, updated_at`

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (student_id, professor_id, booking_id, course_id, amount, currency, provider, status, external_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		payment.StudentID,
		nullInt64(payment.ProfessorID),
		nullInt64(payment.BookingID),
		nullInt64(payment.CourseID),
		payment.Amount,
		payment.Currency,
		payment.Provider,
		payment.Status,
		payment.ExternalRef,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

func (r *paymentRepository) MarkStatus(ctx context.Context, id int64, status entity.PaymentStatus, externalRef string) error {
	query := `
		UPDATE payments
		SET status = $2, external_ref = COALESCE(NULLIF($3, ''), external_ref), updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, externalRef)
	switch {
	case isUniqueViolation(err, "payments_course_paid_uidx"):
		return entity.ErrCourseAlreadyOwned
	case isUniqueViolation(err, "payments_booking_paid_uidx"):
		return entity.ErrBookingAlreadyPaid
	case err != nil:
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return entity.ErrPaymentNotFound
	}
	return nil
}

func (r *paymentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments
		WHERE student_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]*entity.Payment, 0)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) HasPaidForCourse(ctx context.Context, studentID, courseID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE student_id = $1 AND course_id = $2 AND status = 'PAID'
		)`

	var paid bool
	if err := r.db.QueryRowContext(ctx, query, studentID, courseID).Scan(&paid); err != nil {
		return false, fmt.Errorf("failed to check course purchase: %w", err)
	}
	return paid, nil
}

func (r *paymentRepository) HasPaidForBooking(ctx context.Context, bookingID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE booking_id = $1 AND status = 'PAID')`

	var paid bool
	if err := r.db.QueryRowContext(ctx, query, bookingID).Scan(&paid); err != nil {
		return false, fmt.Errorf("failed to check booking payment: %w", err)
	}
	return paid, nil
}

func scanPayment(row rowScanner) (*entity.Payment, error) {
	var (
		payment                          entity.Payment
		professorID, bookingID, courseID sql.NullInt64
	)
	err := row.Scan(
		&payment.ID,
		&payment.StudentID,
		&professorID,
		&bookingID,
		&courseID,
		&payment.Amount,
		&payment.Currency,
		&payment.Provider,
		&payment.Status,
		&payment.ExternalRef,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	payment.ProfessorID = int64Ptr(professorID)
	payment.BookingID = int64Ptr(bookingID)
	payment.CourseID = int64Ptr(courseID)
	return &payment, nil
}

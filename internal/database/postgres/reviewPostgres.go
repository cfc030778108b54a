package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/learnlink/internal/entity"
)

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `id, student_id, professor_id, course_id, rating, comment, created_at`

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	query := `
		INSERT INTO reviews (student_id, professor_id, course_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		review.StudentID,
		nullInt64(review.ProfessorID),
		nullInt64(review.CourseID),
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) ExistsForCourse(ctx context.Context, studentID, courseID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM reviews WHERE student_id = $1 AND course_id = $2)`, studentID, courseID)
}

func (r *reviewRepository) ExistsForProfessor(ctx context.Context, studentID, professorID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM reviews WHERE student_id = $1 AND professor_id = $2 AND course_id IS NULL)`, studentID, professorID)
}

func (r *reviewRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check review: %w", err)
	}
	return exists, nil
}

func (r *reviewRepository) ListByCourse(ctx context.Context, courseID int64) ([]*entity.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE course_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, courseID)
}

func (r *reviewRepository) ListByProfessor(ctx context.Context, professorID int64) ([]*entity.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE professor_id = $1 AND course_id IS NULL ORDER BY created_at DESC`
	return r.list(ctx, query, professorID)
}

func (r *reviewRepository) list(ctx context.Context, query string, id int64) ([]*entity.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		var (
			rv                    entity.Review
			professorID, courseID sql.NullInt64
		)
		if err := rows.Scan(
			&rv.ID,
			&rv.StudentID,
			&professorID,
			&courseID,
			&rv.Rating,
			&rv.Comment,
			&rv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		rv.ProfessorID = int64Ptr(professorID)
		rv.CourseID = int64Ptr(courseID)
		reviews = append(reviews, &rv)
	}
	return reviews, rows.Err()
}

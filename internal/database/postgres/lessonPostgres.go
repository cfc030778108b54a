package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ds124wfegd/learnlink/internal/entity"
)

type lessonRepository struct {
	db *sql.DB
}

func NewLessonRepository(db *sql.DB) LessonRepository {
	return &lessonRepository{db: db}
}

const lessonColumns = `id, course_id, title, description, content_url, duration_minutes, price, position, created_at, updated_at`

func (r *lessonRepository) Create(ctx context.Context, lesson *entity.Lesson) error {
	query := `
		INSERT INTO lessons (course_id, title, description, content_url, duration_minutes, price, position)
		VALUES ($1, $2, $3, $4, $5, $6,
			COALESCE(NULLIF($7, 0), (SELECT COALESCE(MAX(position), 0) + 1 FROM lessons WHERE course_id = $1)))
		RETURNING id, position, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		lesson.CourseID,
		lesson.Title,
		lesson.Description,
		lesson.ContentURL,
		lesson.DurationMinutes,
		lesson.Price,
		lesson.Position,
	).Scan(&lesson.ID, &lesson.Position, &lesson.CreatedAt, &lesson.UpdatedAt)
	if isForeignKeyViolation(err) {
		return entity.ErrCourseNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

func (r *lessonRepository) GetByID(ctx context.Context, id int64) (*entity.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`

	lesson, err := scanLesson(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLessonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return lesson, nil
}

func (r *lessonRepository) Update(ctx context.Context, lesson *entity.Lesson) error {
	query := `
		UPDATE lessons
		SET title = $2, description = $3, content_url = $4, duration_minutes = $5, price = $6, position = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		lesson.ID,
		lesson.Title,
		lesson.Description,
		lesson.ContentURL,
		lesson.DurationMinutes,
		lesson.Price,
		lesson.Position,
	).Scan(&lesson.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrLessonNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}
	return nil
}

// Delete locks the course row so a concurrent publish cannot observe
// the course between the delete and the remaining lesson count.
func (r *lessonRepository) Delete(ctx context.Context, courseID, lessonID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var published bool
	err = tx.QueryRowContext(ctx,
		`SELECT published FROM courses WHERE id = $1 FOR UPDATE`, courseID,
	).Scan(&published)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrCourseNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock course: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM lessons WHERE id = $1 AND course_id = $2`, lessonID, courseID)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return entity.ErrLessonNotFound
	}

	// опубликованный курс не может остаться без уроков, откат через defer
	if published {
		var remaining int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM lessons WHERE course_id = $1`, courseID,
		).Scan(&remaining); err != nil {
			return fmt.Errorf("failed to count lessons: %w", err)
		}
		if remaining == 0 {
			return entity.ErrLastLesson
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *lessonRepository) ListByCourse(ctx context.Context, courseID int64) ([]*entity.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE course_id = $1 ORDER BY position, id`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	defer rows.Close()

	lessons := make([]*entity.Lesson, 0)
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}

func scanLesson(row rowScanner) (*entity.Lesson, error) {
	var lesson entity.Lesson
	err := row.Scan(
		&lesson.ID,
		&lesson.CourseID,
		&lesson.Title,
		&lesson.Description,
		&lesson.ContentURL,
		&lesson.DurationMinutes,
		&lesson.Price,
		&lesson.Position,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

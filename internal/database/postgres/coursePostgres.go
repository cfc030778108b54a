package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ds124wfegd/learnlink/internal/entity"
)

type courseRepository struct {
	db *sql.DB
}

func NewCourseRepository(db *sql.DB) CourseRepository {
	return &courseRepository{db: db}
}

const courseColumns = `id, professor_id, title, description, price, currency, category, level, published, cover_url, created_at, updated_at`

func (r *courseRepository) Create(ctx context.Context, course *entity.Course) error {
	query := `
		INSERT INTO courses (professor_id, title, description, price, currency, category, level, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
		RETURNING id, published, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		course.ProfessorID,
		course.Title,
		course.Description,
		course.Price,
		course.Currency,
		course.Category,
		course.Level,
	).Scan(&course.ID, &course.Published, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id int64) (*entity.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	course, err := scanCourse(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (r *courseRepository) Update(ctx context.Context, course *entity.Course) error {
	query := `
		UPDATE courses
		SET title = $2, description = $3, price = $4, currency = $5, category = $6, level = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		course.ID,
		course.Title,
		course.Description,
		course.Price,
		course.Currency,
		course.Category,
		course.Level,
	).Scan(&course.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrCourseNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

func (r *courseRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// только оплаченные покупки блокируют удаление, остальные платежи отвязываются
	var purchased bool
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE course_id = $1 AND status = 'PAID')`
	if err := tx.QueryRowContext(ctx, query, id).Scan(&purchased); err != nil {
		return fmt.Errorf("failed to check course purchases: %w", err)
	}
	if purchased {
		return entity.ErrCoursePurchased
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return entity.ErrCourseNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *courseRepository) SetPublished(ctx context.Context, id int64, published bool) error {
	query := `
		UPDATE courses SET published = $2, updated_at = NOW()
		WHERE id = $1 AND (NOT $2 OR EXISTS (SELECT 1 FROM lessons WHERE course_id = $1))`

	result, err := r.db.ExecContext(ctx, query, id, published)
	if err != nil {
		return fmt.Errorf("failed to update course publication: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return entity.ErrCourseHasNoLesson
}

func (r *courseRepository) SetCover(ctx context.Context, id int64, coverURL string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE courses SET cover_url = $2, updated_at = NOW() WHERE id = $1`, id, coverURL)
	if err != nil {
		return fmt.Errorf("failed to set course cover: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return entity.ErrCourseNotFound
	}
	return nil
}

func (r *courseRepository) ListPublished(ctx context.Context, filter entity.CourseFilter) ([]*entity.Course, error) {
	var (
		conditions = []string{"published = TRUE"}
		args       []interface{}
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Level != "" {
		args = append(args, filter.Level)
		conditions = append(conditions, fmt.Sprintf("level = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM courses WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		courseColumns, strings.Join(conditions, " AND "), len(args)-1, len(args))

	return r.query(ctx, query, args...)
}

func (r *courseRepository) ListByProfessor(ctx context.Context, professorID int64) ([]*entity.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE professor_id = $1 ORDER BY created_at DESC`
	return r.query(ctx, query, professorID)
}

func (r *courseRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entity.Course, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*entity.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

func scanCourse(row rowScanner) (*entity.Course, error) {
	var course entity.Course
	err := row.Scan(
		&course.ID,
		&course.ProfessorID,
		&course.Title,
		&course.Description,
		&course.Price,
		&course.Currency,
		&course.Category,
		&course.Level,
		&course.Published,
		&course.CoverURL,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

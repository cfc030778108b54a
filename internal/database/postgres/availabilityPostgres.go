package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ds124wfegd/learnlink/internal/entity"
)

type availabilityRepository struct {
	db *sql.DB
}

func NewAvailabilityRepository(db *sql.DB) AvailabilityRepository {
	return &availabilityRepository{db: db}
}

const slotColumns = `id, professor_id, start_time, end_time, timezone, is_booked, created_at, updated_at`

func (r *availabilityRepository) Create(ctx context.Context, slot *entity.AvailabilitySlot) error {
	query := `
		INSERT INTO availability_slots (professor_id, start_time, end_time, timezone, is_booked)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id, is_booked, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		slot.ProfessorID,
		slot.StartTime,
		slot.EndTime,
		slot.Timezone,
	).Scan(&slot.ID, &slot.IsBooked, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}
	return nil
}

func (r *availabilityRepository) GetByID(ctx context.Context, id int64) (*entity.AvailabilitySlot, error) {
	query := `SELECT ` + slotColumns + ` FROM availability_slots WHERE id = $1`

	slot, err := scanSlot(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return slot, nil
}

func (r *availabilityRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM availability_slots WHERE id = $1 AND is_booked = FALSE`, id)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Nothing deleted: either the slot is gone or it got booked meanwhile.
	var booked bool
	err = r.db.QueryRowContext(ctx, `SELECT is_booked FROM availability_slots WHERE id = $1`, id).Scan(&booked)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrSlotNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check slot: %w", err)
	}
	return entity.ErrSlotAlreadyBooked
}

func (r *availabilityRepository) ListByProfessor(ctx context.Context, professorID int64) ([]*entity.AvailabilitySlot, error) {
	query := `SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE professor_id = $1
		ORDER BY start_time`

	return r.query(ctx, query, professorID)
}

func (r *availabilityRepository) ListUpcomingUnbooked(ctx context.Context, professorID int64, now time.Time) ([]*entity.AvailabilitySlot, error) {
	query := `SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE professor_id = $1 AND is_booked = FALSE AND start_time > $2
		ORDER BY start_time`

	return r.query(ctx, query, professorID, now)
}

func (r *availabilityRepository) DeleteStaleUnbooked(ctx context.Context, endedBefore time.Time, limit int) (int64, error) {
	query := `
		DELETE FROM availability_slots
		WHERE id IN (
			SELECT id FROM availability_slots
			WHERE is_booked = FALSE AND end_time < $1
			ORDER BY end_time
			LIMIT $2
		)`

	result, err := r.db.ExecContext(ctx, query, endedBefore, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale slots: %w", err)
	}
	return result.RowsAffected()
}

func (r *availabilityRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entity.AvailabilitySlot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	slots := make([]*entity.AvailabilitySlot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func scanSlot(row rowScanner) (*entity.AvailabilitySlot, error) {
	var slot entity.AvailabilitySlot
	err := row.Scan(
		&slot.ID,
		&slot.ProfessorID,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Timezone,
		&slot.IsBooked,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

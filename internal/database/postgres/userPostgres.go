package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/lib/pq"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, name, role, bio, subjects, hourly_rate, currency, telegram_chat_id, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (email, password_hash, name, role, bio, subjects, hourly_rate, currency, telegram_chat_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	if user.Subjects == nil {
		user.Subjects = []string{}
	}

	err := r.db.QueryRowContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.Bio,
		pq.Array(user.Subjects),
		user.HourlyRate,
		user.Currency,
		nullInt64(user.TelegramChatID),
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if isUniqueViolation(err, "users_email_key") {
		return entity.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET name = $2, bio = $3, subjects = $4, hourly_rate = $5, currency = $6,
			telegram_chat_id = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		user.Bio,
		pq.Array(user.Subjects),
		user.HourlyRate,
		user.Currency,
		nullInt64(user.TelegramChatID),
	).Scan(&user.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepository) ListProfessors(ctx context.Context, subject string) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = 'PROFESSOR'`
	args := []interface{}{}
	if subject != "" {
		query += ` AND $1 = ANY(subjects)`
		args = append(args, subject)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list professors: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan professor: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepository) GetTelegramChatIDs(ctx context.Context, userIDs []int64) (map[int64]int64, error) {
	query := `SELECT id, telegram_chat_id FROM users WHERE id = ANY($1) AND telegram_chat_id IS NOT NULL`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get telegram chat ids: %w", err)
	}
	defer rows.Close()

	chats := make(map[int64]int64, len(userIDs))
	for rows.Next() {
		var userID, chatID int64
		if err := rows.Scan(&userID, &chatID); err != nil {
			return nil, err
		}
		chats[userID] = chatID
	}
	return chats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	var (
		user   entity.User
		chatID sql.NullInt64
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.Bio,
		pq.Array(&user.Subjects),
		&user.HourlyRate,
		&user.Currency,
		&chatID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if chatID.Valid {
		user.TelegramChatID = &chatID.Int64
	}
	return &user, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

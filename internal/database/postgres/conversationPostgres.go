package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ds124wfegd/learnlink/internal/entity"
)

type conversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

const conversationColumns = `id, student_id, professor_id, last_message_at, created_at`

// GetOrCreate returns the single conversation for the pair, creating it on first use.
func (r *conversationRepository) GetOrCreate(ctx context.Context, studentID, professorID int64) (*entity.Conversation, error) {
	query := `
		INSERT INTO conversations (student_id, professor_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT conversations_pair_key
		DO UPDATE SET student_id = EXCLUDED.student_id
		RETURNING ` + conversationColumns

	conversation, err := scanConversation(r.db.QueryRowContext(ctx, query, studentID, professorID))
	if isForeignKeyViolation(err) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get or create conversation: %w", err)
	}
	return conversation, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id int64) (*entity.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`

	conversation, err := scanConversation(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return conversation, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID int64) ([]*entity.Conversation, error) {
	query := `SELECT ` + conversationColumns + `
		FROM conversations
		WHERE student_id = $1 OR professor_id = $1
		ORDER BY COALESCE(last_message_at, created_at) DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]*entity.Conversation, 0)
	for rows.Next() {
		conversation, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, conversation)
	}
	return conversations, rows.Err()
}

func (r *conversationRepository) AddMessage(ctx context.Context, msg *entity.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO messages (conversation_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		msg.ConversationID, msg.SenderID, msg.Body,
	).Scan(&msg.ID, &msg.CreatedAt)
	if isForeignKeyViolation(err) {
		return entity.ErrConversationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET last_message_at = $2 WHERE id = $1`,
		msg.ConversationID, msg.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListMessages pages backwards by message id; beforeID 0 starts from the newest.
func (r *conversationRepository) ListMessages(ctx context.Context, conversationID int64, limit int, beforeID int64) ([]*entity.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, body, created_at
		FROM messages
		WHERE conversation_id = $1 AND ($2 = 0 OR id < $2)
		ORDER BY id DESC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, conversationID, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*entity.Message, 0)
	for rows.Next() {
		var m entity.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

func scanConversation(row rowScanner) (*entity.Conversation, error) {
	var (
		c        entity.Conversation
		lastSent sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.StudentID, &c.ProfessorID, &lastSent, &c.CreatedAt); err != nil {
		return nil, err
	}
	if lastSent.Valid {
		c.LastMessageAt = &lastSent.Time
	}
	return &c, nil
}

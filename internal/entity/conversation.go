package entity

import "time"

type Conversation struct {
	ID            int64      `json:"id" db:"id"`
	StudentID     int64      `json:"student_id" db:"student_id"`
	ProfessorID   int64      `json:"professor_id" db:"professor_id"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty" db:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

func (c *Conversation) IsParticipant(userID int64) bool {
	return c.StudentID == userID || c.ProfessorID == userID
}

type Message struct {
	ID             int64     `json:"id" db:"id"`
	ConversationID int64     `json:"conversation_id" db:"conversation_id"`
	SenderID       int64     `json:"sender_id" db:"sender_id"`
	Body           string    `json:"body" db:"body"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

const MaxMessageLength = 4000

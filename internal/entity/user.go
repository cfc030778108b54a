package entity

import "time"

type Role string

const (
	RoleStudent   Role = "STUDENT"
	RoleProfessor Role = "PROFESSOR"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleProfessor
}

type User struct {
	ID             int64     `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Name           string    `json:"name" db:"name"`
	Role           Role      `json:"role" db:"role"`
	Bio            string    `json:"bio" db:"bio"`
	Subjects       []string  `json:"subjects" db:"subjects"`
	HourlyRate     int64     `json:"hourly_rate" db:"hourly_rate"` // minor units
	Currency       string    `json:"currency" db:"currency"`
	TelegramChatID *int64    `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

func (u *User) IsProfessor() bool {
	return u.Role == RoleProfessor
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	ID   int64
	Role Role
}

func (p Principal) Is(role Role) bool {
	return p.Role == role
}

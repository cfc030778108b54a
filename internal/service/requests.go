package service

import (
	"time"

	"github.com/ds124wfegd/learnlink/internal/entity"
)

type RegisterRequest struct {
	Email    string      `json:"email" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Name     string      `json:"name" binding:"required"`
	Role     entity.Role `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *entity.User `json:"user"`
}

// UpdateProfileRequest uses pointers so omitted fields stay unchanged.
type UpdateProfileRequest struct {
	Name           *string  `json:"name"`
	Bio            *string  `json:"bio"`
	HourlyRate     *int64   `json:"hourly_rate"`
	Currency       *string  `json:"currency"`
	Subjects       []string `json:"subjects"`
	TelegramChatID *int64   `json:"telegram_chat_id"`
}

type CreateSlotRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Timezone  string    `json:"timezone"`
}

type CreateBookingRequest struct {
	AvailabilityID int64  `json:"availability_id" binding:"required"`
	CourseID       *int64 `json:"course_id"`
	Notes          string `json:"notes" binding:"max=2000"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// CheckoutRequest targets either a booking or a course, never both.
type CheckoutRequest struct {
	BookingID *int64 `json:"booking_id"`
	CourseID  *int64 `json:"course_id"`
}

type CourseRequest struct {
	Title       string             `json:"title" binding:"required,max=200"`
	Description string             `json:"description"`
	Price       int64              `json:"price" binding:"min=0"`
	Currency    string             `json:"currency"`
	Category    string             `json:"category"`
	Level       entity.CourseLevel `json:"level"`
}

type LessonRequest struct {
	Title           string `json:"title" binding:"required,max=200"`
	Description     string `json:"description"`
	ContentURL      string `json:"content_url"`
	DurationMinutes int    `json:"duration_minutes" binding:"min=0"`
	Price           int64  `json:"price" binding:"min=0"`
	Position        int    `json:"position" binding:"min=0"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"max=2000"`
}

type StartConversationRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

type SendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

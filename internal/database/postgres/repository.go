package repository

import (
	"context"
	"time"

	"github.com/ds124wfegd/learnlink/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	ListProfessors(ctx context.Context, subject string) ([]*entity.User, error)
	GetTelegramChatIDs(ctx context.Context, userIDs []int64) (map[int64]int64, error)
}

type AvailabilityRepository interface {
	Create(ctx context.Context, slot *entity.AvailabilitySlot) error
	GetByID(ctx context.Context, id int64) (*entity.AvailabilitySlot, error)
	// Delete removes the slot only while it is not booked.
	Delete(ctx context.Context, id int64) error
	ListByProfessor(ctx context.Context, professorID int64) ([]*entity.AvailabilitySlot, error)
	ListUpcomingUnbooked(ctx context.Context, professorID int64, now time.Time) ([]*entity.AvailabilitySlot, error)
	DeleteStaleUnbooked(ctx context.Context, endedBefore time.Time, limit int) (int64, error)
}

type BookingRepository interface {
	// Create marks the slot booked and inserts the booking in one transaction.
	Create(ctx context.Context, booking *entity.Booking, now time.Time) error
	GetByID(ctx context.Context, id int64) (*entity.Booking, error)
	GetWithSlot(ctx context.Context, id int64) (*entity.BookingWithSlot, error)
	// Transition moves the booking to `to` only if its current status is in `from`.
	Transition(ctx context.Context, id int64, from []entity.BookingStatus, to entity.BookingStatus) (*entity.Booking, error)
	// Cancel moves the booking to CANCELED and releases its slot.
	Cancel(ctx context.Context, id int64, reason string) (*entity.Booking, error)
	ListByStudent(ctx context.Context, studentID int64, status entity.BookingStatus) ([]*entity.BookingWithSlot, error)
	ListByProfessor(ctx context.Context, professorID int64, status entity.BookingStatus) ([]*entity.BookingWithSlot, error)
	ListStalePending(ctx context.Context, startedBefore time.Time, limit int) ([]*entity.StaleBooking, error)
	HasCompletedWith(ctx context.Context, studentID, professorID int64) (bool, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id int64) (*entity.Payment, error)
	// MarkStatus fails with a conflict when a second PAID row would exist.
	MarkStatus(ctx context.Context, id int64, status entity.PaymentStatus, externalRef string) error
	ListByStudent(ctx context.Context, studentID int64) ([]*entity.Payment, error)
	HasPaidForCourse(ctx context.Context, studentID, courseID int64) (bool, error)
	HasPaidForBooking(ctx context.Context, bookingID int64) (bool, error)
}

type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	GetByID(ctx context.Context, id int64) (*entity.Course, error)
	Update(ctx context.Context, course *entity.Course) error
	Delete(ctx context.Context, id int64) error
	// SetPublished refuses to publish a course that has no lessons.
	SetPublished(ctx context.Context, id int64, published bool) error
	SetCover(ctx context.Context, id int64, coverURL string) error
	ListPublished(ctx context.Context, filter entity.CourseFilter) ([]*entity.Course, error)
	ListByProfessor(ctx context.Context, professorID int64) ([]*entity.Course, error)
}

type LessonRepository interface {
	Create(ctx context.Context, lesson *entity.Lesson) error
	GetByID(ctx context.Context, id int64) (*entity.Lesson, error)
	Update(ctx context.Context, lesson *entity.Lesson) error
	// Delete refuses to remove the last lesson of a published course.
	Delete(ctx context.Context, courseID, lessonID int64) error
	ListByCourse(ctx context.Context, courseID int64) ([]*entity.Lesson, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	ExistsForCourse(ctx context.Context, studentID, courseID int64) (bool, error)
	ExistsForProfessor(ctx context.Context, studentID, professorID int64) (bool, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*entity.Review, error)
	ListByProfessor(ctx context.Context, professorID int64) ([]*entity.Review, error)
}

type ConversationRepository interface {
	GetOrCreate(ctx context.Context, studentID, professorID int64) (*entity.Conversation, error)
	GetByID(ctx context.Context, id int64) (*entity.Conversation, error)
	ListByUser(ctx context.Context, userID int64) ([]*entity.Conversation, error)
	AddMessage(ctx context.Context, msg *entity.Message) error
	ListMessages(ctx context.Context, conversationID int64, limit int, beforeID int64) ([]*entity.Message, error)
}

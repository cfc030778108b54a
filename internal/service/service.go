package service

import (
	"context"
	"io"
	"time"

	"github.com/ds124wfegd/learnlink/internal/entity"
)

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Me(ctx context.Context, p entity.Principal) (*entity.User, error)
	UpdateProfile(ctx context.Context, p entity.Principal, req *UpdateProfileRequest) (*entity.User, error)

	// Публичные операции
	GetProfessor(ctx context.Context, id int64) (*entity.User, error)
	ListProfessors(ctx context.Context, subject string) ([]*entity.User, error)
}

type AvailabilityService interface {
	CreateSlot(ctx context.Context, p entity.Principal, req *CreateSlotRequest) (*entity.AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, p entity.Principal, slotID int64) error
	ListByProfessor(ctx context.Context, professorID int64) ([]*entity.AvailabilitySlot, error)
	ListUpcomingUnbooked(ctx context.Context, professorID int64) ([]*entity.AvailabilitySlot, error)

	// CleanupStaleSlots removes unbooked slots that ended before the cutoff.
	CleanupStaleSlots(ctx context.Context, endedBefore time.Time, batchSize int) (int64, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, p entity.Principal, req *CreateBookingRequest) (*entity.Booking, error)
	ConfirmBooking(ctx context.Context, p entity.Principal, bookingID int64) (*entity.Booking, error)
	CompleteBooking(ctx context.Context, p entity.Principal, bookingID int64) (*entity.Booking, error)
	CancelBooking(ctx context.Context, p entity.Principal, bookingID int64, reason string) (*entity.Booking, error)
	GetBooking(ctx context.Context, p entity.Principal, bookingID int64) (*entity.BookingWithSlot, error)
	ListMyBookings(ctx context.Context, p entity.Principal, status entity.BookingStatus) ([]*entity.BookingWithSlot, error)

	// Операции истечения срока
	CancelStaleBookings(ctx context.Context) (int, error)
}

type PaymentService interface {
	Checkout(ctx context.Context, p entity.Principal, req *CheckoutRequest) (*entity.Payment, error)
	ListMyPayments(ctx context.Context, p entity.Principal) ([]*entity.Payment, error)
}

// AccessResolver answers derived permission questions without side effects.
type AccessResolver interface {
	HasPurchasedCourse(ctx context.Context, studentID, courseID int64) (bool, error)
	CanViewLessonContent(ctx context.Context, userID int64, course *entity.Course) (bool, error)
	CanReview(ctx context.Context, studentID int64, course *entity.Course) (bool, error)
	CanPublish(course *entity.Course) bool
	// Forget drops any cached purchase answer for the pair.
	Forget(ctx context.Context, studentID, courseID int64)
}

type CourseService interface {
	CreateCourse(ctx context.Context, p entity.Principal, req *CourseRequest) (*entity.Course, error)
	UpdateCourse(ctx context.Context, p entity.Principal, courseID int64, req *CourseRequest) (*entity.Course, error)
	DeleteCourse(ctx context.Context, p entity.Principal, courseID int64) error
	PublishCourse(ctx context.Context, p entity.Principal, courseID int64) (*entity.Course, error)
	UnpublishCourse(ctx context.Context, p entity.Principal, courseID int64) (*entity.Course, error)
	UploadCover(ctx context.Context, p entity.Principal, courseID int64, filename string, image io.Reader) (*entity.Course, error)

	// viewer is nil for anonymous callers
	GetCourse(ctx context.Context, viewer *entity.Principal, courseID int64) (*entity.Course, error)
	GetAccess(ctx context.Context, p entity.Principal, courseID int64) (*entity.CourseAccess, error)
	ListPublished(ctx context.Context, filter entity.CourseFilter) ([]*entity.Course, error)
	ListMine(ctx context.Context, p entity.Principal) ([]*entity.Course, error)

	AddLesson(ctx context.Context, p entity.Principal, courseID int64, req *LessonRequest) (*entity.Lesson, error)
	UpdateLesson(ctx context.Context, p entity.Principal, courseID, lessonID int64, req *LessonRequest) (*entity.Lesson, error)
	DeleteLesson(ctx context.Context, p entity.Principal, courseID, lessonID int64) error
}

type ReviewService interface {
	CreateCourseReview(ctx context.Context, p entity.Principal, courseID int64, req *ReviewRequest) (*entity.Review, error)
	CreateProfessorReview(ctx context.Context, p entity.Principal, professorID int64, req *ReviewRequest) (*entity.Review, error)
	ListCourseReviews(ctx context.Context, courseID int64) (*entity.ReviewList, error)
	ListProfessorReviews(ctx context.Context, professorID int64) (*entity.ReviewList, error)
}

type MessageService interface {
	StartConversation(ctx context.Context, p entity.Principal, otherUserID int64) (*entity.Conversation, error)
	SendMessage(ctx context.Context, p entity.Principal, conversationID int64, body string) (*entity.Message, error)
	ListConversations(ctx context.Context, p entity.Principal) ([]*entity.Conversation, error)
	ListMessages(ctx context.Context, p entity.Principal, conversationID int64, limit int, beforeID int64) ([]*entity.Message, error)
}

// EventPublisher receives domain events after the state change commits.
type EventPublisher interface {
	Publish(ctx context.Context, event *entity.DomainEvent) error
}

// PurchaseCache remembers positive purchase answers.
type PurchaseCache interface {
	IsPurchased(ctx context.Context, studentID, courseID int64) (bool, error)
	MarkPurchased(ctx context.Context, studentID, courseID int64) error
	Invalidate(ctx context.Context, studentID, courseID int64) error
}

// CoverStorage keeps course cover images and returns their public URL.
type CoverStorage interface {
	SaveCover(ctx context.Context, courseID int64, filename string, image io.Reader) (string, error)
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64, role entity.Role) (string, time.Time, error)
}

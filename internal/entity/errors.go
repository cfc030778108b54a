package entity

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain error wraps exactly one of them and
// the transport layer maps kinds to HTTP status codes.
var (
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInvalidState    = errors.New("invalid state")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrPaymentDeclined = errors.New("payment declined")
)

var (
	// User errors
	ErrUserNotFound       = kind(ErrNotFound, "user not found")
	ErrProfessorNotFound  = kind(ErrNotFound, "professor not found")
	ErrEmailTaken         = kind(ErrConflict, "email already registered")
	ErrInvalidCredentials = kind(ErrUnauthenticated, "invalid email or password")
	ErrInvalidToken       = kind(ErrUnauthenticated, "invalid or expired token")

	// Availability errors
	ErrSlotNotFound      = kind(ErrNotFound, "availability slot not found")
	ErrSlotAlreadyBooked = kind(ErrConflict, "availability slot is already booked")
	ErrSlotInPast        = kind(ErrValidation, "slot start time must be in the future")
	ErrSlotTimeRange     = kind(ErrValidation, "end time must be after start time")

	// Booking errors
	ErrBookingNotFound          = kind(ErrNotFound, "booking not found")
	ErrInvalidBookingTransition = kind(ErrInvalidState, "booking status does not allow this transition")

	// Payment errors
	ErrPaymentNotFound      = kind(ErrNotFound, "payment not found")
	ErrCourseAlreadyOwned   = kind(ErrConflict, "course already purchased")
	ErrBookingAlreadyPaid   = kind(ErrConflict, "booking already paid")
	ErrBookingNotPayable    = kind(ErrInvalidState, "canceled booking cannot be paid")
	ErrCheckoutTarget       = kind(ErrValidation, "exactly one of booking_id or course_id is required")
	ErrOwnCoursePurchase    = kind(ErrValidation, "professors cannot purchase their own course")
	ErrProfessorRateMissing = kind(ErrValidation, "professor has no hourly rate set")

	// Course errors
	ErrCourseNotFound    = kind(ErrNotFound, "course not found")
	ErrLessonNotFound    = kind(ErrNotFound, "lesson not found")
	ErrCourseHasNoLesson = kind(ErrValidation, "course must have at least one lesson to be published")
	ErrLastLesson        = kind(ErrConflict, "cannot remove the last lesson of a published course")
	ErrUnsupportedImage  = kind(ErrValidation, "cover must be a jpeg or png image")
	ErrCoursePurchased   = kind(ErrConflict, "course has purchases and cannot be deleted")

	// Review errors
	ErrReviewExists     = kind(ErrConflict, "review already exists")
	ErrReviewNotAllowed = kind(ErrForbidden, "review requires a purchase or a completed session")
	ErrInvalidRating    = kind(ErrValidation, "rating must be between 1 and 5")

	// Messaging errors
	ErrConversationNotFound = kind(ErrNotFound, "conversation not found")
	ErrInvalidParticipants  = kind(ErrValidation, "conversation requires one student and one professor")

	// Authorization errors
	ErrRoleRequired = kind(ErrForbidden, "role not permitted for this operation")
	ErrNotOwner     = kind(ErrForbidden, "resource belongs to another user")
)

// kind builds a sentinel that satisfies errors.Is for its kind.
func kind(k error, msg string) error {
	return fmt.Errorf("%w: %s", k, msg)
}

// Invalidf is shorthand for ad-hoc input validation errors.
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

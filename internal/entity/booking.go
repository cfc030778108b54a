package entity

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCanceled  BookingStatus = "CANCELED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// bookingTransitions lists the statuses reachable from each status.
// Terminal statuses have no entry.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCanceled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCanceled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCanceled, BookingStatusCompleted:
		return true
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SourcesOf returns every status from which next can be reached.
func SourcesOf(next BookingStatus) []BookingStatus {
	var from []BookingStatus
	for _, s := range []BookingStatus{BookingStatusPending, BookingStatusConfirmed} {
		if s.CanTransitionTo(next) {
			from = append(from, s)
		}
	}
	return from
}

type Booking struct {
	ID             int64         `json:"id" db:"id"`
	StudentID      int64         `json:"student_id" db:"student_id"`
	ProfessorID    int64         `json:"professor_id" db:"professor_id"`
	AvailabilityID int64         `json:"availability_id" db:"availability_id"`
	CourseID       *int64        `json:"course_id,omitempty" db:"course_id"`
	Status         BookingStatus `json:"status" db:"status"`
	Notes          string        `json:"notes" db:"notes"`
	CancelReason   string        `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

func (b *Booking) IsParticipant(userID int64) bool {
	return b.StudentID == userID || b.ProfessorID == userID
}

// BookingWithSlot is a booking joined with the slot it occupies.
type BookingWithSlot struct {
	Booking
	Slot AvailabilitySlot `json:"slot"`
}

// StaleBooking is a pending booking whose session start already passed.
type StaleBooking struct {
	BookingID   int64     `json:"booking_id"`
	StudentID   int64     `json:"student_id"`
	ProfessorID int64     `json:"professor_id"`
	StartTime   time.Time `json:"start_time"`
}

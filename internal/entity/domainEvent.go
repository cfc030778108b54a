package entity

import (
	"strconv"
	"time"
)

type EventType string

const (
	EventBookingCreated   EventType = "booking.created"
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingCompleted EventType = "booking.completed"
	EventBookingCanceled  EventType = "booking.canceled"
	EventPaymentPaid      EventType = "payment.paid"
	EventPaymentFailed    EventType = "payment.failed"
	EventSessionReminder  EventType = "session.reminder"
)

// DomainEvent is emitted after a booking or payment state change commits.
type DomainEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	OccurredAt  time.Time `json:"occurred_at"`
	BookingID   int64     `json:"booking_id,omitempty"`
	PaymentID   int64     `json:"payment_id,omitempty"`
	CourseID    int64     `json:"course_id,omitempty"`
	StudentID   int64     `json:"student_id,omitempty"`
	ProfessorID int64     `json:"professor_id,omitempty"`
	StartTime   time.Time `json:"start_time,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

// Key picks the partitioning key for brokers.
func (e *DomainEvent) Key() string {
	switch {
	case e.BookingID != 0:
		return "booking-" + itoa(e.BookingID)
	case e.PaymentID != 0:
		return "payment-" + itoa(e.PaymentID)
	}
	return e.ID
}

// Recipients lists users who should be told about the event.
func (e *DomainEvent) Recipients() []int64 {
	var ids []int64
	if e.StudentID != 0 {
		ids = append(ids, e.StudentID)
	}
	if e.ProfessorID != 0 && e.ProfessorID != e.StudentID {
		ids = append(ids, e.ProfessorID)
	}
	return ids
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

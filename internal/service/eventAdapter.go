package service

import (
	"context"
	"time"

	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, *entity.DomainEvent) error { return nil }

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func newBookingEvent(t entity.EventType, b *entity.Booking, startTime time.Time) *entity.DomainEvent {
	event := &entity.DomainEvent{
		ID:          uuid.NewString(),
		Type:        t,
		OccurredAt:  time.Now().UTC(),
		BookingID:   b.ID,
		StudentID:   b.StudentID,
		ProfessorID: b.ProfessorID,
		StartTime:   startTime,
		Reason:      b.CancelReason,
	}
	if b.CourseID != nil {
		event.CourseID = *b.CourseID
	}
	return event
}

func newPaymentEvent(t entity.EventType, p *entity.Payment) *entity.DomainEvent {
	event := &entity.DomainEvent{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		PaymentID:  p.ID,
		StudentID:  p.StudentID,
	}
	if p.BookingID != nil {
		event.BookingID = *p.BookingID
	}
	if p.CourseID != nil {
		event.CourseID = *p.CourseID
	}
	if p.ProfessorID != nil && t == entity.EventPaymentPaid {
		event.ProfessorID = *p.ProfessorID
	}
	return event
}

// emit hands the event to the publisher; failures never reach the caller.
func emit(ctx context.Context, publisher EventPublisher, event *entity.DomainEvent) {
	if err := publisher.Publish(ctx, event); err != nil {
		logrus.WithFields(logrus.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"error":      err,
		}).Warn("Failed to publish domain event")
	}
}

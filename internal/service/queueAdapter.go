package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ds124wfegd/learnlink/internal/entity"
	"github.com/ds124wfegd/learnlink/pkg/queue"
)

// QueueAdapter turns domain events into notification tasks
type QueueAdapter struct {
	queue          queue.Queue
	reminderBefore time.Duration
	maxRetries     int
	now            func() time.Time
}

func NewQueueAdapter(q queue.Queue, reminderBefore time.Duration, maxRetries int) *QueueAdapter {
	return &QueueAdapter{
		queue:          q,
		reminderBefore: reminderBefore,
		maxRetries:     maxRetries,
		now:            time.Now,
	}
}

// Publish enqueues a notification and, for confirmed sessions, a reminder.
func (a *QueueAdapter) Publish(ctx context.Context, event *entity.DomainEvent) error {
	if a.queue == nil {
		return nil
	}

	task, err := queue.NewEventTask("notify_"+event.ID, queue.TaskTypeNotify, event, time.Time{}, a.maxRetries)
	if err != nil {
		return err
	}
	if err := a.queue.Publish(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}

	if event.Type != entity.EventBookingConfirmed || event.StartTime.IsZero() || a.reminderBefore <= 0 {
		return nil
	}
	remindAt := event.StartTime.Add(-a.reminderBefore)
	if !remindAt.After(a.now()) {
		return nil
	}

	reminder, err := queue.NewEventTask(
		fmt.Sprintf("reminder_booking_%d", event.BookingID),
		queue.TaskTypeSessionReminder, event, remindAt, a.maxRetries,
	)
	if err != nil {
		return err
	}
	if err := a.queue.Publish(ctx, reminder); err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}
	return nil
}

func (a *QueueAdapter) Close() error {
	if a.queue == nil {
		return nil
	}
	return a.queue.Close()
}

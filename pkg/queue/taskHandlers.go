package queue

import (
	"context"
	"fmt"

	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/sirupsen/logrus"
)

// ChatResolver maps user ids to their telegram chat ids.
type ChatResolver interface {
	GetTelegramChatIDs(ctx context.Context, userIDs []int64) (map[int64]int64, error)
}

// BookingLookup reads the current state of a booking.
type BookingLookup interface {
	GetByID(ctx context.Context, id int64) (*entity.Booking, error)
}

// Sender delivers a text message to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// TaskHandler обрабатывает задачи из очереди
type TaskHandler struct {
	chats    ChatResolver
	bookings BookingLookup
	sender   Sender
}

func NewTaskHandler(chats ChatResolver, bookings BookingLookup, sender Sender) *TaskHandler {
	return &TaskHandler{
		chats:    chats,
		bookings: bookings,
		sender:   sender,
	}
}

// HandleTask обрабатывает задачу
func (h *TaskHandler) HandleTask(ctx context.Context, task *Task) error {
	event, err := task.Event()
	if err != nil {
		return err
	}

	switch task.Type {
	case TaskTypeNotify:
		return h.notify(ctx, event)
	case TaskTypeSessionReminder:
		return h.remind(ctx, event)
	}
	return fmt.Errorf("%w: unknown task type %q", ErrPermanent, task.Type)
}

// remind skips bookings that are no longer confirmed.
func (h *TaskHandler) remind(ctx context.Context, event *entity.DomainEvent) error {
	booking, err := h.bookings.GetByID(ctx, event.BookingID)
	if err != nil {
		return err
	}
	if booking.Status != entity.BookingStatusConfirmed {
		logrus.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"status":     booking.Status,
		}).Debug("Reminder skipped")
		return nil
	}

	reminder := *event
	reminder.Type = entity.EventSessionReminder
	return h.notify(ctx, &reminder)
}

func (h *TaskHandler) notify(ctx context.Context, event *entity.DomainEvent) error {
	text := FormatMessage(event)
	if text == "" {
		return nil
	}

	recipients := event.Recipients()
	if len(recipients) == 0 {
		return nil
	}

	chats, err := h.chats.GetTelegramChatIDs(ctx, recipients)
	if err != nil {
		return fmt.Errorf("failed to resolve chat ids: %w", err)
	}

	var failed error
	for _, userID := range recipients {
		chatID, ok := chats[userID]
		if !ok {
			continue
		}
		if err := h.sender.Send(ctx, chatID, text); err != nil {
			failed = fmt.Errorf("failed to notify user %d: %w", userID, err)
		}
	}
	// a retry resends to every recipient
	return failed
}

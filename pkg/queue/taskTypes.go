package queue

import (
	"context"
)

// Queue интерфейс очереди
type Queue interface {
	Publish(ctx context.Context, task *Task) error
	Subscribe(ctx context.Context, handler HandlerFunc) error
	Close() error
}

// HandlerFunc processes one task; a returned error triggers a retry.
type HandlerFunc func(ctx context.Context, task *Task) error

type TaskType string

const (
	// TaskTypeNotify delivers a domain event to the people involved.
	TaskTypeNotify TaskType = "notify"
	// TaskTypeSessionReminder fires shortly before a confirmed session.
	TaskTypeSessionReminder TaskType = "session_reminder"
)

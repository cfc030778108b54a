package queue

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/ds124wfegd/learnlink/internal/entity"
)

// Task represents a unit of work in the queue
type Task struct {
	ID         string          `json:"id"`
	Type       TaskType        `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	ExecuteAt  time.Time       `json:"execute_at"`
	CreatedAt  time.Time       `json:"created_at"`
	Attempts   int             `json:"attempts"`
	MaxRetries int             `json:"max_retries"`
}

// NewEventTask wraps a domain event so the consumer can rebuild it.
func NewEventTask(id string, taskType TaskType, event *entity.DomainEvent, executeAt time.Time, maxRetries int) (*Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return &Task{
		ID:         id,
		Type:       taskType,
		Payload:    payload,
		ExecuteAt:  executeAt,
		MaxRetries: maxRetries,
	}, nil
}

// Event decodes the domain event carried by the task.
func (t *Task) Event() (*entity.DomainEvent, error) {
	var event entity.DomainEvent
	if err := json.Unmarshal(t.Payload, &event); err != nil {
		return nil, fmt.Errorf("%w: task %s has a malformed payload: %v", ErrPermanent, t.ID, err)
	}
	return &event, nil
}

// generateTaskID generates a unique task ID
func generateTaskID() string {
	return fmt.Sprintf("task_%d_%d", time.Now().UnixNano(), rand.Int63())
}

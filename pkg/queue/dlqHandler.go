package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// DLQHandler handles failed tasks by moving them to Dead Letter Queue
type DLQHandler interface {
	HandleFailedTask(ctx context.Context, task *Task, err error)
}

// DefaultDLQHandler keeps dead tasks in a sorted set scored by failure time
type DefaultDLQHandler struct {
	client *redis.Client
	dlq    string
}

// FailedTask represents a task that failed execution
type FailedTask struct {
	Task     *Task     `json:"task"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
	Attempts int       `json:"attempts"`
}

// NewDefaultDLQHandler creates a new DefaultDLQHandler
func NewDefaultDLQHandler(client *redis.Client, dlq string) *DefaultDLQHandler {
	return &DefaultDLQHandler{
		client: client,
		dlq:    dlq,
	}
}

// HandleFailedTask stores a failed task in the DLQ
func (d *DefaultDLQHandler) HandleFailedTask(ctx context.Context, task *Task, err error) {
	failedTask := &FailedTask{
		Task:     task,
		Error:    err.Error(),
		FailedAt: time.Now(),
		Attempts: task.Attempts,
	}

	taskData, marshalErr := json.Marshal(failedTask)
	if marshalErr != nil {
		logrus.WithError(marshalErr).Error("Failed to marshal failed task")
		return
	}

	// the caller's context may already be canceled on shutdown
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	redisErr := d.client.ZAdd(ctx, d.dlq, &redis.Z{
		Score:  float64(failedTask.FailedAt.UnixNano()) / 1e9,
		Member: taskData,
	}).Err()
	if redisErr != nil {
		logrus.WithError(redisErr).WithField("task_id", task.ID).Error("Failed to send task to DLQ")
		return
	}

	logrus.WithFields(logrus.Fields{
		"task_id": task.ID,
		"error":   err,
	}).Warn("Task moved to DLQ")
}

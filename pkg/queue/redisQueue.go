package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxRetries   = 3
	defaultBaseDelay    = 5 * time.Second
	defaultQueueTimeout = 5 * time.Second
	defaultPollInterval = time.Second
	defaultDLQThreshold = 1000
)

// RedisQueue implements Queue interface using Redis
type RedisQueue struct {
	client          *redis.Client
	mainQueue       string
	delayedQueue    string
	processingQueue string
	dlq             string
	metricsPrefix   string
	retryManager    *RetryManager
	dlqHandler      DLQHandler
	config          *RedisQueueConfig
	stopChan        chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup
}

// RedisQueueConfig contains configuration for RedisQueue
type RedisQueueConfig struct {
	// Prefix namespaces every key the queue touches
	Prefix string

	MaxRetries    int
	BaseDelay     time.Duration
	QueueTimeout  time.Duration
	PollInterval  time.Duration
	DLQThreshold  int
	EnableMetrics bool
}

// DefaultRedisQueueConfig returns default configuration
func DefaultRedisQueueConfig(prefix string) *RedisQueueConfig {
	return &RedisQueueConfig{
		Prefix:        prefix,
		MaxRetries:    defaultMaxRetries,
		BaseDelay:     defaultBaseDelay,
		QueueTimeout:  defaultQueueTimeout,
		PollInterval:  defaultPollInterval,
		DLQThreshold:  defaultDLQThreshold,
		EnableMetrics: true,
	}
}

// DLQKey is the sorted set holding dead tasks for the prefix.
func DLQKey(prefix string) string {
	return prefix + ":dlq"
}

// NewRedisQueue creates a new RedisQueue on top of an existing client
func NewRedisQueue(client *redis.Client, cfg *RedisQueueConfig, retryManager *RetryManager, dlqHandler DLQHandler) (*RedisQueue, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg == nil {
		cfg = DefaultRedisQueueConfig("learnlink")
	}
	if retryManager == nil {
		retryManager = NewRetryManager(cfg.MaxRetries, cfg.BaseDelay)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = defaultQueueTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	q := &RedisQueue{
		client:          client,
		mainQueue:       cfg.Prefix + ":tasks",
		delayedQueue:    cfg.Prefix + ":tasks:delayed",
		processingQueue: cfg.Prefix + ":tasks:processing",
		dlq:             DLQKey(cfg.Prefix),
		metricsPrefix:   cfg.Prefix + ":metrics:",
		retryManager:    retryManager,
		dlqHandler:      dlqHandler,
		config:          cfg,
		stopChan:        make(chan struct{}),
	}

	logrus.WithFields(logrus.Fields{
		"main":    q.mainQueue,
		"delayed": q.delayedQueue,
		"dlq":     q.dlq,
	}).Info("RedisQueue initialized")

	return q, nil
}

// Publish sends a task to the queue
func (r *RedisQueue) Publish(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}
	if err := r.validateTask(task); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	// Use Redis Sorted Set for delayed tasks
	if task.ExecuteAt.After(time.Now()) {
		err = r.client.ZAdd(ctx, r.delayedQueue, &redis.Z{
			Score:  float64(task.ExecuteAt.UnixNano()) / 1e9,
			Member: taskData,
		}).Err()
		if err != nil {
			return fmt.Errorf("failed to publish delayed task: %w", err)
		}
		r.incrementMetric(ctx, "tasks_delayed")

		logrus.WithFields(logrus.Fields{
			"task_id":    task.ID,
			"execute_at": task.ExecuteAt.Format(time.RFC3339),
		}).Debug("Task scheduled")
		return nil
	}

	if err := r.client.LPush(ctx, r.mainQueue, taskData).Err(); err != nil {
		return fmt.Errorf("failed to publish immediate task: %w", err)
	}
	r.incrementMetric(ctx, "tasks_queued")

	logrus.WithField("task_id", task.ID).Debug("Task published to main queue")
	return nil
}

// Subscribe starts consuming tasks from the queue in the background
func (r *RedisQueue) Subscribe(ctx context.Context, handler HandlerFunc) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	r.wg.Add(3)
	go r.processDelayedTasks(ctx)
	go r.processMainQueue(ctx, handler)
	go r.monitorQueueMetrics(ctx)

	logrus.Info("RedisQueue subscriber started")
	return nil
}

// processMainQueue processes tasks from the main queue
func (r *RedisQueue) processMainQueue(ctx context.Context, handler HandlerFunc) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		default:
			if err := r.processNext(ctx, handler); err != nil && ctx.Err() == nil {
				logrus.WithError(err).Error("Error processing queue")
				time.Sleep(time.Second) // Backoff on error
			}
		}
	}
}

// processNext moves one task to the processing list and runs it
func (r *RedisQueue) processNext(ctx context.Context, handler HandlerFunc) error {
	taskData, err := r.client.BRPopLPush(ctx, r.mainQueue, r.processingQueue, r.config.QueueTimeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil // Timeout, no tasks
	}
	if err != nil {
		return fmt.Errorf("failed to move task to processing queue: %w", err)
	}

	defer func() {
		// Remove from processing queue regardless of outcome
		if err := r.client.LRem(context.Background(), r.processingQueue, 1, taskData).Err(); err != nil {
			logrus.WithError(err).Warn("Failed to remove task from processing queue")
		}
	}()

	var task Task
	if err := json.Unmarshal([]byte(taskData), &task); err != nil {
		r.deadLetter(ctx, &Task{
			ID:        fmt.Sprintf("corrupted_%d", time.Now().UnixNano()),
			Type:      "corrupted",
			Payload:   json.RawMessage(fmt.Sprintf("%q", taskData)),
			CreatedAt: time.Now(),
		}, fmt.Errorf("%w: invalid task format: %v", ErrPermanent, err))
		return nil
	}

	log := logrus.WithFields(logrus.Fields{
		"task_id":   task.ID,
		"task_type": task.Type,
	})
	if err := r.executeTaskWithRetry(ctx, &task, handler); err != nil {
		log.WithError(err).WithField("attempts", task.Attempts).Error("Task failed")
		r.deadLetter(ctx, &task, err)
		return nil
	}

	log.Debug("Task completed")
	return nil
}

// processDelayedTasks moves ready delayed tasks to main queue
func (r *RedisQueue) processDelayedTasks(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case <-ticker.C:
			if err := r.moveReadyDelayedTasks(ctx); err != nil && ctx.Err() == nil {
				logrus.WithError(err).Error("Failed to process delayed tasks")
			}
		}
	}
}

// moveReadyDelayedTasks moves ready delayed tasks to main queue
func (r *RedisQueue) moveReadyDelayedTasks(ctx context.Context) error {
	now := fmt.Sprintf("%f", float64(time.Now().UnixNano())/1e9)

	tasks, err := r.client.ZRangeByScore(ctx, r.delayedQueue, &redis.ZRangeBy{
		Min: "0",
		Max: now,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to get delayed tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	for _, taskData := range tasks {
		pipe.LPush(ctx, r.mainQueue, taskData)
		pipe.ZRem(ctx, r.delayedQueue, taskData)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to move delayed tasks: %w", err)
	}

	r.incrementMetricBy(ctx, "tasks_delayed_processed", int64(len(tasks)))
	logrus.WithField("count", len(tasks)).Debug("Moved delayed tasks to main queue")
	return nil
}

// executeTaskWithRetry executes a task with retry logic
func (r *RedisQueue) executeTaskWithRetry(ctx context.Context, task *Task, handler HandlerFunc) error {
	for {
		task.Attempts++

		err := handler(ctx, task)
		if err == nil {
			r.incrementMetric(ctx, "tasks_success")
			return nil
		}
		r.incrementMetric(ctx, "tasks_failure")

		shouldRetry, delay := r.retryManager.ShouldRetry(task, err)
		if !shouldRetry {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"task_id":  task.ID,
			"attempt":  task.Attempts,
			"retry_in": delay,
			"error":    err,
		}).Warn("Task failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stopChan:
			return errors.New("queue stopped")
		case <-time.After(delay):
		}
	}
}

func (r *RedisQueue) deadLetter(ctx context.Context, task *Task, err error) {
	if r.dlqHandler == nil {
		return
	}
	r.dlqHandler.HandleFailedTask(ctx, task, err)
	r.incrementMetric(ctx, "tasks_dlq")
}

// validateTask validates task structure and sets defaults
func (r *RedisQueue) validateTask(task *Task) error {
	if task.ID == "" {
		task.ID = generateTaskID()
	}
	if task.Type == "" {
		return errors.New("task type is required")
	}
	if task.MaxRetries == 0 {
		task.MaxRetries = r.config.MaxRetries
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	if task.ExecuteAt.IsZero() {
		task.ExecuteAt = task.CreatedAt
	}
	return nil
}

// monitorQueueMetrics warns when the main queue grows past the threshold
func (r *RedisQueue) monitorQueueMetrics(ctx context.Context) {
	defer r.wg.Done()

	if !r.config.EnableMetrics {
		return
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case <-ticker.C:
			stats, err := r.Stats(ctx)
			if err != nil {
				logrus.WithError(err).Warn("Failed to collect queue metrics")
				continue
			}
			if stats.MainQueue > int64(r.config.DLQThreshold) {
				logrus.WithFields(logrus.Fields{
					"size":      stats.MainQueue,
					"threshold": r.config.DLQThreshold,
				}).Warn("Main queue size exceeds threshold")
			}
		}
	}
}

func (r *RedisQueue) incrementMetric(ctx context.Context, metric string) {
	r.incrementMetricBy(ctx, metric, 1)
}

func (r *RedisQueue) incrementMetricBy(ctx context.Context, metric string, value int64) {
	if !r.config.EnableMetrics {
		return
	}

	key := r.metricsPrefix + metric
	pipe := r.client.Pipeline()
	pipe.IncrBy(ctx, key, value)
	pipe.Expire(ctx, key, 24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		logrus.WithError(err).Debug("Failed to record queue metric")
	}
}

// Stats returns current queue lengths
func (r *RedisQueue) Stats(ctx context.Context) (*QueueStats, error) {
	pipe := r.client.Pipeline()

	mainLen := pipe.LLen(ctx, r.mainQueue)
	delayedLen := pipe.ZCard(ctx, r.delayedQueue)
	processingLen := pipe.LLen(ctx, r.processingQueue)
	dlqLen := pipe.ZCard(ctx, r.dlq)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to get queue stats: %w", err)
	}

	return &QueueStats{
		MainQueue:       mainLen.Val(),
		DelayedQueue:    delayedLen.Val(),
		ProcessingQueue: processingLen.Val(),
		DLQ:             dlqLen.Val(),
		Timestamp:       time.Now(),
	}, nil
}

// Close stops the consumers; the client belongs to the caller
func (r *RedisQueue) Close() error {
	r.stopOnce.Do(func() { close(r.stopChan) })
	r.wg.Wait()

	logrus.Info("RedisQueue closed")
	return nil
}

// QueueStats contains statistics about queue state
type QueueStats struct {
	MainQueue       int64     `json:"main_queue"`
	DelayedQueue    int64     `json:"delayed_queue"`
	ProcessingQueue int64     `json:"processing_queue"`
	DLQ             int64     `json:"dlq"`
	Timestamp       time.Time `json:"timestamp"`
}

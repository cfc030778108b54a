package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultPurchaseTTL = 10 * time.Minute

// PurchaseCache keeps positive "student owns course" answers in redis.
// Only positives are stored, a miss always falls through to postgres.
type PurchaseCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPurchaseCache(client *redis.Client, ttl time.Duration) *PurchaseCache {
	if ttl <= 0 {
		ttl = defaultPurchaseTTL
	}
	return &PurchaseCache{client: client, ttl: ttl}
}

func purchaseKey(studentID, courseID int64) string {
	return fmt.Sprintf("purchase:%d:%d", studentID, courseID)
}

func (c *PurchaseCache) IsPurchased(ctx context.Context, studentID, courseID int64) (bool, error) {
	err := c.client.Get(ctx, purchaseKey(studentID, courseID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read purchase cache: %w", err)
	}
	return true, nil
}

func (c *PurchaseCache) MarkPurchased(ctx context.Context, studentID, courseID int64) error {
	if err := c.client.Set(ctx, purchaseKey(studentID, courseID), 1, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write purchase cache: %w", err)
	}
	return nil
}

func (c *PurchaseCache) Invalidate(ctx context.Context, studentID, courseID int64) error {
	if err := c.client.Del(ctx, purchaseKey(studentID, courseID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate purchase cache: %w", err)
	}
	return nil
}

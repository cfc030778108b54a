package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestPurchaseKey(t *testing.T) {
	assert.Equal(t, "purchase:3:17", purchaseKey(3, 17))
}

func TestPurchaseCache_DefaultTTL(t *testing.T) {
	c := NewPurchaseCache(redis.NewClient(&redis.Options{Addr: "localhost:0"}), 0)
	assert.Equal(t, defaultPurchaseTTL, c.ttl)
}

func TestPurchaseCache_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := NewPurchaseCache(client, time.Minute)

	ok, err := c.IsPurchased(context.Background(), 1, 2)

	assert.False(t, ok)
	assert.ErrorContains(t, err, "failed to read purchase cache")
}

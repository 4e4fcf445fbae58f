package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// FixedWindow is a Redis-backed limiter for deployments with more than one
// replica: counters live in Redis so all replicas share limit state. It
// allows up to capacity requests per key per window using INCR with a
// window-sized expiry.
type FixedWindow struct {
	rdb      redis.Cmdable
	capacity int
	window   time.Duration
}

func NewFixedWindow(rdb redis.Cmdable, capacity int, window time.Duration) *FixedWindow {
	return &FixedWindow{rdb: rdb, capacity: capacity, window: window}
}

// Allow increments the key's window counter and checks it against capacity.
// Redis failures allow the request through rather than blocking all traffic.
func (fw *FixedWindow) Allow(key string) bool {
	ctx := context.Background()
	redisKey := fmt.Sprintf("rate:req:%s", key)

	count, err := fw.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		log.Printf("rate limit check failed for %s, allowing request: %v", key, err)
		return true
	}

	// Set expiration if first request in the window
	if count == 1 {
		fw.rdb.Expire(ctx, redisKey, fw.window)
	}

	return count <= int64(fw.capacity)
}

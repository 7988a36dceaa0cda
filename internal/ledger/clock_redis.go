package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"procurement/pkg/platform/sentinel"
)

// DefaultHeightKey is where a chain follower publishes the tip height.
const DefaultHeightKey = "ledger:block-height"

// RedisClock reads the block height maintained by an external chain
// follower. A missing key reports ErrUnavailable.
type RedisClock struct {
	client *redis.Client
	key    string

	mu   sync.Mutex
	last uint64
}

func NewRedisClock(client *redis.Client, key string) *RedisClock {
	if key == "" {
		key = DefaultHeightKey
	}
	return &RedisClock{client: client, key: key}
}

func (c *RedisClock) Height(ctx context.Context) (uint64, error) {
	raw, err := c.client.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("block height key %q: %w", c.key, sentinel.ErrUnavailable)
	}
	if err != nil {
		return 0, fmt.Errorf("read block height: %w", err)
	}
	h, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse block height %q: %w", raw, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if h < c.last {
		h = c.last
	}
	c.last = h
	return h, nil
}

// Publish stores a new tip height. Used by followers and integration tests.
func (c *RedisClock) Publish(ctx context.Context, height uint64) error {
	return c.client.Set(ctx, c.key, strconv.FormatUint(height, 10), 0).Err()
}

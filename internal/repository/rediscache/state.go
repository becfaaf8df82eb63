package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/timeclock"
)

const stateKeyPrefix = "timeclock:state:"

// StateCache keeps derived user state in Redis so the punch terminal and
// dashboard avoid loading the full document for state-only reads. The user
// document remains the state of record; entries expire on their own.
type StateCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStateCache(client *redis.Client, ttl time.Duration) *StateCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &StateCache{client: client, ttl: ttl}
}

// Get implements timeclock.StateCache. A miss is (nil, nil).
func (c *StateCache) Get(ctx context.Context, userID string) (*timeclock.UserState, error) {
	payload, err := c.client.Get(ctx, stateKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached state: %w", err)
	}

	var state timeclock.UserState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("unmarshal cached state: %w", err)
	}
	return &state, nil
}

// Set implements timeclock.StateCache.
func (c *StateCache) Set(ctx context.Context, userID string, state timeclock.UserState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := c.client.Set(ctx, stateKeyPrefix+userID, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached state: %w", err)
	}
	return nil
}

// Invalidate implements timeclock.StateCache.
func (c *StateCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, stateKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("invalidate cached state: %w", err)
	}
	return nil
}

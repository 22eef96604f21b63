package limiter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "limiter:reservations:"

const redisTimeout = 300 * time.Millisecond

// Limiter counts reservations created by a member within fixed windows.
type Limiter struct {
	Redis  *redis.Client
	Limit  int
	Window time.Duration

	Now func() time.Time
}

func (l *Limiter) Increment(ctx context.Context, memberID int64) (int, error) {
	key := l.memberCounterKey(memberID)

	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	val, err := l.Redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("can't increment member's counter: %w", err)
	}

	if val == 1 {
		if err := l.Redis.Expire(ctx, key, l.window()).Err(); err != nil {
			return 0, fmt.Errorf("can't set counter expiration: %w", err)
		}
	}

	return int(val), nil
}

// Acquire takes one slot of member's current window.
// The slot is taken even when the limit is already reached, callers give it back with Release.
func (l *Limiter) Acquire(ctx context.Context, memberID int64) (bool, error) {
	n, err := l.Increment(ctx, memberID)
	if err != nil {
		return false, err
	}

	return n <= l.Limit, nil
}

// Release gives back a slot taken by Acquire.
func (l *Limiter) Release(ctx context.Context, memberID int64) error {
	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	if err := l.Redis.Decr(ctx, l.memberCounterKey(memberID)).Err(); err != nil {
		return fmt.Errorf("can't decrement member's counter: %w", err)
	}

	return nil
}

// memberCounterKey builds key which is used to store count of member's reservations per window.
// It consists of member's ID concatenated to current timestamp rounded down to the window start.
func (l *Limiter) memberCounterKey(memberID int64) string {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}

	start := now().Truncate(l.window()).Unix()
	return cacheKeyPrefix + strconv.FormatInt(memberID, 10) + ":" + strconv.FormatInt(start, 10)
}

func (l *Limiter) window() time.Duration {
	if l.Window <= 0 {
		return time.Hour
	}
	return l.Window
}

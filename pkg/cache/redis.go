package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedis(addr, user, password string) (*redis.Client, func() error, error) {
	if !strings.Contains(addr, ":") {
		addr = addr + ":6379"
	}

	opts := &redis.Options{
		Addr:     addr,
		Username: user,
		Password: password,
	}

	r := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, nil, fmt.Errorf("can't ping redis: %w", err)
	}

	return r, r.Close, nil
}

// GetJSON reads a JSON encoded value. ok is false on a cache miss.
func GetJSON[T any](ctx context.Context, r redis.Cmdable, key string) (v T, ok bool, err error) {
	raw, err := r.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return v, false, nil
		}
		return v, false, fmt.Errorf("can't get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("can't decode %s: %w", key, err)
	}

	return v, true, nil
}

func SetJSON(ctx context.Context, r redis.Cmdable, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("can't encode %s: %w", key, err)
	}

	if err := r.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("can't set %s: %w", key, err)
	}

	return nil
}

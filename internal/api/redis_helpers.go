package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// loginThrottleCounter 是登录限流/锁定计数需要的最小 Redis 能力。
type loginThrottleCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// incrWithTTL 自增限流计数，仅在首个计数时设置过期，
// 让 rate:login / lock:login 键随时间窗口自然滚动清零。
func incrWithTTL(ctx context.Context, client loginThrottleCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}

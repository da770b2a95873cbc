package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript increments the window counter, starting the window on the first
// hit, and returns the count with the milliseconds left in the window.
const hitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`

// RedisCounter is a Counter stored in Redis.
type RedisCounter struct {
	client redis.Scripter
	script *redis.Script
}

var _ Counter = (*RedisCounter)(nil)

// NewRedisCounter creates a counter on client.
func NewRedisCounter(client redis.Scripter) *RedisCounter {
	return &RedisCounter{
		client: client,
		script: redis.NewScript(hitScript),
	}
}

// Hit implements Counter.
func (c *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	res, err := c.script.Run(ctx, c.client, []string{key}, ttl).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit counter: %w", err)
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit counter: unexpected reply %v", res)
	}
	return res[0], time.Duration(res[1]) * time.Millisecond, nil
}

// ConnectRedis parses url, pings the server and returns the client.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

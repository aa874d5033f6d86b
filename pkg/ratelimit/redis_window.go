package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// KEYS[i] is the sorted set for window i. ARGV is now_ms, member, then a
// (limit, span_ms) pair per key.
var slidingWindowScript = redis.NewScript(`
local now_ms = tonumber(ARGV[1])
local member = ARGV[2]
local n = #KEYS

local denied = 0
local retry_ms = 0
for i = 1, n do
  local limit = tonumber(ARGV[1 + i * 2])
  local span_ms = tonumber(ARGV[2 + i * 2])
  redis.call("ZREMRANGEBYSCORE", KEYS[i], "-inf", now_ms - span_ms)
  local count = redis.call("ZCARD", KEYS[i])
  if count >= limit then
    local oldest = redis.call("ZRANGE", KEYS[i], 0, 0, "WITHSCORES")
    local wait = span_ms
    if oldest and oldest[2] then
      wait = math.ceil(tonumber(oldest[2]) + span_ms - now_ms)
    end
    if wait < 1 then
      wait = 1
    end
    if wait > retry_ms then
      retry_ms = wait
      denied = i
    end
  end
end

if denied > 0 then
  return {0, retry_ms, denied}
end

for i = 1, n do
  local span_ms = tonumber(ARGV[2 + i * 2])
  redis.call("ZADD", KEYS[i], now_ms, member)
  redis.call("PEXPIRE", KEYS[i], span_ms)
end
return {1, 0, 0}
`)

type RedisWindowCounter struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisWindowCounter(client redis.UniversalClient, prefix string) *RedisWindowCounter {
	if prefix == "" {
		prefix = "gen_rl"
	}
	return &RedisWindowCounter{client: client, prefix: prefix}
}

func (c *RedisWindowCounter) Allow(ctx context.Context, subject Subject, windows []Window, now time.Time) (Decision, error) {
	if c.client == nil {
		return Decision{}, fmt.Errorf("redis client is nil")
	}
	windows = Active(windows)
	if len(windows) == 0 {
		return Decision{Allowed: true}, nil
	}

	keys := make([]string, len(windows))
	args := []interface{}{now.UnixMilli(), uuid.NewString()}
	for i, w := range windows {
		keys[i] = fmt.Sprintf("%s:%s:%s", c.prefix, subject.Key(), w.Name)
		args = append(args, w.Limit, w.Span.Milliseconds())
	}

	raw, err := slidingWindowScript.Run(ctx, c.client, keys, args...).Result()
	if err != nil {
		return Decision{}, err
	}
	values, ok := raw.([]interface{})
	if !ok || len(values) != 3 {
		return Decision{}, fmt.Errorf("unexpected redis script response type")
	}
	allowed, err := parseRedisInt64(values[0])
	if err != nil {
		return Decision{}, err
	}
	retryMS, err := parseRedisInt64(values[1])
	if err != nil {
		return Decision{}, err
	}
	idx, err := parseRedisInt64(values[2])
	if err != nil {
		return Decision{}, err
	}

	if allowed == 1 {
		return Decision{Allowed: true}, nil
	}
	d := Decision{RetryAfter: time.Duration(retryMS) * time.Millisecond}
	if idx >= 1 && int(idx) <= len(windows) {
		d.Violated = windows[idx-1].Name
	}
	return d, nil
}

func parseRedisInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("redis response overflows int64")
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected redis response type %T", v)
	}
}

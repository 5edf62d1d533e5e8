package anonquota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyQuota = "anonquota:%s"

// consume is atomic in Redis: first sight seeds the counter at the allotment
// minus one, later calls decrement while positive.
//
//	KEYS[1] = quota key
//	ARGV[1] = allotment
//	ARGV[2] = ttl seconds
//
// returns the remaining count, or -1 when the quota is exhausted
var consumeScript = redis.NewScript(`
local remaining = redis.call("GET", KEYS[1])
if remaining == false then
    local seeded = tonumber(ARGV[1]) - 1
    redis.call("SET", KEYS[1], seeded, "EX", tonumber(ARGV[2]))
    return seeded
end
remaining = tonumber(remaining)
if remaining <= 0 then
    return -1
end
return redis.call("DECR", KEYS[1])
`)

// refund only credits sessions that still exist; a refund after expiry would
// otherwise resurrect the key without a TTL
var refundScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
    return 0
end
return redis.call("INCRBY", KEYS[1], tonumber(ARGV[1]))
`)

// implements Store on Redis for cross-instance quota coordination
type RedisStore struct {
	client *redis.Client
}

// creates a new Redis-backed quota store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// creates a new Redis-backed quota store from a URL
func NewRedisStoreFromURL(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Consume(ctx context.Context, sessionKey string, allotment int, ttl time.Duration) (bool, int, error) {
	key := fmt.Sprintf(keyQuota, sessionKey)

	remaining, err := consumeScript.Run(ctx, s.client, []string{key}, allotment, int(ttl.Seconds())).Int()
	if err != nil {
		return false, 0, fmt.Errorf("quota consume script failed: %w", err)
	}

	if remaining < 0 {
		return false, 0, nil
	}

	return true, remaining, nil
}

func (s *RedisStore) Refund(ctx context.Context, sessionKey string, amount int) error {
	key := fmt.Sprintf(keyQuota, sessionKey)

	if err := refundScript.Run(ctx, s.client, []string{key}, amount).Err(); err != nil {
		return fmt.Errorf("quota refund script failed: %w", err)
	}

	return nil
}

func (s *RedisStore) Remaining(ctx context.Context, sessionKey string) (int, error) {
	key := fmt.Sprintf(keyQuota, sessionKey)

	remaining, err := s.client.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to read quota: %w", err)
	}

	return remaining, nil
}

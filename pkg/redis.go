package pkg

import (
	"context"
	"encoding/json"
	"errors"
	"firmdesk"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSet stores a value in Redis with a TTL. The value is JSON-serialized.
func RedisSet(key string, value any, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return firmdesk.Redis.Set(ctx, key, data, ttl).Err()
}

// RedisGet retrieves a value from Redis and JSON-deserializes it into dest.
// Returns redis.Nil if the key does not exist.
func RedisGet(key string, dest any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := firmdesk.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// RedisDelete removes a key from Redis.
func RedisDelete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return firmdesk.Redis.Del(ctx, key).Err()
}

// RedisPush appends a JSON-serialized value to the tail of a list.
func RedisPush(key string, value any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return firmdesk.Redis.LPush(ctx, key, data).Err()
}

// RedisPop blocks until a list element is available, pops it and
// JSON-deserializes it into dest. Returns redis.Nil on timeout.
func RedisPop(ctx context.Context, key string, timeout time.Duration, dest any) error {
	res, err := firmdesk.Redis.BRPop(ctx, timeout, key).Result()
	if err != nil {
		return err
	}
	if len(res) != 2 {
		return errors.New("unexpected BRPOP reply")
	}
	return json.Unmarshal([]byte(res[1]), dest)
}

// IsRedisNil returns true if the error is a redis key-not-found error.
func IsRedisNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

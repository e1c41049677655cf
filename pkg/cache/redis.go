package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/CrownKira/recipe-app-api/pkg/config"

	"github.com/redis/go-redis/v9"
)

var (
	Redis *redis.Client
	ttl   time.Duration
)

// Initialize connects to redis. An empty address leaves caching disabled.
func Initialize(ctx context.Context, cfg *config.RedisConfig) error {
	Redis = nil
	if cfg.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	Redis = client
	ttl = cfg.TTL
	return nil
}

// Enabled reports whether a redis client is configured.
func Enabled() bool {
	return Redis != nil
}

// Close releases the client, if any.
func Close() error {
	if Redis == nil {
		return nil
	}
	return Redis.Close()
}

// TaxonomyKey is the prefix of the cached list of kind ("tags", "ingredients") for a user.
func TaxonomyKey(kind string, userID uint) string {
	return fmt.Sprintf("recipe:%s:user:%d", kind, userID)
}

// GenerationKey holds the counter that versions the lists cached under prefix.
func GenerationKey(prefix string) string {
	return prefix + ":gen"
}

// VersionedKey is the key of the list cached under prefix at generation gen.
func VersionedKey(prefix string, gen int64) string {
	return fmt.Sprintf("%s:gen:%d", prefix, gen)
}

// Generation returns the current generation of prefix, zero if it was never bumped.
func Generation(ctx context.Context, prefix string) (int64, error) {
	if Redis == nil {
		return 0, nil
	}

	gen, err := Redis.Get(ctx, GenerationKey(prefix)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Bump moves prefix to a new generation. Values written under an older
// generation are never read again and expire with their TTL.
func Bump(ctx context.Context, prefix string) error {
	if Redis == nil {
		return nil
	}
	return Redis.Incr(ctx, GenerationKey(prefix)).Err()
}

// GetJSON decodes the cached value at key into dst. It reports false on a miss
// or when caching is disabled.
func GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	if Redis == nil {
		return false, nil
	}

	data, err := Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v at key for the configured TTL.
func SetJSON(ctx context.Context, key string, v interface{}) error {
	if Redis == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return Redis.Set(ctx, key, data, ttl).Err()
}

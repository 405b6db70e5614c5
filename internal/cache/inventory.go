package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix    = "user:%d"
	ProfileKeyPrefix = "profile:%s"
	StatsKey         = "moderation:stats"
)

const (
	UserTTL    = 5 * time.Minute
	ProfileTTL = 5 * time.Minute
	StatsTTL   = time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ProfileKey(username string) string {
	return fmt.Sprintf(ProfileKeyPrefix, username)
}

// GetJSON reads the cached value at key into dest. It returns false on a
// cache miss or when the client is unavailable.
func GetJSON(ctx context.Context, key string, dest any) bool {
	if client == nil {
		return false
	}
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		client.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores value at key with the given TTL. Cache write failures are
// swallowed; the source of truth is the database.
func SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := client.Set(ctx, key, raw, ttl).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return
	}
}

// Aside implements the cache-aside pattern: on a miss it runs fetch, which
// is expected to populate dest, then writes dest back to the cache. Errors
// from fetch are returned as-is; cache failures never surface.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if GetJSON(ctx, key, dest) {
		return nil
	}
	if err := fetch(); err != nil {
		return err
	}
	SetJSON(ctx, key, dest, ttl)
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateProfile(ctx context.Context, username string) {
	Invalidate(ctx, ProfileKey(username))
}

func InvalidateStats(ctx context.Context) {
	Invalidate(ctx, StatsKey)
}

package caching

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "circuitweb:"

// ErrCacheMiss is returned by GetString when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

type CacheService interface {
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// TokenKey is the cache key for a verified ID token. The raw token is never stored.
func TokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + "idtoken:" + hex.EncodeToString(sum[:])
}

// UserTokenKey points at the most recently cached token of a user.
func UserTokenKey(uid string) string {
	return keyPrefix + "usertoken:" + uid
}

type redisCacheService struct {
	client redis.UniversalClient
}

func NewRedisCacheService(addr, password string, db int, log zerolog.Logger) CacheService {
	// accept redis://host:port as well as host:port
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Str("addr", parsedAddr).Msg("redis ping failed on initialization")
	} else {
		log.Debug().Str("addr", parsedAddr).Msg("redis connection established")
	}

	return &redisCacheService{client: client}
}

// NewCacheServiceFromClient wraps an existing client.
func NewCacheServiceFromClient(client redis.UniversalClient) CacheService {
	return &redisCacheService{client: client}
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

type noopCacheService struct{}

// NewNoopCacheService is used when no redis address is configured; every read misses.
func NewNoopCacheService() CacheService {
	return noopCacheService{}
}

func (noopCacheService) SetString(context.Context, string, string, time.Duration) error { return nil }

func (noopCacheService) GetString(context.Context, string) (string, error) { return "", ErrCacheMiss }

func (noopCacheService) Delete(context.Context, string) error { return nil }

func (noopCacheService) Ping(context.Context) error { return nil }

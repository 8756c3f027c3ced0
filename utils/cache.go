// File: utils/cache.go
package utils

import (
	"context"
	"time"

	"toltimed/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var (
	// CacheClient is the generic cache client.
	CacheClient *redis.Client
	// AuthCacheClient is the dedicated client for authorization caching.
	AuthCacheClient *redis.Client
	// BookingCacheClient holds booking sessions, submit locks and receipts.
	BookingCacheClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		GetLogger().Fatal("failed to connect to Redis", zap.String("client", name), zap.Int("db", db), zap.Error(err))
	}
	return client
}

// InitRedis connects every Redis client used by the server.
func InitRedis() {
	InitCache()
	InitAuthCache()
	InitBookingCache()
}

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "cache")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitAuthCache initializes the Redis client for authorization caching.
func InitAuthCache() {
	AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB, "auth")
}

// GetAuthCacheClient returns the Redis client for authorization caching.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		InitAuthCache()
	}
	return AuthCacheClient
}

// InitBookingCache initializes the Redis client for booking sessions.
func InitBookingCache() {
	BookingCacheClient = newRedisClient(config.AppConfig.RedisBookingDB, "booking")
}

// GetBookingCacheClient returns the booking session client.
func GetBookingCacheClient() *redis.Client {
	if BookingCacheClient == nil {
		InitBookingCache()
	}
	return BookingCacheClient
}

// RedisClients lists the initialised clients, for health checks and shutdown.
func RedisClients() []*redis.Client {
	var out []*redis.Client
	for _, c := range []*redis.Client{CacheClient, AuthCacheClient, BookingCacheClient} {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"winqroo/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the generic cache client, used for queue snapshot caching.
var CacheClient *redis.Client

// InitCache initializes the generic Redis cache client (using DB from AppConfig).
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// QueueSnapshotTTL returns the lifetime of cached public queue snapshots.
// Polling clients refresh every few seconds, so a short TTL is enough.
func QueueSnapshotTTL() time.Duration {
	secs := config.AppConfig.QueueSnapshotTTLSeconds
	if secs <= 0 {
		secs = 5
	}
	return time.Duration(secs) * time.Second
}

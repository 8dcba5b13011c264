// Package cache opens the optional Redis client used by the spatial centroid
// cache. The service runs fine without Redis; callers must handle a nil client.
package cache

import (
	"log"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// OpenFromEnv builds a Redis client from REDIS_* env vars, or nil when
// REDIS_HOST is unset.
func OpenFromEnv() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return nil
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			db = n
		}
	}
	log.Printf("Using redis cache at %s:%s db=%d", host, port, db)
	return redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASS"),
		DB:       db,
	})
}

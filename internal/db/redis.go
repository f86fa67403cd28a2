package db

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a Redis client, or nil when Redis is unconfigured or
// unreachable. Callers treat a nil client as "no cache".
func ConnectRedis(url string) *redis.Client {
	if url == "" {
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("redis disabled, invalid url: %v", err)
		return nil
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis not available, running without cache: %v", err)
		return nil
	}

	log.Println("redis connected")
	return client
}

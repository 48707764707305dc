// Package redis provides a Redis-backed CheckpointStore.
//
// Best for deployments that already run Redis and want fast checkpoint
// reads with optional expiration of idle conversations.
//
// Example:
//
//	store := redis.NewRedisCheckpointStore(redis.RedisOptions{
//	    Addr: "localhost:6379",
//	})
package redis

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/internup/coachflow/store"
)

// RedisCheckpointStore implements store.CheckpointStore using Redis.
//
// Layout: the snapshot lives under "<prefix>checkpoint:<threadKey>", the
// write log is a list under "<prefix>writes:<threadKey>", and every
// thread key is indexed in the "<prefix>threads" set.
type RedisCheckpointStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ store.CheckpointStore = (*RedisCheckpointStore)(nil)

// RedisOptions configuration for the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "coachflow:"
	TTL      time.Duration // Expiration for checkpoints, default 0 (no expiration)
}

// NewRedisCheckpointStore creates a new Redis checkpoint store.
func NewRedisCheckpointStore(opts RedisOptions) *RedisCheckpointStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "coachflow:"
	}

	return &RedisCheckpointStore{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

func (s *RedisCheckpointStore) checkpointKey(threadKey string) string {
	return fmt.Sprintf("%scheckpoint:%s", s.prefix, threadKey)
}

func (s *RedisCheckpointStore) writesKey(threadKey string) string {
	return fmt.Sprintf("%swrites:%s", s.prefix, threadKey)
}

func (s *RedisCheckpointStore) threadsKey() string {
	return s.prefix + "threads"
}

// Load implements store.CheckpointStore.
func (s *RedisCheckpointStore) Load(ctx context.Context, threadKey string) (*store.Checkpoint, error) {
	data, err := s.client.Get(ctx, s.checkpointKey(threadKey)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load checkpoint from redis: %w", err)
	}

	var checkpoint store.Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &checkpoint, nil
}

// Save implements store.CheckpointStore. Snapshot, writes and the thread
// index are committed in one pipeline.
func (s *RedisCheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint, writes []*store.Write) error {
	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.checkpointKey(checkpoint.ThreadKey), data, s.ttl)
	pipe.SAdd(ctx, s.threadsKey(), checkpoint.ThreadKey)

	if len(writes) > 0 {
		encoded := make([]any, 0, len(writes))
		for _, w := range writes {
			wd, err := json.Marshal(w)
			if err != nil {
				return fmt.Errorf("failed to marshal write: %w", err)
			}
			encoded = append(encoded, wd)
		}
		pipe.RPush(ctx, s.writesKey(checkpoint.ThreadKey), encoded...)
	}

	if s.ttl > 0 {
		pipe.Expire(ctx, s.writesKey(checkpoint.ThreadKey), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save checkpoint to redis: %w", err)
	}
	return nil
}

// ListWrites implements store.CheckpointStore.
func (s *RedisCheckpointStore) ListWrites(ctx context.Context, threadKey string) ([]*store.Write, error) {
	entries, err := s.client.LRange(ctx, s.writesKey(threadKey), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list writes for thread %s: %w", threadKey, err)
	}

	writes := make([]*store.Write, 0, len(entries))
	for _, entry := range entries {
		var w store.Write
		if err := json.Unmarshal([]byte(entry), &w); err != nil {
			return nil, fmt.Errorf("failed to unmarshal write: %w", err)
		}
		writes = append(writes, &w)
	}
	return writes, nil
}

// ListThreadKeys implements store.CheckpointStore.
func (s *RedisCheckpointStore) ListThreadKeys(ctx context.Context) ([]string, error) {
	keys, err := s.client.SMembers(ctx, s.threadsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list thread keys: %w", err)
	}
	return keys, nil
}

// DeleteForUser implements store.CheckpointStore.
func (s *RedisCheckpointStore) DeleteForUser(ctx context.Context, userID string) (int64, int64, error) {
	threadKeys, err := s.ListThreadKeys(ctx)
	if err != nil {
		return 0, 0, err
	}

	prefix := store.UserPrefix(userID)
	var matched []string
	for _, key := range threadKeys {
		if strings.HasPrefix(key, prefix) {
			matched = append(matched, key)
		}
	}
	return s.deleteThreads(ctx, matched)
}

// DeleteAll implements store.CheckpointStore.
func (s *RedisCheckpointStore) DeleteAll(ctx context.Context) (int64, int64, error) {
	threadKeys, err := s.ListThreadKeys(ctx)
	if err != nil {
		return 0, 0, err
	}
	return s.deleteThreads(ctx, threadKeys)
}

func (s *RedisCheckpointStore) deleteThreads(ctx context.Context, threadKeys []string) (int64, int64, error) {
	var checkpoints, writes int64
	for _, key := range threadKeys {
		n, err := s.client.LLen(ctx, s.writesKey(key)).Result()
		if err != nil {
			return checkpoints, writes, fmt.Errorf("failed to count writes for thread %s: %w", key, err)
		}

		pipe := s.client.TxPipeline()
		delCheckpoint := pipe.Del(ctx, s.checkpointKey(key))
		pipe.Del(ctx, s.writesKey(key))
		pipe.SRem(ctx, s.threadsKey(), key)
		if _, err := pipe.Exec(ctx); err != nil {
			return checkpoints, writes, fmt.Errorf("failed to delete thread %s: %w", key, err)
		}

		checkpoints += delCheckpoint.Val()
		writes += n
	}
	return checkpoints, writes, nil
}

// Close closes the underlying Redis client.
func (s *RedisCheckpointStore) Close() error {
	return s.client.Close()
}

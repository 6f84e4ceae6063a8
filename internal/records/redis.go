// ABOUTME: Redis backend for the record store using go-redis
// ABOUTME: Reads JSON documents from a Redis list with LRANGE

package records

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list read when no key is configured.
const DefaultRedisKey = "recordgate:records"

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// RedisStore reads records from a Redis list, one JSON object per element,
// head to tail.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	logger := slog.Default().With("component", "records", "backend", "redis")

	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	if opts.Key == "" {
		opts.Key = DefaultRedisKey
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	logger.Info("Redis record store initialized", "addr", opts.Addr, "key", opts.Key)
	return &RedisStore{client: client, key: opts.Key, logger: logger}, nil
}

// ReadAll returns every element of the list.
func (s *RedisStore) ReadAll(ctx context.Context) ([]Record, error) {
	items, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		s.logger.Warn("reading records list failed", "key", s.key, "error", err)
		return nil, fmt.Errorf("reading records list: %w", err)
	}

	recs := make([]Record, 0, len(items))
	for _, item := range items {
		rec, err := decodeOne([]byte(item))
		if err != nil {
			s.logger.Warn("malformed record element", "key", s.key, "error", err)
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

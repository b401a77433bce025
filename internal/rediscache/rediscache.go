// Package rediscache keeps score tables in Redis hashes.
package rediscache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "courseload:table:"

// Hash fields of a stored table.
const (
	fieldValue   = "value"
	fieldVersion = "version"
	fieldStamp   = "ts"
)

// opTimeout bounds each Redis round trip.
const opTimeout = 3 * time.Second

// client is the subset of go-redis used by Store.
type client interface {
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Close() error
}

// Store implements contract.ScoreTableStore on top of Redis.
type Store struct {
	client client
	prefix string
	ttl    time.Duration
}

var _ contract.ScoreTableStore = &Store{} // Compile-time check

// New connects to the Redis server at url and verifies the connection.
// A zero ttl keeps entries until they are deleted.
func New(url, prefix string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}
	return newStore(rdb, prefix, ttl), nil
}

func newStore(c client, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: c, prefix: prefix, ttl: ttl}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// Get retrieves a value by key. A missing key returns redis.Nil.
func (s *Store) Get(key string) ([]byte, int, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	fields, err := s.client.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return nil, 0, 0, err
	}
	value, ok := fields[fieldValue]
	if !ok {
		return nil, 0, 0, redis.Nil
	}
	version, err := strconv.Atoi(fields[fieldVersion])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt version for %s: %w", key, err)
	}
	stamp, err := strconv.ParseInt(fields[fieldStamp], 10, 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt timestamp for %s: %w", key, err)
	}
	return []byte(value), version, stamp, nil
}

// Set stores a value and refreshes its expiry.
func (s *Store) Set(key string, value []byte, version int, timestamp int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	k := s.key(key)
	if err := s.client.HSet(ctx, k, fieldValue, value, fieldVersion, version, fieldStamp, timestamp).Err(); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, k, s.ttl).Err(); err != nil {
			return fmt.Errorf("failed to set expiry on %s: %w", key, err)
		}
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.client.Del(ctx, s.key(key)).Err()
}

// keys lists every key under the store prefix.
func (s *Store) keys(ctx context.Context) ([]string, error) {
	var out []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}

// GetStatus walks the prefix and summarizes what is stored.
func (s *Store) GetStatus() (schema.TableStoreStatus, error) {
	status := schema.TableStoreStatus{Backend: string(schema.RedisBackend), Connected: true}

	ctx, cancel := context.WithTimeout(context.Background(), 10*opTimeout)
	defer cancel()

	keys, err := s.keys(ctx)
	if err != nil {
		return status, fmt.Errorf("failed to list keys: %w", err)
	}

	var newest, oldest int64
	for _, k := range keys {
		fields, err := s.client.HGetAll(ctx, k).Result()
		if err != nil {
			return status, fmt.Errorf("failed to read %s: %w", k, err)
		}
		value, ok := fields[fieldValue]
		if !ok {
			continue
		}
		status.TotalEntries++
		status.TableSizeBytes += int64(len(value))
		stamp, err := strconv.ParseInt(fields[fieldStamp], 10, 64)
		if err != nil {
			continue
		}
		newest = max(newest, stamp)
		if oldest == 0 || stamp < oldest {
			oldest = stamp
		}
	}
	if status.TotalEntries > 0 {
		status.LastEntryTime = time.Unix(newest, 0)
		status.OldestEntryTime = time.Unix(oldest, 0)
	}
	return status, nil
}

// Clear deletes every key under the store prefix.
func (s *Store) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*opTimeout)
	defer cancel()

	keys, err := s.keys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

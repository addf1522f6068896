package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces ledger keys inside a shared Redis database.
const DefaultRedisPrefix = "pact:"

// RedisStore keeps records in Redis. Update reads under WATCH and commits
// its writes in one MULTI/EXEC, so a concurrent writer from another
// process aborts the invocation with ErrConflict instead of interleaving.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	mu     sync.Mutex
}

// Compile-time interface check.
var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing client. An empty prefix selects DefaultRedisPrefix.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// OpenRedisStore connects to addr and verifies the connection with PING.
func OpenRedisStore(addr string, db int, password string) (*RedisStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       db,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ledger: redis ping failed: %w", err)
	}
	return NewRedisStore(rdb, ""), nil
}

// View reads straight from Redis; Set is rejected.
func (s *RedisStore) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(newBufferedTx(&redisReader{ctx: ctx, c: s.rdb, prefix: s.prefix}, true))
}

// Update runs fn with optimistic locking on every key it reads.
func (s *RedisStore) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.rdb.Watch(ctx, func(rtx *redis.Tx) error {
		tx := newBufferedTx(&redisReader{ctx: ctx, c: rtx, watch: rtx, prefix: s.prefix}, false)
		if err := fn(tx); err != nil {
			return err
		}
		writes := tx.pending()
		if len(writes) == 0 {
			return nil
		}
		_, err := rtx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			for _, w := range writes {
				p.Set(ctx, s.prefix+string(w.key), w.value, 0)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("redisstore: commit: %w", err)
		}
		return nil
	})
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}

// Close closes the Redis client.
func (s *RedisStore) Close() error { return s.rdb.Close() }

type redisReader struct {
	ctx    context.Context
	c      redis.Cmdable
	watch  *redis.Tx
	prefix string
}

func (r *redisReader) key(k []byte) (string, error) {
	rk := r.prefix + string(k)
	if r.watch != nil {
		if err := r.watch.Watch(r.ctx, rk).Err(); err != nil {
			return "", fmt.Errorf("redisstore: watch: %w", err)
		}
	}
	return rk, nil
}

func (r *redisReader) has(k []byte) (bool, error) {
	rk, err := r.key(k)
	if err != nil {
		return false, err
	}
	n, err := r.c.Exists(r.ctx, rk).Result()
	if err != nil {
		return false, fmt.Errorf("redisstore: exists: %w", err)
	}
	return n > 0, nil
}

func (r *redisReader) get(k []byte) ([]byte, bool, error) {
	rk, err := r.key(k)
	if err != nil {
		return nil, false, err
	}
	v, err := r.c.Get(r.ctx, rk).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redisstore: get: %w", err)
	}
	return v, true, nil
}

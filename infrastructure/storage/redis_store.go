package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "message-board/errors"
	"message-board/observability"

	"github.com/redis/go-redis/v9"
)

const (
	BackendRedis = "redis"
	// messagesIndexKey holds the set of all message keys, so Scan needs no KEYS/SCAN walk.
	messagesIndexKey = "board:messages"
)

// RedisStore keeps each message as a JSON string under "board:{key}".
// Conditional updates use WATCH/MULTI/EXEC optimistic transactions.
type RedisStore struct {
	client          *redis.Client
	log             *slog.Logger
	conflictRetries int
	locks           *keyLocks
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, redisURL string, log *slog.Logger, conflictRetries int) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisStore{client: client, log: log, conflictRetries: conflictRetries, locks: newKeyLocks()}, nil
}

func redisKey(key Key) string {
	return "board:" + key.String()
}

func (s *RedisStore) Scan(ctx context.Context) ([]Item, error) {
	defer observability.ObserveStore(BackendRedis, "scan", time.Now())
	keys, err := s.client.SMembers(ctx, messagesIndexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(values))
	for i, value := range values {
		data, ok := value.(string)
		if !ok {
			// Indexed but gone: the index is only ever appended to.
			s.log.Warn("Dangling message index entry", "key", keys[i])
			continue
		}
		doc, err := DecodeItem([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", keys[i], err)
		}
		items = append(items, doc)
	}
	return items, nil
}

func (s *RedisStore) Put(ctx context.Context, item Item) error {
	defer observability.ObserveStore(BackendRedis, "put", time.Now())
	key, err := KeyOf(item)
	if err != nil {
		return err
	}
	data, err := encodeItem(item)
	if err != nil {
		return err
	}
	defer s.locks.lock(redisKey(key))()
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKey(key), data, 0)
		pipe.SAdd(ctx, messagesIndexKey, redisKey(key))
		return nil
	})
	return err
}

// Update watches the document key; EXEC fails with TxFailedErr if another client
// wrote it in between. Writers in this process are serialized per key first, so only
// other processes can cause a conflict, which is replayed after a jittered backoff up to conflictRetries times.
func (s *RedisStore) Update(ctx context.Context, key Key, update Update, condition *Condition) error {
	defer observability.ObserveStore(BackendRedis, "update", time.Now())
	k := redisKey(key)
	defer s.locks.lock(k)()
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", apperrors.ErrMessageNotFound, key.MessageID)
		}
		if err != nil {
			return err
		}
		doc, err := DecodeItem(data)
		if err != nil {
			return err
		}
		if err = applyUpdate(doc, update, condition); err != nil {
			return err
		}
		encoded, err := encodeItem(doc)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, encoded, 0)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt <= s.conflictRetries; attempt++ {
		if attempt > 0 {
			if err := conflictBackoff(ctx, attempt); err != nil {
				return err
			}
		}
		err = s.client.Watch(ctx, txf, k)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		observability.StoreConflicts.WithLabelValues(BackendRedis).Inc()
		s.log.Debug("Transaction conflict, replaying", "key", k, "attempt", attempt+1)
	}
	return err
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	s.log.Info("Closing Redis client...")
	return s.client.Close()
}

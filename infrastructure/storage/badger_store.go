package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "message-board/errors"
	"message-board/observability"

	"github.com/dgraph-io/badger/v4"
)

const (
	BackendBadger = "badger"
	messagePrefix = "msg:"
)

type BadgerStore struct {
	db              *badger.DB
	log             *slog.Logger
	conflictRetries int
	locks           *keyLocks
}

// NewBadgerStore wraps an opened database. Close closes db.
func NewBadgerStore(db *badger.DB, log *slog.Logger, conflictRetries int) *BadgerStore {
	return &BadgerStore{db: db, log: log, conflictRetries: conflictRetries, locks: newKeyLocks()}
}

// Scan returns every message document in one read-only transaction.
func (s *BadgerStore) Scan(ctx context.Context) ([]Item, error) {
	defer observability.ObserveStore(BackendBadger, "scan", time.Now())
	var items []Item
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			err := item.Value(func(value []byte) error {
				doc, err := DecodeItem(value)
				if err != nil {
					return fmt.Errorf("key %s: %w", item.Key(), err)
				}
				items = append(items, doc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Put writes the document unconditionally, overwriting any previous value under the same key.
func (s *BadgerStore) Put(_ context.Context, item Item) error {
	defer observability.ObserveStore(BackendBadger, "put", time.Now())
	key, err := KeyOf(item)
	if err != nil {
		return err
	}
	data, err := encodeItem(item)
	if err != nil {
		return err
	}
	defer s.locks.lock(key.String())()
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key.String()), data)
	})
}

// Update reads, checks and rewrites the document inside one read-write transaction.
// Writers of the same key are serialized in process, so concurrent reactions queue instead of conflicting.
// A remaining ErrConflict replays the transaction after a jittered backoff, up to conflictRetries times.
func (s *BadgerStore) Update(ctx context.Context, key Key, update Update, condition *Condition) error {
	defer observability.ObserveStore(BackendBadger, "update", time.Now())
	defer s.locks.lock(key.String())()

	var err error
	for attempt := 0; attempt <= s.conflictRetries; attempt++ {
		if attempt > 0 {
			if err := conflictBackoff(ctx, attempt); err != nil {
				return err
			}
		}
		if err = ctx.Err(); err != nil {
			return err
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			return s.update(txn, key, update, condition)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		observability.StoreConflicts.WithLabelValues(BackendBadger).Inc()
		s.log.Debug("Transaction conflict, replaying", "key", key.String(), "attempt", attempt+1)
	}
	return err
}

func (s *BadgerStore) update(txn *badger.Txn, key Key, update Update, condition *Condition) error {
	item, err := txn.Get([]byte(key.String()))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", apperrors.ErrMessageNotFound, key.MessageID)
	}
	if err != nil {
		return err
	}

	var doc Item
	err = item.Value(func(value []byte) error {
		doc, err = DecodeItem(value)
		return err
	})
	if err != nil {
		return err
	}

	if err = applyUpdate(doc, update, condition); err != nil {
		return err
	}
	data, err := encodeItem(doc)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key.String()), data)
}

func (s *BadgerStore) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

func (s *BadgerStore) Close() error {
	s.log.Info("Closing BadgerDB...")
	return s.db.Close()
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	apperrors "message-board/errors"

	"github.com/stretchr/testify/require"
)

const concurrentWriters = 50

func messageItem(t *testing.T, id string, timestamp int64, reactions map[string]int) Item {
	doc := map[string]any{
		AttrMessageID: id,
		AttrTimestamp: timestamp,
		"content":     "hello " + id,
		"avatar":      "anonymous",
	}
	if reactions != nil {
		doc[AttrReactions] = reactions
	}
	item, err := ToItem(doc)
	require.NoError(t, err)
	return item
}

func like(createMissing bool) Update {
	return Update{Add: []Increment{{Attribute: AttrReactions, Field: "like", Delta: 1, CreateMissing: createMissing}}}
}

func findItem(t *testing.T, store IMessageStore, id string) Item {
	items, err := store.Scan(context.Background())
	require.NoError(t, err)
	for _, item := range items {
		if item[AttrMessageID] == id {
			return item
		}
	}
	t.Fatalf("message %s not found", id)
	return nil
}

// runStoreContract checks the behavior every backend must share.
// newStore returns an empty store configured with DefaultConflictRetries.
func runStoreContract(t *testing.T, newStore func(t *testing.T) IMessageStore) {
	ctx := context.Background()

	t.Run("scan of an empty store", func(t *testing.T) {
		req := require.New(t)
		items, err := newStore(t).Scan(ctx)
		req.NoError(err)
		req.Empty(items)
	})

	t.Run("put then scan", func(t *testing.T) {
		req := require.New(t)
		store := newStore(t)
		req.NoError(store.Put(ctx, messageItem(t, "a", 1000, map[string]int{})))
		req.NoError(store.Put(ctx, messageItem(t, "b", 2000, map[string]int{"like": 1})))

		items, err := store.Scan(ctx)
		req.NoError(err)
		req.Len(items, 2)
		req.Equal(map[string]any{"like": json.Number("1")}, findItem(t, store, "b")[AttrReactions])
	})

	t.Run("put overwrites the same key", func(t *testing.T) {
		req := require.New(t)
		store := newStore(t)
		req.NoError(store.Put(ctx, messageItem(t, "a", 1000, map[string]int{"like": 5})))
		req.NoError(store.Put(ctx, messageItem(t, "a", 1000, map[string]int{})))

		items, err := store.Scan(ctx)
		req.NoError(err)
		req.Len(items, 1)
		req.Equal(map[string]any{}, items[0][AttrReactions])
	})

	t.Run("put without a key fails", func(t *testing.T) {
		require.Error(t, newStore(t).Put(ctx, Item{"content": "orphan"}))
	})

	t.Run("update of a missing key creates nothing", func(t *testing.T) {
		req := require.New(t)
		store := newStore(t)
		err := store.Update(ctx, Key{MessageID: "ghost", Timestamp: 1}, like(true), nil)
		req.ErrorIs(err, apperrors.ErrMessageNotFound)

		items, err := store.Scan(ctx)
		req.NoError(err)
		req.Empty(items)
	})

	t.Run("update needs the full key", func(t *testing.T) {
		req := require.New(t)
		store := newStore(t)
		req.NoError(store.Put(ctx, messageItem(t, "a", 1000, map[string]int{})))
		err := store.Update(ctx, Key{MessageID: "a", Timestamp: 1001}, like(true), nil)
		req.ErrorIs(err, apperrors.ErrMessageNotFound)
	})

	t.Run("conditional update on a record without reactions", func(t *testing.T) {
		req := require.New(t)
		store := newStore(t)
		req.NoError(store.Put(ctx, messageItem(t, "legacy", 1000, nil)))
		key := Key{MessageID: "legacy", Timestamp: 1000}

		err := store.Update(ctx, key, like(false), &Condition{AttributeExists: AttrReactions})
		req.ErrorIs(err, apperrors.ErrConditionFailed)
		_, present := findItem(t, store, "legacy")[AttrReactions]
		req.False(present)

		req.NoError(store.Update(ctx, key, Update{Set: map[string]any{AttrReactions: map[string]any{}}}, nil))
		req.NoError(store.Update(ctx, key, like(false), &Condition{AttributeExists: AttrReactions}))
		req.Equal(map[string]any{"like": json.Number("1")}, findItem(t, store, "legacy")[AttrReactions])
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		req := require.New(t)
		store := newStore(t)
		req.NoError(store.Put(ctx, messageItem(t, "hot", 1000, nil)))
		key := Key{MessageID: "hot", Timestamp: 1000}

		var wg sync.WaitGroup
		errs := make(chan error, concurrentWriters)
		for range concurrentWriters {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- store.Update(ctx, key, like(true), nil)
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			req.NoError(err)
		}

		reactions := findItem(t, store, "hot")[AttrReactions].(map[string]any)
		req.Equal(json.Number(fmt.Sprint(concurrentWriters)), reactions["like"])
	})
}

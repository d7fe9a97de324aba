package storage

import (
	"context"
	"hash/maphash"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultConflictRetries is how many times a conflicted transaction is replayed
// when STORE_CONFLICT_RETRIES is not set.
const DefaultConflictRetries = 5

const lockStripes = 64

// keyLocks serializes the writers of one key inside the process.
// Keys hash onto a fixed set of stripes, so memory stays bounded and unrelated keys rarely wait on each other.
type keyLocks struct {
	seed    maphash.Seed
	stripes [lockStripes]sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{seed: maphash.MakeSeed()}
}

// lock blocks until key is free and returns the matching unlock.
func (l *keyLocks) lock(key string) func() {
	m := &l.stripes[maphash.String(l.seed, key)%lockStripes]
	m.Lock()
	return m.Unlock
}

// conflictBackoff waits before a conflicted transaction is replayed.
// Another process writing the same key is the only source of conflicts left, and jitter keeps
// both writers from colliding again in lockstep.
func conflictBackoff(ctx context.Context, attempt int) error {
	base := time.Millisecond << min(attempt, 6)
	timer := time.NewTimer(base/2 + rand.N(base))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package datastore

import "sync"

// stmtCache records which statement texts have been submitted; it holds
// no driver handle. gocql already prepares and caches statements by text
// internally on the connection; this layer exists so the rest of the
// package has a single place to reason about "has this text been
// submitted before", matching the teacher's habit of keeping DB-shaped
// bookkeeping out of the hot path. Concurrent first-use races are
// harmless: more than one racer may record the same text, and it ends up
// recorded either way.
type stmtCache struct {
	mu       sync.RWMutex
	prepared map[string]struct{}
}

func newStmtCache() *stmtCache {
	return &stmtCache{prepared: make(map[string]struct{})}
}

// prepare registers sql as seen, returning true when it was not yet
// recorded at the time of the check; under a concurrent first use more
// than one caller can get true. The driver-level prepare happens lazily
// on the first bound execution against the session; this just tracks
// that.
func (c *stmtCache) prepare(sql string) (firstUse bool) {
	c.mu.RLock()
	_, ok := c.prepared[sql]
	c.mu.RUnlock()
	if ok {
		return false
	}

	c.mu.Lock()
	c.prepared[sql] = struct{}{}
	c.mu.Unlock()
	return true
}

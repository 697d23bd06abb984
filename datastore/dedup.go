package datastore

import (
	"strconv"
	"sync"
)

// rollupDedup suppresses repeated rollup work for the same (path, rollup)
// within one tier window. It is an in-memory optimization only: a
// crash/restart forgets it, and a redone rollup is harmless because
// rollup writes replace rather than accumulate.
type rollupDedup struct {
	mu   sync.RWMutex
	next map[string]int64 // path+rollup -> next eligible wall-time
}

func newRollupDedup() *rollupDedup {
	return &rollupDedup{next: make(map[string]int64)}
}

func dedupKey(path string, rollup int) string {
	return path + strconv.Itoa(rollup)
}

// shouldRoll reports whether a rollup for (path, rollup) may proceed at
// the given wall-time.
func (d *rollupDedup) shouldRoll(path string, rollup int, now int64) bool {
	key := dedupKey(path, rollup)
	d.mu.RLock()
	next, ok := d.next[key]
	d.mu.RUnlock()
	return !ok || now >= next
}

// markRolled advances the next-eligible-time for (path, rollup) to
// now+rollup.
func (d *rollupDedup) markRolled(path string, rollup int, now int64) {
	key := dedupKey(path, rollup)
	d.mu.Lock()
	d.next[key] = now + int64(rollup)
	d.mu.Unlock()
}

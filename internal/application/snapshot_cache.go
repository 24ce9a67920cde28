package application

import (
	"sync"
	"time"

	"github.com/example/appointment-scheduler/internal/scheduler"
)

// snapshotCache stores the most recent appointment snapshot used for
// conflict detection so that bursts of validation do not re-read the
// whole collection. Every successful mutation invalidates the cache
// explicitly; this is the post-commit invalidation step that replaces
// the source's implicit refetch-after-every-mutation behavior.
type snapshotCache struct {
	mu        sync.RWMutex
	now       func() time.Time
	ttl       time.Duration
	snapshot  []scheduler.Appointment
	populated bool
	expiresAt time.Time
}

func newSnapshotCache(ttl time.Duration, now func() time.Time) *snapshotCache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &snapshotCache{now: now, ttl: ttl}
}

func (c *snapshotCache) Get() ([]scheduler.Appointment, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.populated || c.now().After(c.expiresAt) {
		return nil, false
	}
	return cloneSnapshot(c.snapshot), true
}

func (c *snapshotCache) Store(snapshot []scheduler.Appointment) {
	if c == nil {
		return
	}
	cloned := cloneSnapshot(snapshot)

	c.mu.Lock()
	c.snapshot = cloned
	c.populated = true
	c.expiresAt = c.now().Add(c.ttl)
	c.mu.Unlock()
}

func (c *snapshotCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.snapshot = nil
	c.populated = false
	c.mu.Unlock()
}

func cloneSnapshot(snapshot []scheduler.Appointment) []scheduler.Appointment {
	if len(snapshot) == 0 {
		return nil
	}
	out := make([]scheduler.Appointment, len(snapshot))
	copy(out, snapshot)
	return out
}

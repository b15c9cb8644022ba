package executor

import (
	"sync"
	"time"
)

// Dedup rejects identical order intents resubmitted within a time-to-live
// window, catching accidental double-submits (retrying clients, double
// clicks) before they reach the venue. It is safe for concurrent use.
//
// A zero TTL disables the guard entirely.
type Dedup struct {
	seen map[string]time.Time // intent fingerprint -> last seen time
	ttl  time.Duration
	mu   sync.Mutex
}

// NewDedup creates a Dedup that considers an intent a duplicate if its
// fingerprint has been seen within the given ttl.
func NewDedup(ttl time.Duration) *Dedup {
	return &Dedup{
		seen: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// IsDuplicate returns true if the fingerprint has been seen within the TTL
// window. If it has not been seen (or has expired), it is recorded and
// false is returned.
func (d *Dedup) IsDuplicate(fingerprint string) bool {
	if d == nil || d.ttl <= 0 {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if lastSeen, ok := d.seen[fingerprint]; ok {
		if now.Sub(lastSeen) < d.ttl {
			return true
		}
	}

	d.seen[fingerprint] = now
	return false
}

// Cleanup removes entries that have expired beyond the TTL. This should be
// called periodically to prevent unbounded memory growth.
func (d *Dedup) Cleanup() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	for id, ts := range d.seen {
		if now.Sub(ts) >= d.ttl {
			delete(d.seen, id)
		}
	}
}

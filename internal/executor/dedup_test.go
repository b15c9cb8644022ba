package executor

import (
	"testing"
	"time"
)

func TestDedupRejectsWithinWindow(t *testing.T) {
	d := NewDedup(time.Minute)

	if d.IsDuplicate("EURUSD|BUY|0.01") {
		t.Error("first sighting flagged as duplicate")
	}
	if !d.IsDuplicate("EURUSD|BUY|0.01") {
		t.Error("second sighting within window not flagged")
	}
	if d.IsDuplicate("EURUSD|SELL|0.01") {
		t.Error("different fingerprint flagged as duplicate")
	}
}

func TestDedupExpires(t *testing.T) {
	d := NewDedup(10 * time.Millisecond)

	if d.IsDuplicate("EURUSD|BUY|0.01") {
		t.Error("first sighting flagged as duplicate")
	}
	time.Sleep(20 * time.Millisecond)
	if d.IsDuplicate("EURUSD|BUY|0.01") {
		t.Error("expired fingerprint still flagged as duplicate")
	}
}

func TestDedupDisabled(t *testing.T) {
	d := NewDedup(0)
	for i := 0; i < 3; i++ {
		if d.IsDuplicate("EURUSD|BUY|0.01") {
			t.Fatal("disabled dedup flagged a duplicate")
		}
	}

	var nilDedup *Dedup
	if nilDedup.IsDuplicate("EURUSD|BUY|0.01") {
		t.Error("nil dedup flagged a duplicate")
	}
}

func TestDedupCleanup(t *testing.T) {
	d := NewDedup(time.Millisecond)
	d.IsDuplicate("a")
	d.IsDuplicate("b")
	time.Sleep(5 * time.Millisecond)
	d.Cleanup()

	d.mu.Lock()
	remaining := len(d.seen)
	d.mu.Unlock()
	if remaining != 0 {
		t.Errorf("expected empty map after cleanup, got %d entries", remaining)
	}
}

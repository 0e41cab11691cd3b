// Package dedup implements the short-window request deduplicator (C5):
// identical text arriving within a short monotonic time window is
// suppressed. Ported from original_source's module-level
// _last_translation / _last_translation_time / _dedup_lock.
package dedup

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLockTimeout is returned when the deduplicator's lock cannot be
// acquired within the caller-supplied timeout.
var ErrLockTimeout = errors.New("dedup: lock acquisition timed out")

// Window is the dedup window: a repeated identical text arriving within
// this interval of the previous one is treated as a duplicate.
const Window = 1 * time.Second

// Deduplicator tracks the last accepted text and when it was accepted,
// guarded by a mutex so concurrent ingress requests serialize cleanly.
type Deduplicator struct {
	mu       sync.Mutex
	lastText string
	lastTime time.Time
	hasLast  bool
}

// New creates an empty deduplicator.
func New() *Deduplicator {
	return &Deduplicator{}
}

// Check reports whether text is a duplicate of the last accepted text
// within Window, and — if it is not — atomically records it as the new
// last-seen text. The lock is acquired with a timeout bound by ctx; if ctx
// is cancelled or its deadline passes before the lock is free,
// ErrLockTimeout is returned and the state is left untouched.
func (d *Deduplicator) Check(ctx context.Context, text string) (bool, error) {
	acquired := make(chan struct{})
	go func() {
		d.mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-ctx.Done():
		// The goroutine above will still acquire the lock eventually and
		// release it immediately below; nothing leaks, it simply arrives
		// too late to matter to this caller.
		go func() {
			<-acquired
			d.mu.Unlock()
		}()
		return false, ErrLockTimeout
	}
	defer d.mu.Unlock()

	now := time.Now()
	isDuplicate := d.hasLast && text == d.lastText && now.Sub(d.lastTime) <= Window

	if !isDuplicate {
		d.lastText = text
		d.lastTime = now
		d.hasLast = true
	}

	return isDuplicate, nil
}

package dedup

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestCheck_FirstCallNotDuplicate(t *testing.T) {
	d := New()
	isDup, err := d.Check(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if isDup {
		t.Error("expected first call to not be a duplicate")
	}
}

func TestCheck_RepeatWithinWindowIsDuplicate(t *testing.T) {
	d := New()
	ctx := context.Background()

	if _, err := d.Check(ctx, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	isDup, err := d.Check(ctx, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isDup {
		t.Error("expected repeated text within the window to be a duplicate")
	}
}

func TestCheck_DifferentTextIsNotDuplicate(t *testing.T) {
	d := New()
	ctx := context.Background()

	if _, err := d.Check(ctx, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	isDup, err := d.Check(ctx, "goodbye")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if isDup {
		t.Error("expected different text to not be a duplicate")
	}
}

func TestCheck_OutsideWindowIsNotDuplicate(t *testing.T) {
	d := &Deduplicator{
		lastText: "hello",
		lastTime: time.Now().Add(-2 * Window),
		hasLast:  true,
	}

	isDup, err := d.Check(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if isDup {
		t.Error("expected text older than the window to not be a duplicate")
	}
}

func TestCheck_LockTimeout(t *testing.T) {
	d := New()
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := d.Check(ctx, "hello")
	if err != ErrLockTimeout {
		t.Errorf("expected ErrLockTimeout, got %v", err)
	}
}

func TestCheck_ConcurrentCallsDoNotRace(t *testing.T) {
	d := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.Check(context.Background(), "concurrent")
		}()
	}
	wg.Wait()
}

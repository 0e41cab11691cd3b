package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

type fakeTranslator struct {
	fn func(ctx context.Context, text string) (string, error)
}

func (f *fakeTranslator) Translate(ctx context.Context, text string) (string, error) {
	if f.fn != nil {
		return f.fn(ctx, text)
	}
	return strings.ToUpper(text), nil
}

type fakeSynthesizer struct {
	mu          sync.Mutex
	inFlight    int32
	maxInFlight int32
	calls       int32
	healthy     bool
	fn          func(ctx context.Context, text, requestID string) (string, error)
}

func (f *fakeSynthesizer) CheckHealth(ctx context.Context) bool { return f.healthy }

func (f *fakeSynthesizer) SynthesizeToFile(ctx context.Context, text, requestID string) (string, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	f.mu.Lock()
	if n > f.maxInFlight {
		f.maxInFlight = n
	}
	f.mu.Unlock()
	atomic.AddInt32(&f.calls, 1)
	defer atomic.AddInt32(&f.inFlight, -1)

	if f.fn != nil {
		return f.fn(ctx, text, requestID)
	}
	return fmt.Sprintf("/tmp/%s.wav", requestID), nil
}

func (f *fakeSynthesizer) Cleanup() error { return nil }

type fakePlayer struct {
	mu     sync.Mutex
	played []string
	fn     func(ctx context.Context, path string) error
}

func (f *fakePlayer) Play(ctx context.Context, path string) error {
	f.mu.Lock()
	f.played = append(f.played, path)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(ctx, path)
	}
	return nil
}

package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voxbridge/voxbridge/internal/config"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Queues.Translation = 8
	cfg.Queues.Synthesis = 8
	cfg.Queues.Playback = 8
	cfg.Stages.TranslationWorkers = 2
	cfg.Stages.SynthesisWorkers = 1
	cfg.Stages.PlaybackWorkers = 1
	return cfg
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestStart_FailsWhenTTSUnhealthy(t *testing.T) {
	sup := New(testConfig(), &fakeTranslator{}, &fakeSynthesizer{healthy: false}, &fakePlayer{})
	err := sup.Start(context.Background())
	require.Error(t, err, "expected Start to fail when the tts engine is unhealthy")
	require.Equal(t, StateStarting, sup.State(), "expected state to remain Starting on failed start")
}

func TestEnqueue_RejectedWhenNotRunning(t *testing.T) {
	sup := New(testConfig(), &fakeTranslator{}, &fakeSynthesizer{healthy: true}, &fakePlayer{})
	_, err := sup.Enqueue(TranslationJob{RequestID: "r1", SourceText: "hi"})
	require.ErrorIs(t, err, ErrNotAccepting)
}

func TestEnqueue_ReportsQueuePosition(t *testing.T) {
	// Block the sole translate-worker slot (1 worker in this config) on the
	// first job so a second enqueue is guaranteed to still be sitting in
	// the queue when we read its reported position.
	release := make(chan struct{})
	cfg := testConfig()
	cfg.Stages.TranslationWorkers = 1
	sup := New(cfg, &fakeTranslator{fn: func(ctx context.Context, text string) (string, error) {
		<-release
		return strings.ToUpper(text), nil
	}}, &fakeSynthesizer{healthy: true}, &fakePlayer{})

	require.NoError(t, sup.Start(context.Background()))
	defer func() {
		close(release)
		sup.Shutdown(context.Background())
	}()

	_, err := sup.Enqueue(TranslationJob{RequestID: "r1", SourceText: "first"})
	require.NoError(t, err)
	// Give the lone worker a moment to pick up r1 and block on release.
	time.Sleep(20 * time.Millisecond)

	pos, err := sup.Enqueue(TranslationJob{RequestID: "r2", SourceText: "second"})
	require.NoError(t, err)
	require.Equal(t, 1, pos, "expected queue position 1 for the second job while the first is in flight")
}

func TestFullPipeline_JobReachesPlayback(t *testing.T) {
	player := &fakePlayer{}
	sup := New(testConfig(), &fakeTranslator{}, &fakeSynthesizer{healthy: true}, player)

	require.NoError(t, sup.Start(context.Background()))
	defer sup.Shutdown(context.Background())

	_, err := sup.Enqueue(TranslationJob{RequestID: "r1", SourceText: "build complete"})
	require.NoError(t, err)

	waitFor(t, 2*time.Second, func() bool {
		return sup.Stats().PlaybackProcessed == 1
	})

	player.mu.Lock()
	defer player.mu.Unlock()
	require.Len(t, player.played, 1)
}

func TestReturnAudio_SkipsPlayback(t *testing.T) {
	player := &fakePlayer{}
	sup := New(testConfig(), &fakeTranslator{}, &fakeSynthesizer{healthy: true}, player)

	require.NoError(t, sup.Start(context.Background()))
	defer sup.Shutdown(context.Background())

	_, err := sup.Enqueue(TranslationJob{RequestID: "r1", SourceText: "build complete", ReturnAudio: true})
	require.NoError(t, err)

	waitFor(t, 2*time.Second, func() bool {
		return sup.Stats().TTSProcessed == 1
	})
	// Give the (skipped) playback stage a chance to run if it incorrectly would.
	time.Sleep(50 * time.Millisecond)

	player.mu.Lock()
	defer player.mu.Unlock()
	require.Empty(t, player.played, "expected return_audio job to skip playback")
}

func TestPreTranslatedPassthrough_SkipsTranslator(t *testing.T) {
	const preTranslated = "『ビルドが完了しました』"

	called := false
	tr := &fakeTranslator{fn: func(ctx context.Context, text string) (string, error) {
		called = true
		return text, nil
	}}

	var mu sync.Mutex
	var gotText string
	synth := &fakeSynthesizer{healthy: true, fn: func(ctx context.Context, text, requestID string) (string, error) {
		mu.Lock()
		gotText = text
		mu.Unlock()
		return "/tmp/" + requestID + ".wav", nil
	}}
	sup := New(testConfig(), tr, synth, &fakePlayer{})

	require.NoError(t, sup.Start(context.Background()))
	defer sup.Shutdown(context.Background())

	_, err := sup.Enqueue(TranslationJob{
		RequestID:     "r1",
		SourceText:    preTranslated,
		PreTranslated: true,
	})
	require.NoError(t, err)

	waitFor(t, 2*time.Second, func() bool {
		return sup.Stats().TTSProcessed == 1
	})
	require.False(t, called, "expected the translator to not be called for pre-translated text")

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, preTranslated, gotText, "expected the text reaching stage S to be byte-identical to the ingress text")
}

func TestSynthesisStage_NeverOverlaps(t *testing.T) {
	synth := &fakeSynthesizer{healthy: true, fn: func(ctx context.Context, text, requestID string) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return "/tmp/" + requestID + ".wav", nil
	}}
	sup := New(testConfig(), &fakeTranslator{}, synth, &fakePlayer{})

	require.NoError(t, sup.Start(context.Background()))
	defer sup.Shutdown(context.Background())

	for i := 0; i < 5; i++ {
		_, err := sup.Enqueue(TranslationJob{RequestID: string(rune('a' + i)), SourceText: "text"})
		require.NoError(t, err)
	}

	waitFor(t, 3*time.Second, func() bool {
		return sup.Stats().TTSProcessed == 5
	})

	synth.mu.Lock()
	defer synth.mu.Unlock()
	require.LessOrEqual(t, synth.maxInFlight, int32(1), "expected synthesis stage to never run more than one job at a time")
}

func TestTTSFailureIsolated_SubsequentJobStillPlays(t *testing.T) {
	player := &fakePlayer{}
	first := true
	synth := &fakeSynthesizer{healthy: true, fn: func(ctx context.Context, text, requestID string) (string, error) {
		if first {
			first = false
			return "", context.DeadlineExceeded
		}
		return "/tmp/" + requestID + ".wav", nil
	}}
	sup := New(testConfig(), &fakeTranslator{}, synth, player)

	require.NoError(t, sup.Start(context.Background()))
	defer sup.Shutdown(context.Background())

	_, err := sup.Enqueue(TranslationJob{RequestID: "r1", SourceText: "first text"})
	require.NoError(t, err)
	_, err = sup.Enqueue(TranslationJob{RequestID: "r2", SourceText: "second text"})
	require.NoError(t, err)

	waitFor(t, 2*time.Second, func() bool {
		return sup.Stats().PlaybackProcessed == 1
	})

	snap := sup.Stats()
	require.Equal(t, int64(1), snap.TTSFailed)
	require.Equal(t, int64(1), snap.PlaybackProcessed)
}

// Package pipeline implements the three-stage translate -> synthesize ->
// play pipeline (C6-C8): bounded per-stage queues, independent worker
// pools, and the Idle/Starting/Running/Stopping/Stopped supervisor that
// owns their lifecycle. Grounded on the teacher's internal/server/worker.go
// goroutine-pool shape, generalized from one stage to three.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/voxbridge/voxbridge/internal/audio"
	"github.com/voxbridge/voxbridge/internal/config"
	"github.com/voxbridge/voxbridge/internal/logging"
	"github.com/voxbridge/voxbridge/internal/metrics"
	"github.com/voxbridge/voxbridge/internal/translator"
	"github.com/voxbridge/voxbridge/internal/voicevox"
)

// ErrNotAccepting is returned by Enqueue when the supervisor is not in the
// Running state. The HTTP ingress translates this into a 503.
var ErrNotAccepting = errors.New("pipeline: not accepting jobs")

// postSynthesisPause gives the GPU-backed synthesis engine a moment to
// settle between jobs, mirroring original_source's fixed inter-job sleep.
const postSynthesisPause = 100 * time.Millisecond

// Supervisor owns the three stage queues and their worker pools, and
// drives the lifecycle state machine in spec.md §5.
type Supervisor struct {
	cfg   *config.Config
	tr    translator.Translator
	tts   voicevox.Synthesizer
	play  audio.Player
	stats *Stats

	state stateBox

	tQueue chan TranslationJob
	sQueue chan SynthesisJob
	pQueue chan PlaybackJob

	workerCtx context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New builds a Supervisor in the Idle state. Call Start to bring it up.
func New(cfg *config.Config, tr translator.Translator, tts voicevox.Synthesizer, play audio.Player) *Supervisor {
	return &Supervisor{
		cfg:   cfg,
		tr:    tr,
		tts:   tts,
		play:  play,
		stats: &Stats{},
	}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State { return s.state.Load() }

// Stats returns a snapshot of the pipeline's counters.
func (s *Supervisor) Stats() Snapshot { return s.stats.Snapshot() }

// QueueDepths reports the current length of each stage's queue.
func (s *Supervisor) QueueDepths() (t, syn, p int) {
	return len(s.tQueue), len(s.sQueue), len(s.pQueue)
}

// RecordDeduplicated increments the deduplicated-request counter. The HTTP
// ingress calls this when the deduplicator reports a duplicate, since a
// suppressed request never reaches Enqueue.
func (s *Supervisor) RecordDeduplicated() {
	s.stats.incDeduplicated()
}

// Start brings the pipeline from Idle to Running: it verifies the TTS
// engine is reachable (spec.md §4.5 — a dead engine is fatal at startup,
// not a per-job failure), allocates the stage queues, and launches the
// worker pools.
func (s *Supervisor) Start(ctx context.Context) error {
	s.state.Store(StateStarting)

	if !s.tts.CheckHealth(ctx) {
		return fmt.Errorf("pipeline: tts engine health check failed")
	}

	s.tQueue = make(chan TranslationJob, s.cfg.Queues.Translation)
	s.sQueue = make(chan SynthesisJob, s.cfg.Queues.Synthesis)
	s.pQueue = make(chan PlaybackJob, s.cfg.Queues.Playback)

	s.workerCtx, s.cancel = context.WithCancel(context.Background())

	for i := 0; i < s.cfg.Stages.TranslationWorkers; i++ {
		s.wg.Add(1)
		go s.translateWorker(i)
	}

	// Stage S is hard-pinned to a single worker regardless of config,
	// enforced again here even though config.Validate already clamps it.
	s.wg.Add(1)
	go s.synthWorker()

	// Stage P is likewise serialized: spec.md §4.3 pins playback
	// concurrency at 1 so overlapping clips are never played.
	s.wg.Add(1)
	go s.playWorker()

	go s.reportQueueDepths()

	s.state.Store(StateRunning)
	logging.Info().Msg("pipeline running")
	return nil
}

// reportQueueDepths periodically publishes queue lengths to Prometheus.
// It is not part of s.wg: it never blocks shutdown, it just stops.
func (s *Supervisor) reportQueueDepths() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.workerCtx.Done():
			return
		case <-ticker.C:
			t, syn, p := s.QueueDepths()
			metrics.QueueDepth.WithLabelValues("translate").Set(float64(t))
			metrics.QueueDepth.WithLabelValues("synthesize").Set(float64(syn))
			metrics.QueueDepth.WithLabelValues("play").Set(float64(p))
		}
	}
}

// Enqueue submits a job to the translation stage and returns the
// translation queue's size immediately after the put, per spec.md §4.1's
// queue_position field. It blocks if the translation queue is full, which
// is the pipeline's only backpressure mechanism — full queues make
// producers wait rather than drop work.
func (s *Supervisor) Enqueue(job TranslationJob) (int, error) {
	if s.state.Load() != StateRunning {
		return 0, ErrNotAccepting
	}
	s.stats.incAccepted()
	metrics.JobsAccepted.Inc()
	select {
	case s.tQueue <- job:
		return len(s.tQueue), nil
	case <-s.workerCtx.Done():
		return 0, ErrNotAccepting
	}
}

// Shutdown moves the pipeline to Stopping, cancels all workers, and waits
// for them to drain or for ctx's deadline to pass, whichever is first.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.state.Store(StateStopping)
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logging.Warn().Msg("pipeline shutdown timed out waiting for workers")
	}

	if err := s.tts.Cleanup(); err != nil {
		logging.Warn().Err(err).Msg("tts cleanup failed")
	}

	s.state.Store(StateStopped)
	logging.Info().Interface("stats", s.stats.Snapshot()).Msg("pipeline stopped")
	return nil
}

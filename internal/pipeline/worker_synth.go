package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/voxbridge/voxbridge/internal/logging"
	"github.com/voxbridge/voxbridge/internal/metrics"
)

// synthWorker runs stage S. There is exactly one of these: spec.md §4.3
// names synthesis concurrency as a hard invariant rather than a tunable,
// since the reference engine is GPU-backed and cannot serve two requests
// at once.
func (s *Supervisor) synthWorker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.workerCtx.Done():
			return
		case job, ok := <-s.sQueue:
			if !ok {
				return
			}
			s.handleSynth(job)
		}
	}
}

func (s *Supervisor) handleSynth(job SynthesisJob) {
	timer := metrics.StageDuration.WithLabelValues("synthesize")
	stop := startTimer(timer)

	path, err := s.tts.SynthesizeToFile(s.workerCtx, job.JapaneseText, job.RequestID)
	stop()

	if err != nil {
		s.stats.incTTSFailed()
		metrics.JobsCompleted.WithLabelValues("synthesize", "dropped").Inc()
		// Timeouts are logged concisely without a trace (spec.md §7, stage
		// drop class 7); any other collaborator failure gets the full error.
		if errors.Is(err, context.DeadlineExceeded) {
			logging.Warn().Str("request_id", job.RequestID).Msg("synthesis timed out")
		} else {
			logging.Error().Str("request_id", job.RequestID).Err(err).Msg("synthesis failed")
		}
		return
	}

	s.stats.incSynthesized()
	metrics.JobsCompleted.WithLabelValues("synthesize", "ok").Inc()

	// Give the engine a beat to release its GPU slot before the next job.
	select {
	case <-time.After(postSynthesisPause):
	case <-s.workerCtx.Done():
		return
	}

	if job.ReturnAudio {
		logging.Info().Str("request_id", job.RequestID).Str("path", path).Msg("audio retained, skipping playback")
		return
	}

	playbackJob := PlaybackJob{
		RequestID:       job.RequestID,
		WavPath:         path,
		DeleteAfterPlay: true,
	}

	select {
	case s.pQueue <- playbackJob:
	case <-s.workerCtx.Done():
	}
}

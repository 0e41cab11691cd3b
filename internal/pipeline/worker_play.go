package pipeline

import (
	"os"

	"github.com/voxbridge/voxbridge/internal/logging"
	"github.com/voxbridge/voxbridge/internal/metrics"
)

// playWorker runs stage P, serialized at concurrency 1 for the same
// audible-ordering reason as stage S (spec.md §4.3).
func (s *Supervisor) playWorker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.workerCtx.Done():
			return
		case job, ok := <-s.pQueue:
			if !ok {
				return
			}
			s.handlePlay(job)
		}
	}
}

func (s *Supervisor) handlePlay(job PlaybackJob) {
	timer := metrics.StageDuration.WithLabelValues("play")
	stop := startTimer(timer)

	err := s.play.Play(s.workerCtx, job.WavPath)
	stop()

	if err != nil {
		s.stats.incPlaybackFailed()
		metrics.JobsCompleted.WithLabelValues("play", "dropped").Inc()
		logging.Error().Str("request_id", job.RequestID).Err(err).Msg("playback failed")
	} else {
		s.stats.incPlayed()
		metrics.JobsCompleted.WithLabelValues("play", "ok").Inc()
	}

	if job.DeleteAfterPlay {
		if rmErr := os.Remove(job.WavPath); rmErr != nil && !os.IsNotExist(rmErr) {
			logging.Warn().Str("request_id", job.RequestID).Err(rmErr).Msg("failed to remove wav file")
		}
	}
}

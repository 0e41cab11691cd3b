package pipeline

import (
	"context"
	"errors"

	"github.com/voxbridge/voxbridge/internal/logging"
	"github.com/voxbridge/voxbridge/internal/metrics"
	"github.com/voxbridge/voxbridge/internal/normalize"
	"github.com/voxbridge/voxbridge/internal/translator"
)

// translateWorker runs stage T: it turns a TranslationJob into a
// SynthesisJob, either by calling the translator or, for pre-translated
// text wrapped in 『…』, by passing the text through untouched.
func (s *Supervisor) translateWorker(id int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.workerCtx.Done():
			return
		case job, ok := <-s.tQueue:
			if !ok {
				return
			}
			s.handleTranslate(job)
		}
	}
}

func (s *Supervisor) handleTranslate(job TranslationJob) {
	timer := metrics.StageDuration.WithLabelValues("translate")
	stop := startTimer(timer)
	defer stop()

	var japanese string

	if job.PreTranslated {
		// spec.md §3: japanese_text == source_text, markers retained, no
		// normalization — the text reaching stage S must be byte-identical
		// to the ingress text.
		japanese = job.SourceText
	} else {
		translated, err := s.tr.Translate(s.workerCtx, job.SourceText)
		if err != nil {
			s.dropTranslation(job, err)
			return
		}
		japanese = normalize.Normalize(translated)
	}

	synthJob := SynthesisJob{
		RequestID:    job.RequestID,
		JapaneseText: japanese,
		ReturnAudio:  job.ReturnAudio,
	}

	select {
	case s.sQueue <- synthJob:
		s.stats.incTranslated()
		metrics.JobsCompleted.WithLabelValues("translate", "ok").Inc()
	case <-s.workerCtx.Done():
	}
}

// dropTranslation classifies a translation error per spec.md §7's error
// taxonomy and drops the job: validation errors log at warn, timeouts log
// a concise warn, everything else logs at error with the full message.
func (s *Supervisor) dropTranslation(job TranslationJob, err error) {
	s.stats.incTranslationFailed()
	metrics.JobsCompleted.WithLabelValues("translate", "dropped").Inc()

	var emptyInput translator.ErrEmptyInput
	switch {
	case errors.As(err, &emptyInput):
		logging.Warn().Str("request_id", job.RequestID).Msg("translation rejected: empty input")
	case errors.Is(err, context.DeadlineExceeded):
		logging.Warn().Str("request_id", job.RequestID).Msg("translation timed out")
	default:
		logging.Error().Str("request_id", job.RequestID).Err(err).Msg("translation failed")
	}
}

package pipeline

import "sync/atomic"

// Stats holds the plain in-process counters surfaced by GET /health,
// mirrored into Prometheus via internal/metrics at each increment site.
// The six per-stage fields are the PipelineStats entity from spec.md §3;
// accepted/deduplicated are additive ingress-side counters.
type Stats struct {
	accepted             int64
	deduplicated         int64
	translationProcessed int64
	translationFailed    int64
	ttsProcessed         int64
	ttsFailed            int64
	playbackProcessed    int64
	playbackFailed       int64
}

// Snapshot is a point-in-time copy of Stats, safe to marshal to JSON.
type Snapshot struct {
	Accepted             int64 `json:"accepted"`
	Deduplicated         int64 `json:"deduplicated"`
	TranslationProcessed int64 `json:"translation_processed"`
	TranslationFailed    int64 `json:"translation_failed"`
	TTSProcessed         int64 `json:"tts_processed"`
	TTSFailed            int64 `json:"tts_failed"`
	PlaybackProcessed    int64 `json:"playback_processed"`
	PlaybackFailed       int64 `json:"playback_failed"`
}

func (s *Stats) incAccepted()          { atomic.AddInt64(&s.accepted, 1) }
func (s *Stats) incDeduplicated()      { atomic.AddInt64(&s.deduplicated, 1) }
func (s *Stats) incTranslated()        { atomic.AddInt64(&s.translationProcessed, 1) }
func (s *Stats) incTranslationFailed() { atomic.AddInt64(&s.translationFailed, 1) }
func (s *Stats) incSynthesized()       { atomic.AddInt64(&s.ttsProcessed, 1) }
func (s *Stats) incTTSFailed()         { atomic.AddInt64(&s.ttsFailed, 1) }
func (s *Stats) incPlayed()            { atomic.AddInt64(&s.playbackProcessed, 1) }
func (s *Stats) incPlaybackFailed()    { atomic.AddInt64(&s.playbackFailed, 1) }

// Snapshot returns a copy of all counters. Each counter is read atomically,
// one after another; the copy is not taken at a single instant.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Accepted:             atomic.LoadInt64(&s.accepted),
		Deduplicated:         atomic.LoadInt64(&s.deduplicated),
		TranslationProcessed: atomic.LoadInt64(&s.translationProcessed),
		TranslationFailed:    atomic.LoadInt64(&s.translationFailed),
		TTSProcessed:         atomic.LoadInt64(&s.ttsProcessed),
		TTSFailed:            atomic.LoadInt64(&s.ttsFailed),
		PlaybackProcessed:    atomic.LoadInt64(&s.playbackProcessed),
		PlaybackFailed:       atomic.LoadInt64(&s.playbackFailed),
	}
}

package pipeline

import "time"

// TranslationJob is queued by the HTTP ingress and consumed by the
// translate-worker. See spec.md §3.
type TranslationJob struct {
	RequestID     string
	SourceText    string
	PreTranslated bool
	ReturnAudio   bool
	CreatedAt     time.Time
}

// IsPreTranslated reports whether text is already Japanese wrapped in the
// 『…』 markers, per spec.md's glossary entry for "pre-translated text".
func IsPreTranslated(text string) bool {
	r := []rune(text)
	if len(r) == 0 {
		return false
	}
	return r[0] == '『' && r[len(r)-1] == '』'
}

// SynthesisJob is produced by the translate-worker and consumed by the
// synth-worker.
type SynthesisJob struct {
	RequestID    string
	JapaneseText string
	ReturnAudio  bool
}

// PlaybackJob is produced by the synth-worker and consumed by the
// play-worker.
type PlaybackJob struct {
	RequestID       string
	WavPath         string
	DeleteAfterPlay bool
}

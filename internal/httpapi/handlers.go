package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/voxbridge/voxbridge/internal/dedup"
	"github.com/voxbridge/voxbridge/internal/logging"
	"github.com/voxbridge/voxbridge/internal/metrics"
	"github.com/voxbridge/voxbridge/internal/pipeline"
)

const maxTextLength = 4096

// dedupLockTimeout bounds how long a request waits for the deduplicator's
// lock before giving up, per spec.md §4.2.
const dedupLockTimeout = 500 * time.Millisecond

type translateRequest struct {
	Text        string `json:"text"`
	ReturnAudio bool   `json:"return_audio"`
}

type acceptedResponse struct {
	RequestID     string `json:"request_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	QueuePosition int    `json:"queue_position"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleTranslateAndSpeak is POST /translate_and_speak. It validates the
// payload, checks for a recent duplicate, and enqueues a TranslationJob.
func (s *Server) handleTranslateAndSpeak(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed JSON body")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusUnprocessableEntity, "text must not be empty")
		return
	}
	if len([]rune(text)) > maxTextLength {
		writeError(w, http.StatusUnprocessableEntity, "text exceeds maximum length")
		return
	}

	dedupCtx, cancel := context.WithTimeout(r.Context(), dedupLockTimeout)
	defer cancel()

	isDuplicate, err := s.dedup.Check(dedupCtx, text)
	if err != nil {
		if errors.Is(err, dedup.ErrLockTimeout) {
			writeError(w, http.StatusServiceUnavailable, "server busy, try again")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "internal error")
		return
	}

	requestID := newRequestID()

	if isDuplicate {
		metrics.JobsDeduplicated.Inc()
		s.supervisor.RecordDeduplicated()
		logging.Info().Str("request_id", requestID).Msg("duplicate request suppressed")
		writeJSON(w, http.StatusOK, acceptedResponse{
			RequestID:     requestID,
			Status:        "skipped",
			Message:       "duplicate of a recently submitted request",
			QueuePosition: 0,
		})
		return
	}

	job := pipeline.TranslationJob{
		RequestID:     requestID,
		SourceText:    text,
		PreTranslated: pipeline.IsPreTranslated(text),
		ReturnAudio:   req.ReturnAudio,
		CreatedAt:     time.Now(),
	}

	queuePosition, err := s.supervisor.Enqueue(job)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline is not accepting jobs")
		return
	}

	logging.Info().Str("request_id", requestID).Str("text_preview", logging.Preview(text, 50)).Msg("request queued")
	writeJSON(w, http.StatusAccepted, acceptedResponse{
		RequestID:     requestID,
		Status:        "queued",
		Message:       "accepted for translation",
		QueuePosition: queuePosition,
	})
}

type healthResponse struct {
	Status               string            `json:"status"`
	State                string            `json:"state"`
	TranslationQueueSize int               `json:"translation_queue_size"`
	TTSQueueSize         int               `json:"tts_queue_size"`
	PlaybackQueueSize    int               `json:"playback_queue_size"`
	Stats                pipeline.Snapshot `json:"stats"`
}

// handleHealth is GET /health. It reports 503 whenever the supervisor is
// not Running, observable even while Stopping per SPEC_FULL.md §12.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := s.supervisor.State()
	t, syn, p := s.supervisor.QueueDepths()

	resp := healthResponse{
		Status:               "ok",
		State:                state.String(),
		TranslationQueueSize: t,
		TTSQueueSize:         syn,
		PlaybackQueueSize:    p,
		Stats:                s.supervisor.Stats(),
	}

	status := http.StatusOK
	if state != pipeline.StateRunning {
		status = http.StatusServiceUnavailable
		resp.Status = "unavailable"
	}

	writeJSON(w, status, resp)
}

type rootResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// handleRoot is GET /, a static info document naming the other endpoints.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Name:    "voxbridge",
		Version: version,
		Endpoints: map[string]string{
			"translate_and_speak": "POST /translate_and_speak",
			"health":              "GET /health",
			"metrics":             "GET /metrics",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

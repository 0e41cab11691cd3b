// Command voxbridge-server runs the translate-synthesize-play HTTP
// sidecar. It loads configuration, verifies the TTS engine is reachable,
// starts the pipeline supervisor and the HTTP ingress, and shuts both
// down cleanly on SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voxbridge/voxbridge/internal/audio"
	"github.com/voxbridge/voxbridge/internal/config"
	"github.com/voxbridge/voxbridge/internal/httpapi"
	"github.com/voxbridge/voxbridge/internal/logging"
	"github.com/voxbridge/voxbridge/internal/pipeline"
	"github.com/voxbridge/voxbridge/internal/translator"
	"github.com/voxbridge/voxbridge/internal/voicevox"
)

// shutdownTimeout bounds how long shutdown waits for the HTTP server and the
// pipeline workers to finish, per spec.md §5. When it passes, the supervisor
// logs a warning and completes shutdown without waiting further.
const shutdownTimeout = 10 * time.Second

func main() {
	if err := logging.Init(); err != nil {
		panic(err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("failed to load config: %v", err)
	}

	tr := translator.New(cfg.Ollama.BaseURL, cfg.Ollama.Model, cfg.Ollama.Timeout)
	tts := voicevox.New(cfg.TTS.BaseURL, cfg.TTS.SpeakerID, cfg.TTS.Timeout, cfg.AudioTmp)
	player := audio.NewSystemPlayer()

	sup := pipeline.New(cfg, tr, tts, player)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStart()
	if err := sup.Start(startCtx); err != nil {
		logging.Fatal("failed to start pipeline: %v", err)
	}

	api := httpapi.New(cfg, sup)

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting http server")
		errCh <- api.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	// SIGPIPE is not registered here: the HTTP transport has no stdio pipe of
	// its own to protect. Go's default therefore applies, and a write to a
	// broken stdout/stderr pipe ends the process.
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logging.Error().Err(err).Msg("http server exited unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := api.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("http server shutdown error")
	}
	if err := sup.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("pipeline shutdown error")
	}

	logging.Info().Msg("shutdown complete")
}

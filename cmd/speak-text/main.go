// Command speak-text is a debug CLI that exercises the translate,
// synthesize, and play collaborators directly, bypassing the queued
// pipeline entirely. Adapted from the teacher's cmd/speak-text.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/voxbridge/voxbridge/internal/audio"
	"github.com/voxbridge/voxbridge/internal/config"
	"github.com/voxbridge/voxbridge/internal/normalize"
	"github.com/voxbridge/voxbridge/internal/translator"
	"github.com/voxbridge/voxbridge/internal/voicevox"
)

func main() {
	skipTranslate := flag.Bool("ja", false, "treat TEXT as already-Japanese, skip translation")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] TEXT\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Translates TEXT to Japanese, synthesizes it, and plays it aloud.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s \"Build completed\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -ja \"ビルドが完了しました\"\n", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}
	text := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	japanese := text
	if !*skipTranslate {
		tr := translator.New(cfg.Ollama.BaseURL, cfg.Ollama.Model, cfg.Ollama.Timeout)
		translated, err := tr.Translate(ctx, text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error translating text: %v\n", err)
			os.Exit(1)
		}
		japanese = translated
	}
	japanese = normalize.Normalize(japanese)

	tts := voicevox.New(cfg.TTS.BaseURL, cfg.TTS.SpeakerID, cfg.TTS.Timeout, cfg.AudioTmp)
	if !tts.CheckHealth(ctx) {
		fmt.Fprintf(os.Stderr, "Error: tts engine at %s is not reachable\n", cfg.TTS.BaseURL)
		os.Exit(1)
	}

	path, err := tts.SynthesizeToFile(ctx, japanese, "debug")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error synthesizing speech: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove(path)

	player := audio.NewSystemPlayer()
	if err := player.Play(ctx, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error playing audio: %v\n", err)
		os.Exit(1)
	}
}

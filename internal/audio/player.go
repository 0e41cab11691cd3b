// Package audio plays WAV files through the host's native player,
// dispatching by runtime.GOOS. Adapted from the teacher's
// internal/audio/player.go, trimmed to the WAV-only players named in
// spec.md §6.4 since the pipeline only ever emits WAV.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// Player plays an audio file to completion.
type Player interface {
	Play(ctx context.Context, path string) error
}

// SystemPlayer shells out to the platform's native audio player.
type SystemPlayer struct{}

// NewSystemPlayer returns a Player backed by the host OS's audio tooling.
func NewSystemPlayer() *SystemPlayer {
	return &SystemPlayer{}
}

// Play blocks until playback finishes or ctx is cancelled. Per spec.md
// §6.4, the player's exit status is not inspected: a non-zero exit is a
// silent no-op so the pipeline still proceeds to delete the file if
// requested. Only a failure to start the process at all (missing binary,
// bad working directory) is surfaced as an error.
func (p *SystemPlayer) Play(ctx context.Context, path string) error {
	cmd, err := playCommand(ctx, path)
	if err != nil {
		return err
	}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil
		}
		return fmt.Errorf("audio: failed to run player: %w", err)
	}
	return nil
}

func playCommand(ctx context.Context, path string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		return exec.CommandContext(ctx, "afplay", path), nil
	case "linux":
		return exec.CommandContext(ctx, "aplay", "-q", path), nil
	case "windows":
		script := fmt.Sprintf(`(New-Object Media.SoundPlayer '%s').PlaySync();`, path)
		return exec.CommandContext(ctx, "powershell", "-c", script), nil
	default:
		return nil, fmt.Errorf("audio: unsupported platform %q", runtime.GOOS)
	}
}

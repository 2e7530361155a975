package prompt

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// PromptSpeaker plays one prompt clip to completion. Starting a new prompt
// while another is playing is a caller error; the session controller never
// overlaps two.
type PromptSpeaker interface {
	Speak(ctx context.Context, audio []byte) error
}

// FFplaySpeaker plays prompt audio by piping it to an ffplay process. The
// clip's container format (wav/mp3) is detected by ffplay itself. Cancelling
// the context kills the process, cutting playback off immediately.
type FFplaySpeaker struct {
	// Path overrides the ffplay binary. Default: "ffplay" on PATH.
	Path string
}

// Speak implements PromptSpeaker.
func (s *FFplaySpeaker) Speak(ctx context.Context, audio []byte) error {
	path := s.Path
	if path == "" {
		path = "ffplay"
	}
	if _, err := exec.LookPath(path); err != nil {
		return errors.New("ffplay is required for prompt playback (install ffmpeg/ffplay and ensure it is in PATH)")
	}

	cmd := exec.CommandContext(ctx, path,
		"-nodisp",
		"-autoexit",
		"-loglevel", "error",
		"-i", "pipe:0",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open ffplay stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffplay: %w", err)
	}

	if _, err := stdin.Write(audio); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("write prompt audio: %w", err)
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffplay: %w", err)
	}
	return nil
}

package prompt

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// DefaultPollInterval is the fixed delay between readiness re-checks while
// the backend is still synthesizing an asset.
const DefaultPollInterval = 500 * time.Millisecond

// Player plays one instructional prompt at a time.
//
// Play resolves when playback ends, successfully or via terminal failure, so
// the session loop always proceeds. The only error it returns is the
// context's own, on session teardown.
type Player struct {
	assets       AssetClient
	speaker      PromptSpeaker
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewPlayer creates a player over the given asset source and speaker.
func NewPlayer(assets AssetClient, speaker PromptSpeaker, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		assets:       assets,
		speaker:      speaker,
		pollInterval: DefaultPollInterval,
		logger:       logger,
	}
}

// SetPollInterval overrides the readiness poll interval. Tests use this to
// avoid real 500 ms waits.
func (p *Player) SetPollInterval(d time.Duration) {
	p.pollInterval = d
}

// Play fetches the referenced asset, waiting for it to materialize if the
// backend has not generated it yet, plays it to completion, and optionally
// deletes it afterwards. oneShot applies to intro/instruction prompts that
// must not replay on a later poll cycle; answer-feedback prompts pass false.
//
// The readiness poll has no upper bound other than ctx: cancellation is
// checked before every retry and playback stops immediately on teardown.
func (p *Player) Play(ctx context.Context, ref string, oneShot bool) error {
	if ref == "" {
		return nil
	}

	var audio []byte
	generationRequested := false

	backoff := retry.NewConstant(p.pollInterval)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		data, fetchErr := p.assets.Fetch(ctx, ref)
		if fetchErr == nil {
			audio = data
			return nil
		}
		if ctx.Err() != nil {
			return fetchErr
		}
		if !generationRequested {
			generationRequested = true
			if genErr := p.assets.Generate(ctx, ref); genErr != nil {
				p.logger.Debug("prompt generation request failed", "ref", ref, "error", genErr)
			}
		}
		if !errors.Is(fetchErr, ErrNotReady) {
			p.logger.Debug("prompt fetch failed, retrying", "ref", ref, "error", fetchErr)
		}
		return retry.RetryableError(fetchErr)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Unreachable with an unbounded poll, kept for safety.
		p.logger.Warn("prompt never became ready", "ref", ref, "error", err)
		return nil
	}

	if speakErr := p.speaker.Speak(ctx, audio); speakErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Terminal playback failure resolves the stage; the lesson goes on.
		p.logger.Warn("prompt playback failed", "ref", ref, "error", speakErr)
	}

	if oneShot {
		deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if delErr := p.assets.Delete(deleteCtx, ref); delErr != nil {
			p.logger.Debug("prompt cleanup failed", "ref", ref, "error", delErr)
		}
	}
	return nil
}

package turn

import (
	"log/slog"

	"github.com/fretcoach/fretcoach/pkg/core/types"
)

// Outcome is the processor's reading of one verdict: where the session goes
// next and what to say about it.
type Outcome struct {
	// Next is the target for the following turn. Zero when Finished.
	Next types.Target

	// Finished terminates the session. session_finished from the server is
	// authoritative; an empty next target also ends the lesson.
	Finished bool

	// Prompt references the feedback audio to play before the next turn.
	Prompt string

	// Deviation carries the optional numeric error for UI feedback.
	Deviation *float64
}

// Processor turns verdicts into progress updates and the next target. The
// server owns target selection; the processor never second-guesses it.
type Processor struct {
	progress *types.ProgressSet
	logger   *slog.Logger
}

// NewProcessor creates a processor writing into the given progress set.
func NewProcessor(progress *types.ProgressSet, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{progress: progress, logger: logger}
}

// Progress exposes the underlying progress set for snapshotting.
func (p *Processor) Progress() *types.ProgressSet {
	return p.progress
}

// Interpret applies one verdict. On success the just-attempted target is
// marked complete; on failure its attempt counter is bumped. Either way the
// server's next_target is adopted verbatim, carrying over the chord-mode
// fields when present. Bootstrap turns touch no progress state.
func (p *Processor) Interpret(prev types.Target, result *types.TurnResult) Outcome {
	if !prev.Bootstrap {
		if result.Success {
			p.progress.MarkComplete(prev.Key())
		} else {
			p.progress.RecordAttempt(prev.Key())
		}
	}

	out := Outcome{Prompt: result.PromptAsset, Deviation: result.Deviation}

	if result.SessionFinished || result.NextTarget == "" {
		out.Finished = true
		p.logger.Info("session finished",
			"completed", p.progress.CompletedCount(),
			"last_target", prev.String())
		return out
	}

	next := types.Target{Kind: prev.Kind, Name: result.NextTarget}
	if prev.Kind == types.KindChordLesson {
		next.WholeChord = prev.WholeChord
		if result.WholeChord != nil {
			next.WholeChord = *result.WholeChord
		}
		next.StringNum = result.NextString
	}
	out.Next = next

	p.logger.Debug("next target selected",
		"prev", prev.String(),
		"next", next.String(),
		"success", result.Success)
	return out
}

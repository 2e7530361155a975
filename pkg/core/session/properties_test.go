package session

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/fretcoach/fretcoach/pkg/core/turn"
	"github.com/fretcoach/fretcoach/pkg/core/types"
)

// Random verdict sequences must never decrease the completed count and must
// advance at most one target per turn.
func TestProgressMonotonicUnderArbitraryVerdicts(t *testing.T) {
	targets := []string{"6", "5", "4", "3", "2", "1"}

	rapid.Check(t, func(t *rapid.T) {
		processor := turn.NewProcessor(types.NewProgressSet(), nil)
		current := types.Target{Kind: types.KindTuner, Name: "6"}
		prevCompleted := 0

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			result := &types.TurnResult{
				Success:         rapid.Bool().Draw(t, "success"),
				NextTarget:      rapid.SampledFrom(targets).Draw(t, "next"),
				SessionFinished: rapid.Bool().Draw(t, "finished"),
			}

			out := processor.Interpret(current, result)

			completed := processor.Progress().CompletedCount()
			if completed < prevCompleted {
				t.Fatalf("completed count decreased: %d -> %d", prevCompleted, completed)
			}
			if completed > prevCompleted+1 {
				t.Fatalf("more than one target completed in a single turn: %d -> %d", prevCompleted, completed)
			}
			prevCompleted = completed

			if out.Finished {
				return
			}
			if out.Next.Name != result.NextTarget {
				t.Fatalf("next target %q ignores the server's %q", out.Next.Name, result.NextTarget)
			}
			current = out.Next
		}
	})
}

// Re-marking a completed target never double-increments the count.
func TestCompletionIdempotentUnderRepeats(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		progress := types.NewProgressSet()
		keys := rapid.SliceOfN(rapid.SampledFrom([]string{"C", "G", "D"}), 1, 30).Draw(t, "keys")

		distinct := map[string]bool{}
		for _, key := range keys {
			progress.MarkComplete(key)
			distinct[key] = true
			if progress.CompletedCount() != len(distinct) {
				t.Fatalf("CompletedCount = %d, want %d distinct", progress.CompletedCount(), len(distinct))
			}
		}
	})
}

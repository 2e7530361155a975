// Package session runs the turn-based practice loop: prompt, record, upload,
// interpret, repeat until the lesson is done.
package session

import "fmt"

// Phase is the current stage of a practice session. Transitions are strictly
// sequential; no two stages are ever in flight at once.
type Phase int

const (
	// PhaseIntro is the one-time bootstrap that fetches the opening prompt.
	PhaseIntro Phase = iota
	// PhaseIdle awaits the next recording, user-triggered or auto-chained.
	PhaseIdle
	// PhaseRecording captures the learner's attempt.
	PhaseRecording
	// PhaseUploading submits the attempt for analysis.
	PhaseUploading
	// PhasePlaying plays the feedback or instruction prompt.
	PhasePlaying
	// PhaseDone is terminal. No further transitions are accepted.
	PhaseDone
)

// String returns the phase name used in logs and the status feed.
func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "intro"
	case PhaseIdle:
		return "idle"
	case PhaseRecording:
		return "recording"
	case PhaseUploading:
		return "uploading"
	case PhasePlaying:
		return "playing"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so snapshots serialize the
// phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase by name, for feed clients decoding snapshots.
func (p *Phase) UnmarshalText(text []byte) error {
	for candidate := PhaseIntro; candidate <= PhaseDone; candidate++ {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

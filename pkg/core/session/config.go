package session

import (
	"time"

	"github.com/fretcoach/fretcoach/pkg/core/types"
)

// Config parameterizes one practice session. The same engine serves every
// lesson flow; only the configuration differs per screen.
type Config struct {
	// Kind selects the practice flow.
	Kind types.LessonKind

	// SessionID identifies the session in logs and the status feed. A ULID is
	// generated when empty.
	SessionID string

	// BootstrapSentinel is the placeholder target name for the intro call,
	// e.g. "0" for the tuner or "AA" for the single-note lesson.
	BootstrapSentinel string

	// RecordDuration is the fixed clip length per turn. Default: 4s.
	RecordDuration time.Duration

	// AutoRecord chains recording automatically once the previous prompt has
	// finished playing. False means the learner taps to record each turn.
	AutoRecord bool

	// DoneDelay is how long the terminal phase waits before firing OnDone.
	// Default: 3s.
	DoneDelay time.Duration

	// DeleteIntroPrompt requests server-side cleanup of the intro prompt
	// after playback so a stale clip cannot replay.
	DeleteIntroPrompt bool

	// TotalTargets is the number of targets the lesson covers, for progress
	// display. Zero means unknown.
	TotalTargets int

	// OnDone, when set, is called exactly once, DoneDelay after the session
	// reaches the terminal phase. The hosting screen uses it to navigate away.
	OnDone func()
}

const (
	defaultRecordDuration = 4 * time.Second
	defaultDoneDelay      = 3 * time.Second
)

func (c Config) withDefaults() Config {
	if c.RecordDuration <= 0 {
		c.RecordDuration = defaultRecordDuration
	}
	if c.DoneDelay <= 0 {
		c.DoneDelay = defaultDoneDelay
	}
	return c
}

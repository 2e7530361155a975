package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fretcoach/fretcoach/pkg/core"
	"github.com/fretcoach/fretcoach/pkg/core/capture"
	"github.com/fretcoach/fretcoach/pkg/core/turn"
	"github.com/fretcoach/fretcoach/pkg/core/types"
)

// PromptPlayer plays one prompt to completion. Resolving on terminal playback
// failure is the implementation's job; the controller always proceeds.
type PromptPlayer interface {
	Play(ctx context.Context, ref string, oneShot bool) error
}

// TurnRecorder captures one fixed-duration clip and meters the live level.
type TurnRecorder interface {
	Record(ctx context.Context, duration time.Duration) (*capture.Recording, error)
	Level() float64
}

// TurnSubmitter submits one turn for analysis.
type TurnSubmitter interface {
	Submit(ctx context.Context, target types.Target, rec *capture.Recording) (*types.TurnResult, error)
}

// Snapshot is the presentation-facing view of a session. Consumers read
// snapshots; they never share the controller's own state.
type Snapshot struct {
	SessionID      string           `json:"session_id"`
	Kind           types.LessonKind `json:"kind"`
	Phase          Phase            `json:"phase"`
	Target         types.Target     `json:"target"`
	CompletedCount int              `json:"completed_count"`
	TotalTargets   int              `json:"total_targets,omitempty"`
	Level          float64          `json:"level"`
	Deviation      *float64         `json:"deviation,omitempty"`
	LastError      *core.Error      `json:"last_error,omitempty"`
	Finished       bool             `json:"finished"`
}

// DeviationHint reads the last deviation as a direction: "sharp" for a
// positive cents error, "flat" for negative, "" when none was measured.
func (s Snapshot) DeviationHint() string {
	switch {
	case s.Deviation == nil || *s.Deviation == 0:
		return ""
	case *s.Deviation > 0:
		return "sharp"
	default:
		return "flat"
	}
}

// Controller is the session state machine. It owns all session-lifetime
// resources and sequences the stages so at most one is in flight at a time.
// All stage work runs on a single engine goroutine; the exported methods only
// read snapshots or signal it.
type Controller struct {
	config    Config
	recorder  TurnRecorder
	uploader  TurnSubmitter
	processor *turn.Processor
	player    PromptPlayer
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	started atomic.Bool // bootstrap latch, survives duplicate mounts
	trigger chan struct{}
	events  chan Snapshot
	doneCB  sync.Once

	mu        sync.Mutex
	phase     Phase
	target    types.Target
	deviation *float64
	lastError *core.Error
	halted    bool // malformed response stops the automatic chain
	finished  bool
}

// NewController wires a session from its collaborators. The processor's
// progress set is shared with the presentation layer via snapshots.
func NewController(config Config, recorder TurnRecorder, uploader TurnSubmitter, processor *turn.Processor, player PromptPlayer, logger *slog.Logger) *Controller {
	config = config.withDefaults()
	if config.SessionID == "" {
		config.SessionID = ulid.Make().String()
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		config:    config,
		recorder:  recorder,
		uploader:  uploader,
		processor: processor,
		player:    player,
		logger:    logger.With("session_id", config.SessionID, "kind", config.Kind),
		ctx:       ctx,
		cancel:    cancel,
		trigger:   make(chan struct{}, 1),
		events:    make(chan Snapshot, 16),
		phase:     PhaseIntro,
	}
}

// Start launches the engine goroutine. Calling Start again is a no-op, so a
// screen that mounts twice still bootstraps exactly once.
func (c *Controller) Start() {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go c.run()
}

// StartRecording asks the engine to run the next turn. It also clears any
// surfaced error, serving as the retry affordance. Signals are coalesced; a
// tap during an in-flight stage is absorbed, never queued twice.
func (c *Controller) StartRecording() {
	c.mu.Lock()
	c.lastError = nil
	c.halted = false
	c.mu.Unlock()

	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// Close tears the session down: any in-progress recording stops and releases
// the microphone, polling playback is abandoned, and late responses are
// discarded. Safe to call more than once.
func (c *Controller) Close() {
	c.cancel()
}

// Events returns the phase-change feed. Each value is a full snapshot taken
// at transition time. The channel closes when the engine goroutine exits;
// slow consumers miss intermediate snapshots rather than blocking the engine.
func (c *Controller) Events() <-chan Snapshot {
	return c.events
}

// Snapshot returns the current presentation-facing state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:      c.config.SessionID,
		Kind:           c.config.Kind,
		Phase:          c.phase,
		Target:         c.target,
		CompletedCount: c.processor.Progress().CompletedCount(),
		TotalTargets:   c.config.TotalTargets,
		Level:          c.recorder.Level(),
		Deviation:      c.deviation,
		LastError:      c.lastError,
		Finished:       c.finished,
	}
}

// Progress exposes per-target status for the string/chord indicators.
func (c *Controller) Progress() *types.ProgressSet {
	return c.processor.Progress()
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug("phase transition", "phase", p.String())
	select {
	case c.events <- snap:
	default:
	}
}

// fail records a stage error and resolves back to idle. The learner retries
// via StartRecording.
func (c *Controller) fail(err error, fallback core.ErrorKind) {
	ce := core.Coerce(err, fallback)
	c.mu.Lock()
	c.lastError = ce
	if !ce.Retryable() {
		c.halted = true
	}
	c.mu.Unlock()
	c.logger.Warn("stage failed", "kind", ce.Kind, "error", ce)
	c.setPhase(PhaseIdle)
}

func (c *Controller) run() {
	defer close(c.events)

	c.bootstrap()

	for {
		c.mu.Lock()
		finished := c.finished
		ready := c.config.AutoRecord && !c.halted && c.lastError == nil && !c.target.IsZero()
		c.mu.Unlock()

		if finished {
			c.finish()
			return
		}

		if !ready {
			select {
			case <-c.ctx.Done():
				return
			case <-c.trigger:
			}
		}

		c.mu.Lock()
		needBootstrap := c.target.IsZero()
		c.mu.Unlock()
		if needBootstrap {
			// The intro call failed earlier; a retry redoes it.
			c.bootstrap()
			continue
		}

		c.turnCycle()
		if c.ctx.Err() != nil {
			return
		}
	}
}

// bootstrap performs the one-time intro call: submit the sentinel target with
// a placeholder clip, play the opening prompt, and adopt the first real
// target.
func (c *Controller) bootstrap() {
	c.setPhase(PhaseIntro)

	boot := types.BootstrapTarget(c.config.Kind, c.config.BootstrapSentinel)
	result, err := c.uploader.Submit(c.ctx, boot, nil)
	if c.ctx.Err() != nil {
		return
	}
	if err != nil {
		c.fail(err, core.ErrUploadFailed)
		return
	}

	outcome := c.processor.Interpret(boot, result)

	if outcome.Prompt != "" {
		c.setPhase(PhasePlaying)
		if err := c.player.Play(c.ctx, outcome.Prompt, c.config.DeleteIntroPrompt); err != nil {
			return // teardown only
		}
	}

	c.mu.Lock()
	c.target = outcome.Next
	c.finished = outcome.Finished
	c.mu.Unlock()

	c.logger.Info("session bootstrapped", "target", outcome.Next.String())
	c.setPhase(PhaseIdle)
}

// turnCycle runs one full turn: record, upload, interpret, play feedback.
// Every stage error resolves back to idle with lastError set.
func (c *Controller) turnCycle() {
	c.mu.Lock()
	target := c.target
	c.mu.Unlock()

	c.setPhase(PhaseRecording)
	rec, err := c.recorder.Record(c.ctx, c.config.RecordDuration)
	if c.ctx.Err() != nil {
		return
	}
	if err != nil {
		c.fail(err, core.ErrMicUnavailable)
		return
	}

	c.setPhase(PhaseUploading)
	result, err := c.uploader.Submit(c.ctx, target, rec)
	if c.ctx.Err() != nil {
		return
	}
	if err != nil {
		c.fail(err, core.ErrUploadFailed)
		return
	}

	outcome := c.processor.Interpret(target, result)

	c.mu.Lock()
	c.deviation = outcome.Deviation
	c.mu.Unlock()

	if outcome.Prompt != "" {
		c.setPhase(PhasePlaying)
		if err := c.player.Play(c.ctx, outcome.Prompt, false); err != nil {
			return // teardown only
		}
	}

	c.mu.Lock()
	c.finished = outcome.Finished
	if !outcome.Finished {
		c.target = outcome.Next
	}
	c.mu.Unlock()

	if !outcome.Finished {
		c.setPhase(PhaseIdle)
	}
}

// finish enters the terminal phase and, after the configured delay, fires the
// navigation callback exactly once. Teardown before the delay elapses skips
// the callback.
func (c *Controller) finish() {
	c.setPhase(PhaseDone)
	c.logger.Info("session done", "completed", c.processor.Progress().CompletedCount())

	delay := time.NewTimer(c.config.DoneDelay)
	defer delay.Stop()
	select {
	case <-c.ctx.Done():
		return
	case <-delay.C:
	}

	if c.config.OnDone != nil {
		c.doneCB.Do(c.config.OnDone)
	}
}

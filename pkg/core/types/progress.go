package types

import "sync"

// TargetStatus summarizes one target's history within a session.
type TargetStatus string

const (
	// StatusUntested means the target has not been attempted yet.
	StatusUntested TargetStatus = "untested"
	// StatusCorrect means the target has been completed.
	StatusCorrect TargetStatus = "correct"
	// StatusRetry means the target has been attempted but not completed.
	StatusRetry TargetStatus = "retry"
)

// ProgressSet tracks which targets are complete and how many attempts each
// took. Completion is monotonic: once marked complete a target is never
// un-marked, and attempt counts only increase. Mutated only by the turn
// processor; the presentation layer reads snapshots.
type ProgressSet struct {
	mu        sync.Mutex
	completed map[string]struct{}
	attempts  map[string]int
}

// NewProgressSet creates an empty progress set.
func NewProgressSet() *ProgressSet {
	return &ProgressSet{
		completed: make(map[string]struct{}),
		attempts:  make(map[string]int),
	}
}

// MarkComplete records a target as done. Idempotent: marking an already
// complete target again is a no-op.
func (p *ProgressSet) MarkComplete(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed[key] = struct{}{}
}

// RecordAttempt increments the attempt counter for a target.
func (p *ProgressSet) RecordAttempt(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts[key]++
}

// CompletedCount returns how many distinct targets are complete.
func (p *ProgressSet) CompletedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.completed)
}

// Attempts returns the attempt count for a target.
func (p *ProgressSet) Attempts(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts[key]
}

// Status returns the per-target status used by the string/chord indicators.
func (p *ProgressSet) Status(key string) TargetStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.completed[key]; ok {
		return StatusCorrect
	}
	if p.attempts[key] > 0 {
		return StatusRetry
	}
	return StatusUntested
}

// Completed reports whether a target is complete.
func (p *ProgressSet) Completed(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.completed[key]
	return ok
}

// Snapshot returns a copy of the completed set and attempt counters.
func (p *ProgressSet) Snapshot() (completed []string, attempts map[string]int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	completed = make([]string, 0, len(p.completed))
	for key := range p.completed {
		completed = append(completed, key)
	}
	attempts = make(map[string]int, len(p.attempts))
	for key, n := range p.attempts {
		attempts[key] = n
	}
	return completed, attempts
}

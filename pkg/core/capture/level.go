package capture

import (
	"math"
	"sync"
)

// RMSLevel computes the root-mean-square energy of PCM audio.
// Input is assumed to be 16-bit signed little-endian PCM.
// Returns a value between 0.0 and 1.0.
func RMSLevel(pcm []byte) float64 {
	samples := len(pcm) / 2
	if samples == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < len(pcm)-1; i += 2 {
		sample := int16(pcm[i]) | int16(pcm[i+1])<<8
		normalized := float64(sample) / 32768.0
		sum += normalized * normalized
	}

	return math.Sqrt(sum / float64(samples))
}

// PeakLevel returns the maximum absolute amplitude in the PCM data.
// Returns a value between 0.0 and 1.0.
func PeakLevel(pcm []byte) float64 {
	if len(pcm) < 2 {
		return 0
	}

	var maxAbs float64
	for i := 0; i < len(pcm)-1; i += 2 {
		sample := int16(pcm[i]) | int16(pcm[i+1])<<8
		// float64 avoids overflow when negating -32768
		abs := math.Abs(float64(sample))
		if abs > maxAbs {
			maxAbs = abs
		}
	}

	return maxAbs / 32768.0
}

// LevelMeter publishes the live input level during a recording. Purely
// advisory: consumers read it for UI feedback and it never affects control
// flow.
type LevelMeter struct {
	mu    sync.Mutex
	level float64
}

// Set updates the current level.
func (m *LevelMeter) Set(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = level
}

// Value returns the most recent level, 0.0 to 1.0.
func (m *LevelMeter) Value() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// Reset zeroes the meter, called when a recording stops.
func (m *LevelMeter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = 0
}

// Package capture acquires microphone audio for one practice turn at a time.
//
// The engine never talks to a device directly: it records through the
// AudioCapture interface so session logic is testable without hardware. The
// shipped implementation shells out to ffmpeg (see FFmpegCapture).
package capture

import (
	"io"
	"sync"
	"time"
)

// StreamConfig describes the raw capture format. Practice analysis needs the
// unprocessed signal, so implementations must not apply echo cancellation,
// noise suppression, or automatic gain.
type StreamConfig struct {
	// SampleRateHz is the capture sample rate. Default: 24000.
	SampleRateHz int `json:"sample_rate_hz"`

	// Channels is the number of channels. Default: 1 (mono).
	Channels int `json:"channels"`
}

// DefaultStreamConfig returns the fixed mono configuration used by all
// practice flows.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{SampleRateHz: 24000, Channels: 1}
}

// BytesPerSecond returns the PCM byte rate (16-bit samples).
func (c StreamConfig) BytesPerSecond() int {
	return c.SampleRateHz * c.Channels * 2
}

// BytesForDuration returns how many PCM bytes cover the given duration.
func (c StreamConfig) BytesForDuration(d time.Duration) int {
	return int(int64(c.BytesPerSecond()) * d.Milliseconds() / 1000)
}

// AudioStream is one exclusive microphone acquisition. Closing it releases
// the underlying device.
type AudioStream interface {
	io.ReadCloser
}

// AudioCapture opens microphone streams. Each turn acquires a fresh stream;
// the device is never held across turns.
type AudioCapture interface {
	Open(cfg StreamConfig) (AudioStream, error)
}

// Recording is the raw captured audio for one turn. The recorder hands it to
// the uploader and keeps no further reference.
type Recording struct {
	Data     []byte
	Config   StreamConfig
	Duration time.Duration
}

// Buffer accumulates PCM audio chunks from the capture read loop.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	config StreamConfig
}

// NewBuffer creates a buffer sized for the expected capture duration.
func NewBuffer(config StreamConfig, expect time.Duration) *Buffer {
	return &Buffer{
		data:   make([]byte, 0, config.BytesForDuration(expect)),
		config: config,
	}
}

// Write appends audio data to the buffer.
func (b *Buffer) Write(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, data...)
}

// Bytes returns a copy of all buffered audio data.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Tail returns a copy of the last d of audio, or everything if the buffer
// holds less.
func (b *Buffer) Tail(d time.Duration) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.config.BytesForDuration(d)
	if n > len(b.data) {
		n = len(b.data)
	}
	out := make([]byte, n)
	copy(out, b.data[len(b.data)-n:])
	return out
}

// Len returns the current buffer size in bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

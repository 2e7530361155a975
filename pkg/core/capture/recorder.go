package capture

import (
	"context"
	"log/slog"
	"time"

	"github.com/fretcoach/fretcoach/pkg/core"
)

const (
	// levelSampleInterval is how often the advisory level meter updates
	// while recording (~10x/second).
	levelSampleInterval = 100 * time.Millisecond

	// levelWindow is the fixed analysis window the meter is computed over.
	levelWindow = 200 * time.Millisecond
)

// Recorder captures a fixed-duration clip per turn. The duration is a hard
// ceiling enforced by a deterministic timer, not a target the caller can cut
// short.
type Recorder struct {
	capture AudioCapture
	config  StreamConfig
	meter   *LevelMeter
	logger  *slog.Logger
}

// NewRecorder creates a recorder over the given capture device.
func NewRecorder(capture AudioCapture, config StreamConfig, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	if config.SampleRateHz == 0 {
		config = DefaultStreamConfig()
	}
	return &Recorder{
		capture: capture,
		config:  config,
		meter:   &LevelMeter{},
		logger:  logger,
	}
}

// Level returns the live input level of the recording in progress, 0 when
// idle.
func (r *Recorder) Level() float64 {
	return r.meter.Value()
}

// Record acquires the microphone, captures exactly duration of audio, and
// releases the device. Cancellation stops capture immediately and releases
// the device before returning ctx's error; the partial clip is discarded.
func (r *Recorder) Record(ctx context.Context, duration time.Duration) (*Recording, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream, err := r.capture.Open(r.config)
	if err != nil {
		return nil, core.Coerce(err, core.ErrMicUnavailable)
	}
	defer r.meter.Reset()

	buf := NewBuffer(r.config, duration)

	readDone := make(chan error, 1)
	go func() {
		chunk := make([]byte, 4096)
		for {
			n, readErr := stream.Read(chunk)
			if n > 0 {
				buf.Write(chunk[:n])
			}
			if readErr != nil {
				readDone <- readErr
				return
			}
		}
	}()

	stop := time.NewTimer(duration)
	defer stop.Stop()
	sampler := time.NewTicker(levelSampleInterval)
	defer sampler.Stop()

	r.logger.Debug("recording started", "duration", duration, "sample_rate", r.config.SampleRateHz)

	for {
		select {
		case <-ctx.Done():
			stream.Close()
			<-readDone
			return nil, ctx.Err()

		case <-stop.C:
			stream.Close()
			<-readDone
			r.logger.Debug("recording stopped", "bytes", buf.Len())
			return &Recording{Data: buf.Bytes(), Config: r.config, Duration: duration}, nil

		case readErr := <-readDone:
			stream.Close()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, core.Coerce(readErr, core.ErrMicUnavailable)

		case <-sampler.C:
			r.meter.Set(RMSLevel(buf.Tail(levelWindow)))
		}
	}
}

package capture

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/fretcoach/fretcoach/pkg/core"
)

// fakeStream emits constant-amplitude PCM until closed.
type fakeStream struct {
	mu     sync.Mutex
	closed bool
	sample int16
}

func (s *fakeStream) Read(p []byte) (int, error) {
	// Pace the fake device so the read loop does not spin.
	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, io.ErrClosedPipe
	}

	n := 256
	if n > len(p) {
		n = len(p)
	}
	for i := 0; i+1 < n; i += 2 {
		p[i] = byte(s.sample)
		p[i+1] = byte(s.sample >> 8)
	}
	return n, nil
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeCapture struct {
	stream  *fakeStream
	openErr error
	opens   int
}

func (c *fakeCapture) Open(cfg StreamConfig) (AudioStream, error) {
	c.opens++
	if c.openErr != nil {
		return nil, c.openErr
	}
	return c.stream, nil
}

func TestRecorder_StopsAtDuration(t *testing.T) {
	fake := &fakeCapture{stream: &fakeStream{sample: 16384}}
	r := NewRecorder(fake, DefaultStreamConfig(), nil)

	start := time.Now()
	rec, err := r.Record(context.Background(), 150*time.Millisecond)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if elapsed < 150*time.Millisecond || elapsed > 500*time.Millisecond {
		t.Errorf("recording took %v, want ~150ms", elapsed)
	}
	if len(rec.Data) == 0 {
		t.Error("recording data should not be empty")
	}
	if !fake.stream.isClosed() {
		t.Error("stream should be closed after the stop timer fires")
	}
}

func TestRecorder_CancelReleasesDevice(t *testing.T) {
	fake := &fakeCapture{stream: &fakeStream{}}
	r := NewRecorder(fake, DefaultStreamConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := r.Record(ctx, 10*time.Second)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Record() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Record() did not return after cancellation")
	}

	if !fake.stream.isClosed() {
		t.Error("cancellation must release the capture device")
	}
	if r.Level() != 0 {
		t.Errorf("Level() after cancel = %f, want 0", r.Level())
	}
}

func TestRecorder_OpenErrorKeepsKind(t *testing.T) {
	fake := &fakeCapture{openErr: core.NewMicDeniedError(errors.New("denied by OS"))}
	r := NewRecorder(fake, DefaultStreamConfig(), nil)

	_, err := r.Record(context.Background(), time.Second)
	var ce *core.Error
	if !errors.As(err, &ce) {
		t.Fatalf("error should be *core.Error, got %T", err)
	}
	if ce.Kind != core.ErrMicDenied {
		t.Errorf("Kind = %v, want %v", ce.Kind, core.ErrMicDenied)
	}
}

func TestRecorder_EarlyStreamEndIsUnavailable(t *testing.T) {
	stream := &fakeStream{}
	stream.closed = true // device dies immediately
	fake := &fakeCapture{stream: stream}
	r := NewRecorder(fake, DefaultStreamConfig(), nil)

	_, err := r.Record(context.Background(), time.Second)
	var ce *core.Error
	if !errors.As(err, &ce) {
		t.Fatalf("error should be *core.Error, got %T", err)
	}
	if ce.Kind != core.ErrMicUnavailable {
		t.Errorf("Kind = %v, want %v", ce.Kind, core.ErrMicUnavailable)
	}
}

func TestRecorder_LevelReflectsSignal(t *testing.T) {
	fake := &fakeCapture{stream: &fakeStream{sample: 16384}}
	r := NewRecorder(fake, DefaultStreamConfig(), nil)

	done := make(chan struct{})
	go func() {
		_, _ = r.Record(context.Background(), 400*time.Millisecond)
		close(done)
	}()

	time.Sleep(300 * time.Millisecond)
	if level := r.Level(); level < 0.1 {
		t.Errorf("Level() during capture = %f, want > 0.1", level)
	}
	<-done
}

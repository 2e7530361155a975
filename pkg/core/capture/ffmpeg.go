package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/fretcoach/fretcoach/pkg/core"
)

// FFmpegCapture acquires the microphone by spawning an ffmpeg process that
// writes raw s16le PCM to stdout. One process per acquisition; killing the
// process releases the device.
type FFmpegCapture struct {
	// Path overrides the ffmpeg binary. Default: "ffmpeg" on PATH.
	Path string

	// Input overrides the capture device (e.g. a specific pulse source).
	// Default: the platform's default input.
	Input string
}

// Open implements AudioCapture.
func (f *FFmpegCapture) Open(cfg StreamConfig) (AudioStream, error) {
	path := f.Path
	if path == "" {
		path = "ffmpeg"
	}
	if _, err := exec.LookPath(path); err != nil {
		return nil, core.NewMicUnavailableError("ffmpeg is required for microphone capture", err)
	}

	args, err := micArgs(runtime.GOOS, f.Input, cfg)
	if err != nil {
		return nil, core.NewMicUnavailableError("unsupported platform", err)
	}

	cmd := exec.Command(path, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, core.NewMicUnavailableError("open ffmpeg stdout", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, core.NewMicUnavailableError("open ffmpeg stderr", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, core.NewMicUnavailableError("start ffmpeg capture", err)
	}

	s := &ffmpegStream{cmd: cmd, stdout: stdout}
	go s.scanStderr(stderr)
	return s, nil
}

func micArgs(goos, input string, cfg StreamConfig) ([]string, error) {
	common := []string{
		"-hide_banner", "-loglevel", "error",
		"-ac", fmt.Sprintf("%d", cfg.Channels),
		"-ar", fmt.Sprintf("%d", cfg.SampleRateHz),
		"-f", "s16le", "-",
	}
	switch goos {
	case "darwin":
		if input == "" {
			input = ":0"
		}
		return append([]string{"-f", "avfoundation", "-i", input}, common...), nil
	case "linux":
		if input == "" {
			input = "default"
		}
		return append([]string{"-f", "pulse", "-i", input}, common...), nil
	default:
		return nil, fmt.Errorf("microphone capture is not implemented for %s; supported platforms: darwin, linux", goos)
	}
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser

	mu     sync.Mutex
	denied bool
	closed bool
}

// scanStderr watches ffmpeg's diagnostics so a permission refusal can be
// reported as mic_denied instead of a generic capture failure.
func (s *ffmpegStream) scanStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.ToLower(scanner.Text())
		if strings.Contains(line, "permission denied") || strings.Contains(line, "operation not permitted") {
			s.mu.Lock()
			s.denied = true
			s.mu.Unlock()
		}
	}
}

func (s *ffmpegStream) Read(p []byte) (int, error) {
	n, err := s.stdout.Read(p)
	if err != nil {
		s.mu.Lock()
		denied, closed := s.denied, s.closed
		s.mu.Unlock()
		if denied && !closed {
			return n, core.NewMicDeniedError(err)
		}
		if errors.Is(err, io.EOF) && !closed {
			return n, core.NewMicUnavailableError("capture process exited", err)
		}
	}
	return n, err
}

// Close kills the ffmpeg process, releasing the microphone.
func (s *ffmpegStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
		_ = s.cmd.Wait()
	}
	return nil
}

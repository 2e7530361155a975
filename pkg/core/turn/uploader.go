// Package turn submits recordings for analysis and interprets the server's
// verdict into the next practice target.
package turn

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/fretcoach/fretcoach/pkg/core"
	"github.com/fretcoach/fretcoach/pkg/core/capture"
	"github.com/fretcoach/fretcoach/pkg/core/types"
)

// bootstrapPayloadSize is the size of the silent placeholder clip sent with
// the sentinel bootstrap request, which the analysis backend ignores.
const bootstrapPayloadSize = 1024

// Uploader submits one turn's recording to the analysis endpoint as a
// multipart form and decodes the verdict.
type Uploader struct {
	// Endpoint is the full analysis URL, e.g.
	// "http://127.0.0.1:8000/tuner/check".
	Endpoint string

	// HTTPClient defaults to core.NewHTTPClient().
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewUploader creates an uploader for the given analysis endpoint.
func NewUploader(endpoint string, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{
		Endpoint:   endpoint,
		HTTPClient: core.NewHTTPClient(),
		Logger:     logger,
	}
}

func (u *Uploader) client() *http.Client {
	if u.HTTPClient != nil {
		return u.HTTPClient
	}
	return core.NewHTTPClient()
}

func (u *Uploader) logger() *slog.Logger {
	if u.Logger != nil {
		return u.Logger
	}
	return slog.Default()
}

// Submit uploads the recording for the given target and returns the decoded
// verdict. A bootstrap target carries a silent placeholder clip instead of a
// real recording. Upload failures come back as ErrUploadFailed carrying the
// server's error body; contract violations in the response come back as
// ErrMalformedResponse, which halts automatic progression.
func (u *Uploader) Submit(ctx context.Context, target types.Target, rec *capture.Recording) (*types.TurnResult, error) {
	audio := []byte(nil)
	if rec != nil {
		audio = rec.Data
	}
	if target.Bootstrap && len(audio) == 0 {
		audio = make([]byte, bootstrapPayloadSize)
	}

	body, contentType, err := encodeForm(target, audio)
	if err != nil {
		return nil, core.NewUploadFailedError("encode turn form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.Endpoint, body)
	if err != nil {
		return nil, core.NewUploadFailedError("build turn request", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.client().Do(req)
	if err != nil {
		return nil, core.NewUploadFailedError("submit turn", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewUploadFailedError("read turn response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(payload))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		u.logger().Warn("turn upload rejected", "status", resp.StatusCode, "target", target.String())
		return nil, core.NewUploadFailedError(fmt.Sprintf("server returned %d: %s", resp.StatusCode, msg), nil)
	}

	result, err := types.DecodeTurnResult(payload)
	if err != nil {
		return nil, core.NewMalformedResponseError(err.Error())
	}
	u.logger().Debug("turn verdict received",
		"target", target.String(),
		"success", result.Success,
		"next_target", result.NextTarget,
		"session_finished", result.SessionFinished)
	return result, nil
}

// encodeForm builds the multipart body. Field names match the analysis API:
// "target" plus chord-mode extras, and the clip under "audio_file".
func encodeForm(target types.Target, audio []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("target", target.Name); err != nil {
		return nil, "", err
	}
	if target.Kind == types.KindChordLesson {
		if err := w.WriteField("whole_chord", strconv.FormatBool(target.WholeChord)); err != nil {
			return nil, "", err
		}
		if target.StringNum > 0 {
			if err := w.WriteField("string_num", strconv.Itoa(target.StringNum)); err != nil {
				return nil, "", err
			}
		}
	}

	filename := fmt.Sprintf("clip_%s.wav", uuid.NewString())
	part, err := w.CreateFormFile("audio_file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

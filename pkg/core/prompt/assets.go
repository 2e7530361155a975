// Package prompt plays server-generated voice prompts, waiting out assets the
// backend has not finished synthesizing yet.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// ErrNotReady reports that a prompt asset exists in name only: the backend
// has not finished generating it. Callers poll until it clears.
var ErrNotReady = errors.New("prompt asset not ready")

// AssetClient fetches, requests, and disposes of prompt audio assets.
type AssetClient interface {
	// Fetch downloads the asset bytes. Returns ErrNotReady while the asset
	// has not been generated yet.
	Fetch(ctx context.Context, ref string) ([]byte, error)

	// Generate asks the backend to synthesize the asset. Best effort; the
	// readiness poll picks up the result.
	Generate(ctx context.Context, ref string) error

	// Delete removes a one-shot asset after playback so a stale clip cannot
	// replay on the next poll cycle. Best effort.
	Delete(ctx context.Context, ref string) error
}

// HTTPAssetClient serves prompt assets from the lesson backend.
type HTTPAssetClient struct {
	// BaseURL is the backend root, e.g. "http://127.0.0.1:8000".
	BaseURL string

	// GeneratePath, when set, is requested once when an asset is missing,
	// e.g. "/menu/intro". Empty disables generation requests.
	GeneratePath string

	// DeletePath, when set, receives post-playback cleanup requests as
	// POST <DeletePath>?filename=<base name>. Empty disables cleanup.
	DeletePath string

	// HTTPClient defaults to a client with transport-level timeouts only.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (c *HTTPAssetClient) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *HTTPAssetClient) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *HTTPAssetClient) assetURL(ref string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}

// Fetch implements AssetClient.
func (c *HTTPAssetClient) Fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.assetURL(ref), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch prompt asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotReady
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch prompt asset: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Generate implements AssetClient.
func (c *HTTPAssetClient) Generate(ctx context.Context, ref string) error {
	if c.GeneratePath == "" {
		return nil
	}
	u := strings.TrimRight(c.BaseURL, "/") + c.GeneratePath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return fmt.Errorf("request prompt generation: %w", err)
	}
	resp.Body.Close()
	c.logger().Debug("prompt generation requested", "ref", ref, "status", resp.StatusCode)
	return nil
}

// Delete implements AssetClient.
func (c *HTTPAssetClient) Delete(ctx context.Context, ref string) error {
	if c.DeletePath == "" {
		return nil
	}
	u := strings.TrimRight(c.BaseURL, "/") + c.DeletePath + "?filename=" + url.QueryEscape(path.Base(ref))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return fmt.Errorf("delete prompt asset: %w", err)
	}
	resp.Body.Close()
	return nil
}

package core

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient configures sane transport-level timeouts while keeping the
// overall request lifetime controlled by context deadlines.
//
// No http.Client.Timeout is set: prompt readiness polling is long-lived, and
// per-request context deadlines bound everything else.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     true,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}
	return &http.Client{Transport: transport}
}

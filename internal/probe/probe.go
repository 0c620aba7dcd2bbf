// Package probe confirms internet reachability with a minimal HTTP request.
package probe

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	// DefaultURL answers 204 No Content when the internet is reachable.
	DefaultURL = "http://clients3.google.com/generate_204"

	DefaultUserAgent      = "onlinewatch"
	DefaultConnectTimeout = 2000 * time.Millisecond

	// StatusUnset is reported when no response status was received.
	StatusUnset = -1
)

// Result is the outcome of a single probe.
type Result struct {
	StatusCode int
	Latency    time.Duration
	Err        error
}

// Online reports whether the probe succeeded.
func (r Result) Online() bool {
	return r.StatusCode == http.StatusNoContent
}

// Options configures an HTTPProber.
type Options struct {
	URL            string
	UserAgent      string
	ConnectTimeout time.Duration
}

// HTTPProber issues GET requests to a fixed endpoint.
type HTTPProber struct {
	url       string
	userAgent string
	timeout   time.Duration
	client    *http.Client
}

// NewHTTPProber builds a prober; zero option values fall back to defaults.
func NewHTTPProber(opts Options) *HTTPProber {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: opts.ConnectTimeout,
		}).DialContext,
		DisableKeepAlives:     true,
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		ResponseHeaderTimeout: opts.ConnectTimeout,
	}

	return &HTTPProber{
		url:       opts.URL,
		userAgent: opts.UserAgent,
		timeout:   opts.ConnectTimeout,
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// URL returns the probed endpoint.
func (p *HTTPProber) URL() string {
	return p.url
}

// Probe performs one request. Failures are reported in Result.Err with
// StatusCode set to StatusUnset.
func (p *HTTPProber) Probe(ctx context.Context) Result {
	start := time.Now()
	res := Result{StatusCode: StatusUnset}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		res.Err = fmt.Errorf("build probe request: %w", err)
		return res
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Connection", "close")
	req.Close = true

	resp, err := p.client.Do(req)
	res.Latency = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	res.StatusCode = resp.StatusCode
	return res
}

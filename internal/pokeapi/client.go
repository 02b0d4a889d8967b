// Package pokeapi implements the HTTP gateway to the public species-data API.
// Every method issues exactly one attempt per request: there is no retry,
// no response cache, and no timeout beyond the one configured on the
// transport. An optional shared rate limiter can be enabled by the caller.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the versioned API root.
	DefaultBaseURL = "https://pokeapi.co/api/v2/"
	// DefaultPageSize is the list page size used when none is given.
	DefaultPageSize = 50
	// DefaultConcurrency bounds concurrent detail fetches in a fan-out group.
	DefaultConcurrency = 8
	// CategoryDetailLimit caps detail fetches for a by-category request.
	CategoryDetailLimit = 50
)

// ErrNotFound is wrapped by a NetworkError when the server reports the
// requested resource unknown (HTTP 404).
var ErrNotFound = errors.New("not found")

// NetworkError reports a transport failure or a non-success HTTP status.
type NetworkError struct {
	URL        string
	StatusCode int // 0 for transport failures
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Client is the API HTTP client.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	concurrency int
	debug       bool
}

// Options configures NewClient. Zero values select the defaults: the
// transport's own timeout, no rate limit, DefaultConcurrency.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Rate        float64 // requests per second; 0 disables limiting
	Concurrency int
	Debug       bool
	HTTPClient  *http.Client
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	burst := 1
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
		burst = int(math.Max(1, opts.Rate))
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Client{
		baseURL:     baseURL,
		httpClient:  hc,
		limiter:     rate.NewLimiter(limit, burst),
		concurrency: concurrency,
		debug:       opts.Debug,
	}
}

// ─── Low-level HTTP ───────────────────────────────────────────────────────────

// get performs one GET against endpoint (relative to the base URL) and
// decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + strings.TrimPrefix(endpoint, "/")
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	return c.getURL(ctx, reqURL, out)
}

// getURL performs one GET against an absolute reference returned by the API.
func (c *Client) getURL(ctx context.Context, reqURL string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &NetworkError{URL: reqURL, Err: err}
	}

	if c.debug {
		slog.Debug("pokeapi request", "url", reqURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "dex-cli/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{URL: reqURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}

	if c.debug {
		slog.Debug("pokeapi response", "status", resp.StatusCode, "bytes", len(body))
	}

	if resp.StatusCode == http.StatusNotFound {
		return &NetworkError{URL: reqURL, StatusCode: resp.StatusCode, Err: ErrNotFound}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &NetworkError{URL: reqURL, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &NetworkError{URL: reqURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

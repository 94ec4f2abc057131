// Package httpclient wraps outbound calls to the telemetry API with a base
// URL, a fixed timeout and the X-API-KEY header. It never retries.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// APIKeyHeader carries the telemetry API key on every request.
	APIKeyHeader   = "X-API-KEY"
	defaultTimeout = 20 * time.Second
	maxErrorBody   = 4 << 10
)

// RequestObserver is notified after every round trip.
type RequestObserver interface {
	ObserveRequest(path, outcome string, elapsed time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
	Observer  RequestObserver
	Logger    *zerolog.Logger
}

// Query encodes a URL query string. url.Values satisfies it.
type Query interface {
	Encode() string
}

// Client issues GET requests relative to the configured base URL.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx response from telemetry API: %d; %s", e.Code, e.Body)
}

// New creates a Client from opts.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute: %q", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &apiKeyTransport{
				next:     opts.Transport,
				apiKey:   opts.APIKey,
				basePath: strings.TrimSuffix(baseURL.Path, "/"),
				observer: opts.Observer,
				logger:   logger,
			},
		},
	}, nil
}

// GetJSON sends a GET to the escaped path below the base URL and decodes the
// JSON body into out. query may be nil.
func (c *Client) GetJSON(ctx context.Context, path string, query Query, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // ignore error

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// apiKeyTransport injects the API key and reports each round trip.
type apiKeyTransport struct {
	next     http.RoundTripper
	apiKey   string
	basePath string
	observer RequestObserver
	logger   zerolog.Logger
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())
	req.Header.Set(APIKeyHeader, t.apiKey)

	path := strings.TrimPrefix(req.URL.Path, t.basePath)
	l := t.logger.With().Str("method", req.Method).Str("path", path).Logger()
	l.Trace().Msg("RoundTrip")

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start)

	outcome := "error"
	if err == nil {
		outcome = strconv.Itoa(resp.StatusCode/100) + "xx"
	}
	if t.observer != nil {
		t.observer.ObserveRequest(path, outcome, elapsed)
	}
	l.Trace().Str("outcome", outcome).Dur("elapsed", elapsed).Msg("RoundTrip done")
	return resp, err
}

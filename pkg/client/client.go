// Package client provides the Canvas LMS HTTP client: every request carries the
// next credential from the token pool, feeds the rate-limit tracker and is
// instrumented with Prometheus metrics.
//
// The client executes each request exactly once. Non-2xx responses are returned to
// the caller unchanged; only transport failures become errors.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/canvaspal/pkg/ratelimit"
	"github.com/Sternrassler/canvaspal/pkg/tokens"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// APIPrefix is the path prefix of the Canvas REST API.
const APIPrefix = "/api/v1"

// Prometheus metrics for Canvas client operations.
var (
	canvasRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_requests_total",
		Help: "Total Canvas requests by endpoint and status",
	}, []string{"endpoint", "status"})

	canvasRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "canvas_request_duration_seconds",
		Help:    "Canvas request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	canvasErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_errors_total",
		Help: "Total Canvas errors by class",
	}, []string{"class"})
)

// Client is the Canvas API client.
type Client struct {
	httpClient  *http.Client
	baseURL     *url.URL
	pool        *tokens.Pool
	rateLimiter *ratelimit.Tracker
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the Canvas instance, e.g. "https://canvas.instructure.com".
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per HTTP request. Zero, the default, leaves requests unbounded.
	Timeout time.Duration

	// Pool supplies one credential per request (REQUIRED).
	Pool *tokens.Pool

	// Tracker observes throttling headers. A process-local tracker is
	// created when nil.
	Tracker *ratelimit.Tracker
}

// DefaultConfig returns a configuration for the public Canvas cloud instance.
func DefaultConfig(pool *tokens.Pool, userAgent string) Config {
	return Config{
		BaseURL:   "https://canvas.instructure.com",
		UserAgent: userAgent,
		Pool:      pool,
	}
}

// New creates a new Canvas client.
func New(cfg Config) (*Client, error) {
	if cfg.Pool == nil {
		return nil, fmt.Errorf("token pool is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("base url must be an absolute http(s) url (got %q)", cfg.BaseURL)
	}

	logger := log.With().Str("component", "canvas-client").Logger()

	tracker := cfg.Tracker
	if tracker == nil {
		tracker = ratelimit.NewTracker(nil, logger)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     base,
		pool:        cfg.Pool,
		rateLimiter: tracker,
		config:      cfg,
		logger:      logger,
	}, nil
}

// Do performs an HTTP request authenticated with the next pooled credential.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := EndpointLabel(req.URL.Path)

	startTime := time.Now()
	defer func() {
		canvasRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	token := c.pool.Next()
	credential := tokens.Fingerprint(token)

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Str("credential", credential).
		Msg("Executing Canvas request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errClass := c.classifyError(nil, err)
		canvasErrorsTotal.WithLabelValues(string(errClass)).Inc()
		canvasRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, &APIError{
			ErrorClass: errClass,
			Message:    "request failed",
			URL:        req.URL.String(),
			Err:        err,
		}
	}

	if err := c.rateLimiter.UpdateFromHeaders(ctx, credential, resp.Header); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
	}

	canvasRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		errClass := c.classifyError(resp, nil)
		canvasErrorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Str("credential", credential).
			Msg("Canvas request error")
	}

	return resp, nil
}

// classifyError categorizes an error for observability and handling.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}
	return ClassifyResponse(resp)
}

// Get performs a GET request. rawURL may be absolute (e.g. a pagination link) or a
// path relative to the base URL. params are merged into the query only when non-empty.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (*http.Response, error) {
	u, err := c.baseURL.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	if len(params) > 0 {
		q := u.Query()
		for key, values := range params {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// URL returns the absolute API URL for path, e.g. URL("users/self/courses").
func (c *Client) URL(path string) string {
	return c.APIBase() + "/" + strings.TrimLeft(path, "/")
}

// APIBase returns the absolute API root, e.g. "https://canvas.instructure.com/api/v1".
func (c *Client) APIBase() string {
	return c.baseURL.String() + APIPrefix
}

// RateLimiter returns the tracker fed by this client.
func (c *Client) RateLimiter() *ratelimit.Tracker {
	return c.rateLimiter
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// EndpointLabel collapses numeric path segments so course ids do not explode
// metric cardinality: /api/v1/courses/42/modules -> /api/v1/courses/:id/modules.
func EndpointLabel(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

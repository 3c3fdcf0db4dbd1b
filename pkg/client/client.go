// Package client provides the GitHub REST API HTTP client with bearer
// authentication, rate limit observation, and error handling.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/audittools/gh-audit-export/pkg/ratelimit"
)

// apiVersion is sent in the X-GitHub-Api-Version header on every request.
const apiVersion = "2022-11-28"

// maxErrorBody caps how much of an error response body is kept for reporting.
const maxErrorBody = 8 << 10

// Prometheus metrics for API client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ghaudit_requests_total",
		Help: "Total GitHub API requests by status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ghaudit_request_duration_seconds",
		Help:    "GitHub API request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ghaudit_errors_total",
		Help: "Total GitHub API errors by class",
	}, []string{"class"})
)

// Client is the GitHub API client. It performs one request at a time;
// the exporter is strictly sequential.
type Client struct {
	httpClient  *http.Client
	rateLimiter *ratelimit.Tracker
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Token is the bearer credential. Never logged.
	Token string

	// UserAgent header sent on every request.
	UserAgent string

	// BaseURL is prepended to relative endpoints passed to Get.
	BaseURL string

	// Timeout bounds each individual request. Exceeding it is a fatal
	// network-class APIError.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration for the given token.
func DefaultConfig(token string) Config {
	return Config{
		Token:     token,
		UserAgent: "gh-audit-export/1.0",
		BaseURL:   "https://api.github.com",
		Timeout:   30 * time.Second,
	}
}

// New creates a new GitHub API client.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrMissingCredential
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "github-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: ratelimit.NewTracker(logger),
		config:      cfg,
		logger:      logger,
	}, nil
}

// Do performs an HTTP request with authentication headers, rate limit
// observation, and error classification. Any non-2xx status or transport
// failure is returned as a fatal *APIError; there is no retry.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", c.config.UserAgent)

	c.logger.Debug().
		Str("url", req.URL.String()).
		Str("method", req.Method).
		Msg("Executing API request")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.Observe(time.Since(startTime).Seconds())

	if err != nil {
		c.logger.Error().Err(err).Str("url", req.URL.String()).Msg("HTTP request failed")
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues("network_error").Inc()
		return nil, &APIError{
			ErrorClass: ErrorClassNetwork,
			URL:        req.URL.Redacted(),
			Err:        err,
		}
	}

	if err := c.rateLimiter.UpdateFromHeaders(resp.Header); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errClass := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(errClass)).Inc()
		requestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()

		c.logger.Error().
			Str("url", req.URL.String()).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("API request error")

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			URL:        req.URL.Redacted(),
			Body:       strings.TrimSpace(string(body)),
		}
	}

	requestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()
	return resp, nil
}

// Get performs a GET request. The url may be absolute (as returned by
// pagination links) or an endpoint path relative to BaseURL.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = c.config.BaseURL + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// RateLimit returns the most recently observed rate limit state.
func (c *Client) RateLimit() ratelimit.State {
	return c.rateLimiter.Snapshot()
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

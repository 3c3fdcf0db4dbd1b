package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit observation.
var (
	rateLimitRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ghaudit_rate_limit_remaining",
		Help: "Requests remaining in the current GitHub API rate limit window",
	})

	rateLimitWarningsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ghaudit_rate_limit_warnings_total",
		Help: "Total number of responses observed with a low rate limit budget",
	})
)

// Tracker records the GitHub API rate limit state reported by response
// headers. It is process-local: the exporter is a single sequential task,
// so no shared store is involved.
type Tracker struct {
	mu     sync.Mutex
	state  State
	seen   bool
	logger zerolog.Logger
}

// NewTracker creates a new rate limit tracker.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{
		logger: logger,
	}
}

// Snapshot returns a copy of the most recently observed state.
// Before any headers have been seen it returns a default healthy state.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.seen {
		return State{
			Remaining:  RemainingHealthy,
			Limit:      RemainingHealthy,
			ResetAt:    time.Now().Add(time.Hour),
			LastUpdate: time.Now(),
			IsHealthy:  true,
		}
	}
	return t.state
}

// UpdateFromHeaders parses GitHub rate limit headers and records the state.
// Responses without rate limit headers are ignored.
func (t *Tracker) UpdateFromHeaders(headers http.Header) error {
	remainStr := headers.Get("X-RateLimit-Remaining")
	if remainStr == "" {
		// Header not present - fine for endpoints outside the rate limited API
		return nil
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return &HeaderError{Header: "X-RateLimit-Remaining", Value: remainStr, Err: err}
	}

	state := State{
		Remaining:  remain,
		LastUpdate: time.Now(),
	}

	if limitStr := headers.Get("X-RateLimit-Limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			state.Limit = limit
		}
	}

	if resetStr := headers.Get("X-RateLimit-Reset"); resetStr != "" {
		resetUnix, err := strconv.ParseInt(resetStr, 10, 64)
		if err != nil {
			return &HeaderError{Header: "X-RateLimit-Reset", Value: resetStr, Err: err}
		}
		state.ResetAt = time.Unix(resetUnix, 0)
	}

	state.UpdateHealth()

	t.mu.Lock()
	t.state = state
	t.seen = true
	t.mu.Unlock()

	rateLimitRemaining.Set(float64(remain))

	switch {
	case state.Exhausted():
		rateLimitWarningsTotal.Inc()
		t.logger.Error().
			Int("rate_remaining", remain).
			Time("reset_at", state.ResetAt).
			Msg("GitHub rate limit exhausted - subsequent requests will be rejected by the API")
	case state.NearExhaustion():
		rateLimitWarningsTotal.Inc()
		t.logger.Warn().
			Int("rate_remaining", remain).
			Time("reset_at", state.ResetAt).
			Msg("GitHub rate limit budget running low")
	default:
		t.logger.Debug().
			Int("rate_remaining", remain).
			Int("rate_limit", state.Limit).
			Bool("is_healthy", state.IsHealthy).
			Msg("Rate limit state updated")
	}

	return nil
}

// HeaderError reports a rate limit header that could not be parsed.
type HeaderError struct {
	Header string
	Value  string
	Err    error
}

// Error implements the error interface.
func (e *HeaderError) Error() string {
	return "parse " + e.Header + " header " + strconv.Quote(e.Value) + ": " + e.Err.Error()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *HeaderError) Unwrap() error {
	return e.Err
}

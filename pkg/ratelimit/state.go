// Package ratelimit tracks the GitHub API rate limit budget reported by the
// X-RateLimit-Remaining and X-RateLimit-Reset response headers. The tracker
// only observes and reports; it never delays or blocks requests.
package ratelimit

import (
	"time"
)

// Thresholds for rate limit reporting.
const (
	// RemainingWarning triggers a warning log when the remaining budget
	// falls below this value.
	RemainingWarning = 50

	// RemainingHealthy indicates normal operation. At or above this value
	// no warnings are emitted.
	RemainingHealthy = 200
)

// State represents the most recently observed rate limit window.
type State struct {
	// Remaining is the number of requests left in the current window.
	// Extracted from the X-RateLimit-Remaining header.
	Remaining int `json:"remaining"`

	// Limit is the total request budget of the window.
	// Extracted from the X-RateLimit-Limit header.
	Limit int `json:"limit"`

	// ResetAt is the timestamp when the window resets.
	// Parsed from the X-RateLimit-Reset header (unix seconds).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is the timestamp when this state was last observed.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy indicates whether the budget is comfortably above the
	// warning threshold.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NearExhaustion returns true when the remaining budget is below the
// warning threshold.
func (s *State) NearExhaustion() bool {
	return s.Remaining < RemainingWarning
}

// Exhausted returns true when the window has no budget left.
func (s *State) Exhausted() bool {
	return s.Remaining == 0
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates the IsHealthy field based on current Remaining.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.Remaining >= RemainingHealthy
}

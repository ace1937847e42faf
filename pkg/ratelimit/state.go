// Package ratelimit implements Canvas API throttling observation per credential.
// It reads the X-Rate-Limit-Remaining and X-Request-Cost headers Canvas returns on
// every response and keeps the last known quota for each credential fingerprint.
//
// Observation only: the tracker never blocks a request or removes a credential from
// rotation. It exists so operators can see which token is close to being throttled.
package ratelimit

import (
	"time"
)

// Canvas response headers carrying throttling state.
const (
	HeaderRemaining   = "X-Rate-Limit-Remaining"
	HeaderRequestCost = "X-Request-Cost"
)

// Redis keys for rate limit state storage.
const (
	// RedisKeyPrefix is followed by the credential fingerprint.
	RedisKeyPrefix = "canvas:rate_limit:"

	// RedisKeyCredentials is a set of every fingerprint with stored state.
	RedisKeyCredentials = "canvas:rate_limit:credentials"
)

// LowQuotaThreshold marks a credential as close to throttling.
// Canvas starts every token with a bucket of 700 units.
const LowQuotaThreshold = 100.0

// RateLimitState is the last observed quota of one credential.
type RateLimitState struct {
	// Credential is the token fingerprint, never the token itself.
	Credential string `json:"credential"`

	// Remaining is the quota left in the credential's bucket.
	Remaining float64 `json:"remaining"`

	// LastCost is the cost Canvas charged for the last observed request.
	LastCost float64 `json:"last_cost"`

	// LastUpdate is when the headers were observed.
	LastUpdate time.Time `json:"last_update"`

	// IsLow is true when Remaining < LowQuotaThreshold.
	IsLow bool `json:"is_low"`
}

// RedisKey returns the key holding the state of a credential.
func RedisKey(credential string) string {
	return RedisKeyPrefix + credential
}

// IsStale returns true if the state is older than maxAge.
func (s *RateLimitState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// UpdateHealth updates IsLow from Remaining.
func (s *RateLimitState) UpdateHealth() {
	s.IsLow = s.Remaining < LowQuotaThreshold
}
